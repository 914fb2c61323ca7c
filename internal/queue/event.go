// Package queue defines catalog events and the RabbitMQ plumbing that carries them.
package queue

// CatalogQueue is the durable queue receiving catalog events.
const CatalogQueue = "catalog.events"

// Event kinds.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// CatalogEvent is published after a successful product write. It carries
// enough for downstream consumers to log or notify without reading the
// database.
type CatalogEvent struct {
	Kind       string  `json:"kind"`
	ProductID  uint64  `json:"product_id"`
	Name       string  `json:"name,omitempty"`
	Price      float64 `json:"price,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	ActorID    uint64  `json:"actor_id,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}
