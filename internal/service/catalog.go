package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/shop-admin/internal/metrics"
	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/queue"
	"github.com/iliyamo/shop-admin/internal/upload"
)

// maxPrice is the largest value DECIMAL(10,2) holds.
const maxPrice = 99999999.99

// ProductStore is the catalog store.
type ProductStore interface {
	List(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id uint64) (model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, id uint64, name string, description *string, price float64) error
	Delete(ctx context.Context, id uint64) error
}

// ImageStore persists and removes product images.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (upload.Saved, error)
	Remove(ref string) error
}

// EventPublisher receives catalog events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.CatalogEvent) error
}

// CatalogService implements the product operations.
type CatalogService struct {
	products ProductStore
	images   ImageStore
	events   EventPublisher // optional
	log      zerolog.Logger

	// background runs work that must not hold up the response.
	background func(func())
}

// NewCatalogService wires the stores. events may be nil.
func NewCatalogService(products ProductStore, images ImageStore, events EventPublisher, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		products:   products,
		images:     images,
		events:     events,
		log:        log,
		background: func(f func()) { go f() },
	}
}

// ProductInput holds the raw editable fields as received from a form or
// JSON body.
type ProductInput struct {
	Name        string
	Price       string
	Description string
}

type validProduct struct {
	name        string
	price       float64
	description *string
}

func (in ProductInput) validate() (validProduct, error) {
	name := strings.TrimSpace(in.Name)
	rawPrice := strings.TrimSpace(in.Price)
	if name == "" || rawPrice == "" {
		return validProduct{}, invalid("product name and price are required")
	}
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return validProduct{}, err
	}
	v := validProduct{name: name, price: price}
	if d := strings.TrimSpace(in.Description); d != "" {
		v.description = &d
	}
	return v, nil
}

// ParsePrice accepts a finite, non-negative decimal that fits DECIMAL(10,2).
func ParsePrice(s string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, invalid("price must be a number")
	}
	if p < 0 {
		return 0, invalid("price must not be negative")
	}
	if p > maxPrice {
		return 0, invalid("price is too large")
	}
	return p, nil
}

// List returns every product, newest first.
func (s *CatalogService) List(ctx context.Context) ([]model.Product, error) {
	return s.products.List(ctx)
}

// Get returns one product or repository.ErrNotFound.
func (s *CatalogService) Get(ctx context.Context, id uint64) (model.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Create stores the optional image first, then inserts the row. If the input
// turns out invalid or the insert fails, the stored image is removed before
// returning.
func (s *CatalogService) Create(ctx context.Context, actorID uint64, in ProductInput, image *multipart.FileHeader) (model.Product, error) {
	var saved *upload.Saved
	if image != nil {
		sv, err := s.images.Save(image)
		if err != nil {
			metrics.UploadsTotal.WithLabelValues("rejected").Inc()
			if errors.Is(err, upload.ErrUnsupportedType) || errors.Is(err, upload.ErrTooLarge) {
				return model.Product{}, invalid(err.Error())
			}
			return model.Product{}, fmt.Errorf("store image: %w", err)
		}
		metrics.UploadsTotal.WithLabelValues("stored").Inc()
		saved = &sv
	}

	v, err := in.validate()
	if err != nil {
		s.discard(saved)
		return model.Product{}, err
	}

	p := &model.Product{Name: v.name, Description: v.description, Price: v.price}
	if saved != nil {
		ref := saved.Ref
		p.ImageURL = &ref
	}
	if err := s.products.Create(ctx, p); err != nil {
		s.discard(saved)
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	metrics.CatalogMutationsTotal.WithLabelValues("created").Inc()
	s.publish(queue.ProductCreated, *p, actorID)
	return *p, nil
}

// Update rewrites name, price and description. The image reference is never
// changed here.
func (s *CatalogService) Update(ctx context.Context, actorID, id uint64, in ProductInput) (model.Product, error) {
	v, err := in.validate()
	if err != nil {
		return model.Product{}, err
	}
	if err := s.products.Update(ctx, id, v.name, v.description, v.price); err != nil {
		return model.Product{}, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("updated").Inc()
	s.publish(queue.ProductUpdated, p, actorID)
	return p, nil
}

// Delete removes the row and then, in the background, the stored image.
// Image removal failures are logged and never retried.
func (s *CatalogService) Delete(ctx context.Context, actorID, id uint64) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("deleted").Inc()

	if ref, ok := p.StoredImage(); ok {
		s.background(func() {
			if err := s.images.Remove(ref); err != nil {
				s.log.Error().Err(err).Str("image", ref).Uint64("product_id", id).Msg("remove product image failed")
				return
			}
			s.log.Info().Str("image", ref).Uint64("product_id", id).Msg("product image removed")
		})
	}
	s.publish(queue.ProductDeleted, p, actorID)
	return nil
}

// discard removes an image written for a request that did not produce a row.
func (s *CatalogService) discard(saved *upload.Saved) {
	if saved == nil {
		return
	}
	if err := s.images.Remove(saved.Ref); err != nil {
		s.log.Error().Err(err).Str("image", saved.Ref).Msg("remove orphaned upload failed")
		return
	}
	metrics.UploadsTotal.WithLabelValues("orphan_removed").Inc()
}

func (s *CatalogService) publish(kind string, p model.Product, actorID uint64) {
	if s.events == nil {
		return
	}
	ev := queue.CatalogEvent{
		Kind:       kind,
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if p.ImageURL != nil {
		ev.ImageURL = *p.ImageURL
	}
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("kind", kind).Uint64("product_id", p.ID).Msg("publish catalog event failed")
		}
	})
}
