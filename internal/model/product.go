package model

import (
	"strings"
	"time"
)

// UploadsPrefix is the URL prefix under which stored product images are served.
const UploadsPrefix = "/uploads/"

// Product represents a row in the `products` table. Description and ImageURL
// are nullable. ImageURL either points at a stored upload (/uploads/...) or at
// an external URL used by seeded rows.
type Product struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StoredImage returns the image reference when it points at a stored upload.
func (p Product) StoredImage() (string, bool) {
	if p.ImageURL == nil || !strings.HasPrefix(*p.ImageURL, UploadsPrefix) {
		return "", false
	}
	return *p.ImageURL, true
}
