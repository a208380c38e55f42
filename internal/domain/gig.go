package domain

import "time"

// Gig is a normalized marketplace listing.
type Gig struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	Seller       string    `json:"seller"`
	Price        float64   `json:"price"`
	Rating       float64   `json:"rating"`
	Reviews      int       `json:"reviews"`
	DeliveryDays int       `json:"delivery_days"`
	Featured     bool      `json:"featured"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToRecord converts the gig back to its import shape.
func (g *Gig) ToRecord() RawRecord {
	rec := RawRecord{
		"kind":          string(KindGig),
		"id":            g.ID,
		"slug":          g.Slug,
		"title":         g.Title,
		"description":   g.Description,
		"category":      g.Category,
		"image":         g.Image,
		"seller":        g.Seller,
		"price":         g.Price,
		"rating":        g.Rating,
		"reviews":       g.Reviews,
		"delivery_days": g.DeliveryDays,
		"featured":      g.Featured,
		"tags":          stringsToAny(g.Tags),
	}
	if !g.CreatedAt.IsZero() {
		rec["created_at"] = g.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return rec
}
