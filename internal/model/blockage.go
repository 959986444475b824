package model

import (
	"time"

	"slotnik/internal/clock"
)

// Blockage is an explicit unavailability window layered on top of working
// hours: a break, maintenance, a meeting. ResourceID nil means the blockage
// applies to every resource of the business.
type Blockage struct {
	ID         int64     `json:"id"`
	PublicID   string    `json:"public_id"`
	ResourceID *int64    `json:"resource_id,omitempty"`
	Date       time.Time `json:"date"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// AppliesTo reports whether the blockage covers the given resource.
func (b *Blockage) AppliesTo(resourceID int64) bool {
	return b.ResourceID == nil || *b.ResourceID == resourceID
}

// OverlapsInterval reports whether the blockage intersects [start, end).
func (b *Blockage) OverlapsInterval(start, end int) bool {
	return clock.Overlaps(b.Start, b.End, start, end)
}

// SameDay reports whether the blockage falls on the given date.
func (b *Blockage) SameDay(date time.Time) bool {
	y1, m1, d1 := b.Date.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
