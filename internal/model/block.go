package model

import "time"

// Block is a planned interval on the user's timeline.
type Block struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Task      *int64    `json:"task"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Color     string    `json:"color,omitempty"`
}

// BlockInput carries the writable block fields.
type BlockInput struct {
	Title     *string    `json:"title,omitempty"`
	Task      *int64     `json:"task,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Color     *string    `json:"color,omitempty"`
}

// GetID implements collection.Item.
func (b Block) GetID() int64 { return b.ID }

// Planned returns the planned length of the block.
func (b Block) Planned() time.Duration {
	if b.EndDate.Before(b.StartDate) {
		return 0
	}
	return b.EndDate.Sub(b.StartDate)
}
