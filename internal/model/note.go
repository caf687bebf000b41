package model

import "time"

// Note is a free-form note.
type Note struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	BackgroundColor string    `json:"background_color"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// NoteInput carries the writable note fields. Nil fields are left untouched
// on update.
type NoteInput struct {
	Title           *string `json:"title,omitempty"`
	Content         *string `json:"content,omitempty"`
	BackgroundColor *string `json:"background_color,omitempty"`
}

// GetID implements collection.Item.
func (n Note) GetID() int64 { return n.ID }
