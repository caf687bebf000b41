package collection

import (
	"slices"
	"time"

	"github.com/Tiliavir/lma/internal/model"
)

// Blocks is the store of timeline blocks.
type Blocks = Store[model.Block, model.BlockInput]

// Notes is the store of notes.
type Notes = Store[model.Note, model.NoteInput]

// SortedByDate returns blocks ordered by start date, earliest first.
func SortedByDate(blocks []model.Block) []model.Block {
	out := slices.Clone(blocks)
	slices.SortStableFunc(out, func(a, b model.Block) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return out
}

// Between returns the blocks starting in [from, to], ordered by start date.
func Between(blocks []model.Block, from, to time.Time) []model.Block {
	var out []model.Block
	for _, b := range SortedByDate(blocks) {
		if !b.StartDate.Before(from) && !b.StartDate.After(to) {
			out = append(out, b)
		}
	}
	return out
}
