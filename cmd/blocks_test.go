package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/lma/internal/collection"
	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
	"github.com/Tiliavir/lma/internal/storage"
)

func TestParseBlockTime(t *testing.T) {
	ref := time.Date(2026, 2, 27, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"09:15", time.Date(2026, 2, 27, 9, 15, 0, 0, time.UTC), false},
		{"2026-03-01 14:00", time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), false},
		{" 10:00 ", time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC), false},
		{"tomorrow", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseBlockTime(tt.in, ref, time.UTC)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBlockTime(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseBlockTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriteBlocks(t *testing.T) {
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	task := int64(4)
	blocks := []model.Block{
		{ID: 1, Title: "Inbox", StartDate: day.Add(8 * time.Hour), EndDate: day.Add(8*time.Hour + 30*time.Minute)},
		{ID: 2, Title: "Deep work", Task: &task, StartDate: day.Add(9 * time.Hour), EndDate: day.Add(11 * time.Hour)},
		{ID: 3, Title: "Review", StartDate: day.Add(14 * time.Hour), EndDate: day.Add(15 * time.Hour)},
	}
	done := map[int64]focus.CompletedBlock{1: {Minutes: 28}}

	var buf bytes.Buffer
	writeBlocks(&buf, blocks, 2, done, time.UTC)
	out := buf.String()
	for _, want := range []string{"2026-02-27", "[done 28m]", "task 4  [in progress]", "2h 0m"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	writeBlocks(&buf, nil, 0, nil, time.UTC)
	if !strings.Contains(buf.String(), "No blocks planned.") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func blocksFrom(list func(context.Context) ([]model.Block, error)) *collection.Blocks {
	return collection.New[model.Block, model.BlockInput](collection.Funcs[model.Block, model.BlockInput]{ListFn: list})
}

func TestRefreshedBlocks(t *testing.T) {
	cache, err := storage.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	fresh := []model.Block{{ID: 1, Title: "write", StartDate: day.Add(9 * time.Hour), EndDate: day.Add(10 * time.Hour)}}
	offline := errors.New("offline")
	ctx := context.Background()

	// Nothing cached and the fetch fails: nothing to show.
	b := blocksFrom(func(context.Context) ([]model.Block, error) { return nil, offline })
	_ = b.FetchAll(ctx)
	if err := refreshedBlocks(b, cache); !errors.Is(err, offline) {
		t.Fatalf("empty cache: err = %v, want %v", err, offline)
	}

	// A successful fetch fills the cache.
	b = blocksFrom(func(context.Context) ([]model.Block, error) { return fresh, nil })
	_ = b.FetchAll(ctx)
	if err := refreshedBlocks(b, cache); err != nil {
		t.Fatal(err)
	}
	cached, err := cache.LoadBlocks()
	if err != nil || len(cached) != 1 {
		t.Fatalf("cache = %+v, %v", cached, err)
	}

	// Offline again: the cached blocks are shown.
	b = blocksFrom(func(context.Context) ([]model.Block, error) { return nil, offline })
	b.Restore(cached)
	_ = b.FetchAll(ctx)
	if err := refreshedBlocks(b, cache); err != nil {
		t.Fatalf("cached fallback: err = %v", err)
	}
	if items := b.Items(); len(items) != 1 || items[0].Title != "write" {
		t.Errorf("items = %+v", items)
	}
}
