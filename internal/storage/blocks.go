package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Tiliavir/lma/internal/model"
)

// SaveBlocks replaces the cached timeline blocks.
func (s *Store) SaveBlocks(blocks []model.Block) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM blocks`); err != nil {
		return fmt.Errorf("storage error clearing blocks: %w", err)
	}
	for _, b := range blocks {
		_, err = tx.Exec(
			`INSERT INTO blocks (id, title, task, start_date, end_date, color) VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, b.Title, b.Task, b.StartDate.Format(timeLayout), b.EndDate.Format(timeLayout), b.Color,
		)
		if err != nil {
			return fmt.Errorf("storage error saving block %d: %w", b.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("storage error committing blocks: %w", err)
	}
	return nil
}

// LoadBlocks returns the cached timeline blocks ordered by start date.
func (s *Store) LoadBlocks() ([]model.Block, error) {
	rows, err := s.db.Query(
		`SELECT id, title, task, start_date, end_date, color FROM blocks ORDER BY start_date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage error listing blocks: %w", err)
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		var (
			b          model.Block
			task       sql.NullInt64
			start, end string
		)
		if err := rows.Scan(&b.ID, &b.Title, &task, &start, &end, &b.Color); err != nil {
			return nil, fmt.Errorf("storage error scanning block: %w", err)
		}
		b.Task = nullID(task)
		if b.StartDate, err = time.Parse(timeLayout, start); err != nil {
			return nil, fmt.Errorf("storage error parsing start_date of block %d: %w", b.ID, err)
		}
		if b.EndDate, err = time.Parse(timeLayout, end); err != nil {
			return nil, fmt.Errorf("storage error parsing end_date of block %d: %w", b.ID, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
