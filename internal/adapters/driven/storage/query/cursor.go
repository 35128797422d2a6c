package query

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
)

// Cursor iterates over a fixed slice of documents.
type Cursor struct {
	docs []domain.Document
	pos  int
	err  error
}

// Ensure Cursor implements the interface.
var _ driven.Cursor = (*Cursor)(nil)

// NewCursor returns a cursor over docs.
func NewCursor(docs []domain.Document) *Cursor {
	return &Cursor{docs: docs, pos: -1}
}

// Next advances to the next document.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	if c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

// Document returns the current document.
func (c *Cursor) Document() domain.Document {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return nil
	}
	return c.docs[c.pos]
}

// Err returns the error that stopped iteration.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the cursor.
func (c *Cursor) Close(_ context.Context) error {
	c.docs = nil
	return nil
}
