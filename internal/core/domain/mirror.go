package domain

import "time"

// MirrorOptions controls copying a collection into the local mirror.
type MirrorOptions struct {
	// Filter restricts which documents are copied.
	Filter map[string]any

	// Limit caps the number of documents copied. Zero copies everything.
	Limit int64

	// BatchSize is the number of documents written per transaction.
	BatchSize int
}

// MirrorReport summarises one mirror run.
type MirrorReport struct {
	// Collection is the mirrored collection.
	Collection string

	// BatchID identifies the run; every document written carries it.
	BatchID string

	// Documents is the number of documents written.
	Documents int

	// WithInfo reports whether the collection's metadata document was copied.
	WithInfo bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r MirrorReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
