package driving

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// MirrorService copies remote collections into the local mirror.
type MirrorService interface {
	// Mirror copies collection and its metadata document.
	Mirror(ctx context.Context, collection string, opts domain.MirrorOptions) (*domain.MirrorReport, error)

	// Collections returns the names of all mirrored collections.
	Collections(ctx context.Context) ([]string, error)
}
