package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/services"
)

const testCollection = "Polytopes.Lattice.SmoothReflexive"

type testEnv struct {
	remote *memory.Database
	mirror *memory.Database
	config *memory.ConfigStore
}

// setupTestServices installs services over in-memory stores and returns a
// cleanup function restoring the previous state.
func setupTestServices() (*testEnv, func()) {
	env := &testEnv{
		remote: memory.NewDatabase(),
		mirror: memory.NewDatabase(),
		config: memory.NewConfigStore(),
	}
	seed(env.remote)

	prevServices, prevOwned, prevFactory := services, owned, factory
	SetServices(&Services{
		Catalog:    services.NewCatalogService(env.remote),
		Collection: services.NewCollectionService(env.remote),
		Conversion: services.NewConversionService(env.remote, nil),
		Mirror:     services.NewMirrorService(env.remote, env.mirror),
		Settings:   services.NewSettingsService(env.config),
	})

	return env, func() {
		services, owned, factory = prevServices, prevOwned, prevFactory
		resetFlags()
	}
}

func seed(db *memory.Database) {
	db.Insert("_sectionInfo.Polytopes", domain.Document{
		"_id":          "Polytopes.2.1",
		"description":  "polytopes",
		"sectionDepth": int32(1),
	})
	db.Insert("_sectionInfo.Polytopes.Lattice", domain.Document{
		"_id":         "Polytopes.Lattice.2.1",
		"description": "lattice polytopes",
		"maintainer":  map[string]any{"name": "Andreas Paffenholz", "email": "paffenholz@mathematik.tu-darmstadt.de"},
	})
	db.Insert("_sectionInfo.Matroids", domain.Document{"_id": "Matroids.2.1"})
	db.Insert("_collectionInfo."+testCollection, domain.Document{
		"_id":         testCollection + ".2.1",
		"description": "smooth reflexive lattice polytopes",
		"author":      []any{map[string]any{"name": "Mikkel Øbro"}},
	})
	db.Insert("_collectionInfo.Matroids.Small", domain.Document{"_id": "Matroids.Small.2.1"})
	db.Insert(testCollection,
		domain.Document{
			"_id":        "F.2D.0000",
			"DIM":        int64(2),
			"N_VERTICES": int64(3),
			"VERTICES":   []any{[]any{1, -1, -1}, []any{1, 1, 0}, []any{1, 0, 1}},
			"_attrs": map[string]any{
				"VERTICES": map[string]any{"_type": "Matrix<Integer>"},
			},
		},
		domain.Document{
			"_id":        "F.2D.0001",
			"DIM":        int64(2),
			"N_VERTICES": int64(4),
		},
		domain.Document{
			"_id":        "F.3D.0000",
			"DIM":        int64(3),
			"N_VERTICES": int64(4),
		},
	)
}

func resetFlags() {
	verbose, configDir, offline, passwordPrompt = false, "", false, false
	outputFormat = string(formatText)
	sectionsRecursive = false
	queryFilter, querySort, queryProjection = "", "", ""
	querySkip, queryLimit, queryBatchSize = 0, 0, 0
	convertType, convertAffine = "", false
	mirrorFilter, mirrorLimit, mirrorBatchSize = "", 0, 0
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
