// Package cli implements the polydb command line.
//
// Commands reach polyDB through the driving ports in Services. The
// services are built on first use by the Factory installed with
// SetFactory, so commands that never touch the database (version,
// settings) do not need a reachable server.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Annotations marking what a command needs from the Factory.
const (
	annotationMirror     = "polydb/mirror"
	annotationNoDatabase = "polydb/no-database"
)

// Options carries the global flags to the Factory.
type Options struct {
	// ConfigDir overrides ~/.polydb.
	ConfigDir string

	// Offline serves queries from the local mirror instead of the server.
	Offline bool

	// Mirror is set when the command needs the local mirror store.
	Mirror bool

	// NoDatabase is set when the command needs no database at all.
	NoDatabase bool

	// Password replaces the configured password when non-empty.
	Password string
}

// Services are the driving ports used by the commands.
type Services struct {
	Catalog    driving.CatalogService
	Collection driving.CollectionService
	Conversion driving.ConversionService
	Mirror     driving.MirrorService
	Settings   driving.SettingsService

	// ApplySettings updates open adapters after the stored settings change
	// during a long-running command. May be nil.
	ApplySettings func(settings *domain.AppSettings)

	// Close releases the adapters behind the services. May be nil.
	Close func(ctx context.Context) error
}

// Factory builds Services for a command invocation.
type Factory func(ctx context.Context, opts Options) (*Services, error)

var (
	factory  Factory
	services *Services
	owned    bool
)

// Global flags.
var (
	verbose        bool
	configDir      string
	offline        bool
	outputFormat   string
	passwordPrompt bool
)

var rootCmd = &cobra.Command{
	Use:   "polydb",
	Short: "Query the polyDB database of discrete geometry objects",
	Long: `polydb queries polyDB, the database of polytopes, matroids, tropical
objects and manifolds maintained by the polymake project.

Documents are returned as JSON. Properties can be converted into typed
values (matrices, vectors, sets, maps) using the type signatures stored
with each document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		logger.SetOutput(cmd.ErrOrStderr())
		if _, err := parseFormat(outputFormat); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "log requests and decisions to stderr")
	pf.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.polydb)")
	pf.BoolVar(&offline, "offline", false, "query the local mirror instead of the server")
	pf.StringVarP(&outputFormat, "output", "o", string(formatText), "output format: text, json or yaml")
	pf.BoolVar(&passwordPrompt, "password-prompt", false, "read the database password from the terminal")
}

// SetFactory installs the function that builds services on first use.
func SetFactory(f Factory) {
	factory = f
}

// SetServices installs ready-made services, bypassing the factory.
func SetServices(s *Services) {
	services = s
	owned = false
}

// Execute runs the root command and releases any services it built.
func Execute(ctx context.Context) error {
	defer closeServices(ctx)
	return rootCmd.ExecuteContext(ctx)
}

func closeServices(ctx context.Context) {
	if !owned || services == nil {
		return
	}
	if services.Close != nil {
		if err := services.Close(ctx); err != nil {
			logger.Warn("Closing connections: %v", err)
		}
	}
	services = nil
	owned = false
}

// load returns the services, building them with the factory if needed.
func load(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if factory == nil {
		return nil, errors.New("no database configured")
	}

	opts := Options{
		ConfigDir:  configDir,
		Offline:    offline,
		Mirror:     cmd.Annotations[annotationMirror] == "true",
		NoDatabase: cmd.Annotations[annotationNoDatabase] == "true",
	}
	if passwordPrompt && !opts.NoDatabase {
		cmd.PrintErr("Password: ")
		opts.Password = readPassword()
		cmd.PrintErrln()
	}

	s, err := factory(commandContext(cmd), opts)
	if err != nil {
		return nil, err
	}
	services, owned = s, true
	return s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func catalogService(cmd *cobra.Command) (driving.CatalogService, error) {
	s, err := load(cmd)
	if err != nil {
		return nil, err
	}
	if s.Catalog == nil {
		return nil, errors.New("catalog service not configured")
	}
	return s.Catalog, nil
}

func collectionService(cmd *cobra.Command) (driving.CollectionService, error) {
	s, err := load(cmd)
	if err != nil {
		return nil, err
	}
	if s.Collection == nil {
		return nil, errors.New("collection service not configured")
	}
	return s.Collection, nil
}

func conversionService(cmd *cobra.Command) (driving.ConversionService, error) {
	s, err := load(cmd)
	if err != nil {
		return nil, err
	}
	if s.Conversion == nil {
		return nil, errors.New("conversion service not configured")
	}
	return s.Conversion, nil
}

func mirrorService(cmd *cobra.Command) (driving.MirrorService, error) {
	s, err := load(cmd)
	if err != nil {
		return nil, err
	}
	if s.Mirror == nil {
		return nil, errors.New("mirror service not configured")
	}
	return s.Mirror, nil
}

func settingsService(cmd *cobra.Command) (driving.SettingsService, error) {
	s, err := load(cmd)
	if err != nil {
		return nil, err
	}
	if s.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return s.Settings, nil
}

// wrap adds the command name to errors returned by services.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
