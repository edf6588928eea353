package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/services"
	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/desertthunder/audiobox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	catalog  services.Catalog
	previews services.PreviewResolver
	stack    *services.CatalogStack

	engineOnce sync.Once
	engine     *tasks.CatalogEngine
	engineErr  error
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalog and Previews replace the Spotify-backed stack built from config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Catalog    services.Catalog
	Previews   services.PreviewResolver
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		catalog:    opts.Catalog,
		previews:   opts.Previews,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, catalogCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Load reads the .env file and the config file named by the root flags, then applies environment overrides.
//
// A missing config file falls back to the embedded defaults.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if err := shared.LoadEnvFile(cmd.String("env-file")); err != nil {
		return ctx, err
	}

	r.configPath = cmd.String("config")
	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return ctx, err
		}
		r.logger.Debug("loaded config", "path", r.configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := config.ApplyEnv(nil); err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Engine returns the catalog workflows, building the Spotify-backed stack on first use.
func (r *Runner) Engine() (*tasks.CatalogEngine, error) {
	r.engineOnce.Do(func() {
		catalog, previews := r.catalog, r.previews
		if catalog == nil {
			sp := r.config.Credentials.Spotify
			if !sp.Complete() {
				r.engineErr = fmt.Errorf("%w: set credentials.spotify in %s or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET",
					shared.ErrMissingCredentials, r.configPath)
				return
			}

			stack, err := services.NewCatalogStack(r.config, r.httpClient, r.logger)
			if err != nil {
				r.engineErr = err
				return
			}
			r.stack = stack
			catalog, previews = stack.Catalog, stack.Previews
		}

		policy := tasks.ExcludeUnplayable
		if r.config.Catalog.IncludeUnplayable {
			policy = tasks.IncludeUnplayable
		}

		r.engine = tasks.NewCatalogEngine(catalog, previews, tasks.EngineOptions{
			Concurrency: r.config.Catalog.Concurrency,
			Unplayable:  policy,
			Logger:      shared.WithLogger(r.logger, "component", "workflows"),
		})
	})
	return r.engine, r.engineErr
}

// probe reports whether the catalog credential can be obtained.
func (r *Runner) probe(ctx context.Context) error {
	if r.stack == nil {
		return nil
	}
	_, err := r.stack.Credentials.Token(ctx)
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
