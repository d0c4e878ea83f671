package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/mazensapp/visitlog/internal/client/client"
	"github.com/mazensapp/visitlog/internal/client/config"
	"github.com/mazensapp/visitlog/internal/client/services"
	"github.com/mazensapp/visitlog/internal/logging"
	"github.com/mazensapp/visitlog/internal/netx"
)

// App bundles the wired client: configuration, the local store, the HTTP
// API, the mode switch and the services on top of them. Subcommands open
// one App, use it and close it.
type App struct {
	Config *config.Config
	Repos  *client.Repositories
	API    client.Client
	Mode   services.ModeProvider
	Sync   *services.SyncService
	Visits *services.VisitService
	Brands *services.BrandService
	Log    logging.Logger
}

func openApp(ctx context.Context, opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.ServerBaseURL != "" {
		cfg.ServerBaseURL = opts.ServerBaseURL
	}
	if opts.DatabasePath != "" {
		cfg.DatabasePath = opts.DatabasePath
	}
	if opts.Offline {
		cfg.ForceOffline = true
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := logging.NewTextLogger(os.Stderr, level)

	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	api := client.NewHTTPClient(cfg.ServerBaseURL, client.StaticToken(cfg.AuthToken))
	mode := modeFor(ctx, cfg)

	return &App{
		Config: cfg,
		Repos:  repos,
		API:    api,
		Mode:   mode,
		Sync:   services.NewSyncService(repos, api, mode, log),
		Visits: services.NewVisitService(repos, api, mode, log),
		Brands: services.NewBrandService(repos, api, mode, log),
		Log:    log,
	}, nil
}

// modeFor picks the offline switch: forced offline from config, otherwise
// a fresh reachability probe of the server's ping endpoint per check. The
// probe runs under the command context so cancellation cuts it short.
func modeFor(ctx context.Context, cfg *config.Config) services.ModeProvider {
	if cfg.ForceOffline {
		return services.AlwaysOffline
	}
	pingURL := cfg.ServerBaseURL + "/ping"
	interval := cfg.OnlineCheckInterval
	return services.ModeFunc(func() bool {
		return !netx.Probe(ctx, pingURL, interval)
	})
}

func (a *App) Close() error {
	return a.Repos.Close()
}
