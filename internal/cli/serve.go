// serve.go implements the "namegate serve" command: the long-running
// HTTP API wired to the cache, the history store, the browser driver
// and the suggestion model.
package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shivansh-labs/namegate/internal/cache"
	"github.com/shivansh-labs/namegate/internal/config"
	"github.com/shivansh-labs/namegate/internal/history"
	"github.com/shivansh-labs/namegate/internal/llm"
	"github.com/shivansh-labs/namegate/internal/model"
	"github.com/shivansh-labs/namegate/internal/portal"
	"github.com/shivansh-labs/namegate/internal/server"
	"github.com/shivansh-labs/namegate/internal/webdriver"
)

// localDriverPort is where a geckodriver child process listens when no
// remote WebDriver endpoint is configured.
const localDriverPort = 4444

// NewServeCommand creates the "serve" cobra command.
func NewServeCommand() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the name-check HTTP API",
		Long: `Start the HTTP API server.

The server exposes POST /check_name for full browser checks,
POST /conflict-check for analysis of pre-scraped conflict data,
GET /health and GET /history. It shuts down gracefully on SIGINT or
SIGTERM, letting in-flight checks finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), listenAddr)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address override (default from config, :8000)")
	return cmd
}

func runServe(ctx context.Context, listenAddr string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		settings.ListenAddr = listenAddr
	}

	logger := newLogger(settings.LogLevel, settings.LogFormat)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profile, err := portal.LoadProfile(settings.PortalProfile)
	if err != nil {
		return err
	}

	resultCache := cache.New(ctx, settings.RedisURL, settings.CacheTTL, logger)
	defer resultCache.Close()

	var store *history.Store
	if settings.HistoryDB != "" {
		store, err = history.Open(settings.HistoryDB)
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError, "failed to open history database", err)
		}
		defer store.Close()
	}

	driverURL := settings.WebDriverURL
	if driverURL == "" {
		local, err := webdriver.StartLocal(ctx, localDriverPort, logger)
		if err != nil {
			return model.WrapCLIError(model.ExitDriverError, "failed to start local browser driver", err)
		}
		defer local.Stop()
		driverURL = local.URL
	}

	adviser := llm.New(llm.Config{
		APIKey:     settings.OpenAIAPIKey,
		BaseURL:    settings.OpenAIBaseURL,
		ModelFast:  settings.ModelFast,
		ModelSmart: settings.ModelSmart,
	}, logger)

	srv := &server.Server{
		Addr:    settings.ListenAddr,
		Logger:  logger,
		Cache:   resultCache,
		History: store,
		Adviser: adviser,
		Checker: &server.BrowserChecker{
			Driver:        webdriver.New(driverURL),
			Profile:       profile,
			Adviser:       adviser,
			Logger:        logger,
			ScreenshotDir: settings.ScreenshotDir,
		},
		StaticDir: settings.StaticDir,
	}

	if err := srv.Run(ctx); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "http server failed", err)
	}
	return nil
}
