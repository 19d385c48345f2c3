package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leakguard-io/leakguard/internal/lifecycle"
	"github.com/leakguard-io/leakguard/internal/notify"
	"github.com/leakguard-io/leakguard/internal/server"
	"github.com/leakguard-io/leakguard/pkg/shared/config"
	"github.com/leakguard-io/leakguard/pkg/shared/httpclient"
	"github.com/leakguard-io/leakguard/pkg/shared/logger"
)

// RunOptionsServe holds the arguments for the serve command.
type RunOptionsServe struct {
	Addr        string
	StoragePath string
}

var (
	AppConfig         *config.Config
	serveOptions      RunOptionsServe
	exampleServeUsage = `  # Running the ingestion server on the configured address
  leakguard serve

  # Running with an explicit address and a persistent store
  leakguard serve --addr :8080 --storage /var/lib/leakguard/store.json`
)

// ServeCmd represents the serve command.
var ServeCmd = &cobra.Command{
	Use:                   "serve [--addr ADDR] [--storage PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleServeUsage,
	Short:                 "Runs the findings ingestion and lifecycle API server",
	RunE:                  runServeCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runServeCommand executes the serve command.
func runServeCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-serve")

	addr := serveOptions.Addr
	if addr == "" {
		addr = AppConfig.Server.Addr
	}
	storagePath := serveOptions.StoragePath
	if storagePath == "" {
		storagePath = AppConfig.Server.StoragePath
	}

	var store lifecycle.Store
	if storagePath != "" {
		fileStore, err := lifecycle.OpenFileStore(storagePath)
		if err != nil {
			log.Error("failed to open store", "path", storagePath, "error", err)
			return err
		}
		store = fileStore
		log.Info("using file-backed store", "path", storagePath)
	} else {
		store = lifecycle.NewMemoryStore()
		log.Warn("using in-memory store; findings will not survive a restart")
	}

	notifier := notify.NewSlackNotifier(
		httpclient.InitializeRestyClient(log, AppConfig),
		AppConfig.Server.SlackWebhookURL,
		log,
	)

	service := lifecycle.NewService(store, notifier, log, AppConfig.Server.MaxBatchSize)
	srv := server.New(service, log, addr, AppConfig.Server.AdminToken)

	if AppConfig.Server.AdminToken == "" {
		log.Warn("no admin token configured; project creation is disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server failed", "error", err)
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

// Initialize flags for the serve command.
func init() {
	ServeCmd.Flags().StringVar(&serveOptions.Addr, "addr", "", "Address to listen on; defaults to the configured server address.")
	ServeCmd.Flags().StringVar(&serveOptions.StoragePath, "storage", "", "Path to the JSON store snapshot; empty means in-memory only.")
	ServeCmd.Flags().BoolP("help", "h", false, "Show help for the serve command.")
}
