package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/hawkdove/internal/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored index over HTTP",
	Long: `Serve exposes the tables saved by 'hawkdove build --sqlite' as a read-only JSON API:
  GET /api/index?freq=monthly|quarterly
  GET /api/latest
  GET /api/series/{statement|minutes}?freq=daily|monthly|quarterly
  GET /healthz

Example:
  hawkdove serve --sqlite index.db --addr :8090`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd, serveFlagKeys) },
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().String("sqlite", "", "sqlite database written by build")
}

var serveFlagKeys = map[string]string{
	"server.addr":   "addr",
	"output.sqlite": "sqlite",
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Output.SQLite == "" {
		return fmt.Errorf("no database configured: pass --sqlite or set output.sqlite")
	}
	if _, err := os.Stat(cfg.Output.SQLite); err != nil {
		return fmt.Errorf("database %s: %w", cfg.Output.SQLite, err)
	}

	s, err := store.Open(cfg.Output.SQLite)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           store.NewRouter(s, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving index", zap.String("addr", cfg.Server.Addr), zap.String("db", cfg.Output.SQLite))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
