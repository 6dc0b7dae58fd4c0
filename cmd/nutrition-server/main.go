package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ehr/nutrition/internal/config"
	"github.com/ehr/nutrition/internal/domain/catalog"
	"github.com/ehr/nutrition/internal/domain/nutrition"
	"github.com/ehr/nutrition/internal/domain/prescription"
	"github.com/ehr/nutrition/internal/platform/db"
	"github.com/ehr/nutrition/internal/platform/middleware"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nutrition-server",
		Short:        "Nutrition therapy prescription server",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(calculateCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func loadConfig(needDB bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if needDB {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func poolOptions(cfg *config.Config) db.Options {
	return db.Options{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: 10 * time.Second,
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			migrator, closeFn, err := newMigrator(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := migrator.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			migrator, closeFn, err := newMigrator(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func newMigrator(ctx context.Context, dir string) (*db.Migrator, func(), error) {
	cfg, err := loadConfig(true)
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, poolOptions(cfg))
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, os.DirFS(dir), cfg.Logger()), pool.Close, nil
}

func printStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

type calculateOptions struct {
	catalogPath string
	draftPath   string
	weightKg    float64
	heightCm    float64
	format      string
}

func calculateCmd() *cobra.Command {
	var opts calculateOptions
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compute a draft offline from JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			return runCalculate(cmd.OutOrStdout(), opts, cfg.Engine())
		},
	}
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "Catalog JSON file")
	cmd.Flags().StringVar(&opts.draftPath, "draft", "", "Draft JSON file")
	cmd.Flags().Float64Var(&opts.weightKg, "weight", 0, "Patient weight in kg")
	cmd.Flags().Float64Var(&opts.heightCm, "height", 0, "Patient height in cm")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.MarkFlagRequired("catalog")
	cmd.MarkFlagRequired("draft")
	return cmd
}

func runCalculate(w io.Writer, opts calculateOptions, engineCfg nutrition.Config) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}
	snap, err := catalog.LoadFile(opts.catalogPath)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(opts.draftPath)
	if err != nil {
		return fmt.Errorf("read draft file: %w", err)
	}
	var draft nutrition.Draft
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&draft); err != nil {
		return fmt.Errorf("decode draft file: %w", err)
	}

	var patient nutrition.Patient
	if opts.weightKg > 0 {
		patient.WeightKg = &opts.weightKg
	}
	if opts.heightCm > 0 {
		patient.HeightCm = &opts.heightCm
	}

	res := nutrition.Compute(&draft, snap, patient, engineCfg)
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = io.WriteString(w, res.RecordText)
	return err
}

func runServer() error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, poolOptions(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	catalogSvc := catalog.NewService(catalog.NewRepoPG(pool), logger)
	if _, err := catalogSvc.Reload(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to load catalog")
		return err
	}
	if cfg.CatalogReloadInterval > 0 {
		go catalogSvc.Run(ctx, cfg.CatalogReloadInterval)
	}

	rxSvc := prescription.NewService(prescription.NewRepo(pool), catalogSvc, cfg.Engine(), logger)
	rxSvc.SetTransactor(db.NewTransactor(pool))

	e := newServer(cfg, logger)
	apiV1 := e.Group("/api/v1")
	apiV1.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStoreWithConfig(
		echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimitRPS),
			Burst:     cfg.RateLimitBurst,
			ExpiresIn: 3 * time.Minute,
		},
	)))
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)
	prescription.NewHandler(rxSvc).RegisterRoutes(apiV1)
	e.GET("/health", db.HealthHandler(pool))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the echo instance with the global middleware chain.
func newServer(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.HSTSMaxAge))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.RequestIDHeader},
	}))
	return e
}
