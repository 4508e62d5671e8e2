package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizbook/cmd/app"
	"quizbook/internal/config"
	"quizbook/internal/database"
)

var rootCmd = &cobra.Command{
	Use:   "quizbook",
	Short: "Quizbook API server",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Refresh token maintenance",
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired refresh tokens",
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

var skipMigrations bool

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "start without applying migrations")

	tokensCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, tokensCmd)
}

func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if !skipMigrations {
		if err := a.DB.RunMigrations(cfg.DB.MigrationsDir); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	color.New(color.FgGreen).Printf("server listening on %s\n", server.Addr)
	log.Printf("database: %s", cfg.DB.DbNAME)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	return db.RunMigrations(cfg.DB.MigrationsDir)
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.NewTokensOnly(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Services.Token.PruneExpired(cmd.Context())
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Printf("pruned %d expired refresh tokens\n", n)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
