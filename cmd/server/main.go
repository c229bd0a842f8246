package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pickem-tracker/internal/auth"
	"pickem-tracker/internal/board"
	"pickem-tracker/internal/config"
	"pickem-tracker/internal/database"
	"pickem-tracker/internal/handlers"
	"pickem-tracker/internal/logging"
	"pickem-tracker/internal/models"
	"pickem-tracker/internal/reconcile"
	"pickem-tracker/internal/styles"
	"pickem-tracker/internal/websocket"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newServerCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newServerCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve the pick'em scoreboard over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default $PICKEM_CONFIG or ./pickem.yaml)")
	return cmd
}

// serve démarre le serveur et bloque jusqu'à l'annulation de ctx
func serve(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging())
	logger.Info().Msg("=== Pick'em Scoreboard ===")

	store, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialisation DB %s: %w", cfg.DatabasePath, err)
	}
	defer store.Close()
	logger.Info().Str("path", cfg.DatabasePath).Msg("Base de données initialisée")

	source := cfg.Source(&logger)
	if cfg.UsesWorkbook() {
		logger.Info().Str("path", cfg.XLSXPath).Msg("Source : classeur local")
	} else {
		logger.Info().Str("sheet", cfg.SheetID).Msg("Source : Google Sheets")
	}

	manager := board.NewManager(board.Options{
		Source:     source,
		Contest:    cfg.ContestRef(),
		Results:    cfg.ResultsRef(),
		Reconciler: reconcile.New(cfg.Reconcile(), &logger),
		Store:      store,
		Interval:   cfg.RefreshInterval,
		Logger:     &logger,
	})

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	hub := websocket.NewHub(&logger)
	go hub.Run(ctx)

	manager.Subscribe(func(ev board.Event) {
		hub.Broadcast(websocket.DatasetMessage(ev.Snapshot, ev.Err))
	})

	if restored, err := manager.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("Restauration de l'instantané impossible")
	} else if restored {
		logger.Info().Msg("Dernier instantané servi en attendant le premier chargement")
	}

	go manager.Run(ctx)

	verifier := auth.NewVerifier(cfg.AdminTokenHash)
	if !verifier.Enabled() {
		logger.Warn().Msg("admin.token_hash absent : rechargement manuel désactivé")
	}

	wsHandler := websocket.NewHandler(hub, func() *models.WSMessage {
		snap := manager.Current()
		if snap == nil {
			return nil
		}
		return websocket.DatasetMessage(snap, nil)
	})

	router, err := handlers.NewRouter(handlers.Dependencies{
		Board:     manager,
		Styler:    styles.New(styles.NewStore(), nil),
		WebSocket: wsHandler,
		Admin:     auth.NewMiddleware(verifier, &logger).RequireAdmin,
		Clients:   hub.ClientCount,
		Page: handlers.PageConfig{
			Title:           cfg.PageTitle,
			Subtitle:        cfg.PageSubtitle,
			RefreshInterval: cfg.RefreshInterval,
		},
		Logger: &logger,
	})
	if err != nil {
		return fmt.Errorf("chargement des gabarits: %w", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Démarrage sur http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("Arrêt en cours...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("arrêt forcé: %w", err)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("serveur: %w", err)
	default:
	}
	logger.Info().Msg("Arrêté proprement")
	return nil
}
