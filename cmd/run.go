package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"luckydraw/bot"
	"luckydraw/config"
	"luckydraw/database"
	"luckydraw/events"
	"luckydraw/metrics"
	"luckydraw/models"
	"luckydraw/repository"
	"luckydraw/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	configureLogging(cfg)

	log.Info("Starting lucky draw bot...")

	// Apply pending migrations before anything touches the schema
	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	displayMode, err := models.ParseDisplayMode(cfg.DisplayMode)
	if err != nil {
		return fmt.Errorf("invalid display mode: %w", err)
	}
	drawService := service.NewDrawService(
		uowFactory,
		service.NewPrizeStore(uowFactory),
		service.NewAllowListGate(cfg.AdminDiscordIDs),
		service.NewDrawEngine(nil),
		eventBus,
		service.DrawServiceConfig{
			DefaultDisplayMode: displayMode,
			LowStockThreshold:  cfg.LowStockThreshold,
		},
	)
	if err := drawService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start draw service: %w", err)
	}
	if len(cfg.AdminDiscordIDs) == 0 {
		log.Warn("ADMIN_DISCORD_IDS is empty, nobody can run a draw")
	}

	// Expose metrics
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = startMetricsServer(cfg.MetricsAddr)
	}

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:            cfg.DiscordToken,
		GuildID:          cfg.DiscordGuildID,
		AdminDiscordIDs:  cfg.AdminDiscordIDs,
		DefaultDrawCount: cfg.DefaultDrawCount,
	}
	revealOpts := service.RevealOptions{SuspenseDelay: cfg.SuspenseDelay}
	discordBot, err := bot.New(botConfig, drawService, revealOpts, eventBus)
	if err != nil {
		drawService.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")

	// Stop taking interactions first so no draw races the final save
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Drain pending inventory saves
	drawService.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error stopping metrics server: %v", err)
		}
	}

	// Let in-flight event handlers (admin DMs) finish
	done := make(chan struct{})
	go func() {
		eventBus.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info("Shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	}

	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Metrics listening on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server stopped: %v", err)
		}
	}()

	return server
}
