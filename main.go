package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vainnor/freq-bridge/api"
	"github.com/vainnor/freq-bridge/bus"
	"github.com/vainnor/freq-bridge/config"
	"github.com/vainnor/freq-bridge/db"
	"github.com/vainnor/freq-bridge/discord"
	"github.com/vainnor/freq-bridge/link"
	"github.com/vainnor/freq-bridge/mover"
	"github.com/vainnor/freq-bridge/oauth"
	"github.com/vainnor/freq-bridge/tracker"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect the bot to Discord
	session, err := discord.Connect(cfg.BotToken, cfg.Servers)
	if err != nil {
		log.Fatalf("Failed to connect to Discord: %v", err)
	}
	defer session.Close()

	// Wire the account linking flow
	links := db.LinkStore{}
	pending := link.NewPendingStore(cfg.PendingTTL)
	exchanger := oauth.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI)
	serverIDs := make([]string, 0, len(cfg.Servers))
	for _, server := range cfg.Servers {
		serverIDs = append(serverIDs, server.ServerID)
	}
	mgr := link.NewManager(pending, links, exchanger, session, serverIDs)

	mv := mover.New(links, session, cfg.Servers)

	// Start the liveness monitor
	var onEvict func(clientID string)
	if cfg.EvictMoveToLounge {
		onEvict = mv.MoveToLounge
	}
	t := tracker.New(cfg.StaleThreshold, onEvict)
	go t.Run(ctx, cfg.LivenessInterval)

	// Connect to the event hub
	busClient, err := bus.Connect(ctx, cfg.HubURL, mv, t)
	if err != nil {
		log.Fatalf("Failed to connect to hub: %v", err)
	}
	defer busClient.Stop()

	// Set up API routes
	router := api.NewRouter(mgr, t)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	go func() {
		log.Printf("Starting API server on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}
}
