package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/hands-on/backend/internal/archive"
	"github.com/zhouzirui/hands-on/backend/internal/config"
	"github.com/zhouzirui/hands-on/backend/internal/handler"
	"github.com/zhouzirui/hands-on/backend/internal/model/persona"
	"github.com/zhouzirui/hands-on/backend/internal/service/ai"
	"github.com/zhouzirui/hands-on/backend/internal/service/chat"
	"github.com/zhouzirui/hands-on/backend/internal/service/notify"
	"github.com/zhouzirui/hands-on/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	if err := cfg.AI.ResolvePersonaKeys(personaStore.List()); err != nil {
		log.Fatalf("failed to bind persona credentials: %v", err)
	}

	aiService, err := ai.NewService(ctx, personaStore, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}

	convStore, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to initialize conversation store: %v", err)
	}
	defer closeStore()

	if !cfg.Mail.Enabled() {
		log.Println("mail credentials not configured, transcripts will not be emailed")
	}
	notifier := notify.NewNotifier(notify.NewSMTPMailer(cfg.Mail), cfg.Mail)

	opts := chat.Options{DefaultLanguage: cfg.AI.DefaultLanguage}
	if cfg.Archive.Enabled() {
		pgArchive, err := archive.Connect(ctx, cfg.Archive.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect transcript archive: %v", err)
		}
		defer pgArchive.Close()
		opts.Archive = pgArchive
		log.Println("transcript archive enabled")
	}

	chatService := chat.NewService(personaStore, aiService, convStore, notifier, opts)

	router, err := handler.NewRouter(personaStore, chatService, handler.Options{
		CookieSecure: cfg.Server.CookieSecure,
		Streaming:    aiService.StreamingEnabled(),
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	startServer(ctx, cfg.Server, router)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Backend {
	case config.StoreRedis:
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.Prefix, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[store] using redis backend (ttl=%s)", cfg.TTL)
		return rs, func() { _ = rs.Close() }, nil
	default:
		log.Println("[store] using in-memory backend, conversations are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Hands On backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
