package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/prismhq/prism/internal/approval"
	"github.com/prismhq/prism/internal/config"
	"github.com/prismhq/prism/internal/eventbus"
	"github.com/prismhq/prism/internal/gate"
	"github.com/prismhq/prism/internal/ledger"
	ledgerrepo "github.com/prismhq/prism/internal/ledger/repositoryimpl"
	"github.com/prismhq/prism/internal/orchestrator"
	"github.com/prismhq/prism/internal/provider"
	"github.com/prismhq/prism/internal/pushnotification"
	"github.com/prismhq/prism/internal/pushsubscription"
	pushsubrepo "github.com/prismhq/prism/internal/pushsubscription/repositoryimpl"
	"github.com/prismhq/prism/internal/ruleswatch"
	"github.com/prismhq/prism/internal/safety"
	safetyrepo "github.com/prismhq/prism/internal/safety/repositoryimpl"
	"github.com/prismhq/prism/internal/secrets"
	"github.com/prismhq/prism/pkg/clog"
	"github.com/prismhq/prism/pkg/panicerr"
	"github.com/prismhq/prism/pkg/storage"

	server "github.com/prismhq/prism/internal"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup event bus
	bus := eventbus.New()

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Setup safety controller and budget monitor
	safetyEnv := config.SafetyEnvFromEnv(env)
	rulesRepo := safetyrepo.NewYAMLRepository(store, safetyEnv.RulesPath)
	controller := safety.NewController(ctx, rulesRepo)
	ledgerRepo := ledgerrepo.NewYAMLRepository(store, safetyEnv.LedgerPath)
	monitor := ledger.NewMonitor(ctx, ledgerRepo, controller, safetyEnv.DailyBudgetUSD, ledger.WithBus(bus))

	// Setup gate
	approvals := approval.NewStore()
	g := gate.New(controller, monitor, approvals, bus)

	// Setup providers and orchestrator
	registry := provider.NewRegistry()
	registry.Register(provider.NewLocal())
	orch := orchestrator.New(g, registry)

	// Setup secrets vault; wiped when the process exits. Cloud provider
	// clients pull their credentials from here when attached.
	vault := secrets.NewVault()
	defer vault.Wipe()
	providerEnv := config.ProviderEnvFromEnv(env)
	for service, key := range map[string]string{
		"gemini":     providerEnv.GeminiAPIKey,
		"gpt":        providerEnv.OpenAIAPIKey,
		"claude":     providerEnv.AnthropicAPIKey,
		"perplexity": providerEnv.PerplexityAPIKey,
	} {
		if key != "" {
			vault.Set(service+"_api_key", key)
		}
	}
	slog.Info("secrets vault loaded", "keys", len(vault.Keys()))

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushDispatcher := pushnotification.NewDispatcher(bus, pushSender)

	// Setup servers
	gateServer := gate.NewServer(g, bus)
	approvalServer := approval.NewServer(approvals, bus)
	orchestratorServer := orchestrator.NewServer(orch)
	pushSubscriptionServer := pushsubscription.NewServer(vapidEnv, pushSubRepo)

	srv := server.NewServer(env, gateServer, approvalServer, orchestratorServer, pushSubscriptionServer)

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		pushDispatcher.Start(ctx)
	})
	if env.StorageEnv.Type != "s3" {
		// Rules-file watcher; a change requires a restart to apply.
		rulesWatcher := ruleswatch.New(filepath.Join(env.StorageEnv.BaseDir, safetyEnv.RulesPath), bus)
		wg.Go(func() {
			panicerr.LogRun(ctx, "ruleswatch", rulesWatcher.Run)
		})
	}
	wg.Go(func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	})

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active connections time to finish after request contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	wg.Wait()
}
