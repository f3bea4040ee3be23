package main

import (
	"flag"
	"log/slog"
	"net/http"

	"github.com/zphrs/ucsc-menu/internal/cache"
	"github.com/zphrs/ucsc-menu/internal/chrono"
	"github.com/zphrs/ucsc-menu/internal/scrapers/nutrition"
	"github.com/zphrs/ucsc-menu/internal/service"
	"github.com/zphrs/ucsc-menu/internal/telemetry"
	"github.com/zphrs/ucsc-menu/lib/serviceutil"

	"connectrpc.com/connect"
)

func main() {
	verbose := flag.Bool("v", false, "Enable debug logging.")
	configPath := flag.String("config", "config.json5", "The config file to read, <name>.local.json5 overrides it.")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	shutdown := initTelemetry(ctx, *verbose)
	defer shutdown()

	config, err := readConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	settings, err := config.resolve()
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}

	tel := telemetry.SlogAPI{}
	clock := chrono.NewStandardImpl()

	client, err := nutrition.NewClient(settings.client, tel)
	if err != nil {
		serviceutil.Fatal("failed to create nutrition client", err)
	}
	settings.scraper.Clock = clock
	scraper := nutrition.NewScraper(client, settings.scraper, tel)

	store, closeStore, err := cache.OpenStore(ctx, config.Store)
	if err != nil {
		serviceutil.Fatal("failed to open store", err)
	}
	defer closeStore()

	slog.Info("opening cache", "store", config.Store.Kind)
	menuCache, err := cache.Open(ctx, cache.Options{
		Scraper:  scraper,
		Store:    store,
		Clock:    clock,
		Interval: settings.interval,
	}, tel)
	if err != nil {
		serviceutil.Fatal("failed to open cache", err)
	}

	cron := chrono.NewStandardCron(tel)
	defer cron.Stop()
	err = menuCache.Schedule(cron, config.Cache.Cron)
	if err != nil {
		serviceutil.Fatal("failed to schedule refresh", err)
	}

	otelIntercept, err := serviceutil.NewConnectOtelInterceptor()
	if err != nil {
		serviceutil.Fatal("failed to initialize otel interceptor", err)
	}

	mux := http.NewServeMux()
	mux.Handle(service.NewHandler(
		service.NewService(menuCache, tel),
		config.AccessToken,
		connect.WithInterceptors(otelIntercept),
	))

	err = serviceutil.StartHttpServer(ctx, config.Port, mux)
	if err != nil && ctx.Err() == nil {
		slog.Error("http server stopped", "err", err)
		return
	}
	<-ctx.Done()
	slog.Info("shutting down")
}
