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

	"github.com/Torrentov/calories-count-bot/internal/bot"
	"github.com/Torrentov/calories-count-bot/internal/config"
	"github.com/Torrentov/calories-count-bot/internal/foodfacts"
	"github.com/Torrentov/calories-count-bot/internal/logger"
	"github.com/Torrentov/calories-count-bot/internal/repository"
	"github.com/Torrentov/calories-count-bot/internal/service"
	"github.com/Torrentov/calories-count-bot/internal/storage"
	"github.com/Torrentov/calories-count-bot/internal/weather"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Загрузка конфигурации
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync(zlog)
	zlog = zlog.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("bot stopped with error", zap.Error(err))
	}
	zlog.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	metrics := bot.NewMetrics(prometheus.DefaultRegisterer)

	// Redis необязателен: без него ответы внешних сервисов не кешируются
	var weatherCache, foodCache repository.LookupCache = repository.NoopCache{}, repository.NoopCache{}
	redisClient, err := repository.Connect(ctx, cfg.Redis)
	if err != nil {
		zlog.Warn("redis unavailable, lookups will not be cached", zap.Error(err))
	} else if redisClient != nil {
		defer repository.Close(redisClient)
		weatherCache = repository.NewRedisCache(redisClient, cfg.App.Name+":weather")
		foodCache = repository.NewRedisCache(redisClient, cfg.App.Name+":food")
		zlog.Info("redis lookup cache enabled", zap.String("address", cfg.Redis.Address))
	}

	weatherClient := weather.NewClient(cfg.Weather,
		weather.WithCache(weatherCache, cfg.Cache.WeatherTTL()),
		weather.WithObserver(metrics.LookupObserver("weather")),
		weather.WithLogger(zlog.Named("weather")),
	)
	foodClient := foodfacts.NewClient(cfg.FoodFacts,
		foodfacts.WithCache(foodCache, cfg.Cache.FoodTTL()),
		foodfacts.WithObserver(metrics.LookupObserver("food_facts")),
		foodfacts.WithLogger(zlog.Named("food_facts")),
	)

	store := storage.NewProgressStore()
	tracker := service.NewTracker(store, weatherClient, foodClient, zlog.Named("tracker"))

	telegramBot, err := bot.NewBot(cfg.Telegram, tracker, metrics, store.Count, zlog.Named("bot"))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Monitoring.PrometheusEnabled {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			zlog.Info("metrics server started", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		zlog.Info("bot started")
		return telegramBot.Start(gctx)
	})

	return g.Wait()
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
