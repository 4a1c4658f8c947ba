// Command searchcraft-server runs the connector: the admin settings API, the
// front-end embed endpoint and the content sync pipeline.
//
// Configuration is read from the environment; see internal/config.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/searchcraftinc/searchcraft-connect/client"
	"github.com/searchcraftinc/searchcraft-connect/internal/api"
	"github.com/searchcraftinc/searchcraft-connect/internal/config"
	"github.com/searchcraftinc/searchcraft-connect/internal/crypto"
	"github.com/searchcraftinc/searchcraft-connect/internal/db"
	"github.com/searchcraftinc/searchcraft-connect/internal/dbpool"
	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
	"github.com/searchcraftinc/searchcraft-connect/internal/frontend"
	"github.com/searchcraftinc/searchcraft-connect/internal/ingest"
	"github.com/searchcraftinc/searchcraft-connect/internal/metrics"
	"github.com/searchcraftinc/searchcraft-connect/internal/nonce"
	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

// derivedKeySalt is mixed into keys derived from SITE_SECRET.
const derivedKeySalt = "searchcraft-connect"

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	keys, err := newKeyProvider(cfg)
	if err != nil {
		return err
	}
	cipher := crypto.NewService(keys)

	g, ctx := errgroup.WithContext(ctx)

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := settings.NewService(store.OptionStore, cipher, log)
	if store.listen != nil {
		if err := store.listen(func(string) { svc.Invalidate() }); err != nil {
			return err
		}
	}

	guard, closeGuard, err := newGuard(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeGuard()

	nonces, err := nonce.New(cfg.NonceKey(), cfg.NonceLifetime, nonce.WithGuard(guard))
	if err != nil {
		return err
	}

	renderer, err := frontend.NewRenderer(cfg.SDKScriptURL)
	if err != nil {
		return err
	}

	observe := client.WithRequestObserver(metrics.ObserveAPIRequest)
	worker := ingest.NewWorker(svc, ingest.DefaultClientFactory(observe), log, cfg.SyncQueueSize, cfg.SyncWorkers)

	g.Go(func() error {
		worker.Run(ctx)
		return nil
	})

	var sink domain.ContentSink = worker
	if cfg.KafkaEnabled() {
		publisher := ingest.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer publisher.Close()
		sink = publisher

		source := ingest.NewKafkaSource(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, worker, log)
		g.Go(func() error { return source.Run(ctx) })
		log.WithField("topic", cfg.KafkaTopic).Info("content events routed through kafka")
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Settings:    svc,
		Nonces:      nonces,
		Content:     sink,
		Renderer:    renderer,
		ReadClient:  domain.ReadClientFactory(observe),
		AdminToken:  cfg.AdminToken.Value(),
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serve(ctx, g, srv, log.WithField("server", "api"))
	serve(ctx, g, metricsSrv, log.WithField("server", "metrics"))

	log.WithFields(logrus.Fields{
		"addr":     cfg.Addr(),
		"metrics":  cfg.MetricsAddr(),
		"settings": cfg.SettingsDriver,
		"version":  config.Version,
	}).Info("searchcraft connector started")

	return g.Wait()
}

// serve runs srv under g and shuts it down when ctx ends.
func serve(ctx context.Context, g *errgroup.Group, srv *http.Server, log *logrus.Entry) {
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func newKeyProvider(cfg *config.Config) (crypto.KeyProvider, error) {
	if key := cfg.EncryptionKey.Value(); key != "" {
		return crypto.NewStaticProvider(key)
	}
	return crypto.NewDerivedProvider(cfg.SiteSecret.Value(), derivedKeySalt)
}

// optionStore is the selected settings backend. listen is set when the
// backend can report changes made by other replicas.
type optionStore struct {
	settings.OptionStore
	listen func(onChange func(name string)) error
}

func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (optionStore, func(), error) {
	noop := func() {}

	switch cfg.SettingsDriver {
	case config.DriverMemory:
		log.Warn("settings are kept in memory and lost on restart")
		return optionStore{OptionStore: settings.NewMemoryStore()}, noop, nil

	case config.DriverPostgres:
		pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns))
		if err != nil {
			return optionStore{}, noop, err
		}
		if err := db.RunPostgresMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return optionStore{}, noop, err
		}
		log.WithField("schema_version", db.SchemaVersion(db.PostgresDir)).Info("settings stored in postgres")
		store := optionStore{
			OptionStore: settings.NewPostgresStore(pool),
			listen: func(onChange func(name string)) error {
				return db.NewOptionsListener(log, pool, onChange).Start(ctx)
			},
		}
		return store, pool.Close, nil

	default:
		store, err := settings.OpenSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			return optionStore{}, noop, err
		}
		log.WithFields(logrus.Fields{
			"path":           cfg.SQLitePath,
			"schema_version": db.SchemaVersion(db.SQLiteDir),
		}).Info("settings stored in sqlite")
		return optionStore{OptionStore: store}, func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Warn("closing sqlite store")
			}
		}, nil
	}
}

func newGuard(ctx context.Context, cfg *config.Config, log *logrus.Logger) (nonce.Guard, func(), error) {
	if cfg.RedisAddr == "" {
		return nonce.NewMemoryGuard(), func() {}, nil
	}
	guard, err := nonce.NewRedisGuard(ctx, cfg.RedisAddr, cfg.RedisPassword.Value())
	if err != nil {
		return nil, nil, err
	}
	log.WithField("addr", cfg.RedisAddr).Info("nonce replay guard backed by redis")
	return guard, func() {
		if err := guard.Close(); err != nil {
			log.WithError(err).Warn("closing redis guard")
		}
	}, nil
}
