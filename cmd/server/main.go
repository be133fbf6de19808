package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"scouttrack/internal/api/router"
	"scouttrack/internal/cache"
	"scouttrack/internal/config"
	"scouttrack/internal/core/alert"
	"scouttrack/internal/core/clock"
	"scouttrack/internal/core/registry"
	"scouttrack/internal/core/repository"
	"scouttrack/internal/core/service"
	"scouttrack/internal/logging"
	"scouttrack/internal/protocol/server"
)

func main() {
	configPath := flag.String("config", getConfigPath(), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.Setup(cfg.LogLevel, !cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("scouttrack stopped")
}

func getConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yml"
}

type repositories struct {
	checkpoints repository.CheckpointRepository
	admins      repository.AdminRepository
	snapshots   repository.SnapshotRepository
}

func openRepositories(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger) (repositories, *mongo.Client, error) {
	if !cfg.Enabled() {
		logger.Info().Msg("MONGODB_URI not set, using in-memory repositories")
		return repositories{
			checkpoints: repository.NewInMemoryCheckpointRepository(),
			admins:      repository.NewInMemoryAdminRepository(),
			snapshots:   repository.NewInMemorySnapshotRepository(500),
		}, nil, nil
	}

	client, db, err := config.ConnectMongoDB(ctx, cfg, logger)
	if err != nil {
		return repositories{}, nil, err
	}
	snapshots := repository.NewMongoSnapshotRepository(db)
	if err := snapshots.EnsureIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to create snapshot indexes")
	}
	return repositories{
		checkpoints: repository.NewMongoCheckpointRepository(db),
		admins:      repository.NewMongoAdminRepository(db),
		snapshots:   snapshots,
	}, client, nil
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	repos, mongoClient, err := openRepositories(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	if mongoClient != nil {
		defer mongoClient.Disconnect(context.Background())
	}

	redisCache := cache.New(ctx, cfg.RedisURL, logger)
	defer redisCache.Close()

	clk := clock.Real()
	walk := registry.NewRandomWalk(time.Now().UnixNano())
	walk.MaxDelta = cfg.Engine.MaxDelta
	reg := registry.New(registry.Options{
		HistoryCap: cfg.Engine.HistoryCap,
		Spawn:      cfg.Engine.Spawn,
		Mover:      walk,
		Clock:      clk,
	})
	engine := service.NewTeamEngine(service.EngineOptions{
		Registry:     reg,
		Clock:        clk,
		TickInterval: cfg.Engine.TickInterval,
		Simulate:     cfg.Engine.Simulate,
		Logger:       logger,
	})

	inbox := alert.NewInbox()
	sirens := alert.NewBroadcaster()
	dispatcher := alert.NewDispatcher(inbox, logger,
		alert.WithSounder(sirens),
		alert.WithSink(redisCache),
		alert.WithNow(clk.Now))
	archive := repository.NewSnapshotArchive(repos.snapshots, 256, logger)

	publisher := engine.Publisher()
	publisher.Observe(dispatcher)
	publisher.Observe(redisCache)
	publisher.Observe(archive)

	if err := restoreTeams(ctx, engine, redisCache, cfg.Engine.Seed, clk.Now(), logger); err != nil {
		logger.Warn().Err(err).Msg("some teams could not be restored")
	}

	checkpointService := service.NewCheckpointService(repos.checkpoints)
	adminService := service.NewAdminService(repos.admins)
	if cfg.Engine.Seed {
		seedDirectory(checkpointService, adminService, logger)
	}

	httpServer := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Dependencies{
			Teams:       engine,
			Checkpoints: checkpointService,
			Admins:      adminService,
			Event:       service.NewEventService(clk, cfg.Engine.RefreshInterval, logger),
			Inbox:       inbox,
			Sirens:      sirens,
			Snapshots:   repos.snapshots,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var tcp *server.TCPServer
	if cfg.H02.Enabled {
		tcp = server.NewTCPServer(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.H02.Port), engine, logger)
		if err := tcp.Start(); err != nil {
			return fmt.Errorf("H02 listener: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		archive.Run(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if tcp != nil {
			tcp.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// restoreTeams loads teams from the cached snapshot, falling back to the
// demo teams when seeding is enabled.
func restoreTeams(ctx context.Context, engine *service.TeamEngine, c *cache.Cache, seed bool, now time.Time, logger zerolog.Logger) error {
	cached, err := c.LatestSnapshot(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read cached snapshot")
	}
	if cached != nil && len(cached.Teams) > 0 {
		logger.Info().Uint64("version", cached.Version).Msg("restoring teams from cache")
		_, err := engine.Restore(cached.Teams)
		return err
	}
	if !seed {
		_, err := engine.Restore(nil)
		return err
	}
	_, err = engine.Restore(seedTeams(now))
	return err
}

func seedDirectory(checkpoints service.CheckpointService, admins service.AdminService, logger zerolog.Logger) {
	if existing, err := checkpoints.GetAllCheckpoints(); err == nil && len(existing) == 0 {
		for _, cp := range seedCheckpoints() {
			if _, err := checkpoints.CreateCheckpoint(cp); err != nil {
				logger.Warn().Err(err).Str("checkpoint_id", cp.ID).Msg("failed to seed checkpoint")
			}
		}
	}
	if existing, err := admins.GetAllAdmins(); err == nil && len(existing) == 0 {
		for _, a := range seedAdmins() {
			if _, err := admins.CreateAdmin(a.name, a.email, a.role); err != nil {
				logger.Warn().Err(err).Str("email", a.email).Msg("failed to seed admin")
			}
		}
	}
}
