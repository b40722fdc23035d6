package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quorumfed/aggregator/internal/api"
	"github.com/quorumfed/aggregator/internal/api/handlers"
	"github.com/quorumfed/aggregator/internal/core/config"
	"github.com/quorumfed/aggregator/internal/core/logging"
	"github.com/quorumfed/aggregator/internal/core/ports"
	"github.com/quorumfed/aggregator/internal/core/services"
	"github.com/quorumfed/aggregator/internal/database/repositories"
	"github.com/quorumfed/aggregator/internal/storage"
	"github.com/quorumfed/aggregator/internal/storage/leveldb"
	"github.com/quorumfed/aggregator/internal/storage/memory"
	"github.com/quorumfed/aggregator/internal/storage/postgres"
)

type Server struct {
	Config             *config.Config
	HttpServer         *http.Server
	Store              storage.Store
	AggregationService *services.AggregationService
	MonitorService     *services.MonitorService
}

func (s *Server) Shutdown(ctx context.Context) {
	log := logging.Get()

	serverShutdownCtx, serverShutdownCancel := context.WithTimeout(ctx, 15*time.Second)
	defer serverShutdownCancel()

	s.MonitorService.Stop()

	log.Info().Msg("Initiating server shutdown sequence")
	shutdownStart := time.Now()

	if err := s.HttpServer.Shutdown(serverShutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	} else {
		log.Info().Dur("duration_ms", time.Since(shutdownStart)).Msg("Server HTTP connections gracefully closed")
	}

	if err := s.Store.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing storage engine")
	} else {
		log.Info().Msg("Storage engine closed")
	}

	log.Info().Msg("Shutdown complete")
}

type ServerBuilder struct {
	config             *config.Config
	store              storage.Store
	trainerRepo        ports.TrainerRegistry
	pendingRepo        ports.PendingPool
	modelRepo          ports.ModelStore
	aggregationService *services.AggregationService
	monitorService     *services.MonitorService
	httpServer         *http.Server
	err                error
}

func NewServerBuilder(cfg *config.Config) *ServerBuilder {
	return &ServerBuilder{
		config: cfg,
	}
}

func (b *ServerBuilder) InitStorage() *ServerBuilder {
	if b.err != nil {
		return b
	}

	log := logging.WithComponent("server_builder")

	switch b.config.Storage.Backend {
	case config.BackendLevelDB:
		b.store, b.err = leveldb.Open(b.config.Storage.Path)
	case config.BackendPostgres:
		b.store, b.err = postgres.Open(b.config.Database.GetConnectionURL())
	case config.BackendMemory:
		b.store = memory.NewStore()
	default:
		b.err = fmt.Errorf("unknown storage backend %q", b.config.Storage.Backend)
	}

	if b.err == nil {
		log.Info().Str("backend", b.config.Storage.Backend).Msg("Storage engine initialized")
	}
	return b
}

func (b *ServerBuilder) InitRepositories() *ServerBuilder {
	if b.err != nil {
		return b
	}

	b.trainerRepo = repositories.NewTrainerRepository(b.store)
	b.pendingRepo = repositories.NewPendingRepository(b.store, b.config.Aggregation.ModelSize)
	b.modelRepo = repositories.NewModelRepository(b.store, b.config.Aggregation.ModelSize, b.config.Aggregation.InitWeight)
	return b
}

func (b *ServerBuilder) InitServices() *ServerBuilder {
	if b.err != nil {
		return b
	}

	log := logging.WithComponent("server_builder")

	observers := services.Observers{services.NewLogObserver()}

	if b.config.AWS.BucketName != "" {
		checkpointService, err := services.NewCheckpointService(b.config)
		if err != nil {
			b.err = fmt.Errorf("failed to initialize checkpoint service: %w", err)
			return b
		}
		observers = append(observers, checkpointService)
		log.Info().Str("bucket", b.config.AWS.BucketName).Msg("Model checkpoint export enabled")
	}

	b.aggregationService = services.NewAggregationService(
		b.trainerRepo,
		b.pendingRepo,
		b.modelRepo,
		b.store,
		observers,
		b.config.Aggregation,
	)
	return b
}

func (b *ServerBuilder) InitMonitor() *ServerBuilder {
	if b.err != nil {
		return b
	}

	b.monitorService = services.NewMonitorService(b.aggregationService)
	if b.config.Monitor.Interval > 0 {
		b.monitorService.SetCheckInterval(time.Duration(b.config.Monitor.Interval) * time.Second)
	}
	b.err = b.monitorService.Start()
	return b
}

func (b *ServerBuilder) InitRouter() *ServerBuilder {
	if b.err != nil {
		return b
	}

	trainerHandler := handlers.NewTrainerHandler(b.aggregationService)
	aggregationHandler := handlers.NewAggregationHandler(b.aggregationService)
	modelHandler := handlers.NewModelHandler(b.aggregationService)

	router := api.NewRouter(trainerHandler, aggregationHandler, modelHandler, b.config.Server.Endpoint)

	b.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", b.config.Server.Host, b.config.Server.Port),
		Handler: router,
	}
	return b
}

func (b *ServerBuilder) Build() (*Server, error) {
	if b.err != nil {
		return nil, b.err
	}

	return &Server{
		Config:             b.config,
		HttpServer:         b.httpServer,
		Store:              b.store,
		AggregationService: b.aggregationService,
		MonitorService:     b.monitorService,
	}, nil
}
