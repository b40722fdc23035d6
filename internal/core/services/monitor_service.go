package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/quorumfed/aggregator/internal/core/logging"
	"github.com/quorumfed/aggregator/internal/core/ports"
)

// MonitorService periodically logs the round state so operators can watch
// quorum progress without polling the API.
type MonitorService struct {
	aggregator    ports.Aggregator
	scheduler     *gocron.Scheduler
	mutex         sync.Mutex
	checkInterval time.Duration
	isRunning     bool
	stopCh        chan struct{}
}

func NewMonitorService(aggregator ports.Aggregator) *MonitorService {
	return &MonitorService{
		aggregator:    aggregator,
		checkInterval: 1 * time.Minute,
		stopCh:        make(chan struct{}),
	}
}

func (s *MonitorService) SetCheckInterval(interval time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.checkInterval = interval
}

func (s *MonitorService) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isRunning {
		return nil
	}

	log := logging.WithComponent("monitor_service")
	log.Info().
		Dur("check_interval", s.checkInterval).
		Msg("Starting round monitoring service")

	s.scheduler = gocron.NewScheduler(time.UTC)
	s.stopCh = make(chan struct{})

	_, err := s.scheduler.Every(s.checkInterval).Do(func() {
		select {
		case <-s.stopCh:
			return
		default:
			state, err := s.aggregator.RoundState(context.Background())
			if err != nil {
				log.Error().Err(err).Msg("Error reading round state")
				return
			}

			log.Info().
				Str("status", string(state.Status)).
				Int("pending", state.PendingCount).
				Int("trainers", state.TrainerCount).
				Float64("ratio", state.Ratio).
				Uint32("latest_version", state.LatestVersion).
				Msg("Round status")
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to schedule round status check")
		return err
	}

	s.scheduler.StartAsync()
	s.isRunning = true

	return nil
}

func (s *MonitorService) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isRunning {
		return
	}

	close(s.stopCh)
	s.scheduler.Stop()
	s.isRunning = false

	log := logging.WithComponent("monitor_service")
	log.Info().Msg("Round monitoring service stopped")
}
