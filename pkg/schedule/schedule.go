// Package schedule runs ingestion pipelines on a recurring cron schedule.
//
// Line sources are finite and non-restartable, so each scheduled run builds
// a fresh source via the job's Source factory. Cron expressions use the
// six-field form with a seconds column, plus descriptors like @hourly and
// @every 30s.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nmishr/recflow/pkg/common/validation"
	"github.com/nmishr/recflow/pkg/metrics"
	"github.com/nmishr/recflow/pkg/pipeline"
)

// Job describes one recurring ingestion run.
type Job struct {
	// Pipeline executes the run. Required.
	Pipeline pipeline.Pipeline

	// Source builds a fresh line source for each run. Required.
	Source func() (pipeline.LineSource, error)

	// OnResult is called with every run's result, including failed runs.
	OnResult func(res *pipeline.Result)

	// SkipIfRunning skips a trigger while the previous run is still active.
	SkipIfRunning bool
}

// Scheduler triggers ingestion jobs on cron schedules.
type Scheduler interface {
	// Schedule registers a job under a unique id with a cron expression.
	Schedule(id, cronExpr string, job Job) error

	// Remove unregisters a job. Unknown ids are ignored.
	Remove(id string)

	// Jobs returns the ids of all registered jobs.
	Jobs() []string

	// Start begins triggering jobs. It returns immediately.
	Start()

	// Stop stops triggering new runs and returns a context that is done
	// once in-flight runs have finished.
	Stop() context.Context
}

// Config holds scheduler configuration options.
type Config struct {
	// Logger receives per-trigger events. Nil disables logging.
	Logger *zerolog.Logger

	// Metrics enables Prometheus instrumentation.
	Metrics metrics.Config
}

// scheduler implements Scheduler on top of robfig/cron.
type scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
	reg    *metrics.Registry

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with the specified configuration.
func NewWithConfig(config Config) Scheduler {
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	var reg *metrics.Registry
	if config.Metrics.Enabled {
		reg = metrics.DefaultRegistry
		if config.Metrics.Registry != nil {
			reg = metrics.NewRegistry(config.Metrics.Registry)
		}
	}

	parser := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	return &scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		logger:  logger,
		reg:     reg,
		entries: make(map[string]cron.EntryID),
	}
}

func (s *scheduler) Schedule(id, cronExpr string, job Job) error {
	if err := validation.ValidateNotEmpty("schedule", "job id", id); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty("schedule", "cron expression", cronExpr); err != nil {
		return err
	}
	if job.Pipeline == nil {
		return validation.ValidateNotNil("schedule", "job pipeline", nil)
	}
	if job.Source == nil {
		return validation.ValidateNotNil("schedule", "job source", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; ok {
		return fmt.Errorf("schedule: job %q already registered", id)
	}

	var running int32
	entryID, err := s.cron.AddFunc(cronExpr, func() {
		s.trigger(id, job, &running)
	})
	if err != nil {
		return fmt.Errorf("schedule: invalid cron expression %q: %w", cronExpr, err)
	}

	s.entries[id] = entryID
	return nil
}

// trigger runs one scheduled execution of a job.
func (s *scheduler) trigger(id string, job Job, running *int32) {
	log := s.logger.With().Str("job", id).Logger()

	if job.SkipIfRunning {
		if !atomic.CompareAndSwapInt32(running, 0, 1) {
			log.Debug().Msg("skipping trigger, previous run still active")
			if s.reg != nil {
				s.reg.ScheduledSkips.WithLabelValues(id).Inc()
			}
			return
		}
		defer atomic.StoreInt32(running, 0)
	}

	if s.reg != nil {
		s.reg.ScheduledRuns.WithLabelValues(id).Inc()
	}

	src, err := job.Source()
	if err != nil {
		log.Error().Err(err).Msg("building line source failed")
		return
	}
	defer src.Close()

	res, err := job.Pipeline.Run(context.Background(), src)
	if err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
	}
	if job.OnResult != nil {
		job.OnResult(res)
	}
}

func (s *scheduler) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
}

func (s *scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

func (s *scheduler) Start() {
	s.cron.Start()
}

func (s *scheduler) Stop() context.Context {
	return s.cron.Stop()
}
