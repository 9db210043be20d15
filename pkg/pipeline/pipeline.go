package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nmishr/recflow/pkg/common/validation"
	"github.com/nmishr/recflow/pkg/concurrency"
	"github.com/nmishr/recflow/pkg/metrics"
	"github.com/nmishr/recflow/pkg/record"
	"github.com/nmishr/recflow/pkg/supervise"
)

// DefaultConcurrency is the default bound on in-flight asynchronous calls.
const DefaultConcurrency = 4

// Pipeline runs the parse -> existence-check -> create chain over a line
// source with bounded concurrency, preserving input order among the
// surviving records.
type Pipeline interface {
	// Run executes the pipeline over src and blocks until it finishes.
	// The caller retains ownership of src and closes it after the run.
	Run(ctx context.Context, src LineSource) (*Result, error)

	// RunAsync executes the pipeline in the background and returns a
	// channel that yields the single final result.
	RunAsync(ctx context.Context, src LineSource) <-chan *Result

	// Stats returns aggregate statistics across completed runs.
	Stats() Stats
}

// Config holds pipeline configuration options.
type Config struct {
	// Checker is the existence-check collaborator. Required.
	Checker ExistenceChecker

	// Creator is the record-creation collaborator. Required.
	Creator Creator

	// Concurrency bounds the number of in-flight asynchronous calls.
	// Defaults to DefaultConcurrency when zero.
	Concurrency int

	// Timeout bounds the total run time. Zero means no timeout. A run
	// that exceeds it fails as a whole; no partial result is returned.
	Timeout time.Duration

	// Policy maps stage failures to recovery decisions.
	// Defaults to supervise.Classify.
	Policy supervise.Policy

	// Logger receives structured per-run and per-item events.
	// Nil disables logging.
	Logger *zerolog.Logger

	// Name labels logs and metrics for this pipeline. Defaults to "default".
	Name string

	// Metrics enables Prometheus instrumentation.
	Metrics metrics.Config

	// OnLineDropped is called when a malformed line is dropped.
	OnLineDropped func(line string, err error)

	// OnCreateRejected is called when a record is dropped after a
	// Resume-classified stage failure.
	OnCreateRejected func(rec record.Record, err error)

	// OnRecordCreated is called as each record is successfully created,
	// before the final sequence is assembled. Completion order, not input
	// order.
	OnRecordCreated func(rec record.Record)
}

// Result is the outcome of a single pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs and callbacks.
	RunID string

	// Records holds every created record, in the order of the input lines
	// that produced them. Nil when Err is non-nil.
	Records []record.Record

	// Err is the run-level failure, if any. Per-item failures that were
	// recovered do not surface here.
	Err error

	LinesRead        int
	ParseFailures    int
	Created          int
	Existing         int
	CreateRejections int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Stats holds aggregate statistics across pipeline runs.
type Stats struct {
	TotalRuns       int64
	SuccessfulRuns  int64
	FailedRuns      int64
	RecordsCreated  int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	LastRunAt       time.Time
}

// pipeline implements the Pipeline interface.
type pipeline struct {
	cfg    Config
	policy supervise.Policy
	logger zerolog.Logger
	inst   *instrumentation

	mu    sync.Mutex
	stats Stats
}

// New creates a pipeline with default configuration around the two
// required collaborators.
func New(checker ExistenceChecker, creator Creator) (Pipeline, error) {
	return NewWithConfig(Config{Checker: checker, Creator: creator})
}

// NewWithConfig creates a pipeline with the specified configuration.
func NewWithConfig(cfg Config) (Pipeline, error) {
	if cfg.Checker == nil {
		return nil, validation.ValidateNotNil("pipeline", "checker", nil)
	}
	if cfg.Creator == nil {
		return nil, validation.ValidateNotNil("pipeline", "creator", nil)
	}

	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if err := validation.ValidatePositive("pipeline", "concurrency", cfg.Concurrency); err != nil {
		return nil, err
	}

	if cfg.Name == "" {
		cfg.Name = "default"
	}

	policy := cfg.Policy
	if policy == nil {
		policy = supervise.Classify
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &pipeline{
		cfg:    cfg,
		policy: policy,
		logger: logger,
		inst:   newInstrumentation(cfg.Metrics, cfg.Name),
	}, nil
}

// Run executes the pipeline over src and blocks until it finishes.
func (p *pipeline) Run(ctx context.Context, src LineSource) (*Result, error) {
	res := <-p.RunAsync(ctx, src)
	return res, res.Err
}

// RunAsync executes the pipeline in the background.
func (p *pipeline) RunAsync(ctx context.Context, src LineSource) <-chan *Result {
	out := make(chan *Result, 1)

	go func() {
		defer close(out)
		out <- p.execute(ctx, src)
	}()

	return out
}

// run carries the state of one pipeline execution.
type run struct {
	p           *pipeline
	ctx         context.Context
	cancel      context.CancelFunc
	slots       concurrency.Limiter
	log         zerolog.Logger
	completions chan completion
	wg          sync.WaitGroup

	abortOnce sync.Once
	abortErr  error
}

func (p *pipeline) execute(ctx context.Context, src LineSource) *Result {
	res := &Result{RunID: uuid.NewString(), StartTime: time.Now()}
	log := p.logger.With().
		Str("pipeline", p.cfg.Name).
		Str("run_id", res.RunID).
		Logger()

	p.inst.runStarted()

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots, err := concurrency.New(p.cfg.Concurrency)
	if err != nil {
		return p.finish(res, log, nil, err)
	}

	r := &run{
		p:           p,
		ctx:         runCtx,
		cancel:      cancel,
		slots:       slots,
		log:         log,
		completions: make(chan completion),
	}

	col := newCollector()
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for cp := range r.completions {
			col.put(cp)
		}
	}()

	// Ingest loop. Lines are pulled one at a time; a new line is read only
	// once a concurrency slot is free, so the source sees backpressure.
	index := 0
	for runCtx.Err() == nil {
		line, ok, err := src.Next(runCtx)
		if err != nil {
			if runCtx.Err() == nil {
				r.abort(fmt.Errorf("line source: %w", err))
			}
			break
		}
		if !ok {
			break
		}

		res.LinesRead++
		p.inst.lineRead()

		rec, perr := record.Parse(line)
		if perr != nil {
			if p.policy(perr) == supervise.Resume {
				res.ParseFailures++
				p.inst.parseFailure()
				log.Warn().Err(perr).Msg("dropping malformed line")
				if p.cfg.OnLineDropped != nil {
					p.cfg.OnLineDropped(line, perr)
				}
				continue
			}
			r.abort(perr)
			break
		}

		if err := slots.Wait(runCtx); err != nil {
			break
		}

		r.wg.Add(1)
		go r.process(index, rec)
		index++
	}

	r.wg.Wait()
	close(r.completions)
	<-collectorDone

	res.Created = col.counts.created
	res.Existing = col.counts.existing
	res.CreateRejections = col.counts.dropped

	switch {
	case r.abortErr != nil:
		return p.finish(res, log, nil, r.abortErr)
	case ctx.Err() != nil:
		return p.finish(res, log, nil, fmt.Errorf("pipeline run: %w", ctx.Err()))
	default:
		return p.finish(res, log, col.sequence(), nil)
	}
}

// finish stamps the result, records statistics and metrics, and logs the
// run outcome.
func (p *pipeline) finish(res *Result, log zerolog.Logger, records []record.Record, err error) *Result {
	res.Records = records
	res.Err = err
	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)

	if err != nil {
		log.Error().Err(err).
			Int("lines_read", res.LinesRead).
			Msg("pipeline run failed")
	} else {
		log.Info().
			Int("lines_read", res.LinesRead).
			Int("created", res.Created).
			Int("existing", res.Existing).
			Int("parse_failures", res.ParseFailures).
			Int("create_rejections", res.CreateRejections).
			Dur("duration", res.Duration).
			Msg("pipeline run complete")
	}

	p.inst.runFinished(res)

	p.mu.Lock()
	p.stats.TotalRuns++
	p.stats.TotalDuration += res.Duration
	p.stats.LastRunAt = res.EndTime
	if err == nil {
		p.stats.SuccessfulRuns++
		p.stats.RecordsCreated += int64(res.Created)
	} else {
		p.stats.FailedRuns++
	}
	p.mu.Unlock()

	return res
}

// Stats returns aggregate statistics across completed runs.
func (p *pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	if s.TotalRuns > 0 {
		s.AverageDuration = time.Duration(int64(s.TotalDuration) / s.TotalRuns)
	}
	return s
}

// process drives one record through the existence-check and create stages.
// It runs in its own goroutine and owns one concurrency slot.
func (r *run) process(index int, rec record.Record) {
	defer r.wg.Done()
	defer r.slots.Release()

	r.p.inst.itemDispatched()
	defer r.p.inst.itemSettled()

	start := time.Now()
	exists, err := r.p.cfg.Checker.Exists(r.ctx, rec.ID)
	r.p.inst.observeStage("exists", time.Since(start))
	if err != nil {
		r.fail(index, rec, fmt.Errorf("existence check for record %d: %w", rec.ID, err))
		return
	}

	if exists {
		r.log.Debug().Int64("id", rec.ID).Msg("record already exists")
		r.send(completion{index: index, kind: kindExisting, rec: rec})
		return
	}

	start = time.Now()
	created, err := r.p.cfg.Creator.Create(r.ctx, rec)
	r.p.inst.observeStage("create", time.Since(start))
	if err != nil {
		r.fail(index, rec, err)
		return
	}

	if r.p.cfg.OnRecordCreated != nil {
		r.p.cfg.OnRecordCreated(created)
	}
	r.send(completion{index: index, kind: kindCreated, rec: created})
}

// fail applies the supervision policy to a stage failure for one record.
func (r *run) fail(index int, rec record.Record, err error) {
	if r.p.policy(err) == supervise.Resume {
		r.log.Warn().Err(err).Int64("id", rec.ID).Msg("dropping record")
		r.p.inst.createRejected()
		if r.p.cfg.OnCreateRejected != nil {
			r.p.cfg.OnCreateRejected(rec, err)
		}
		r.send(completion{index: index, kind: kindDropped, rec: rec, err: err})
		return
	}
	r.abort(err)
}

// send delivers a completion to the collector. The collector keeps
// receiving until every in-flight item has settled, so this never blocks
// indefinitely.
func (r *run) send(cp completion) {
	r.completions <- cp
}

// abort records the first unrecoverable failure and stops the run: no new
// lines are pulled and in-flight calls see cancellation.
func (r *run) abort(err error) {
	r.abortOnce.Do(func() {
		r.abortErr = &supervise.AbortError{Cause: err}
		r.cancel()
	})
}
