package pipeline

import (
	"time"

	"github.com/nmishr/recflow/pkg/metrics"
)

// instrumentation records pipeline activity in a metrics registry. A nil
// instrumentation disables collection; every method tolerates it.
type instrumentation struct {
	reg  *metrics.Registry
	name string
}

func newInstrumentation(cfg metrics.Config, name string) *instrumentation {
	if !cfg.Enabled {
		return nil
	}

	reg := metrics.DefaultRegistry
	if cfg.Registry != nil {
		reg = metrics.NewRegistry(cfg.Registry)
	}

	return &instrumentation{reg: reg, name: name}
}

func (in *instrumentation) runStarted() {
	if in == nil {
		return
	}
	in.reg.RunsStarted.WithLabelValues(in.name).Inc()
}

func (in *instrumentation) runFinished(res *Result) {
	if in == nil {
		return
	}
	if res.Err != nil {
		in.reg.RunsAborted.WithLabelValues(in.name).Inc()
		return
	}
	in.reg.RunsSucceeded.WithLabelValues(in.name).Inc()
	in.reg.RecordsCreated.WithLabelValues(in.name).Add(float64(res.Created))
	in.reg.RecordsExisting.WithLabelValues(in.name).Add(float64(res.Existing))
}

func (in *instrumentation) lineRead() {
	if in == nil {
		return
	}
	in.reg.LinesRead.WithLabelValues(in.name).Inc()
}

func (in *instrumentation) parseFailure() {
	if in == nil {
		return
	}
	in.reg.ParseFailures.WithLabelValues(in.name).Inc()
}

func (in *instrumentation) createRejected() {
	if in == nil {
		return
	}
	in.reg.CreateRejections.WithLabelValues(in.name).Inc()
}

func (in *instrumentation) itemDispatched() {
	if in == nil {
		return
	}
	in.reg.InFlight.WithLabelValues(in.name).Inc()
}

func (in *instrumentation) itemSettled() {
	if in == nil {
		return
	}
	in.reg.InFlight.WithLabelValues(in.name).Dec()
}

func (in *instrumentation) observeStage(stage string, d time.Duration) {
	if in == nil {
		return
	}
	in.reg.StageDuration.WithLabelValues(in.name, stage).Observe(d.Seconds())
}
