/*
Package recflow provides a bounded-concurrency ingestion pipeline that turns
line-delimited text into persisted records, tolerating per-item failures
without aborting the whole run.

Components (pkg/...):
  - record: the Record value type and the id:name:content line grammar
  - supervise: failure taxonomy and the Resume/Abort recovery decision
  - pipeline: the core orchestrator with order-preserving collection
  - concurrency: slot limiter bounding in-flight asynchronous calls
  - store: in-memory and Redis-backed collaborator implementations
  - schedule: recurring ingestion runs on a cron schedule
  - metrics: Prometheus instrumentation

Example usage:

	import (
		"github.com/nmishr/recflow/pkg/pipeline"
		"github.com/nmishr/recflow/pkg/store"
	)

	st := store.NewMemory()
	p, _ := pipeline.New(st, st)

	src := pipeline.SliceSource([]string{"1:a:data-a", "2:b:data-b"})
	result, err := p.Run(context.Background(), src)
	for _, rec := range result.Records {
		fmt.Println(rec)
	}
*/
package recflow
