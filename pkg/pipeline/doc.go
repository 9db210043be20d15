/*
Package pipeline turns a sequence of raw text lines into a sequence of
persisted records, tolerating per-item failures without aborting the run.

Each line is parsed into a record, checked for existence, and created when
it does not yet exist. The existence check and creation are asynchronous
collaborator calls bounded to a fixed number in flight (default 4); the
line source is pulled only as fast as slots free up. The final sequence
preserves input order among surviving records regardless of the order in
which asynchronous calls complete. Only created records appear in the final
sequence; records that already exist are counted but excluded.

Malformed lines and creation rejections are dropped and the run continues.
Any other failure aborts the entire run: accumulated results are discarded
and the caller receives a failure rather than a partial success.

# Quick Start

	st := store.NewMemory()
	p, err := pipeline.New(st, st)
	if err != nil {
		log.Fatal(err)
	}

	src := pipeline.SliceSource([]string{
		"1:a:data-a",
		"2:b:data-b",
	})
	result, err := p.Run(context.Background(), src)
	if err != nil {
		log.Fatal(err)
	}
	for _, rec := range result.Records {
		fmt.Println(rec)
	}

# Configuration

	logger := zerolog.New(os.Stderr)

	p, err := pipeline.NewWithConfig(pipeline.Config{
		Checker:     checker,
		Creator:     creator,
		Concurrency: 8,
		Timeout:     30 * time.Second,
		Logger:      &logger,
		Name:        "imports",
		Metrics:     metrics.DefaultConfig(),
	})

# Line Sources

SliceSource, ChannelSource, ReaderSource, and FileSource cover the common
cases; any pull-based implementation of LineSource works. Sources are
finite and non-restartable: build a fresh one per run.

# Failure Handling

The supervision policy (supervise.Classify by default) is consulted at
every stage boundary. Resume drops the failing item; Abort cancels the
run context, stops pulling lines, and surfaces a *supervise.AbortError:

	result, err := p.Run(ctx, src)
	var abort *supervise.AbortError
	if errors.As(err, &abort) {
		log.Printf("run failed: %v", abort.Cause)
	}
*/
package pipeline
