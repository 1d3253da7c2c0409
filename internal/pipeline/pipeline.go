package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nkurunziza/momo-ledger/internal/audit"
	"github.com/nkurunziza/momo-ledger/internal/categorizer"
	"github.com/nkurunziza/momo-ledger/internal/deadletter"
	"github.com/nkurunziza/momo-ledger/internal/loader"
	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/internal/normalizer"
	"github.com/nkurunziza/momo-ledger/internal/parser"
	"github.com/nkurunziza/momo-ledger/pkg/logger"
	"github.com/nkurunziza/momo-ledger/pkg/prom"
	"github.com/nkurunziza/momo-ledger/pkg/worker"
)

const DefaultWorkers = 8
const DefaultBatchTimeout = 10 * time.Minute

// Runner drives one batch through parse, normalize, categorize and
// load. Records are independent, so they fan out over a worker pool;
// the loader's per-account locks keep balance math serialized where it
// has to be.
type Runner struct {
	parser      *parser.Parser
	normalizer  *normalizer.Normalizer
	categorizer *categorizer.Categorizer
	loader      *loader.Loader
	audit       *audit.Recorder
	deadLetters deadletter.Sink
	workers     int
	timeout     time.Duration
}

func NewRunner(p *parser.Parser, n *normalizer.Normalizer, c *categorizer.Categorizer, l *loader.Loader, recorder *audit.Recorder, sink deadletter.Sink, workers int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultBatchTimeout
	}
	return &Runner{
		parser:      p,
		normalizer:  n,
		categorizer: c,
		loader:      l,
		audit:       recorder,
		deadLetters: sink,
		workers:     workers,
		timeout:     timeout,
	}
}

type job struct {
	candidate model.Candidate
	batchID   string
	// recCtx never carries the batch deadline: a record that started
	// finishes or fails on its own, it is not cancelled midway.
	recCtx   context.Context
	batchCtx context.Context
}

// Run processes one batch and reports per-outcome counts. Per-record
// problems are absorbed into the summary and the audit log; only a
// store failure aborts the run and surfaces as the returned error.
func (r *Runner) Run(ctx context.Context, input io.Reader) (*model.BatchSummary, error) {
	batchID := uuid.NewString()
	start := time.Now()
	logger.Info("starting batch", "batch_id", batchID)

	candidates, failures, err := r.parser.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("read batch input: %w", err)
	}

	var unparsed int64
	for _, f := range failures {
		unparsed++
		prom.IncDeadLetters()
		r.audit.Warning(ctx, batchID, model.StageParse, fmt.Sprintf("offset %d: %s", f.Offset, f.Reason), string(model.OutcomeUnparsed), nil)
		if r.deadLetters != nil {
			if err := r.deadLetters.Route(ctx, batchID, f); err != nil {
				logger.Error("failed to route dead letter", "batch_id", batchID, "offset", f.Offset, "error", err)
			}
		}
	}

	batchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	recCtx := context.WithoutCancel(ctx)

	var completed, failed, skipped int64
	var fatalOnce sync.Once
	var fatalErr error

	var wg sync.WaitGroup
	pool := worker.NewWorkerManager(len(candidates)+1, r.workers, nil)
	pool.SetWorker(func(workerIndex int, j interface{}) {
		defer wg.Done()
		jb, ok := j.(*job)
		if !ok {
			logger.Error("invalid job type in worker", "worker", workerIndex)
			return
		}

		// The batch deadline gates starting, never finishing.
		if jb.batchCtx.Err() != nil {
			atomic.AddInt64(&failed, 1)
			r.audit.Warning(jb.recCtx, jb.batchID, model.StageLoad,
				fmt.Sprintf("offset %d not started: batch timeout", jb.candidate.Offset), "TIMEOUT", nil)
			return
		}

		outcome, err := r.processRecord(jb.recCtx, jb.batchID, jb.candidate)
		if err != nil {
			fatalOnce.Do(func() {
				fatalErr = err
				cancel()
			})
			atomic.AddInt64(&failed, 1)
			return
		}
		switch outcome {
		case model.OutcomeCompleted:
			atomic.AddInt64(&completed, 1)
		case model.OutcomeSkipped:
			atomic.AddInt64(&skipped, 1)
		default:
			atomic.AddInt64(&failed, 1)
		}
	})

	go func() {
		if err := pool.Start(); err != nil {
			logger.Debug("worker pool stopped", "batch_id", batchID)
		}
	}()

	for _, c := range candidates {
		wg.Add(1)
		pool.Enqueue(&job{candidate: c, batchID: batchID, recCtx: recCtx, batchCtx: batchCtx})
	}
	wg.Wait()
	pool.Exit()

	if fatalErr != nil {
		return nil, fmt.Errorf("batch %s aborted: %w", batchID, fatalErr)
	}

	summary := &model.BatchSummary{
		BatchID:   batchID,
		Completed: completed,
		Failed:    failed,
		Skipped:   skipped,
		Unparsed:  unparsed,
		Duration:  time.Since(start),
	}
	prom.AddBatchDuration(summary.Duration.Seconds())
	r.audit.Info(ctx, batchID, model.StageLoad,
		fmt.Sprintf("batch done: %d completed, %d failed, %d skipped, %d unparsed",
			summary.Completed, summary.Failed, summary.Skipped, summary.Unparsed), "SUMMARY", nil)
	logger.Info("batch finished", "batch_id", batchID,
		"completed", summary.Completed, "failed", summary.Failed,
		"skipped", summary.Skipped, "unparsed", summary.Unparsed,
		"duration", summary.Duration)
	return summary, nil
}

func (r *Runner) processRecord(ctx context.Context, batchID string, c model.Candidate) (model.Outcome, error) {
	start := time.Now()

	rec, err := r.normalizer.Normalize(c)
	if err != nil {
		prom.IncStageFailure(model.StageNormalize)
		prom.IncRecordOutcome(string(model.OutcomeFailed))
		r.audit.Error(ctx, batchID, model.StageNormalize,
			fmt.Sprintf("offset %d: %v", c.Offset, err), "VALIDATION_ERROR", nil)
		return model.OutcomeFailed, nil
	}

	assignment := r.categorizer.Categorize(rec)
	if assignment.RuleID == "" {
		r.audit.Warning(ctx, batchID, model.StageCategorize,
			fmt.Sprintf("ref %s: no rule matched, assigned %s", rec.Ref, assignment.Category), "UNMATCHED", nil)
	} else {
		r.audit.Debug(ctx, batchID, model.StageCategorize,
			fmt.Sprintf("ref %s: %s via rule %s", rec.Ref, assignment.Category, assignment.RuleID), "MATCHED", nil)
	}

	outcome, err := r.loader.Load(ctx, rec, assignment, batchID)
	if err != nil {
		prom.IncStageFailure(model.StageLoad)
		return "", err
	}

	prom.IncRecordOutcome(string(outcome))
	prom.AddRecordLoadDuration(time.Since(start).Seconds(), string(outcome))
	return outcome, nil
}
