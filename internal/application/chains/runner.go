package chains

import (
	"context"

	"github.com/google/uuid"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/storage/artifact"
	"github.com/techflow/citechain/pkg/errors"
)

// Runner wraps the Builder with checkpointing and resumption.  The candidate
// list is partitioned once per run, so batch index i always covers the same
// id slice for a given (ids, batchCount); every batch is persisted as a
// zero-padded checkpoint artifact before the next batch starts.  A re-run
// skips every batch whose checkpoint already exists and rebuilds only the
// missing ones: an interrupted run loses at most one batch, the checkpoint
// files are identical across interruption patterns, and their count never
// exceeds batchCount.
type Runner struct {
	builder *Builder
	store   artifact.Store
	log     logging.Logger
}

// NewRunner creates a Runner persisting checkpoints in store.
func NewRunner(builder *Builder, store artifact.Store, log logging.Logger) *Runner {
	return &Runner{builder: builder, store: store, log: log}
}

// Run derives chains for ids with checkpointed resumption and persists the
// aggregated length index under the kind's length-index key.  The returned
// index covers both resumed and newly chained ids.
func (r *Runner) Run(ctx context.Context, ids []string, kind graph.EntityKind, batchCount int) (graph.LengthIndex, error) {
	if !kind.Valid() {
		return nil, errors.InvalidParam("unsupported entity kind").WithDetail(string(kind))
	}
	if batchCount < 1 {
		return nil, errors.InvalidParam("batchCount must be at least 1")
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCandidateSet, "no candidates to chain").
			WithDetail(string(kind))
	}

	runID := uuid.NewString()
	log := r.log.With(logging.String("run_id", runID), logging.String("kind", string(kind)))

	existing, err := r.store.List(ctx, artifact.CheckpointPrefix(kind))
	if err != nil {
		return nil, err
	}

	lengths := make(graph.LengthIndex, len(ids))
	covered := make(map[string]struct{}, len(existing))
	for _, key := range existing {
		var chains map[string]graph.Chain
		if err := artifact.LoadJSON(ctx, r.store, key, &chains); err != nil {
			return nil, err
		}
		for id, chain := range chains {
			lengths[id] = chain.Len()
		}
		covered[key] = struct{}{}
	}

	batches := Partition(ids, batchCount)
	log.Info("chain run starting",
		logging.Int("candidates", len(ids)),
		logging.Int("batches", len(batches)),
		logging.Int("checkpoints", len(existing)))

	for i, batch := range batches {
		key := artifact.CheckpointKey(kind, i)
		if _, ok := covered[key]; ok {
			continue
		}
		chains := map[string]graph.Chain{}
		if len(batch) > 0 {
			chains, err = r.builder.BuildBatch(ctx, batch, kind, i)
			if err != nil {
				// Checkpoints written before the failure stay; the next run
				// rebuilds only the batches after them.
				return nil, err
			}
		}
		// Empty batches still checkpoint so indices stay aligned.
		if err := artifact.SaveJSON(ctx, r.store, key, chains); err != nil {
			return nil, err
		}
		for id, chain := range chains {
			lengths[id] = chain.Len()
		}
	}

	if err := artifact.SaveJSON(ctx, r.store, artifact.LengthIndexKey(kind), lengths); err != nil {
		return nil, err
	}
	log.Info("chain run complete", logging.Int("chained", len(lengths)))
	return lengths, nil
}

// Lengths loads the aggregated length index persisted by a previous Run.
func (r *Runner) Lengths(ctx context.Context, kind graph.EntityKind) (graph.LengthIndex, error) {
	var lengths graph.LengthIndex
	if err := artifact.LoadJSON(ctx, r.store, artifact.LengthIndexKey(kind), &lengths); err != nil {
		return nil, err
	}
	return lengths, nil
}
