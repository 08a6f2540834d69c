package chains

import (
	"context"
	"fmt"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/metrics"
	"github.com/techflow/citechain/pkg/errors"
)

// Partition splits ids into k contiguous batches whose sizes differ by at
// most one, the first len(ids)%k batches receiving the extra element.
// Concatenating the batches reproduces ids exactly.  k larger than len(ids)
// yields trailing empty batches, keeping batch indices stable across runs
// with the same k.
func Partition(ids []string, k int) [][]string {
	if k < 1 {
		k = 1
	}
	base := len(ids) / k
	extra := len(ids) % k
	batches := make([][]string, k)
	off := 0
	for i := range batches {
		size := base
		if i < extra {
			size++
		}
		batches[i] = ids[off : off+size]
		off += size
	}
	return batches
}

// EmitFunc receives one completed batch.  The builder calls it only after
// the batch's read transaction finished; an error return aborts the build.
type EmitFunc func(batchIndex int, chains map[string]graph.Chain) error

// Builder derives citation chains for a candidate set in sequential batches,
// one read transaction per batch.
type Builder struct {
	graph graph.Query
	log   logging.Logger
}

// NewBuilder creates a Builder over q.
func NewBuilder(q graph.Query, log logging.Logger) *Builder {
	return &Builder{graph: q, log: log}
}

// BuildBatch derives the chains of one batch inside a single read
// transaction.  Any failure discards the batch's in-memory results; index
// only labels logs, metrics, and error detail.
func (b *Builder) BuildBatch(ctx context.Context, ids []string, kind graph.EntityKind, index int) (map[string]graph.Chain, error) {
	if !kind.Valid() {
		return nil, errors.InvalidParam("unsupported entity kind").WithDetail(string(kind))
	}
	chains, err := b.graph.ChainBatch(ctx, ids, kind)
	if err != nil {
		metrics.BatchFailed(string(kind))
		return nil, errors.Wrap(err, errors.ErrCodeBatchFailed, "chain batch failed").
			WithDetail(fmt.Sprintf("%s batch %d", kind, index))
	}
	for _, chain := range chains {
		metrics.ObserveChainLength(string(kind), chain.Len())
	}
	metrics.BatchCompleted(string(kind))
	b.log.Info("chain batch complete",
		logging.String("kind", string(kind)),
		logging.Int("batch", index),
		logging.Int("entities", len(ids)))
	return chains, nil
}

// BuildChains partitions ids into batchCount batches and derives every id's
// chain.  Each batch runs in its own read transaction; any failure inside a
// batch discards that batch's in-memory results and aborts the build, so
// emitted batches are the only durable progress.  The returned LengthIndex
// covers exactly the ids processed in this call.
func (b *Builder) BuildChains(ctx context.Context, ids []string, kind graph.EntityKind, batchCount int, emit EmitFunc) (graph.LengthIndex, error) {
	if !kind.Valid() {
		return nil, errors.InvalidParam("unsupported entity kind").WithDetail(string(kind))
	}
	if batchCount < 1 {
		return nil, errors.InvalidParam("batchCount must be at least 1")
	}

	lengths := make(graph.LengthIndex, len(ids))
	for i, batch := range Partition(ids, batchCount) {
		chains, err := b.BuildBatch(ctx, batch, kind, i)
		if err != nil {
			return nil, err
		}
		if emit != nil {
			if err := emit(i, chains); err != nil {
				metrics.BatchFailed(string(kind))
				return nil, err
			}
		}
		for id, chain := range chains {
			lengths[id] = chain.Len()
		}
	}
	return lengths, nil
}
