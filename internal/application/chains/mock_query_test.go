package chains

import (
	"context"
	"fmt"
	"time"

	"github.com/techflow/citechain/internal/domain/graph"
)

// fakeQuery implements graph.Query with injectable behavior per method.
type fakeQuery struct {
	patentsByWindow func(ctx context.Context, start, end time.Time, minCites int) ([]graph.PatentCitations, error)
	chainFor        func(ctx context.Context, id string, kind graph.EntityKind) (graph.Chain, error)
	chainBatch      func(ctx context.Context, ids []string, kind graph.EntityKind) (map[string]graph.Chain, error)
	assigneesOf     func(ctx context.Context, pid string) ([]string, error)
	inventorsOf     func(ctx context.Context, pid string) ([]string, error)
	associationsFor func(ctx context.Context, pids []string, kind graph.EntityKind) (map[string][]string, error)
	crossReference  func(ctx context.Context, pids []string, cutoff time.Time) ([]graph.AssigneePair, error)
}

func (f *fakeQuery) PatentsByTimeWindow(ctx context.Context, start, end time.Time, minCites int) ([]graph.PatentCitations, error) {
	return f.patentsByWindow(ctx, start, end, minCites)
}

func (f *fakeQuery) ChainFor(ctx context.Context, id string, kind graph.EntityKind) (graph.Chain, error) {
	return f.chainFor(ctx, id, kind)
}

func (f *fakeQuery) ChainBatch(ctx context.Context, ids []string, kind graph.EntityKind) (map[string]graph.Chain, error) {
	return f.chainBatch(ctx, ids, kind)
}

func (f *fakeQuery) AssigneesOf(ctx context.Context, pid string) ([]string, error) {
	return f.assigneesOf(ctx, pid)
}

func (f *fakeQuery) InventorsOf(ctx context.Context, pid string) ([]string, error) {
	return f.inventorsOf(ctx, pid)
}

func (f *fakeQuery) AssociationsFor(ctx context.Context, pids []string, kind graph.EntityKind) (map[string][]string, error) {
	return f.associationsFor(ctx, pids, kind)
}

func (f *fakeQuery) CrossReference(ctx context.Context, pids []string, cutoff time.Time) ([]graph.AssigneePair, error) {
	return f.crossReference(ctx, pids, cutoff)
}

// mkChain builds a chain of n entries with ascending dates.
func mkChain(n int) graph.Chain {
	c := make(graph.Chain, n)
	for i := range c {
		c[i] = graph.NewChainEntry(
			fmt.Sprintf("90%05d", i),
			time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i))
	}
	return c
}
