package neo4j

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/pkg/errors"
)

// sliceResult replays canned records through the Result interface.
type sliceResult struct {
	recs []*neo4j.Record
	pos  int
}

func (r *sliceResult) Next(context.Context) bool {
	if r.pos >= len(r.recs) {
		return false
	}
	r.pos++
	return true
}

func (r *sliceResult) Record() *neo4j.Record { return r.recs[r.pos-1] }
func (r *sliceResult) Err() error            { return nil }
func (r *sliceResult) Consume(context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}

type runCall struct {
	cypher string
	params map[string]any
}

// scriptTx records every Run and answers through respond.
type scriptTx struct {
	calls   []runCall
	respond func(cypher string, params map[string]any) ([]*neo4j.Record, error)
}

func (tx *scriptTx) Run(_ context.Context, cypher string, params map[string]any) (Result, error) {
	tx.calls = append(tx.calls, runCall{cypher: cypher, params: params})
	recs, err := tx.respond(cypher, params)
	if err != nil {
		return nil, err
	}
	return &sliceResult{recs: recs}, nil
}

// scriptRunner satisfies Runner and mirrors Driver's error wrapping.
type scriptRunner struct {
	tx     *scriptTx
	reads  int
	writes int
}

func (r *scriptRunner) ExecuteRead(_ context.Context, work func(Transaction) (any, error)) (any, error) {
	r.reads++
	out, err := work(r.tx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphUnavailable, "neo4j read failed")
	}
	return out, nil
}

func (r *scriptRunner) ExecuteWrite(_ context.Context, work func(Transaction) (any, error)) (any, error) {
	r.writes++
	out, err := work(r.tx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphUnavailable, "neo4j write failed")
	}
	return out, nil
}

func rec(values ...any) *neo4j.Record {
	return &neo4j.Record{Values: values}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestRepo(respond func(string, map[string]any) ([]*neo4j.Record, error)) (*GraphRepository, *scriptRunner) {
	runner := &scriptRunner{tx: &scriptTx{respond: respond}}
	return NewGraphRepository(runner, logging.NewNopLogger()), runner
}

func TestPatentsByTimeWindow(t *testing.T) {
	repo, runner := newTestRepo(func(cypher string, params map[string]any) ([]*neo4j.Record, error) {
		assert.Equal(t, "1980-01-01", params["start"])
		assert.Equal(t, "1980-12-31", params["end"])
		assert.Equal(t, 20, params["min_cites"])
		return []*neo4j.Record{
			rec("4723129", int64(161)),
			rec("4740796", int64(45)),
		}, nil
	})

	rows, err := repo.PatentsByTimeWindow(context.Background(), day(1980, 1, 1), day(1980, 12, 31), 20)
	require.NoError(t, err)
	assert.Equal(t, []graph.PatentCitations{
		{PID: "4723129", Cites: 161},
		{PID: "4740796", Cites: 45},
	}, rows)
	assert.Equal(t, 1, runner.reads)
}

func TestChainFor_StatementPerKind(t *testing.T) {
	cases := map[graph.EntityKind]string{
		graph.KindPatent:   ":Patent {pid: $id}",
		graph.KindAssignee: ":Assignee {assignee_id: $id}",
		graph.KindInventor: ":Inventor {inventor_id: $id}",
	}
	for kind, fragment := range cases {
		t.Run(string(kind), func(t *testing.T) {
			repo, runner := newTestRepo(func(cypher string, params map[string]any) ([]*neo4j.Record, error) {
				assert.Contains(t, cypher, fragment)
				assert.Contains(t, cypher, "ORDER BY c.date ASC")
				assert.Equal(t, "e1", params["id"])
				return []*neo4j.Record{
					rec("5000001", day(1990, 3, 14)),
					rec("5000002", day(1991, 7, 2)),
				}, nil
			})

			chain, err := repo.ChainFor(context.Background(), "e1", kind)
			require.NoError(t, err)
			require.Len(t, chain, 2)
			assert.Equal(t, "5000001", chain[0].PID)
			assert.Equal(t, day(1990, 3, 14), chain[0].Date)
			assert.InDelta(t, graph.EpochDays(day(1990, 3, 14)), chain[0].Epoch, 1e-9)
			require.NoError(t, chain.Validate())
			assert.Equal(t, 1, runner.reads)
		})
	}
}

func TestChainFor_DbtypeDate(t *testing.T) {
	repo, _ := newTestRepo(func(string, map[string]any) ([]*neo4j.Record, error) {
		return []*neo4j.Record{rec("5000001", dbtype.Date(day(1990, 3, 14)))}, nil
	})

	chain, err := repo.ChainFor(context.Background(), "e1", graph.KindPatent)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, day(1990, 3, 14), chain[0].Date)
}

func TestChainFor_InvalidKind(t *testing.T) {
	repo, runner := newTestRepo(func(string, map[string]any) ([]*neo4j.Record, error) {
		return nil, nil
	})

	_, err := repo.ChainFor(context.Background(), "x", graph.EntityKind("company"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	assert.Zero(t, runner.reads)
}

func TestChainBatch_OneTransaction(t *testing.T) {
	repo, runner := newTestRepo(func(_ string, params map[string]any) ([]*neo4j.Record, error) {
		switch params["id"] {
		case "a1":
			return []*neo4j.Record{rec("5000001", day(1990, 3, 14))}, nil
		case "a2":
			return nil, nil
		}
		t.Fatalf("unexpected id %v", params["id"])
		return nil, nil
	})

	chains, err := repo.ChainBatch(context.Background(), []string{"a1", "a2"}, graph.KindAssignee)
	require.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, 1, chains["a1"].Len())
	assert.Equal(t, 0, chains["a2"].Len())
	// Both ids ran inside a single read transaction.
	assert.Equal(t, 1, runner.reads)
	assert.Len(t, runner.tx.calls, 2)
}

func TestChainBatch_AnyFailureFailsAll(t *testing.T) {
	repo, _ := newTestRepo(func(_ string, params map[string]any) ([]*neo4j.Record, error) {
		if params["id"] == "a2" {
			return nil, assert.AnError
		}
		return []*neo4j.Record{rec("5000001", day(1990, 3, 14))}, nil
	})

	chains, err := repo.ChainBatch(context.Background(), []string{"a1", "a2"}, graph.KindAssignee)
	require.Error(t, err)
	assert.Nil(t, chains)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphUnavailable))
}

func TestAssociationsFor_OmitsEmpty(t *testing.T) {
	repo, runner := newTestRepo(func(cypher string, params map[string]any) ([]*neo4j.Record, error) {
		assert.Contains(t, cypher, ":Assignee")
		switch params["pid"] {
		case "p1":
			return []*neo4j.Record{rec("org_a"), rec("org_b")}, nil
		case "p2":
			return nil, nil
		}
		t.Fatalf("unexpected pid %v", params["pid"])
		return nil, nil
	})

	assoc, err := repo.AssociationsFor(context.Background(), []string{"p1", "p2"}, graph.KindAssignee)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"p1": {"org_a", "org_b"}}, assoc)
	assert.Equal(t, 1, runner.reads)
}

func TestAssociationsFor_PatentKindRejected(t *testing.T) {
	repo, _ := newTestRepo(func(string, map[string]any) ([]*neo4j.Record, error) {
		return nil, nil
	})

	_, err := repo.AssociationsFor(context.Background(), []string{"p1"}, graph.KindPatent)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestAssigneesAndInventorsOf(t *testing.T) {
	repo, _ := newTestRepo(func(cypher string, params map[string]any) ([]*neo4j.Record, error) {
		assert.Equal(t, "p1", params["pid"])
		if strings.Contains(cypher, ":Inventor") {
			return []*neo4j.Record{rec("inv_1")}, nil
		}
		return []*neo4j.Record{rec("org_a")}, nil
	})

	assignees, err := repo.AssigneesOf(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"org_a"}, assignees)

	inventors, err := repo.InventorsOf(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"inv_1"}, inventors)
}

func TestCrossReference_ReturnsAssigneeNames(t *testing.T) {
	repo, runner := newTestRepo(func(cypher string, params map[string]any) ([]*neo4j.Record, error) {
		// The pair carries display names, not assignee ids.
		assert.Contains(t, cypher, "citing.name")
		assert.Contains(t, cypher, "cited.name")
		assert.NotContains(t, cypher, "assignee_id AS")
		assert.Equal(t, "2015-01-01", params["cutoff"])
		if params["pid"] == "p1" {
			return []*neo4j.Record{rec("Acme Semiconductor", "General Widget Corp")}, nil
		}
		return nil, nil
	})

	pairs, err := repo.CrossReference(context.Background(), []string{"p1", "p2"}, day(2015, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, []graph.AssigneePair{{Citing: "Acme Semiconductor", Cited: "General Widget Corp"}}, pairs)
	assert.Equal(t, 1, runner.reads)
	assert.Len(t, runner.tx.calls, 2)
}
