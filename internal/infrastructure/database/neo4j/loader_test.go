package neo4j

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/pkg/errors"
)

func newTestLoader(respond func(string, map[string]any) ([]*neo4j.Record, error)) (*GraphLoader, *scriptRunner) {
	runner := &scriptRunner{tx: &scriptTx{respond: respond}}
	return NewGraphLoader(runner, logging.NewNopLogger()), runner
}

func TestEnsureConstraints(t *testing.T) {
	loader, runner := newTestLoader(func(cypher string, _ map[string]any) ([]*neo4j.Record, error) {
		assert.Contains(t, cypher, "IF NOT EXISTS")
		return nil, nil
	})

	require.NoError(t, loader.EnsureConstraints(context.Background()))
	assert.Equal(t, 3, runner.writes)
}

func TestLoadPatents_NilDatesBecomeNull(t *testing.T) {
	grant := time.Date(1985, time.June, 3, 0, 0, 0, 0, time.UTC)
	loader, _ := newTestLoader(func(_ string, params map[string]any) ([]*neo4j.Record, error) {
		rows := params["rows"].([]map[string]any)
		require.Len(t, rows, 2)
		assert.Equal(t, "1985-06-03", rows[0]["date"])
		assert.Nil(t, rows[1]["date"])
		return nil, nil
	})

	err := loader.LoadPatents(context.Background(), []graph.PatentRow{
		{PID: "4523456", Kind: "utility", Date: &grant},
		{PID: "4523457", Kind: "utility"},
	})
	require.NoError(t, err)
}

func TestLoadCitations_Chunked(t *testing.T) {
	edges := make([]graph.EdgeRow, 2*loadBatchSize+500)
	for i := range edges {
		edges[i] = graph.EdgeRow{From: fmt.Sprintf("c%d", i), To: "p0"}
	}

	var sizes []int
	loader, runner := newTestLoader(func(_ string, params map[string]any) ([]*neo4j.Record, error) {
		sizes = append(sizes, len(params["rows"].([]map[string]any)))
		return nil, nil
	})

	require.NoError(t, loader.LoadCitations(context.Background(), edges))
	assert.Equal(t, 3, runner.writes)
	assert.Equal(t, []int{loadBatchSize, loadBatchSize, 500}, sizes)
}

func TestLoad_FirstFailureStops(t *testing.T) {
	calls := 0
	loader, _ := newTestLoader(func(string, map[string]any) ([]*neo4j.Record, error) {
		calls++
		return nil, assert.AnError
	})

	edges := make([]graph.EdgeRow, 2*loadBatchSize)
	err := loader.LoadOwnership(context.Background(), edges)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errors.ErrCodeGraphLoadFailed, errors.GetCode(err))
}
