package chains

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/storage/artifact"
	"github.com/techflow/citechain/pkg/errors"
)

func TestResolve_LongestWins(t *testing.T) {
	r := NewResolver(logging.NewNopLogger())
	out, err := r.Resolve(map[string][]string{
		"p1": {"org_a", "org_b"},
		"p2": {"org_c"},
	}, graph.LengthIndex{"org_a": 10, "org_b": 250, "org_c": 0})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p1": "org_b", "p2": "org_c"}, out)
}

func TestResolve_TiesKeepCandidateOrder(t *testing.T) {
	r := NewResolver(logging.NewNopLogger())
	out, err := r.Resolve(map[string][]string{
		"p1": {"org_b", "org_a"},
	}, graph.LengthIndex{"org_a": 7, "org_b": 7})
	require.NoError(t, err)
	assert.Equal(t, "org_b", out["p1"])
}

func TestResolve_MissingLengthIsFatal(t *testing.T) {
	r := NewResolver(logging.NewNopLogger())
	_, err := r.Resolve(map[string][]string{
		"p1": {"org_a", "org_unknown"},
	}, graph.LengthIndex{"org_a": 3})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingLengthEntry))
	assert.Contains(t, err.Error(), "org_unknown")
}

func TestResolve_EmptyCandidateListSkipped(t *testing.T) {
	r := NewResolver(logging.NewNopLogger())
	out, err := r.Resolve(map[string][]string{
		"p1": {},
		"p2": {"org_a"},
	}, graph.LengthIndex{"org_a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p2": "org_a"}, out)
}

func TestMaterialize(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewMemoryStore()
	require.NoError(t, artifact.SaveJSON(ctx, store,
		artifact.LengthIndexKey(graph.KindAssignee),
		graph.LengthIndex{"org_a": 2, "org_b": 9}))

	assocCalls := 0
	q := &fakeQuery{
		associationsFor: func(_ context.Context, pids []string, kind graph.EntityKind) (map[string][]string, error) {
			assocCalls++
			assert.Equal(t, []string{"p1", "p2"}, pids)
			return map[string][]string{
				"p1": {"org_a", "org_b"},
				// p2 has no assignee and is absent, as the query omits it.
			}, nil
		},
	}

	svc := NewRepresentativeService(q, store, NewResolver(logging.NewNopLogger()), logging.NewNopLogger())
	out, err := svc.Materialize(ctx, []string{"p1", "p2"}, graph.KindAssignee)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p1": "org_b"}, out)

	// Cached on re-run.
	again, err := svc.Materialize(ctx, []string{"p1", "p2"}, graph.KindAssignee)
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, 1, assocCalls)
}

func TestMaterialize_RequiresLengthIndex(t *testing.T) {
	q := &fakeQuery{
		associationsFor: func(context.Context, []string, graph.EntityKind) (map[string][]string, error) {
			return map[string][]string{"p1": {"org_a"}}, nil
		},
	}
	svc := NewRepresentativeService(q, artifact.NewMemoryStore(), NewResolver(logging.NewNopLogger()), logging.NewNopLogger())

	_, err := svc.Materialize(context.Background(), []string{"p1"}, graph.KindAssignee)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestMaterialize_PatentKindRejected(t *testing.T) {
	svc := NewRepresentativeService(&fakeQuery{}, artifact.NewMemoryStore(), NewResolver(logging.NewNopLogger()), logging.NewNopLogger())
	_, err := svc.Materialize(context.Background(), []string{"p1"}, graph.KindPatent)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}
