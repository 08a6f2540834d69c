package chains

import (
	"context"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/metrics"
	"github.com/techflow/citechain/internal/infrastructure/storage/artifact"
	"github.com/techflow/citechain/pkg/errors"
)

// RepresentativeService materializes the terminal pid→entity artifact: for
// each patent, the owning assignee or inventor with the longest citation
// chain.
type RepresentativeService struct {
	graph    graph.Query
	store    artifact.Store
	resolver *Resolver
	log      logging.Logger
}

// NewRepresentativeService wires the resolver to the graph and the artifact
// store.
func NewRepresentativeService(q graph.Query, store artifact.Store, resolver *Resolver, log logging.Logger) *RepresentativeService {
	return &RepresentativeService{graph: q, store: store, resolver: resolver, log: log}
}

// Materialize resolves one representative per patent and caches the map
// under the kind's representative key.  It requires the kind's length index
// to have been persisted by a completed chain run; patents with no
// associated entity are omitted, matching the association query.
func (s *RepresentativeService) Materialize(ctx context.Context, pids []string, kind graph.EntityKind) (map[string]string, error) {
	if kind != graph.KindAssignee && kind != graph.KindInventor {
		return nil, errors.InvalidParam("representatives require assignee or inventor kind").WithDetail(string(kind))
	}

	key := artifact.RepresentativeKey(kind)
	var out map[string]string
	hit, err := artifact.LoadOrGenerate(ctx, s.store, key, s.log, &out, func(ctx context.Context) (interface{}, error) {
		assoc, err := s.graph.AssociationsFor(ctx, pids, kind)
		if err != nil {
			return nil, err
		}
		var lengths graph.LengthIndex
		if err := artifact.LoadJSON(ctx, s.store, artifact.LengthIndexKey(kind), &lengths); err != nil {
			return nil, err
		}
		return s.resolver.Resolve(assoc, lengths)
	})
	if err != nil {
		return nil, err
	}
	metrics.ArtifactAccess("representatives", hit)
	s.log.Info("representative map ready",
		logging.String("kind", string(kind)),
		logging.Bool("cache_hit", hit),
		logging.Int("patents", len(out)))
	return out, nil
}
