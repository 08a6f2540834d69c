package chains

import (
	"sort"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/pkg/errors"
)

// Resolver picks one representative entity per patent: the candidate with
// the longest citation chain.
type Resolver struct {
	log logging.Logger
}

// NewResolver creates a Resolver.
func NewResolver(log logging.Logger) *Resolver {
	return &Resolver{log: log}
}

// Resolve maps each patent to the candidate with the longest chain.  The
// sort is stable and descending by length, so equal lengths keep the
// candidate-list order and the first candidate wins ties.  A candidate with
// no length entry is fatal: lengths must cover every candidate, including
// explicit zeros.
func (r *Resolver) Resolve(pidToCandidates map[string][]string, lengths graph.LengthIndex) (map[string]string, error) {
	out := make(map[string]string, len(pidToCandidates))
	for pid, candidates := range pidToCandidates {
		if len(candidates) == 0 {
			continue
		}
		for _, id := range candidates {
			if _, ok := lengths[id]; !ok {
				return nil, errors.New(errors.ErrCodeMissingLengthEntry,
					"candidate has no chain-length entry").WithDetail(id)
			}
		}
		ranked := make([]string, len(candidates))
		copy(ranked, candidates)
		sort.SliceStable(ranked, func(i, j int) bool {
			return lengths[ranked[i]] > lengths[ranked[j]]
		})
		out[pid] = ranked[0]
	}
	r.log.Info("representatives resolved",
		logging.Int("patents", len(out)))
	return out, nil
}
