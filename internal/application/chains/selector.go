// Package chains implements the derivation pipeline: candidate selection
// under citation-count filters, chunked checkpointed chain building, and
// longest-history representative resolution.  Every stage is idempotent
// through the artifact store; re-running with identical parameters performs
// no graph work.
package chains

import (
	"context"
	"sort"
	"time"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/metrics"
	"github.com/techflow/citechain/internal/infrastructure/storage/artifact"
	"github.com/techflow/citechain/pkg/errors"
)

// Selector materializes cached candidate sets: patents passing the citation
// filters, and the assignees/inventors associated with them.
type Selector struct {
	graph graph.Query
	store artifact.Store
	log   logging.Logger

	startYear int
	endYear   int
}

// NewSelector creates a Selector scanning calendar years
// [startYear, endYear].
func NewSelector(q graph.Query, store artifact.Store, log logging.Logger, startYear, endYear int) *Selector {
	return &Selector{graph: q, store: store, log: log, startYear: startYear, endYear: endYear}
}

func (s *Selector) checkBounds(minCites, maxCites int) error {
	if minCites < 0 {
		return errors.InvalidParam("minCites must not be negative")
	}
	if maxCites <= minCites {
		return errors.InvalidParam("maxCites must exceed minCites")
	}
	if s.endYear < s.startYear {
		return errors.InvalidParam("year range is inverted")
	}
	return nil
}

// SelectPatents returns the sorted ids of patents granted in the configured
// year range with more than minCites and at most maxCites distinct incoming
// citations.  The graph carries only the lower bound; the upper bound is
// applied here on the count returned with each id.  The result is cached
// under the citation bounds; a hit performs no graph query.
func (s *Selector) SelectPatents(ctx context.Context, minCites, maxCites int) ([]string, error) {
	if err := s.checkBounds(minCites, maxCites); err != nil {
		return nil, err
	}

	key := artifact.CandidateKey(graph.KindPatent, minCites, maxCites)
	var ids []string
	hit, err := artifact.LoadOrGenerate(ctx, s.store, key, s.log, &ids, func(ctx context.Context) (interface{}, error) {
		seen := make(map[string]struct{})
		for year := s.startYear; year <= s.endYear; year++ {
			start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
			rows, err := s.graph.PatentsByTimeWindow(ctx, start, end, minCites)
			if err != nil {
				return nil, err
			}
			kept := 0
			for _, row := range rows {
				if row.Cites > maxCites {
					continue
				}
				seen[row.PID] = struct{}{}
				kept++
			}
			s.log.Debug("year window scanned",
				logging.Int("year", year),
				logging.Int("candidates", len(rows)),
				logging.Int("kept", kept))
		}
		// Sorted so the persisted set, and every batch split derived from
		// it, is reproducible across runs.
		out := make([]string, 0, len(seen))
		for pid := range seen {
			out = append(out, pid)
		}
		sort.Strings(out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ArtifactAccess("candidates", hit)
	s.log.Info("patent candidates ready",
		logging.String("key", key),
		logging.Bool("cache_hit", hit),
		logging.Int("count", len(ids)))
	return ids, nil
}

// selectAssociated unions the entities associated with the cached patent
// candidate set and caches the result under the same citation bounds.
func (s *Selector) selectAssociated(ctx context.Context, kind graph.EntityKind, minCites, maxCites int) ([]string, error) {
	pids, err := s.SelectPatents(ctx, minCites, maxCites)
	if err != nil {
		return nil, err
	}

	key := artifact.CandidateKey(kind, minCites, maxCites)
	var ids []string
	hit, err := artifact.LoadOrGenerate(ctx, s.store, key, s.log, &ids, func(ctx context.Context) (interface{}, error) {
		assoc, err := s.graph.AssociationsFor(ctx, pids, kind)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{})
		for _, entityIDs := range assoc {
			for _, id := range entityIDs {
				seen[id] = struct{}{}
			}
		}
		out := make([]string, 0, len(seen))
		for id := range seen {
			out = append(out, id)
		}
		sort.Strings(out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ArtifactAccess("candidates", hit)
	s.log.Info("associated candidates ready",
		logging.String("kind", string(kind)),
		logging.Bool("cache_hit", hit),
		logging.Int("count", len(ids)))
	return ids, nil
}

// SelectAssignees returns the sorted assignee ids owning any candidate
// patent under the given bounds.
func (s *Selector) SelectAssignees(ctx context.Context, minCites, maxCites int) ([]string, error) {
	return s.selectAssociated(ctx, graph.KindAssignee, minCites, maxCites)
}

// SelectInventors returns the sorted inventor ids of any candidate patent
// under the given bounds.
func (s *Selector) SelectInventors(ctx context.Context, minCites, maxCites int) ([]string, error) {
	return s.selectAssociated(ctx, graph.KindInventor, minCites, maxCites)
}
