package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/metrics"
	"github.com/techflow/citechain/pkg/errors"
)

// Runner is the slice of Driver the repository needs.  Tests satisfy it with
// scripted transactions.
type Runner interface {
	ExecuteRead(ctx context.Context, work func(Transaction) (any, error)) (any, error)
	ExecuteWrite(ctx context.Context, work func(Transaction) (any, error)) (any, error)
}

// All statements use bound parameters only; no identifier or literal is ever
// interpolated into the query text.
const (
	cypherPatentsByWindow = `
MATCH (p:Patent)<-[:CITE]-(c:Patent)
WHERE p.date >= date($start) AND p.date <= date($end)
WITH p, count(DISTINCT c) AS num_cites
WHERE num_cites > $min_cites
RETURN p.pid AS pid, num_cites`

	cypherPatentChain = `
MATCH (:Patent {pid: $id})<-[:CITE]-(c:Patent)
WITH DISTINCT c
RETURN c.pid AS pid, c.date AS date
ORDER BY c.date ASC`

	cypherAssigneeChain = `
MATCH (:Assignee {assignee_id: $id})-[:OWN]->(:Patent)<-[:CITE]-(c:Patent)
WITH DISTINCT c
RETURN c.pid AS pid, c.date AS date
ORDER BY c.date ASC`

	cypherInventorChain = `
MATCH (:Inventor {inventor_id: $id})-[:INVENT]->(:Patent)<-[:CITE]-(c:Patent)
WITH DISTINCT c
RETURN c.pid AS pid, c.date AS date
ORDER BY c.date ASC`

	cypherAssigneesOf = `
MATCH (:Patent {pid: $pid})<-[:OWN]-(a:Assignee)
RETURN a.assignee_id AS id
ORDER BY id ASC`

	cypherInventorsOf = `
MATCH (:Patent {pid: $pid})<-[:INVENT]-(i:Inventor)
RETURN i.inventor_id AS id
ORDER BY id ASC`

	cypherCrossReference = `
MATCH (citing:Assignee)-[:OWN]->(:Patent {pid: $pid})-[:CITE]->(cited_p:Patent)<-[:OWN]-(cited:Assignee)
WHERE cited_p.date >= date($cutoff)
RETURN citing.name AS citing_name, cited.name AS cited_name`
)

// GraphRepository implements graph.Query over a Neo4j driver.
type GraphRepository struct {
	runner Runner
	logger logging.Logger
}

// NewGraphRepository creates a graph.Query backed by runner.
func NewGraphRepository(runner Runner, log logging.Logger) *GraphRepository {
	return &GraphRepository{runner: runner, logger: log}
}

var _ graph.Query = (*GraphRepository)(nil)

func chainStatement(kind graph.EntityKind) (string, error) {
	switch kind {
	case graph.KindPatent:
		return cypherPatentChain, nil
	case graph.KindAssignee:
		return cypherAssigneeChain, nil
	case graph.KindInventor:
		return cypherInventorChain, nil
	}
	return "", errors.InvalidParam("unsupported entity kind").WithDetail(string(kind))
}

// asDate normalizes the driver's date representations.  The Bolt protocol
// yields dbtype.Date for Cypher date properties; time.Time covers datetime
// properties and scripted test records.
func asDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case dbtype.Date:
		return d.Time(), nil
	case time.Time:
		return d, nil
	}
	return time.Time{}, errors.New(errors.ErrCodeGraphQueryFailed,
		"unexpected date value in graph record").WithDetail(fmt.Sprintf("%T", v))
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New(errors.ErrCodeGraphQueryFailed,
			"unexpected string value in graph record").WithDetail(fmt.Sprintf("%T", v))
	}
	return s, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, errors.New(errors.ErrCodeGraphQueryFailed,
		"unexpected count value in graph record").WithDetail(fmt.Sprintf("%T", v))
}

// collectChain drains one chain query result into a Chain, preserving the
// result order.  Same-date entries therefore keep the store's order.
func collectChain(ctx context.Context, result Result) (graph.Chain, error) {
	entries, err := CollectRecords(ctx, result, func(rec *neo4j.Record) (graph.ChainEntry, error) {
		pid, err := asString(rec.Values[0])
		if err != nil {
			return graph.ChainEntry{}, err
		}
		date, err := asDate(rec.Values[1])
		if err != nil {
			return graph.ChainEntry{}, err
		}
		return graph.NewChainEntry(pid, date), nil
	})
	if err != nil {
		return nil, err
	}
	return graph.Chain(entries), nil
}

// PatentsByTimeWindow returns candidates with more than minCites distinct
// incoming citations inside [start, end], with their counts.
func (r *GraphRepository) PatentsByTimeWindow(ctx context.Context, start, end time.Time, minCites int) ([]graph.PatentCitations, error) {
	timer := metrics.GraphQueryTimer("patents_by_window")
	defer timer.ObserveDuration()

	out, err := r.runner.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, cypherPatentsByWindow, map[string]any{
			"start":     start.Format("2006-01-02"),
			"end":       end.Format("2006-01-02"),
			"min_cites": minCites,
		})
		if err != nil {
			return nil, err
		}
		return CollectRecords(ctx, result, func(rec *neo4j.Record) (graph.PatentCitations, error) {
			pid, err := asString(rec.Values[0])
			if err != nil {
				return graph.PatentCitations{}, err
			}
			cites, err := asInt(rec.Values[1])
			if err != nil {
				return graph.PatentCitations{}, err
			}
			return graph.PatentCitations{PID: pid, Cites: cites}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	rows, _ := out.([]graph.PatentCitations)
	r.logger.Debug("window query complete",
		logging.String("start", start.Format("2006-01-02")),
		logging.String("end", end.Format("2006-01-02")),
		logging.Int("patents", len(rows)))
	return rows, nil
}

// ChainFor fetches one entity's citation chain in its own read transaction.
func (r *GraphRepository) ChainFor(ctx context.Context, id string, kind graph.EntityKind) (graph.Chain, error) {
	stmt, err := chainStatement(kind)
	if err != nil {
		return nil, err
	}
	timer := metrics.GraphQueryTimer("chain_for")
	defer timer.ObserveDuration()

	out, err := r.runner.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, stmt, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return collectChain(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	chain, _ := out.(graph.Chain)
	return chain, nil
}

// ChainBatch fetches every id's chain inside a single read transaction.  Any
// per-id failure aborts the transaction and fails the whole call.
func (r *GraphRepository) ChainBatch(ctx context.Context, ids []string, kind graph.EntityKind) (map[string]graph.Chain, error) {
	stmt, err := chainStatement(kind)
	if err != nil {
		return nil, err
	}
	timer := metrics.GraphQueryTimer("chain_batch")
	defer timer.ObserveDuration()

	out, err := r.runner.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		chains := make(map[string]graph.Chain, len(ids))
		for _, id := range ids {
			result, err := tx.Run(ctx, stmt, map[string]any{"id": id})
			if err != nil {
				return nil, err
			}
			chain, err := collectChain(ctx, result)
			if err != nil {
				return nil, err
			}
			chains[id] = chain
		}
		return chains, nil
	})
	if err != nil {
		return nil, err
	}
	chains, _ := out.(map[string]graph.Chain)
	return chains, nil
}

func (r *GraphRepository) idsOf(ctx context.Context, tx Transaction, stmt, pid string) ([]string, error) {
	result, err := tx.Run(ctx, stmt, map[string]any{"pid": pid})
	if err != nil {
		return nil, err
	}
	return CollectRecords(ctx, result, func(rec *neo4j.Record) (string, error) {
		return asString(rec.Values[0])
	})
}

// AssigneesOf returns the assignee ids owning pid, ordered by id.
func (r *GraphRepository) AssigneesOf(ctx context.Context, pid string) ([]string, error) {
	out, err := r.runner.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		return r.idsOf(ctx, tx, cypherAssigneesOf, pid)
	})
	if err != nil {
		return nil, err
	}
	ids, _ := out.([]string)
	return ids, nil
}

// InventorsOf returns the inventor ids of pid, ordered by id.
func (r *GraphRepository) InventorsOf(ctx context.Context, pid string) ([]string, error) {
	out, err := r.runner.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		return r.idsOf(ctx, tx, cypherInventorsOf, pid)
	})
	if err != nil {
		return nil, err
	}
	ids, _ := out.([]string)
	return ids, nil
}

// AssociationsFor maps each pid to its associated ids inside one transaction.
// Patents with no associations are omitted.
func (r *GraphRepository) AssociationsFor(ctx context.Context, pids []string, kind graph.EntityKind) (map[string][]string, error) {
	var stmt string
	switch kind {
	case graph.KindAssignee:
		stmt = cypherAssigneesOf
	case graph.KindInventor:
		stmt = cypherInventorsOf
	default:
		return nil, errors.InvalidParam("associations require assignee or inventor kind").WithDetail(string(kind))
	}
	timer := metrics.GraphQueryTimer("associations_for")
	defer timer.ObserveDuration()

	out, err := r.runner.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		assoc := make(map[string][]string, len(pids))
		for _, pid := range pids {
			ids, err := r.idsOf(ctx, tx, stmt, pid)
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				continue
			}
			assoc[pid] = ids
		}
		return assoc, nil
	})
	if err != nil {
		return nil, err
	}
	assoc, _ := out.(map[string][]string)
	return assoc, nil
}

// CrossReference returns assignee display-name pairs induced by citations
// from pids to patents granted on or after cutoff, all inside one read
// transaction.  Names, not ids: the pair list labels visualizations directly.
func (r *GraphRepository) CrossReference(ctx context.Context, pids []string, cutoff time.Time) ([]graph.AssigneePair, error) {
	timer := metrics.GraphQueryTimer("cross_reference")
	defer timer.ObserveDuration()

	out, err := r.runner.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		var pairs []graph.AssigneePair
		for _, pid := range pids {
			result, err := tx.Run(ctx, cypherCrossReference, map[string]any{
				"pid":    pid,
				"cutoff": cutoff.Format("2006-01-02"),
			})
			if err != nil {
				return nil, err
			}
			rows, err := CollectRecords(ctx, result, func(rec *neo4j.Record) (graph.AssigneePair, error) {
				citing, err := asString(rec.Values[0])
				if err != nil {
					return graph.AssigneePair{}, err
				}
				cited, err := asString(rec.Values[1])
				if err != nil {
					return graph.AssigneePair{}, err
				}
				return graph.AssigneePair{Citing: citing, Cited: cited}, nil
			})
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, rows...)
		}
		return pairs, nil
	})
	if err != nil {
		return nil, err
	}
	pairs, _ := out.([]graph.AssigneePair)
	return pairs, nil
}
