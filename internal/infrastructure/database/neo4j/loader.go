package neo4j

import (
	"context"
	"time"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/pkg/errors"
)

// loadBatchSize caps the rows per UNWIND write transaction.
const loadBatchSize = 1000

const (
	cypherConstraintPatent = `
CREATE CONSTRAINT patent_pid IF NOT EXISTS
FOR (p:Patent) REQUIRE p.pid IS UNIQUE`

	cypherConstraintAssignee = `
CREATE CONSTRAINT assignee_id IF NOT EXISTS
FOR (a:Assignee) REQUIRE a.assignee_id IS UNIQUE`

	cypherConstraintInventor = `
CREATE CONSTRAINT inventor_id IF NOT EXISTS
FOR (i:Inventor) REQUIRE i.inventor_id IS UNIQUE`

	cypherMergePatents = `
UNWIND $rows AS row
MERGE (p:Patent {pid: row.pid})
SET p.kind = row.kind,
    p.date = CASE WHEN row.date IS NULL THEN null ELSE date(row.date) END,
    p.application_id = row.application_id,
    p.application_date = CASE WHEN row.application_date IS NULL THEN null ELSE date(row.application_date) END`

	cypherMergeAssignees = `
UNWIND $rows AS row
MERGE (a:Assignee {assignee_id: row.id})
SET a.name = row.name, a.type = row.type`

	cypherMergeInventors = `
UNWIND $rows AS row
MERGE (i:Inventor {inventor_id: row.id})
SET i.name = row.name`

	cypherMergeCitations = `
UNWIND $rows AS row
MATCH (citing:Patent {pid: row.from})
MATCH (cited:Patent {pid: row.to})
MERGE (citing)-[:CITE]->(cited)`

	cypherMergeOwnership = `
UNWIND $rows AS row
MATCH (a:Assignee {assignee_id: row.from})
MATCH (p:Patent {pid: row.to})
MERGE (a)-[:OWN]->(p)`

	cypherMergeInvention = `
UNWIND $rows AS row
MATCH (i:Inventor {inventor_id: row.from})
MATCH (p:Patent {pid: row.to})
MERGE (i)-[:INVENT]->(p)`
)

// GraphLoader implements graph.Loader with batched UNWIND merges.  Node loads
// must complete before edge loads: the edge statements MATCH their endpoints
// and silently skip rows whose nodes are missing.
type GraphLoader struct {
	runner Runner
	logger logging.Logger
}

// NewGraphLoader creates a graph.Loader backed by runner.
func NewGraphLoader(runner Runner, log logging.Logger) *GraphLoader {
	return &GraphLoader{runner: runner, logger: log}
}

var _ graph.Loader = (*GraphLoader)(nil)

// EnsureConstraints creates the uniqueness constraints the merge statements
// rely on.  Idempotent.
func (l *GraphLoader) EnsureConstraints(ctx context.Context) error {
	for _, stmt := range []string{cypherConstraintPatent, cypherConstraintAssignee, cypherConstraintInventor} {
		_, err := l.runner.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
			result, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeGraphLoadFailed, "constraint creation failed")
		}
	}
	return nil
}

// dateParam renders an optional date as the string form date() accepts, or
// nil so the merge statement stores a null property.
func dateParam(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func (l *GraphLoader) writeBatches(ctx context.Context, stmt string, rows []map[string]any, what string) error {
	for off := 0; off < len(rows); off += loadBatchSize {
		end := off + loadBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[off:end]
		_, err := l.runner.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
			result, err := tx.Run(ctx, stmt, map[string]any{"rows": batch})
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeGraphLoadFailed, "load batch failed").WithDetail(what)
		}
		l.logger.Debug("load batch written",
			logging.String("what", what),
			logging.Int("rows", len(batch)))
	}
	return nil
}

// LoadPatents merges patent nodes.  Nil dates become null properties; the
// node is still created so the citation topology stays intact.
func (l *GraphLoader) LoadPatents(ctx context.Context, rows []graph.PatentRow) error {
	params := make([]map[string]any, len(rows))
	for i, row := range rows {
		params[i] = map[string]any{
			"pid":              row.PID,
			"kind":             row.Kind,
			"date":             dateParam(row.Date),
			"application_id":   row.ApplicationID,
			"application_date": dateParam(row.ApplicationDate),
		}
	}
	return l.writeBatches(ctx, cypherMergePatents, params, "patents")
}

// LoadAssignees merges assignee nodes.
func (l *GraphLoader) LoadAssignees(ctx context.Context, rows []graph.AssigneeRow) error {
	params := make([]map[string]any, len(rows))
	for i, row := range rows {
		params[i] = map[string]any{"id": row.ID, "name": row.Name, "type": row.Type}
	}
	return l.writeBatches(ctx, cypherMergeAssignees, params, "assignees")
}

// LoadInventors merges inventor nodes.
func (l *GraphLoader) LoadInventors(ctx context.Context, rows []graph.InventorRow) error {
	params := make([]map[string]any, len(rows))
	for i, row := range rows {
		params[i] = map[string]any{"id": row.ID, "name": row.Name}
	}
	return l.writeBatches(ctx, cypherMergeInventors, params, "inventors")
}

func edgeParams(edges []graph.EdgeRow) []map[string]any {
	params := make([]map[string]any, len(edges))
	for i, e := range edges {
		params[i] = map[string]any{"from": e.From, "to": e.To}
	}
	return params
}

// LoadCitations merges patent→patent CITE edges.
func (l *GraphLoader) LoadCitations(ctx context.Context, edges []graph.EdgeRow) error {
	return l.writeBatches(ctx, cypherMergeCitations, edgeParams(edges), "citations")
}

// LoadOwnership merges assignee→patent OWN edges.
func (l *GraphLoader) LoadOwnership(ctx context.Context, edges []graph.EdgeRow) error {
	return l.writeBatches(ctx, cypherMergeOwnership, edgeParams(edges), "ownership")
}

// LoadInvention merges inventor→patent INVENT edges.
func (l *GraphLoader) LoadInvention(ctx context.Context, edges []graph.EdgeRow) error {
	return l.writeBatches(ctx, cypherMergeInvention, edgeParams(edges), "invention")
}
