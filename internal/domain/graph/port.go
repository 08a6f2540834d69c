package graph

import (
	"context"
	"time"
)

// Query is the read capability the pipeline requires from the graph store.
// The pipeline consumes it, never implements it; the Neo4j adapter in
// internal/infrastructure/database/neo4j is the production implementation.
//
// Failure contract: any connectivity or query failure is surfaced as an
// AppError with ErrCodeGraphUnavailable.  Implementations do not retry;
// retry/backoff is an operational concern of the process supervisor.
type Query interface {
	// PatentsByTimeWindow returns patents granted within [start, end] that
	// received strictly more than minCites distinct incoming citations,
	// together with the count.  Result order carries no meaning.
	PatentsByTimeWindow(ctx context.Context, start, end time.Time, minCites int) ([]PatentCitations, error)

	// ChainFor returns the citation chain of a single entity: for a patent,
	// every patent citing it; for an assignee or inventor, every patent
	// citing any patent they own or invented, deduplicated by citing patent.
	// Ascending by citing date, ties keeping store order.
	ChainFor(ctx context.Context, id string, kind EntityKind) (Chain, error)

	// ChainBatch fetches ChainFor for every id inside one read transaction.
	// The transaction is the cost-amortization boundary of a builder batch:
	// a failure for any id fails the whole call and nothing is returned.
	ChainBatch(ctx context.Context, ids []string, kind EntityKind) (map[string]Chain, error)

	// AssigneesOf returns the assignees owning a patent, in the store's
	// stable order.  Empty when the patent has no recorded assignee.
	AssigneesOf(ctx context.Context, pid string) ([]string, error)

	// InventorsOf returns the inventors of a patent, in the store's stable
	// order.  Empty when the patent has no recorded inventor.
	InventorsOf(ctx context.Context, pid string) ([]string, error)

	// AssociationsFor maps each patent id to its associated assignee or
	// inventor ids (kind selects the relationship).  Patents with no
	// associations are omitted from the result, mirroring the behavior the
	// representative resolver expects.
	AssociationsFor(ctx context.Context, pids []string, kind EntityKind) (map[string][]string, error)

	// CrossReference returns assignee-to-assignee pairs induced by citations
	// from the given patents to patents granted on or after cutoff.
	CrossReference(ctx context.Context, pids []string, cutoff time.Time) ([]AssigneePair, error)
}

// PatentRow is one patent node as produced by the source reader and consumed
// by the bulk loader.  Nil date pointers represent values that were absent or
// malformed in the source; the node is still created.
type PatentRow struct {
	PID             string
	Kind            string
	Date            *time.Time
	ApplicationID   string
	ApplicationDate *time.Time
}

// AssigneeRow is one assignee node.
type AssigneeRow struct {
	ID   string
	Name string
	Type string
}

// InventorRow is one inventor node.
type InventorRow struct {
	ID   string
	Name string
}

// EdgeRow is one relationship between two node ids.  The loader interprets
// From/To according to the edge kind: CITE is patent→patent, OWN is
// assignee→patent, INVENT is inventor→patent.
type EdgeRow struct {
	From string
	To   string
}

// Loader is the one-time bulk-load capability: schema constraints plus
// batched node and edge creation.  It exists at the boundary of the pipeline
// (the derivation stages never write to the graph) and is implemented by the
// Neo4j adapter for completeness of the toolchain.
type Loader interface {
	EnsureConstraints(ctx context.Context) error
	LoadPatents(ctx context.Context, rows []PatentRow) error
	LoadAssignees(ctx context.Context, rows []AssigneeRow) error
	LoadInventors(ctx context.Context, rows []InventorRow) error
	LoadCitations(ctx context.Context, edges []EdgeRow) error
	LoadOwnership(ctx context.Context, edges []EdgeRow) error
	LoadInvention(ctx context.Context, edges []EdgeRow) error
}
