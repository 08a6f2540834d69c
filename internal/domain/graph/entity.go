// Package graph defines the domain model of the patent citation graph and the
// query port the derivation pipeline consumes.  The package is deliberately
// dependency-free: infrastructure adapters (Neo4j, TSV loaders) depend on it,
// never the other way around.
package graph

import (
	"time"
)

// EntityKind identifies the node label a pipeline stage operates on.
type EntityKind string

const (
	KindPatent   EntityKind = "patent"
	KindAssignee EntityKind = "assignee"
	KindInventor EntityKind = "inventor"
)

// Valid reports whether k is one of the three supported kinds.
func (k EntityKind) Valid() bool {
	switch k {
	case KindPatent, KindAssignee, KindInventor:
		return true
	}
	return false
}

// epoch is the reference date for EpochDays.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// TruncateDate normalizes t to a midnight UTC calendar date.  All chain
// ordering is computed on the truncated value so that the grant date's time
// zone or time-of-day never influences ordering.
func TruncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EpochDays converts a date to fractional days since 1970-01-01.  Persisted
// chains carry this value for downstream numeric consumers; it is never used
// for ordering.
func EpochDays(t time.Time) float64 {
	return TruncateDate(t).Sub(epoch).Hours() / 24
}

// ChainEntry is one element of a citation chain: a citing patent and the
// calendar date it was granted.
type ChainEntry struct {
	PID  string    `json:"pid"`
	Date time.Time `json:"date"`
	// Epoch mirrors Date as fractional days since 1970-01-01 for numeric
	// consumers of persisted chains.
	Epoch float64 `json:"epoch_days"`
}

// NewChainEntry builds an entry with the date truncated and Epoch derived.
func NewChainEntry(pid string, date time.Time) ChainEntry {
	d := TruncateDate(date)
	return ChainEntry{PID: pid, Date: d, Epoch: EpochDays(d)}
}

// Chain is the ordered sequence of patents citing a target entity:
// deduplicated by citing patent, ascending by citing date, same-date entries
// keeping the order the store returned them in.
type Chain []ChainEntry

// Len returns the chain length, the quantity the representative resolver
// compares.
func (c Chain) Len() int { return len(c) }

// Validate reports the first ordering or duplication violation in the chain,
// or nil.  It is used by tests and by the builder's debug assertions.
func (c Chain) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, e := range c {
		if _, dup := seen[e.PID]; dup {
			return &ChainInvariantError{Index: i, PID: e.PID, Reason: "duplicate citing patent"}
		}
		seen[e.PID] = struct{}{}
		if i > 0 && c[i-1].Date.After(e.Date) {
			return &ChainInvariantError{Index: i, PID: e.PID, Reason: "citing dates not non-decreasing"}
		}
	}
	return nil
}

// ChainInvariantError describes a violated chain invariant.
type ChainInvariantError struct {
	Index  int
	PID    string
	Reason string
}

func (e *ChainInvariantError) Error() string {
	return "chain invariant violated at entry " + e.PID + ": " + e.Reason
}

// LengthIndex maps an entity id to its chain length.  It is persisted
// separately from the chains so downstream consumers can compare lengths
// without loading full chains.
type LengthIndex map[string]int

// Merge folds other into the receiver and returns it.  Later entries win,
// which is safe because a previously chained entity is never recomputed.
func (ix LengthIndex) Merge(other LengthIndex) LengthIndex {
	for id, n := range other {
		ix[id] = n
	}
	return ix
}

// PatentCitations pairs a patent id with its distinct incoming citation count
// inside one time window.  The graph port enforces only the lower bound; the
// selector applies the upper bound on the Cites value after retrieval.
type PatentCitations struct {
	PID   string `json:"pid"`
	Cites int    `json:"cites"`
}

// AssigneePair is one assignee-to-assignee edge induced by a citation:
// the citing patent's assignee name followed by the cited patent's assignee
// name.
type AssigneePair struct {
	Citing string `json:"citing"`
	Cited  string `json:"cited"`
}
