package artifact

import (
	"fmt"

	"github.com/techflow/citechain/internal/domain/graph"
)

// Key naming is the cache-addressing scheme: every name is a pure function of
// (stage, parameters).  The shapes follow the original pipeline's artifact
// files so that directory listings from either tool read the same way:
//
//	pids.min_cites20.max_cites200.json
//	assignees.min_cites20.max_cites200.json
//	assignee.chains.raw.003.json
//	assignee.chains.len.json
//	pid2assignee.json

// candidatePrefix maps an entity kind to its candidate-set name stem.
func candidatePrefix(kind graph.EntityKind) string {
	switch kind {
	case graph.KindPatent:
		return "pids"
	case graph.KindAssignee:
		return "assignees"
	default:
		return "inventors"
	}
}

// CandidateKey names a candidate-set artifact.  Time windows are configured,
// not key material: the same output directory must not mix year ranges.
func CandidateKey(kind graph.EntityKind, minCites, maxCites int) string {
	return fmt.Sprintf("%s.min_cites%d.max_cites%d.json", candidatePrefix(kind), minCites, maxCites)
}

// CheckpointPrefix is the common prefix of all batch checkpoints for a kind.
func CheckpointPrefix(kind graph.EntityKind) string {
	return fmt.Sprintf("%s.chains.raw.", kind)
}

// CheckpointKey names one batch checkpoint.  The zero-padded index makes a
// lexicographic listing reproduce processing order.
func CheckpointKey(kind graph.EntityKind, batchIndex int) string {
	return fmt.Sprintf("%s%03d.json", CheckpointPrefix(kind), batchIndex)
}

// LengthIndexKey names the single aggregated chain-length index for a kind.
func LengthIndexKey(kind graph.EntityKind) string {
	return fmt.Sprintf("%s.chains.len.json", kind)
}

// RepresentativeKey names the terminal pid→entity map for a kind.
func RepresentativeKey(kind graph.EntityKind) string {
	return fmt.Sprintf("pid2%s.json", kind)
}

// CrossrefKey names the assignee cross-reference artifact; the cutoff date
// is key material because it changes the pair set.
func CrossrefKey(cutoff string) string {
	return fmt.Sprintf("assignee.crossref.%s.json", cutoff)
}
