package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_003"
	ErrCodeValidation    ErrorCode = "COMMON_004"
	ErrCodeSerialization ErrorCode = "COMMON_005"
	ErrCodeTimeout       ErrorCode = "COMMON_006"
)

// Short aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Graph store error codes.
const (
	// ErrCodeGraphUnavailable marks connectivity or protocol failures talking
	// to the graph store.  Fatal for the current run step; never retried by
	// the core.
	ErrCodeGraphUnavailable ErrorCode = "GRAPH_001"
	ErrCodeGraphQueryFailed ErrorCode = "GRAPH_002"
	ErrCodeGraphLoadFailed  ErrorCode = "GRAPH_003"
)

// Artifact store error codes.
const (
	ErrCodeStorageError     ErrorCode = "STORE_001"
	ErrCodeArtifactNotFound ErrorCode = "STORE_002"
	ErrCodeArtifactCorrupt  ErrorCode = "STORE_003"
)

// Pipeline error codes.
const (
	// ErrCodeMissingLengthEntry marks a candidate entity with no chain-length
	// index entry during representative resolution.  Always fatal; zero
	// lengths must be present explicitly, never defaulted.
	ErrCodeMissingLengthEntry ErrorCode = "PIPE_001"
	ErrCodeEmptyCandidateSet  ErrorCode = "PIPE_002"
	ErrCodeBatchFailed        ErrorCode = "PIPE_003"
)

// Source data error codes.
const (
	// ErrCodeMalformedDate marks an unparseable calendar date in source data.
	// Recovered locally by nulling the field; the record itself is kept.
	ErrCodeMalformedDate  ErrorCode = "SRC_001"
	ErrCodeSourceUnusable ErrorCode = "SRC_002"
)
