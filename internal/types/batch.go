package types

// FailureKind classifies why a row did not produce a record.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureEmpty     FailureKind = "empty_response"
	FailureMalformed FailureKind = "malformed_response"
	FailureInvalid   FailureKind = "invalid_record"
	FailureInput     FailureKind = "invalid_input"
)

// RowStatus is the terminal state of a processed row.
type RowStatus string

const (
	RowFinalized RowStatus = "finalized"
	RowSkipped   RowStatus = "skipped"
	RowFailed    RowStatus = "failed"
)

// EnrichedRow pairs an input line with its finalized record.
type EnrichedRow struct {
	Index    int              `json:"index"`
	Input    RawMenuLine      `json:"input"`
	Signals  ExtractedSignals `json:"signals"`
	Record   *WineRecord      `json:"record"`
	Attempts int              `json:"attempts"`
	Complete bool             `json:"complete"`
}

// RowFailure records a row that could not be enriched.
type RowFailure struct {
	Index  int         `json:"index"`
	Input  RawMenuLine `json:"input"`
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// SkippedRow records a row the classifier excluded.
type SkippedRow struct {
	Index int         `json:"index"`
	Input RawMenuLine `json:"input"`
}

// BatchResult accumulates the outcome of one run, each list in input order.
type BatchResult struct {
	RunID     string        `json:"run_id"`
	Succeeded []EnrichedRow `json:"succeeded"`
	Failed    []RowFailure  `json:"failed"`
	Skipped   []SkippedRow  `json:"skipped"`
}

// Total returns the number of rows that reached a terminal state.
func (b *BatchResult) Total() int {
	return len(b.Succeeded) + len(b.Failed) + len(b.Skipped)
}

// Incomplete counts finalized rows that still have missing must-fill fields.
func (b *BatchResult) Incomplete() int {
	n := 0
	for _, r := range b.Succeeded {
		if !r.Complete {
			n++
		}
	}
	return n
}
