package model

import "time"

// Pipeline stage names, used for audit entries and metrics labels.
const (
	StageParse      = "parse"
	StageNormalize  = "normalize"
	StageCategorize = "categorize"
	StageLoad       = "load"
	StageExport     = "export"
)

// Candidate is a parsed-but-unvalidated record: every field is the raw
// text lifted from the export, nothing is trusted yet.
type Candidate struct {
	Offset        int    `json:"offset"`
	Ref           string `json:"ref"`
	SenderPhone   string `json:"sender_phone"`
	ReceiverPhone string `json:"receiver_phone"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Body          string `json:"body"`
}

// ParseFailure carries the fragment that could not be parsed and why.
type ParseFailure struct {
	Offset   int    `json:"offset"`
	Fragment string `json:"fragment"`
	Reason   string `json:"reason"`
}

// NormalizedRecord is a Candidate after cleaning: canonical phones,
// amount in minor units, canonical UTC instant.
type NormalizedRecord struct {
	Offset        int
	Ref           string
	SenderPhone   string
	ReceiverPhone string
	Amount        int64
	Currency      string
	OccurredAt    time.Time
	Description   string
}

// CategoryAssignment is the categorizer verdict for one record.
type CategoryAssignment struct {
	Category   string
	RuleID     string
	Confidence float64
}

// Outcome is the terminal result of loading one record.
type Outcome string

const (
	OutcomeCompleted Outcome = "Completed"
	OutcomeFailed    Outcome = "Failed"
	OutcomeSkipped   Outcome = "Skipped"
	OutcomeUnparsed  Outcome = "Unparsed"
)

// BatchSummary is what a pipeline run reports to the caller.
type BatchSummary struct {
	BatchID   string        `json:"batch_id"`
	Completed int64         `json:"completed"`
	Failed    int64         `json:"failed"`
	Skipped   int64         `json:"skipped"`
	Unparsed  int64         `json:"unparsed"`
	Duration  time.Duration `json:"duration"`
}

func (s *BatchSummary) Total() int64 {
	return s.Completed + s.Failed + s.Skipped + s.Unparsed
}
