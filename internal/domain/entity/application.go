package entity

import (
	"fmt"
	"time"
)

type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
	StatusError   OutcomeStatus = "error"
)

// Outcome is the terminal result of one application attempt.
type Outcome struct {
	Status OutcomeStatus
	Reason string
}

func Success() Outcome { return Outcome{Status: StatusSuccess} }

func Skipped(reason string) Outcome { return Outcome{Status: StatusSkipped, Reason: reason} }

func Failed(reason string) Outcome { return Outcome{Status: StatusFailed, Reason: reason} }

func Errored(message string) Outcome { return Outcome{Status: StatusError, Reason: message} }

func (o Outcome) IsSuccess() bool { return o.Status == StatusSuccess }

func (o Outcome) String() string {
	if o.Reason == "" {
		return string(o.Status)
	}
	return fmt.Sprintf("%s (%s)", o.Status, o.Reason)
}

type JobPosting struct {
	URL         string
	Title       string
	Company     string
	Location    string
	Description string
}

// ApplicationAttempt описывает одну попытку отклика; после записи в журнал не хранится.
type ApplicationAttempt struct {
	ID         string
	Job        JobPosting
	ResumeID   string
	Score      int
	Confidence float64
	Outcome    Outcome
	Notes      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldRadio    FieldKind = "radio"
	FieldDropdown FieldKind = "dropdown"
)

// UnfilledFieldRecord is a question no configured answer matched.
type UnfilledFieldRecord struct {
	Kind       FieldKind
	Label      string
	Suggestion string
}

type Stats struct {
	Total    int
	Success  int
	Failed   int
	Skipped  int
	Today    int
	ByResume map[string]int
}

type SessionSummary struct {
	Discovered int
	Attempted  int
	ByStatus   map[OutcomeStatus]int
	CapReached bool
	Canceled   bool
}

func NewSessionSummary() *SessionSummary {
	return &SessionSummary{ByStatus: make(map[OutcomeStatus]int)}
}
