package entity

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
)

type JobState string

const (
	StatePending   JobState = "PENDING"
	StateRunning   JobState = "RUNNING"
	StateSucceeded JobState = "SUCCEEDED"
	StateFailed    JobState = "FAILED"
)

// Terminal reports whether no further transitions can happen from s.
func (s JobState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

func (s JobState) Valid() bool {
	switch s {
	case StatePending, StateRunning, StateSucceeded, StateFailed:
		return true
	}
	return false
}

// CanTransition enforces the forward-only lifecycle
// PENDING -> RUNNING -> {SUCCEEDED, FAILED}. Staying in the same
// non-terminal state is allowed (progress updates while RUNNING).
func CanTransition(from, to JobState) bool {
	switch from {
	case StatePending:
		return to == StatePending || to == StateRunning || to.Terminal()
	case StateRunning:
		return to == StateRunning || to.Terminal()
	default:
		return false
	}
}

// Stage is one ordered step of a pipeline attempt.
type Stage string

const (
	StageSearch       Stage = "SEARCH"
	StagePriceAndHold Stage = "PRICE_AND_HOLD"
	StageFinalize     Stage = "FINALIZE"
)

type Job struct {
	ID           uuid.UUID  `json:"job_id"`
	State        JobState   `json:"state"`
	Stage        Stage      `json:"stage,omitempty"`
	AttemptCount int        `json:"attempt_count"`
	Request      JobRequest `json:"request"`
	Result       *Outcome   `json:"result,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// NewJob returns a PENDING record for req.
func NewJob(req JobRequest, now time.Time) *Job {
	return &Job{
		ID:        uuid.New(),
		State:     StatePending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Finish moves the job into the terminal state implied by the outcome.
func (j *Job) Finish(out Outcome, now time.Time) {
	j.State = StateFailed
	if out.Status == OutcomeHeld {
		j.State = StateSucceeded
	}
	j.Result = &out
	j.UpdatedAt = now
	j.FinishedAt = &now
}

// Expired reports whether a terminal job finished before cutoff.
func (j *Job) Expired(cutoff time.Time) bool {
	return j.State.Terminal() && j.FinishedAt != nil && j.FinishedAt.Before(cutoff)
}

// Clone returns a deep copy so that snapshots handed out by a store
// cannot be mutated by callers.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Result != nil {
		r := j.Result.clone()
		c.Result = &r
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// Offer is a provider itinerary/price combination. The core treats it as
// opaque and passes it back to the provider verbatim.
type Offer = json.RawMessage

type OutcomeStatus string

const (
	OutcomeHeld       OutcomeStatus = "held"
	OutcomeHoldFailed OutcomeStatus = "hold_failed"
	OutcomeNotFound   OutcomeStatus = "not_found"
)

type Outcome struct {
	Status      OutcomeStatus   `json:"status"`
	Offers      []Offer         `json:"offers,omitempty"`
	HoldDetails json.RawMessage `json:"hold_details,omitempty"`
	Error       json.RawMessage `json:"error,omitempty"`
}

func HeldOutcome(offers []Offer, details json.RawMessage) Outcome {
	return Outcome{Status: OutcomeHeld, Offers: offers, HoldDetails: details}
}

func HoldFailedOutcome(offers []Offer, errPayload json.RawMessage) Outcome {
	return Outcome{Status: OutcomeHoldFailed, Offers: offers, Error: errPayload}
}

// NotFoundOutcome carries errPayload only when the search ended on a
// provider error rather than on zero offers.
func NotFoundOutcome(errPayload json.RawMessage) Outcome {
	return Outcome{Status: OutcomeNotFound, Error: errPayload}
}

// ErrorPayload renders a plain message in the `{"message": ...}` shape used
// for errors the core produces itself.
func ErrorPayload(msg string) json.RawMessage {
	b, _ := json.Marshal(struct {
		Message string `json:"message"`
	}{Message: msg})
	return b
}

// SameOutcome reports whether a and b are both nil or carry identical
// outcomes.
func SameOutcome(a, b *Outcome) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(*a, *b)
}

func (o Outcome) clone() Outcome {
	c := o
	if o.Offers != nil {
		c.Offers = make([]Offer, len(o.Offers))
		for i, of := range o.Offers {
			c.Offers[i] = append(Offer(nil), of...)
		}
	}
	if o.HoldDetails != nil {
		c.HoldDetails = append(json.RawMessage(nil), o.HoldDetails...)
	}
	if o.Error != nil {
		c.Error = append(json.RawMessage(nil), o.Error...)
	}
	return c
}
