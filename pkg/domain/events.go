package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep    EventType = "step"
	EventVerdict EventType = "verdict"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent is emitted after every attempted step.
type StepEvent struct {
	EventBase
	From   []string `json:"from"`
	Symbol string   `json:"symbol"`
	To     []string `json:"to"`
	Stuck  bool     `json:"stuck"`
}

// VerdictEvent is emitted when a whole-input simulation finishes.
type VerdictEvent struct {
	EventBase
	Verdict  Verdict `json:"verdict"`
	Stuck    bool    `json:"stuck"`
	Consumed int     `json:"consumed"`
	Length   int     `json:"length"`
}

// LifecycleHooks defines callbacks for simulator observability.
// Hooks observe results, they cannot change them.
type LifecycleHooks struct {
	OnStep    func(context.Context, *StepEvent)
	OnVerdict func(context.Context, *VerdictEvent)
}
