package turn

import (
	"context"
	"time"
)

// RecordKind classifies a combat record
type RecordKind string

const (
	RecordExecuted      RecordKind = "executed"
	RecordFailed        RecordKind = "failed"
	RecordImpact        RecordKind = "impact"
	RecordExpired       RecordKind = "expired"
	RecordConcentration RecordKind = "concentration"
	RecordEnded         RecordKind = "ended"
)

// Record is one entry in the combat history
type Record struct {
	Kind       RecordKind
	Round      int
	Event      int
	At         time.Time
	ActionID   string
	TemplateID string
	SourceID   string
	Targets    []string
	EffectIDs  []string
	Total      int
	Detail     string
}

// Recorder receives combat records as they happen
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Record) error { return nil }
