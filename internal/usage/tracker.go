package usage

import (
	"context"
	"time"
)

// StorageKey is the fixed key the original client kept its counter under; it
// namespaces every backend so records survive store migrations.
const StorageKey = "gzaf_audio_usage"

// Record is one client's audio usage for one calendar month.
type Record struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Store is the injectable persistence behind the tracker. ok is false when no
// record exists yet for the key.
type Store interface {
	Load(ctx context.Context, clientID string) (rec Record, ok bool, err error)
	Save(ctx context.Context, clientID string, rec Record) error
	Close() error
}

// Tracker enforces the monthly audio generation cap. It is advisory only: the
// counter gates the UI flow, it is not a security boundary.
type Tracker struct {
	store Store
	cap   int
	now   func() time.Time
}

func NewTracker(store Store, cap int) *Tracker {
	return &Tracker{store: store, cap: cap, now: time.Now}
}

// PeriodKey returns the current quota window as a YYYY-MM string in UTC.
func (t *Tracker) PeriodKey() string {
	return t.now().UTC().Format("2006-01")
}

// ResetsOn reports the first day of the next quota window.
func (t *Tracker) ResetsOn() time.Time {
	n := t.now().UTC()
	return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// Cap returns the configured monthly limit.
func (t *Tracker) Cap() int { return t.cap }

// Usage reads the client's record for the current period. A record stored for
// any other period reads as a fresh zero count; the count never goes negative
// and never carries over.
func (t *Tracker) Usage(ctx context.Context, clientID string) (Record, error) {
	period := t.PeriodKey()
	rec, ok, err := t.store.Load(ctx, clientID)
	if err != nil {
		return Record{}, err
	}
	if !ok || rec.Month != period || rec.Count < 0 {
		return Record{Month: period, Count: 0}, nil
	}
	return rec, nil
}

// Allow reports whether another audio generation fits under the cap.
func (t *Tracker) Allow(ctx context.Context, clientID string) (bool, error) {
	rec, err := t.Usage(ctx, clientID)
	if err != nil {
		return false, err
	}
	return rec.Count < t.cap, nil
}

// RecordSuccess adds exactly one to the current period's count. Callers invoke
// it only after the provider returned audio bytes; a failed synthesis never
// consumes quota.
func (t *Tracker) RecordSuccess(ctx context.Context, clientID string) error {
	rec, err := t.Usage(ctx, clientID)
	if err != nil {
		return err
	}
	rec.Count++
	return t.store.Save(ctx, clientID, rec)
}
