package entities

import (
	"testing"
	"time"

	"github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/google/uuid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestNewCommissionScheme_Success(t *testing.T) {
	from := date(2026, 3, 1)
	scheme, err := NewCommissionScheme("Q2 accelerator", &from)
	if err != nil {
		t.Fatalf("NewCommissionScheme() error = %v", err)
	}

	if scheme.Name() != "Q2 accelerator" {
		t.Errorf("Name() = %v, want Q2 accelerator", scheme.Name())
	}
	if scheme.EffectiveFrom() == nil || !scheme.EffectiveFrom().Equal(from) {
		t.Errorf("EffectiveFrom() = %v, want %v", scheme.EffectiveFrom(), from)
	}
	if scheme.EffectiveTo() != nil {
		t.Errorf("EffectiveTo() = %v, want nil", scheme.EffectiveTo())
	}
	if !scheme.IsOpenEnded() {
		t.Error("IsOpenEnded() = false, want true")
	}
}

func TestNewCommissionScheme_Draft(t *testing.T) {
	scheme, err := NewCommissionScheme("draft scheme", nil)
	if err != nil {
		t.Fatalf("NewCommissionScheme() error = %v", err)
	}

	if scheme.EffectiveFrom() != nil {
		t.Errorf("EffectiveFrom() = %v, want nil", scheme.EffectiveFrom())
	}
	if scheme.IsOpenEnded() {
		t.Error("draft scheme must not report itself open-ended")
	}
	if scheme.Covers(date(2026, 1, 1)) {
		t.Error("draft scheme must not cover any date")
	}
}

func TestNewCommissionScheme_EmptyName(t *testing.T) {
	_, err := NewCommissionScheme("", nil)
	if err != errors.ErrSchemeNameRequired {
		t.Errorf("NewCommissionScheme() error = %v, want ErrSchemeNameRequired", err)
	}
}

func TestNewCommissionScheme_TruncatesTimeOfDay(t *testing.T) {
	from := time.Date(2026, 3, 15, 17, 42, 3, 0, time.UTC)
	scheme, err := NewCommissionScheme("afternoon start", &from)
	if err != nil {
		t.Fatalf("NewCommissionScheme() error = %v", err)
	}

	want := date(2026, 3, 15)
	if !scheme.EffectiveFrom().Equal(want) {
		t.Errorf("EffectiveFrom() = %v, want %v", scheme.EffectiveFrom(), want)
	}
}

func TestCommissionScheme_Covers(t *testing.T) {
	tests := []struct {
		name     string
		from     *time.Time
		to       *time.Time
		query    time.Time
		expected bool
	}{
		{"inside closed interval", datePtr(2026, 1, 1), datePtr(2026, 6, 30), date(2026, 3, 15), true},
		{"on start boundary", datePtr(2026, 1, 1), datePtr(2026, 6, 30), date(2026, 1, 1), true},
		{"on end boundary", datePtr(2026, 1, 1), datePtr(2026, 6, 30), date(2026, 6, 30), true},
		{"before start", datePtr(2026, 1, 1), datePtr(2026, 6, 30), date(2025, 12, 31), false},
		{"after end", datePtr(2026, 1, 1), datePtr(2026, 6, 30), date(2026, 7, 1), false},
		{"open-ended covers far future", datePtr(2026, 1, 1), nil, date(2030, 1, 1), true},
		{"draft covers nothing", nil, nil, date(2026, 1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme := ReconstructCommissionScheme(uuid.New(), "s", tt.from, tt.to, time.Now(), time.Now())
			if got := scheme.Covers(tt.query); got != tt.expected {
				t.Errorf("Covers(%v) = %v, want %v", tt.query, got, tt.expected)
			}
		})
	}
}

func TestCommissionScheme_WouldOverlap(t *testing.T) {
	tests := []struct {
		name     string
		from     *time.Time
		to       *time.Time
		boundary time.Time
		expected bool
	}{
		{"open-ended earlier scheme overlaps", datePtr(2026, 1, 1), nil, date(2026, 4, 1), true},
		{"closed scheme ending after boundary overlaps", datePtr(2026, 1, 1), datePtr(2026, 6, 30), date(2026, 4, 1), true},
		{"closed scheme ending on boundary overlaps", datePtr(2026, 1, 1), datePtr(2026, 4, 1), date(2026, 4, 1), true},
		{"closed scheme ending before boundary does not", datePtr(2026, 1, 1), datePtr(2026, 3, 31), date(2026, 4, 1), false},
		{"scheme starting on boundary does not", datePtr(2026, 4, 1), nil, date(2026, 4, 1), false},
		{"scheme starting after boundary does not", datePtr(2026, 5, 1), nil, date(2026, 4, 1), false},
		{"draft never overlaps", nil, nil, date(2026, 4, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme := ReconstructCommissionScheme(uuid.New(), "s", tt.from, tt.to, time.Now(), time.Now())
			if got := scheme.WouldOverlap(tt.boundary); got != tt.expected {
				t.Errorf("WouldOverlap(%v) = %v, want %v", tt.boundary, got, tt.expected)
			}
		})
	}
}

func TestCommissionScheme_TruncateBefore(t *testing.T) {
	scheme := ReconstructCommissionScheme(uuid.New(), "old", datePtr(2026, 1, 1), nil, time.Now(), time.Now())

	if err := scheme.TruncateBefore(date(2026, 4, 1)); err != nil {
		t.Fatalf("TruncateBefore() error = %v", err)
	}

	want := date(2026, 3, 31)
	if scheme.EffectiveTo() == nil || !scheme.EffectiveTo().Equal(want) {
		t.Errorf("EffectiveTo() = %v, want %v", scheme.EffectiveTo(), want)
	}
	if scheme.IsOpenEnded() {
		t.Error("truncated scheme must not be open-ended")
	}
}

func TestCommissionScheme_TruncateBefore_SingleDayInterval(t *testing.T) {
	// A scheme starting the day before the boundary collapses to one day.
	scheme := ReconstructCommissionScheme(uuid.New(), "short", datePtr(2026, 3, 31), nil, time.Now(), time.Now())

	if err := scheme.TruncateBefore(date(2026, 4, 1)); err != nil {
		t.Fatalf("TruncateBefore() error = %v", err)
	}
	if !scheme.EffectiveTo().Equal(date(2026, 3, 31)) {
		t.Errorf("EffectiveTo() = %v, want 2026-03-31", scheme.EffectiveTo())
	}
}

func TestCommissionScheme_TruncateBefore_InvertedInterval(t *testing.T) {
	scheme := ReconstructCommissionScheme(uuid.New(), "late", datePtr(2026, 4, 1), nil, time.Now(), time.Now())

	err := scheme.TruncateBefore(date(2026, 4, 1))
	if err != errors.ErrSchemeInvertedInterval {
		t.Errorf("TruncateBefore() error = %v, want ErrSchemeInvertedInterval", err)
	}
	if scheme.EffectiveTo() != nil {
		t.Errorf("EffectiveTo() = %v, want nil after failed truncation", scheme.EffectiveTo())
	}
}

func TestCommissionScheme_TruncateBefore_Draft(t *testing.T) {
	scheme := ReconstructCommissionScheme(uuid.New(), "draft", nil, nil, time.Now(), time.Now())

	err := scheme.TruncateBefore(date(2026, 4, 1))
	if !errors.IsBusinessRuleViolation(err) {
		t.Errorf("TruncateBefore() error = %v, want BusinessRuleViolation", err)
	}
}

func TestCommissionScheme_Reschedule(t *testing.T) {
	scheme := ReconstructCommissionScheme(uuid.New(), "s", datePtr(2026, 1, 1), nil, time.Now(), time.Now())

	if err := scheme.Reschedule(date(2026, 2, 15)); err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}
	if !scheme.EffectiveFrom().Equal(date(2026, 2, 15)) {
		t.Errorf("EffectiveFrom() = %v, want 2026-02-15", scheme.EffectiveFrom())
	}
}

func TestCommissionScheme_Reschedule_AfterEnd(t *testing.T) {
	scheme := ReconstructCommissionScheme(uuid.New(), "s", datePtr(2026, 1, 1), datePtr(2026, 3, 31), time.Now(), time.Now())

	err := scheme.Reschedule(date(2026, 4, 1))
	if err != errors.ErrSchemeInvertedInterval {
		t.Errorf("Reschedule() error = %v, want ErrSchemeInvertedInterval", err)
	}
}

func TestCommissionScheme_Rename(t *testing.T) {
	scheme := ReconstructCommissionScheme(uuid.New(), "before", nil, nil, time.Now(), time.Now())

	if err := scheme.Rename("after"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if scheme.Name() != "after" {
		t.Errorf("Name() = %v, want after", scheme.Name())
	}

	if err := scheme.Rename(""); err != errors.ErrSchemeNameRequired {
		t.Errorf("Rename(\"\") error = %v, want ErrSchemeNameRequired", err)
	}
}
