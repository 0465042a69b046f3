package services

import (
	"testing"
	"time"

	"github.com/dcastillo/commispipe/internal/domain/entities"
	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
	"github.com/google/uuid"
)

func testReceivable(t *testing.T, contractID *uuid.UUID, dueDate time.Time, sequence int64) *entities.Receivable {
	t.Helper()
	amount, err := valueobjects.NewMoney("500.00", valueobjects.PEN)
	if err != nil {
		t.Fatalf("NewMoney() error = %v", err)
	}
	return entities.ReconstructReceivable(uuid.New(), contractID, dueDate, amount, sequence)
}

func due(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify_OrdinalPositions(t *testing.T) {
	contractID := uuid.New()
	first := testReceivable(t, &contractID, due(2026, 1, 15), 1)
	second := testReceivable(t, &contractID, due(2026, 2, 15), 2)
	third := testReceivable(t, &contractID, due(2026, 3, 15), 3)
	receivables := []*entities.Receivable{third, first, second} // unsorted input

	classifier := NewInstallmentClassifier()

	tests := []struct {
		name     string
		id       uuid.UUID
		expected entities.InstallmentType
	}{
		{"earliest due date is FIRST", first.ID(), entities.InstallmentFirst},
		{"next due date is SECOND", second.ID(), entities.InstallmentSecond},
		{"later due dates are OTHER", third.ID(), entities.InstallmentOther},
		{"unknown receivable is NONE", uuid.New(), entities.InstallmentNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Classify(tt.id, receivables); got != tt.expected {
				t.Errorf("Classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassify_EmptySet(t *testing.T) {
	classifier := NewInstallmentClassifier()
	if got := classifier.Classify(uuid.New(), nil); got != entities.InstallmentNone {
		t.Errorf("Classify() = %v, want NONE", got)
	}
}

func TestClassify_EqualDueDatesKeepStoredOrder(t *testing.T) {
	// Two receivables share a due date; the one stored first stays first.
	contractID := uuid.New()
	sameDay := due(2026, 1, 15)
	a := testReceivable(t, &contractID, sameDay, 1)
	b := testReceivable(t, &contractID, sameDay, 2)
	receivables := []*entities.Receivable{a, b}

	classifier := NewInstallmentClassifier()
	if got := classifier.Classify(a.ID(), receivables); got != entities.InstallmentFirst {
		t.Errorf("Classify(a) = %v, want FIRST", got)
	}
	if got := classifier.Classify(b.ID(), receivables); got != entities.InstallmentSecond {
		t.Errorf("Classify(b) = %v, want SECOND", got)
	}
}

func TestClassify_SingleReceivable(t *testing.T) {
	contractID := uuid.New()
	only := testReceivable(t, &contractID, due(2026, 1, 15), 1)

	classifier := NewInstallmentClassifier()
	if got := classifier.Classify(only.ID(), []*entities.Receivable{only}); got != entities.InstallmentFirst {
		t.Errorf("Classify() = %v, want FIRST", got)
	}
}
