package entities

import (
	"time"

	"github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/google/uuid"
)

// CommissionScheme is a named, time-bounded rule set governing how sales
// commissions are computed. At most one scheme is active per calendar date;
// a nil effectiveTo means the scheme is open-ended (currently active).
//
// The non-overlap invariant is enforced by truncation, never rejection:
// introducing a scheme that starts at F closes every sibling whose interval
// would otherwise cover F (see the scheme use cases).
type CommissionScheme struct {
	id            uuid.UUID
	name          string
	effectiveFrom *time.Time
	effectiveTo   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewCommissionScheme creates a scheme. effectiveFrom may be nil: such a
// scheme is a draft and does not participate in temporal consistency until
// a start date is set.
func NewCommissionScheme(name string, effectiveFrom *time.Time) (*CommissionScheme, error) {
	if name == "" {
		return nil, errors.ErrSchemeNameRequired
	}

	now := time.Now()
	s := &CommissionScheme{
		id:        uuid.New(),
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
	if effectiveFrom != nil {
		d := truncateToDate(*effectiveFrom)
		s.effectiveFrom = &d
	}
	return s, nil
}

// ReconstructCommissionScheme reconstructs a scheme from stored data.
func ReconstructCommissionScheme(
	id uuid.UUID,
	name string,
	effectiveFrom, effectiveTo *time.Time,
	createdAt, updatedAt time.Time,
) *CommissionScheme {
	return &CommissionScheme{
		id:            id,
		name:          name,
		effectiveFrom: effectiveFrom,
		effectiveTo:   effectiveTo,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (s *CommissionScheme) ID() uuid.UUID {
	return s.id
}

func (s *CommissionScheme) Name() string {
	return s.name
}

func (s *CommissionScheme) EffectiveFrom() *time.Time {
	return s.effectiveFrom
}

func (s *CommissionScheme) EffectiveTo() *time.Time {
	return s.effectiveTo
}

func (s *CommissionScheme) CreatedAt() time.Time {
	return s.createdAt
}

func (s *CommissionScheme) UpdatedAt() time.Time {
	return s.updatedAt
}

// IsOpenEnded reports whether the scheme has no end date.
func (s *CommissionScheme) IsOpenEnded() bool {
	return s.effectiveFrom != nil && s.effectiveTo == nil
}

// Covers reports whether the scheme's effective interval includes the given
// date. A nil effectiveTo is treated as +infinity.
func (s *CommissionScheme) Covers(date time.Time) bool {
	if s.effectiveFrom == nil {
		return false
	}
	d := truncateToDate(date)
	if d.Before(*s.effectiveFrom) {
		return false
	}
	if s.effectiveTo == nil {
		return true
	}
	return !d.After(*s.effectiveTo)
}

// WouldOverlap reports whether this scheme's interval covers the boundary
// date of a sibling starting at from: the scheme starts strictly earlier
// and either is open-ended or ends on or after from.
func (s *CommissionScheme) WouldOverlap(from time.Time) bool {
	if s.effectiveFrom == nil {
		return false
	}
	f := truncateToDate(from)
	if !s.effectiveFrom.Before(f) {
		return false
	}
	return s.effectiveTo == nil || !s.effectiveTo.Before(f)
}

// TruncateBefore closes the scheme the day before the given boundary date.
// Business rule: truncation never moves an end date in a way that inverts
// the interval; callers must only truncate schemes that WouldOverlap.
func (s *CommissionScheme) TruncateBefore(from time.Time) error {
	if s.effectiveFrom == nil {
		return errors.NewBusinessRuleViolation(
			"SCHEME_WITHOUT_START",
			"cannot truncate a scheme without an effective start date",
			map[string]interface{}{"schemeID": s.id.String()},
		)
	}

	end := truncateToDate(from).AddDate(0, 0, -1)
	if end.Before(*s.effectiveFrom) {
		return errors.ErrSchemeInvertedInterval
	}

	s.effectiveTo = &end
	s.updatedAt = time.Now()
	return nil
}

// Reschedule moves the scheme's effective start date. The end date is kept
// as-is; the consistency pass recomputes sibling truncation around the new
// boundary.
func (s *CommissionScheme) Reschedule(effectiveFrom time.Time) error {
	d := truncateToDate(effectiveFrom)
	if s.effectiveTo != nil && s.effectiveTo.Before(d) {
		return errors.ErrSchemeInvertedInterval
	}

	s.effectiveFrom = &d
	s.updatedAt = time.Now()
	return nil
}

// Rename changes the scheme's display name.
func (s *CommissionScheme) Rename(name string) error {
	if name == "" {
		return errors.ErrSchemeNameRequired
	}
	s.name = name
	s.updatedAt = time.Now()
	return nil
}

// truncateToDate drops the time-of-day component. Scheme intervals are
// calendar-date granular.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
