package model

import "time"

// Frequency is the recurrence unit of a schedule.
type Frequency string

const (
	FreqWeekly    Frequency = "weekly"
	FreqBiweekly  Frequency = "biweekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqYearly    Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FreqWeekly, FreqBiweekly, FreqMonthly, FreqQuarterly, FreqYearly:
		return true
	}
	return false
}

// Advance returns from moved forward by interval periods of f.
func (f Frequency) Advance(from time.Time, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}
	switch f {
	case FreqWeekly:
		return from.AddDate(0, 0, 7*interval)
	case FreqBiweekly:
		return from.AddDate(0, 0, 14*interval)
	case FreqMonthly:
		return from.AddDate(0, interval, 0)
	case FreqQuarterly:
		return from.AddDate(0, 3*interval, 0)
	case FreqYearly:
		return from.AddDate(interval, 0, 0)
	}
	return from
}

// RecurringSchedule materializes a fresh invoice from a template invoice
// once per period. ClaimToken/ClaimedAt implement the claim-before-
// generate protocol: a worker claims the row, generates, then advances
// NextDueDate and clears the claim in the same transaction as the new
// invoice. A crash between claim and commit leaves the row retryable
// after the claim goes stale.
type RecurringSchedule struct {
	ID                uint      `gorm:"primaryKey"`
	TemplateInvoiceID uint      `gorm:"not null;index"`
	Frequency         Frequency `gorm:"not null"`
	Interval          int       `gorm:"not null;default:1"`
	StartDate         time.Time
	EndDate           *time.Time
	NextDueDate       time.Time `gorm:"index"`
	LastCreatedDate   *time.Time
	Occurrences       int
	MaxOccurrences    int // 0 = unlimited
	Active            bool `gorm:"index"`
	ClaimToken        string
	ClaimedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Exhausted reports whether the schedule has no further periods to run:
// the occurrence cap is reached or the next run falls past the end date.
func (s *RecurringSchedule) Exhausted() bool {
	if s.MaxOccurrences > 0 && s.Occurrences >= s.MaxOccurrences {
		return true
	}
	if s.EndDate != nil && s.NextDueDate.After(*s.EndDate) {
		return true
	}
	return false
}
