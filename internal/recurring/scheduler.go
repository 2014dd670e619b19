// Package recurring materializes invoices from schedules. Each schedule
// points at a template invoice; when a schedule comes due the scheduler
// claims it, clones the template into a fresh issued invoice, and
// advances the schedule in the same transaction. The claim keeps
// overlapping runs from double-billing a period, and a claim left by a
// crashed run goes stale and becomes retryable.
package recurring

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerbook-dev/ledgerbook/internal/invoicing"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// DefaultStaleClaim is how long a claim blocks other runs before it is
// considered abandoned.
const DefaultStaleClaim = time.Hour

// Scheduler runs recurring schedules.
type Scheduler struct {
	st         *store.Store
	invoices   *invoicing.Service
	staleAfter time.Duration
	now        func() time.Time
}

// NewScheduler creates a Scheduler.
func NewScheduler(st *store.Store, invoices *invoicing.Service) *Scheduler {
	return &Scheduler{st: st, invoices: invoices, staleAfter: DefaultStaleClaim, now: time.Now}
}

// CreateParams describes a new schedule.
type CreateParams struct {
	TemplateInvoiceID uint
	Frequency         model.Frequency
	Interval          int
	StartDate         time.Time
	EndDate           *time.Time
	MaxOccurrences    int
}

// Create validates and persists a schedule. The first invoice falls on
// StartDate.
func (s *Scheduler) Create(params CreateParams) (*model.RecurringSchedule, error) {
	if !params.Frequency.Valid() {
		return nil, model.ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", params.Frequency)}
	}
	if params.StartDate.IsZero() {
		return nil, model.ValidationError{Field: "start_date", Reason: "required"}
	}
	if params.EndDate != nil && params.EndDate.Before(params.StartDate) {
		return nil, model.ValidationError{Field: "end_date", Reason: "before start date"}
	}
	if params.Interval < 1 {
		params.Interval = 1
	}

	tmpl, err := s.invoices.Get(params.TemplateInvoiceID)
	if err != nil {
		return nil, err
	}
	if tmpl.Type != model.TypeInvoice {
		return nil, model.ValidationError{Field: "template_invoice_id", Reason: "template must be an invoice"}
	}
	if len(tmpl.Items) == 0 {
		return nil, model.ValidationError{Field: "template_invoice_id", Reason: "template has no items"}
	}

	sc := &model.RecurringSchedule{
		TemplateInvoiceID: params.TemplateInvoiceID,
		Frequency:         params.Frequency,
		Interval:          params.Interval,
		StartDate:         params.StartDate,
		EndDate:           params.EndDate,
		NextDueDate:       params.StartDate,
		MaxOccurrences:    params.MaxOccurrences,
		Active:            true,
	}
	if err := s.st.CreateSchedule(sc); err != nil {
		return nil, fmt.Errorf("persisting schedule: %w", err)
	}
	return sc, nil
}

// Deactivate stops a schedule from firing again.
func (s *Scheduler) Deactivate(scheduleID uint) error {
	sc, err := s.st.ScheduleByID(scheduleID)
	if err != nil {
		return err
	}
	sc.Active = false
	return s.st.SaveSchedule(sc)
}

// Generated reports one invoice a run produced.
type Generated struct {
	ScheduleID    uint
	InvoiceID     uint
	InvoiceNumber string
	IssueDate     time.Time
}

// Run generates invoices for every schedule due as of asOf. Periods
// missed while the scheduler was down are caught up one invoice per
// period. Schedules another worker holds a live claim on are skipped;
// they stay due and a later run picks them up.
func (s *Scheduler) Run(asOf time.Time) ([]Generated, error) {
	due, err := s.st.DueSchedules(asOf)
	if err != nil {
		return nil, err
	}

	var out []Generated
	for i := range due {
		generated, err := s.runOne(due[i].ID, asOf)
		if err != nil {
			return out, fmt.Errorf("schedule %d: %w", due[i].ID, err)
		}
		out = append(out, generated...)
	}
	return out, nil
}

// runOne claims a schedule and generates every due period. The claim
// write commits before any generation, so no other run can enter; the
// generation plus schedule advance commit atomically after.
func (s *Scheduler) runOne(scheduleID uint, asOf time.Time) ([]Generated, error) {
	token := uuid.NewString()
	now := s.now()
	claimed, err := s.st.ClaimSchedule(scheduleID, token, now, now.Add(-s.staleAfter))
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	var out []Generated
	err = s.st.InTx(func(tx *store.Store) error {
		sc, err := tx.ScheduleByID(scheduleID)
		if err != nil {
			return err
		}
		// Someone else's stale-claim takeover raced us.
		if sc.ClaimToken != token {
			return nil
		}

		invoices := s.invoices.WithStore(tx)
		for sc.Active && !sc.NextDueDate.After(asOf) {
			g, err := s.generate(invoices, sc)
			if err != nil {
				return err
			}
			out = append(out, g)

			issued := sc.NextDueDate
			sc.LastCreatedDate = &issued
			sc.Occurrences++
			sc.NextDueDate = sc.Frequency.Advance(sc.NextDueDate, sc.Interval)
			if sc.Exhausted() {
				sc.Active = false
			}
		}

		sc.ClaimToken = ""
		sc.ClaimedAt = nil
		return tx.SaveSchedule(sc)
	})
	if err != nil {
		out = nil
	}
	return out, err
}

// generate clones the schedule's template into a fresh issued invoice
// dated at the schedule's current due date.
func (s *Scheduler) generate(invoices *invoicing.Service, sc *model.RecurringSchedule) (Generated, error) {
	tmpl, err := invoices.Get(sc.TemplateInvoiceID)
	if err != nil {
		return Generated{}, err
	}

	var meta model.Extensions
	meta.Set("schedule_id", strconv.FormatUint(uint64(sc.ID), 10))
	meta.Set("template_number", tmpl.Number)

	draft, err := invoices.CreateDraft(invoicing.CreateDraftParams{
		ClientID:  tmpl.ClientID,
		IssueDate: sc.NextDueDate,
		TaxRateID: tmpl.TaxRateID,
		Notes:     tmpl.Notes,
		Meta:      meta,
	})
	if err != nil {
		return Generated{}, err
	}
	for _, it := range tmpl.Items {
		_, err := invoices.AddItem(draft.ID, invoicing.ItemParams{
			Description:      it.Description,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			DiscountType:     it.DiscountType,
			DiscountValue:    it.DiscountValue,
			TaxRateID:        it.TaxRateID,
			RevenueAccountID: it.RevenueAccountID,
		})
		if err != nil {
			return Generated{}, err
		}
	}
	if tmpl.DiscountType != "" && !tmpl.DiscountValue.IsZero() {
		if _, err := invoices.SetDiscount(draft.ID, tmpl.DiscountType, tmpl.DiscountValue); err != nil {
			return Generated{}, err
		}
	}
	if !tmpl.Shipping.IsZero() {
		if _, err := invoices.SetShipping(draft.ID, tmpl.Shipping); err != nil {
			return Generated{}, err
		}
	}

	issued, err := invoices.Issue(draft.ID, time.Time{})
	if err != nil {
		return Generated{}, err
	}
	return Generated{
		ScheduleID:    sc.ID,
		InvoiceID:     issued.ID,
		InvoiceNumber: issued.Number,
		IssueDate:     issued.IssueDate,
	}, nil
}
