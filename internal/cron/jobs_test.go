package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/internal/reconciliation"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	"github.com/discope/discope-backend/pkg/logger"
)

var jobNow = time.Date(2023, 3, 1, 6, 0, 0, 0, time.UTC)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

type fakeBookingReader struct {
	expired    []models.Booking
	archivable []models.Booking
	byStatus   []models.Booking
	err        error
	lastBefore time.Time
	statuses   []enums.BookingStatus
}

func (f *fakeBookingReader) ListExpiredOptions(_ context.Context, now time.Time) ([]models.Booking, error) {
	f.lastBefore = now
	return f.expired, f.err
}

func (f *fakeBookingReader) ListArchivable(_ context.Context, before time.Time) ([]models.Booking, error) {
	f.lastBefore = before
	return f.archivable, f.err
}

func (f *fakeBookingReader) ListByStatus(_ context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error) {
	f.statuses = statuses
	return f.byStatus, f.err
}

type fakeWorkflow struct {
	failFor  map[uuid.UUID]error
	balanced map[uuid.UUID]enums.BookingStatus
	calls    []uuid.UUID
}

func (f *fakeWorkflow) result(id uuid.UUID) (*models.Booking, error) {
	f.calls = append(f.calls, id)
	if err := f.failFor[id]; err != nil {
		return nil, err
	}
	b := &models.Booking{ID: id}
	if status, ok := f.balanced[id]; ok {
		b.Status = status
	}
	return b, nil
}

func (f *fakeWorkflow) ExpireOption(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	return f.result(id)
}

func (f *fakeWorkflow) Archive(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	return f.result(id)
}

func (f *fakeWorkflow) Balance(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	return f.result(id)
}

type fakeTx struct{ calls int }

func (f *fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	f.calls++
	return fn(nil)
}

type fakeOverdue struct {
	rows    []*models.Funding
	lastDay time.Time
}

func (f *fakeOverdue) ListOverdue(_ context.Context, day time.Time) ([]*models.Funding, error) {
	f.lastDay = day
	return f.rows, nil
}

type raisedAlert struct {
	bookingID uuid.UUID
	code      string
	message   string
}

type fakeAlerts struct{ raised []raisedAlert }

func (f *fakeAlerts) Raise(_ context.Context, _ *gorm.DB, bookingID uuid.UUID, code, message string) error {
	f.raised = append(f.raised, raisedAlert{bookingID: bookingID, code: code, message: message})
	return nil
}

func TestOptionExpiryJobExpiresEachCandidate(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	reader := &fakeBookingReader{expired: []models.Booking{{ID: a, Number: 1}, {ID: b, Number: 2}}}
	wf := &fakeWorkflow{failFor: map[uuid.UUID]error{b: errors.New("boom")}}
	jobIface, err := NewOptionExpiryJob(OptionExpiryJobParams{Logger: testLogger(), Bookings: reader, Workflow: wf})
	if err != nil {
		t.Fatalf("NewOptionExpiryJob: %v", err)
	}
	job := jobIface.(*optionExpiryJob)
	job.now = func() time.Time { return jobNow }

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected aggregated error")
	}
	if len(wf.calls) != 2 {
		t.Fatalf("expected both bookings attempted, got %d", len(wf.calls))
	}
	if !reader.lastBefore.Equal(jobNow) {
		t.Fatalf("expected now passed through, got %s", reader.lastBefore)
	}
}

func TestOptionExpiryJobRequiresDeps(t *testing.T) {
	if _, err := NewOptionExpiryJob(OptionExpiryJobParams{Logger: testLogger()}); err == nil {
		t.Fatalf("expected missing deps error")
	}
}

func TestArchiveSweepJobUsesCutoff(t *testing.T) {
	id := uuid.New()
	reader := &fakeBookingReader{archivable: []models.Booking{{ID: id}}}
	wf := &fakeWorkflow{}
	jobIface, err := NewArchiveSweepJob(ArchiveSweepJobParams{Logger: testLogger(), Bookings: reader, Workflow: wf, AfterDays: 30})
	if err != nil {
		t.Fatalf("NewArchiveSweepJob: %v", err)
	}
	job := jobIface.(*archiveSweepJob)
	job.now = func() time.Time { return jobNow }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := dates.MustParse("2023-01-30")
	if !reader.lastBefore.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, reader.lastBefore)
	}
	if len(wf.calls) != 1 || wf.calls[0] != id {
		t.Fatalf("expected archive call for %s", id)
	}
}

func TestPaymentStatusJobBalancesAndFlagsOverdue(t *testing.T) {
	invoiced, skipped := uuid.New(), uuid.New()
	reader := &fakeBookingReader{byStatus: []models.Booking{
		{ID: invoiced, Status: enums.BookingStatusInvoiced},
		{ID: skipped, Status: enums.BookingStatusInvoiced, IsCancelled: true},
	}}
	wf := &fakeWorkflow{balanced: map[uuid.UUID]enums.BookingStatus{invoiced: enums.BookingStatusBalanced}}
	late := uuid.New()
	overdue := &fakeOverdue{rows: []*models.Funding{
		{BookingID: late, Name: "Acompte", DueDate: dates.MustParse("2023-02-10"), DueAmount: decimal.NewFromInt(100)},
		{BookingID: late, Name: "Solde", DueDate: dates.MustParse("2023-02-20"), DueAmount: decimal.NewFromInt(200)},
	}}
	raiser := &fakeAlerts{}
	tx := &fakeTx{}
	jobIface, err := NewPaymentStatusJob(PaymentStatusJobParams{
		Logger:   testLogger(),
		DB:       tx,
		Bookings: reader,
		Workflow: wf,
		Fundings: overdue,
		Alerts:   raiser,
	})
	if err != nil {
		t.Fatalf("NewPaymentStatusJob: %v", err)
	}
	job := jobIface.(*paymentStatusJob)
	job.now = func() time.Time { return jobNow }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(wf.calls) != 1 || wf.calls[0] != invoiced {
		t.Fatalf("expected only the live booking balanced, got %v", wf.calls)
	}
	if len(reader.statuses) != 3 {
		t.Fatalf("expected three balance statuses queried, got %v", reader.statuses)
	}
	if !overdue.lastDay.Equal(dates.MustParse("2023-03-01")) {
		t.Fatalf("unexpected overdue day %s", overdue.lastDay)
	}
	if len(raiser.raised) != 1 || tx.calls != 1 {
		t.Fatalf("expected one alert per booking, got %d", len(raiser.raised))
	}
	got := raiser.raised[0]
	if got.bookingID != late || got.code != alerts.CodeOverdueFunding {
		t.Fatalf("unexpected alert %+v", got)
	}
	if got.message != `Funding "Acompte" overdue since 2023-02-10` {
		t.Fatalf("unexpected message %q", got.message)
	}
}

type fakeReconciler struct {
	summary reconciliation.Summary
	err     error
	limit   int
}

func (f *fakeReconciler) ReconcilePending(_ context.Context, limit int) (reconciliation.Summary, error) {
	f.limit = limit
	return f.summary, f.err
}

func TestBankReconcileJobUsesDefaultBatch(t *testing.T) {
	rec := &fakeReconciler{summary: reconciliation.Summary{Reconciled: 2, Unmatched: 1}}
	job, err := NewBankReconcileJob(BankReconcileJobParams{Logger: testLogger(), Reconciler: rec})
	if err != nil {
		t.Fatalf("NewBankReconcileJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.limit != defaultReconcileBatch {
		t.Fatalf("expected batch %d, got %d", defaultReconcileBatch, rec.limit)
	}

	rec.err = errors.New("line failed")
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
