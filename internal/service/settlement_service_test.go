package service

import (
	"context"
	"testing"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/persistence"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

func TestSettlePaysAndReviews(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")
	job := f.completedJob(t, seeker)

	res, err := f.settlement.Settle(ctx, seeker, job.ID, 4, "Great work")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if res.Job.Status != domain.JobStatusPaidAndReviewed {
		t.Fatalf("expected PAID_AND_REVIEWED, got %s", res.Job.Status)
	}

	worker := f.user(t, "w1")
	if worker.ReviewCount != 13 || len(worker.Reviews) != 13 {
		t.Fatalf("expected 13 reviews, got %d/%d", worker.ReviewCount, len(worker.Reviews))
	}
	last := worker.Reviews[len(worker.Reviews)-1]
	if last.Rating != 4 || last.Comment != "Great work" || last.ReviewerName != "ana" {
		t.Fatalf("unexpected review %+v", last)
	}
	if worker.Rating != 4.8 {
		t.Fatalf("expected recomputed rating 4.8, got %.1f", worker.Rating)
	}
	if worker.Balance != 145 {
		t.Fatalf("expected worker balance 145, got %d", worker.Balance)
	}
	if got := f.user(t, seeker.UserID).Balance; got != 55 {
		t.Fatalf("expected seeker balance 55, got %d", got)
	}

	ledger, err := f.settlement.Ledger(ctx, seeker)
	if err != nil || len(ledger) != 1 || ledger[0].Signed() != -45 {
		t.Fatalf("unexpected seeker ledger %+v (%v)", ledger, err)
	}
	workerLedger, _ := f.settlement.Ledger(ctx, workerW1)
	if len(workerLedger) != 1 || workerLedger[0].Signed() != 45 {
		t.Fatalf("unexpected worker ledger %+v", workerLedger)
	}

	types := f.dispatcher.types()
	if types[len(types)-1] != events.EventJobSettled {
		t.Fatalf("expected job_settled last, got %v", types)
	}
}

func TestSettleConservesBalance(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")
	job := f.completedJob(t, seeker)

	before := f.user(t, seeker.UserID).Balance + f.user(t, "w1").Balance
	if _, err := f.settlement.Settle(ctx, seeker, job.ID, 5, ""); err != nil {
		t.Fatalf("settle: %v", err)
	}
	after := f.user(t, seeker.UserID).Balance + f.user(t, "w1").Balance
	if before != after {
		t.Fatalf("balance not conserved: %d != %d", before, after)
	}
}

func TestSettleAllowsNegativeBalance(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")

	// Drain the seeker so the next payment overdraws.
	err := f.store.Update(ctx, func(tables *persistence.Tables) error {
		tables.User(seeker.UserID).Balance = 10
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	job := f.completedJob(t, seeker)
	if _, err := f.settlement.Settle(ctx, seeker, job.ID, 3, ""); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if got := f.user(t, seeker.UserID).Balance; got != -35 {
		t.Fatalf("expected negative balance -35, got %d", got)
	}
}

func TestSettleValidation(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")
	job := f.completedJob(t, seeker)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.settlement.Settle(ctx, seeker, job.ID, rating, "")
		assertCode(t, err, apperrors.CodeValidationFailed)
	}

	_, err := f.settlement.Settle(ctx, seeker, "missing", 4, "")
	assertCode(t, err, apperrors.CodeNotFound)

	other := f.signupSeeker(t, "bo")
	_, err = f.settlement.Settle(ctx, other, job.ID, 4, "")
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.settlement.Settle(ctx, workerW1, job.ID, 4, "")
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestSettleTwiceIsRejected(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")
	job := f.completedJob(t, seeker)

	if _, err := f.settlement.Settle(ctx, seeker, job.ID, 4, ""); err != nil {
		t.Fatalf("settle: %v", err)
	}
	_, err := f.settlement.Settle(ctx, seeker, job.ID, 4, "")
	assertCode(t, err, apperrors.CodeInvalidTransition)

	if got := f.user(t, seeker.UserID).Balance; got != 55 {
		t.Fatalf("second settle charged again: balance %d", got)
	}
}

func TestSettleBeforeCompletionIsRejected(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")
	job, err := f.jobs.CreateJob(ctx, seeker, CreateJobInput{WorkerID: "w1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.settlement.Settle(ctx, seeker, job.ID, 4, "")
	assertCode(t, err, apperrors.CodeInvalidTransition)
}

func TestSettleMissingWorkerAppliesNothing(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")
	job := f.completedJob(t, seeker)

	err := f.store.Update(ctx, func(tables *persistence.Tables) error {
		kept := tables.Users[:0]
		for _, u := range tables.Users {
			if u.ID != "w1" {
				kept = append(kept, u)
			}
		}
		tables.Users = kept
		return nil
	})
	if err != nil {
		t.Fatalf("remove worker: %v", err)
	}

	_, err = f.settlement.Settle(ctx, seeker, job.ID, 4, "")
	assertCode(t, err, apperrors.CodeNotFound)

	if got := f.user(t, seeker.UserID).Balance; got != 100 {
		t.Fatalf("seeker charged despite abort: %d", got)
	}
	stored, _ := f.jobs.GetJob(ctx, seeker, job.ID)
	if stored.Status != domain.JobStatusCompleted {
		t.Fatalf("job status changed despite abort: %s", stored.Status)
	}
	ledger, _ := f.store.Ledger(ctx)
	if len(ledger) != 0 {
		t.Fatalf("ledger written despite abort: %d entries", len(ledger))
	}
}

func TestSettleRefreshesSessionPointer(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	seeker := f.signupSeeker(t, "ana")
	job := f.completedJob(t, seeker)

	if _, err := f.settlement.Settle(ctx, seeker, job.ID, 4, ""); err != nil {
		t.Fatalf("settle: %v", err)
	}
	u, err := f.store.SessionUser(ctx)
	if err != nil || u == nil || u.Balance != 55 {
		t.Fatalf("session pointer not refreshed: %+v (%v)", u, err)
	}
}
