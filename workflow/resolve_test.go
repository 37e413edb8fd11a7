package workflow

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
)

// NOTE: These tests are intentionally DB-free. The guard logic and the
// compare-and-swap contract are validated here; full MySQL integration tests
// belong in an environment that can run the database.

func pendingApproval() *models.PendingApproval {
	return &models.PendingApproval{
		ID:          "approval-1",
		CoupleId:    "couple-1",
		InitiatedBy: "partner-1",
		ActionType:  models.ApprovalActionAllocation,
		Status:      models.ApprovalStatusPending,
		ExpiresAt:   time.Now().UTC().Add(24 * time.Hour),
	}
}

func coupleOf(a, b string) *models.Couple {
	return &models.Couple{ID: "couple-1", Partner1Id: a, Partner2Id: b}
}

func TestValidateResolution_PartnerApproves(t *testing.T) {
	approval := pendingApproval()
	couple := coupleOf("partner-1", "partner-2")

	err := validateResolution(approval, couple, &ApprovalResolution{
		Status:     models.ApprovalStatusApproved,
		ResolvedBy: "partner-2",
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("partner approval must pass, got %v", err)
	}
}

func TestValidateResolution_SelfApprovalForbidden(t *testing.T) {
	approval := pendingApproval()
	couple := coupleOf("partner-1", "partner-2")

	for _, status := range []models.ApprovalStatus{models.ApprovalStatusApproved, models.ApprovalStatusRejected} {
		err := validateResolution(approval, couple, &ApprovalResolution{
			Status:     status,
			ResolvedBy: "partner-1",
		}, time.Now().UTC())
		if !errors.Is(err, utils.ErrorForbidden) {
			t.Errorf("self-%s: expected forbidden, got %v", status, err)
		}
	}
}

func TestValidateResolution_NonMemberForbidden(t *testing.T) {
	approval := pendingApproval()
	couple := coupleOf("partner-1", "partner-2")

	err := validateResolution(approval, couple, &ApprovalResolution{
		Status:     models.ApprovalStatusApproved,
		ResolvedBy: "stranger",
	}, time.Now().UTC())
	if !errors.Is(err, utils.ErrorForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestValidateResolution_OnlyInitiatorCancels(t *testing.T) {
	approval := pendingApproval()
	couple := coupleOf("partner-1", "partner-2")

	err := validateResolution(approval, couple, &ApprovalResolution{
		Status:     models.ApprovalStatusCanceled,
		ResolvedBy: "partner-1",
	}, time.Now().UTC())
	if err != nil {
		t.Errorf("initiator cancel must pass, got %v", err)
	}

	err = validateResolution(approval, couple, &ApprovalResolution{
		Status:     models.ApprovalStatusCanceled,
		ResolvedBy: "partner-2",
	}, time.Now().UTC())
	if !errors.Is(err, utils.ErrorForbidden) {
		t.Errorf("partner cancel: expected forbidden, got %v", err)
	}
}

func TestValidateResolution_TerminalStatesConflict(t *testing.T) {
	couple := coupleOf("partner-1", "partner-2")

	terminal := []models.ApprovalStatus{
		models.ApprovalStatusApproved,
		models.ApprovalStatusRejected,
		models.ApprovalStatusExpired,
		models.ApprovalStatusCanceled,
	}
	for _, status := range terminal {
		approval := pendingApproval()
		approval.Status = status
		err := validateResolution(approval, couple, &ApprovalResolution{
			Status:     models.ApprovalStatusApproved,
			ResolvedBy: "partner-2",
		}, time.Now().UTC())
		if !errors.Is(err, utils.ErrorConflict) {
			t.Errorf("status %s: expected conflict, got %v", status, err)
		}
	}
}

func TestValidateResolution_Expired(t *testing.T) {
	approval := pendingApproval()
	approval.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	couple := coupleOf("partner-1", "partner-2")

	err := validateResolution(approval, couple, &ApprovalResolution{
		Status:     models.ApprovalStatusApproved,
		ResolvedBy: "partner-2",
	}, time.Now().UTC())
	if !errors.Is(err, utils.ErrorExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestValidateResolution_InvalidTargetStatus(t *testing.T) {
	approval := pendingApproval()
	couple := coupleOf("partner-1", "partner-2")

	for _, status := range []models.ApprovalStatus{models.ApprovalStatusPending, models.ApprovalStatusExpired, "bogus"} {
		err := validateResolution(approval, couple, &ApprovalResolution{
			Status:     status,
			ResolvedBy: "partner-2",
		}, time.Now().UTC())
		if !errors.Is(err, utils.ErrorBadRequest) {
			t.Errorf("target %s: expected bad request, got %v", status, err)
		}
	}
}

// fakeApprovalStore models the database row with the same contract the
// resolver relies on: an update guarded by WHERE status = 'pending' that
// reports how many rows it touched.
type fakeApprovalStore struct {
	mu     sync.Mutex
	status models.ApprovalStatus
}

func (s *fakeApprovalStore) compareAndResolve(target models.ApprovalStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.ApprovalStatusPending {
		return 0
	}
	s.status = target
	return 1
}

func TestResolution_ConcurrentResolversExactlyOneWins(t *testing.T) {
	for run := 0; run < 100; run++ {
		store := &fakeApprovalStore{status: models.ApprovalStatusPending}

		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0
		conflicts := 0

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				target := models.ApprovalStatusApproved
				if i%2 == 1 {
					target = models.ApprovalStatusRejected
				}
				rows := store.compareAndResolve(target)
				mu.Lock()
				if rows == 1 {
					winners++
				} else {
					conflicts++
				}
				mu.Unlock()
			}(i)
		}
		wg.Wait()

		if winners != 1 {
			t.Fatalf("run %d: expected exactly one winner, got %d", run, winners)
		}
		if conflicts != 19 {
			t.Fatalf("run %d: expected 19 conflicts, got %d", run, conflicts)
		}
		if !store.status.IsTerminal() {
			t.Fatalf("run %d: store left in non-terminal status %s", run, store.status)
		}
	}
}
