package referrals

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	created *models.Referral
	found   *models.Referral
	saved   *models.Referral
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, referral *models.Referral) (*models.Referral, error) {
	referral.ID = uuid.New()
	f.created = referral
	return referral, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	if f.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.found, nil
}

func (f *fakeRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Referral, error) {
	return nil, nil
}

func (f *fakeRepository) List(ctx context.Context, status *enums.ReferralStatus, limit int, cursor *pagination.Cursor) ([]models.Referral, error) {
	return nil, nil
}

func (f *fakeRepository) SaveStatus(ctx context.Context, referral *models.Referral) error {
	f.saved = referral
	return nil
}

type fakeCatalog struct {
	svc *models.Service
	err error
}

func (f *fakeCatalog) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.svc, nil
}

func newTestService(t *testing.T, repo Repository, catalog serviceCatalog) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, catalog, logg)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestCreate_StartsPendingUnpaid(t *testing.T) {
	repo := &fakeRepository{}
	catalog := &fakeCatalog{svc: &models.Service{ID: uuid.New(), Active: true}}
	svc := newTestService(t, repo, catalog)

	referral, err := svc.Create(context.Background(), CreateInput{
		AgentID:     uuid.New(),
		ServiceID:   catalog.svc.ID,
		ClientName:  "Kofi Mensah",
		ClientPhone: "0201234567",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if referral.Status != enums.ReferralStatusPending {
		t.Fatalf("expected pending, got %s", referral.Status)
	}
	if referral.CommissionPaid == nil || *referral.CommissionPaid {
		t.Fatal("new referral must start explicitly unpaid")
	}
}

func TestCreate_RejectsInactiveService(t *testing.T) {
	catalog := &fakeCatalog{svc: &models.Service{ID: uuid.New(), Active: false}}
	svc := newTestService(t, &fakeRepository{}, catalog)

	_, err := svc.Create(context.Background(), CreateInput{
		AgentID:     uuid.New(),
		ServiceID:   catalog.svc.ID,
		ClientName:  "Kofi Mensah",
		ClientPhone: "0201234567",
	})
	if err == nil {
		t.Fatal("expected error for inactive service")
	}
}

func TestSetStatus_AlwaysResetsCommissionFlag(t *testing.T) {
	paid := true
	repo := &fakeRepository{found: &models.Referral{
		ID:             uuid.New(),
		Status:         enums.ReferralStatusCompleted,
		CommissionPaid: &paid,
	}}
	svc := newTestService(t, repo, &fakeCatalog{})

	// Even moving a completed referral back through the pipeline resets
	// the paid flag so it re-enters the accrual pool.
	got, err := svc.SetStatus(context.Background(), repo.found.ID, enums.ReferralStatusInProgress)
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if got.Status != enums.ReferralStatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}
	if got.CommissionPaid == nil || *got.CommissionPaid {
		t.Fatal("transition must reset commission flag to unpaid")
	}
	if repo.saved == nil {
		t.Fatal("expected status persisted")
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &fakeCatalog{})

	_, err := svc.SetStatus(context.Background(), uuid.New(), enums.ReferralStatusConfirmed)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &fakeCatalog{})

	_, err := svc.SetStatus(context.Background(), uuid.New(), enums.ReferralStatus("archived"))
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}
