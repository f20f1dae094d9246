package commissions

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	dbtypes "github.com/dataflexhq/dataflex-backend/pkg/db/types"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepository struct {
	referrals      []models.Referral
	orders         []models.DataOrder
	refRepaired    int64
	orderRepaired  int64
	repairRefErr   error
	repairOrderErr error

	referralsFlagged []uuid.UUID
	ordersFlagged    []uuid.UUID
	flaggedPaid      bool
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) ListUnpaidReferrals(ctx context.Context, agentID uuid.UUID) ([]models.Referral, error) {
	return f.referrals, nil
}

func (f *fakeRepository) ListUnpaidOrders(ctx context.Context, agentID uuid.UUID) ([]models.DataOrder, error) {
	return f.orders, nil
}

func (f *fakeRepository) RepairReferralFlags(ctx context.Context, agentID uuid.UUID) (int64, error) {
	return f.refRepaired, f.repairRefErr
}

func (f *fakeRepository) RepairOrderFlags(ctx context.Context, agentID uuid.UUID) (int64, error) {
	return f.orderRepaired, f.repairOrderErr
}

func (f *fakeRepository) SetReferralsPaid(ctx context.Context, ids []uuid.UUID, paid bool) error {
	f.referralsFlagged = ids
	f.flaggedPaid = paid
	return nil
}

func (f *fakeRepository) SetOrdersPaid(ctx context.Context, ids []uuid.UUID, paid bool) error {
	f.ordersFlagged = ids
	f.flaggedPaid = paid
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestService_AvailableSumsBothSources(t *testing.T) {
	refID := uuid.New()
	orderID := uuid.New()
	repo := &fakeRepository{
		referrals: []models.Referral{{
			ID:         refID,
			ClientName: "Ama Serwaa",
			Service: &models.Service{
				Name:             "SIM Registration",
				CommissionAmount: decimal.RequireFromString("5.50"),
			},
		}},
		orders: []models.DataOrder{{
			ID:               orderID,
			RecipientPhone:   "0551234567",
			CommissionAmount: decimal.RequireFromString("1.20"),
		}},
	}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	summary, err := svc.Available(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Available error: %v", err)
	}
	if !summary.Total.Equal(decimal.RequireFromString("6.70")) {
		t.Fatalf("expected total 6.70, got %s", summary.Total)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 snapshot items, got %d", len(summary.Items))
	}
	if summary.Items[0].Type != enums.CommissionItemTypeReferral || summary.Items[0].ID != refID {
		t.Fatalf("unexpected first item: %+v", summary.Items[0])
	}
	if summary.Items[1].Type != enums.CommissionItemTypeDataOrder || summary.Items[1].ID != orderID {
		t.Fatalf("unexpected second item: %+v", summary.Items[1])
	}
}

func TestService_AvailableEmpty(t *testing.T) {
	svc, err := NewService(&fakeRepository{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	summary, err := svc.Available(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Available error: %v", err)
	}
	if !summary.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", summary.Total)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(summary.Items))
	}
}

func TestService_AvailableRequiresAgentID(t *testing.T) {
	svc, err := NewService(&fakeRepository{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	if _, err := svc.Available(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil agent id")
	}
}

func TestService_RepairNullFlagsAggregatesCounts(t *testing.T) {
	repo := &fakeRepository{refRepaired: 2, orderRepaired: 3}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	repaired, err := svc.RepairNullFlags(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("RepairNullFlags error: %v", err)
	}
	if repaired != 5 {
		t.Fatalf("expected 5 repaired rows, got %d", repaired)
	}
}

func TestService_RepairNullFlagsCollectsErrors(t *testing.T) {
	refErr := errors.New("referrals locked")
	orderErr := errors.New("orders locked")
	repo := &fakeRepository{repairRefErr: refErr, repairOrderErr: orderErr}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.RepairNullFlags(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !errors.Is(err, refErr) || !errors.Is(err, orderErr) {
		t.Fatalf("expected both repair errors, got %v", err)
	}
}

func TestService_MarkItemsSplitsByType(t *testing.T) {
	refID := uuid.New()
	orderID := uuid.New()
	repo := &fakeRepository{}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	items := dbtypes.CommissionItemList{
		{Type: enums.CommissionItemTypeReferral, ID: refID},
		{Type: enums.CommissionItemTypeDataOrder, ID: orderID},
	}
	if err := svc.MarkItems(context.Background(), nil, items, true); err != nil {
		t.Fatalf("MarkItems error: %v", err)
	}
	if len(repo.referralsFlagged) != 1 || repo.referralsFlagged[0] != refID {
		t.Fatalf("unexpected referral ids: %v", repo.referralsFlagged)
	}
	if len(repo.ordersFlagged) != 1 || repo.ordersFlagged[0] != orderID {
		t.Fatalf("unexpected order ids: %v", repo.ordersFlagged)
	}
	if !repo.flaggedPaid {
		t.Fatal("expected items flagged as paid")
	}
}
