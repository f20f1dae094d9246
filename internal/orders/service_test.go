package orders

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dataflexhq/dataflex-backend/internal/wallet"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepository struct {
	created *models.DataOrder
	found   *models.DataOrder
	saved   *models.DataOrder
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, order *models.DataOrder) (*models.DataOrder, error) {
	order.ID = uuid.New()
	f.created = order
	return order, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.DataOrder, error) {
	if f.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.found, nil
}

func (f *fakeRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.DataOrder, error) {
	return nil, nil
}

func (f *fakeRepository) List(ctx context.Context, status *enums.DataOrderStatus, limit int, cursor *pagination.Cursor) ([]models.DataOrder, error) {
	return nil, nil
}

func (f *fakeRepository) SaveStatus(ctx context.Context, order *models.DataOrder) error {
	f.saved = order
	return nil
}

type fakeCatalog struct {
	bundle *models.DataBundle
}

func (f *fakeCatalog) GetBundle(ctx context.Context, id uuid.UUID) (*models.DataBundle, error) {
	return f.bundle, nil
}

type fakeWallet struct {
	deducted  decimal.Decimal
	refunded  decimal.Decimal
	deductErr error
}

func (f *fakeWallet) Deduct(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	if f.deductErr != nil {
		return nil, f.deductErr
	}
	f.deducted = f.deducted.Add(input.Amount)
	return &models.WalletTransaction{}, nil
}

func (f *fakeWallet) Refund(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	f.refunded = f.refunded.Add(input.Amount)
	return &models.WalletTransaction{}, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testBundle() *models.DataBundle {
	return &models.DataBundle{
		ID:             uuid.New(),
		Network:        "MTN",
		Name:           "5GB",
		VolumeMB:       5120,
		Price:          decimal.RequireFromString("24.00"),
		CommissionRate: decimal.RequireFromString("0.05"),
		Active:         true,
	}
}

func newTestService(t *testing.T, repo Repository, catalog bundleCatalog, ledger walletLedger) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, catalog, ledger, fakeTx{}, logg)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestPlace_DeductsWalletAndCapturesCommission(t *testing.T) {
	repo := &fakeRepository{}
	ledger := &fakeWallet{}
	svc := newTestService(t, repo, &fakeCatalog{bundle: testBundle()}, ledger)

	order, err := svc.Place(context.Background(), PlaceInput{
		AgentID:        uuid.New(),
		BundleID:       uuid.New(),
		RecipientPhone: "0551234567",
	})
	if err != nil {
		t.Fatalf("Place error: %v", err)
	}
	if !order.Price.Equal(decimal.RequireFromString("24.00")) {
		t.Fatalf("expected price 24.00, got %s", order.Price)
	}
	if !order.CommissionAmount.Equal(decimal.RequireFromString("1.20")) {
		t.Fatalf("expected commission 1.20, got %s", order.CommissionAmount)
	}
	if order.Status != enums.DataOrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.CommissionPaid == nil || *order.CommissionPaid {
		t.Fatal("new order must start explicitly unpaid")
	}
	if !ledger.deducted.Equal(order.Price) {
		t.Fatalf("expected wallet debited %s, got %s", order.Price, ledger.deducted)
	}
}

func TestPlace_InsufficientBalanceAborts(t *testing.T) {
	repo := &fakeRepository{}
	ledger := &fakeWallet{deductErr: wallet.ErrInsufficientBalance}
	svc := newTestService(t, repo, &fakeCatalog{bundle: testBundle()}, ledger)

	_, err := svc.Place(context.Background(), PlaceInput{
		AgentID:        uuid.New(),
		BundleID:       uuid.New(),
		RecipientPhone: "0551234567",
	})
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestPlace_InactiveBundle(t *testing.T) {
	bundle := testBundle()
	bundle.Active = false
	svc := newTestService(t, &fakeRepository{}, &fakeCatalog{bundle: bundle}, &fakeWallet{})

	_, err := svc.Place(context.Background(), PlaceInput{
		AgentID:        uuid.New(),
		BundleID:       bundle.ID,
		RecipientPhone: "0551234567",
	})
	if err == nil {
		t.Fatal("expected error for inactive bundle")
	}
}

func TestSetStatus_ResetsCommissionFlag(t *testing.T) {
	paid := true
	repo := &fakeRepository{found: &models.DataOrder{
		ID:             uuid.New(),
		Status:         enums.DataOrderStatusProcessing,
		Price:          decimal.RequireFromString("24.00"),
		CommissionPaid: &paid,
	}}
	svc := newTestService(t, repo, &fakeCatalog{}, &fakeWallet{})

	got, err := svc.SetStatus(context.Background(), repo.found.ID, enums.DataOrderStatusCompleted)
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if got.Status != enums.DataOrderStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.CommissionPaid == nil || *got.CommissionPaid {
		t.Fatal("transition must reset commission flag to unpaid")
	}
}

func TestSetStatus_CancelRefundsOnce(t *testing.T) {
	repo := &fakeRepository{found: &models.DataOrder{
		ID:      uuid.New(),
		AgentID: uuid.New(),
		Status:  enums.DataOrderStatusPending,
		Price:   decimal.RequireFromString("24.00"),
	}}
	ledger := &fakeWallet{}
	svc := newTestService(t, repo, &fakeCatalog{}, ledger)

	got, err := svc.SetStatus(context.Background(), repo.found.ID, enums.DataOrderStatusCanceled)
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if !ledger.refunded.Equal(decimal.RequireFromString("24.00")) {
		t.Fatalf("expected refund 24.00, got %s", ledger.refunded)
	}

	// A second cancel must not refund again.
	repo.found = got
	if _, err := svc.SetStatus(context.Background(), got.ID, enums.DataOrderStatusCanceled); err != nil {
		t.Fatalf("second cancel error: %v", err)
	}
	if !ledger.refunded.Equal(decimal.RequireFromString("24.00")) {
		t.Fatalf("cancel must refund exactly once, got %s", ledger.refunded)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &fakeCatalog{}, &fakeWallet{})

	_, err := svc.SetStatus(context.Background(), uuid.New(), enums.DataOrderStatusProcessing)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
