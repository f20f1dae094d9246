package wallet

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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepository struct {
	created    []*models.WalletTransaction
	found      *models.WalletTransaction
	saved      *models.WalletTransaction
	reviewLost bool
	balance    decimal.Decimal
	balanceErr error
	debitOK    bool
	credited   decimal.Decimal
	debited    decimal.Decimal
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	txn.ID = uuid.New()
	f.created = append(f.created, txn)
	return txn, nil
}

func (f *fakeRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error) {
	if f.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.found, nil
}

func (f *fakeRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error) {
	return nil, nil
}

func (f *fakeRepository) ListPendingTopups(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error) {
	return nil, nil
}

func (f *fakeRepository) SaveReview(ctx context.Context, txn *models.WalletTransaction) (bool, error) {
	if f.reviewLost {
		return false, nil
	}
	f.saved = txn
	return true, nil
}

func (f *fakeRepository) Balance(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error) {
	return f.balance, f.balanceErr
}

func (f *fakeRepository) Credit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error {
	f.credited = f.credited.Add(amount)
	return nil
}

func (f *fakeRepository) Debit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if !f.debitOK {
		return false, nil
	}
	f.debited = f.debited.Add(amount)
	return true, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, fakeTx{}, nil, logg)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestRequestTopup_CreatesPendingManualEntry(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo)

	txn, err := svc.RequestTopup(context.Background(), TopupInput{
		AgentID:   uuid.New(),
		Amount:    decimal.RequireFromString("25.00"),
		Reference: "MOMO-778899",
	})
	if err != nil {
		t.Fatalf("RequestTopup error: %v", err)
	}
	if txn.Status != enums.WalletTransactionStatusPending {
		t.Fatalf("expected pending, got %s", txn.Status)
	}
	if txn.Type != enums.WalletTransactionTypeTopup {
		t.Fatalf("expected topup type, got %s", txn.Type)
	}
	if txn.PaymentMethod != enums.PaymentMethodManual {
		t.Fatalf("expected manual payment method, got %s", txn.PaymentMethod)
	}
	if !repo.credited.IsZero() {
		t.Fatal("pending top-up must not move the balance")
	}
}

func TestReviewTopup_ApproveCreditsBalance(t *testing.T) {
	agentID := uuid.New()
	repo := &fakeRepository{found: &models.WalletTransaction{
		ID:      uuid.New(),
		AgentID: agentID,
		Type:    enums.WalletTransactionTypeTopup,
		Amount:  decimal.RequireFromString("40.00"),
		Status:  enums.WalletTransactionStatusPending,
	}}
	svc := newTestService(t, repo)

	adminID := uuid.New()
	txn, err := svc.ReviewTopup(context.Background(), ReviewInput{
		TransactionID: repo.found.ID,
		AdminID:       adminID,
		Approve:       true,
	})
	if err != nil {
		t.Fatalf("ReviewTopup error: %v", err)
	}
	if txn.Status != enums.WalletTransactionStatusApproved {
		t.Fatalf("expected approved, got %s", txn.Status)
	}
	if !repo.credited.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("expected balance credited 40.00, got %s", repo.credited)
	}
	if txn.ReviewedBy == nil || *txn.ReviewedBy != adminID {
		t.Fatal("expected reviewer recorded")
	}
	if txn.ReviewedAt == nil {
		t.Fatal("expected review timestamp set")
	}
}

func TestReviewTopup_RejectLeavesBalanceAlone(t *testing.T) {
	repo := &fakeRepository{found: &models.WalletTransaction{
		ID:     uuid.New(),
		Type:   enums.WalletTransactionTypeTopup,
		Amount: decimal.RequireFromString("40.00"),
		Status: enums.WalletTransactionStatusPending,
	}}
	svc := newTestService(t, repo)

	txn, err := svc.ReviewTopup(context.Background(), ReviewInput{
		TransactionID: repo.found.ID,
		AdminID:       uuid.New(),
		Approve:       false,
	})
	if err != nil {
		t.Fatalf("ReviewTopup error: %v", err)
	}
	if txn.Status != enums.WalletTransactionStatusRejected {
		t.Fatalf("expected rejected, got %s", txn.Status)
	}
	if !repo.credited.IsZero() {
		t.Fatal("rejected top-up must not move the balance")
	}
}

func TestReviewTopup_AlreadyReviewed(t *testing.T) {
	repo := &fakeRepository{found: &models.WalletTransaction{
		ID:     uuid.New(),
		Type:   enums.WalletTransactionTypeTopup,
		Status: enums.WalletTransactionStatusApproved,
	}}
	svc := newTestService(t, repo)

	_, err := svc.ReviewTopup(context.Background(), ReviewInput{
		TransactionID: repo.found.ID,
		AdminID:       uuid.New(),
		Approve:       true,
	})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestReviewTopup_LostReviewWriteDoesNotCredit(t *testing.T) {
	// The row reads as pending, but another reviewer settles it before our
	// conditional update lands. No credit may happen.
	repo := &fakeRepository{
		reviewLost: true,
		found: &models.WalletTransaction{
			ID:     uuid.New(),
			Type:   enums.WalletTransactionTypeTopup,
			Amount: decimal.RequireFromString("40.00"),
			Status: enums.WalletTransactionStatusPending,
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.ReviewTopup(context.Background(), ReviewInput{
		TransactionID: repo.found.ID,
		AdminID:       uuid.New(),
		Approve:       true,
	})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if !repo.credited.IsZero() {
		t.Fatalf("lost review must not credit, got %s", repo.credited)
	}
}

func TestDeduct_GuardedByBalance(t *testing.T) {
	repo := &fakeRepository{debitOK: false}
	svc := newTestService(t, repo)

	_, err := svc.Deduct(context.Background(), nil, EntryInput{
		AgentID:     uuid.New(),
		Amount:      decimal.RequireFromString("12.00"),
		Description: "bundle purchase",
		Reference:   "order-1",
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("failed debit must not write a ledger entry")
	}
}

func TestDeduct_WritesApprovedEntry(t *testing.T) {
	repo := &fakeRepository{debitOK: true}
	svc := newTestService(t, repo)

	txn, err := svc.Deduct(context.Background(), nil, EntryInput{
		AgentID:     uuid.New(),
		Amount:      decimal.RequireFromString("12.00"),
		Description: "bundle purchase",
		Reference:   "order-1",
	})
	if err != nil {
		t.Fatalf("Deduct error: %v", err)
	}
	if txn.Type != enums.WalletTransactionTypeDeduction {
		t.Fatalf("expected deduction, got %s", txn.Type)
	}
	if txn.Status != enums.WalletTransactionStatusApproved {
		t.Fatalf("deductions are settled immediately, got %s", txn.Status)
	}
	if !repo.debited.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("expected balance debited 12.00, got %s", repo.debited)
	}
}

func TestRefund_CreditsAndRecords(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo)

	txn, err := svc.Refund(context.Background(), nil, EntryInput{
		AgentID:     uuid.New(),
		Amount:      decimal.RequireFromString("12.00"),
		Description: "order canceled",
		Reference:   "order-1",
	})
	if err != nil {
		t.Fatalf("Refund error: %v", err)
	}
	if txn.Type != enums.WalletTransactionTypeRefund {
		t.Fatalf("expected refund, got %s", txn.Type)
	}
	if !repo.credited.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("expected balance credited 12.00, got %s", repo.credited)
	}
}
