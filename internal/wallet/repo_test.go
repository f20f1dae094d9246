package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	agents := `
CREATE TABLE IF NOT EXISTS agents (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  phone TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  momo_number TEXT NOT NULL,
  region TEXT,
  approved INTEGER NOT NULL DEFAULT 0,
  banned INTEGER NOT NULL DEFAULT 0,
  wallet_balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	walletTransactions := `
CREATE TABLE IF NOT EXISTS wallet_transactions (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  description TEXT NOT NULL,
  reference TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  admin_notes TEXT,
  reviewed_by TEXT,
  created_at DATETIME,
  reviewed_at DATETIME
);`
	require.NoError(t, db.Exec(agents).Error)
	require.NoError(t, db.Exec(walletTransactions).Error)
	return db
}

func newAgent(t *testing.T, db *gorm.DB, balance string) *models.Agent {
	t.Helper()

	agent := &models.Agent{
		ID:            uuid.New(),
		FullName:      "Test Agent",
		Phone:         uuid.NewString(),
		PasswordHash:  "hash",
		MomoNumber:    "0240000000",
		Approved:      true,
		WalletBalance: decimal.RequireFromString(balance),
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func TestRepositoryDebit_GuardHoldsAtBoundary(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	agent := newAgent(t, db, "20.00")

	// Exactly the balance succeeds.
	ok, err := repo.Debit(context.Background(), agent.ID, decimal.RequireFromString("20.00"))
	require.NoError(t, err)
	assert.True(t, ok)

	balance, err := repo.Balance(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "expected zero balance, got %s", balance)

	// Anything past zero is refused and the balance is untouched.
	ok, err = repo.Debit(context.Background(), agent.ID, decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	assert.False(t, ok)

	balance, err = repo.Balance(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestRepositoryCredit_Accumulates(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	agent := newAgent(t, db, "0")

	require.NoError(t, repo.Credit(context.Background(), agent.ID, decimal.RequireFromString("15.50")))
	require.NoError(t, repo.Credit(context.Background(), agent.ID, decimal.RequireFromString("4.50")))

	balance, err := repo.Balance(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("20")), "expected 20, got %s", balance)
}

func TestRepositorySaveReview_OnlyPendingRowSettles(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	agent := newAgent(t, db, "0")

	txn := &models.WalletTransaction{
		ID:            uuid.New(),
		AgentID:       agent.ID,
		Type:          enums.WalletTransactionTypeTopup,
		Amount:        decimal.RequireFromString("10.00"),
		Description:   "wallet top-up",
		Reference:     "MOMO-9",
		Status:        enums.WalletTransactionStatusPending,
		PaymentMethod: enums.PaymentMethodManual,
	}
	require.NoError(t, db.Create(txn).Error)

	now := time.Now().UTC()
	firstAdmin := uuid.New()
	txn.Status = enums.WalletTransactionStatusApproved
	txn.ReviewedBy = &firstAdmin
	txn.ReviewedAt = &now

	applied, err := repo.SaveReview(context.Background(), txn)
	require.NoError(t, err)
	assert.True(t, applied)

	// A second decision targets a row that is no longer pending and must lose.
	secondAdmin := uuid.New()
	txn.Status = enums.WalletTransactionStatusRejected
	txn.ReviewedBy = &secondAdmin

	applied, err = repo.SaveReview(context.Background(), txn)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.FindTransactionByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.WalletTransactionStatusApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, firstAdmin, *got.ReviewedBy)
}

func TestRepositoryListPendingTopups(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	agent := newAgent(t, db, "0")

	base := time.Now().UTC().Add(-time.Hour)
	pending := &models.WalletTransaction{
		ID:            uuid.New(),
		AgentID:       agent.ID,
		Type:          enums.WalletTransactionTypeTopup,
		Amount:        decimal.RequireFromString("10.00"),
		Description:   "wallet top-up",
		Reference:     "MOMO-1",
		Status:        enums.WalletTransactionStatusPending,
		PaymentMethod: enums.PaymentMethodManual,
		CreatedAt:     base,
	}
	require.NoError(t, db.Create(pending).Error)

	approved := &models.WalletTransaction{
		ID:            uuid.New(),
		AgentID:       agent.ID,
		Type:          enums.WalletTransactionTypeTopup,
		Amount:        decimal.RequireFromString("10.00"),
		Description:   "wallet top-up",
		Reference:     "MOMO-2",
		Status:        enums.WalletTransactionStatusApproved,
		PaymentMethod: enums.PaymentMethodManual,
		CreatedAt:     base.Add(time.Minute),
	}
	require.NoError(t, db.Create(approved).Error)

	got, err := repo.ListPendingTopups(context.Background(), 10, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
}

func TestRepositoryListByAgent_CursorPagination(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	agent := newAgent(t, db, "0")

	base := time.Now().UTC().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		txn := &models.WalletTransaction{
			ID:            uuid.New(),
			AgentID:       agent.ID,
			Type:          enums.WalletTransactionTypeDeduction,
			Amount:        decimal.RequireFromString("1.00"),
			Description:   "entry",
			Reference:     uuid.NewString(),
			Status:        enums.WalletTransactionStatusApproved,
			PaymentMethod: enums.PaymentMethodAuto,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(txn).Error)
		ids = append(ids, txn.ID)
	}

	first, err := repo.ListByAgent(context.Background(), agent.ID, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[2], first[0].ID)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.ListByAgent(context.Background(), agent.ID, 2, cursor)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
}
