package withdrawals

import (
	"context"
	"testing"
	"time"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	dbtypes "github.com/dataflexhq/dataflex-backend/pkg/db/types"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupWithdrawalsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	withdrawals := `
CREATE TABLE IF NOT EXISTS withdrawals (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  momo_number TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'requested',
  commission_items TEXT NOT NULL DEFAULT '[]',
  requested_at DATETIME,
  processing_at DATETIME,
  paid_at DATETIME,
  rejected_at DATETIME
);`
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
	require.NoError(t, db.Exec(withdrawals).Error)
	require.NoError(t, db.Exec(agents).Error)
	return db
}

func newWithdrawal(t *testing.T, db *gorm.DB, agentID uuid.UUID, requestedAt time.Time) *models.Withdrawal {
	t.Helper()

	withdrawal := &models.Withdrawal{
		ID:         uuid.New(),
		AgentID:    agentID,
		Amount:     decimal.RequireFromString("15.00"),
		MomoNumber: "0240000000",
		Status:     enums.WithdrawalStatusRequested,
		CommissionItems: dbtypes.CommissionItemList{
			{Type: enums.CommissionItemTypeReferral, ID: uuid.New()},
		},
		RequestedAt: requestedAt,
	}
	require.NoError(t, db.Create(withdrawal).Error)
	return withdrawal
}

func TestRepositoryLockAgent(t *testing.T) {
	db := setupWithdrawalsTestDB(t)
	repo := NewRepository(db)

	agent := &models.Agent{
		ID:           uuid.New(),
		FullName:     "Test Agent",
		Phone:        uuid.NewString(),
		PasswordHash: "hash",
		MomoNumber:   "0240000000",
	}
	require.NoError(t, db.Create(agent).Error)

	found, err := repo.LockAgent(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.LockAgent(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepositoryCountInWindow(t *testing.T) {
	db := setupWithdrawalsTestDB(t)
	repo := NewRepository(db)
	agentID := uuid.New()

	monthStart := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	newWithdrawal(t, db, agentID, monthStart.Add(24*time.Hour))
	newWithdrawal(t, db, agentID, monthStart.Add(48*time.Hour))
	// Previous month and another agent are both outside the window.
	newWithdrawal(t, db, agentID, monthStart.Add(-time.Hour))
	newWithdrawal(t, db, uuid.New(), monthStart.Add(24*time.Hour))

	count, err := repo.CountInWindow(context.Background(), agentID, monthStart, nextMonth)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepositorySaveStatus_WritesNullTimestamps(t *testing.T) {
	db := setupWithdrawalsTestDB(t)
	repo := NewRepository(db)

	withdrawal := newWithdrawal(t, db, uuid.New(), time.Now().UTC())
	now := time.Now().UTC()
	withdrawal.Status = enums.WithdrawalStatusPaid
	withdrawal.ProcessingAt = &now
	withdrawal.PaidAt = &now
	require.NoError(t, repo.SaveStatus(context.Background(), withdrawal))

	// Reset writes the timestamps back to NULL, not just zero values.
	withdrawal.Status = enums.WithdrawalStatusRequested
	withdrawal.ProcessingAt = nil
	withdrawal.PaidAt = nil
	withdrawal.RejectedAt = nil
	require.NoError(t, repo.SaveStatus(context.Background(), withdrawal))

	got, err := repo.FindByID(context.Background(), withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.WithdrawalStatusRequested, got.Status)
	assert.Nil(t, got.ProcessingAt)
	assert.Nil(t, got.PaidAt)
	assert.Nil(t, got.RejectedAt)
}

func TestRepositorySnapshotRoundTrips(t *testing.T) {
	db := setupWithdrawalsTestDB(t)
	repo := NewRepository(db)

	withdrawal := newWithdrawal(t, db, uuid.New(), time.Now().UTC())

	got, err := repo.FindByID(context.Background(), withdrawal.ID)
	require.NoError(t, err)
	require.Len(t, got.CommissionItems, 1)
	assert.Equal(t, withdrawal.CommissionItems[0].ID, got.CommissionItems[0].ID)
	assert.Equal(t, enums.CommissionItemTypeReferral, got.CommissionItems[0].Type)
}

func TestRepositoryListByAgent_Filter(t *testing.T) {
	db := setupWithdrawalsTestDB(t)
	repo := NewRepository(db)
	agentID := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	mine := newWithdrawal(t, db, agentID, base)
	newWithdrawal(t, db, uuid.New(), base.Add(time.Minute))

	got, err := repo.ListByAgent(context.Background(), agentID, 10, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}
