package commissions

import (
	"context"
	"testing"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCommissionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	services := `
CREATE TABLE IF NOT EXISTS services (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  commission_amount NUMERIC NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	referrals := `
CREATE TABLE IF NOT EXISTS referrals (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  client_name TEXT NOT NULL,
  client_phone TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  commission_paid INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	dataOrders := `
CREATE TABLE IF NOT EXISTS data_orders (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  bundle_id TEXT NOT NULL,
  recipient_phone TEXT NOT NULL,
  price NUMERIC NOT NULL,
  commission_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  commission_paid INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(services).Error)
	require.NoError(t, db.Exec(referrals).Error)
	require.NoError(t, db.Exec(dataOrders).Error)
	return db
}

func newService(t *testing.T, db *gorm.DB, amount string) *models.Service {
	t.Helper()

	svc := &models.Service{
		ID:               uuid.New(),
		Name:             "SIM Registration",
		CommissionAmount: decimal.RequireFromString(amount),
		Active:           true,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func newReferral(t *testing.T, db *gorm.DB, agentID uuid.UUID, svc *models.Service, status enums.ReferralStatus, paid *bool) *models.Referral {
	t.Helper()

	ref := &models.Referral{
		ID:             uuid.New(),
		AgentID:        agentID,
		ServiceID:      svc.ID,
		ClientName:     "Client",
		ClientPhone:    "0240000000",
		Status:         status,
		CommissionPaid: paid,
	}
	require.NoError(t, db.Create(ref).Error)
	return ref
}

func newDataOrder(t *testing.T, db *gorm.DB, agentID uuid.UUID, status enums.DataOrderStatus, commission string, paid *bool) *models.DataOrder {
	t.Helper()

	order := &models.DataOrder{
		ID:               uuid.New(),
		AgentID:          agentID,
		BundleID:         uuid.New(),
		RecipientPhone:   "0550000000",
		Price:            decimal.RequireFromString("24.00"),
		CommissionAmount: decimal.RequireFromString(commission),
		Status:           status,
		CommissionPaid:   paid,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func boolPtr(v bool) *bool { return &v }

func TestRepositoryRepairFlags_NormalizesOnlyNulls(t *testing.T) {
	db := setupCommissionsTestDB(t)
	repo := NewRepository(db)
	agentID := uuid.New()
	svc := newService(t, db, "5.00")

	nullRef := newReferral(t, db, agentID, svc, enums.ReferralStatusCompleted, nil)
	paidRef := newReferral(t, db, agentID, svc, enums.ReferralStatusCompleted, boolPtr(true))
	newReferral(t, db, uuid.New(), svc, enums.ReferralStatusCompleted, nil)

	rows, err := repo.RepairReferralFlags(context.Background(), agentID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	var repaired models.Referral
	require.NoError(t, db.First(&repaired, "id = ?", nullRef.ID).Error)
	require.NotNil(t, repaired.CommissionPaid)
	assert.False(t, *repaired.CommissionPaid)

	var untouched models.Referral
	require.NoError(t, db.First(&untouched, "id = ?", paidRef.ID).Error)
	require.NotNil(t, untouched.CommissionPaid)
	assert.True(t, *untouched.CommissionPaid)
}

func TestRepositoryListUnpaid_FiltersStatusAndFlag(t *testing.T) {
	db := setupCommissionsTestDB(t)
	repo := NewRepository(db)
	agentID := uuid.New()
	svc := newService(t, db, "5.00")

	unpaid := newReferral(t, db, agentID, svc, enums.ReferralStatusCompleted, boolPtr(false))
	newReferral(t, db, agentID, svc, enums.ReferralStatusCompleted, boolPtr(true))
	newReferral(t, db, agentID, svc, enums.ReferralStatusPending, boolPtr(false))

	got, err := repo.ListUnpaidReferrals(context.Background(), agentID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, unpaid.ID, got[0].ID)
	require.NotNil(t, got[0].Service)
	assert.True(t, got[0].Service.CommissionAmount.Equal(decimal.RequireFromString("5.00")))
}

func TestRepositoryListUnpaidOrders(t *testing.T) {
	db := setupCommissionsTestDB(t)
	repo := NewRepository(db)
	agentID := uuid.New()

	unpaid := newDataOrder(t, db, agentID, enums.DataOrderStatusCompleted, "1.20", boolPtr(false))
	newDataOrder(t, db, agentID, enums.DataOrderStatusCompleted, "1.20", boolPtr(true))
	newDataOrder(t, db, agentID, enums.DataOrderStatusPending, "1.20", boolPtr(false))

	got, err := repo.ListUnpaidOrders(context.Background(), agentID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, unpaid.ID, got[0].ID)
}

func TestRepositorySetPaid_RoundTrips(t *testing.T) {
	db := setupCommissionsTestDB(t)
	repo := NewRepository(db)
	agentID := uuid.New()
	svc := newService(t, db, "5.00")

	ref := newReferral(t, db, agentID, svc, enums.ReferralStatusCompleted, boolPtr(false))
	order := newDataOrder(t, db, agentID, enums.DataOrderStatusCompleted, "1.20", boolPtr(false))

	require.NoError(t, repo.SetReferralsPaid(context.Background(), []uuid.UUID{ref.ID}, true))
	require.NoError(t, repo.SetOrdersPaid(context.Background(), []uuid.UUID{order.ID}, true))

	unpaidRefs, err := repo.ListUnpaidReferrals(context.Background(), agentID)
	require.NoError(t, err)
	assert.Empty(t, unpaidRefs)

	// Reverting puts them back in the accrual pool.
	require.NoError(t, repo.SetReferralsPaid(context.Background(), []uuid.UUID{ref.ID}, false))
	unpaidRefs, err = repo.ListUnpaidReferrals(context.Background(), agentID)
	require.NoError(t, err)
	assert.Len(t, unpaidRefs, 1)
}
