package commissions

import (
	"context"
	"fmt"

	dbtypes "github.com/dataflexhq/dataflex-backend/pkg/db/types"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes the commission accrual tracker: everything an agent has
// earned but not yet been paid out for.
type Service interface {
	Available(ctx context.Context, agentID uuid.UUID) (*Summary, error)
	AvailableWithTx(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (*Summary, error)
	RepairNullFlags(ctx context.Context, agentID uuid.UUID) (int64, error)
	MarkItems(ctx context.Context, tx *gorm.DB, items dbtypes.CommissionItemList, paid bool) error
}

// Summary is the accrual snapshot for one agent at one point in time.
type Summary struct {
	Referrals []ReferralEntry            `json:"referrals"`
	Orders    []OrderEntry               `json:"data_orders"`
	Items     dbtypes.CommissionItemList `json:"items"`
	Total     decimal.Decimal            `json:"total"`
}

// ReferralEntry is one completed, unpaid referral commission.
type ReferralEntry struct {
	ID          uuid.UUID       `json:"id"`
	ServiceName string          `json:"service_name"`
	ClientName  string          `json:"client_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderEntry is one completed, unpaid data order commission.
type OrderEntry struct {
	ID             uuid.UUID       `json:"id"`
	RecipientPhone string          `json:"recipient_phone"`
	Amount         decimal.Decimal `json:"amount"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the accrual tracker with its repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commissions repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Available(ctx context.Context, agentID uuid.UUID) (*Summary, error) {
	return s.AvailableWithTx(ctx, nil, agentID)
}

// AvailableWithTx repairs NULL flags and builds the accrual snapshot, using the
// supplied transaction when one is given so a withdrawal can snapshot and flag
// items atomically.
func (s *service) AvailableWithTx(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (*Summary, error) {
	if agentID == uuid.Nil {
		return nil, fmt.Errorf("agent id is required")
	}

	repo := s.repo.WithTx(tx)

	repaired, err := repairAll(ctx, repo, agentID)
	if err != nil {
		return nil, fmt.Errorf("repairing commission flags: %w", err)
	}
	if repaired > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"agent_id": agentID,
			"rows":     repaired,
		}), "normalized NULL commission flags")
	}

	referrals, err := repo.ListUnpaidReferrals(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("listing unpaid referrals: %w", err)
	}
	orders, err := repo.ListUnpaidOrders(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("listing unpaid data orders: %w", err)
	}

	summary := &Summary{
		Referrals: make([]ReferralEntry, 0, len(referrals)),
		Orders:    make([]OrderEntry, 0, len(orders)),
		Items:     make(dbtypes.CommissionItemList, 0, len(referrals)+len(orders)),
		Total:     decimal.Zero,
	}
	for _, ref := range referrals {
		entry := ReferralEntry{ID: ref.ID, ClientName: ref.ClientName}
		if ref.Service != nil {
			entry.ServiceName = ref.Service.Name
			entry.Amount = ref.Service.CommissionAmount
		}
		summary.Referrals = append(summary.Referrals, entry)
		summary.Items = append(summary.Items, dbtypes.CommissionItemRef{
			Type: enums.CommissionItemTypeReferral,
			ID:   ref.ID,
		})
		summary.Total = summary.Total.Add(entry.Amount)
	}
	for _, order := range orders {
		summary.Orders = append(summary.Orders, OrderEntry{
			ID:             order.ID,
			RecipientPhone: order.RecipientPhone,
			Amount:         order.CommissionAmount,
		})
		summary.Items = append(summary.Items, dbtypes.CommissionItemRef{
			Type: enums.CommissionItemTypeDataOrder,
			ID:   order.ID,
		})
		summary.Total = summary.Total.Add(order.CommissionAmount)
	}
	return summary, nil
}

// RepairNullFlags normalizes NULL commission_paid values for one agent across
// both commission sources and reports how many rows were touched.
func (s *service) RepairNullFlags(ctx context.Context, agentID uuid.UUID) (int64, error) {
	if agentID == uuid.Nil {
		return 0, fmt.Errorf("agent id is required")
	}
	return repairAll(ctx, s.repo, agentID)
}

// MarkItems flips the paid flag on every snapshotted item inside the caller's
// transaction. The withdrawal state machine calls this on paid and on reset.
func (s *service) MarkItems(ctx context.Context, tx *gorm.DB, items dbtypes.CommissionItemList, paid bool) error {
	if len(items) == 0 {
		return nil
	}
	repo := s.repo.WithTx(tx)
	if err := repo.SetReferralsPaid(ctx, items.IDsOf(enums.CommissionItemTypeReferral), paid); err != nil {
		return fmt.Errorf("flagging referrals: %w", err)
	}
	if err := repo.SetOrdersPaid(ctx, items.IDsOf(enums.CommissionItemTypeDataOrder), paid); err != nil {
		return fmt.Errorf("flagging data orders: %w", err)
	}
	return nil
}

func repairAll(ctx context.Context, repo Repository, agentID uuid.UUID) (int64, error) {
	var errs error
	refRows, err := repo.RepairReferralFlags(ctx, agentID)
	errs = multierr.Append(errs, err)
	orderRows, err := repo.RepairOrderFlags(ctx, agentID)
	errs = multierr.Append(errs, err)
	return refRows + orderRows, errs
}
