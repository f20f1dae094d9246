package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dataflexhq/dataflex-backend/internal/wallet"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// bundleCatalog is the catalog slice order placement needs.
type bundleCatalog interface {
	GetBundle(ctx context.Context, id uuid.UUID) (*models.DataBundle, error)
}

// walletLedger moves the agent's balance inside the order transaction.
type walletLedger interface {
	Deduct(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
	Refund(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
}

// Service manages wallet-funded data bundle orders.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*models.DataOrder, error)
	SetStatus(ctx context.Context, id uuid.UUID, next enums.DataOrderStatus) (*models.DataOrder, error)
	ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*Page, error)
	List(ctx context.Context, status *enums.DataOrderStatus, params pagination.Params) (*Page, error)
}

// PlaceInput captures a new bundle purchase.
type PlaceInput struct {
	AgentID        uuid.UUID
	BundleID       uuid.UUID
	RecipientPhone string
}

// Page is one cursor page of data orders.
type Page struct {
	Orders     []models.DataOrder `json:"orders"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type service struct {
	repo    Repository
	catalog bundleCatalog
	wallet  walletLedger
	tx      txRunner
	logg    *logger.Logger
}

// NewService builds the data orders service.
func NewService(repo Repository, catalog bundleCatalog, ledger walletLedger, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, catalog: catalog, wallet: ledger, tx: tx, logg: logg}, nil
}

// Place debits the wallet and creates the order in one transaction. The
// commission amount is fixed at placement time from the bundle's current rate.
func (s *service) Place(ctx context.Context, input PlaceInput) (*models.DataOrder, error) {
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if strings.TrimSpace(input.RecipientPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient phone required")
	}

	bundle, err := s.catalog.GetBundle(ctx, input.BundleID)
	if err != nil {
		return nil, err
	}
	if !bundle.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle is not available")
	}

	commission := bundle.Price.Mul(bundle.CommissionRate).Round(2)

	var order *models.DataOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		unpaid := false
		order, err = repo.Create(ctx, &models.DataOrder{
			AgentID:          input.AgentID,
			BundleID:         bundle.ID,
			RecipientPhone:   strings.TrimSpace(input.RecipientPhone),
			Price:            bundle.Price,
			CommissionAmount: commission,
			Status:           enums.DataOrderStatusPending,
			CommissionPaid:   &unpaid,
		})
		if err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		if _, err := s.wallet.Deduct(ctx, tx, wallet.EntryInput{
			AgentID:     input.AgentID,
			Amount:      bundle.Price,
			Description: fmt.Sprintf("%s %s for %s", bundle.Network, bundle.Name, order.RecipientPhone),
			Reference:   order.ID.String(),
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":  order.ID,
		"agent_id":  order.AgentID,
		"bundle_id": order.BundleID,
		"price":     order.Price,
	}), "data order placed")
	return order, nil
}

// SetStatus applies an admin transition. The commission flag resets to unpaid
// on every transition, and canceling refunds the purchase price in the same
// transaction.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, next enums.DataOrderStatus) (*models.DataOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", next))
	}

	var order *models.DataOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading order: %w", err)
		}

		if next == enums.DataOrderStatusCanceled && current.Status != enums.DataOrderStatusCanceled {
			if _, err := s.wallet.Refund(ctx, tx, wallet.EntryInput{
				AgentID:     current.AgentID,
				Amount:      current.Price,
				Description: "order canceled",
				Reference:   current.ID.String(),
			}); err != nil {
				return err
			}
		}

		unpaid := false
		current.Status = next
		current.CommissionPaid = &unpaid
		if err := repo.SaveStatus(ctx, current); err != nil {
			return fmt.Errorf("saving order status: %w", err)
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	}), "order status updated")
	return order, nil
}

func (s *service) ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*Page, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByAgent(ctx, agentID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, err
	}
	return buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) List(ctx context.Context, status *enums.DataOrderStatus, params pagination.Params) (*Page, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", *status))
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, status, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, err
	}
	return buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func buildPage(rows []models.DataOrder, limit int) *Page {
	page := &Page{Orders: rows}
	if len(rows) > limit {
		page.Orders = rows[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page
}
