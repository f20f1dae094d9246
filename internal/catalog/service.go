package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors for catalog lookups.
var (
	ErrServiceNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	ErrBundleNotFound  = pkgerrors.New(pkgerrors.CodeNotFound, "data bundle not found")
)

// Service manages the referable services and the data bundle catalog.
type Service interface {
	CreateService(ctx context.Context, input ServiceInput) (*models.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, input ServiceInput) (*models.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)

	CreateBundle(ctx context.Context, input BundleInput) (*models.DataBundle, error)
	UpdateBundle(ctx context.Context, id uuid.UUID, input BundleInput) (*models.DataBundle, error)
	DeleteBundle(ctx context.Context, id uuid.UUID) error
	GetBundle(ctx context.Context, id uuid.UUID) (*models.DataBundle, error)
	ListBundles(ctx context.Context, activeOnly bool) ([]models.DataBundle, error)
}

// ServiceInput captures the admin-editable fields of a referable service.
type ServiceInput struct {
	Name             string
	Description      *string
	CommissionAmount decimal.Decimal
	Active           bool
}

// BundleInput captures the admin-editable fields of a data bundle.
type BundleInput struct {
	Network        string
	Name           string
	VolumeMB       int
	Price          decimal.Decimal
	CommissionRate decimal.Decimal
	Active         bool
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateService(ctx context.Context, input ServiceInput) (*models.Service, error) {
	if err := validateServiceInput(input); err != nil {
		return nil, err
	}
	return s.repo.CreateService(ctx, &models.Service{
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		CommissionAmount: input.CommissionAmount,
		Active:           input.Active,
	})
}

func (s *service) UpdateService(ctx context.Context, id uuid.UUID, input ServiceInput) (*models.Service, error) {
	if err := validateServiceInput(input); err != nil {
		return nil, err
	}
	current, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Name = strings.TrimSpace(input.Name)
	current.Description = input.Description
	current.CommissionAmount = input.CommissionAmount
	current.Active = input.Active
	if err := s.repo.UpdateService(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteService(ctx, id)
}

func (s *service) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}
	svc, err := s.repo.FindServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

func (s *service) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	return s.repo.ListServices(ctx, activeOnly)
}

func (s *service) CreateBundle(ctx context.Context, input BundleInput) (*models.DataBundle, error) {
	if err := validateBundleInput(input); err != nil {
		return nil, err
	}
	return s.repo.CreateBundle(ctx, &models.DataBundle{
		Network:        strings.TrimSpace(input.Network),
		Name:           strings.TrimSpace(input.Name),
		VolumeMB:       input.VolumeMB,
		Price:          input.Price,
		CommissionRate: input.CommissionRate,
		Active:         input.Active,
	})
}

func (s *service) UpdateBundle(ctx context.Context, id uuid.UUID, input BundleInput) (*models.DataBundle, error) {
	if err := validateBundleInput(input); err != nil {
		return nil, err
	}
	current, err := s.GetBundle(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Network = strings.TrimSpace(input.Network)
	current.Name = strings.TrimSpace(input.Name)
	current.VolumeMB = input.VolumeMB
	current.Price = input.Price
	current.CommissionRate = input.CommissionRate
	current.Active = input.Active
	if err := s.repo.UpdateBundle(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *service) DeleteBundle(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetBundle(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteBundle(ctx, id)
}

func (s *service) GetBundle(ctx context.Context, id uuid.UUID) (*models.DataBundle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle id required")
	}
	bundle, err := s.repo.FindBundleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return bundle, nil
}

func (s *service) ListBundles(ctx context.Context, activeOnly bool) ([]models.DataBundle, error) {
	return s.repo.ListBundles(ctx, activeOnly)
}

func validateServiceInput(input ServiceInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "service name required")
	}
	if input.CommissionAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission amount cannot be negative")
	}
	return nil
}

func validateBundleInput(input BundleInput) error {
	if strings.TrimSpace(input.Network) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "network required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "bundle name required")
	}
	if input.VolumeMB <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "volume must be positive")
	}
	if !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.CommissionRate.IsNegative() || input.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 1")
	}
	return nil
}
