package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dataflexhq/dataflex-backend/pkg/db"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors for the job board.
var (
	ErrPostingNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "job posting not found")
	ErrAlreadyApplied  = pkgerrors.New(pkgerrors.CodeConflict, "already applied to this job")
)

// Service manages the job board.
type Service interface {
	CreatePosting(ctx context.Context, input PostingInput) (*models.JobPosting, error)
	UpdatePosting(ctx context.Context, id uuid.UUID, input PostingInput) (*models.JobPosting, error)
	DeletePosting(ctx context.Context, id uuid.UUID) error
	GetPosting(ctx context.Context, id uuid.UUID) (*models.JobPosting, error)
	ListPostings(ctx context.Context, activeOnly bool) ([]models.JobPosting, error)
	Apply(ctx context.Context, jobID, agentID uuid.UUID, coverNote *string) (*models.JobApplication, error)
	ApplicationsForAgent(ctx context.Context, agentID uuid.UUID) ([]models.JobApplication, error)
	ApplicationsForJob(ctx context.Context, jobID uuid.UUID) ([]models.JobApplication, error)
}

// PostingInput captures the admin-editable fields of a job posting.
type PostingInput struct {
	Title       string
	Company     string
	Location    *string
	Description string
	SalaryRange *string
	Active      bool
}

type service struct {
	repo Repository
}

// NewService builds the job board service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("jobs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreatePosting(ctx context.Context, input PostingInput) (*models.JobPosting, error) {
	if err := validatePosting(input); err != nil {
		return nil, err
	}
	return s.repo.CreatePosting(ctx, &models.JobPosting{
		Title:       strings.TrimSpace(input.Title),
		Company:     strings.TrimSpace(input.Company),
		Location:    input.Location,
		Description: input.Description,
		SalaryRange: input.SalaryRange,
		Active:      input.Active,
	})
}

func (s *service) UpdatePosting(ctx context.Context, id uuid.UUID, input PostingInput) (*models.JobPosting, error) {
	if err := validatePosting(input); err != nil {
		return nil, err
	}
	current, err := s.GetPosting(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Title = strings.TrimSpace(input.Title)
	current.Company = strings.TrimSpace(input.Company)
	current.Location = input.Location
	current.Description = input.Description
	current.SalaryRange = input.SalaryRange
	current.Active = input.Active
	if err := s.repo.UpdatePosting(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *service) DeletePosting(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPosting(ctx, id); err != nil {
		return err
	}
	return s.repo.DeletePosting(ctx, id)
}

func (s *service) GetPosting(ctx context.Context, id uuid.UUID) (*models.JobPosting, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	posting, err := s.repo.FindPostingByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostingNotFound
		}
		return nil, err
	}
	return posting, nil
}

func (s *service) ListPostings(ctx context.Context, activeOnly bool) ([]models.JobPosting, error) {
	return s.repo.ListPostings(ctx, activeOnly)
}

func (s *service) Apply(ctx context.Context, jobID, agentID uuid.UUID, coverNote *string) (*models.JobApplication, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	posting, err := s.GetPosting(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !posting.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job posting is closed")
	}

	application, err := s.repo.CreateApplication(ctx, &models.JobApplication{
		JobID:     posting.ID,
		AgentID:   agentID,
		CoverNote: coverNote,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("creating application: %w", err)
	}
	return application, nil
}

func (s *service) ApplicationsForAgent(ctx context.Context, agentID uuid.UUID) ([]models.JobApplication, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	return s.repo.ListApplicationsByAgent(ctx, agentID)
}

func (s *service) ApplicationsForJob(ctx context.Context, jobID uuid.UUID) ([]models.JobApplication, error) {
	if jobID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	return s.repo.ListApplicationsByJob(ctx, jobID)
}

func validatePosting(input PostingInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Company) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "company required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	return nil
}
