package jobs

import (
	"context"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists job postings and applications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePosting(ctx context.Context, posting *models.JobPosting) (*models.JobPosting, error)
	FindPostingByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, error)
	ListPostings(ctx context.Context, activeOnly bool) ([]models.JobPosting, error)
	UpdatePosting(ctx context.Context, posting *models.JobPosting) error
	DeletePosting(ctx context.Context, id uuid.UUID) error
	CreateApplication(ctx context.Context, application *models.JobApplication) (*models.JobApplication, error)
	ListApplicationsByAgent(ctx context.Context, agentID uuid.UUID) ([]models.JobApplication, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]models.JobApplication, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a jobs repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePosting(ctx context.Context, posting *models.JobPosting) (*models.JobPosting, error) {
	if err := r.db.WithContext(ctx).Create(posting).Error; err != nil {
		return nil, err
	}
	return posting, nil
}

func (r *repository) FindPostingByID(ctx context.Context, id uuid.UUID) (*models.JobPosting, error) {
	var posting models.JobPosting
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&posting).Error
	if err != nil {
		return nil, err
	}
	return &posting, nil
}

func (r *repository) ListPostings(ctx context.Context, activeOnly bool) ([]models.JobPosting, error) {
	query := r.db.WithContext(ctx).Model(&models.JobPosting{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var postings []models.JobPosting
	if err := query.Order("created_at DESC").Find(&postings).Error; err != nil {
		return nil, err
	}
	return postings, nil
}

func (r *repository) UpdatePosting(ctx context.Context, posting *models.JobPosting) error {
	return r.db.WithContext(ctx).
		Model(posting).
		Select("title", "company", "location", "description", "salary_range", "active").
		Updates(map[string]any{
			"title":        posting.Title,
			"company":      posting.Company,
			"location":     posting.Location,
			"description":  posting.Description,
			"salary_range": posting.SalaryRange,
			"active":       posting.Active,
		}).Error
}

func (r *repository) DeletePosting(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.JobPosting{}).Error
}

func (r *repository) CreateApplication(ctx context.Context, application *models.JobApplication) (*models.JobApplication, error) {
	if err := r.db.WithContext(ctx).Create(application).Error; err != nil {
		return nil, err
	}
	return application, nil
}

func (r *repository) ListApplicationsByAgent(ctx context.Context, agentID uuid.UUID) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *repository) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}
