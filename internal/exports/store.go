package exports

import (
	"context"
	"errors"
	"time"

	"github.com/arencloud/surveyboard/internal/errs"
	"github.com/arencloud/surveyboard/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("export job not found")

// Store persists export jobs keyed by progress id.
type Store interface {
	Save(ctx context.Context, job *models.ExportJob) error
	Get(ctx context.Context, progressID string) (*models.ExportJob, error)
	List(ctx context.Context, limit int) ([]models.ExportJob, error)
	Update(ctx context.Context, job *models.ExportJob) error
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, job *models.ExportJob) error {
	return errs.Wrap(s.db.WithContext(ctx).Create(job).Error, "insert export job")
}

func (s *GormStore) Get(ctx context.Context, progressID string) (*models.ExportJob, error) {
	var job models.ExportJob
	if err := s.db.WithContext(ctx).Where("progress_id = ?", progressID).Take(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errs.Wrap(err, "query export job")
	}
	return &job, nil
}

func (s *GormStore) List(ctx context.Context, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 100
	}
	var jobs []models.ExportJob
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&jobs).Error
	return jobs, errs.Wrap(err, "list export jobs")
}

func (s *GormStore) Update(ctx context.Context, job *models.ExportJob) error {
	return errs.Wrap(s.db.WithContext(ctx).Save(job).Error, "update export job")
}

func (s *GormStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", t).Delete(&models.ExportJob{})
	return res.RowsAffected, errs.Wrap(res.Error, "prune export jobs")
}
