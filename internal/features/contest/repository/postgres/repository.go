package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
)

// Repository is the gorm-backed implementation of every contest store
// interface.
type Repository struct {
	db *gorm.DB
}

var _ repository.Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists every entity managed by this repository, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.Contest{},
		&models.Cycle{},
		&models.Entry{},
		&models.PromoCode{},
		&models.BlacklistEntry{},
		&models.DeliveryLog{},
	}
}

// EnsureIndexes creates the constraints AutoMigrate cannot express. The
// partial unique index backs the one-open-cycle-per-contest guarantee at
// the database level, so a racing insert fails instead of duplicating.
func (r *Repository) EnsureIndexes() error {
	return r.db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cycles_open_per_contest
		 ON cycles (contest_id)
		 WHERE status IN ('created', 'active', 'evaluating')`,
	).Error
}

// --- contests ---

func (r *Repository) Create(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Create(contest).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Contest, error) {
	var row models.Contest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrContestNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Update(ctx context.Context, contest *models.Contest) error {
	result := r.db.WithContext(ctx).
		Model(&models.Contest{}).
		Where("id = ?", contest.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(contest)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrContestNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Contest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrContestNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, projectID string) ([]models.Contest, error) {
	tx := r.db.WithContext(ctx).Model(&models.Contest{})
	if projectID != "" {
		tx = tx.Where("project_id = ?", projectID)
	}
	var rows []models.Contest
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SetStatus(ctx context.Context, id string, status models.ContestStatus, details string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Contest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error_details": details})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrContestNotFound
	}
	return nil
}

// --- cycles ---

func (r *Repository) CreateCycle(ctx context.Context, cycle *models.Cycle) error {
	err := r.db.WithContext(ctx).Create(cycle).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrOpenCycleExists
	}
	return err
}

func (r *Repository) GetCycleByID(ctx context.Context, id string) (*models.Cycle, error) {
	var row models.Cycle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCycleNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetOpenByContest(ctx context.Context, contestID string) (*models.Cycle, error) {
	var row models.Cycle
	err := r.db.WithContext(ctx).
		Where("contest_id = ? AND status IN ?", contestID, models.OpenStatuses()).
		Order("created_at").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCycleNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListCyclesByContest(ctx context.Context, contestID string) ([]models.Cycle, error) {
	var rows []models.Cycle
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpdateCycle(ctx context.Context, cycle *models.Cycle) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cycle{}).
		Where("id = ?", cycle.ID).
		Select("*").
		Omit("id", "contest_id", "created_at").
		Updates(cycle)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrCycleNotFound
	}
	return nil
}

// TransitionStatus is a conditional update: concurrent callers racing the
// same transition see RowsAffected == 0 and back off.
func (r *Repository) TransitionStatus(ctx context.Context, id string, from, to models.CycleStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cycle{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrStateConflict
	}
	return nil
}

func (r *Repository) Activate(ctx context.Context, id string, ownerID, platformPostID int64, startedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cycle{}).
		Where("id = ? AND status = ?", id, models.CycleStatusCreated).
		Updates(map[string]interface{}{
			"status":            models.CycleStatusActive,
			"platform_owner_id": ownerID,
			"platform_post_id":  platformPostID,
			"started_at":        startedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrStateConflict
	}
	return nil
}

func (r *Repository) Finish(ctx context.Context, id string, from models.CycleStatus, winners models.WinnersSnapshot, finishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cycle{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":      models.CycleStatusFinished,
			"winners":     winners,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrStateConflict
	}
	return nil
}

func (r *Repository) UpdateParticipantsCount(ctx context.Context, id string, count int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cycle{}).
		Where("id = ?", id).
		Update("participants_count", count)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrCycleNotFound
	}
	return nil
}

// --- entries ---

func (r *Repository) ReplaceForCycle(ctx context.Context, cycleID string, entries []models.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cycle_id = ?", cycleID).Delete(&models.Entry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(entries, 500).Error
	})
}

func (r *Repository) ListByCycle(ctx context.Context, cycleID string) ([]models.Entry, error) {
	var rows []models.Entry
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) DeleteByCycle(ctx context.Context, cycleID string) error {
	return r.db.WithContext(ctx).Where("cycle_id = ?", cycleID).Delete(&models.Entry{}).Error
}
