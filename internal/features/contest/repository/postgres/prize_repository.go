package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
)

// --- promo codes ---

func (r *Repository) CreatePromoCode(ctx context.Context, code *models.PromoCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *Repository) CreatePromoCodeBatch(ctx context.Context, codes []models.PromoCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(codes, 500).Error
}

func (r *Repository) GetPromoCodeByID(ctx context.Context, id string) (*models.PromoCode, error) {
	var row models.PromoCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPromoCodeNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) UpdateDescription(ctx context.Context, id, description string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ?", id).
		Update("description", description)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrPromoCodeNotFound
	}
	return nil
}

// DeletePromoCode removes an unissued code. Issued codes are part of the
// audit trail and stay.
func (r *Repository) DeletePromoCode(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_issued = ?", id, false).
		Delete(&models.PromoCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.PromoCode{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repository.ErrCodeAlreadyIssued
		}
		return repository.ErrPromoCodeNotFound
	}
	return nil
}

func (r *Repository) ListPromoCodesByContest(ctx context.Context, contestID string) ([]models.PromoCode, error) {
	var rows []models.PromoCode
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CountUnissued(ctx context.Context, contestID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("contest_id = ? AND is_issued = ?", contestID, false).
		Count(&count).Error
	return count, err
}

// ClaimUnissued claims the oldest unissued code under a row lock so two
// concurrent draws can never land on the same code. The guarded update is
// kept even under the lock: SKIP LOCKED makes racing claimers pick
// different rows rather than wait.
func (r *Repository) ClaimUnissued(ctx context.Context, contestID, cycleID string, winnerID int64, winnerName string, issuedAt time.Time) (*models.PromoCode, error) {
	var claimed models.PromoCode
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PromoCode
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("contest_id = ? AND is_issued = ?", contestID, false).
			Order("created_at, id").
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrNoUnissuedCodes
			}
			return err
		}

		result := tx.Model(&models.PromoCode{}).
			Where("id = ? AND is_issued = ?", row.ID, false).
			Updates(map[string]interface{}{
				"is_issued":      true,
				"issued_at":      issuedAt,
				"winner_user_id": winnerID,
				"winner_name":    winnerName,
				"cycle_id":       cycleID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrCodeAlreadyIssued
		}

		row.IsIssued = true
		row.IssuedAt = &issuedAt
		row.WinnerUserID = winnerID
		row.WinnerName = winnerName
		row.CycleID = &cycleID
		claimed = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

// --- blacklist ---

func (r *Repository) CreateBlacklistEntry(ctx context.Context, entry *models.BlacklistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) DeleteBlacklistEntry(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BlacklistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrBlacklistNotFound
	}
	return nil
}

func (r *Repository) ListBlacklistByProject(ctx context.Context, projectID string) ([]models.BlacklistEntry, error) {
	var rows []models.BlacklistEntry
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) PurgeExpired(ctx context.Context, projectID string, before time.Time) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND expires_at IS NOT NULL AND expires_at < ?", projectID, before).
		Delete(&models.BlacklistEntry{}).Error
}

// --- delivery log ---

func (r *Repository) CreateDeliveryLog(ctx context.Context, entry *models.DeliveryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) GetDeliveryLogByID(ctx context.Context, id string) (*models.DeliveryLog, error) {
	var row models.DeliveryLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDeliveryLogNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListDeliveryLogsByContest(ctx context.Context, contestID string) ([]models.DeliveryLog, error) {
	var rows []models.DeliveryLog
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListFailedByContest(ctx context.Context, contestID string) ([]models.DeliveryLog, error) {
	var rows []models.DeliveryLog
	err := r.db.WithContext(ctx).
		Where("contest_id = ? AND status = ?", contestID, models.DeliveryStatusError).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpdateDeliveryStatus(ctx context.Context, id string, status models.DeliveryStatus, errorDetails string, attemptedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.DeliveryLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_details": errorDetails,
			"attempted_at":  attemptedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrDeliveryLogNotFound
	}
	return nil
}

func (r *Repository) SetResultsLink(ctx context.Context, cycleID, link string) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryLog{}).
		Where("cycle_id = ?", cycleID).
		Update("results_post_link", link).Error
}

func (r *Repository) DeleteDeliveryLogsByContest(ctx context.Context, contestID string) error {
	return r.db.WithContext(ctx).Where("contest_id = ?", contestID).Delete(&models.DeliveryLog{}).Error
}
