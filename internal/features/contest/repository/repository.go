package repository

import (
	"context"
	"errors"
	"time"

	"contest-engine-backend/internal/features/contest/models"
)

var (
	ErrContestNotFound     = errors.New("contest not found")
	ErrCycleNotFound       = errors.New("cycle not found")
	ErrPromoCodeNotFound   = errors.New("promo code not found")
	ErrDeliveryLogNotFound = errors.New("delivery log not found")
	ErrBlacklistNotFound   = errors.New("blacklist entry not found")
	ErrNoUnissuedCodes     = errors.New("no unissued promo codes left")
	ErrStateConflict       = errors.New("cycle is not in the expected status")
	ErrOpenCycleExists     = errors.New("contest already has an open cycle")
	ErrCodeAlreadyIssued   = errors.New("promo code is already issued")
)

type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id string) (*models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, projectID string) ([]models.Contest, error)
	SetStatus(ctx context.Context, id string, status models.ContestStatus, details string) error
}

type CycleRepository interface {
	// CreateCycle inserts the cycle. Inserting a second open cycle for
	// the same contest fails with ErrOpenCycleExists.
	CreateCycle(ctx context.Context, cycle *models.Cycle) error
	GetCycleByID(ctx context.Context, id string) (*models.Cycle, error)
	// GetOpenByContest returns the single cycle in {created, active,
	// evaluating} for the contest, or ErrCycleNotFound.
	GetOpenByContest(ctx context.Context, contestID string) (*models.Cycle, error)
	ListCyclesByContest(ctx context.Context, contestID string) ([]models.Cycle, error)
	UpdateCycle(ctx context.Context, cycle *models.Cycle) error

	// TransitionStatus performs a guarded status change; it fails with
	// ErrStateConflict when the cycle is no longer in the from status.
	TransitionStatus(ctx context.Context, id string, from, to models.CycleStatus) error
	// Activate is the guarded created → active transition recording the
	// published platform owner/post pair and the real start time.
	Activate(ctx context.Context, id string, ownerID, platformPostID int64, startedAt time.Time) error
	// Finish is the guarded transition to finished, storing the winners
	// snapshot for audit.
	Finish(ctx context.Context, id string, from models.CycleStatus, winners models.WinnersSnapshot, finishedAt time.Time) error
	UpdateParticipantsCount(ctx context.Context, id string, count int) error
}

type EntryRepository interface {
	// ReplaceForCycle atomically deletes all entries of the cycle and
	// inserts the new set. Collection is idempotent but not additive.
	ReplaceForCycle(ctx context.Context, cycleID string, entries []models.Entry) error
	ListByCycle(ctx context.Context, cycleID string) ([]models.Entry, error)
	DeleteByCycle(ctx context.Context, cycleID string) error
}

type PromoCodeRepository interface {
	CreatePromoCode(ctx context.Context, code *models.PromoCode) error
	CreatePromoCodeBatch(ctx context.Context, codes []models.PromoCode) error
	GetPromoCodeByID(ctx context.Context, id string) (*models.PromoCode, error)
	UpdateDescription(ctx context.Context, id, description string) error
	DeletePromoCode(ctx context.Context, id string) error
	ListPromoCodesByContest(ctx context.Context, contestID string) ([]models.PromoCode, error)
	CountUnissued(ctx context.Context, contestID string) (int64, error)
	// ClaimUnissued atomically claims the oldest unissued code for the
	// winner. Returns ErrNoUnissuedCodes when the pool is exhausted.
	ClaimUnissued(ctx context.Context, contestID, cycleID string, winnerID int64, winnerName string, issuedAt time.Time) (*models.PromoCode, error)
}

type BlacklistRepository interface {
	CreateBlacklistEntry(ctx context.Context, entry *models.BlacklistEntry) error
	DeleteBlacklistEntry(ctx context.Context, id string) error
	ListBlacklistByProject(ctx context.Context, projectID string) ([]models.BlacklistEntry, error)
	PurgeExpired(ctx context.Context, projectID string, before time.Time) error
}

type DeliveryLogRepository interface {
	CreateDeliveryLog(ctx context.Context, entry *models.DeliveryLog) error
	GetDeliveryLogByID(ctx context.Context, id string) (*models.DeliveryLog, error)
	ListDeliveryLogsByContest(ctx context.Context, contestID string) ([]models.DeliveryLog, error)
	ListFailedByContest(ctx context.Context, contestID string) ([]models.DeliveryLog, error)
	UpdateDeliveryStatus(ctx context.Context, id string, status models.DeliveryStatus, errorDetails string, attemptedAt time.Time) error
	// SetResultsLink back-fills the results-post link onto every delivery
	// row of the cycle once the announcement is published.
	SetResultsLink(ctx context.Context, cycleID, link string) error
	DeleteDeliveryLogsByContest(ctx context.Context, contestID string) error
}

// Store aggregates every repository the contest services depend on. The
// gorm implementation satisfies it with one struct.
type Store interface {
	ContestRepository
	CycleRepository
	EntryRepository
	PromoCodeRepository
	BlacklistRepository
	DeliveryLogRepository
}
