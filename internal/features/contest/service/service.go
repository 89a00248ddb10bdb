package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	errs "contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/common/logger"
	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
)

// ContestService covers contest configuration CRUD and the auxiliary
// surfaces: entries, promo codes, blacklist and delivery log.
type ContestService struct {
	store repository.Store
}

func NewContestService(store repository.Store) *ContestService {
	return &ContestService{store: store}
}

// --- contests ---

func (s *ContestService) Create(ctx context.Context, input *models.ContestCreate) (*models.Contest, error) {
	contest := &models.Contest{
		ID:                      uuid.New().String(),
		ProjectID:               input.ProjectID,
		Name:                    input.Name,
		IsActive:                true,
		OwnerID:                 input.OwnerID,
		StartMode:               input.StartMode,
		ExistingPostLink:        input.ExistingPostLink,
		PostText:                input.PostText,
		PostAttachments:         input.PostAttachments,
		StartDate:               input.StartDate,
		Schema:                  input.Schema,
		FinishMode:              input.FinishMode,
		FinishDate:              input.FinishDate,
		FinishDurationHours:     input.FinishDurationHours,
		WinnersCount:            input.WinnersCount,
		OnePrizePerPerson:       input.OnePrizePerPerson,
		IsCyclic:                input.IsCyclic,
		RestartDelayHours:       input.RestartDelayHours,
		ResultPostTemplate:      input.ResultPostTemplate,
		DirectMessageTemplate:   input.DirectMessageTemplate,
		FallbackCommentTemplate: input.FallbackCommentTemplate,
		Status:                  models.ContestStatusOK,
	}
	if err := contest.Validate(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeValidation, "Invalid contest configuration")
	}
	if err := s.store.Create(ctx, contest); err != nil {
		return nil, errs.NewDatabaseError("create contest", err)
	}
	logger.Info().Str("contest_id", contest.ID).Str("project_id", contest.ProjectID).Msg("Contest created")
	return contest, nil
}

func (s *ContestService) Get(ctx context.Context, id string) (*models.Contest, error) {
	contest, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrContestNotFound) {
			return nil, errs.NewContestNotFoundError(id)
		}
		return nil, errs.NewDatabaseError("get contest", err)
	}
	return contest, nil
}

func (s *ContestService) List(ctx context.Context, projectID string) ([]models.Contest, error) {
	contests, err := s.store.List(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("list contests", err)
	}
	return contests, nil
}

func (s *ContestService) Update(ctx context.Context, id string, input *models.ContestUpdate) (*models.Contest, error) {
	contest, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyContestUpdate(contest, input)

	if err := contest.Validate(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeValidation, "Invalid contest configuration")
	}
	if err := s.store.Update(ctx, contest); err != nil {
		return nil, errs.NewDatabaseError("update contest", err)
	}
	return contest, nil
}

func (s *ContestService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrContestNotFound) {
			return errs.NewContestNotFoundError(id)
		}
		return errs.NewDatabaseError("delete contest", err)
	}
	logger.Info().Str("contest_id", id).Msg("Contest deleted")
	return nil
}

func applyContestUpdate(contest *models.Contest, input *models.ContestUpdate) {
	if input.Name != nil {
		contest.Name = *input.Name
	}
	if input.IsActive != nil {
		contest.IsActive = *input.IsActive
	}
	if input.OwnerID != nil {
		contest.OwnerID = *input.OwnerID
	}
	if input.StartMode != nil {
		contest.StartMode = *input.StartMode
	}
	if input.ExistingPostLink != nil {
		contest.ExistingPostLink = *input.ExistingPostLink
	}
	if input.PostText != nil {
		contest.PostText = *input.PostText
	}
	if input.PostAttachments != nil {
		contest.PostAttachments = *input.PostAttachments
	}
	if input.StartDate != nil {
		contest.StartDate = *input.StartDate
	}
	if input.Schema != nil {
		contest.Schema = *input.Schema
	}
	if input.FinishMode != nil {
		contest.FinishMode = *input.FinishMode
	}
	if input.FinishDate != nil {
		contest.FinishDate = input.FinishDate
	}
	if input.FinishDurationHours != nil {
		contest.FinishDurationHours = *input.FinishDurationHours
	}
	if input.WinnersCount != nil {
		contest.WinnersCount = *input.WinnersCount
	}
	if input.OnePrizePerPerson != nil {
		contest.OnePrizePerPerson = *input.OnePrizePerPerson
	}
	if input.IsCyclic != nil {
		contest.IsCyclic = *input.IsCyclic
	}
	if input.RestartDelayHours != nil {
		contest.RestartDelayHours = *input.RestartDelayHours
	}
	if input.ResultPostTemplate != nil {
		contest.ResultPostTemplate = *input.ResultPostTemplate
	}
	if input.DirectMessageTemplate != nil {
		contest.DirectMessageTemplate = *input.DirectMessageTemplate
	}
	if input.FallbackCommentTemplate != nil {
		contest.FallbackCommentTemplate = *input.FallbackCommentTemplate
	}
}

// --- cycles & entries ---

func (s *ContestService) ListCycles(ctx context.Context, contestID string) ([]models.Cycle, error) {
	if _, err := s.Get(ctx, contestID); err != nil {
		return nil, err
	}
	cycles, err := s.store.ListCyclesByContest(ctx, contestID)
	if err != nil {
		return nil, errs.NewDatabaseError("list cycles", err)
	}
	return cycles, nil
}

// ArchiveCycle moves a finished cycle into the archived terminal state.
// Cycles carry the draw's audit trail and are never deleted outright;
// archiving is the only way to retire one.
func (s *ContestService) ArchiveCycle(ctx context.Context, cycleID string) (*models.Cycle, error) {
	cycle, err := s.store.GetCycleByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return nil, errs.New(errs.ErrCodeCycleNotFound, "Cycle not found").
				WithDetail("cycle_id", cycleID)
		}
		return nil, errs.NewDatabaseError("get cycle", err)
	}
	if err := s.store.TransitionStatus(ctx, cycleID, models.CycleStatusFinished, models.CycleStatusArchived); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, errs.New(errs.ErrCodeCycleStateConflict, "Only finished cycles can be archived").
				WithDetail("cycle_id", cycleID).
				WithDetail("status", string(cycle.Status))
		}
		return nil, errs.NewDatabaseError("archive cycle", err)
	}
	cycle.Status = models.CycleStatusArchived
	logger.Info().Str("cycle_id", cycleID).Msg("Cycle archived")
	return cycle, nil
}

func (s *ContestService) GetEntries(ctx context.Context, contestID string) ([]models.Entry, error) {
	cycle, err := s.openCycle(ctx, contestID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListByCycle(ctx, cycle.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("list entries", err)
	}
	return entries, nil
}

func (s *ContestService) ClearEntries(ctx context.Context, contestID string) error {
	cycle, err := s.openCycle(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByCycle(ctx, cycle.ID); err != nil {
		return errs.NewDatabaseError("delete entries", err)
	}
	if err := s.store.UpdateParticipantsCount(ctx, cycle.ID, 0); err != nil {
		return errs.NewDatabaseError("update participants count", err)
	}
	return nil
}

func (s *ContestService) openCycle(ctx context.Context, contestID string) (*models.Cycle, error) {
	if _, err := s.Get(ctx, contestID); err != nil {
		return nil, err
	}
	cycle, err := s.store.GetOpenByContest(ctx, contestID)
	if err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return nil, errs.New(errs.ErrCodeCycleNotFound, "Contest has no open cycle").
				WithDetail("contest_id", contestID)
		}
		return nil, errs.NewDatabaseError("get open cycle", err)
	}
	return cycle, nil
}

// --- promo codes ---

func (s *ContestService) AddPromoCode(ctx context.Context, contestID string, input *models.PromoCodeCreate) (*models.PromoCode, error) {
	if _, err := s.Get(ctx, contestID); err != nil {
		return nil, err
	}
	code := &models.PromoCode{
		ID:          uuid.New().String(),
		ContestID:   contestID,
		Code:        input.Code,
		Description: input.Description,
	}
	if err := s.store.CreatePromoCode(ctx, code); err != nil {
		return nil, errs.NewDatabaseError("create promo code", err)
	}
	return code, nil
}

func (s *ContestService) ImportPromoCodes(ctx context.Context, contestID string, input *models.PromoCodeBulkImport) (int, error) {
	if _, err := s.Get(ctx, contestID); err != nil {
		return 0, err
	}
	codes := make([]models.PromoCode, 0, len(input.Codes))
	for _, c := range input.Codes {
		codes = append(codes, models.PromoCode{
			ID:          uuid.New().String(),
			ContestID:   contestID,
			Code:        c,
			Description: input.Description,
		})
	}
	if err := s.store.CreatePromoCodeBatch(ctx, codes); err != nil {
		return 0, errs.NewDatabaseError("import promo codes", err)
	}
	logger.Info().Str("contest_id", contestID).Int("count", len(codes)).Msg("Promo codes imported")
	return len(codes), nil
}

func (s *ContestService) ListPromoCodes(ctx context.Context, contestID string) ([]models.PromoCode, error) {
	if _, err := s.Get(ctx, contestID); err != nil {
		return nil, err
	}
	codes, err := s.store.ListPromoCodesByContest(ctx, contestID)
	if err != nil {
		return nil, errs.NewDatabaseError("list promo codes", err)
	}
	return codes, nil
}

func (s *ContestService) UpdatePromoCode(ctx context.Context, id string, input *models.PromoCodeUpdate) (*models.PromoCode, error) {
	if input.Description != nil {
		if err := s.store.UpdateDescription(ctx, id, *input.Description); err != nil {
			if errors.Is(err, repository.ErrPromoCodeNotFound) {
				return nil, errs.NewNotFoundError("promo code", id)
			}
			return nil, errs.NewDatabaseError("update promo code", err)
		}
	}
	code, err := s.store.GetPromoCodeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPromoCodeNotFound) {
			return nil, errs.NewNotFoundError("promo code", id)
		}
		return nil, errs.NewDatabaseError("get promo code", err)
	}
	return code, nil
}

func (s *ContestService) DeletePromoCode(ctx context.Context, id string) error {
	if err := s.store.DeletePromoCode(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrPromoCodeNotFound):
			return errs.NewNotFoundError("promo code", id)
		case errors.Is(err, repository.ErrCodeAlreadyIssued):
			return errs.New(errs.ErrCodeConflict, "Issued promo codes cannot be deleted").
				WithDetail("promo_code_id", id)
		default:
			return errs.NewDatabaseError("delete promo code", err)
		}
	}
	return nil
}

// --- blacklist ---

func (s *ContestService) AddToBlacklist(ctx context.Context, projectID string, input *models.BlacklistCreate) (*models.BlacklistEntry, error) {
	entry := &models.BlacklistEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		UserID:    input.UserID,
		ExpiresAt: input.ExpiresAt,
		Note:      input.Note,
	}
	if err := s.store.CreateBlacklistEntry(ctx, entry); err != nil {
		return nil, errs.NewDatabaseError("create blacklist entry", err)
	}
	return entry, nil
}

// ListBlacklist returns the project's active bans, lazily purging any
// that have expired.
func (s *ContestService) ListBlacklist(ctx context.Context, projectID string) ([]models.BlacklistEntry, error) {
	if err := s.store.PurgeExpired(ctx, projectID, time.Now()); err != nil {
		logger.Warn().Err(err).Str("project_id", projectID).Msg("Failed to purge expired blacklist entries")
	}
	entries, err := s.store.ListBlacklistByProject(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("list blacklist", err)
	}
	return entries, nil
}

func (s *ContestService) RemoveFromBlacklist(ctx context.Context, id string) error {
	if err := s.store.DeleteBlacklistEntry(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBlacklistNotFound) {
			return errs.NewNotFoundError("blacklist entry", id)
		}
		return errs.NewDatabaseError("delete blacklist entry", err)
	}
	return nil
}

// --- delivery log ---

func (s *ContestService) GetDeliveryLog(ctx context.Context, contestID string) ([]models.DeliveryLog, error) {
	if _, err := s.Get(ctx, contestID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListDeliveryLogsByContest(ctx, contestID)
	if err != nil {
		return nil, errs.NewDatabaseError("list delivery logs", err)
	}
	return entries, nil
}

func (s *ContestService) ClearDeliveryLog(ctx context.Context, contestID string) error {
	if _, err := s.Get(ctx, contestID); err != nil {
		return err
	}
	if err := s.store.DeleteDeliveryLogsByContest(ctx, contestID); err != nil {
		return errs.NewDatabaseError("clear delivery log", err)
	}
	return nil
}
