package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/common/logger"
	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
	"contest-engine-backend/internal/utils/random"
	"contest-engine-backend/internal/utils/template"
)

// FinalizeService settles one cycle end to end: eligibility, winner draw,
// prize issuance, announcement, notification and restart. Every step has
// its own failure containment so one winner's failure never blocks the
// others.
type FinalizeService struct {
	store     repository.Store
	social    SocialClient
	scheduler PostScheduler
	collector *CollectorService
	sync      *SyncService
	locker    Locker

	restartDelay time.Duration
	now          func() time.Time
}

func NewFinalizeService(store repository.Store, social SocialClient, scheduler PostScheduler, collector *CollectorService, sync *SyncService, locker Locker, restartDelay time.Duration) *FinalizeService {
	if restartDelay <= 0 {
		restartDelay = DefaultRestartDelay
	}
	return &FinalizeService{
		store:        store,
		social:       social,
		scheduler:    scheduler,
		collector:    collector,
		sync:         sync,
		locker:       locker,
		restartDelay: restartDelay,
		now:          time.Now,
	}
}

// ProcessResults runs the finalize flow for the contest's open cycle. It
// is invoked by the tracker when the end trigger post's time arrives, and
// on demand through the API. The whole run is serialized per contest.
func (f *FinalizeService) ProcessResults(ctx context.Context, contestID string) error {
	lockKey := contestLockKeyPrefix + contestID
	if err := f.locker.Acquire(ctx, lockKey, ContestLockTTL); err != nil {
		if errors.Is(err, ErrAlreadyLocked) {
			return errs.New(errs.ErrCodeConflict, "Contest is already being finalized").
				WithDetail("contest_id", contestID)
		}
		return errs.Wrap(err, errs.ErrCodeCacheError, "Failed to acquire contest lock")
	}
	defer func() {
		if err := f.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			logger.Error().Err(err).Str("contest_id", contestID).Msg("Failed to release contest lock")
		}
	}()

	contest, err := f.store.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, repository.ErrContestNotFound) {
			return errs.NewContestNotFoundError(contestID)
		}
		return errs.NewDatabaseError("get contest", err)
	}
	cycle, err := f.store.GetOpenByContest(ctx, contestID)
	if err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return errs.New(errs.ErrCodeCycleNotFound, "Contest has no open cycle").
				WithDetail("contest_id", contestID)
		}
		return errs.NewDatabaseError("get open cycle", err)
	}

	switch cycle.Status {
	case models.CycleStatusActive:
		if err := f.store.TransitionStatus(ctx, cycle.ID, models.CycleStatusActive, models.CycleStatusEvaluating); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return errs.New(errs.ErrCodeCycleStateConflict, "Cycle was picked up by a concurrent finalize run").
					WithDetail("cycle_id", cycle.ID)
			}
			return errs.NewDatabaseError("transition cycle", err)
		}
		cycle.Status = models.CycleStatusEvaluating
	case models.CycleStatusEvaluating:
		// A previous run died mid-flight; the lock is ours, resume.
	default:
		return errs.New(errs.ErrCodeCycleStateConflict, "Cycle has not started yet").
			WithDetail("cycle_id", cycle.ID).
			WithDetail("status", string(cycle.Status))
	}

	now := f.now()

	// Step 1: the whole draw aborts when the pool cannot cover the
	// configured winners count. No winners are selected on this path.
	available, err := f.store.CountUnissued(ctx, contestID)
	if err != nil {
		return errs.NewDatabaseError("count unissued codes", err)
	}
	if available < int64(contest.WinnersCount) {
		return f.abortInsufficientPrizes(ctx, contest, cycle, int(available))
	}

	// Step 2: refresh the candidate set. A collection failure falls back
	// to the entries of the previous run.
	if _, err := f.collector.CollectForCycle(ctx, contest, cycle); err != nil {
		logger.Warn().Err(err).
			Str("contest_id", contestID).
			Str("cycle_id", cycle.ID).
			Msg("Collection failed, finalizing with previously stored entries")
	}
	entries, err := f.store.ListByCycle(ctx, cycle.ID)
	if err != nil {
		return errs.NewDatabaseError("list entries", err)
	}

	// Step 3: blacklist filter.
	valid, err := f.filterBlacklisted(ctx, contest.ProjectID, entries, now)
	if err != nil {
		return err
	}

	// Step 4: uniform draw without replacement. Zero winners is a valid
	// outcome and does not abort the run.
	drawCount := contest.WinnersCount
	if len(valid) < drawCount {
		drawCount = len(valid)
	}
	winners, err := random.Sample(valid, drawCount)
	if err != nil {
		return errs.Wrap(err, errs.ErrCodeInternal, "Winner draw failed")
	}

	// Step 5: prize issuance.
	snapshot, deliveries := f.issuePrizes(ctx, contest, cycle, winners, now)

	// Step 6: results announcement. Issued codes are never rolled back on
	// announcement failure.
	resultsPostID := f.announce(ctx, contest, cycle, snapshot)

	// Step 7: per-winner notification.
	for i := range deliveries {
		f.notifyWinner(ctx, contest, resultsPostID, &deliveries[i])
	}

	if err := f.store.Finish(ctx, cycle.ID, models.CycleStatusEvaluating, snapshot, f.now()); err != nil {
		return errs.NewDatabaseError("finish cycle", err)
	}

	logger.Info().
		Str("contest_id", contestID).
		Str("cycle_id", cycle.ID).
		Int("winners", len(snapshot)).
		Msg("Cycle finalized")

	// Step 8: cyclic restart.
	if contest.IsCyclic {
		if err := f.restart(ctx, contest, now); err != nil {
			logger.Error().Err(err).Str("contest_id", contestID).Msg("Failed to schedule restart cycle")
			if serr := f.store.SetStatus(ctx, contestID, models.ContestStatusError,
				fmt.Sprintf("restart scheduling failed: %v", err)); serr != nil {
				logger.Error().Err(serr).Str("contest_id", contestID).Msg("Failed to record contest error status")
			}
		}
	}
	return nil
}

func (f *FinalizeService) abortInsufficientPrizes(ctx context.Context, contest *models.Contest, cycle *models.Cycle, available int) error {
	note := fmt.Sprintf("finalize aborted: %d unissued promo codes for %d winners, add more codes and retry",
		available, contest.WinnersCount)

	if cycle.EndTriggerID != "" {
		if err := f.scheduler.SetPostStatus(ctx, cycle.EndTriggerID, TriggerStatusError, note); err != nil {
			logger.Error().Err(err).Str("cycle_id", cycle.ID).Msg("Failed to mark end trigger post as errored")
		}
	}
	if err := f.store.SetStatus(ctx, contest.ID, models.ContestStatusError, note); err != nil {
		logger.Error().Err(err).Str("contest_id", contest.ID).Msg("Failed to record contest error status")
	}
	// Hand the cycle back so the run stays safely re-invokable once the
	// operator adds codes.
	if err := f.store.TransitionStatus(ctx, cycle.ID, models.CycleStatusEvaluating, models.CycleStatusActive); err != nil {
		logger.Error().Err(err).Str("cycle_id", cycle.ID).Msg("Failed to revert cycle to active")
	}
	return errs.NewInsufficientPrizesError(contest.ID, available, contest.WinnersCount)
}

func (f *FinalizeService) filterBlacklisted(ctx context.Context, projectID string, entries []models.Entry, now time.Time) ([]models.Entry, error) {
	if err := f.store.PurgeExpired(ctx, projectID, now); err != nil {
		logger.Warn().Err(err).Str("project_id", projectID).Msg("Failed to purge expired blacklist entries")
	}
	banned, err := f.store.ListBlacklistByProject(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("list blacklist", err)
	}

	bannedIDs := make(map[int64]struct{}, len(banned))
	for _, b := range banned {
		if !b.Expired(now) {
			bannedIDs[b.UserID] = struct{}{}
		}
	}

	valid := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := bannedIDs[e.UserID]; ok {
			continue
		}
		valid = append(valid, e)
	}
	return valid, nil
}

// issuePrizes claims one code per winner and writes the delivery log rows
// with fully rendered message text. A claim or log failure is contained
// to its winner.
func (f *FinalizeService) issuePrizes(ctx context.Context, contest *models.Contest, cycle *models.Cycle, winners []models.Entry, now time.Time) (models.WinnersSnapshot, []models.DeliveryLog) {
	snapshot := make(models.WinnersSnapshot, 0, len(winners))
	deliveries := make([]models.DeliveryLog, 0, len(winners))

	for _, w := range winners {
		code, err := f.store.ClaimUnissued(ctx, contest.ID, cycle.ID, w.UserID, w.Name, now)
		if err != nil {
			logger.Error().Err(err).
				Str("contest_id", contest.ID).
				Int64("user_id", w.UserID).
				Msg("Failed to claim promo code for winner")
			continue
		}

		message := template.Render(contest.DirectMessageTemplate, map[string]string{
			"code":        code.Code,
			"description": code.Description,
			"name":        w.Name,
		})
		entry := models.DeliveryLog{
			ID:               uuid.New().String(),
			ContestID:        contest.ID,
			CycleID:          cycle.ID,
			UserID:           w.UserID,
			UserName:         w.Name,
			PromoCode:        code.Code,
			PrizeDescription: code.Description,
			MessageText:      message,
			Status:           models.DeliveryStatusPending,
		}
		if err := f.store.CreateDeliveryLog(ctx, &entry); err != nil {
			logger.Error().Err(err).
				Str("contest_id", contest.ID).
				Int64("user_id", w.UserID).
				Msg("Failed to write delivery log row")
		} else {
			deliveries = append(deliveries, entry)
		}

		snapshot = append(snapshot, models.WinnerRecord{
			UserID:     w.UserID,
			Name:       w.Name,
			PromoCode:  code.Code,
			GroupIndex: w.Validation.GroupIndex,
		})
	}
	return snapshot, deliveries
}

// announce publishes the results post. Returns the platform post id, or 0
// when publication failed; the run proceeds either way.
func (f *FinalizeService) announce(ctx context.Context, contest *models.Contest, cycle *models.Cycle, snapshot models.WinnersSnapshot) int64 {
	names := make([]string, 0, len(snapshot))
	for _, w := range snapshot {
		names = append(names, mention(w.UserID, w.Name))
	}
	text := template.Render(contest.ResultPostTemplate, map[string]string{
		"winners": strings.Join(names, ", "),
	})

	postID, err := f.social.PublishPost(ctx, contest.OwnerID, text)
	if err != nil {
		logger.Error().Err(err).Str("contest_id", contest.ID).Msg("Failed to publish results post")
		if cycle.EndTriggerID != "" {
			if serr := f.scheduler.SetPostStatus(ctx, cycle.EndTriggerID, TriggerStatusError, err.Error()); serr != nil {
				logger.Error().Err(serr).Str("cycle_id", cycle.ID).Msg("Failed to mark end trigger post as errored")
			}
		}
		return 0
	}

	cycle.ResultsPostID = postID
	if cycle.EndTriggerID != "" {
		if err := f.scheduler.SetPostStatus(ctx, cycle.EndTriggerID, TriggerStatusPublished, ""); err != nil {
			logger.Error().Err(err).Str("cycle_id", cycle.ID).Msg("Failed to mark end trigger post as published")
		}
	}
	if err := f.store.SetResultsLink(ctx, cycle.ID, wallPostLink(contest.OwnerID, postID)); err != nil {
		logger.Warn().Err(err).Str("cycle_id", cycle.ID).Msg("Failed to back-fill results post link")
	}
	return postID
}

// notifyWinner sends the prize message, falling back to a public mention
// comment on the results post when a direct message cannot be delivered.
func (f *FinalizeService) notifyWinner(ctx context.Context, contest *models.Contest, resultsPostID int64, entry *models.DeliveryLog) {
	attemptedAt := f.now()

	dmErr := f.social.SendDirectMessage(ctx, entry.UserID, entry.MessageText)
	if dmErr == nil {
		f.setDeliveryStatus(ctx, entry, models.DeliveryStatusSent, "", attemptedAt)
		return
	}

	if contest.FallbackCommentTemplate != "" && resultsPostID != 0 {
		text := template.Render(contest.FallbackCommentTemplate, map[string]string{
			"name":    entry.UserName,
			"mention": mention(entry.UserID, entry.UserName),
		})
		if cErr := f.social.CreateComment(ctx, contest.OwnerID, resultsPostID, text); cErr == nil {
			f.setDeliveryStatus(ctx, entry, models.DeliveryStatusSent, "", attemptedAt)
			logger.Info().
				Int64("user_id", entry.UserID).
				Str("cycle_id", entry.CycleID).
				Msg("Direct message failed, winner notified via fallback comment")
			return
		}
	}

	logger.Error().Err(dmErr).
		Int64("user_id", entry.UserID).
		Str("cycle_id", entry.CycleID).
		Msg("Failed to notify winner")
	f.setDeliveryStatus(ctx, entry, models.DeliveryStatusError, dmErr.Error(), attemptedAt)
}

func (f *FinalizeService) setDeliveryStatus(ctx context.Context, entry *models.DeliveryLog, status models.DeliveryStatus, details string, attemptedAt time.Time) {
	entry.Status = status
	entry.ErrorDetails = details
	if err := f.store.UpdateDeliveryStatus(ctx, entry.ID, status, details, attemptedAt); err != nil {
		logger.Error().Err(err).Str("delivery_id", entry.ID).Msg("Failed to update delivery status")
	}
}

// restart creates the next cycle and schedules its trigger pair. The new
// end post stays paused until its own start post publishes.
func (f *FinalizeService) restart(ctx context.Context, contest *models.Contest, now time.Time) error {
	delay := f.restartDelay
	if contest.RestartDelayHours > 0 {
		delay = time.Duration(contest.RestartDelayHours) * time.Hour
	}

	next := &models.Cycle{
		ID:        uuid.New().String(),
		ContestID: contest.ID,
		Status:    models.CycleStatusCreated,
	}
	if err := f.store.CreateCycle(ctx, next); err != nil {
		return err
	}
	if err := f.sync.ScheduleCyclePosts(ctx, contest, next, now.Add(delay), true); err != nil {
		return err
	}
	if err := f.store.UpdateCycle(ctx, next); err != nil {
		return err
	}
	logger.Info().
		Str("contest_id", contest.ID).
		Str("cycle_id", next.ID).
		Time("start_at", now.Add(delay)).
		Msg("Restart cycle scheduled")
	return nil
}

func mention(userID int64, name string) string {
	if name == "" {
		name = fmt.Sprintf("id%d", userID)
	}
	return fmt.Sprintf("[id%d|%s]", userID, name)
}

func wallPostLink(ownerID, postID int64) string {
	return fmt.Sprintf("https://vk.com/wall%d_%d", ownerID, postID)
}
