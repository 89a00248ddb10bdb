package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	errs "contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/common/logger"
	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
)

var wallPostLinkRe = regexp.MustCompile(`wall(-?\d+)_(\d+)`)

// ParseWallPostLink extracts the owner/post pair from a wall post link.
func ParseWallPostLink(link string) (ownerID, postID int64, err error) {
	m := wallPostLinkRe.FindStringSubmatch(link)
	if m == nil {
		return 0, 0, ErrInvalidPostLink
	}
	ownerID, _ = strconv.ParseInt(m[1], 10, 64)
	postID, _ = strconv.ParseInt(m[2], 10, 64)
	return ownerID, postID, nil
}

// SyncService reconciles contest configuration into the two
// externally-scheduled trigger posts of the open cycle.
type SyncService struct {
	contests  repository.ContestRepository
	cycles    repository.CycleRepository
	scheduler PostScheduler
	locker    Locker

	finishWindow time.Duration
	now          func() time.Time
}

func NewSyncService(contests repository.ContestRepository, cycles repository.CycleRepository, scheduler PostScheduler, locker Locker, finishWindow time.Duration) *SyncService {
	if finishWindow <= 0 {
		finishWindow = DefaultFinishWindow
	}
	return &SyncService{
		contests:     contests,
		cycles:       cycles,
		scheduler:    scheduler,
		locker:       locker,
		finishWindow: finishWindow,
		now:          time.Now,
	}
}

// SyncContestPosts brings the open cycle's trigger posts in line with the
// current contest configuration. Safe to re-invoke at any time: upserts
// are keyed by the stored trigger ids, and the run holds the same
// per-contest lock finalize holds, so a sync never races a finalize or
// another sync into creating a second open cycle.
func (s *SyncService) SyncContestPosts(ctx context.Context, contestID string) error {
	lockKey := contestLockKeyPrefix + contestID
	if err := s.locker.Acquire(ctx, lockKey, ContestLockTTL); err != nil {
		if errors.Is(err, ErrAlreadyLocked) {
			return errs.New(errs.ErrCodeConflict, "Contest is already being synchronized or finalized").
				WithDetail("contest_id", contestID)
		}
		return errs.Wrap(err, errs.ErrCodeCacheError, "Failed to acquire contest lock")
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			logger.Error().Err(err).Str("contest_id", contestID).Msg("Failed to release contest lock")
		}
	}()

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, repository.ErrContestNotFound) {
			return errs.NewContestNotFoundError(contestID)
		}
		return errs.NewDatabaseError("get contest", err)
	}

	cycle, err := s.getOrCreateCycle(ctx, contest)
	if err != nil {
		return err
	}

	now := s.now()

	syncErr := s.syncStartPost(ctx, contest, cycle, now)
	if syncErr == nil {
		syncErr = s.tentativelyScheduleEnd(ctx, contest, cycle, now)
	}

	if err := s.cycles.UpdateCycle(ctx, cycle); err != nil {
		return errs.NewDatabaseError("update cycle", err)
	}

	if syncErr != nil {
		if appErr, ok := errs.AsAppError(syncErr); ok && appErr.IsValidation() {
			// Configuration errors are reported to the caller without
			// flipping the contest into an error state.
			return syncErr
		}
		if err := s.contests.SetStatus(ctx, contest.ID, models.ContestStatusError, syncErr.Error()); err != nil {
			logger.Error().Err(err).Str("contest_id", contest.ID).Msg("Failed to record contest error status")
		}
		return syncErr
	}

	if err := s.contests.SetStatus(ctx, contest.ID, models.ContestStatusOK, ""); err != nil {
		logger.Error().Err(err).Str("contest_id", contest.ID).Msg("Failed to clear contest error status")
	}
	return nil
}

// OnStartPostPublished is invoked by the tracker when the start trigger
// post actually goes live. It activates the cycle and, for duration-mode
// contests, locks in the real end time computed from the publish moment.
func (s *SyncService) OnStartPostPublished(ctx context.Context, cycleID string, platformPostID int64) error {
	cycle, err := s.cycles.GetCycleByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return errs.New(errs.ErrCodeCycleNotFound, "Cycle not found").WithDetail("cycle_id", cycleID)
		}
		return errs.NewDatabaseError("get cycle", err)
	}
	contest, err := s.contests.GetByID(ctx, cycle.ContestID)
	if err != nil {
		return errs.NewDatabaseError("get contest", err)
	}

	now := s.now()
	if err := s.cycles.Activate(ctx, cycle.ID, contest.OwnerID, platformPostID, now); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return errs.New(errs.ErrCodeCycleStateConflict, "Cycle is not awaiting publication").
				WithDetail("cycle_id", cycle.ID)
		}
		return errs.NewDatabaseError("activate cycle", err)
	}
	cycle.Status = models.CycleStatusActive
	cycle.PlatformOwnerID = contest.OwnerID
	cycle.PlatformPostID = platformPostID
	cycle.StartedAt = &now

	return s.lockEndTime(ctx, contest, cycle, now)
}

// ScheduleCyclePosts schedules the start/end trigger pair for a created
// cycle with the given start time. Used for the initial sync and for
// cyclic restarts; restart end posts stay paused until their start post
// publishes.
func (s *SyncService) ScheduleCyclePosts(ctx context.Context, contest *models.Contest, cycle *models.Cycle, startAt time.Time, endPaused bool) error {
	startStatus := TriggerStatusPending
	if !contest.IsActive {
		startStatus = TriggerStatusPaused
	}
	startID, err := s.scheduler.UpsertPost(ctx, TriggerPost{
		ID:          cycle.StartTriggerID,
		ProjectID:   contest.ProjectID,
		ContestID:   contest.ID,
		CycleID:     cycle.ID,
		Kind:        TriggerStart,
		PublishAt:   startAt,
		Text:        contest.PostText,
		Attachments: contest.PostAttachments,
		Status:      startStatus,
	})
	if err != nil {
		return errs.Wrap(err, errs.ErrCodeSchedulerAPI, "Failed to upsert start trigger post")
	}
	cycle.StartTriggerID = startID

	endStatus := TriggerStatusPending
	if endPaused || !contest.IsActive {
		endStatus = TriggerStatusPaused
	}
	endAt := s.finishTimeFrom(contest, startAt)
	endID, err := s.scheduler.UpsertPost(ctx, TriggerPost{
		ID:        cycle.EndTriggerID,
		ProjectID: contest.ProjectID,
		ContestID: contest.ID,
		CycleID:   cycle.ID,
		Kind:      TriggerEnd,
		PublishAt: endAt,
		Text:      contest.ResultPostTemplate,
		Status:    endStatus,
	})
	if err != nil {
		return errs.Wrap(err, errs.ErrCodeSchedulerAPI, "Failed to upsert end trigger post")
	}
	cycle.EndTriggerID = endID
	return nil
}

func (s *SyncService) getOrCreateCycle(ctx context.Context, contest *models.Contest) (*models.Cycle, error) {
	cycle, err := s.cycles.GetOpenByContest(ctx, contest.ID)
	if err == nil {
		return cycle, nil
	}
	if !errors.Is(err, repository.ErrCycleNotFound) {
		return nil, errs.NewDatabaseError("get open cycle", err)
	}

	cycle = &models.Cycle{
		ID:        uuid.New().String(),
		ContestID: contest.ID,
		Status:    models.CycleStatusCreated,
	}
	if err := s.cycles.CreateCycle(ctx, cycle); err != nil {
		// The partial unique index rejected the insert: another instance
		// created the open cycle between our lookup and the write. Adopt
		// the winner's cycle instead of failing the sync.
		if errors.Is(err, repository.ErrOpenCycleExists) {
			existing, gerr := s.cycles.GetOpenByContest(ctx, contest.ID)
			if gerr != nil {
				return nil, errs.NewDatabaseError("get open cycle", gerr)
			}
			return existing, nil
		}
		return nil, errs.NewDatabaseError("create cycle", err)
	}
	logger.Info().Str("contest_id", contest.ID).Str("cycle_id", cycle.ID).Msg("Cycle created")
	return cycle, nil
}

// syncStartPost reconciles the start trigger with the contest's start
// mode. Only a created cycle may have its start handling changed; cycles
// already active or evaluating keep their start post untouched.
func (s *SyncService) syncStartPost(ctx context.Context, contest *models.Contest, cycle *models.Cycle, now time.Time) error {
	if cycle.Status != models.CycleStatusCreated {
		return nil
	}

	switch contest.StartMode {
	case models.StartModeNewPost:
		status := TriggerStatusPending
		if !contest.IsActive {
			status = TriggerStatusPaused
		}
		id, err := s.scheduler.UpsertPost(ctx, TriggerPost{
			ID:          cycle.StartTriggerID,
			ProjectID:   contest.ProjectID,
			ContestID:   contest.ID,
			CycleID:     cycle.ID,
			Kind:        TriggerStart,
			PublishAt:   contest.StartDate,
			Text:        contest.PostText,
			Attachments: contest.PostAttachments,
			Status:      status,
		})
		if err != nil {
			return errs.Wrap(err, errs.ErrCodeSchedulerAPI, "Failed to upsert start trigger post")
		}
		cycle.StartTriggerID = id
		return nil

	case models.StartModeExistingPost:
		// The mode may have been switched: the engine must not keep a
		// scheduled start post around.
		if cycle.StartTriggerID != "" {
			if err := s.scheduler.DeletePost(ctx, cycle.StartTriggerID); err != nil {
				return errs.Wrap(err, errs.ErrCodeSchedulerAPI, "Failed to delete stale start trigger post")
			}
			cycle.StartTriggerID = ""
		}
		if !contest.IsActive || contest.ExistingPostLink == "" {
			return nil
		}
		ownerID, postID, err := ParseWallPostLink(contest.ExistingPostLink)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidPostLink, "Existing post link is not a wall post link").
				WithDetail("link", contest.ExistingPostLink)
		}
		// The one path that activates a cycle without a publish callback:
		// the source post already exists, so the cycle starts now.
		if err := s.cycles.Activate(ctx, cycle.ID, ownerID, postID, now); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return errs.New(errs.ErrCodeCycleStateConflict, "Cycle was activated concurrently").
					WithDetail("cycle_id", cycle.ID)
			}
			return errs.NewDatabaseError("activate cycle", err)
		}
		cycle.Status = models.CycleStatusActive
		cycle.PlatformOwnerID = ownerID
		cycle.PlatformPostID = postID
		cycle.StartedAt = &now
		return nil

	default:
		return errs.New(errs.ErrCodeValidation, fmt.Sprintf("Unknown start mode: %s", contest.StartMode))
	}
}

// tentativelyScheduleEnd upserts the end trigger with the best finish time
// known at sync time. For duration-mode contests this stays tentative
// until OnStartPostPublished locks the real window.
func (s *SyncService) tentativelyScheduleEnd(ctx context.Context, contest *models.Contest, cycle *models.Cycle, now time.Time) error {
	status := TriggerStatusPending
	if !contest.IsActive {
		status = TriggerStatusPaused
	}
	id, err := s.scheduler.UpsertPost(ctx, TriggerPost{
		ID:        cycle.EndTriggerID,
		ProjectID: contest.ProjectID,
		ContestID: contest.ID,
		CycleID:   cycle.ID,
		Kind:      TriggerEnd,
		PublishAt: s.computeFinishTime(contest, cycle, now),
		Text:      contest.ResultPostTemplate,
		Status:    status,
	})
	if err != nil {
		return errs.Wrap(err, errs.ErrCodeSchedulerAPI, "Failed to upsert end trigger post")
	}
	cycle.EndTriggerID = id
	return nil
}

// lockEndTime recomputes the end trigger's publication time once the real
// start moment is known and flips the end post to ready-for-publication.
func (s *SyncService) lockEndTime(ctx context.Context, contest *models.Contest, cycle *models.Cycle, publishedAt time.Time) error {
	if contest.FinishMode != models.FinishModeDuration {
		if cycle.EndTriggerID == "" {
			return nil
		}
		if err := s.scheduler.SetPostStatus(ctx, cycle.EndTriggerID, TriggerStatusPending, ""); err != nil {
			return errs.Wrap(err, errs.ErrCodeSchedulerAPI, "Failed to ready end trigger post")
		}
		return nil
	}

	id, err := s.scheduler.UpsertPost(ctx, TriggerPost{
		ID:        cycle.EndTriggerID,
		ProjectID: contest.ProjectID,
		ContestID: contest.ID,
		CycleID:   cycle.ID,
		Kind:      TriggerEnd,
		PublishAt: s.finishTimeFrom(contest, publishedAt),
		Text:      contest.ResultPostTemplate,
		Status:    TriggerStatusPending,
	})
	if err != nil {
		return errs.Wrap(err, errs.ErrCodeSchedulerAPI, "Failed to lock end trigger time")
	}
	cycle.EndTriggerID = id
	if err := s.cycles.UpdateCycle(ctx, cycle); err != nil {
		return errs.NewDatabaseError("update cycle", err)
	}
	return nil
}

func (s *SyncService) computeFinishTime(contest *models.Contest, cycle *models.Cycle, now time.Time) time.Time {
	if contest.FinishMode == models.FinishModeDate && contest.FinishDate != nil {
		return *contest.FinishDate
	}
	base := contest.StartDate
	if cycle.StartedAt != nil {
		base = *cycle.StartedAt
	}
	if base.IsZero() {
		base = now
	}
	return s.finishTimeFrom(contest, base)
}

func (s *SyncService) finishTimeFrom(contest *models.Contest, base time.Time) time.Time {
	if contest.FinishMode == models.FinishModeDate && contest.FinishDate != nil {
		return *contest.FinishDate
	}
	window := s.finishWindow
	if contest.FinishDurationHours > 0 {
		window = time.Duration(contest.FinishDurationHours) * time.Hour
	}
	return base.Add(window)
}
