package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
)

func fixedTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newPostContest(id string) *models.Contest {
	finish := fixedTime().Add(72 * time.Hour)
	return &models.Contest{
		ID:         id,
		ProjectID:  "project-1",
		Name:       "Spring giveaway",
		IsActive:   true,
		OwnerID:    -200100,
		StartMode:  models.StartModeNewPost,
		PostText:   "Like to win!",
		StartDate:  fixedTime().Add(time.Hour),
		Schema:     models.ConditionSchema{{Conditions: []models.Condition{{Type: models.ConditionLike}}}},
		FinishMode: models.FinishModeDate,
		FinishDate: &finish,

		WinnersCount:          3,
		ResultPostTemplate:    "Winners: {winners}",
		DirectMessageTemplate: "Your code: {code}",
		Status:                models.ContestStatusOK,
	}
}

func newSyncFixture(t *testing.T) (*SyncService, *fakeStore, *fakeScheduler) {
	t.Helper()
	store := newFakeStore()
	scheduler := newFakeScheduler()
	svc := NewSyncService(store, store, scheduler, newFakeLocker(), 0)
	svc.now = fixedTime
	return svc, store, scheduler
}

func TestParseWallPostLink(t *testing.T) {
	owner, post, err := ParseWallPostLink("https://vk.com/wall-200100_4577")
	require.NoError(t, err)
	assert.Equal(t, int64(-200100), owner)
	assert.Equal(t, int64(4577), post)

	owner, post, err = ParseWallPostLink("wall123_9")
	require.NoError(t, err)
	assert.Equal(t, int64(123), owner)
	assert.Equal(t, int64(9), post)

	_, _, err = ParseWallPostLink("https://vk.com/club200100")
	assert.ErrorIs(t, err, ErrInvalidPostLink)
}

func TestSyncSchedulesBothTriggerPosts(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	contest := newPostContest("contest-1")
	require.NoError(t, store.Create(context.Background(), contest))

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))

	cycle, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Equal(t, models.CycleStatusCreated, cycle.Status)
	require.NotEmpty(t, cycle.StartTriggerID)
	require.NotEmpty(t, cycle.EndTriggerID)

	start := scheduler.posts[cycle.StartTriggerID]
	assert.Equal(t, TriggerStart, start.Kind)
	assert.Equal(t, contest.StartDate, start.PublishAt)
	assert.Equal(t, contest.PostText, start.Text)
	assert.Equal(t, TriggerStatusPending, start.Status)

	end := scheduler.posts[cycle.EndTriggerID]
	assert.Equal(t, TriggerEnd, end.Kind)
	assert.Equal(t, *contest.FinishDate, end.PublishAt)
}

func TestSyncIsIdempotent(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	require.NoError(t, store.Create(context.Background(), newPostContest("contest-1")))

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))
	first, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))
	second, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.StartTriggerID, second.StartTriggerID)
	assert.Equal(t, first.EndTriggerID, second.EndTriggerID)
	assert.Len(t, scheduler.posts, 2)
}

func TestSyncInactiveContestPausesTriggers(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	contest := newPostContest("contest-1")
	contest.IsActive = false
	require.NoError(t, store.Create(context.Background(), contest))

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))

	cycle, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Equal(t, TriggerStatusPaused, scheduler.posts[cycle.StartTriggerID].Status)
	assert.Equal(t, TriggerStatusPaused, scheduler.posts[cycle.EndTriggerID].Status)
}

func TestSyncExistingPostActivatesImmediately(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	contest := newPostContest("contest-1")
	contest.StartMode = models.StartModeExistingPost
	contest.ExistingPostLink = "https://vk.com/wall-300200_42"
	require.NoError(t, store.Create(context.Background(), contest))

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))

	cycle, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Equal(t, models.CycleStatusActive, cycle.Status)
	assert.Equal(t, int64(-300200), cycle.PlatformOwnerID)
	assert.Equal(t, int64(42), cycle.PlatformPostID)
	require.NotNil(t, cycle.StartedAt)
	assert.Equal(t, fixedTime(), *cycle.StartedAt)

	// No start post is scheduled; only the end trigger exists.
	assert.Empty(t, cycle.StartTriggerID)
	assert.Len(t, scheduler.posts, 1)
}

func TestSyncModeSwitchDeletesStaleStartPost(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	contest := newPostContest("contest-1")
	require.NoError(t, store.Create(context.Background(), contest))
	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))

	before, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)
	staleID := before.StartTriggerID

	contest.StartMode = models.StartModeExistingPost
	contest.ExistingPostLink = "wall-300200_42"
	require.NoError(t, store.Update(context.Background(), contest))

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))

	assert.Contains(t, scheduler.deleted, staleID)
	after, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Empty(t, after.StartTriggerID)
	assert.Equal(t, models.CycleStatusActive, after.Status)
}

func TestSyncInvalidLinkDoesNotFlipContestStatus(t *testing.T) {
	svc, store, _ := newSyncFixture(t)
	contest := newPostContest("contest-1")
	contest.StartMode = models.StartModeExistingPost
	contest.ExistingPostLink = "https://vk.com/notapost"
	require.NoError(t, store.Create(context.Background(), contest))

	err := svc.SyncContestPosts(context.Background(), "contest-1")
	require.Error(t, err)
	appErr, ok := errs.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrCodeInvalidPostLink, appErr.Code)

	stored, err := store.GetByID(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Equal(t, models.ContestStatusOK, stored.Status)
}

func TestSyncSchedulerFailureFlipsContestStatus(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	require.NoError(t, store.Create(context.Background(), newPostContest("contest-1")))
	scheduler.upsertErr = assert.AnError

	err := svc.SyncContestPosts(context.Background(), "contest-1")
	require.Error(t, err)

	stored, err := store.GetByID(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Equal(t, models.ContestStatusError, stored.Status)
	assert.NotEmpty(t, stored.ErrorDetails)
}

func TestDurationEndTimeLockedAtPublish(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	contest := newPostContest("contest-1")
	contest.FinishMode = models.FinishModeDuration
	contest.FinishDate = nil
	contest.FinishDurationHours = 48
	require.NoError(t, store.Create(context.Background(), contest))

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))
	cycle, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)

	// Tentative end time counts from the configured start date.
	tentative := scheduler.posts[cycle.EndTriggerID].PublishAt
	assert.Equal(t, contest.StartDate.Add(48*time.Hour), tentative)

	// The post actually publishes 5 hours late; the end window must count
	// from the real publish moment.
	publishedAt := contest.StartDate.Add(5 * time.Hour)
	svc.now = func() time.Time { return publishedAt }

	require.NoError(t, svc.OnStartPostPublished(context.Background(), cycle.ID, 9001))

	updated, err := store.GetCycleByID(context.Background(), cycle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CycleStatusActive, updated.Status)
	assert.Equal(t, int64(9001), updated.PlatformPostID)
	assert.Equal(t, contest.OwnerID, updated.PlatformOwnerID)

	locked := scheduler.posts[updated.EndTriggerID].PublishAt
	assert.Equal(t, publishedAt.Add(48*time.Hour), locked)
}

func TestOnStartPostPublishedRejectsNonCreatedCycle(t *testing.T) {
	svc, store, _ := newSyncFixture(t)
	contest := newPostContest("contest-1")
	require.NoError(t, store.Create(context.Background(), contest))

	cycle := &models.Cycle{ID: "cycle-1", ContestID: "contest-1", Status: models.CycleStatusActive}
	require.NoError(t, store.CreateCycle(context.Background(), cycle))

	err := svc.OnStartPostPublished(context.Background(), "cycle-1", 77)
	require.Error(t, err)
	appErr, ok := errs.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrCodeCycleStateConflict, appErr.Code)
}

func TestSyncConcurrentRunIsRejected(t *testing.T) {
	svc, store, _ := newSyncFixture(t)
	require.NoError(t, store.Create(context.Background(), newPostContest("contest-1")))

	locker := svc.locker.(*fakeLocker)
	require.NoError(t, locker.Acquire(context.Background(), contestLockKeyPrefix+"contest-1", time.Minute))

	err := svc.SyncContestPosts(context.Background(), "contest-1")
	require.Error(t, err)
	appErr, ok := errs.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrCodeConflict, appErr.Code)

	// The losing run must not have created a cycle.
	_, err = store.GetOpenByContest(context.Background(), "contest-1")
	assert.ErrorIs(t, err, repository.ErrCycleNotFound)
}

func TestSyncReleasesLockAfterRun(t *testing.T) {
	svc, store, _ := newSyncFixture(t)
	require.NoError(t, store.Create(context.Background(), newPostContest("contest-1")))

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))

	locker := svc.locker.(*fakeLocker)
	assert.Empty(t, locker.held)
}

func TestSyncLostCycleCreateRaceAdoptsExistingCycle(t *testing.T) {
	svc, store, _ := newSyncFixture(t)
	require.NoError(t, store.Create(context.Background(), newPostContest("contest-1")))

	// Another instance slips its cycle in between the open-cycle lookup
	// and the insert: the insert bounces off the unique index and the run
	// must adopt the winner's cycle instead of duplicating it.
	store.createCycleHook = func(*models.Cycle) error {
		store.cycles["cycle-raced"] = &models.Cycle{
			ID:        "cycle-raced",
			ContestID: "contest-1",
			Status:    models.CycleStatusCreated,
		}
		return repository.ErrOpenCycleExists
	}

	require.NoError(t, svc.SyncContestPosts(context.Background(), "contest-1"))

	open := 0
	for _, c := range store.cycles {
		if c.ContestID == "contest-1" && c.Status.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 1, open)

	cycle, err := store.GetOpenByContest(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Equal(t, "cycle-raced", cycle.ID)
	assert.NotEmpty(t, cycle.StartTriggerID)
	assert.NotEmpty(t, cycle.EndTriggerID)
}

func TestScheduleCyclePostsRestartKeepsEndPaused(t *testing.T) {
	svc, store, scheduler := newSyncFixture(t)
	contest := newPostContest("contest-1")
	require.NoError(t, store.Create(context.Background(), contest))

	cycle := &models.Cycle{ID: "cycle-next", ContestID: "contest-1", Status: models.CycleStatusCreated}
	require.NoError(t, store.CreateCycle(context.Background(), cycle))

	startAt := fixedTime().Add(24 * time.Hour)
	require.NoError(t, svc.ScheduleCyclePosts(context.Background(), contest, cycle, startAt, true))

	assert.Equal(t, TriggerStatusPending, scheduler.posts[cycle.StartTriggerID].Status)
	assert.Equal(t, startAt, scheduler.posts[cycle.StartTriggerID].PublishAt)
	assert.Equal(t, TriggerStatusPaused, scheduler.posts[cycle.EndTriggerID].Status)
}
