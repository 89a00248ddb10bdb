package service

import (
	"context"
	"fmt"
	"time"

	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
	"contest-engine-backend/internal/platform/vk"
)

// fakeStore is an in-memory repository.Store for service tests.
type fakeStore struct {
	contests   map[string]*models.Contest
	cycles     map[string]*models.Cycle
	entries    map[string][]models.Entry
	promoCodes []*models.PromoCode
	blacklist  map[string]*models.BlacklistEntry
	deliveries []*models.DeliveryLog

	// createCycleHook runs before the insert; a non-nil return aborts it.
	createCycleHook func(*models.Cycle) error
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		contests:  make(map[string]*models.Contest),
		cycles:    make(map[string]*models.Cycle),
		entries:   make(map[string][]models.Entry),
		blacklist: make(map[string]*models.BlacklistEntry),
	}
}

func (s *fakeStore) Create(_ context.Context, contest *models.Contest) error {
	c := *contest
	s.contests[c.ID] = &c
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Contest, error) {
	c, ok := s.contests[id]
	if !ok {
		return nil, repository.ErrContestNotFound
	}
	out := *c
	return &out, nil
}

func (s *fakeStore) Update(_ context.Context, contest *models.Contest) error {
	if _, ok := s.contests[contest.ID]; !ok {
		return repository.ErrContestNotFound
	}
	c := *contest
	s.contests[c.ID] = &c
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.contests[id]; !ok {
		return repository.ErrContestNotFound
	}
	delete(s.contests, id)
	return nil
}

func (s *fakeStore) List(_ context.Context, projectID string) ([]models.Contest, error) {
	var out []models.Contest
	for _, c := range s.contests {
		if projectID == "" || c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) SetStatus(_ context.Context, id string, status models.ContestStatus, details string) error {
	c, ok := s.contests[id]
	if !ok {
		return repository.ErrContestNotFound
	}
	c.Status = status
	c.ErrorDetails = details
	return nil
}

func (s *fakeStore) CreateCycle(_ context.Context, cycle *models.Cycle) error {
	if s.createCycleHook != nil {
		if err := s.createCycleHook(cycle); err != nil {
			return err
		}
	}
	// Mirrors the partial unique index on open cycles.
	if cycle.Status.IsOpen() {
		for _, c := range s.cycles {
			if c.ContestID == cycle.ContestID && c.Status.IsOpen() {
				return repository.ErrOpenCycleExists
			}
		}
	}
	c := *cycle
	s.cycles[c.ID] = &c
	return nil
}

func (s *fakeStore) GetCycleByID(_ context.Context, id string) (*models.Cycle, error) {
	c, ok := s.cycles[id]
	if !ok {
		return nil, repository.ErrCycleNotFound
	}
	out := *c
	return &out, nil
}

func (s *fakeStore) GetOpenByContest(_ context.Context, contestID string) (*models.Cycle, error) {
	for _, c := range s.cycles {
		if c.ContestID == contestID && c.Status.IsOpen() {
			out := *c
			return &out, nil
		}
	}
	return nil, repository.ErrCycleNotFound
}

func (s *fakeStore) ListCyclesByContest(_ context.Context, contestID string) ([]models.Cycle, error) {
	var out []models.Cycle
	for _, c := range s.cycles {
		if c.ContestID == contestID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateCycle(_ context.Context, cycle *models.Cycle) error {
	if _, ok := s.cycles[cycle.ID]; !ok {
		return repository.ErrCycleNotFound
	}
	c := *cycle
	s.cycles[c.ID] = &c
	return nil
}

func (s *fakeStore) TransitionStatus(_ context.Context, id string, from, to models.CycleStatus) error {
	c, ok := s.cycles[id]
	if !ok {
		return repository.ErrCycleNotFound
	}
	if c.Status != from {
		return repository.ErrStateConflict
	}
	c.Status = to
	return nil
}

func (s *fakeStore) Activate(_ context.Context, id string, ownerID, platformPostID int64, startedAt time.Time) error {
	c, ok := s.cycles[id]
	if !ok {
		return repository.ErrCycleNotFound
	}
	if c.Status != models.CycleStatusCreated {
		return repository.ErrStateConflict
	}
	c.Status = models.CycleStatusActive
	c.PlatformOwnerID = ownerID
	c.PlatformPostID = platformPostID
	at := startedAt
	c.StartedAt = &at
	return nil
}

func (s *fakeStore) Finish(_ context.Context, id string, from models.CycleStatus, winners models.WinnersSnapshot, finishedAt time.Time) error {
	c, ok := s.cycles[id]
	if !ok {
		return repository.ErrCycleNotFound
	}
	if c.Status != from {
		return repository.ErrStateConflict
	}
	c.Status = models.CycleStatusFinished
	c.Winners = winners
	at := finishedAt
	c.FinishedAt = &at
	return nil
}

func (s *fakeStore) UpdateParticipantsCount(_ context.Context, id string, count int) error {
	c, ok := s.cycles[id]
	if !ok {
		return repository.ErrCycleNotFound
	}
	c.ParticipantsCount = count
	return nil
}

func (s *fakeStore) ReplaceForCycle(_ context.Context, cycleID string, entries []models.Entry) error {
	s.entries[cycleID] = append([]models.Entry(nil), entries...)
	return nil
}

func (s *fakeStore) ListByCycle(_ context.Context, cycleID string) ([]models.Entry, error) {
	return append([]models.Entry(nil), s.entries[cycleID]...), nil
}

func (s *fakeStore) DeleteByCycle(_ context.Context, cycleID string) error {
	delete(s.entries, cycleID)
	return nil
}

func (s *fakeStore) CreatePromoCode(_ context.Context, code *models.PromoCode) error {
	c := *code
	s.promoCodes = append(s.promoCodes, &c)
	return nil
}

func (s *fakeStore) CreatePromoCodeBatch(_ context.Context, codes []models.PromoCode) error {
	for i := range codes {
		c := codes[i]
		s.promoCodes = append(s.promoCodes, &c)
	}
	return nil
}

func (s *fakeStore) GetPromoCodeByID(_ context.Context, id string) (*models.PromoCode, error) {
	for _, c := range s.promoCodes {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, repository.ErrPromoCodeNotFound
}

func (s *fakeStore) UpdateDescription(_ context.Context, id, description string) error {
	for _, c := range s.promoCodes {
		if c.ID == id {
			c.Description = description
			return nil
		}
	}
	return repository.ErrPromoCodeNotFound
}

func (s *fakeStore) DeletePromoCode(_ context.Context, id string) error {
	for i, c := range s.promoCodes {
		if c.ID == id {
			if c.IsIssued {
				return repository.ErrCodeAlreadyIssued
			}
			s.promoCodes = append(s.promoCodes[:i], s.promoCodes[i+1:]...)
			return nil
		}
	}
	return repository.ErrPromoCodeNotFound
}

func (s *fakeStore) ListPromoCodesByContest(_ context.Context, contestID string) ([]models.PromoCode, error) {
	var out []models.PromoCode
	for _, c := range s.promoCodes {
		if c.ContestID == contestID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) CountUnissued(_ context.Context, contestID string) (int64, error) {
	var n int64
	for _, c := range s.promoCodes {
		if c.ContestID == contestID && !c.IsIssued {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) ClaimUnissued(_ context.Context, contestID, cycleID string, winnerID int64, winnerName string, issuedAt time.Time) (*models.PromoCode, error) {
	for _, c := range s.promoCodes {
		if c.ContestID != contestID || c.IsIssued {
			continue
		}
		c.IsIssued = true
		at := issuedAt
		c.IssuedAt = &at
		c.WinnerUserID = winnerID
		c.WinnerName = winnerName
		cid := cycleID
		c.CycleID = &cid
		out := *c
		return &out, nil
	}
	return nil, repository.ErrNoUnissuedCodes
}

func (s *fakeStore) CreateBlacklistEntry(_ context.Context, entry *models.BlacklistEntry) error {
	e := *entry
	s.blacklist[e.ID] = &e
	return nil
}

func (s *fakeStore) DeleteBlacklistEntry(_ context.Context, id string) error {
	if _, ok := s.blacklist[id]; !ok {
		return repository.ErrBlacklistNotFound
	}
	delete(s.blacklist, id)
	return nil
}

func (s *fakeStore) ListBlacklistByProject(_ context.Context, projectID string) ([]models.BlacklistEntry, error) {
	var out []models.BlacklistEntry
	for _, e := range s.blacklist {
		if e.ProjectID == projectID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeStore) PurgeExpired(_ context.Context, projectID string, before time.Time) error {
	for id, e := range s.blacklist {
		if e.ProjectID == projectID && e.ExpiresAt != nil && e.ExpiresAt.Before(before) {
			delete(s.blacklist, id)
		}
	}
	return nil
}

func (s *fakeStore) CreateDeliveryLog(_ context.Context, entry *models.DeliveryLog) error {
	e := *entry
	s.deliveries = append(s.deliveries, &e)
	return nil
}

func (s *fakeStore) GetDeliveryLogByID(_ context.Context, id string) (*models.DeliveryLog, error) {
	for _, e := range s.deliveries {
		if e.ID == id {
			out := *e
			return &out, nil
		}
	}
	return nil, repository.ErrDeliveryLogNotFound
}

func (s *fakeStore) ListDeliveryLogsByContest(_ context.Context, contestID string) ([]models.DeliveryLog, error) {
	var out []models.DeliveryLog
	for _, e := range s.deliveries {
		if e.ContestID == contestID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeStore) ListFailedByContest(_ context.Context, contestID string) ([]models.DeliveryLog, error) {
	var out []models.DeliveryLog
	for _, e := range s.deliveries {
		if e.ContestID == contestID && e.Status == models.DeliveryStatusError {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateDeliveryStatus(_ context.Context, id string, status models.DeliveryStatus, errorDetails string, attemptedAt time.Time) error {
	for _, e := range s.deliveries {
		if e.ID == id {
			e.Status = status
			e.ErrorDetails = errorDetails
			at := attemptedAt
			e.AttemptedAt = &at
			return nil
		}
	}
	return repository.ErrDeliveryLogNotFound
}

func (s *fakeStore) SetResultsLink(_ context.Context, cycleID, link string) error {
	for _, e := range s.deliveries {
		if e.CycleID == cycleID {
			e.ResultsPostLink = link
		}
	}
	return nil
}

func (s *fakeStore) DeleteDeliveryLogsByContest(_ context.Context, contestID string) error {
	kept := s.deliveries[:0]
	for _, e := range s.deliveries {
		if e.ContestID != contestID {
			kept = append(kept, e)
		}
	}
	s.deliveries = kept
	return nil
}

// fakeScheduler records trigger post upserts and supports failure
// injection per method.
type fakeScheduler struct {
	posts  map[string]TriggerPost
	nextID int

	upsertErr    error
	deleteErr    error
	setStatusErr error

	deleted     []string
	statusCalls []statusCall
}

type statusCall struct {
	id      string
	status  TriggerStatus
	details string
}

var _ PostScheduler = (*fakeScheduler)(nil)

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{posts: make(map[string]TriggerPost)}
}

func (f *fakeScheduler) UpsertPost(_ context.Context, post TriggerPost) (string, error) {
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	if post.ID == "" {
		f.nextID++
		post.ID = fmt.Sprintf("trigger-%d", f.nextID)
	}
	f.posts[post.ID] = post
	return post.ID, nil
}

func (f *fakeScheduler) DeletePost(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.posts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeScheduler) SetPostStatus(_ context.Context, id string, status TriggerStatus, details string) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	if p, ok := f.posts[id]; ok {
		p.Status = status
		f.posts[id] = p
	}
	f.statusCalls = append(f.statusCalls, statusCall{id: id, status: status, details: details})
	return nil
}

// fakeSocial serves canned reaction sets and records outgoing calls.
type fakeSocial struct {
	reactions map[vk.ReactionKind][]vk.Reactor
	fetchErr  error

	publishErr    error
	nextPostID    int64
	publishedText []string

	dmErrFor map[int64]error
	sentDMs  map[int64][]string

	commentErr error
	comments   []string
}

var _ SocialClient = (*fakeSocial)(nil)

func newFakeSocial() *fakeSocial {
	return &fakeSocial{
		reactions: make(map[vk.ReactionKind][]vk.Reactor),
		dmErrFor:  make(map[int64]error),
		sentDMs:   make(map[int64][]string),
	}
}

func (f *fakeSocial) FetchReactions(_ context.Context, kind vk.ReactionKind, _, _ int64, _ int) ([]vk.Reactor, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.reactions[kind], nil
}

func (f *fakeSocial) PublishPost(_ context.Context, _ int64, message string) (int64, error) {
	if f.publishErr != nil {
		return 0, f.publishErr
	}
	f.nextPostID++
	f.publishedText = append(f.publishedText, message)
	return f.nextPostID, nil
}

func (f *fakeSocial) SendDirectMessage(_ context.Context, userID int64, message string) error {
	if err := f.dmErrFor[userID]; err != nil {
		return err
	}
	f.sentDMs[userID] = append(f.sentDMs[userID], message)
	return nil
}

func (f *fakeSocial) CreateComment(_ context.Context, _, _ int64, message string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, message)
	return nil
}

// fakeLocker tracks held keys in memory.
type fakeLocker struct {
	held       map[string]bool
	acquireErr error
}

var _ Locker = (*fakeLocker)(nil)

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (f *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) error {
	if f.acquireErr != nil {
		return f.acquireErr
	}
	if f.held[key] {
		return ErrAlreadyLocked
	}
	f.held[key] = true
	return nil
}

func (f *fakeLocker) Release(_ context.Context, key string) error {
	delete(f.held, key)
	return nil
}
