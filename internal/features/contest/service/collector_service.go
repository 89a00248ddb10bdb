package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/common/logger"
	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
	"contest-engine-backend/internal/platform/vk"
)

// CollectorService evaluates the contest's eligibility schema against the
// source post's reactions and rebuilds the cycle's entry set.
type CollectorService struct {
	contests repository.ContestRepository
	cycles   repository.CycleRepository
	entries  repository.EntryRepository
	social   SocialClient

	fetchLimit int
}

func NewCollectorService(contests repository.ContestRepository, cycles repository.CycleRepository, entries repository.EntryRepository, social SocialClient, fetchLimit int) *CollectorService {
	if fetchLimit <= 0 {
		fetchLimit = 1000
	}
	return &CollectorService{
		contests:   contests,
		cycles:     cycles,
		entries:    entries,
		social:     social,
		fetchLimit: fetchLimit,
	}
}

// CollectParticipants recomputes the candidate set for the contest's open
// cycle and replaces the stored entries with it. Re-running during the
// same cycle discards previously seen participants: collection is
// idempotent, not additive.
func (c *CollectorService) CollectParticipants(ctx context.Context, contestID string) (int, error) {
	contest, cycle, err := c.loadOpenCycle(ctx, contestID)
	if err != nil {
		return 0, err
	}
	return c.CollectForCycle(ctx, contest, cycle)
}

// ProcessNewParticipants runs a collect pass and reports how many of the
// resulting participants were absent from the previous run. The stored
// entry set is rebuilt exactly as CollectParticipants rebuilds it; only
// the reporting differs.
func (c *CollectorService) ProcessNewParticipants(ctx context.Context, contestID string) (total, added int, err error) {
	contest, cycle, err := c.loadOpenCycle(ctx, contestID)
	if err != nil {
		return 0, 0, err
	}

	previous, err := c.entries.ListByCycle(ctx, cycle.ID)
	if err != nil {
		return 0, 0, errs.NewDatabaseError("list entries", err)
	}
	seen := make(map[int64]struct{}, len(previous))
	for _, e := range previous {
		seen[e.UserID] = struct{}{}
	}

	total, err = c.CollectForCycle(ctx, contest, cycle)
	if err != nil {
		return 0, 0, err
	}

	current, err := c.entries.ListByCycle(ctx, cycle.ID)
	if err != nil {
		return total, 0, errs.NewDatabaseError("list entries", err)
	}
	for _, e := range current {
		if _, ok := seen[e.UserID]; !ok {
			added++
		}
	}

	logger.Info().
		Str("contest_id", contestID).
		Str("cycle_id", cycle.ID).
		Int("participants", total).
		Int("new", added).
		Msg("New participants processed")
	return total, added, nil
}

func (c *CollectorService) loadOpenCycle(ctx context.Context, contestID string) (*models.Contest, *models.Cycle, error) {
	contest, err := c.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, repository.ErrContestNotFound) {
			return nil, nil, errs.NewContestNotFoundError(contestID)
		}
		return nil, nil, errs.NewDatabaseError("get contest", err)
	}
	cycle, err := c.cycles.GetOpenByContest(ctx, contestID)
	if err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return nil, nil, errs.New(errs.ErrCodeCycleNotFound, "Contest has no open cycle").
				WithDetail("contest_id", contestID)
		}
		return nil, nil, errs.NewDatabaseError("get open cycle", err)
	}
	return contest, cycle, nil
}

// CollectForCycle runs collection for an already-loaded contest/cycle
// pair. A cycle without a published source post yields an empty result
// and a warning, never an error.
func (c *CollectorService) CollectForCycle(ctx context.Context, contest *models.Contest, cycle *models.Cycle) (int, error) {
	if cycle.PlatformPostID == 0 {
		logger.Warn().
			Str("contest_id", contest.ID).
			Str("cycle_id", cycle.ID).
			Msg("Collection skipped: cycle has no published source post")
		return 0, nil
	}

	candidates, err := c.evaluateSchema(ctx, contest.Schema, cycle.PlatformOwnerID, cycle.PlatformPostID)
	if err != nil {
		return 0, err
	}

	entries := make([]models.Entry, 0, len(candidates))
	now := time.Now()
	for _, cand := range candidates {
		cand.ID = uuid.New().String()
		cand.CycleID = cycle.ID
		cand.CreatedAt = now
		entries = append(entries, cand)
	}

	if err := c.entries.ReplaceForCycle(ctx, cycle.ID, entries); err != nil {
		return 0, errs.NewDatabaseError("replace entries", err)
	}
	if err := c.cycles.UpdateParticipantsCount(ctx, cycle.ID, len(entries)); err != nil {
		return 0, errs.NewDatabaseError("update participants count", err)
	}
	cycle.ParticipantsCount = len(entries)

	logger.Info().
		Str("contest_id", contest.ID).
		Str("cycle_id", cycle.ID).
		Int("participants", len(entries)).
		Msg("Participants collected")
	return len(entries), nil
}

// evaluateSchema computes OR(AND(...), AND(...), ...) over the reaction
// sets. The first group that admits a user determines its recorded
// validation data.
func (c *CollectorService) evaluateSchema(ctx context.Context, schema models.ConditionSchema, ownerID, postID int64) (map[int64]models.Entry, error) {
	fetched := make(map[vk.ReactionKind][]vk.Reactor, 3)
	fetch := func(kind vk.ReactionKind) ([]vk.Reactor, error) {
		if rs, ok := fetched[kind]; ok {
			return rs, nil
		}
		rs, err := c.social.FetchReactions(ctx, kind, ownerID, postID, c.fetchLimit)
		if err != nil {
			return nil, errs.NewExternalAPIError("fetch "+string(kind), err)
		}
		fetched[kind] = rs
		return rs, nil
	}

	candidates := make(map[int64]models.Entry)
	for gi, group := range schema {
		var groupSet map[int64]vk.Reactor
		satisfied := make([]string, 0, len(group.Conditions))

		for _, cond := range group.Conditions {
			set, err := c.conditionSet(ctx, cond, fetch)
			if err != nil {
				return nil, err
			}
			satisfied = append(satisfied, string(cond.Type))

			if groupSet == nil {
				groupSet = set
				continue
			}
			for id := range groupSet {
				if _, ok := set[id]; !ok {
					delete(groupSet, id)
				}
			}
			// Empty intersection short-circuits the rest of the group.
			if len(groupSet) == 0 {
				break
			}
		}

		for id, reactor := range groupSet {
			if _, seen := candidates[id]; seen {
				continue
			}
			candidates[id] = models.Entry{
				UserID:   id,
				Name:     reactor.Name,
				PhotoURL: reactor.PhotoURL,
				Validation: models.ValidationData{
					GroupIndex: gi,
					Conditions: satisfied,
				},
			}
		}
	}
	return candidates, nil
}

func (c *CollectorService) conditionSet(ctx context.Context, cond models.Condition, fetch func(vk.ReactionKind) ([]vk.Reactor, error)) (map[int64]vk.Reactor, error) {
	var kind vk.ReactionKind
	switch cond.Type {
	case models.ConditionLike:
		kind = vk.ReactionLikes
	case models.ConditionComment:
		kind = vk.ReactionComments
	case models.ConditionRepost:
		kind = vk.ReactionReposts
	default:
		return nil, errs.New(errs.ErrCodeValidation, "Unknown condition type: "+string(cond.Type))
	}

	reactors, err := fetch(kind)
	if err != nil {
		return nil, err
	}

	set := make(map[int64]vk.Reactor, len(reactors))
	for _, r := range reactors {
		if cond.Type == models.ConditionComment && cond.TextContains != nil &&
			!strings.Contains(r.Text, *cond.TextContains) {
			continue
		}
		// A user may comment several times: the first matching reaction
		// wins so the recorded profile stays stable between runs.
		if _, ok := set[r.UserID]; !ok {
			set[r.UserID] = r
		}
	}
	return set, nil
}
