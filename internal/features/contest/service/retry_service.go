package service

import (
	"context"
	"errors"
	"time"

	errs "contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/common/logger"
	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/repository"
)

// RetryService re-attempts failed prize notifications independent of the
// finalize flow. It re-sends the stored message text verbatim and never
// touches promo-code issuance state.
type RetryService struct {
	delivery repository.DeliveryLogRepository
	social   SocialClient

	now func() time.Time
}

func NewRetryService(delivery repository.DeliveryLogRepository, social SocialClient) *RetryService {
	return &RetryService{delivery: delivery, social: social, now: time.Now}
}

// Retry re-attempts a single delivery log entry.
func (s *RetryService) Retry(ctx context.Context, logID string) (*models.DeliveryLog, error) {
	entry, err := s.delivery.GetDeliveryLogByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryLogNotFound) {
			return nil, errs.NewNotFoundError("delivery log", logID)
		}
		return nil, errs.NewDatabaseError("get delivery log", err)
	}

	s.attempt(ctx, entry)
	return entry, nil
}

// RetryAll re-attempts every failed delivery of the contest. Attempts are
// independent: one failure does not stop the batch. Returns how many
// entries were delivered.
func (s *RetryService) RetryAll(ctx context.Context, contestID string) (int, error) {
	failed, err := s.delivery.ListFailedByContest(ctx, contestID)
	if err != nil {
		return 0, errs.NewDatabaseError("list failed deliveries", err)
	}

	sent := 0
	for i := range failed {
		s.attempt(ctx, &failed[i])
		if failed[i].Status == models.DeliveryStatusSent {
			sent++
		}
	}
	logger.Info().
		Str("contest_id", contestID).
		Int("attempted", len(failed)).
		Int("sent", sent).
		Msg("Delivery retry batch finished")
	return sent, nil
}

func (s *RetryService) attempt(ctx context.Context, entry *models.DeliveryLog) {
	attemptedAt := s.now()

	status := models.DeliveryStatusSent
	details := ""
	if err := s.social.SendDirectMessage(ctx, entry.UserID, entry.MessageText); err != nil {
		status = models.DeliveryStatusError
		details = err.Error()
		logger.Warn().Err(err).
			Str("delivery_id", entry.ID).
			Int64("user_id", entry.UserID).
			Msg("Delivery retry failed")
	}

	entry.Status = status
	entry.ErrorDetails = details
	entry.AttemptedAt = &attemptedAt
	if err := s.delivery.UpdateDeliveryStatus(ctx, entry.ID, status, details, attemptedAt); err != nil {
		logger.Error().Err(err).Str("delivery_id", entry.ID).Msg("Failed to update delivery status")
	}
}
