package shifts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"shift_coordination_system/configs"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/polls"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrVoterResolutionFailed = errors.New("voter resolution failed")

type materializer struct {
	userRepository            repositories.UserRepository
	workShiftRepository       repositories.WorkShiftRepository
	materializationRepository repositories.MaterializationRepository
	config                    configs.Shifts
	logger                    *zap.SugaredLogger
}

func NewMaterializer(
	userRepository repositories.UserRepository,
	workShiftRepository repositories.WorkShiftRepository,
	materializationRepository repositories.MaterializationRepository,
	config configs.Shifts,
	logger *zap.SugaredLogger,
) polls.Materializer {
	return &materializer{
		userRepository:            userRepository,
		workShiftRepository:       workShiftRepository,
		materializationRepository: materializationRepository,
		config:                    config,
		logger:                    logger,
	}
}

// Materialize writes one shift record per affirmative voter. Failures are
// isolated per voter and returned together once the batch is done.
func (m *materializer) Materialize(ctx context.Context, event polls.ClosedEvent) error {
	poll := event.Poll
	if len(poll.Going) == 0 {
		m.logger.Infow("no employees going, skipping shift records", "chatID", poll.ChatID, "messageID", poll.MessageID)
		return nil
	}

	batch := &models.ShiftBatch{
		BatchID:       uuid.NewString(),
		ChatID:        poll.ChatID,
		MessageID:     poll.MessageID,
		PollStartedAt: poll.StartedAt.UTC(),
		VoterCount:    len(poll.Going),
	}

	claimed, err := m.materializationRepository.Claim(ctx, batch)
	if err != nil {
		m.logger.Warnw("failed to claim materialization batch, proceeding", "error", err, "batchID", batch.BatchID)
	} else if !claimed {
		m.logger.Infow("shift records already materialized", "chatID", poll.ChatID, "messageID", poll.MessageID)
		return nil
	}

	shiftValue := ShiftValue(len(poll.Going))
	shiftDate := ShiftDate(poll.StartedAt, event.DayOffset)
	comment := m.config.Comment
	if poll.Purpose == models.PollPurposeSync {
		comment = m.config.SyncComment
	}

	var (
		result  error
		created int
	)

	for _, voterID := range poll.Going {
		user, err := m.resolve(ctx, voterID)
		if err != nil {
			m.logger.Warnw("failed to resolve voter", "error", err, "voterID", voterID)
			result = multierr.Append(result, err)
			continue
		}

		_, err = m.workShiftRepository.Create(ctx, &models.WorkShift{
			TelegramID: user.TelegramID,
			Login:      user.Login,
			ChatID:     poll.ChatID,
			ShiftDate:  shiftDate,
			BaseRate:   m.config.BaseRate,
			Shift:      shiftValue,
			Comment:    comment,
			BatchID:    batch.BatchID,
		})
		if err != nil {
			m.logger.Errorw("failed to create work shift", "error", err, "voterID", voterID)
			result = multierr.Append(result, fmt.Errorf("failed to create work shift for %s: %w", voterID, err))
			continue
		}

		created++
	}

	m.logger.Infow("work shift records created",
		"chatID", poll.ChatID,
		"shiftDate", shiftDate.Format(time.DateOnly),
		"shift", shiftValue,
		"created", created,
		"voters", len(poll.Going),
		"batchID", batch.BatchID,
	)

	return result
}

func (m *materializer) resolve(ctx context.Context, voterID string) (*models.User, error) {
	user, err := m.userRepository.GetOneByLoginOrTelegramID(ctx, voterID)
	if err != nil && !repositories.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s: %w", ErrVoterResolutionFailed, voterID, err)
	}

	if err != nil || user == nil {
		return nil, fmt.Errorf("%w: %s not found", ErrVoterResolutionFailed, voterID)
	}

	return user, nil
}

// ShiftValue splits one shift between voters, rounded to one decimal.
func ShiftValue(voters int) float64 {
	if voters <= 0 {
		return 0
	}
	if voters == 1 {
		return 1
	}

	return math.Round(10/float64(voters)) / 10
}

// ShiftDate is the UTC midnight dayOffset days after the poll's start date.
func ShiftDate(startedAt time.Time, dayOffset int) time.Time {
	utc := startedAt.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day()+dayOffset, 0, 0, 0, 0, time.UTC)
}

// DayRange returns the UTC range [start, end) of the calendar day of t in loc.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
