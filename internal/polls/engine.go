package polls

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/services"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type CloseReason string

const (
	CloseReasonQuorum  CloseReason = "quorum"
	CloseReasonManual  CloseReason = "manual"
	CloseReasonTimeout CloseReason = "timeout"
)

type QuorumOutcome string

const (
	QuorumStaysOpen QuorumOutcome = "stays_open"
	QuorumRefused   QuorumOutcome = "refused"
	QuorumClosed    QuorumOutcome = "closed"
)

// ClosedEvent carries the final tally of a poll that has just been closed.
type ClosedEvent struct {
	Poll      Poll
	Reason    CloseReason
	DayOffset int
}

type Materializer interface {
	Materialize(ctx context.Context, event ClosedEvent) error
}

type Engine interface {
	Create(ctx context.Context, chatID int64, purpose models.PollPurpose, source models.PollSource) (Poll, error)
	Vote(ctx context.Context, key Key, voterID string, choice Choice) (Poll, error)
	CheckQuorum(ctx context.Context, key Key, totalEligibleVoters int) (QuorumOutcome, error)
	// ForceClose returns the poll snapshot along with ErrPollClosed or
	// ErrQuorumRefused when nothing was closed.
	ForceClose(ctx context.Context, key Key) (Poll, error)
	// Restore loads the latest non-closed stored row of key into the registry.
	Restore(ctx context.Context, key Key) (Poll, error)
	// Adopt installs a poll rebuilt from storage: no deadline leaves it
	// untimed, a past deadline runs the timeout transition before returning.
	Adopt(ctx context.Context, poll *Poll) (Poll, error)
	Get(key Key) (Poll, bool)
	Delete(ctx context.Context, key Key) error
	DeleteChat(ctx context.Context, chatID int64) error
	Resync(ctx context.Context) error
	RunResync(ctx context.Context, interval time.Duration) error
	Degraded() bool
	Stop()
}

type entry struct {
	mu      sync.Mutex
	poll    *Poll
	timer   clock.Timer
	seq     uint64
	retired bool
	dirty   bool
}

// supersede is a store cleanup that has not reached the store yet.
type supersede struct {
	before        time.Time
	keepMessageID int
}

type engine struct {
	repository   repositories.PollRepository
	messenger    services.MessagingService
	materializer Materializer
	policies     Policies
	clock        clock.Clock
	logger       *zap.SugaredLogger

	mu         sync.Mutex
	entries    map[Key]*entry
	superseded map[Key]supersede
	degraded   atomic.Bool
}

func NewEngine(
	repository repositories.PollRepository,
	messenger services.MessagingService,
	materializer Materializer,
	policies Policies,
	clk clock.Clock,
	logger *zap.SugaredLogger,
) Engine {
	return &engine{
		repository:   repository,
		messenger:    messenger,
		materializer: materializer,
		policies:     policies,
		clock:        clk,
		logger:       logger,
		entries:      make(map[Key]*entry),
		superseded:   make(map[Key]supersede),
	}
}

func (e *engine) Create(ctx context.Context, chatID int64, purpose models.PollPurpose, source models.PollSource) (Poll, error) {
	policy, ok := e.policies[purpose]
	if !ok {
		return Poll{}, fmt.Errorf("%w: %s", ErrUnknownPurpose, purpose)
	}

	poll := &Poll{
		ChatID:    chatID,
		Purpose:   purpose,
		Going:     []string{},
		NotGoing:  []string{},
		Source:    source,
		StartedAt: e.clock.Now(),
	}

	messageID, err := e.messenger.SendMessage(ctx, chatID, openText(poll, policy), openKeyboard(poll))
	if err != nil {
		e.logger.Errorw("failed to send poll announcement", "error", err, "chatID", chatID, "purpose", purpose)
		return Poll{}, fmt.Errorf("%w: %w", ErrMessagingFailed, err)
	}
	poll.MessageID = messageID

	fresh := &entry{poll: poll}
	fresh.mu.Lock()
	defer fresh.mu.Unlock()

	e.mu.Lock()
	previous := e.entries[poll.Key()]
	e.entries[poll.Key()] = fresh
	e.mu.Unlock()

	if previous != nil {
		e.retire(previous)
	}

	e.deleteSuperseded(ctx, poll.Key(), supersede{before: poll.StartedAt, keepMessageID: messageID})

	e.arm(fresh, policy.InitialDeadline)
	e.save(ctx, fresh)

	e.logger.Infow("poll created", "chatID", chatID, "messageID", messageID, "purpose", purpose, "source", source)
	return poll.Clone(), nil
}

func (e *engine) Vote(ctx context.Context, key Key, voterID string, choice Choice) (Poll, error) {
	ent, err := e.lock(key)
	if err != nil {
		return Poll{}, err
	}
	defer ent.mu.Unlock()

	if ent.poll.Closed {
		return ent.poll.Clone(), ErrPollClosed
	}

	if ent.poll.Vote(voterID, choice) {
		e.save(ctx, ent)
		e.edit(ctx, ent.poll, openText(ent.poll, e.policies[key.Purpose]), openKeyboard(ent.poll))
	}

	return ent.poll.Clone(), nil
}

func (e *engine) CheckQuorum(ctx context.Context, key Key, totalEligibleVoters int) (QuorumOutcome, error) {
	ent, err := e.lock(key)
	if err != nil {
		return QuorumStaysOpen, err
	}
	defer ent.mu.Unlock()

	if ent.poll.Closed {
		return QuorumStaysOpen, ErrPollClosed
	}

	if totalEligibleVoters <= 0 || ent.poll.Voted() < totalEligibleVoters {
		return QuorumStaysOpen, nil
	}

	if len(ent.poll.Going) == 0 {
		return QuorumRefused, nil
	}

	e.close(ctx, ent, CloseReasonQuorum)
	return QuorumClosed, nil
}

func (e *engine) ForceClose(ctx context.Context, key Key) (Poll, error) {
	ent, err := e.lock(key)
	if err != nil {
		return Poll{}, err
	}
	defer ent.mu.Unlock()

	if ent.poll.Closed {
		return ent.poll.Clone(), ErrPollClosed
	}

	if len(ent.poll.Going) == 0 {
		return ent.poll.Clone(), ErrQuorumRefused
	}

	e.close(ctx, ent, CloseReasonManual)
	return ent.poll.Clone(), nil
}

func (e *engine) Restore(ctx context.Context, key Key) (Poll, error) {
	if poll, ok := e.Get(key); ok {
		return poll, nil
	}

	row, err := e.repository.GetActive(ctx, key.ChatID, key.Purpose)
	if err != nil {
		if repositories.IsNotFound(err) {
			return Poll{}, ErrPollNotFound
		}
		e.logger.Errorw("failed to load poll", "error", err, "key", key.String())
		return Poll{}, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	return e.Adopt(ctx, FromModel(row))
}

func (e *engine) Adopt(ctx context.Context, poll *Poll) (Poll, error) {
	if _, ok := e.policies[poll.Purpose]; !ok {
		return Poll{}, fmt.Errorf("%w: %s", ErrUnknownPurpose, poll.Purpose)
	}

	key := poll.Key()

	for {
		e.mu.Lock()
		previous := e.entries[key]
		if previous == nil {
			fresh := &entry{poll: poll}
			fresh.mu.Lock()
			e.entries[key] = fresh
			e.mu.Unlock()

			e.activate(ctx, fresh)
			snapshot := fresh.poll.Clone()
			fresh.mu.Unlock()
			return snapshot, nil
		}
		e.mu.Unlock()

		previous.mu.Lock()
		if previous.retired {
			previous.mu.Unlock()
			continue
		}

		if previous.poll.MessageID == poll.MessageID || previous.poll.StartedAt.After(poll.StartedAt) {
			snapshot := previous.poll.Clone()
			previous.mu.Unlock()
			return snapshot, nil
		}

		e.mu.Lock()
		if e.entries[key] != previous {
			e.mu.Unlock()
			previous.mu.Unlock()
			continue
		}
		fresh := &entry{poll: poll}
		fresh.mu.Lock()
		e.entries[key] = fresh
		e.mu.Unlock()

		previous.retired = true
		e.stopTimer(previous)
		previous.mu.Unlock()

		e.activate(ctx, fresh)
		snapshot := fresh.poll.Clone()
		fresh.mu.Unlock()
		return snapshot, nil
	}
}

func (e *engine) Get(key Key) (Poll, bool) {
	e.mu.Lock()
	ent := e.entries[key]
	e.mu.Unlock()

	if ent == nil {
		return Poll{}, false
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	if ent.retired {
		return Poll{}, false
	}
	return ent.poll.Clone(), true
}

func (e *engine) Delete(ctx context.Context, key Key) error {
	ent, err := e.lock(key)
	if err == nil {
		e.mu.Lock()
		if e.entries[key] == ent {
			delete(e.entries, key)
		}
		e.mu.Unlock()

		ent.retired = true
		e.stopTimer(ent)
		ent.mu.Unlock()
	}

	return e.deleteSuperseded(ctx, key, supersede{before: e.clock.Now()})
}

// deleteSuperseded removes stored rows replaced by a newer poll or by a
// deletion. A failed attempt stays pending until Resync gets it through.
func (e *engine) deleteSuperseded(ctx context.Context, key Key, s supersede) error {
	err := e.repository.DeleteActive(ctx, key.ChatID, key.Purpose, s.before, s.keepMessageID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		if pending, ok := e.superseded[key]; !ok || !pending.before.After(s.before) {
			e.superseded[key] = s
		}
		e.degraded.Store(true)
		e.logger.Errorw("failed to delete superseded polls", "error", err, "key", key.String())
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	if pending, ok := e.superseded[key]; ok && !pending.before.After(s.before) {
		delete(e.superseded, key)
	}
	return nil
}

func (e *engine) DeleteChat(ctx context.Context, chatID int64) error {
	var result error
	for purpose := range e.policies {
		result = multierr.Append(result, e.Delete(ctx, Key{ChatID: chatID, Purpose: purpose}))
	}

	e.logger.Infow("polls cleaned up for chat", "chatID", chatID)
	return result
}

// Resync retries pending deletions of superseded rows, then re-saves every
// entry whose last store write failed.
func (e *engine) Resync(ctx context.Context) error {
	e.mu.Lock()
	entries := make([]*entry, 0, len(e.entries))
	for _, ent := range e.entries {
		entries = append(entries, ent)
	}
	pending := make(map[Key]supersede, len(e.superseded))
	for key, s := range e.superseded {
		pending[key] = s
	}
	e.mu.Unlock()

	var result error
	clean := true

	for key, s := range pending {
		if err := e.deleteSuperseded(ctx, key, s); err != nil {
			result = multierr.Append(result, err)
			clean = false
		}
	}

	for _, ent := range entries {
		ent.mu.Lock()
		if !ent.retired && ent.dirty {
			if err := e.save(ctx, ent); err != nil {
				result = multierr.Append(result, err)
				clean = false
			}
		}
		ent.mu.Unlock()
	}

	e.mu.Lock()
	clean = clean && len(e.superseded) == 0
	e.mu.Unlock()

	if clean && e.degraded.CompareAndSwap(true, false) {
		e.logger.Info("poll store recovered")
	}

	return result
}

func (e *engine) RunResync(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !e.Degraded() {
				continue
			}
			if err := e.Resync(ctx); err != nil {
				e.logger.Warnw("poll store still degraded", "error", err)
			}
		}
	}
}

func (e *engine) Degraded() bool {
	return e.degraded.Load()
}

// Stop cancels every pending timer. Stored rows keep their deadlines so the
// next process picks them up.
func (e *engine) Stop() {
	e.mu.Lock()
	entries := make([]*entry, 0, len(e.entries))
	for _, ent := range e.entries {
		entries = append(entries, ent)
	}
	e.mu.Unlock()

	for _, ent := range entries {
		ent.mu.Lock()
		e.stopTimer(ent)
		ent.mu.Unlock()
	}
}

// lock returns the live entry of key with its mutex held.
func (e *engine) lock(key Key) (*entry, error) {
	for {
		e.mu.Lock()
		ent := e.entries[key]
		e.mu.Unlock()

		if ent == nil {
			return nil, ErrPollNotFound
		}

		ent.mu.Lock()
		if !ent.retired {
			return ent, nil
		}
		ent.mu.Unlock()
	}
}

func (e *engine) retire(ent *entry) {
	ent.mu.Lock()
	defer ent.mu.Unlock()

	ent.retired = true
	e.stopTimer(ent)
}

func (e *engine) activate(ctx context.Context, ent *entry) {
	poll := ent.poll
	if poll.Closed || poll.ExpiresAt == nil {
		return
	}

	remaining := poll.ExpiresAt.Sub(e.clock.Now())
	if remaining <= 0 {
		e.logger.Infow("poll expired while offline", "key", poll.Key().String(), "messageID", poll.MessageID)
		e.onTimeout(ctx, ent)
		return
	}

	e.arm(ent, remaining)
}

func (e *engine) arm(ent *entry, d time.Duration) {
	e.stopTimer(ent)

	expiresAt := e.clock.Now().Add(d)
	ent.poll.ExpiresAt = &expiresAt

	seq := ent.seq
	ent.timer = e.clock.AfterFunc(d, func() {
		e.fire(ent, seq)
	})
}

// stopTimer also invalidates callbacks already waiting for the entry lock.
func (e *engine) stopTimer(ent *entry) {
	if ent.timer != nil {
		ent.timer.Stop()
		ent.timer = nil
	}
	ent.seq++
}

func (e *engine) fire(ent *entry, seq uint64) {
	ent.mu.Lock()
	defer ent.mu.Unlock()

	if ent.retired || ent.seq != seq {
		return
	}
	ent.timer = nil

	e.onTimeout(context.Background(), ent)
}

func (e *engine) onTimeout(ctx context.Context, ent *entry) {
	poll := ent.poll
	if poll.Closed {
		return
	}

	if len(poll.Going) > 0 {
		e.close(ctx, ent, CloseReasonTimeout)
		return
	}

	policy := e.policies[poll.Purpose]

	if poll.ExtensionCount < policy.MaxExtensions {
		poll.ExtensionCount++
		e.arm(ent, policy.ExtensionDeadline)
		e.save(ctx, ent)
		e.notify(ctx, poll.ChatID, extendedNotice(poll, policy))

		e.logger.Infow("poll extended", "key", poll.Key().String(), "extensionCount", poll.ExtensionCount)
		return
	}

	e.stopTimer(ent)
	poll.ExpiresAt = nil
	e.save(ctx, ent)
	e.notify(ctx, poll.ChatID, exhaustedNotice(poll))

	e.logger.Infow("poll left open without deadline", "key", poll.Key().String(), "extensionCount", poll.ExtensionCount)
}

func (e *engine) close(ctx context.Context, ent *entry, reason CloseReason) {
	poll := ent.poll
	if poll.Closed {
		return
	}

	e.stopTimer(ent)
	poll.Closed = true
	poll.ExpiresAt = nil

	e.save(ctx, ent)
	e.edit(ctx, poll, closedText(poll, reason), [][]services.Button{})

	e.logger.Infow("poll closed", "key", poll.Key().String(), "messageID", poll.MessageID, "reason", reason, "going", len(poll.Going))

	if len(poll.Going) == 0 || e.materializer == nil {
		return
	}

	event := ClosedEvent{
		Poll:      poll.Clone(),
		Reason:    reason,
		DayOffset: e.policies[poll.Purpose].DayOffset,
	}
	if err := e.materializer.Materialize(ctx, event); err != nil {
		e.logger.Errorw("failed to materialize shifts", "error", err, "key", poll.Key().String())
	}
}

func (e *engine) save(ctx context.Context, ent *entry) error {
	if err := e.repository.Upsert(ctx, toModel(ent.poll)); err != nil {
		ent.dirty = true
		e.degraded.Store(true)
		e.logger.Errorw("failed to persist poll", "error", err, "key", ent.poll.Key().String())
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	ent.dirty = false
	return nil
}

func (e *engine) edit(ctx context.Context, poll *Poll, text string, keyboard [][]services.Button) {
	if err := e.messenger.EditMessage(ctx, poll.ChatID, poll.MessageID, text, keyboard); err != nil {
		e.logger.Warnw("failed to edit poll message", "error", fmt.Errorf("%w: %w", ErrMessagingFailed, err), "chatID", poll.ChatID)
	}
}

func (e *engine) notify(ctx context.Context, chatID int64, text string) {
	if _, err := e.messenger.SendMessage(ctx, chatID, text, nil); err != nil {
		e.logger.Warnw("failed to notify chat", "error", fmt.Errorf("%w: %w", ErrMessagingFailed, err), "chatID", chatID)
	}
}
