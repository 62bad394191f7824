package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/sleep-alarm/internal/clock"
	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/logger"
	"github.com/oshokin/sleep-alarm/internal/service/engine"
)

// ScheduleStore is the part of the schedule store the panel needs.
type ScheduleStore interface {
	Schedule(ctx context.Context) (domain.Schedule, error)
	SetField(ctx context.Context, day *domain.Day, field, value string) error
}

// StatusSource reports the engine state.
type StatusSource interface {
	Status() engine.Status
}

// service backs the panel API with the running daemon.
type service struct {
	// queue receives remote presses.
	queue *input.Queue
	// engine reports its state.
	engine StatusSource
	// store holds the schedule.
	store ScheduleStore
	// clock is the daemon clock.
	clock clock.Clock
}

// newService creates the panel backend.
func newService(queue *input.Queue, status StatusSource, store ScheduleStore, c clock.Clock) *service {
	return &service{
		queue:  queue,
		engine: status,
		store:  store,
		clock:  c,
	}
}

// Press queues a remote button press.
func (s *service) Press(ctx context.Context, kind input.Kind, actor *domain.Actor) (bool, error) {
	accepted, err := s.queue.Push(kind)
	if err != nil {
		logger.WarnKV(ctx, "Remote press dropped", "button", kind.String(), "actor", actor.String(), "error", err)

		return false, fmt.Errorf("queue %s: %w", kind, err)
	}

	logger.InfoKV(ctx, "Remote press", "button", kind.String(), "actor", actor.String(), "accepted", accepted)

	return accepted, nil
}

// Status returns the engine snapshot.
func (s *service) Status(context.Context) engine.Status {
	return s.engine.Status()
}

// Schedule returns the whole schedule.
func (s *service) Schedule(ctx context.Context) (domain.Schedule, error) {
	return s.store.Schedule(ctx)
}

// SetField changes one setting on behalf of actor.
func (s *service) SetField(ctx context.Context, day *domain.Day, field, value string, actor *domain.Actor) error {
	if err := s.store.SetField(ctx, day, field, value); err != nil {
		logger.WarnKV(ctx, "Setting rejected", "field", field, "actor", actor.String(), "error", err)

		return err
	}

	target := "all days"
	if day != nil {
		target = day.FullName()
	}

	logger.InfoKV(ctx, "Setting changed", "field", field, "target", target, "actor", actor.String())

	return nil
}

// Now returns the daemon clock.
func (s *service) Now() time.Time {
	return s.clock.Now()
}
