package scheduling

import (
	"context"
	"errors"
	"log/slog"

	"github.com/clinicops/medagenda/services/scheduling-service/internal/model"
	"github.com/clinicops/medagenda/services/scheduling-service/internal/storage"
)

var (
	// ErrSlotTaken rejects a booking for an occupied (date, time) slot.
	ErrSlotTaken = errors.New("a slot is already booked at this date and time")
	// ErrNotFound means no appointment exists with the given id.
	ErrNotFound = errors.New("no appointment with this id")
)

// Store is the persistence contract the service needs. FindBySlot and Get
// report absence via an error recognized by storage.IsNotFound.
type Store interface {
	FindBySlot(ctx context.Context, date, clock string) (model.Appointment, error)
	Insert(ctx context.Context, appt *model.Appointment) (int64, error)
	Get(ctx context.Context, id int64) (model.Appointment, error)
	SetStatus(ctx context.Context, id int64, status string) error
	UpdateDetails(ctx context.Context, id int64, date, clock, patient, physician string) error
	List(ctx context.Context) ([]model.Appointment, error)
}

// Service owns the scheduling invariants: a (date, time) slot holds at most
// one appointment, and status only ever moves scheduled -> cancelled.
// Inputs are assumed well-formed; field validation happens in the handlers.
type Service struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create books a new appointment. The slot lookup considers every record
// regardless of status, so a cancelled appointment still blocks its slot.
func (s *Service) Create(ctx context.Context, date, clock, patient, physician string) (int64, error) {
	_, err := s.store.FindBySlot(ctx, date, clock)
	if err == nil {
		return 0, ErrSlotTaken
	}
	if !storage.IsNotFound(err) {
		return 0, err
	}

	appt := &model.Appointment{
		Date:      date,
		Time:      clock,
		Patient:   patient,
		Physician: physician,
		Status:    model.StatusScheduled,
	}
	id, err := s.store.Insert(ctx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			// Lost the race between lookup and insert; the store's
			// uniqueness constraint is the backstop.
			return 0, ErrSlotTaken
		}
		return 0, err
	}

	s.logger.Info("appointment booked", "id", id, "date", date, "time", clock)
	return id, nil
}

func (s *Service) List(ctx context.Context) ([]model.Appointment, error) {
	return s.store.List(ctx)
}

// Cancel marks an appointment cancelled. Cancelling an already-cancelled
// appointment succeeds and rewrites the same terminal status.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.store.SetStatus(ctx, id, model.StatusCancelled); err != nil {
		return err
	}
	s.logger.Info("appointment cancelled", "id", id)
	return nil
}

// Update overwrites date, time, patient and physician. Status is never
// touched here.
//
// TODO: run the slot-uniqueness check on the new (date, time) as well,
// excluding this id's current slot. Today an update can move an appointment
// onto an occupied slot; callers relying on the current behavior are covered
// by the handler tests, so the check needs a coordinated rollout.
func (s *Service) Update(ctx context.Context, id int64, date, clock, patient, physician string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.store.UpdateDetails(ctx, id, date, clock, patient, physician); err != nil {
		if storage.IsConflict(err) {
			// Only the Postgres store raises this: its unique index also
			// guards updates, which the check above does not.
			return ErrSlotTaken
		}
		return err
	}
	s.logger.Info("appointment updated", "id", id, "date", date, "time", clock)
	return nil
}
