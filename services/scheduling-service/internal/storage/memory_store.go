package storage

import (
	"context"
	"sync"
	"time"

	"github.com/clinicops/medagenda/services/scheduling-service/internal/model"
)

// MemoryStore is the volatile store used when no DATABASE_URL is configured,
// and by tests. It enforces the same slot-uniqueness constraint the Postgres
// unique index does, so both stores fail an insert into an occupied slot.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	appts  []model.Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) FindBySlot(_ context.Context, date, clock string) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, appt := range s.appts {
		if appt.Date == date && appt.Time == clock {
			return appt, nil
		}
	}
	return model.Appointment{}, ErrNotFound
}

func (s *MemoryStore) Insert(_ context.Context, appt *model.Appointment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.appts {
		if existing.Date == appt.Date && existing.Time == appt.Time {
			return 0, ErrDuplicateSlot
		}
	}
	s.nextID++
	appt.ID = s.nextID
	appt.CreatedAt = time.Now().UTC()
	s.appts = append(s.appts, *appt)
	return appt.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, appt := range s.appts {
		if appt.ID == id {
			return appt, nil
		}
	}
	return model.Appointment{}, ErrNotFound
}

func (s *MemoryStore) SetStatus(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appts {
		if s.appts[i].ID == id {
			s.appts[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) UpdateDetails(_ context.Context, id int64, date, clock, patient, physician string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appts {
		if s.appts[i].ID == id {
			s.appts[i].Date = date
			s.appts[i].Time = clock
			s.appts[i].Patient = patient
			s.appts[i].Physician = physician
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) List(_ context.Context) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, len(s.appts))
	copy(out, s.appts)
	return out, nil
}
