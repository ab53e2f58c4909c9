package storage

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/clinicops/medagenda/libs/db"
	"github.com/clinicops/medagenda/services/scheduling-service/internal/model"
	"github.com/clinicops/medagenda/services/scheduling-service/internal/outbox"
)

// AppointmentRepository is the Postgres store. Mutations record an outbox
// event in the same transaction as the row change.
type AppointmentRepository struct {
	pool       *db.Pool
	outboxRepo *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outboxRepo: outboxRepo}
}

const appointmentColumns = `id, slot_date, slot_time, patient, physician, status, created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.Date,
		&appt.Time,
		&appt.Patient,
		&appt.Physician,
		&appt.Status,
		&appt.CreatedAt,
	)
	return appt, err
}

// FindBySlot is deliberately not scoped by status: a cancelled appointment
// keeps its slot occupied.
func (r *AppointmentRepository) FindBySlot(ctx context.Context, date, clock string) (model.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE slot_date = $1 AND slot_time = $2
		LIMIT 1
	`, date, clock))
}

func (r *AppointmentRepository) Insert(ctx context.Context, appt *model.Appointment) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (slot_date, slot_time, patient, physician, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, appt.Date, appt.Time, appt.Patient, appt.Physician, appt.Status).Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		return 0, err
	}

	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentBooked, *appt); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return appt.ID, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id int64) (model.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id))
}

func (r *AppointmentRepository) SetStatus(ctx context.Context, id int64, status string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status))
	if err != nil {
		return err
	}

	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentCancelled, appt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *AppointmentRepository) UpdateDetails(ctx context.Context, id int64, date, clock, patient, physician string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		UPDATE appointments
		SET slot_date = $2, slot_time = $3, patient = $4, physician = $5
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, date, clock, patient, physician))
	if err != nil {
		return err
	}

	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentUpdated, appt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *AppointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) insertEvent(ctx context.Context, tx pgx.Tx, eventType string, appt model.Appointment) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"date":           appt.Date,
		"time":           appt.Time,
		"patient":        appt.Patient,
		"physician":      appt.Physician,
		"status":         appt.Status,
	})
	if err != nil {
		return err
	}
	return r.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   strconv.FormatInt(appt.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	})
}
