package store

import (
	"context"
	"fmt"
	"time"

	"givelocal/internal/utils"
	"givelocal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	eventTableName        = "givelocal.volunteer_events"
	registrationTableName = "givelocal.volunteer_registrations"
)

var (
	eventColumns        = utils.StructTagValues(types.VolunteerEvent{})
	registrationColumns = utils.StructTagValues(types.VolunteerRegistration{})
)

type VolunteerRepository struct {
	pool *pgxpool.Pool
}

func NewVolunteerRepository(pool *pgxpool.Pool) *VolunteerRepository {
	return &VolunteerRepository{pool: pool}
}

func (r *VolunteerRepository) Event(ctx context.Context, eventID string) (*types.VolunteerEvent, error) {
	query, args, err := psql().
		Select(eventColumns...).
		From(eventTableName).
		Where(sq.Eq{"id": eventID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event query: %w", err)
	}

	var event types.VolunteerEvent
	err = pgxscan.Get(ctx, r.pool, &event, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	return &event, nil
}

func (r *VolunteerRepository) AllEvents(ctx context.Context) ([]*types.VolunteerEvent, error) {
	query, args, err := psql().
		Select(eventColumns...).
		From(eventTableName).
		OrderBy("starts_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate events query: %w", err)
	}

	var events []*types.VolunteerEvent
	err = pgxscan.Select(ctx, r.pool, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	return events, nil
}

func (r *VolunteerRepository) EventsByOrganization(ctx context.Context, orgID string) ([]*types.VolunteerEvent, error) {
	query, args, err := psql().
		Select(eventColumns...).
		From(eventTableName).
		Where(sq.Eq{"organization_id": orgID}).
		OrderBy("starts_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate events-by-organization query: %w", err)
	}

	var events []*types.VolunteerEvent
	err = pgxscan.Select(ctx, r.pool, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events by organization: %w", err)
	}

	return events, nil
}

func (r *VolunteerRepository) CreateEvent(ctx context.Context, event *types.VolunteerEvent) error {
	now := time.Now()
	event.ID = utils.NanoID()
	event.Status = types.EventStatusUpcoming
	event.CreatedAt = now
	event.UpdatedAt = now

	query, args, err := psql().
		Insert(eventTableName).
		SetMap(utils.StructToMap(event)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert event query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create event")
}

func (r *VolunteerRepository) SetEventStatus(ctx context.Context, eventID string, status types.EventStatus) error {
	query, args, err := psql().
		Update(eventTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate event status query for event %s: %w", eventID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update event status")
}

func (r *VolunteerRepository) RegistrationsByEvent(ctx context.Context, eventID string) ([]*types.VolunteerRegistration, error) {
	query, args, err := psql().
		Select(registrationColumns...).
		From(registrationTableName).
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate registrations query: %w", err)
	}

	var registrations []*types.VolunteerRegistration
	err = pgxscan.Select(ctx, r.pool, &registrations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registrations: %w", err)
	}

	return registrations, nil
}

func (r *VolunteerRepository) RegistrationsByUser(ctx context.Context, userID string) ([]*types.VolunteerRegistration, error) {
	query, args, err := psql().
		Select(registrationColumns...).
		From(registrationTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate registrations-by-user query: %w", err)
	}

	var registrations []*types.VolunteerRegistration
	err = pgxscan.Select(ctx, r.pool, &registrations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registrations by user: %w", err)
	}

	return registrations, nil
}

func (r *VolunteerRepository) CountActiveRegistrations(ctx context.Context, eventID string) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(registrationTableName).
		Where(sq.Eq{"event_id": eventID, "status": types.RegistrationStatusRegistered}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate registration count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	return count, nil
}

func (r *VolunteerRepository) CreateRegistration(ctx context.Context, registration *types.VolunteerRegistration) error {
	now := time.Now()
	registration.ID = utils.NanoID()
	registration.Status = types.RegistrationStatusRegistered
	registration.CreatedAt = now
	registration.UpdatedAt = now

	query, args, err := psql().
		Insert(registrationTableName).
		SetMap(utils.StructToMap(registration)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert registration query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create registration")
}

func (r *VolunteerRepository) SetRegistrationStatus(ctx context.Context, registrationID string, status types.RegistrationStatus) error {
	query, args, err := psql().
		Update(registrationTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": registrationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate registration status query for registration %s: %w", registrationID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update registration status")
}
