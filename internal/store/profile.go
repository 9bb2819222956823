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

const profileTableName = "givelocal.profiles"

var profileColumns = utils.StructTagValues(types.Profile{})

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Profile(ctx context.Context, profileID string) (*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"id": profileID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, r.pool, &profile, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

func (r *ProfileRepository) ProfileByEmail(ctx context.Context, email string) (*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile-by-email query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, r.pool, &profile, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile by email: %w", err)
	}

	return &profile, nil
}

func (r *ProfileRepository) AllProfiles(ctx context.Context) ([]*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profiles query: %w", err)
	}

	var profiles []*types.Profile
	err = pgxscan.Select(ctx, r.pool, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}

	return profiles, nil
}

func (r *ProfileRepository) ProfilesByStatus(ctx context.Context, status types.ProfileStatus) ([]*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"status": status}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profiles-by-status query: %w", err)
	}

	var profiles []*types.Profile
	err = pgxscan.Select(ctx, r.pool, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles by status: %w", err)
	}

	return profiles, nil
}

// Create inserts a profile whose ID is the authenticated identity's subject,
// so no nanoid is generated here.
func (r *ProfileRepository) Create(ctx context.Context, profile *types.Profile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query, args, err := psql().
		Insert(profileTableName).
		SetMap(utils.StructToMap(profile)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create profile")
}

func (r *ProfileRepository) Update(ctx context.Context, profileID string, profile *types.Profile) error {
	profile.ID = profileID
	profile.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(profileTableName).
		SetMap(utils.StructToMap(profile)).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update profile query for profile %s: %w", profileID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update profile")
}

func (r *ProfileRepository) SetStatus(ctx context.Context, profileID string, status types.ProfileStatus) error {
	query, args, err := psql().
		Update(profileTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate profile status query for profile %s: %w", profileID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update profile status")
}

// SetBanned flips only the ban flag. Status is untouched.
func (r *ProfileRepository) SetBanned(ctx context.Context, profileID string, banned bool) error {
	query, args, err := psql().
		Update(profileTableName).
		Set("is_banned", banned).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate profile ban query for profile %s: %w", profileID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update profile ban flag")
}

func (r *ProfileRepository) SetVerificationDocument(ctx context.Context, profileID string, objectKey string) error {
	query, args, err := psql().
		Update(profileTableName).
		Set("verification_document", nullable(objectKey)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate profile document query for profile %s: %w", profileID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update profile verification document")
}

func (r *ProfileRepository) Delete(ctx context.Context, profileID string) error {
	query, args, err := psql().
		Delete(profileTableName).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete profile query for profile %s: %w", profileID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete profile")
}
