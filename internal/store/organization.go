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

const organizationTableName = "givelocal.organizations"

var organizationColumns = utils.StructTagValues(types.Organization{})

type OrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

func (r *OrganizationRepository) Organization(ctx context.Context, orgID string) (*types.Organization, error) {
	query, args, err := psql().
		Select(organizationColumns...).
		From(organizationTableName).
		Where(sq.Eq{"id": orgID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization query: %w", err)
	}

	var org types.Organization
	err = pgxscan.Get(ctx, r.pool, &org, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to fetch organization: %w", err)
	}

	return &org, nil
}

func (r *OrganizationRepository) OrganizationByOwner(ctx context.Context, ownerID string) (*types.Organization, error) {
	query, args, err := psql().
		Select(organizationColumns...).
		From(organizationTableName).
		Where(sq.Eq{"owner_id": ownerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization-by-owner query: %w", err)
	}

	var org types.Organization
	err = pgxscan.Get(ctx, r.pool, &org, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to fetch organization by owner: %w", err)
	}

	return &org, nil
}

func (r *OrganizationRepository) AllOrganizations(ctx context.Context) ([]*types.Organization, error) {
	query, args, err := psql().
		Select(organizationColumns...).
		From(organizationTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organizations query: %w", err)
	}

	var orgs []*types.Organization
	err = pgxscan.Select(ctx, r.pool, &orgs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organizations: %w", err)
	}

	return orgs, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, org *types.Organization) error {
	now := time.Now()
	org.ID = utils.NanoID()
	org.CreatedAt = now
	org.UpdatedAt = now

	query, args, err := psql().
		Insert(organizationTableName).
		SetMap(utils.StructToMap(org)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert organization query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create organization")
}

func (r *OrganizationRepository) Update(ctx context.Context, orgID string, org *types.Organization) error {
	org.ID = orgID
	org.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(organizationTableName).
		SetMap(utils.StructToMap(org)).
		Where(sq.Eq{"id": orgID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update organization query for organization %s: %w", orgID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update organization")
}

// UpdatePreferences persists only the category preference columns so that
// concurrent profile edits are not clobbered by a toggle.
func (r *OrganizationRepository) UpdatePreferences(ctx context.Context, orgID string, org *types.Organization) error {
	query, args, err := psql().
		Update(organizationTableName).
		Set("accepted_categories", org.AcceptedCategories).
		Set("rejected_categories", org.RejectedCategories).
		Set("subcategory_preferences", org.SubcategoryPreferences).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": orgID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate organization preference query for organization %s: %w", orgID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update organization preferences")
}

// SetStatusWithProfileCascade transitions the organization's approval status
// and the owning profile's status in a single transaction, so a failure
// cannot leave the two records disagreeing.
func (r *OrganizationRepository) SetStatusWithProfileCascade(ctx context.Context, orgID, ownerID string, orgStatus types.OrganizationStatus, profileStatus types.ProfileStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin organization status transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	orgQuery, orgArgs, err := psql().
		Update(organizationTableName).
		Set("status", orgStatus).
		Set("updated_at", now).
		Where(sq.Eq{"id": orgID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate organization status query: %w", err)
	}

	if _, err := tx.Exec(ctx, orgQuery, orgArgs...); err != nil {
		return fmt.Errorf("failed to update organization status: %w", err)
	}

	profileQuery, profileArgs, err := psql().
		Update(profileTableName).
		Set("status", profileStatus).
		Set("updated_at", now).
		Where(sq.Eq{"id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate cascaded profile status query: %w", err)
	}

	if _, err := tx.Exec(ctx, profileQuery, profileArgs...); err != nil {
		return fmt.Errorf("failed to cascade profile status: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *OrganizationRepository) Delete(ctx context.Context, orgID string) error {
	query, args, err := psql().
		Delete(organizationTableName).
		Where(sq.Eq{"id": orgID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete organization query for organization %s: %w", orgID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete organization")
}
