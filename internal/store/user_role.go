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

const userRoleTableName = "givelocal.user_roles"

var userRoleColumns = utils.StructTagValues(types.UserRole{})

type UserRoleRepository struct {
	pool *pgxpool.Pool
}

func NewUserRoleRepository(pool *pgxpool.Pool) *UserRoleRepository {
	return &UserRoleRepository{pool: pool}
}

func (r *UserRoleRepository) RoleByUser(ctx context.Context, userID string) (*types.UserRole, error) {
	query, args, err := psql().
		Select(userRoleColumns...).
		From(userRoleTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role query: %w", err)
	}

	var role types.UserRole
	err = pgxscan.Get(ctx, r.pool, &role, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}

	return &role, nil
}

func (r *UserRoleRepository) AllRoles(ctx context.Context) ([]*types.UserRole, error) {
	query, args, err := psql().
		Select(userRoleColumns...).
		From(userRoleTableName).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate roles query: %w", err)
	}

	var roles []*types.UserRole
	err = pgxscan.Select(ctx, r.pool, &roles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	return roles, nil
}

// Create assigns a role at signup. Roles are immutable afterward, so there
// is no update method.
func (r *UserRoleRepository) Create(ctx context.Context, role *types.UserRole) error {
	role.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(userRoleTableName).
		SetMap(utils.StructToMap(role)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert role query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create role")
}

func (r *UserRoleRepository) Delete(ctx context.Context, userID string) error {
	query, args, err := psql().
		Delete(userRoleTableName).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete role query for user %s: %w", userID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete role")
}
