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

const itemRequestTableName = "givelocal.item_requests"

var itemRequestColumns = utils.StructTagValues(types.ItemRequest{})

type ItemRequestRepository struct {
	pool *pgxpool.Pool
}

func NewItemRequestRepository(pool *pgxpool.Pool) *ItemRequestRepository {
	return &ItemRequestRepository{pool: pool}
}

func (r *ItemRequestRepository) Request(ctx context.Context, requestID string) (*types.ItemRequest, error) {
	query, args, err := psql().
		Select(itemRequestColumns...).
		From(itemRequestTableName).
		Where(sq.Eq{"id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate item request query: %w", err)
	}

	var request types.ItemRequest
	err = pgxscan.Get(ctx, r.pool, &request, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch item request: %w", err)
	}

	return &request, nil
}

func (r *ItemRequestRepository) AllRequests(ctx context.Context) ([]*types.ItemRequest, error) {
	query, args, err := psql().
		Select(itemRequestColumns...).
		From(itemRequestTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate item requests query: %w", err)
	}

	var requests []*types.ItemRequest
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item requests: %w", err)
	}

	return requests, nil
}

func (r *ItemRequestRepository) RequestsByUser(ctx context.Context, userID string) ([]*types.ItemRequest, error) {
	query, args, err := psql().
		Select(itemRequestColumns...).
		From(itemRequestTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate item requests-by-user query: %w", err)
	}

	var requests []*types.ItemRequest
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item requests by user: %w", err)
	}

	return requests, nil
}

// VisibleRequests returns the requests a beneficiary may browse: everyone's
// approved requests plus their own, regardless of moderation state.
func (r *ItemRequestRepository) VisibleRequests(ctx context.Context, userID string) ([]*types.ItemRequest, error) {
	query, args, err := psql().
		Select(itemRequestColumns...).
		From(itemRequestTableName).
		Where(sq.Or{
			sq.Eq{"moderation_status": types.ModerationStatusApproved},
			sq.Eq{"user_id": userID},
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate visible item requests query: %w", err)
	}

	var requests []*types.ItemRequest
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch visible item requests: %w", err)
	}

	return requests, nil
}

func (r *ItemRequestRepository) Create(ctx context.Context, request *types.ItemRequest) error {
	now := time.Now()
	request.ID = utils.NanoID()
	request.CreatedAt = now
	request.UpdatedAt = now

	query, args, err := psql().
		Insert(itemRequestTableName).
		SetMap(utils.StructToMap(request)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert item request query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create item request")
}

func (r *ItemRequestRepository) Update(ctx context.Context, requestID string, request *types.ItemRequest) error {
	request.ID = requestID
	request.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(itemRequestTableName).
		SetMap(utils.StructToMap(request)).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update item request query for request %s: %w", requestID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update item request")
}

func (r *ItemRequestRepository) SetModeration(ctx context.Context, requestID string, status types.ModerationStatus, note *string) error {
	query, args, err := psql().
		Update(itemRequestTableName).
		Set("moderation_status", status).
		Set("rejection_note", note).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate moderation query for request %s: %w", requestID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update item request moderation")
}

// SetStatus transitions the owner-controlled lifecycle status, independent
// of moderation.
func (r *ItemRequestRepository) SetStatus(ctx context.Context, requestID string, status types.RequestStatus) error {
	query, args, err := psql().
		Update(itemRequestTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate status query for request %s: %w", requestID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update item request status")
}

func (r *ItemRequestRepository) Delete(ctx context.Context, requestID string) error {
	query, args, err := psql().
		Delete(itemRequestTableName).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete item request query for request %s: %w", requestID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete item request")
}
