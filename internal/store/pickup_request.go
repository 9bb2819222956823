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
	pickupTableName        = "givelocal.pickup_requests"
	pickupMessageTableName = "givelocal.pickup_request_messages"
)

var (
	pickupColumns        = utils.StructTagValues(types.PickupRequest{})
	pickupMessageColumns = utils.StructTagValues(types.PickupMessage{})
)

type PickupRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPickupRequestRepository(pool *pgxpool.Pool) *PickupRequestRepository {
	return &PickupRequestRepository{pool: pool}
}

func (r *PickupRequestRepository) Request(ctx context.Context, requestID string) (*types.PickupRequest, error) {
	query, args, err := psql().
		Select(pickupColumns...).
		From(pickupTableName).
		Where(sq.Eq{"id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pickup request query: %w", err)
	}

	var request types.PickupRequest
	err = pgxscan.Get(ctx, r.pool, &request, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrPickupNotFound
		}
		return nil, fmt.Errorf("failed to fetch pickup request: %w", err)
	}

	return &request, nil
}

func (r *PickupRequestRepository) RequestsByListing(ctx context.Context, listingID string) ([]*types.PickupRequest, error) {
	query, args, err := psql().
		Select(pickupColumns...).
		From(pickupTableName).
		Where(sq.Eq{"listing_id": listingID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pickup requests-by-listing query: %w", err)
	}

	var requests []*types.PickupRequest
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pickup requests by listing: %w", err)
	}

	return requests, nil
}

func (r *PickupRequestRepository) RequestsByRequester(ctx context.Context, requesterID string) ([]*types.PickupRequest, error) {
	query, args, err := psql().
		Select(pickupColumns...).
		From(pickupTableName).
		Where(sq.Eq{"requester_id": requesterID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pickup requests-by-requester query: %w", err)
	}

	var requests []*types.PickupRequest
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pickup requests by requester: %w", err)
	}

	return requests, nil
}

func (r *PickupRequestRepository) Create(ctx context.Context, request *types.PickupRequest) error {
	now := time.Now()
	request.ID = utils.NanoID()
	request.Status = types.PickupStatusPending
	request.CreatedAt = now
	request.UpdatedAt = now

	query, args, err := psql().
		Insert(pickupTableName).
		SetMap(utils.StructToMap(request)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert pickup request query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create pickup request")
}

func (r *PickupRequestRepository) SetStatus(ctx context.Context, requestID string, status types.PickupStatus, responseMessage *string) error {
	query, args, err := psql().
		Update(pickupTableName).
		Set("status", status).
		Set("response_message", responseMessage).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate pickup status query for request %s: %w", requestID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update pickup request status")
}

// RejectOtherPending closes out every other pending request on a listing
// once one of them has been accepted.
func (r *PickupRequestRepository) RejectOtherPending(ctx context.Context, listingID, acceptedRequestID string, responseMessage string) error {
	query, args, err := psql().
		Update(pickupTableName).
		Set("status", types.PickupStatusRejected).
		Set("response_message", responseMessage).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"listing_id": listingID, "status": types.PickupStatusPending}).
		Where(sq.NotEq{"id": acceptedRequestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate reject-others query for listing %s: %w", listingID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to reject other pending pickup requests")
}

func (r *PickupRequestRepository) MessagesByRequest(ctx context.Context, requestID string) ([]*types.PickupMessage, error) {
	query, args, err := psql().
		Select(pickupMessageColumns...).
		From(pickupMessageTableName).
		Where(sq.Eq{"request_id": requestID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pickup messages query: %w", err)
	}

	var messages []*types.PickupMessage
	err = pgxscan.Select(ctx, r.pool, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pickup messages: %w", err)
	}

	return messages, nil
}

func (r *PickupRequestRepository) CreateMessage(ctx context.Context, message *types.PickupMessage) error {
	message.ID = utils.NanoID()
	message.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(pickupMessageTableName).
		SetMap(utils.StructToMap(message)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert pickup message query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create pickup message")
}
