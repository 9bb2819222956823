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

const listingTableName = "givelocal.donation_listings"

var listingColumns = utils.StructTagValues(types.DonationListing{})

type DonationListingRepository struct {
	pool *pgxpool.Pool
}

func NewDonationListingRepository(pool *pgxpool.Pool) *DonationListingRepository {
	return &DonationListingRepository{pool: pool}
}

func (r *DonationListingRepository) Listing(ctx context.Context, listingID string) (*types.DonationListing, error) {
	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		Where(sq.Eq{"id": listingID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing query: %w", err)
	}

	var listing types.DonationListing
	err = pgxscan.Get(ctx, r.pool, &listing, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	return &listing, nil
}

func (r *DonationListingRepository) AllListings(ctx context.Context) ([]*types.DonationListing, error) {
	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listings query: %w", err)
	}

	var listings []*types.DonationListing
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, nil
}

func (r *DonationListingRepository) ListingsByDonor(ctx context.Context, donorID string) ([]*types.DonationListing, error) {
	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		Where(sq.Eq{"donor_id": donorID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listings-by-donor query: %w", err)
	}

	var listings []*types.DonationListing
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings by donor: %w", err)
	}

	return listings, nil
}

func (r *DonationListingRepository) AvailableListings(ctx context.Context) ([]*types.DonationListing, error) {
	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		Where(sq.Eq{"status": types.ListingStatusAvailable}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate available listings query: %w", err)
	}

	var listings []*types.DonationListing
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available listings: %w", err)
	}

	return listings, nil
}

func (r *DonationListingRepository) Create(ctx context.Context, listing *types.DonationListing) error {
	now := time.Now()
	listing.ID = utils.NanoID()
	listing.Status = types.ListingStatusAvailable
	listing.CreatedAt = now
	listing.UpdatedAt = now

	query, args, err := psql().
		Insert(listingTableName).
		SetMap(utils.StructToMap(listing)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert listing query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create listing")
}

func (r *DonationListingRepository) Update(ctx context.Context, listingID string, listing *types.DonationListing) error {
	listing.ID = listingID
	listing.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(listingTableName).
		SetMap(utils.StructToMap(listing)).
		Where(sq.Eq{"id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update listing query for listing %s: %w", listingID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update listing")
}

func (r *DonationListingRepository) SetStatus(ctx context.Context, listingID string, status types.ListingStatus) error {
	query, args, err := psql().
		Update(listingTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate listing status query for listing %s: %w", listingID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update listing status")
}

// Claim transitions an available listing to claimed. The status guard in the
// WHERE clause makes concurrent claims lose cleanly instead of
// double-claiming.
func (r *DonationListingRepository) Claim(ctx context.Context, listingID string) error {
	query, args, err := psql().
		Update(listingTableName).
		Set("status", types.ListingStatusClaimed).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": listingID, "status": types.ListingStatusAvailable}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate claim query for listing %s: %w", listingID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to claim listing: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrListingUnavailable
	}

	return nil
}

func (r *DonationListingRepository) Delete(ctx context.Context, listingID string) error {
	query, args, err := psql().
		Delete(listingTableName).
		Where(sq.Eq{"id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete listing query for listing %s: %w", listingID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete listing")
}
