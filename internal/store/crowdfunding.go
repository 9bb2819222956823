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
	campaignTableName             = "givelocal.crowdfunding_campaigns"
	crowdfundingDonationTableName = "givelocal.crowdfunding_donations"
)

var (
	campaignColumns             = utils.StructTagValues(types.CrowdfundingCampaign{})
	crowdfundingDonationColumns = utils.StructTagValues(types.CrowdfundingDonation{})
)

type CrowdfundingRepository struct {
	pool *pgxpool.Pool
}

func NewCrowdfundingRepository(pool *pgxpool.Pool) *CrowdfundingRepository {
	return &CrowdfundingRepository{pool: pool}
}

func (r *CrowdfundingRepository) Campaign(ctx context.Context, campaignID string) (*types.CrowdfundingCampaign, error) {
	query, args, err := psql().
		Select(campaignColumns...).
		From(campaignTableName).
		Where(sq.Eq{"id": campaignID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate campaign query: %w", err)
	}

	var campaign types.CrowdfundingCampaign
	err = pgxscan.Get(ctx, r.pool, &campaign, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}

	return &campaign, nil
}

func (r *CrowdfundingRepository) AllCampaigns(ctx context.Context) ([]*types.CrowdfundingCampaign, error) {
	query, args, err := psql().
		Select(campaignColumns...).
		From(campaignTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate campaigns query: %w", err)
	}

	var campaigns []*types.CrowdfundingCampaign
	err = pgxscan.Select(ctx, r.pool, &campaigns, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}

	return campaigns, nil
}

func (r *CrowdfundingRepository) CreateCampaign(ctx context.Context, campaign *types.CrowdfundingCampaign) error {
	now := time.Now()
	campaign.ID = utils.NanoID()
	campaign.Status = types.CampaignStatusActive
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	query, args, err := psql().
		Insert(campaignTableName).
		SetMap(utils.StructToMap(campaign)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert campaign query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create campaign")
}

func (r *CrowdfundingRepository) SetCampaignStatus(ctx context.Context, campaignID string, status types.CampaignStatus) error {
	query, args, err := psql().
		Update(campaignTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": campaignID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate campaign status query for campaign %s: %w", campaignID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update campaign status")
}

// RecordDonation inserts the donation row and bumps the campaign's raised
// total in one transaction.
func (r *CrowdfundingRepository) RecordDonation(ctx context.Context, donation *types.CrowdfundingDonation) error {
	donation.ID = utils.NanoID()
	donation.CreatedAt = time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin donation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery, insertArgs, err := psql().
		Insert(crowdfundingDonationTableName).
		SetMap(utils.StructToMap(donation)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	if _, err := tx.Exec(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}

	updateQuery, updateArgs, err := psql().
		Update(campaignTableName).
		Set("raised_cents", sq.Expr("raised_cents + ?", donation.AmountCents)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": donation.CampaignID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate raised amount query: %w", err)
	}

	if _, err := tx.Exec(ctx, updateQuery, updateArgs...); err != nil {
		return fmt.Errorf("failed to update raised amount: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *CrowdfundingRepository) DonationsByCampaign(ctx context.Context, campaignID string) ([]*types.CrowdfundingDonation, error) {
	query, args, err := psql().
		Select(crowdfundingDonationColumns...).
		From(crowdfundingDonationTableName).
		Where(sq.Eq{"campaign_id": campaignID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations query: %w", err)
	}

	var donations []*types.CrowdfundingDonation
	err = pgxscan.Select(ctx, r.pool, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}

	return donations, nil
}
