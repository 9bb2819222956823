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

const proposalTableName = "givelocal.category_proposals"

var proposalColumns = utils.StructTagValues(types.CategoryProposal{})

type CategoryProposalRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryProposalRepository(pool *pgxpool.Pool) *CategoryProposalRepository {
	return &CategoryProposalRepository{pool: pool}
}

func (r *CategoryProposalRepository) Proposal(ctx context.Context, proposalID string) (*types.CategoryProposal, error) {
	query, args, err := psql().
		Select(proposalColumns...).
		From(proposalTableName).
		Where(sq.Eq{"id": proposalID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate proposal query: %w", err)
	}

	var proposal types.CategoryProposal
	err = pgxscan.Get(ctx, r.pool, &proposal, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to fetch proposal: %w", err)
	}

	return &proposal, nil
}

func (r *CategoryProposalRepository) AllProposals(ctx context.Context) ([]*types.CategoryProposal, error) {
	query, args, err := psql().
		Select(proposalColumns...).
		From(proposalTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate proposals query: %w", err)
	}

	var proposals []*types.CategoryProposal
	err = pgxscan.Select(ctx, r.pool, &proposals, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proposals: %w", err)
	}

	return proposals, nil
}

func (r *CategoryProposalRepository) ProposalsByOrganization(ctx context.Context, orgID string) ([]*types.CategoryProposal, error) {
	query, args, err := psql().
		Select(proposalColumns...).
		From(proposalTableName).
		Where(sq.Eq{"organization_id": orgID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate proposals-by-organization query: %w", err)
	}

	var proposals []*types.CategoryProposal
	err = pgxscan.Select(ctx, r.pool, &proposals, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proposals by organization: %w", err)
	}

	return proposals, nil
}

func (r *CategoryProposalRepository) Create(ctx context.Context, proposal *types.CategoryProposal) error {
	now := time.Now()
	proposal.ID = utils.NanoID()
	proposal.Status = types.ProposalStatusPending
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	query, args, err := psql().
		Insert(proposalTableName).
		SetMap(utils.StructToMap(proposal)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert proposal query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create proposal")
}

func (r *CategoryProposalRepository) SetStatus(ctx context.Context, proposalID string, status types.ProposalStatus) error {
	query, args, err := psql().
		Update(proposalTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": proposalID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate proposal status query for proposal %s: %w", proposalID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update proposal status")
}
