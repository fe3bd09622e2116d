package repository

import (
	"context"
	"errors"
	"fmt"

	"harvest/database"
	"harvest/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// EconomyRepository reads and writes the economy table
type EconomyRepository struct {
	q queryable
}

// NewEconomyRepository creates a new economy repository
func NewEconomyRepository(db *database.DB) *EconomyRepository {
	return &EconomyRepository{q: db.Pool}
}

// GetAccount returns the user's row, or nil when the user has never been written
func (r *EconomyRepository) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT user_id, wallet, bank
		FROM economy
		WHERE user_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Wallet,
		&account.Bank,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", userID, err)
	}

	return &account, nil
}

// GetWallet returns the stored wallet, treating a missing row as 0
func (r *EconomyRepository) GetWallet(ctx context.Context, userID int64) (int64, error) {
	var wallet int64
	err := r.q.QueryRow(ctx, `SELECT wallet FROM economy WHERE user_id = $1`, userID).Scan(&wallet)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	return wallet, nil
}

// UpsertWallet overwrites the wallet, creating the row when needed.
// The bank column of an existing row is left untouched.
func (r *EconomyRepository) UpsertWallet(ctx context.Context, userID int64, wallet int64) error {
	query := `
		INSERT INTO economy (user_id, wallet)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET wallet = excluded.wallet
	`

	if _, err := r.q.Exec(ctx, query, userID, wallet); err != nil {
		return fmt.Errorf("failed to upsert wallet for user %d: %w", userID, err)
	}

	return nil
}

// OpenAccount moves cost from wallet to bank in one statement.
// It only applies when bank is 0 and the wallet covers the cost, and
// returns nil when the conditions were not met.
func (r *EconomyRepository) OpenAccount(ctx context.Context, userID int64, cost int64) (*models.Account, error) {
	query := `
		UPDATE economy
		SET wallet = wallet - $2, bank = $2
		WHERE user_id = $1 AND bank = 0 AND wallet >= $2
		RETURNING user_id, wallet, bank
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID, cost).Scan(
		&account.UserID,
		&account.Wallet,
		&account.Bank,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open account for user %d: %w", userID, err)
	}

	return &account, nil
}

// GetRank returns 1 + the number of accounts with a strictly larger total,
// along with the number of accounts overall
func (r *EconomyRepository) GetRank(ctx context.Context, total int64) (rank int64, players int64, err error) {
	query, args, err := psql.
		Select().
		Column(sq.Expr("COUNT(*) FILTER (WHERE wallet + bank > ?)", total)).
		Column("COUNT(*)").
		From("economy").
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build rank query: %w", err)
	}

	var higher int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&higher, &players); err != nil {
		return 0, 0, fmt.Errorf("failed to get rank for total %d: %w", total, err)
	}

	return higher + 1, players, nil
}

// GetLeaderboard returns the accounts with the largest totals.
// Positions follow the same tie rule as GetRank.
func (r *EconomyRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args, err := psql.
		Select(
			"RANK() OVER (ORDER BY wallet + bank DESC) AS position",
			"user_id",
			"wallet",
			"bank",
		).
		From("economy").
		OrderBy("wallet + bank DESC", "user_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.Position, &entry.UserID, &entry.Wallet, &entry.Bank); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entry.Total = entry.Wallet + entry.Bank
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}

	return entries, nil
}
