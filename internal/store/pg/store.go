// Package pg implements the credential store and handle directory on
// PostgreSQL via pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OpenQueue/API/internal/domain/repository"
	"github.com/OpenQueue/API/internal/domain/types"
)

// Store implements repository.CredentialStore and repository.Directory.
type Store struct {
	pool *pgxpool.Pool
}

// Config tunes the connection pool.
type Config struct {
	DSN             string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// New connects and pings the database.
func New(ctx context.Context, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// Ping checks connectivity, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// LookupKey returns the scope rows an API key grants. The join filters to
// leagues that allow public API access or are owned by the key's user;
// rows that fail the filter are invisible, not merely redacted.
func (s *Store) LookupKey(ctx context.Context, key string) ([]types.KeyScopeRow, error) {
	const q = `
		SELECT k.league_id, k.user_id, sc.scope, ks.public_schema
		FROM api_key k
		JOIN league l ON l.league_id = k.league_id
		JOIN key_scopes ks ON ks.api_key = k.api_key
		JOIN scopes sc ON sc.scope_id = ks.scope_id
		WHERE k.api_key = $1
		  AND (l.allow_api_access OR l.user_id = k.user_id)`

	rows, err := s.pool.Query(ctx, q, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.KeyScopeRow
	for rows.Next() {
		var r types.KeyScopeRow
		if err := rows.Scan(&r.LeagueID, &r.UserID, &r.Scope, &r.Public); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LookupAdmin returns the admin scope grants for (userID, leagueID).
func (s *Store) LookupAdmin(ctx context.Context, userID, leagueID string) ([]types.AdminScopeRow, error) {
	const q = `
		SELECT sc.scope, a.public_schema
		FROM admin_scopes a
		JOIN scopes sc ON sc.scope_id = a.scope_id
		WHERE a.user_id = $1 AND a.league_id = $2`

	rows, err := s.pool.Query(ctx, q, userID, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.AdminScopeRow
	for rows.Next() {
		var r types.AdminScopeRow
		if err := rows.Scan(&r.Scope, &r.Public); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LookupLogin returns the login row for an email address.
func (s *Store) LookupLogin(ctx context.Context, email string) (*types.LoginRow, error) {
	const q = `SELECT user_id, password_hash, email_confirmed FROM users WHERE email = $1`

	var row types.LoginRow
	err := s.pool.QueryRow(ctx, q, email).Scan(&row.UserID, &row.PasswordHash, &row.EmailConfirmed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: account", repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	const leagues = `SELECT league_id FROM league WHERE user_id = $1`
	rows, err := s.pool.Query(ctx, leagues, row.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		row.LeagueIDs = append(row.LeagueIDs, id)
	}
	return &row, rows.Err()
}

// League resolves a league handle.
func (s *Store) League(ctx context.Context, leagueID string) (*types.LeagueHandle, error) {
	const q = `SELECT league_id, user_id FROM league WHERE league_id = $1`

	var h types.LeagueHandle
	err := s.pool.QueryRow(ctx, q, leagueID).Scan(&h.LeagueID, &h.OwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: league %s", repository.ErrNotFound, leagueID)
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// User resolves a user handle. With a league id it checks membership in
// that league; without one it resolves the site-level user.
func (s *Store) User(ctx context.Context, leagueID, userID string) (*types.UserHandle, error) {
	var err error
	if leagueID == "" {
		const q = `SELECT user_id FROM users WHERE user_id = $1`
		err = s.pool.QueryRow(ctx, q, userID).Scan(&userID)
	} else {
		const q = `SELECT user_id FROM league_users WHERE league_id = $1 AND user_id = $2`
		err = s.pool.QueryRow(ctx, q, leagueID, userID).Scan(&userID)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &types.UserHandle{LeagueID: leagueID, UserID: userID}, nil
}

// Match resolves a match handle within a league.
func (s *Store) Match(ctx context.Context, leagueID, matchID string) (*types.MatchHandle, error) {
	const q = `SELECT match_id FROM matches WHERE league_id = $1 AND match_id = $2`

	err := s.pool.QueryRow(ctx, q, leagueID, matchID).Scan(&matchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", repository.ErrNotFound, matchID)
	}
	if err != nil {
		return nil, err
	}
	return &types.MatchHandle{LeagueID: leagueID, MatchID: matchID}, nil
}

// Ban resolves a ban handle for a league member.
func (s *Store) Ban(ctx context.Context, leagueID, userID, banID string) (*types.BanHandle, error) {
	const q = `SELECT ban_id FROM bans WHERE league_id = $1 AND user_id = $2 AND ban_id = $3`

	err := s.pool.QueryRow(ctx, q, leagueID, userID, banID).Scan(&banID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: ban %s", repository.ErrNotFound, banID)
	}
	if err != nil {
		return nil, err
	}
	return &types.BanHandle{LeagueID: leagueID, UserID: userID, BanID: banID}, nil
}
