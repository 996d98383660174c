package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/wealthsim/advisor/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id         TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// postgresStore keeps each profile as one JSONB document. Writes go through
// a circuit breaker so a struggling database sheds load fast instead of
// stalling every planner call on timeouts.
type postgresStore struct {
	db      *sqlx.DB
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewPostgres connects, ensures the schema, and returns a ProfileStore.
func NewPostgres(dsn string, timeout time.Duration) (ProfileStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure profiles schema: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "profile-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("profile store breaker state change")
		},
	})

	return &postgresStore{db: db, timeout: timeout, breaker: breaker}, nil
}

func (s *postgresStore) Get(ctx context.Context, id string) (domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc []byte
	err := s.db.QueryRowxContext(ctx, `SELECT doc FROM profiles WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to load profile %s: %w", id, err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("failed to decode profile %s: %w", id, err)
	}
	return profile, nil
}

func (s *postgresStore) Save(ctx context.Context, profile domain.Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", profile.ID, err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		_, execErr := s.db.ExecContext(ctx, `
			INSERT INTO profiles (id, doc, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
			profile.ID, doc)
		return nil, execErr
	})
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.ID, err)
	}
	return nil
}

func (s *postgresStore) List(ctx context.Context) ([]domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, `SELECT doc FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		var profile domain.Profile
		if err := json.Unmarshal(doc, &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile row: %w", err)
		}
		out = append(out, profile)
	}
	return out, rows.Err()
}
