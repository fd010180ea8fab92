package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Store persists chat messages per (room, backend). Appends are best-effort
// from the relay path: a failed write is logged by the caller and never fails
// the chat send.
type Store interface {
	Append(ctx context.Context, room, username, body, backendID string) error
	Fetch(ctx context.Context, room, backendID string, limit int) ([]string, error)
}

// PGStore is the Postgres implementation over a shared pgx pool. It also owns
// the users table used by the auth handlers, since both live in the same
// schema.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Pool() *pgxpool.Pool { return s.pool }

// EnsureSchema creates the tables on startup if they do not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		create table if not exists users (
			id bigserial primary key,
			username text not null,
			password_hash text not null,
			created_at timestamptz not null default now()
		);

		create unique index if not exists uq_users_username_lower on users (lower(username));

		create table if not exists messages (
			id bigserial primary key,
			room_name text not null,
			username text not null,
			body text not null,
			backend text not null default 'java',
			created_at timestamptz not null default now()
		);

		create index if not exists idx_messages_room_backend_created_at
			on messages (room_name, backend, created_at desc);
	`)
	if err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
}

func (s *PGStore) Append(ctx context.Context, room, username, body, backendID string) error {
	_, err := s.pool.Exec(ctx,
		`insert into messages (room_name, username, body, backend) values ($1, $2, $3, $4)`,
		room, username, body, backendID)
	if err != nil {
		return errors.Wrap(err, "append message")
	}
	return nil
}

// Fetch returns up to limit persisted lines for a room, oldest first,
// rendered as "RFC3339 | user: body".
func (s *PGStore) Fetch(ctx context.Context, room, backendID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		select username, body, created_at
		from messages
		where room_name = $1 and backend = $2
		order by created_at desc
		limit $3
	`, room, backendID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var newest []string
	for rows.Next() {
		var username, body string
		var createdAt time.Time
		if err := rows.Scan(&username, &body, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan history row")
		}
		newest = append(newest, FormatLine(createdAt, username, body))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate history rows")
	}

	// query returns newest-first; clients want chronological order
	out := make([]string, 0, len(newest))
	for i := len(newest) - 1; i >= 0; i-- {
		out = append(out, newest[i])
	}
	return out, nil
}

func FormatLine(ts time.Time, username, body string) string {
	return fmt.Sprintf("%s | %s: %s", ts.UTC().Format(time.RFC3339), username, body)
}
