package team

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/digiguide/digiguide/internal/db"
)

// Team is a saved party.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []int     `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides CRUD operations for saved teams.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a team. If t.ID is empty a UUID is generated.
func (s *Store) Create(ctx context.Context, t *Team) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if t.Members == nil {
		t.Members = []int{}
	}

	members, err := json.Marshal(t.Members)
	if err != nil {
		return fmt.Errorf("marshalling members: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, members, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, string(members), t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}
	return nil
}

// Get returns the team with id, or nil if there is none.
func (s *Store) Get(ctx context.Context, id string) (*Team, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, members, created_at FROM teams WHERE id = ?`, id)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return t, nil
}

// List returns saved teams, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Team, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, members, created_at FROM teams ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// Delete removes a team. It reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting team: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTeam(row scanner) (*Team, error) {
	var (
		t          Team
		membersRaw string
		created    string
	)
	if err := row.Scan(&t.ID, &t.Name, &membersRaw, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(membersRaw), &t.Members); err != nil {
		return nil, fmt.Errorf("decoding members: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		t.CreatedAt = ts
	} else if ts, err := time.Parse(time.DateTime, created); err == nil {
		t.CreatedAt = ts
	}
	return &t, nil
}
