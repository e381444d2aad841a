package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rahul/pathwise/internal/goal"
)

// GoalStore persists goals together with their steps. Every mutation runs in
// a single transaction, and the pool is limited to one connection so that
// concurrent read-modify-write cycles on a goal are serialized.
type GoalStore struct {
	DB *sql.DB
}

func NewGoalStore(dbPath string) (*GoalStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT,
			ai_generated INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS goals_owner ON goals (owner_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS steps (
			id TEXT PRIMARY KEY,
			goal_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			duration TEXT NOT NULL,
			priority TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS steps_goal ON steps (goal_id, position);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &GoalStore{DB: db}, nil
}

func (s *GoalStore) Close() error {
	return s.DB.Close()
}

// Create stores a new goal and its steps.
func (s *GoalStore) Create(ctx context.Context, g *goal.Goal) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO goals (id, owner_id, title, description, completed, completed_at, ai_generated, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query,
			g.ID, g.OwnerID, g.Title, g.Description, boolInt(g.Completed), formatNullTime(g.CompletedAt),
			boolInt(g.AIGenerated), formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
		return insertSteps(ctx, tx, g)
	})
}

// Get loads one goal owned by ownerID.
func (s *GoalStore) Get(ctx context.Context, ownerID, id string) (*goal.Goal, error) {
	return getGoal(ctx, s.DB, ownerID, id)
}

// List returns every goal of ownerID, newest first.
func (s *GoalStore) List(ctx context.Context, ownerID string) ([]goal.Goal, error) {
	query := `SELECT id, owner_id, title, description, completed, completed_at, ai_generated, created_at, updated_at
		FROM goals WHERE owner_id = ? ORDER BY created_at DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	var goals []goal.Goal
	index := make(map[string]int)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[g.ID] = len(goals)
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(goals) == 0 {
		return goals, nil
	}

	// Steps are read only after the goal rows are closed; the pool holds a
	// single connection.
	stepQuery := `SELECT s.goal_id, ` + stepColumns + ` FROM steps s
		JOIN goals g ON g.id = s.goal_id
		WHERE g.owner_id = ? ORDER BY s.goal_id, s.position`
	srows, err := s.DB.QueryContext(ctx, stepQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var goalID string
		st, err := scanStep(srows, &goalID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[goalID]; ok {
			goals[i].Steps = append(goals[i].Steps, st)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}

	for i := range goals {
		goal.Derive(&goals[i], goals[i].UpdatedAt)
	}
	return goals, nil
}

// Update loads a goal, applies fn and writes the result back in one
// transaction. Nothing is written when fn fails.
func (s *GoalStore) Update(ctx context.Context, ownerID, id string, fn func(*goal.Goal) error) (*goal.Goal, error) {
	var out *goal.Goal
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		g, err := getGoal(ctx, tx, ownerID, id)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}

		query := `UPDATE goals SET title = ?, description = ?, completed = ?, completed_at = ?, updated_at = ?
			WHERE id = ? AND owner_id = ?`
		_, err = tx.ExecContext(ctx, query,
			g.Title, g.Description, boolInt(g.Completed), formatNullTime(g.CompletedAt), formatTime(g.UpdatedAt),
			g.ID, ownerID)
		if err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM steps WHERE goal_id = ?`, g.ID); err != nil {
			return fmt.Errorf("replace steps: %w", err)
		}
		if err := insertSteps(ctx, tx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a goal and all of its steps.
func (s *GoalStore) Delete(ctx context.Context, ownerID, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete goal: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &goal.NotFoundError{Kind: "Task", ID: id}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM steps WHERE goal_id = ?`, id); err != nil {
			return fmt.Errorf("delete steps: %w", err)
		}
		return nil
	})
}

// Owners lists every owner with at least one incomplete goal.
func (s *GoalStore) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT owner_id FROM goals WHERE completed = 0 ORDER BY owner_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

func (s *GoalStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

const stepColumns = `s.id, s.title, s.description, s.duration, s.priority, s.sort_order, s.completed, s.completed_at`

func getGoal(ctx context.Context, q querier, ownerID, id string) (*goal.Goal, error) {
	query := `SELECT id, owner_id, title, description, completed, completed_at, ai_generated, created_at, updated_at
		FROM goals WHERE id = ? AND owner_id = ?`
	g, err := scanGoal(q.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &goal.NotFoundError{Kind: "Task", ID: id}
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT `+stepColumns+` FROM steps s WHERE s.goal_id = ? ORDER BY s.position`, id)
	if err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		g.Steps = append(g.Steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	goal.Derive(g, g.UpdatedAt)
	return g, nil
}

func insertSteps(ctx context.Context, tx *sql.Tx, g *goal.Goal) error {
	query := `INSERT INTO steps (id, goal_id, position, title, description, duration, priority, sort_order, completed, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, st := range g.Steps {
		_, err := tx.ExecContext(ctx, query,
			st.ID, g.ID, i, st.Title, st.Description, st.Duration, string(st.Priority), st.Order,
			boolInt(st.Completed), formatNullTime(st.CompletedAt))
		if err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner) (*goal.Goal, error) {
	var (
		g                    goal.Goal
		completed, ai        int
		completedAt          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Description, &completed, &completedAt, &ai, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	g.Completed = completed != 0
	g.AIGenerated = ai != 0
	if g.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, fmt.Errorf("goal %s completed_at: %w", g.ID, err)
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("goal %s created_at: %w", g.ID, err)
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("goal %s updated_at: %w", g.ID, err)
	}
	g.Steps = []goal.Step{}
	return &g, nil
}

// scanStep reads stepColumns, optionally preceded by extra leading columns.
func scanStep(row scanner, lead ...any) (goal.Step, error) {
	var (
		st          goal.Step
		priority    string
		completed   int
		completedAt sql.NullString
	)
	dest := append(lead, &st.ID, &st.Title, &st.Description, &st.Duration, &priority, &st.Order, &completed, &completedAt)
	if err := row.Scan(dest...); err != nil {
		return st, err
	}

	st.Priority = goal.Priority(priority)
	st.Completed = completed != 0
	var err error
	if st.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return st, fmt.Errorf("step %s completed_at: %w", st.ID, err)
	}
	return st, nil
}
