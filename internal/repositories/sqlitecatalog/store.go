// Package sqlitecatalog provides a single-file SQLite store that backs
// the level, enemy, and question repositories for offline authoring
// setups where no Redis is available. Documents are stored as JSON
// columns; the schema is created on Open.
package sqlitecatalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dunnston/dungeongraph/internal/domain/combat"
	"github.com/dunnston/dungeongraph/internal/domain/level"
	"github.com/dunnston/dungeongraph/internal/domain/quiz"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
	"github.com/dunnston/dungeongraph/internal/repositories/enemies"
	"github.com/dunnston/dungeongraph/internal/repositories/levels"
	"github.com/dunnston/dungeongraph/internal/repositories/questions"
)

const schema = `
CREATE TABLE IF NOT EXISTS levels (
  id       TEXT PRIMARY KEY,
  document TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS enemies (
  ref      TEXT PRIMARY KEY,
  document TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS questions (
  id          TEXT PRIMARY KEY,
  action_type TEXT NOT NULL DEFAULT '',
  document    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_action_type ON questions (action_type);
`

// Store persists the content catalog in a single SQLite file
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at path
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperr.InvalidArgument("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(err, "failed to ping sqlite db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(err, "failed to create schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3lib.SQLITE_CONSTRAINT ||
			code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY ||
			code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// levelStore adapts the catalog to levels.Repository
type levelStore struct {
	store *Store
}

// Levels returns the level repository view of the catalog
func (s *Store) Levels() levels.Repository {
	return &levelStore{store: s}
}

func (ls *levelStore) Create(ctx context.Context, l *level.Level) error {
	if l == nil {
		return apperr.InvalidArgument("level cannot be nil")
	}
	if l.ID == "" {
		return apperr.InvalidArgument("level id cannot be empty")
	}

	data, err := json.Marshal(l)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal level '%s'", l.ID)
	}
	_, err = ls.store.db.ExecContext(ctx,
		`INSERT INTO levels (id, document) VALUES (?, ?)`, l.ID, string(data))
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.AlreadyExists("level already exists: " + l.ID)
		}
		return apperr.Wrapf(err, "failed to store level '%s'", l.ID)
	}
	return nil
}

func (ls *levelStore) Get(ctx context.Context, id string) (*level.Level, error) {
	var doc string
	err := ls.store.db.QueryRowContext(ctx,
		`SELECT document FROM levels WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("level not found: %s", id)
		}
		return nil, apperr.Wrapf(err, "failed to get level '%s'", id)
	}

	var l level.Level
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		return nil, apperr.Wrapf(err, "failed to unmarshal level '%s'", id)
	}
	return &l, nil
}

func (ls *levelStore) Update(ctx context.Context, l *level.Level) error {
	if l == nil {
		return apperr.InvalidArgument("level cannot be nil")
	}
	if l.ID == "" {
		return apperr.InvalidArgument("level id cannot be empty")
	}

	data, err := json.Marshal(l)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal level '%s'", l.ID)
	}
	res, err := ls.store.db.ExecContext(ctx,
		`UPDATE levels SET document = ? WHERE id = ?`, string(data), l.ID)
	if err != nil {
		return apperr.Wrapf(err, "failed to update level '%s'", l.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("level not found: %s", l.ID)
	}
	return nil
}

func (ls *levelStore) Delete(ctx context.Context, id string) error {
	_, err := ls.store.db.ExecContext(ctx, `DELETE FROM levels WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrapf(err, "failed to delete level '%s'", id)
	}
	return nil
}

func (ls *levelStore) List(ctx context.Context) ([]*level.Level, error) {
	rows, err := ls.store.db.QueryContext(ctx,
		`SELECT document FROM levels ORDER BY id`)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list levels")
	}
	defer rows.Close()

	var out []*level.Level
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, apperr.Wrap(err, "failed to scan level row")
		}
		var l level.Level
		if err := json.Unmarshal([]byte(doc), &l); err != nil {
			return nil, apperr.Wrap(err, "failed to unmarshal level row")
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(err, "failed to iterate level rows")
	}
	return out, nil
}

func (ls *levelStore) ListSummaries(ctx context.Context) ([]levels.Summary, error) {
	all, err := ls.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]levels.Summary, 0, len(all))
	for _, l := range all {
		out = append(out, levels.Summary{
			ID:               l.ID,
			Name:             l.Metadata.Name,
			Description:      l.Metadata.Description,
			Difficulty:       l.Metadata.Difficulty,
			RecommendedLevel: l.Metadata.RecommendedLevel,
		})
	}
	return out, nil
}

// enemyStore adapts the catalog to enemies.Repository
type enemyStore struct {
	store *Store
}

// Enemies returns the enemy repository view of the catalog
func (s *Store) Enemies() enemies.Repository {
	return &enemyStore{store: s}
}

func (es *enemyStore) Create(ctx context.Context, enemy *combat.Enemy) error {
	if enemy == nil {
		return apperr.InvalidArgument("enemy cannot be nil")
	}
	if enemy.Ref == "" {
		return apperr.InvalidArgument("enemy ref cannot be empty")
	}

	data, err := json.Marshal(enemy)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal enemy '%s'", enemy.Ref)
	}
	_, err = es.store.db.ExecContext(ctx,
		`INSERT INTO enemies (ref, document) VALUES (?, ?)
		 ON CONFLICT (ref) DO UPDATE SET document = excluded.document`,
		enemy.Ref, string(data))
	if err != nil {
		return apperr.Wrapf(err, "failed to store enemy '%s'", enemy.Ref)
	}
	return nil
}

func (es *enemyStore) Get(ctx context.Context, ref string) (*combat.Enemy, error) {
	var doc string
	err := es.store.db.QueryRowContext(ctx,
		`SELECT document FROM enemies WHERE ref = ?`, ref).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("enemy not found: %s", ref)
		}
		return nil, apperr.Wrapf(err, "failed to get enemy '%s'", ref)
	}

	var enemy combat.Enemy
	if err := json.Unmarshal([]byte(doc), &enemy); err != nil {
		return nil, apperr.Wrapf(err, "failed to unmarshal enemy '%s'", ref)
	}
	return &enemy, nil
}

func (es *enemyStore) List(ctx context.Context) ([]*combat.Enemy, error) {
	rows, err := es.store.db.QueryContext(ctx,
		`SELECT document FROM enemies ORDER BY ref`)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list enemies")
	}
	defer rows.Close()

	var out []*combat.Enemy
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, apperr.Wrap(err, "failed to scan enemy row")
		}
		var enemy combat.Enemy
		if err := json.Unmarshal([]byte(doc), &enemy); err != nil {
			return nil, apperr.Wrap(err, "failed to unmarshal enemy row")
		}
		out = append(out, &enemy)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(err, "failed to iterate enemy rows")
	}
	return out, nil
}

func (es *enemyStore) Delete(ctx context.Context, ref string) error {
	_, err := es.store.db.ExecContext(ctx, `DELETE FROM enemies WHERE ref = ?`, ref)
	if err != nil {
		return apperr.Wrapf(err, "failed to delete enemy '%s'", ref)
	}
	return nil
}

// questionStore adapts the catalog to questions.Repository
type questionStore struct {
	store *Store
}

// Questions returns the question repository view of the catalog
func (s *Store) Questions() questions.Repository {
	return &questionStore{store: s}
}

func (qs *questionStore) Create(ctx context.Context, question *quiz.Question) error {
	if question == nil {
		return apperr.InvalidArgument("question cannot be nil")
	}
	if question.ID == "" {
		return apperr.InvalidArgument("question id cannot be empty")
	}

	data, err := json.Marshal(question)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal question '%s'", question.ID)
	}
	_, err = qs.store.db.ExecContext(ctx,
		`INSERT INTO questions (id, action_type, document) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET action_type = excluded.action_type, document = excluded.document`,
		question.ID, question.ActionType, string(data))
	if err != nil {
		return apperr.Wrapf(err, "failed to store question '%s'", question.ID)
	}
	return nil
}

func (qs *questionStore) Get(ctx context.Context, id string) (*quiz.Question, error) {
	var doc string
	err := qs.store.db.QueryRowContext(ctx,
		`SELECT document FROM questions WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("question not found: %s", id)
		}
		return nil, apperr.Wrapf(err, "failed to get question '%s'", id)
	}

	var question quiz.Question
	if err := json.Unmarshal([]byte(doc), &question); err != nil {
		return nil, apperr.Wrapf(err, "failed to unmarshal question '%s'", id)
	}
	return &question, nil
}

func (qs *questionStore) GetRandom(ctx context.Context, actionType string) (*quiz.Question, error) {
	query := `SELECT document FROM questions`
	args := []any{}
	if actionType != "" {
		query += ` WHERE action_type = ?`
		args = append(args, actionType)
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	var doc string
	err := qs.store.db.QueryRowContext(ctx, query, args...).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("no questions available for action type '%s'", actionType)
		}
		return nil, apperr.Wrap(err, "failed to pick random question")
	}

	var question quiz.Question
	if err := json.Unmarshal([]byte(doc), &question); err != nil {
		return nil, apperr.Wrap(err, "failed to unmarshal question row")
	}
	return &question, nil
}

func (qs *questionStore) List(ctx context.Context) ([]*quiz.Question, error) {
	rows, err := qs.store.db.QueryContext(ctx,
		`SELECT document FROM questions ORDER BY id`)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list questions")
	}
	defer rows.Close()

	var out []*quiz.Question
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, apperr.Wrap(err, "failed to scan question row")
		}
		var question quiz.Question
		if err := json.Unmarshal([]byte(doc), &question); err != nil {
			return nil, apperr.Wrap(err, "failed to unmarshal question row")
		}
		out = append(out, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(err, "failed to iterate question rows")
	}
	return out, nil
}

func (qs *questionStore) Delete(ctx context.Context, id string) error {
	_, err := qs.store.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrapf(err, "failed to delete question '%s'", id)
	}
	return nil
}
