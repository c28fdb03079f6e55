package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sun1tar/taskmanager/internal/models"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore открывает соединение, проверяет его и применяет миграции
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err = Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresStoreFromDB(db), nil
}

// NewPostgresStoreFromDB оборачивает уже открытый *sql.DB (миграции не запускаются)
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Users() UserRepository { return pgUsers{s} }
func (s *PostgresStore) Lists() ListRepository { return pgLists{s} }
func (s *PostgresStore) Tasks() TaskRepository { return pgTasks{s} }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}

func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}

func affectedOrNotFound(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- users ------------------------------------------------------------------

type pgUsers struct{ s *PostgresStore }

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapPgError(err)
	}
	return u, nil
}

func (r pgUsers) Create(ctx context.Context, user *models.User) error {
	now := r.s.now().UTC()
	id := "u_" + uuid.NewString()

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.s.db.ExecContext(ctx, query, id, user.Username, user.Email, user.PasswordHash, now, now); err != nil {
		return mapPgError(err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r pgUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.s.db.QueryRowContext(ctx, query, id))
}

func (r pgUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.s.db.QueryRowContext(ctx, query, email))
}

func (r pgUsers) UpdateProfile(ctx context.Context, id string, username, email *string) (*models.User, error) {
	query := `UPDATE users SET username = COALESCE($2, username), email = COALESCE($3, email), updated_at = $4
              WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.s.db.QueryRowContext(ctx, query, id, username, email, r.s.now().UTC()))
}

func (r pgUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	result, err := r.s.db.ExecContext(ctx, query, id, passwordHash, r.s.now().UTC())
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r pgUsers) Delete(ctx context.Context, id string) error {
	result, err := r.s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

// --- lists ------------------------------------------------------------------

type pgLists struct{ s *PostgresStore }

const listColumns = `id, name, user_id, created_at, updated_at`

func scanList(row interface{ Scan(...interface{}) error }) (*models.List, error) {
	l := &models.List{}
	if err := row.Scan(&l.ID, &l.Name, &l.UserID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, mapPgError(err)
	}
	return l, nil
}

func (r pgLists) List(ctx context.Context, ownerID string) ([]*models.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`
	rows, err := r.s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []*models.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r pgLists) Get(ctx context.Context, ownerID, id string) (*models.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE id = $1 AND user_id = $2`
	return scanList(r.s.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r pgLists) Create(ctx context.Context, list *models.List) error {
	now := r.s.now().UTC()
	id := "l_" + uuid.NewString()

	query := `INSERT INTO lists (id, name, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.s.db.ExecContext(ctx, query, id, list.Name, list.UserID, now, now); err != nil {
		return mapPgError(err)
	}

	list.ID = id
	list.CreatedAt = now
	list.UpdatedAt = now
	return nil
}

func (r pgLists) Rename(ctx context.Context, ownerID, id, name string) (*models.List, error) {
	query := `UPDATE lists SET name = $3, updated_at = $4 WHERE id = $1 AND user_id = $2 RETURNING ` + listColumns
	return scanList(r.s.db.QueryRowContext(ctx, query, id, ownerID, name, r.s.now().UTC()))
}

func (r pgLists) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

// --- tasks ------------------------------------------------------------------

type pgTasks struct{ s *PostgresStore }

const taskColumns = `id, title, description, starred, remind_at, list_id, user_id, created_at, updated_at`

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	t := &models.Task{}
	var remindAt sql.NullTime
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Starred, &remindAt,
		&t.ListID, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapPgError(err)
	}
	if remindAt.Valid {
		at := remindAt.Time
		t.RemindAt = &at
	}
	return t, nil
}

func (r pgTasks) query(ctx context.Context, query string, args ...interface{}) ([]*models.Task, error) {
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r pgTasks) List(ctx context.Context, ownerID, listID string) ([]*models.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks
              WHERE user_id = $1 AND list_id = $2 ORDER BY created_at DESC, seq DESC`, ownerID, listID)
}

func (r pgTasks) Starred(ctx context.Context, ownerID string) ([]*models.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks
              WHERE user_id = $1 AND starred ORDER BY created_at DESC, seq DESC`, ownerID)
}

func (r pgTasks) Create(ctx context.Context, task *models.Task) error {
	now := r.s.now().UTC()
	id := "t_" + uuid.NewString()

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.s.db.ExecContext(ctx, query,
		id, task.Title, task.Description, task.Starred, task.RemindAt, task.ListID, task.UserID, now, now)
	if err != nil {
		return mapPgError(err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r pgTasks) Update(ctx context.Context, ownerID, listID, id string, patch models.TaskPatch) (*models.Task, error) {
	query := `UPDATE tasks SET
                title = COALESCE($4, title),
                description = COALESCE($5, description),
                starred = COALESCE($6, starred),
                remind_at = CASE WHEN $7 THEN NULL ELSE COALESCE($8, remind_at) END,
                updated_at = $9
              WHERE id = $1 AND user_id = $2 AND list_id = $3
              RETURNING ` + taskColumns
	row := r.s.db.QueryRowContext(ctx, query, id, ownerID, listID,
		patch.Title, patch.Description, patch.Starred, patch.ClearRemindAt, patch.RemindAt, r.s.now().UTC())
	return scanTask(row)
}

func (r pgTasks) Delete(ctx context.Context, ownerID, listID, id string) error {
	result, err := r.s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2 AND list_id = $3`, id, ownerID, listID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r pgTasks) DeleteByList(ctx context.Context, ownerID, listID string) (int64, error) {
	result, err := r.s.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND list_id = $2`, ownerID, listID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
