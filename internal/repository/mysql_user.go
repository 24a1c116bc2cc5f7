package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/coursereg/coursereg-go/internal/model"
)

// MySQLUserRepository stores users in MySQL. Course lists live in
// user_courses, ordered by insertion.
type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, phone, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query, id, user.Username, user.Email, user.Phone, user.PasswordHash, now, now)
	if err != nil {
		if mysqlErrorNumber(err) == mysqlDuplicateEntry {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = id
	user.RegisteredCourses = []string{}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *MySQLUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, username, email, phone, password_hash, created_at, updated_at FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, username, email, phone, password_hash, created_at, updated_at FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

func (r *MySQLUserRepository) Save(ctx context.Context, user *model.User) error {
	return withTx(ctx, r.db, func(tx dbtx) error {
		result, err := tx.ExecContext(ctx, `UPDATE users SET updated_at = ? WHERE id = ?`, time.Now().UTC(), user.ID)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrUserNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_courses WHERE user_id = ?`, user.ID); err != nil {
			return err
		}
		for _, courseID := range user.RegisteredCourses {
			if _, err := tx.ExecContext(ctx, `INSERT INTO user_courses (user_id, course_id) VALUES (?, ?)`, user.ID, courseID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MySQLUserRepository) AddCourse(ctx context.Context, userID, courseID string, unique bool) error {
	var (
		result sql.Result
		err    error
	)
	if unique {
		query := `INSERT INTO user_courses (user_id, course_id)
			SELECT ?, ? FROM DUAL
			WHERE NOT EXISTS (SELECT 1 FROM user_courses WHERE user_id = ? AND course_id = ?)`
		result, err = r.db.ExecContext(ctx, query, userID, courseID, userID, courseID)
	} else {
		result, err = r.db.ExecContext(ctx, `INSERT INTO user_courses (user_id, course_id) VALUES (?, ?)`, userID, courseID)
	}
	if err != nil {
		if mysqlErrorNumber(err) == mysqlForeignKeyFails {
			return ErrUserNotFound
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyEnrolled
	}
	return nil
}

func (r *MySQLUserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	courses, err := r.courseIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.RegisteredCourses = courses

	return user, nil
}

func (r *MySQLUserRepository) courseIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT course_id FROM user_courses WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
