package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/coursereg/coursereg-go/internal/model"
)

const courseColumns = `id, code, title, description, credits, instructor, schedule, capacity, enrolled`

// MySQLCourseRepository stores the catalog in MySQL.
type MySQLCourseRepository struct {
	db *sql.DB
}

func NewMySQLCourseRepository(db *sql.DB) *MySQLCourseRepository {
	return &MySQLCourseRepository{db: db}
}

func (r *MySQLCourseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n)
	return n, err
}

func (r *MySQLCourseRepository) InsertMany(ctx context.Context, courses []model.Course) error {
	query := `INSERT INTO courses (` + courseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return withTx(ctx, r.db, func(tx dbtx) error {
		for _, c := range courses {
			_, err := tx.ExecContext(ctx, query,
				uuid.NewString(), c.Code, c.Title, c.Description, c.Credits, c.Instructor, c.Schedule, c.Capacity, c.Enrolled,
			)
			if err != nil {
				if mysqlErrorNumber(err) == mysqlDuplicateEntry {
					return ErrDuplicateCode
				}
				return err
			}
		}
		return nil
	})
}

func (r *MySQLCourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Title, &c.Description, &c.Credits, &c.Instructor, &c.Schedule, &c.Capacity, &c.Enrolled,
		); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}

	return courses, rows.Err()
}

func (r *MySQLCourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	c := &model.Course{}
	err := r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id).Scan(
		&c.ID, &c.Code, &c.Title, &c.Description, &c.Credits, &c.Instructor, &c.Schedule, &c.Capacity, &c.Enrolled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *MySQLCourseRepository) Save(ctx context.Context, course *model.Course) error {
	_, err := r.db.ExecContext(ctx, `UPDATE courses SET enrolled = ? WHERE id = ?`, course.Enrolled, course.ID)
	return err
}

func (r *MySQLCourseRepository) ReserveSeat(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE courses SET enrolled = enrolled + 1 WHERE id = ? AND enrolled < capacity`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCourseNotFound
	}
	return ErrNoSeatsLeft
}

func (r *MySQLCourseRepository) ReleaseSeat(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE courses SET enrolled = enrolled - 1 WHERE id = ? AND enrolled > 0`, id)
	return err
}

func (r *MySQLCourseRepository) exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
