package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mockprep/mockprep-go/internal/model"
)

// MySQL stores the admin catalogue in the tables created by
// migrations/001_admin.sql.
type MySQL struct {
	db  *sql.DB
	now func() time.Time
}

// NewMySQL creates a MySQL repository.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db, now: time.Now}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *MySQL) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *MySQL) newRecord() model.Record {
	now := r.timestamp()
	return model.Record{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// Categories

const categoryColumns = `id, name, description, created_at, updated_at`

func scanCategory(s scanner) (model.Category, error) {
	var c model.Category
	err := s.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCategories returns all categories ordered by creation time.
func (r *MySQL) ListCategories(ctx context.Context) ([]model.Category, error) {
	return queryAll(ctx, r.db, `SELECT `+categoryColumns+` FROM categories ORDER BY created_at ASC`, scanCategory)
}

// CreateCategory inserts a new category.
func (r *MySQL) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	c.Record = r.newRecord()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// UpdateCategory merges patch into the category with the given id.
func (r *MySQL) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (model.Category, error) {
	return updateRow(ctx, r, id,
		func(q querier) (model.Category, error) {
			return scanCategory(q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ? FOR UPDATE`, id))
		},
		patch.Apply,
		func(c *model.Category) *model.Record { return &c.Record },
		func(q querier, c model.Category) error {
			_, err := q.ExecContext(ctx,
				`UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
				c.Name, c.Description, c.UpdatedAt, c.ID,
			)
			return err
		},
	)
}

// DeleteCategory removes the category and its subcategories in one transaction.
func (r *MySQL) DeleteCategory(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM subcategories WHERE category_id = ?`, id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Subcategories

const subCategoryColumns = `id, category_id, name, description, created_at, updated_at`

func scanSubCategory(s scanner) (model.SubCategory, error) {
	var sc model.SubCategory
	err := s.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Description, &sc.CreatedAt, &sc.UpdatedAt)
	return sc, err
}

// ListSubCategories returns all subcategories ordered by creation time.
func (r *MySQL) ListSubCategories(ctx context.Context) ([]model.SubCategory, error) {
	return queryAll(ctx, r.db, `SELECT `+subCategoryColumns+` FROM subcategories ORDER BY created_at ASC`, scanSubCategory)
}

// ListSubCategoriesByCategory returns the subcategories of one category.
func (r *MySQL) ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]model.SubCategory, error) {
	return queryAll(ctx, r.db,
		`SELECT `+subCategoryColumns+` FROM subcategories WHERE category_id = ? ORDER BY created_at ASC`,
		scanSubCategory, categoryID,
	)
}

// CreateSubCategory inserts a new subcategory.
func (r *MySQL) CreateSubCategory(ctx context.Context, s model.SubCategory) (model.SubCategory, error) {
	s.Record = r.newRecord()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subcategories (`+subCategoryColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.CategoryID, s.Name, s.Description, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return model.SubCategory{}, err
	}
	return s, nil
}

// UpdateSubCategory merges patch into the subcategory with the given id.
func (r *MySQL) UpdateSubCategory(ctx context.Context, id string, patch model.SubCategoryPatch) (model.SubCategory, error) {
	return updateRow(ctx, r, id,
		func(q querier) (model.SubCategory, error) {
			return scanSubCategory(q.QueryRowContext(ctx, `SELECT `+subCategoryColumns+` FROM subcategories WHERE id = ? FOR UPDATE`, id))
		},
		patch.Apply,
		func(s *model.SubCategory) *model.Record { return &s.Record },
		func(q querier, s model.SubCategory) error {
			_, err := q.ExecContext(ctx,
				`UPDATE subcategories SET category_id = ?, name = ?, description = ?, updated_at = ? WHERE id = ?`,
				s.CategoryID, s.Name, s.Description, s.UpdatedAt, s.ID,
			)
			return err
		},
	)
}

// DeleteSubCategory removes the subcategory, reporting whether a row existed.
func (r *MySQL) DeleteSubCategory(ctx context.Context, id string) (bool, error) {
	return deleteRow(ctx, r.db, `DELETE FROM subcategories WHERE id = ?`, id)
}

// Interviews

const interviewColumns = `id, title, description, category_id, subcategory_id, difficulty,
	duration_minutes, price, questions, created_at, updated_at`

func scanInterview(s scanner) (model.Interview, error) {
	var (
		iv        model.Interview
		questions []byte
	)
	err := s.Scan(
		&iv.ID, &iv.Title, &iv.Description, &iv.CategoryID, &iv.SubCategoryID, &iv.Difficulty,
		&iv.DurationMinutes, &iv.Price, &questions, &iv.CreatedAt, &iv.UpdatedAt,
	)
	if err != nil {
		return iv, err
	}
	iv.Questions, err = decodeQuestions(questions)
	return iv, err
}

func encodeQuestions(qs []model.InterviewQuestion) ([]byte, error) {
	if qs == nil {
		qs = []model.InterviewQuestion{}
	}
	return json.Marshal(qs)
}

func decodeQuestions(raw []byte) ([]model.InterviewQuestion, error) {
	qs := []model.InterviewQuestion{}
	if len(raw) == 0 {
		return qs, nil
	}
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("decoding interview questions: %w", err)
	}
	return qs, nil
}

// ListInterviews returns all interviews ordered by creation time.
func (r *MySQL) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	return queryAll(ctx, r.db, `SELECT `+interviewColumns+` FROM interviews ORDER BY created_at ASC`, scanInterview)
}

// CreateInterview inserts a new interview.
func (r *MySQL) CreateInterview(ctx context.Context, iv model.Interview) (model.Interview, error) {
	iv.Record = r.newRecord()
	iv.AssignQuestionIDs()
	questions, err := encodeQuestions(iv.Questions)
	if err != nil {
		return model.Interview{}, err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO interviews (`+interviewColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		iv.ID, iv.Title, iv.Description, iv.CategoryID, iv.SubCategoryID, iv.Difficulty,
		iv.DurationMinutes, iv.Price, questions, iv.CreatedAt, iv.UpdatedAt,
	)
	if err != nil {
		return model.Interview{}, err
	}
	return iv, nil
}

// UpdateInterview merges patch into the interview with the given id.
func (r *MySQL) UpdateInterview(ctx context.Context, id string, patch model.InterviewPatch) (model.Interview, error) {
	return updateRow(ctx, r, id,
		func(q querier) (model.Interview, error) {
			return scanInterview(q.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = ? FOR UPDATE`, id))
		},
		func(iv *model.Interview) {
			patch.Apply(iv)
			iv.AssignQuestionIDs()
		},
		func(iv *model.Interview) *model.Record { return &iv.Record },
		func(q querier, iv model.Interview) error {
			questions, err := encodeQuestions(iv.Questions)
			if err != nil {
				return err
			}
			_, err = q.ExecContext(ctx,
				`UPDATE interviews SET title = ?, description = ?, category_id = ?, subcategory_id = ?,
					difficulty = ?, duration_minutes = ?, price = ?, questions = ?, updated_at = ?
				WHERE id = ?`,
				iv.Title, iv.Description, iv.CategoryID, iv.SubCategoryID,
				iv.Difficulty, iv.DurationMinutes, iv.Price, questions, iv.UpdatedAt, iv.ID,
			)
			return err
		},
	)
}

// DeleteInterview removes the interview, reporting whether a row existed.
func (r *MySQL) DeleteInterview(ctx context.Context, id string) (bool, error) {
	return deleteRow(ctx, r.db, `DELETE FROM interviews WHERE id = ?`, id)
}

// HR contacts

const hrColumns = `id, name, email, phone, company, designation, created_at, updated_at`

func scanHR(s scanner) (model.HR, error) {
	var h model.HR
	err := s.Scan(&h.ID, &h.Name, &h.Email, &h.Phone, &h.Company, &h.Designation, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// ListHRs returns all HR contacts ordered by creation time.
func (r *MySQL) ListHRs(ctx context.Context) ([]model.HR, error) {
	return queryAll(ctx, r.db, `SELECT `+hrColumns+` FROM hrs ORDER BY created_at ASC`, scanHR)
}

// CreateHR inserts a new HR contact.
func (r *MySQL) CreateHR(ctx context.Context, h model.HR) (model.HR, error) {
	h.Record = r.newRecord()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hrs (`+hrColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.Email, h.Phone, h.Company, h.Designation, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return model.HR{}, err
	}
	return h, nil
}

// UpdateHR merges patch into the HR contact with the given id.
func (r *MySQL) UpdateHR(ctx context.Context, id string, patch model.HRPatch) (model.HR, error) {
	return updateRow(ctx, r, id,
		func(q querier) (model.HR, error) {
			return scanHR(q.QueryRowContext(ctx, `SELECT `+hrColumns+` FROM hrs WHERE id = ? FOR UPDATE`, id))
		},
		patch.Apply,
		func(h *model.HR) *model.Record { return &h.Record },
		func(q querier, h model.HR) error {
			_, err := q.ExecContext(ctx,
				`UPDATE hrs SET name = ?, email = ?, phone = ?, company = ?, designation = ?, updated_at = ? WHERE id = ?`,
				h.Name, h.Email, h.Phone, h.Company, h.Designation, h.UpdatedAt, h.ID,
			)
			return err
		},
	)
}

// DeleteHR removes the HR contact, reporting whether a row existed.
func (r *MySQL) DeleteHR(ctx context.Context, id string) (bool, error) {
	return deleteRow(ctx, r.db, `DELETE FROM hrs WHERE id = ?`, id)
}

// Experts

const expertColumns = `id, name, email, phone, expertise, experience_years, bio, price, created_at, updated_at`

func scanExpert(s scanner) (model.Expert, error) {
	var e model.Expert
	err := s.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Expertise, &e.ExperienceYears, &e.Bio, &e.Price, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// ListExperts returns all experts ordered by creation time.
func (r *MySQL) ListExperts(ctx context.Context) ([]model.Expert, error) {
	return queryAll(ctx, r.db, `SELECT `+expertColumns+` FROM experts ORDER BY created_at ASC`, scanExpert)
}

// CreateExpert inserts a new expert.
func (r *MySQL) CreateExpert(ctx context.Context, e model.Expert) (model.Expert, error) {
	e.Record = r.newRecord()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO experts (`+expertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Email, e.Phone, e.Expertise, e.ExperienceYears, e.Bio, e.Price, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return model.Expert{}, err
	}
	return e, nil
}

// UpdateExpert merges patch into the expert with the given id.
func (r *MySQL) UpdateExpert(ctx context.Context, id string, patch model.ExpertPatch) (model.Expert, error) {
	return updateRow(ctx, r, id,
		func(q querier) (model.Expert, error) {
			return scanExpert(q.QueryRowContext(ctx, `SELECT `+expertColumns+` FROM experts WHERE id = ? FOR UPDATE`, id))
		},
		patch.Apply,
		func(e *model.Expert) *model.Record { return &e.Record },
		func(q querier, e model.Expert) error {
			_, err := q.ExecContext(ctx,
				`UPDATE experts SET name = ?, email = ?, phone = ?, expertise = ?, experience_years = ?,
					bio = ?, price = ?, updated_at = ?
				WHERE id = ?`,
				e.Name, e.Email, e.Phone, e.Expertise, e.ExperienceYears, e.Bio, e.Price, e.UpdatedAt, e.ID,
			)
			return err
		},
	)
}

// DeleteExpert removes the expert, reporting whether a row existed.
func (r *MySQL) DeleteExpert(ctx context.Context, id string) (bool, error) {
	return deleteRow(ctx, r.db, `DELETE FROM experts WHERE id = ?`, id)
}

func queryAll[T any](ctx context.Context, q querier, query string, scan func(scanner) (T, error), args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// updateRow locks the row, applies the patch and writes it back. The id and
// creation time never change; updated_at always moves forward.
func updateRow[T any](
	ctx context.Context,
	r *MySQL,
	id string,
	get func(querier) (T, error),
	apply func(*T),
	record func(*T) *model.Record,
	save func(querier, T) error,
) (T, error) {
	var zero T
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	item, err := get(tx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	rec := record(&item)
	created, prev := rec.CreatedAt, rec.UpdatedAt
	apply(&item)
	rec.ID = id
	rec.CreatedAt = created
	rec.UpdatedAt = r.timestamp()
	if !rec.UpdatedAt.After(prev) {
		rec.UpdatedAt = prev.Add(time.Millisecond)
	}

	if err := save(tx, item); err != nil {
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return item, nil
}

func deleteRow(ctx context.Context, q querier, query, id string) (bool, error) {
	res, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
