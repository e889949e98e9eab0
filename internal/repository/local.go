package repository

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/mockprep/mockprep-go/internal/localstore"
	"github.com/mockprep/mockprep-go/internal/model"
)

// Keys under which Local keeps each collection.
const (
	KeyCategories    = "admin_categories"
	KeySubCategories = "admin_subcategories"
	KeyInterviews    = "admin_interviews"
	KeyHRs           = "admin_hrs"
	KeyExperts       = "admin_experts"
)

// collection describes one JSON array in the store. prepare, when set, runs
// after the record's id is known on create and update.
type collection[T any] struct {
	key     string
	seed    func() []T
	record  func(*T) *model.Record
	prepare func(*T)
}

var (
	categories    = collection[model.Category]{key: KeyCategories, seed: defaultCategories, record: func(c *model.Category) *model.Record { return &c.Record }}
	subCategories = collection[model.SubCategory]{key: KeySubCategories, seed: defaultSubCategories, record: func(s *model.SubCategory) *model.Record { return &s.Record }}
	interviews    = collection[model.Interview]{key: KeyInterviews, record: func(iv *model.Interview) *model.Record { return &iv.Record }, prepare: (*model.Interview).AssignQuestionIDs}
	hrs           = collection[model.HR]{key: KeyHRs, record: func(h *model.HR) *model.Record { return &h.Record }}
	experts       = collection[model.Expert]{key: KeyExperts, record: func(e *model.Expert) *model.Record { return &e.Record }}
)

// Local keeps the catalogue in a localstore.Store. Writes rewrite the whole
// collection; the last writer wins.
type Local struct {
	mu     sync.Mutex
	store  localstore.Store
	now    func() time.Time
	lastID int64
}

// LocalOption configures a Local repository.
type LocalOption func(*Local)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LocalOption {
	return func(l *Local) { l.now = now }
}

// NewLocal creates a Local repository over store.
func NewLocal(store localstore.Store, opts ...LocalOption) *Local {
	l := &Local{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ListCategories returns all categories. Seeded defaults are returned until the first write.
func (l *Local) ListCategories(ctx context.Context) ([]model.Category, error) {
	return list(l, categories)
}

// CreateCategory stores a new category with a fresh id and timestamps.
func (l *Local) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	return create(l, categories, c)
}

// UpdateCategory merges patch into the category with the given id. It returns ErrNotFound if there is none.
func (l *Local) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (model.Category, error) {
	return update(l, categories, id, patch.Apply)
}

// DeleteCategory removes the category and its subcategories. It reports false and writes nothing when the id is unknown.
func (l *Local) DeleteCategory(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := load(l, categories)
	if err != nil {
		return false, err
	}
	kept := slices.DeleteFunc(items, func(c model.Category) bool { return c.ID == id })
	if len(kept) == len(items) {
		// DeleteFunc only shrinks the slice when something matched.
		return false, nil
	}

	subs, err := load(l, subCategories)
	if err != nil {
		return false, err
	}
	subs = slices.DeleteFunc(subs, func(s model.SubCategory) bool { return s.CategoryID == id })

	if err := localstore.SetJSON(l.store, categories.key, kept); err != nil {
		return false, err
	}
	if err := localstore.SetJSON(l.store, subCategories.key, subs); err != nil {
		return false, err
	}
	return true, nil
}

// ListSubCategories returns all subcategories. Seeded defaults are returned until the first write.
func (l *Local) ListSubCategories(ctx context.Context) ([]model.SubCategory, error) {
	return list(l, subCategories)
}

// ListSubCategoriesByCategory returns the subcategories of one category.
func (l *Local) ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]model.SubCategory, error) {
	all, err := list(l, subCategories)
	if err != nil {
		return nil, err
	}
	out := make([]model.SubCategory, 0, len(all))
	for _, s := range all {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

// CreateSubCategory stores a new subcategory with a fresh id and timestamps.
func (l *Local) CreateSubCategory(ctx context.Context, s model.SubCategory) (model.SubCategory, error) {
	return create(l, subCategories, s)
}

// UpdateSubCategory merges patch into the subcategory with the given id. It returns ErrNotFound if there is none.
func (l *Local) UpdateSubCategory(ctx context.Context, id string, patch model.SubCategoryPatch) (model.SubCategory, error) {
	return update(l, subCategories, id, patch.Apply)
}

// DeleteSubCategory removes the subcategory. It reports false and writes nothing when the id is unknown.
func (l *Local) DeleteSubCategory(ctx context.Context, id string) (bool, error) {
	return remove(l, subCategories, id)
}

// ListInterviews returns all interviews.
func (l *Local) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	return list(l, interviews)
}

// CreateInterview stores a new interview with a fresh id and timestamps.
func (l *Local) CreateInterview(ctx context.Context, iv model.Interview) (model.Interview, error) {
	return create(l, interviews, iv)
}

// UpdateInterview merges patch into the interview with the given id. It returns ErrNotFound if there is none.
func (l *Local) UpdateInterview(ctx context.Context, id string, patch model.InterviewPatch) (model.Interview, error) {
	return update(l, interviews, id, patch.Apply)
}

// DeleteInterview removes the interview. It reports false and writes nothing when the id is unknown.
func (l *Local) DeleteInterview(ctx context.Context, id string) (bool, error) {
	return remove(l, interviews, id)
}

// ListHRs returns all HR contacts.
func (l *Local) ListHRs(ctx context.Context) ([]model.HR, error) {
	return list(l, hrs)
}

// CreateHR stores a new HR contact with a fresh id and timestamps.
func (l *Local) CreateHR(ctx context.Context, h model.HR) (model.HR, error) {
	return create(l, hrs, h)
}

// UpdateHR merges patch into the HR contact with the given id. It returns ErrNotFound if there is none.
func (l *Local) UpdateHR(ctx context.Context, id string, patch model.HRPatch) (model.HR, error) {
	return update(l, hrs, id, patch.Apply)
}

// DeleteHR removes the HR contact. It reports false and writes nothing when the id is unknown.
func (l *Local) DeleteHR(ctx context.Context, id string) (bool, error) {
	return remove(l, hrs, id)
}

// ListExperts returns all experts.
func (l *Local) ListExperts(ctx context.Context) ([]model.Expert, error) {
	return list(l, experts)
}

// CreateExpert stores a new expert with a fresh id and timestamps.
func (l *Local) CreateExpert(ctx context.Context, e model.Expert) (model.Expert, error) {
	return create(l, experts, e)
}

// UpdateExpert merges patch into the expert with the given id. It returns ErrNotFound if there is none.
func (l *Local) UpdateExpert(ctx context.Context, id string, patch model.ExpertPatch) (model.Expert, error) {
	return update(l, experts, id, patch.Apply)
}

// DeleteExpert removes the expert. It reports false and writes nothing when the id is unknown.
func (l *Local) DeleteExpert(ctx context.Context, id string) (bool, error) {
	return remove(l, experts, id)
}

// load reads a collection. A missing key yields the seed (or an empty slice).
// Callers hold l.mu.
func load[T any](l *Local, c collection[T]) ([]T, error) {
	var items []T
	ok, err := localstore.GetJSON(l.store, c.key, &items)
	if err != nil {
		return nil, err
	}
	if !ok && c.seed != nil {
		items = c.seed()
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func list[T any](l *Local, c collection[T]) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return load(l, c)
}

func create[T any](l *Local, c collection[T], item T) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	items, err := load(l, c)
	if err != nil {
		return zero, err
	}

	taken := make(map[string]bool, len(items))
	for i := range items {
		taken[c.record(&items[i]).ID] = true
	}

	rec := c.record(&item)
	rec.ID = l.newID(taken)
	now := l.stamp(time.Time{})
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if c.prepare != nil {
		c.prepare(&item)
	}

	items = append(items, item)
	if err := localstore.SetJSON(l.store, c.key, items); err != nil {
		return zero, err
	}
	return item, nil
}

func update[T any](l *Local, c collection[T], id string, apply func(*T)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	items, err := load(l, c)
	if err != nil {
		return zero, err
	}

	for i := range items {
		rec := c.record(&items[i])
		if rec.ID != id {
			continue
		}
		created := rec.CreatedAt
		apply(&items[i])
		rec.ID = id
		rec.CreatedAt = created
		rec.UpdatedAt = l.stamp(rec.UpdatedAt)
		if c.prepare != nil {
			c.prepare(&items[i])
		}

		if err := localstore.SetJSON(l.store, c.key, items); err != nil {
			return zero, err
		}
		return items[i], nil
	}
	return zero, ErrNotFound
}

func remove[T any](l *Local, c collection[T], id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := load(l, c)
	if err != nil {
		return false, err
	}
	n := len(items)
	items = slices.DeleteFunc(items, func(item T) bool { return c.record(&item).ID == id })
	if len(items) == n {
		return false, nil
	}
	return true, localstore.SetJSON(l.store, c.key, items)
}

// newID returns a millisecond timestamp id that is neither taken nor smaller
// than one already handed out by this repository.
func (l *Local) newID(taken map[string]bool) string {
	n := l.now().UnixMilli()
	if n <= l.lastID {
		n = l.lastID + 1
	}
	for taken[strconv.FormatInt(n, 10)] {
		n++
	}
	l.lastID = n
	return strconv.FormatInt(n, 10)
}

// stamp returns the current time, strictly after prev.
func (l *Local) stamp(prev time.Time) time.Time {
	now := l.now().UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

var seedTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func defaultCategories() []model.Category {
	rec := func(id string) model.Record { return model.Record{ID: id, CreatedAt: seedTime, UpdatedAt: seedTime} }
	return []model.Category{
		{Record: rec("1"), Name: "Software Engineering", Description: "Coding, system design and behavioural rounds"},
		{Record: rec("2"), Name: "Data Science", Description: "Statistics, machine learning and analytics"},
		{Record: rec("3"), Name: "Product Management", Description: "Product sense, execution and strategy"},
	}
}

func defaultSubCategories() []model.SubCategory {
	rec := func(id string) model.Record { return model.Record{ID: id, CreatedAt: seedTime, UpdatedAt: seedTime} }
	return []model.SubCategory{
		{Record: rec("1"), CategoryID: "1", Name: "Frontend"},
		{Record: rec("2"), CategoryID: "1", Name: "Backend"},
		{Record: rec("3"), CategoryID: "2", Name: "Machine Learning"},
		{Record: rec("4"), CategoryID: "3", Name: "Product Sense"},
	}
}
