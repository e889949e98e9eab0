// Package repository stores the admin demo catalogue: categories,
// subcategories, interviews, HR contacts and experts.
//
// Three implementations share the same contract: Local (durable key/value
// store, one JSON array per collection), MySQL, and Remote (the admin API).
package repository

import (
	"context"
	"errors"

	"github.com/mockprep/mockprep-go/internal/model"
)

// ErrNotFound is returned when updating a record that does not exist.
var ErrNotFound = errors.New("record not found")

// CategoryRepository manages interview categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (model.Category, error)
	// DeleteCategory also removes the category's subcategories.
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

// SubCategoryRepository manages subcategories, each owned by a category.
type SubCategoryRepository interface {
	ListSubCategories(ctx context.Context) ([]model.SubCategory, error)
	ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]model.SubCategory, error)
	CreateSubCategory(ctx context.Context, s model.SubCategory) (model.SubCategory, error)
	UpdateSubCategory(ctx context.Context, id string, patch model.SubCategoryPatch) (model.SubCategory, error)
	DeleteSubCategory(ctx context.Context, id string) (bool, error)
}

// InterviewRepository manages mock interview templates and their questions.
type InterviewRepository interface {
	ListInterviews(ctx context.Context) ([]model.Interview, error)
	CreateInterview(ctx context.Context, iv model.Interview) (model.Interview, error)
	UpdateInterview(ctx context.Context, id string, patch model.InterviewPatch) (model.Interview, error)
	DeleteInterview(ctx context.Context, id string) (bool, error)
}

// HRRepository manages HR contacts.
type HRRepository interface {
	ListHRs(ctx context.Context) ([]model.HR, error)
	CreateHR(ctx context.Context, h model.HR) (model.HR, error)
	UpdateHR(ctx context.Context, id string, patch model.HRPatch) (model.HR, error)
	DeleteHR(ctx context.Context, id string) (bool, error)
}

// ExpertRepository manages the demo expert directory.
type ExpertRepository interface {
	ListExperts(ctx context.Context) ([]model.Expert, error)
	CreateExpert(ctx context.Context, e model.Expert) (model.Expert, error)
	UpdateExpert(ctx context.Context, id string, patch model.ExpertPatch) (model.Expert, error)
	DeleteExpert(ctx context.Context, id string) (bool, error)
}

// Store is the full admin catalogue.
type Store interface {
	CategoryRepository
	SubCategoryRepository
	InterviewRepository
	HRRepository
	ExpertRepository
}
