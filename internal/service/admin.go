package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mockprep/mockprep-go/internal/model"
	"github.com/mockprep/mockprep-go/internal/repository"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrTitleRequired      = errors.New("title is required")
	ErrCategoryRequired   = errors.New("categoryId is required")
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrNegativeDuration   = errors.New("duration must not be negative")
	ErrNegativeExperience = errors.New("experience must not be negative")
	ErrRecordNotFound     = errors.New("record not found")
)

// AdminService validates admin catalogue changes before they reach the store.
type AdminService struct {
	store repository.Store
}

// NewAdminService creates a new AdminService.
func NewAdminService(store repository.Store) *AdminService {
	return &AdminService{store: store}
}

// IsValidationError reports whether err is an input validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrCategoryRequired) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrNegativePrice) ||
		errors.Is(err, ErrNegativeDuration) ||
		errors.Is(err, ErrNegativeExperience)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func blankPtr(s *string) bool { return s != nil && blank(*s) }

// Categories

// ListCategories returns all categories.
func (s *AdminService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory validates and stores a new category.
func (s *AdminService) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if blank(c.Name) {
		return model.Category{}, ErrNameRequired
	}
	return s.store.CreateCategory(ctx, c)
}

// UpdateCategory validates patch and applies it to the category.
func (s *AdminService) UpdateCategory(ctx context.Context, id string, p model.CategoryPatch) (model.Category, error) {
	if blankPtr(p.Name) {
		return model.Category{}, ErrNameRequired
	}
	c, err := s.store.UpdateCategory(ctx, id, p)
	return c, mapNotFound(err)
}

// DeleteCategory removes the category and its subcategories.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	return deleted(s.store.DeleteCategory(ctx, id))
}

// Subcategories

// ListSubCategories returns all subcategories.
func (s *AdminService) ListSubCategories(ctx context.Context) ([]model.SubCategory, error) {
	return s.store.ListSubCategories(ctx)
}

// ListSubCategoriesByCategory returns the subcategories of one category.
func (s *AdminService) ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]model.SubCategory, error) {
	return s.store.ListSubCategoriesByCategory(ctx, categoryID)
}

// CreateSubCategory validates and stores a new subcategory.
func (s *AdminService) CreateSubCategory(ctx context.Context, sc model.SubCategory) (model.SubCategory, error) {
	if blank(sc.Name) {
		return model.SubCategory{}, ErrNameRequired
	}
	if blank(sc.CategoryID) {
		return model.SubCategory{}, ErrCategoryRequired
	}
	return s.store.CreateSubCategory(ctx, sc)
}

// UpdateSubCategory validates patch and applies it to the subcategory.
func (s *AdminService) UpdateSubCategory(ctx context.Context, id string, p model.SubCategoryPatch) (model.SubCategory, error) {
	if blankPtr(p.Name) {
		return model.SubCategory{}, ErrNameRequired
	}
	if blankPtr(p.CategoryID) {
		return model.SubCategory{}, ErrCategoryRequired
	}
	sc, err := s.store.UpdateSubCategory(ctx, id, p)
	return sc, mapNotFound(err)
}

// DeleteSubCategory removes the subcategory. It returns ErrRecordNotFound when the id is unknown.
func (s *AdminService) DeleteSubCategory(ctx context.Context, id string) error {
	return deleted(s.store.DeleteSubCategory(ctx, id))
}

// Interviews

// ListInterviews returns all interviews.
func (s *AdminService) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	return s.store.ListInterviews(ctx)
}

// CreateInterview validates and stores a new interview.
func (s *AdminService) CreateInterview(ctx context.Context, iv model.Interview) (model.Interview, error) {
	switch {
	case blank(iv.Title):
		return model.Interview{}, ErrTitleRequired
	case blank(iv.CategoryID):
		return model.Interview{}, ErrCategoryRequired
	case iv.Price < 0:
		return model.Interview{}, ErrNegativePrice
	case iv.DurationMinutes < 0:
		return model.Interview{}, ErrNegativeDuration
	}
	return s.store.CreateInterview(ctx, iv)
}

// UpdateInterview validates patch and applies it to the interview.
func (s *AdminService) UpdateInterview(ctx context.Context, id string, p model.InterviewPatch) (model.Interview, error) {
	switch {
	case blankPtr(p.Title):
		return model.Interview{}, ErrTitleRequired
	case blankPtr(p.CategoryID):
		return model.Interview{}, ErrCategoryRequired
	case p.Price != nil && *p.Price < 0:
		return model.Interview{}, ErrNegativePrice
	case p.DurationMinutes != nil && *p.DurationMinutes < 0:
		return model.Interview{}, ErrNegativeDuration
	}
	iv, err := s.store.UpdateInterview(ctx, id, p)
	return iv, mapNotFound(err)
}

// DeleteInterview removes the interview. It returns ErrRecordNotFound when the id is unknown.
func (s *AdminService) DeleteInterview(ctx context.Context, id string) error {
	return deleted(s.store.DeleteInterview(ctx, id))
}

// HR contacts

// ListHRs returns all HR contacts.
func (s *AdminService) ListHRs(ctx context.Context) ([]model.HR, error) {
	return s.store.ListHRs(ctx)
}

// CreateHR validates and stores a new HR contact.
func (s *AdminService) CreateHR(ctx context.Context, h model.HR) (model.HR, error) {
	if blank(h.Name) {
		return model.HR{}, ErrNameRequired
	}
	if blank(h.Email) {
		return model.HR{}, ErrEmailRequired
	}
	return s.store.CreateHR(ctx, h)
}

// UpdateHR validates patch and applies it to the HR contact.
func (s *AdminService) UpdateHR(ctx context.Context, id string, p model.HRPatch) (model.HR, error) {
	if blankPtr(p.Name) {
		return model.HR{}, ErrNameRequired
	}
	if blankPtr(p.Email) {
		return model.HR{}, ErrEmailRequired
	}
	h, err := s.store.UpdateHR(ctx, id, p)
	return h, mapNotFound(err)
}

// DeleteHR removes the HR contact. It returns ErrRecordNotFound when the id is unknown.
func (s *AdminService) DeleteHR(ctx context.Context, id string) error {
	return deleted(s.store.DeleteHR(ctx, id))
}

// Experts

// ListExperts returns all experts.
func (s *AdminService) ListExperts(ctx context.Context) ([]model.Expert, error) {
	return s.store.ListExperts(ctx)
}

// CreateExpert validates and stores a new expert.
func (s *AdminService) CreateExpert(ctx context.Context, e model.Expert) (model.Expert, error) {
	switch {
	case blank(e.Name):
		return model.Expert{}, ErrNameRequired
	case blank(e.Email):
		return model.Expert{}, ErrEmailRequired
	case e.Price < 0:
		return model.Expert{}, ErrNegativePrice
	case e.ExperienceYears < 0:
		return model.Expert{}, ErrNegativeExperience
	}
	return s.store.CreateExpert(ctx, e)
}

// UpdateExpert validates patch and applies it to the expert.
func (s *AdminService) UpdateExpert(ctx context.Context, id string, p model.ExpertPatch) (model.Expert, error) {
	switch {
	case blankPtr(p.Name):
		return model.Expert{}, ErrNameRequired
	case blankPtr(p.Email):
		return model.Expert{}, ErrEmailRequired
	case p.Price != nil && *p.Price < 0:
		return model.Expert{}, ErrNegativePrice
	case p.ExperienceYears != nil && *p.ExperienceYears < 0:
		return model.Expert{}, ErrNegativeExperience
	}
	e, err := s.store.UpdateExpert(ctx, id, p)
	return e, mapNotFound(err)
}

// DeleteExpert removes the expert. It returns ErrRecordNotFound when the id is unknown.
func (s *AdminService) DeleteExpert(ctx context.Context, id string) error {
	return deleted(s.store.DeleteExpert(ctx, id))
}

func deleted(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrRecordNotFound
	}
	return nil
}
