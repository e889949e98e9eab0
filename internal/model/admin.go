package model

import (
	"fmt"
	"time"
)

// Record carries the identity and timestamps shared by all admin entities.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups interviews and subcategories in the admin catalogue.
type Category struct {
	Record
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubCategory belongs to a Category through CategoryID.
type SubCategory struct {
	Record
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// InterviewQuestion is embedded in an Interview.
type InterviewQuestion struct {
	ID             string `json:"id"`
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expectedAnswer,omitempty"`
	Type           string `json:"type,omitempty"`
}

// Interview is a mock interview template with its price.
type Interview struct {
	Record
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	CategoryID      string              `json:"categoryId"`
	SubCategoryID   string              `json:"subCategoryId,omitempty"`
	Difficulty      string              `json:"difficulty"`
	DurationMinutes int                 `json:"durationMinutes"`
	Price           float64             `json:"price"`
	Questions       []InterviewQuestion `json:"questions"`
}

// AssignQuestionIDs gives every question without an id the lowest
// "<interview id>-q<n>" not already taken by another question.
func (iv *Interview) AssignQuestionIDs() {
	taken := make(map[string]bool, len(iv.Questions))
	for _, q := range iv.Questions {
		if q.ID != "" {
			taken[q.ID] = true
		}
	}

	n := 1
	for i := range iv.Questions {
		if iv.Questions[i].ID != "" {
			continue
		}
		id := fmt.Sprintf("%s-q%d", iv.ID, n)
		for taken[id] {
			n++
			id = fmt.Sprintf("%s-q%d", iv.ID, n)
		}
		taken[id] = true
		iv.Questions[i].ID = id
	}
}

// HR is an HR contact record.
type HR struct {
	Record
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Designation string `json:"designation"`
}

// Expert is an admin-managed expert record. It is not the backend expert profile.
type Expert struct {
	Record
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Expertise       string  `json:"expertise"`
	ExperienceYears int     `json:"experienceYears"`
	Bio             string  `json:"bio"`
	Price           float64 `json:"price"`
}

// Patch types carry partial updates. A nil pointer leaves the field untouched.

type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type SubCategoryPatch struct {
	CategoryID  *string `json:"categoryId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type InterviewPatch struct {
	Title           *string              `json:"title"`
	Description     *string              `json:"description"`
	CategoryID      *string              `json:"categoryId"`
	SubCategoryID   *string              `json:"subCategoryId"`
	Difficulty      *string              `json:"difficulty"`
	DurationMinutes *int                 `json:"durationMinutes"`
	Price           *float64             `json:"price"`
	Questions       *[]InterviewQuestion `json:"questions"`
}

type HRPatch struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Company     *string `json:"company"`
	Designation *string `json:"designation"`
}

type ExpertPatch struct {
	Name            *string  `json:"name"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	Expertise       *string  `json:"expertise"`
	ExperienceYears *int     `json:"experienceYears"`
	Bio             *string  `json:"bio"`
	Price           *float64 `json:"price"`
}

// Apply merges the non-nil fields of p into c.
func (p CategoryPatch) Apply(c *Category) {
	setString(&c.Name, p.Name)
	setString(&c.Description, p.Description)
}

// Apply merges the non-nil fields of p into s.
func (p SubCategoryPatch) Apply(s *SubCategory) {
	setString(&s.CategoryID, p.CategoryID)
	setString(&s.Name, p.Name)
	setString(&s.Description, p.Description)
}

// Apply merges the non-nil fields of p into iv.
func (p InterviewPatch) Apply(iv *Interview) {
	setString(&iv.Title, p.Title)
	setString(&iv.Description, p.Description)
	setString(&iv.CategoryID, p.CategoryID)
	setString(&iv.SubCategoryID, p.SubCategoryID)
	setString(&iv.Difficulty, p.Difficulty)
	if p.DurationMinutes != nil {
		iv.DurationMinutes = *p.DurationMinutes
	}
	if p.Price != nil {
		iv.Price = *p.Price
	}
	if p.Questions != nil {
		iv.Questions = append([]InterviewQuestion(nil), (*p.Questions)...)
	}
}

// Apply merges the non-nil fields of p into h.
func (p HRPatch) Apply(h *HR) {
	setString(&h.Name, p.Name)
	setString(&h.Email, p.Email)
	setString(&h.Phone, p.Phone)
	setString(&h.Company, p.Company)
	setString(&h.Designation, p.Designation)
}

// Apply merges the non-nil fields of p into e.
func (p ExpertPatch) Apply(e *Expert) {
	setString(&e.Name, p.Name)
	setString(&e.Email, p.Email)
	setString(&e.Phone, p.Phone)
	setString(&e.Expertise, p.Expertise)
	setString(&e.Bio, p.Bio)
	if p.ExperienceYears != nil {
		e.ExperienceYears = *p.ExperienceYears
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
