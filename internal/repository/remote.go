package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mockprep/mockprep-go/internal/apiclient"
	"github.com/mockprep/mockprep-go/internal/model"
)

// AdminPrefix is where the admin API serves the catalogue.
const AdminPrefix = "/api/admin"

// Remote reads and writes the catalogue through the admin API.
type Remote struct {
	client *apiclient.Client
}

// NewRemote creates a Remote repository. The client should carry an admin
// token, for example apiclient.StaticToken from AdminLogin.
func NewRemote(client *apiclient.Client) *Remote {
	return &Remote{client: client}
}

// AdminLogin exchanges admin credentials for a bearer token.
func AdminLogin(ctx context.Context, client *apiclient.Client, email, password string) (string, error) {
	var resp model.AdminLoginResponse
	err := client.Post(apiclient.NoRefresh(ctx), AdminPrefix+"/login",
		model.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apiclient.ErrEmptyToken
	}
	return resp.Token, nil
}

// ListCategories fetches all categories from the admin API.
func (r *Remote) ListCategories(ctx context.Context) ([]model.Category, error) {
	return remoteList[model.Category](ctx, r, "/categories")
}

// CreateCategory creates a category through the admin API.
func (r *Remote) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	return remoteCreate(ctx, r, "/categories", c)
}

// UpdateCategory updates a category through the admin API.
func (r *Remote) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (model.Category, error) {
	return remoteUpdate[model.Category](ctx, r, "/categories", id, patch)
}

// DeleteCategory deletes a category through the admin API. A 404 reports false.
func (r *Remote) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return r.remove(ctx, "/categories", id)
}

// ListSubCategories fetches all subcategories from the admin API.
func (r *Remote) ListSubCategories(ctx context.Context) ([]model.SubCategory, error) {
	return remoteList[model.SubCategory](ctx, r, "/subcategories")
}

// ListSubCategoriesByCategory fetches the subcategories of one category.
func (r *Remote) ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]model.SubCategory, error) {
	return remoteList[model.SubCategory](ctx, r, "/categories/"+url.PathEscape(categoryID)+"/subcategories")
}

// CreateSubCategory creates a subcategory through the admin API.
func (r *Remote) CreateSubCategory(ctx context.Context, s model.SubCategory) (model.SubCategory, error) {
	return remoteCreate(ctx, r, "/subcategories", s)
}

// UpdateSubCategory updates a subcategory through the admin API.
func (r *Remote) UpdateSubCategory(ctx context.Context, id string, patch model.SubCategoryPatch) (model.SubCategory, error) {
	return remoteUpdate[model.SubCategory](ctx, r, "/subcategories", id, patch)
}

// DeleteSubCategory deletes a subcategory through the admin API. A 404 reports false.
func (r *Remote) DeleteSubCategory(ctx context.Context, id string) (bool, error) {
	return r.remove(ctx, "/subcategories", id)
}

// ListInterviews fetches all interviews from the admin API.
func (r *Remote) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	return remoteList[model.Interview](ctx, r, "/interviews")
}

// CreateInterview creates a interview through the admin API.
func (r *Remote) CreateInterview(ctx context.Context, iv model.Interview) (model.Interview, error) {
	return remoteCreate(ctx, r, "/interviews", iv)
}

// UpdateInterview updates a interview through the admin API.
func (r *Remote) UpdateInterview(ctx context.Context, id string, patch model.InterviewPatch) (model.Interview, error) {
	return remoteUpdate[model.Interview](ctx, r, "/interviews", id, patch)
}

// DeleteInterview deletes a interview through the admin API. A 404 reports false.
func (r *Remote) DeleteInterview(ctx context.Context, id string) (bool, error) {
	return r.remove(ctx, "/interviews", id)
}

// ListHRs fetches all HR contacts from the admin API.
func (r *Remote) ListHRs(ctx context.Context) ([]model.HR, error) {
	return remoteList[model.HR](ctx, r, "/hrs")
}

// CreateHR creates a HR contact through the admin API.
func (r *Remote) CreateHR(ctx context.Context, h model.HR) (model.HR, error) {
	return remoteCreate(ctx, r, "/hrs", h)
}

// UpdateHR updates a HR contact through the admin API.
func (r *Remote) UpdateHR(ctx context.Context, id string, patch model.HRPatch) (model.HR, error) {
	return remoteUpdate[model.HR](ctx, r, "/hrs", id, patch)
}

// DeleteHR deletes a HR contact through the admin API. A 404 reports false.
func (r *Remote) DeleteHR(ctx context.Context, id string) (bool, error) {
	return r.remove(ctx, "/hrs", id)
}

// ListExperts fetches all experts from the admin API.
func (r *Remote) ListExperts(ctx context.Context) ([]model.Expert, error) {
	return remoteList[model.Expert](ctx, r, "/experts")
}

// CreateExpert creates a expert through the admin API.
func (r *Remote) CreateExpert(ctx context.Context, e model.Expert) (model.Expert, error) {
	return remoteCreate(ctx, r, "/experts", e)
}

// UpdateExpert updates a expert through the admin API.
func (r *Remote) UpdateExpert(ctx context.Context, id string, patch model.ExpertPatch) (model.Expert, error) {
	return remoteUpdate[model.Expert](ctx, r, "/experts", id, patch)
}

// DeleteExpert deletes a expert through the admin API. A 404 reports false.
func (r *Remote) DeleteExpert(ctx context.Context, id string) (bool, error) {
	return r.remove(ctx, "/experts", id)
}

func (r *Remote) remove(ctx context.Context, collection, id string) (bool, error) {
	err := r.client.Delete(ctx, AdminPrefix+collection+"/"+url.PathEscape(id), nil)
	if apiclient.IsStatus(err, http.StatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func remoteList[T any](ctx context.Context, r *Remote, path string) ([]T, error) {
	items := []T{}
	if err := r.client.Get(ctx, AdminPrefix+path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func remoteCreate[T any](ctx context.Context, r *Remote, collection string, item T) (T, error) {
	var out T
	if err := r.client.Post(ctx, AdminPrefix+collection, item, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func remoteUpdate[T any](ctx context.Context, r *Remote, collection, id string, patch any) (T, error) {
	var out T
	err := r.client.Put(ctx, AdminPrefix+collection+"/"+url.PathEscape(id), patch, &out)
	if err != nil {
		var zero T
		if apiclient.IsStatus(err, http.StatusNotFound) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return out, nil
}
