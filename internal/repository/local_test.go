package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockprep/mockprep-go/internal/localstore"
	"github.com/mockprep/mockprep-go/internal/model"
)

// stepClock advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func newTestLocal(t *testing.T) (*Local, *localstore.Memory) {
	t.Helper()
	store := localstore.NewMemory()
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	return NewLocal(store, WithClock(stepClock(start, time.Second))), store
}

func TestLocalSeedsDefaultCategories(t *testing.T) {
	repo, store := newTestLocal(t)
	ctx := context.Background()

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Software Engineering", cats[0].Name)

	subs, err := repo.ListSubCategoriesByCategory(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// Reading does not persist the seed.
	_, ok, err := store.Get(KeyCategories)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalEmptyCollections(t *testing.T) {
	repo, _ := newTestLocal(t)

	ivs, err := repo.ListInterviews(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ivs)
	assert.Empty(t, ivs)
}

func TestLocalDeleteCategoryCascades(t *testing.T) {
	repo, _ := newTestLocal(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, model.Category{Name: "Design"})
	require.NoError(t, err)
	_, err = repo.CreateSubCategory(ctx, model.SubCategory{CategoryID: cat.ID, Name: "UX"})
	require.NoError(t, err)
	_, err = repo.CreateSubCategory(ctx, model.SubCategory{CategoryID: cat.ID, Name: "Visual"})
	require.NoError(t, err)

	deleted, err := repo.DeleteCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		assert.NotEqual(t, cat.ID, c.ID)
	}

	subs, err := repo.ListSubCategoriesByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// Subcategories of other categories survive.
	others, err := repo.ListSubCategoriesByCategory(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, others, 2)
}

func TestLocalDeleteUnknownLeavesStorageUntouched(t *testing.T) {
	repo, store := newTestLocal(t)
	ctx := context.Background()

	deleted, err := repo.DeleteCategory(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, ok, err := store.Get(KeyCategories)
	require.NoError(t, err)
	assert.False(t, ok, "categories must not be written")
	_, ok, err = store.Get(KeySubCategories)
	require.NoError(t, err)
	assert.False(t, ok, "subcategories must not be written")

	deleted, err = repo.DeleteHR(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
	_, ok, err = store.Get(KeyHRs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalCreateInterviewTimestamps(t *testing.T) {
	repo, _ := newTestLocal(t)
	ctx := context.Background()

	a, err := repo.CreateInterview(ctx, model.Interview{Title: "System design", CategoryID: "1"})
	require.NoError(t, err)
	b, err := repo.CreateInterview(ctx, model.Interview{Title: "Algorithms", CategoryID: "1"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.Equal(t, b.CreatedAt, b.UpdatedAt)

	list, err := repo.ListInterviews(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestLocalUpdateInterviewKeepsCreatedAt(t *testing.T) {
	repo, _ := newTestLocal(t)
	ctx := context.Background()

	iv, err := repo.CreateInterview(ctx, model.Interview{Title: "Behavioural", CategoryID: "1", Price: 10})
	require.NoError(t, err)

	title := "Behavioural II"
	updated, err := repo.UpdateInterview(ctx, iv.ID, model.InterviewPatch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, iv.ID, updated.ID)
	assert.Equal(t, "Behavioural II", updated.Title)
	assert.Equal(t, 10.0, updated.Price)
	assert.True(t, iv.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(iv.UpdatedAt))
}

func TestLocalUpdateWithFrozenClockStillAdvances(t *testing.T) {
	frozen := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo := NewLocal(localstore.NewMemory(), WithClock(func() time.Time { return frozen }))
	ctx := context.Background()

	a, err := repo.CreateHR(ctx, model.HR{Name: "Ana"})
	require.NoError(t, err)
	b, err := repo.CreateHR(ctx, model.HR{Name: "Ben"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	name := "Ana M."
	updated, err := repo.UpdateHR(ctx, a.ID, model.HRPatch{Name: &name})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(a.CreatedAt))
}

func TestLocalUpdateMissing(t *testing.T) {
	repo, _ := newTestLocal(t)

	name := "x"
	_, err := repo.UpdateExpert(context.Background(), "missing", model.ExpertPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalPersistsAcrossInstances(t *testing.T) {
	store, err := localstore.NewFile(t.TempDir() + "/storage.json")
	require.NoError(t, err)
	ctx := context.Background()

	first := NewLocal(store)
	e, err := first.CreateExpert(ctx, model.Expert{Name: "Grace", Expertise: "Compilers", Price: 50})
	require.NoError(t, err)

	second := NewLocal(store)
	list, err := second.ListExperts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e.ID, list[0].ID)
	assert.Equal(t, "Compilers", list[0].Expertise)
}

func TestLocalInterviewQuestionIDs(t *testing.T) {
	repo, _ := newTestLocal(t)
	ctx := context.Background()

	iv, err := repo.CreateInterview(ctx, model.Interview{
		Title:      "Go",
		CategoryID: "1",
		Questions:  []model.InterviewQuestion{{Question: "What is a goroutine?"}, {ID: "keep", Question: "Channels?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, iv.ID+"-q1", iv.Questions[0].ID)
	assert.Equal(t, "keep", iv.Questions[1].ID)

	qs := []model.InterviewQuestion{{Question: "Select?"}}
	updated, err := repo.UpdateInterview(ctx, iv.ID, model.InterviewPatch{Questions: &qs})
	require.NoError(t, err)
	require.Len(t, updated.Questions, 1)
	assert.Equal(t, iv.ID+"-q1", updated.Questions[0].ID)
}

func TestLocalUpdateInterviewKeepsQuestionIDsUnique(t *testing.T) {
	repo, _ := newTestLocal(t)
	ctx := context.Background()

	iv, err := repo.CreateInterview(ctx, model.Interview{
		Title:      "Go",
		CategoryID: "1",
		Questions:  []model.InterviewQuestion{{Question: "a"}, {Question: "b"}},
	})
	require.NoError(t, err)
	require.Len(t, iv.Questions, 2)

	qs := []model.InterviewQuestion{iv.Questions[1], {Question: "c"}}
	updated, err := repo.UpdateInterview(ctx, iv.ID, model.InterviewPatch{Questions: &qs})
	require.NoError(t, err)
	require.Len(t, updated.Questions, 2)
	assert.Equal(t, iv.ID+"-q2", updated.Questions[0].ID)
	assert.Equal(t, iv.ID+"-q1", updated.Questions[1].ID)
	assert.NotEqual(t, updated.Questions[0].ID, updated.Questions[1].ID)
}
