package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/models"
	"github.com/parisxmas/oxikpi/internal/oxidb/oxidbtest"
	"github.com/parisxmas/oxikpi/internal/service"
)

func newRepos(t *testing.T) (*OxiDB, *oxidbtest.Server) {
	t.Helper()
	srv := oxidbtest.NewServer()
	t.Cleanup(srv.Close)
	pool, err := db.NewPool(context.Background(), srv.Addr, db.Options{Size: 2, Keepalive: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	o := New(pool)
	require.NoError(t, o.EnsureIndexes(context.Background()))
	return o, srv
}

func TestNormalizeID(t *testing.T) {
	doc := map[string]any{"_id": float64(42), "name": "x"}
	normalizeID(doc, "id")
	assert.Equal(t, map[string]any{"id": "42", "name": "x"}, doc)

	doc = map[string]any{"_id": 7}
	normalizeID(doc, assignedKey)
	assert.Equal(t, "7", doc[assignedKey])

	doc = map[string]any{"name": "x"}
	normalizeID(doc, "id")
	assert.NotContains(t, doc, "id")
}

func TestExtractAndNumericID(t *testing.T) {
	assert.Equal(t, "12", extractID(map[string]any{"id": float64(12)}))
	assert.Equal(t, "abc", extractID(map[string]any{"id": "abc"}))
	assert.Equal(t, "", extractID(map[string]any{"status": "buffered"}))

	assert.Equal(t, float64(12), toNumericID("12"))
	assert.Equal(t, "abc", toNumericID("abc"))
}

func TestToDocDropsIDs(t *testing.T) {
	doc, err := toDoc(&models.User{ID: "3", Email: "a@uni.edu"}, "id")
	require.NoError(t, err)
	assert.NotContains(t, doc, "id")
	assert.Equal(t, "a@uni.edu", doc["email"])
}

func TestFormRepoRoundTrip(t *testing.T) {
	o, _ := newRepos(t)
	ctx := context.Background()

	lo, hi := 0.0, 10.0
	s := &form.Schema{
		Title: "Publications",
		Value: 5,
		Elements: []form.FieldInstance{
			{ID: "text-1", Type: form.TypeText, Attributes: &form.TextAttributes{Base: form.Base{Label: "Title", Required: true}}},
			{ID: "number-1", Type: form.TypeNumber, Attributes: &form.NumberAttributes{Base: form.Base{Label: "Count"}, Min: &lo, Max: &hi}},
			{ID: "radio-1", Type: form.TypeRadio, Attributes: &form.ChoiceAttributes{Base: form.Base{Label: "Kind"}, Options: []form.Option{{Label: "A", Value: "a"}}}},
		},
		CreatedAt: "2025-01-01T00:00:00Z",
	}
	id, err := o.Forms.Create(ctx, s)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := o.Forms.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Publications", got.Title)
	require.Len(t, got.Elements, 3)
	num, ok := got.Elements[1].Attributes.(*form.NumberAttributes)
	require.True(t, ok)
	assert.Equal(t, 10.0, *num.Max)
	assert.True(t, got.Elements[0].Required())

	got.Title = "Journal Publications"
	require.NoError(t, o.Forms.Update(ctx, id, got))
	again, err := o.Forms.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Journal Publications", again.Title)

	n, err := o.Forms.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, o.Forms.Delete(ctx, id))
	missing, err := o.Forms.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAssignedRepoFilterAndUpdate(t *testing.T) {
	o, srv := newRepos(t)
	ctx := context.Background()

	for _, a := range []kpi.AssignedKPI{
		{FormID: "1", DepartmentID: "cs", PillarID: "p1", Status: kpi.StatusPending, CreatedAt: "2025-01-01T00:00:00Z"},
		{FormID: "2", DepartmentID: "cs", PillarID: "p2", Status: kpi.StatusPending, CreatedAt: "2025-01-02T00:00:00Z"},
		{FormID: "1", DepartmentID: "ee", PillarID: "p1", Status: kpi.StatusPending, CreatedAt: "2025-01-03T00:00:00Z"},
	} {
		a := a
		_, err := o.Assigned.Create(ctx, &a)
		require.NoError(t, err)
	}
	for _, d := range srv.Docs(AssignedCollection) {
		assert.NotContains(t, d, assignedKey)
	}

	cs, err := o.Assigned.Find(ctx, kpi.Filter{DepartmentID: "cs"})
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "1", cs[0].ID)

	a := cs[0]
	require.NoError(t, a.Submit([]form.Entry{{"text-1": "Paper"}}, "fac", time.Now()))
	require.NoError(t, a.Review(kpi.StatusApproved, "good", "qoc", time.Now()))
	require.NoError(t, o.Assigned.Update(ctx, &a))

	got, err := o.Assigned.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, kpi.StatusApproved, got.Status)
	assert.Equal(t, "good", got.Remark)
	assert.Equal(t, []form.Entry{{"text-1": "Paper"}}, got.FormInput)

	n, err := o.Assigned.Count(ctx, kpi.Filter{Status: kpi.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUserRepoDuplicateEmailIsConflict(t *testing.T) {
	o, _ := newRepos(t)
	ctx := context.Background()

	_, err := o.Users.Create(ctx, &models.User{Email: "hod@uni.edu", Role: models.RoleHOD, DepartmentID: "cs"})
	require.NoError(t, err)
	_, err = o.Users.Create(ctx, &models.User{Email: "hod@uni.edu"})
	assert.ErrorIs(t, err, service.ErrConflict)

	u, err := o.Users.FindByEmail(ctx, "hod@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleHOD, u.Role)
	n, err := o.Users.CountByDepartment(ctx, "cs")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDepartmentRepoKeepsPillars(t *testing.T) {
	o, _ := newRepos(t)
	ctx := context.Background()

	id, err := o.Departments.Create(ctx, &models.Department{Name: "Computer Science", Pillars: []models.Pillar{{ID: "p1", Name: "Research"}}})
	require.NoError(t, err)

	d, err := o.Departments.FindByID(ctx, id)
	require.NoError(t, err)
	d.Pillars = append(d.Pillars, models.Pillar{ID: "p2", Name: "Teaching"})
	require.NoError(t, o.Departments.Update(ctx, id, d))

	all, err := o.Departments.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Pillars, 2)
}

func TestSubmissionRepoPaging(t *testing.T) {
	o, _ := newRepos(t)
	ctx := context.Background()

	for _, ts := range []string{"2025-01-01", "2025-01-03", "2025-01-02"} {
		_, err := o.Submissions.Create(ctx, &models.Submission{FormID: "9", Data: form.Entry{"x": "y"}, CreatedAt: ts})
		require.NoError(t, err)
	}
	subs, total, err := o.Submissions.FindByFormID(ctx, "9", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, subs, 2)
	assert.Equal(t, "2025-01-03", subs[0].CreatedAt)
}

func TestDocumentRepoBlobs(t *testing.T) {
	o, _ := newRepos(t)
	ctx := context.Background()

	require.NoError(t, o.Documents.PutBlob(ctx, "k", []byte("pdf"), "application/pdf"))
	data, err := o.Documents.GetBlob(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), data)

	id, err := o.Documents.Create(ctx, &models.Document{FileName: "a.pdf", BlobKey: "k"})
	require.NoError(t, err)
	d, err := o.Documents.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, d.ToFileRef().ID)

	require.NoError(t, o.Documents.DeleteBlob(ctx, "k"))
	_, err = o.Documents.GetBlob(ctx, "k")
	assert.Error(t, err)
}
