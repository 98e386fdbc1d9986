package kpi_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
)

var reviewedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestReviewPendingKPI(t *testing.T) {
	b := kpi.NewBoard(
		kpi.AssignedKPI{ID: "7", KPIName: "Publications", Status: kpi.StatusPending, FormInput: []form.Entry{{"title": "X"}}},
		kpi.AssignedKPI{ID: "8", KPIName: "Teaching", Status: kpi.StatusPending},
	)

	got, err := b.Review("7", kpi.StatusApproved, "good", "qoc@uni.edu", reviewedAt)
	require.NoError(t, err)
	assert.Equal(t, kpi.StatusApproved, got.Status)
	assert.Equal(t, "good", got.Remark)
	assert.Equal(t, "2025-03-01T10:00:00Z", got.ReviewedAt)
	assert.Equal(t, []form.Entry{{"title": "X"}}, got.FormInput)
	assert.Equal(t, "Publications", got.KPIName)

	other, _ := b.Get("8")
	assert.Equal(t, kpi.StatusPending, other.Status)
}

func TestReviewUnknownIDChangesNothing(t *testing.T) {
	b := kpi.NewBoard(kpi.AssignedKPI{ID: "7", Status: kpi.StatusPending})

	_, err := b.Review("99", kpi.StatusRedo, "", "", reviewedAt)
	assert.ErrorIs(t, err, kpi.ErrNotFound)
	a, _ := b.Get("7")
	assert.Equal(t, kpi.StatusPending, a.Status)
}

func TestReviewOnlyFromPending(t *testing.T) {
	b := kpi.NewBoard(kpi.AssignedKPI{ID: "1", Status: kpi.StatusPending})

	_, err := b.Review("1", "rejected", "", "", reviewedAt)
	assert.ErrorIs(t, err, kpi.ErrInvalidDecision)

	_, err = b.Review("1", kpi.StatusRedo, "fix row 2", "", reviewedAt)
	require.NoError(t, err)
	_, err = b.Review("1", kpi.StatusApproved, "", "", reviewedAt)
	assert.ErrorIs(t, err, kpi.ErrAlreadyReviewed)

	a, _ := b.Get("1")
	assert.Equal(t, kpi.StatusRedo, a.Status)
	assert.Equal(t, "fix row 2", a.Remark)
}

func TestResubmitAfterRedoReopensReview(t *testing.T) {
	a := kpi.AssignedKPI{ID: "1", Status: kpi.StatusRedo, Remark: "fix row 2"}

	require.NoError(t, a.Submit([]form.Entry{{"n": 1}}, "fac@uni.edu", reviewedAt))
	assert.Equal(t, kpi.StatusPending, a.Status)
	require.NoError(t, a.Review(kpi.StatusApproved, "ok", "qoc", reviewedAt))

	assert.ErrorIs(t, a.Submit(nil, "fac@uni.edu", reviewedAt), kpi.ErrLocked)
	assert.Equal(t, kpi.StatusApproved, a.Status)
}

func TestBadgeForIsTotal(t *testing.T) {
	assert.Equal(t, kpi.BadgeNeutral, kpi.BadgeFor(kpi.StatusPending).Variant)
	assert.Equal(t, kpi.BadgePositive, kpi.BadgeFor(kpi.StatusApproved).Variant)
	assert.Equal(t, kpi.BadgeNegative, kpi.BadgeFor(kpi.StatusRedo).Variant)
	assert.Equal(t, kpi.BadgeFor(kpi.StatusPending), kpi.BadgeFor("archived"))
	assert.Equal(t, kpi.BadgeFor(kpi.StatusPending), kpi.BadgeFor(""))
}

func TestParseDecision(t *testing.T) {
	s, err := kpi.ParseDecision("redo")
	require.NoError(t, err)
	assert.Equal(t, kpi.StatusRedo, s)
	_, err = kpi.ParseDecision("pending")
	assert.ErrorIs(t, err, kpi.ErrInvalidDecision)
}

func TestBoardListAndCards(t *testing.T) {
	b := kpi.NewBoard(
		kpi.AssignedKPI{ID: "1", DepartmentID: "cs", PillarID: "p1", Status: kpi.StatusPending},
		kpi.AssignedKPI{ID: "2", DepartmentID: "cs", PillarID: "p2", Status: kpi.StatusApproved},
		kpi.AssignedKPI{ID: "3", DepartmentID: "ee", PillarID: "p1", Status: kpi.StatusPending},
	)
	assert.Len(t, b.List(kpi.Filter{DepartmentID: "cs"}), 2)
	assert.Len(t, b.List(kpi.Filter{DepartmentID: "cs", PillarID: "p1"}), 1)
	assert.Len(t, b.List(kpi.Filter{Status: kpi.StatusPending}), 2)

	cards := b.Cards(kpi.Filter{DepartmentID: "cs"})
	require.Len(t, cards, 2)
	assert.Equal(t, "1", cards[0].ID)
	assert.Equal(t, kpi.BadgePositive, cards[1].Badge.Variant)
}

func TestSelectionToggleAll(t *testing.T) {
	forms := []string{"1", "2", "3"}

	var s kpi.Selection
	s.ToggleAll(forms)
	assert.Equal(t, forms, s.IDs())
	s.ToggleAll(forms)
	assert.Empty(t, s.IDs(), "all selected clears")

	s.Toggle("2")
	s.ToggleAll(forms)
	assert.Equal(t, forms, s.IDs(), "partial selection selects every id once")

	s.Toggle("2")
	assert.Equal(t, []string{"1", "3"}, s.IDs())
	s.Select("1")
	assert.Equal(t, 2, s.Len())
}

func TestFormIDStripsPrefix(t *testing.T) {
	assert.Equal(t, "12", kpi.FormID("form-12"))
	assert.Equal(t, "12", kpi.FormID("12"))
}
