package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
)

// KPIDataService saves table data against assigned KPIs and lists them for
// review.
type KPIDataService struct {
	assigned AssignedStore
	forms    FormStore
}

func NewKPIDataService(assigned AssignedStore, forms FormStore) *KPIDataService {
	return &KPIDataService{assigned: assigned, forms: forms}
}

// Load returns an assigned KPI together with its form schema.
func (s *KPIDataService) Load(ctx context.Context, assignedID string) (*kpi.AssignedKPI, *form.Schema, error) {
	a, err := s.assigned.FindByID(ctx, assignedID)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, errors.Wrapf(kpi.ErrNotFound, "assigned KPI %s", assignedID)
	}
	schema, err := s.forms.FindByID(ctx, a.FormID)
	if err != nil {
		return nil, nil, err
	}
	if schema == nil {
		return nil, nil, errors.Wrapf(ErrNotFound, "form %s", a.FormID)
	}
	return a, schema, nil
}

// Save validates rows as one table submission and stores the filled rows as
// the KPI's data. Blank rows are dropped; a batch with no filled row fails
// with form.ErrNoEntries.
func (s *KPIDataService) Save(ctx context.Context, assignedID string, rows []form.Entry, by string) (*kpi.AssignedKPI, error) {
	a, schema, err := s.Load(ctx, assignedID)
	if err != nil {
		return nil, err
	}
	if err := s.SubmitTable(ctx, a, form.NewTable(schema, rows...), by); err != nil {
		return nil, err
	}
	return a, nil
}

// SubmitTable submits t into a and persists the result. a is first replaced
// by the stored record, so a review made since a was loaded is honoured. On
// success t is reset and a holds the new data.
func (s *KPIDataService) SubmitTable(ctx context.Context, a *kpi.AssignedKPI, t *form.Table, by string) error {
	cur, err := s.assigned.FindByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrapf(kpi.ErrNotFound, "assigned KPI %s", a.ID)
	}
	*a = *cur
	if a.Status == kpi.StatusApproved {
		return kpi.ErrLocked
	}
	return t.Submit(ctx, func(ctx context.Context, filled []form.Entry) error {
		next := *a
		if err := next.Submit(filled, by, time.Now()); err != nil {
			return err
		}
		if err := s.assigned.Update(ctx, &next); err != nil {
			return err
		}
		*a = next
		return nil
	})
}

// Submissions lists a department's assigned KPIs as review cards.
func (s *KPIDataService) Submissions(ctx context.Context, f kpi.Filter) ([]kpi.Card, error) {
	items, err := s.assigned.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return kpi.NewBoard(items...).Cards(kpi.Filter{}), nil
}

// ReviewService applies QOC decisions to submitted KPI data.
type ReviewService struct {
	assigned AssignedStore
}

func NewReviewService(assigned AssignedStore) *ReviewService {
	return &ReviewService{assigned: assigned}
}

// Review approves a KPI or sends it back for redo with a remark.
func (s *ReviewService) Review(ctx context.Context, id, decision, remark, reviewer string) (*kpi.AssignedKPI, error) {
	status, err := kpi.ParseDecision(decision)
	if err != nil {
		return nil, err
	}
	a, err := s.assigned.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errors.Wrapf(kpi.ErrNotFound, "assigned KPI %s", id)
	}
	if err := a.Review(status, remark, reviewer, time.Now()); err != nil {
		return nil, err
	}
	if err := s.assigned.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
