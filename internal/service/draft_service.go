package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
)

// DraftService keeps one server-side entry table per user and assigned KPI,
// so bulk entry can be built up over several requests before it is submitted.
type DraftService struct {
	data *KPIDataService
	log  *zap.Logger

	mu     sync.Mutex
	drafts map[draftKey]*draft
}

type draftKey struct {
	userID     string
	assignedID string
}

// draft is owned by one user; its mutex serialises that user's requests.
type draft struct {
	mu       sync.Mutex
	assigned *kpi.AssignedKPI
	table    *form.Table
	touched  time.Time
}

func NewDraftService(data *KPIDataService, log *zap.Logger) *DraftService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DraftService{data: data, log: log.Named("drafts"), drafts: map[draftKey]*draft{}}
}

// DraftView is a draft table as rendered for the client.
type DraftView struct {
	AssignedKPIID string     `json:"assignedKpiId"`
	KPIName       string     `json:"kpiName"`
	Status        kpi.Status `json:"status"`
	form.TableView
}

// get returns the caller's draft, opening it from the stored data on first
// use. Existing data is loaded so a KPI sent back for redo can be corrected.
func (s *DraftService) get(ctx context.Context, userID, assignedID string) (*draft, error) {
	key := draftKey{userID, assignedID}
	s.mu.Lock()
	d, ok := s.drafts[key]
	s.mu.Unlock()
	if ok {
		return d, nil
	}

	a, schema, err := s.data.Load(ctx, assignedID)
	if err != nil {
		return nil, err
	}
	if a.Status == kpi.StatusApproved {
		return nil, kpi.ErrLocked
	}
	d = &draft{assigned: a, table: form.NewTable(schema, a.FormInput...), touched: time.Now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.drafts[key]; ok {
		return existing, nil
	}
	s.drafts[key] = d
	return d, nil
}

// lock returns the caller's draft locked and brought up to date with the
// stored KPI and its current schema. A draft dropped while the caller waited
// for it is replaced by a fresh one.
func (s *DraftService) lock(ctx context.Context, userID, assignedID string) (*draft, error) {
	key := draftKey{userID, assignedID}
	for {
		d, err := s.get(ctx, userID, assignedID)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		if !s.live(key, d) {
			d.mu.Unlock()
			continue
		}
		if err := s.refresh(ctx, key, d); err != nil {
			d.mu.Unlock()
			return nil, err
		}
		d.touched = time.Now()
		return d, nil
	}
}

func (s *DraftService) live(key draftKey, d *draft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[key] == d
}

// refresh reloads the KPI and its schema. Rows lose values for fields the
// schema no longer has; a KPI approved in the meantime closes the draft.
func (s *DraftService) refresh(ctx context.Context, key draftKey, d *draft) error {
	a, schema, err := s.data.Load(ctx, key.assignedID)
	if err != nil {
		return err
	}
	if a.Status == kpi.StatusApproved {
		s.drop(key)
		return kpi.ErrLocked
	}
	d.assigned = a
	d.table.Rebind(schema)
	return nil
}

// with runs fn on the caller's draft under its lock and renders the result.
func (s *DraftService) with(ctx context.Context, userID, assignedID string, fn func(*draft) error) (*DraftView, error) {
	d, err := s.lock(ctx, userID, assignedID)
	if err != nil {
		return nil, err
	}
	defer d.mu.Unlock()
	if fn != nil {
		if err := fn(d); err != nil {
			return nil, err
		}
	}
	return d.view(), nil
}

func (d *draft) view() *DraftView {
	return &DraftView{
		AssignedKPIID: d.assigned.ID,
		KPIName:       d.assigned.KPIName,
		Status:        d.assigned.Status,
		TableView:     d.table.View(),
	}
}

func (s *DraftService) View(ctx context.Context, userID, assignedID string) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, nil)
}

func (s *DraftService) AddRow(ctx context.Context, userID, assignedID string) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, func(d *draft) error {
		d.table.AddRow()
		return nil
	})
}

func (s *DraftService) RemoveRow(ctx context.Context, userID, assignedID string, row int) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, func(d *draft) error {
		return d.table.RemoveRow(row)
	})
}

func (s *DraftService) UpdateCell(ctx context.Context, userID, assignedID string, row int, fieldID string, v any) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, func(d *draft) error {
		return d.table.UpdateCell(row, fieldID, v)
	})
}

func (s *DraftService) OpenEditor(ctx context.Context, userID, assignedID string, row int, fieldID string) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, func(d *draft) error {
		return d.table.OpenComplexEditor(row, fieldID)
	})
}

func (s *DraftService) StageEditor(ctx context.Context, userID, assignedID string, v any) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, func(d *draft) error {
		return d.table.StageComplexValue(v)
	})
}

func (s *DraftService) SaveEditor(ctx context.Context, userID, assignedID string) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, func(d *draft) error {
		return d.table.SaveComplexValue()
	})
}

func (s *DraftService) CancelEditor(ctx context.Context, userID, assignedID string) (*DraftView, error) {
	return s.with(ctx, userID, assignedID, func(d *draft) error {
		d.table.CancelComplexEditor()
		return nil
	})
}

// Submit sends the draft's filled rows as the KPI data. The draft is dropped
// once the data is stored; on failure it is kept for correction.
func (s *DraftService) Submit(ctx context.Context, userID, assignedID string) (*kpi.AssignedKPI, error) {
	d, err := s.lock(ctx, userID, assignedID)
	if err != nil {
		return nil, err
	}
	defer d.mu.Unlock()
	if err := s.data.SubmitTable(ctx, d.assigned, d.table, userID); err != nil {
		return nil, err
	}
	s.drop(draftKey{userID, assignedID})
	a := *d.assigned
	return &a, nil
}

// Discard throws the draft away.
func (s *DraftService) Discard(userID, assignedID string) {
	s.drop(draftKey{userID, assignedID})
}

func (s *DraftService) drop(key draftKey) {
	s.mu.Lock()
	delete(s.drafts, key)
	s.mu.Unlock()
}

// Len returns the number of open drafts.
func (s *DraftService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// Sweep drops drafts untouched for longer than ttl and returns how many went.
func (s *DraftService) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, d := range s.drafts {
		if !d.mu.TryLock() {
			continue
		}
		if d.touched.Before(cutoff) {
			delete(s.drafts, key)
			n++
		}
		d.mu.Unlock()
	}
	return n
}

// RunJanitor sweeps stale drafts every interval until ctx is done.
func (s *DraftService) RunJanitor(ctx context.Context, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(ttl); n > 0 {
				s.log.Info("stale drafts dropped", zap.Int("count", n))
			}
		}
	}
}
