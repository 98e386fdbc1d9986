package kpi

import (
	"fmt"
	"time"

	"github.com/parisxmas/oxikpi/internal/form"
)

// Board indexes assigned KPIs by id while keeping insertion order.
// It is not safe for concurrent use.
type Board struct {
	byID  map[string]*AssignedKPI
	order []string
}

func NewBoard(items ...AssignedKPI) *Board {
	b := &Board{byID: make(map[string]*AssignedKPI, len(items))}
	for _, it := range items {
		b.Put(it)
	}
	return b
}

// Put inserts or replaces an item.
func (b *Board) Put(a AssignedKPI) {
	if _, ok := b.byID[a.ID]; !ok {
		b.order = append(b.order, a.ID)
	}
	b.byID[a.ID] = cloneAssigned(&a)
}

// Get returns a copy of the item with the given id.
func (b *Board) Get(id string) (AssignedKPI, bool) {
	a, ok := b.byID[id]
	if !ok {
		return AssignedKPI{}, false
	}
	return *cloneAssigned(a), true
}

func (b *Board) Len() int { return len(b.order) }

// List returns copies of the items matching f, in insertion order.
func (b *Board) List(f Filter) []AssignedKPI {
	out := []AssignedKPI{}
	for _, id := range b.order {
		if a := b.byID[id]; f.Match(a) {
			out = append(out, *cloneAssigned(a))
		}
	}
	return out
}

// Review applies a decision to the item with the given id. An unknown id is
// reported as ErrNotFound and changes nothing.
func (b *Board) Review(id string, decision Status, remark, reviewer string, at time.Time) (AssignedKPI, error) {
	a, ok := b.byID[id]
	if !ok {
		return AssignedKPI{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := cloneAssigned(a)
	if err := next.Review(decision, remark, reviewer, at); err != nil {
		return AssignedKPI{}, err
	}
	b.byID[id] = next
	return *cloneAssigned(next), nil
}

// Card is an assigned KPI with its display badge.
type Card struct {
	AssignedKPI
	Badge Badge `json:"badge"`
}

// Cards lists the items matching f with their badges.
func (b *Board) Cards(f Filter) []Card {
	items := b.List(f)
	out := make([]Card, len(items))
	for i, a := range items {
		out[i] = Card{AssignedKPI: a, Badge: a.Badge()}
	}
	return out
}

func cloneAssigned(a *AssignedKPI) *AssignedKPI {
	c := *a
	if a.FormInput != nil {
		c.FormInput = make([]form.Entry, len(a.FormInput))
		for i, e := range a.FormInput {
			c.FormInput[i] = e.Clone()
		}
	}
	return &c
}
