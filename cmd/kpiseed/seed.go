package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/service"
)

type demoOptions struct {
	Departments int
	Forms       int
	By          string
}

type summary struct {
	Departments int
	Pillars     int
	Forms       int
	Assigned    int
}

var (
	departmentNames = []string{"Computer Science", "Mathematics", "Physics", "Chemistry", "Biology", "Economics", "History", "Literature"}
	pillarNames     = []string{"Teaching", "Research", "Community Service"}
)

func label(l string, required bool) form.Base { return form.Base{Label: l, Required: required} }

func ptr(f float64) *float64 { return &f }

// templates are cycled through to build the demo forms.
var templates = []service.FormInput{
	{
		Title: "Publications", Description: "Peer reviewed papers published this term", Value: 20,
		Elements: []form.FieldInstance{
			{Type: form.TypeText, Attributes: &form.TextAttributes{Base: label("Title", true)}},
			{Type: form.TypeDate, Attributes: &form.TextAttributes{Base: label("Published on", true)}},
			{Type: form.TypeTextarea, Attributes: &form.TextareaAttributes{Base: label("Abstract", false)}},
		},
	},
	{
		Title: "Teaching load", Description: "Contact hours per course", Value: 15,
		Elements: []form.FieldInstance{
			{Type: form.TypeText, Attributes: &form.TextAttributes{Base: label("Course code", true)}},
			{Type: form.TypeNumber, Attributes: &form.NumberAttributes{Base: label("Hours", true), Min: ptr(0), Max: ptr(400)}},
		},
	},
	{
		Title: "Student feedback", Description: "Average course rating", Value: 10,
		Elements: []form.FieldInstance{
			{Type: form.TypeText, Attributes: &form.TextAttributes{Base: label("Course code", true)}},
			{Type: form.TypeRadio, Attributes: &form.ChoiceAttributes{Base: label("Rating", true), Options: []form.Option{
				{Label: "Excellent", Value: "5"}, {Label: "Good", Value: "4"}, {Label: "Fair", Value: "3"}, {Label: "Poor", Value: "2"},
			}}},
		},
	},
	{
		Title: "Outreach events", Description: "Workshops and talks given outside the university", Value: 5,
		Elements: []form.FieldInstance{
			{Type: form.TypeText, Attributes: &form.TextAttributes{Base: label("Event", true)}},
			{Type: form.TypeEmail, Attributes: &form.TextAttributes{Base: label("Organiser contact", false)}},
			{Type: form.TypeFile, Attributes: &form.FileAttributes{Base: label("Evidence", false)}},
		},
	},
}

// seedDemo inserts demo data through the given stores. Existing departments
// with the same name are an error; run it against an empty database.
func seedDemo(ctx context.Context, stores service.Stores, opts demoOptions) (*summary, error) {
	if opts.Departments < 0 || opts.Forms < 0 {
		return nil, errors.New("counts must not be negative")
	}
	forms := service.NewFormService(stores.Forms, stores.Assigned)
	depts := service.NewDepartmentService(stores.Departments, stores.Users, stores.Assigned)
	assign := service.NewAssignmentService(stores.Assigned, stores.Forms, stores.Departments)

	sum := &summary{}
	var formIDs []string
	for i := 0; i < opts.Forms; i++ {
		in := templates[i%len(templates)]
		if i >= len(templates) {
			in.Title = fmt.Sprintf("%s %d", in.Title, i/len(templates)+1)
		}
		s, err := forms.Create(ctx, in, opts.By)
		if err != nil {
			return nil, errors.Wrapf(err, "form %q", in.Title)
		}
		formIDs = append(formIDs, s.ID)
		sum.Forms++
	}

	for i := 0; i < opts.Departments; i++ {
		name := departmentNames[i%len(departmentNames)]
		if i >= len(departmentNames) {
			name = fmt.Sprintf("%s %d", name, i/len(departmentNames)+1)
		}
		dept, err := depts.Create(ctx, name, "")
		if err != nil {
			return nil, errors.Wrapf(err, "department %q", name)
		}
		sum.Departments++

		var pillarIDs []string
		for _, p := range pillarNames {
			pillar, err := depts.AddPillar(ctx, dept.ID, p)
			if err != nil {
				return nil, errors.Wrapf(err, "pillar %q", p)
			}
			pillarIDs = append(pillarIDs, pillar.ID)
			sum.Pillars++
		}

		// Spread the forms over the pillars.
		byPillar := make(map[string][]string)
		for j, id := range formIDs {
			p := pillarIDs[j%len(pillarIDs)]
			byPillar[p] = append(byPillar[p], id)
		}
		for _, p := range pillarIDs {
			if len(byPillar[p]) == 0 {
				continue
			}
			res, err := assign.Assign(ctx, service.AssignInput{DepartmentID: dept.ID, PillarID: p, KPIIDs: byPillar[p]}, opts.By)
			if err != nil {
				return nil, errors.Wrapf(err, "assign to %s", name)
			}
			sum.Assigned += len(res.Assigned)
		}
	}
	return sum, nil
}
