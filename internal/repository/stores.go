package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/service"
)

var (
	_ service.UserStore       = (*UserRepo)(nil)
	_ service.FormStore       = (*FormRepo)(nil)
	_ service.DepartmentStore = (*DepartmentRepo)(nil)
	_ service.AssignedStore   = (*AssignedRepo)(nil)
	_ service.SubmissionStore = (*SubmissionRepo)(nil)
	_ service.DocumentStore   = (*DocumentRepo)(nil)
)

// OxiDB is the set of repositories backed by one connection pool.
type OxiDB struct {
	Users       *UserRepo
	Forms       *FormRepo
	Departments *DepartmentRepo
	Assigned    *AssignedRepo
	Submissions *SubmissionRepo
	Documents   *DocumentRepo
}

func New(pool *db.Pool) *OxiDB {
	return &OxiDB{
		Users:       NewUserRepo(pool),
		Forms:       NewFormRepo(pool),
		Departments: NewDepartmentRepo(pool),
		Assigned:    NewAssignedRepo(pool),
		Submissions: NewSubmissionRepo(pool),
		Documents:   NewDocumentRepo(pool),
	}
}

func (o *OxiDB) Stores() service.Stores {
	return service.Stores{
		Users:       o.Users,
		Forms:       o.Forms,
		Departments: o.Departments,
		Assigned:    o.Assigned,
		Submissions: o.Submissions,
		Documents:   o.Documents,
	}
}

// EnsureIndexes creates every index and the blob bucket. It is safe to run
// against an already initialised database.
func (o *OxiDB) EnsureIndexes(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", o.Users.EnsureIndexes},
		{"forms", o.Forms.EnsureIndexes},
		{"departments", o.Departments.EnsureIndexes},
		{"assigned", o.Assigned.EnsureIndexes},
		{"submissions", o.Submissions.EnsureIndexes},
		{"documents", o.Documents.EnsureIndexes},
		{"bucket", o.Documents.EnsureBucket},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return errors.Wrapf(err, "ensure %s", s.name)
		}
	}
	return nil
}
