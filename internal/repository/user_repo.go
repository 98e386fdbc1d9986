package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/models"
)

const UsersCollection = "_kpi_users"

type UserRepo struct {
	pool *db.Pool
}

func NewUserRepo(pool *db.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateUniqueIndex(ctx, UsersCollection, "email"); err != nil {
		return err
	}
	return c.CreateIndex(ctx, UsersCollection, "departmentId")
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, map[string]any{"email": email})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, byID(id))
}

func (r *UserRepo) findOne(ctx context.Context, query map[string]any) (*models.User, error) {
	doc, err := r.pool.Get().FindOne(ctx, UsersCollection, query)
	if err != nil {
		return nil, errors.Wrap(err, "users: find")
	}
	if doc == nil {
		return nil, nil
	}
	var u models.User
	if err := fromDoc(doc, "id", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) (string, error) {
	doc, err := toDoc(user, "id")
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, UsersCollection, doc)
	if err != nil {
		return "", insertErr(err, "users: insert")
	}
	return extractID(result), nil
}

func (r *UserRepo) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	n, err := r.pool.Get().Count(ctx, UsersCollection, map[string]any{"departmentId": departmentID})
	return n, errors.Wrap(err, "users: count")
}
