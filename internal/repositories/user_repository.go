package repositories

import (
	"context"

	"gorm.io/gorm"

	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/store"
)

type UserRepository struct {
	col *store.Collection[models.User]
}

func NewUserRepository(db *gorm.DB, pub store.Publisher) *UserRepository {
	return &UserRepository{col: store.NewCollection[models.User](db, "users", pub)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.col.Insert(ctx, user)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.col.FindOne(ctx, []store.Filter{store.Eq("id", id)})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.col.FindOne(ctx, []store.Filter{store.Eq("email", email)})
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	users := make([]models.User, 0, len(ids))
	err := r.col.DB().WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, store.Classify(err, r.col.Name())
	}
	return users, nil
}
