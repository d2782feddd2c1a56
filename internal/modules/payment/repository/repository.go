package repository

import (
	"context"
	"time"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, intent *entity.PaymentIntent) error
	FindByProviderRef(ctx context.Context, ref string) (*entity.PaymentIntent, error)
	FindPending(ctx context.Context, userID, courseID uuid.UUID) (*entity.PaymentIntent, error)
	Update(ctx context.Context, intent *entity.PaymentIntent) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.PaymentIntent, error)
	// ExpirePending cancels pending intents created before cutoff.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
	RevenueByCurrency(ctx context.Context) (map[string]int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, intent *entity.PaymentIntent) error {
	return r.db.WithContext(ctx).Omit("Course").Create(intent).Error
}

func (r *paymentRepository) FindByProviderRef(ctx context.Context, ref string) (*entity.PaymentIntent, error) {
	var intent entity.PaymentIntent
	if err := r.db.WithContext(ctx).Where("provider_ref = ?", ref).First(&intent).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *paymentRepository) FindPending(ctx context.Context, userID, courseID uuid.UUID) (*entity.PaymentIntent, error) {
	var intent entity.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, entity.PaymentPending).
		Order("created_at DESC").
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *paymentRepository) Update(ctx context.Context, intent *entity.PaymentIntent) error {
	return r.db.WithContext(ctx).Omit("Course").Save(intent).Error
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.PaymentIntent, error) {
	var intents []entity.PaymentIntent
	err := r.db.WithContext(ctx).
		Preload("Course", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "slug")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&intents).Error
	return intents, err
}

func (r *paymentRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.PaymentIntent{}).
		Where("status = ? AND created_at < ?", entity.PaymentPending, cutoff).
		Updates(map[string]any{"status": entity.PaymentCancelled, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *paymentRepository) RevenueByCurrency(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Currency string
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&entity.PaymentIntent{}).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", entity.PaymentSucceeded).
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Currency] = row.Total
	}
	return out, nil
}
