package repository

import (
	"context"
	"database/sql"

	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// UseClasses debits a coupon in a single conditional statement so two
// concurrent debits cannot both pass a stale check. It returns nil, nil when
// the coupon is missing, inactive, exhausted or expired.
func (r *UsageRepo) UseClasses(ctx context.Context, id int64, classes int, today models.Date) (*models.Coupon, error) {
	query := `
		UPDATE class_coupons
		SET classes_remaining = GREATEST(classes_remaining - $1, 0),
		    active = CASE
		        WHEN classes_remaining - $1 <= 0 THEN false
		        ELSE active
		    END,
		    updated_at = NOW()
		WHERE id = $2
		  AND active = true
		  AND classes_remaining > 0
		  AND (expiry_date IS NULL OR expiry_date >= $3)
		RETURNING ` + couponColumns

	return scanCoupon(r.db.QueryRowContext(ctx, query, classes, id, today))
}

// AddClasses credits a specific coupon and reactivates it regardless of state.
func (r *UsageRepo) AddClasses(ctx context.Context, id int64, classes int) (*models.Coupon, error) {
	query := `
		UPDATE class_coupons
		SET classes_remaining = classes_remaining + $1,
		    total_classes = total_classes + $1,
		    active = true,
		    updated_at = NOW()
		WHERE id = $2
		RETURNING ` + couponColumns

	return scanCoupon(r.db.QueryRowContext(ctx, query, classes, id))
}
