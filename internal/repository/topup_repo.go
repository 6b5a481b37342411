package repository

import (
	"context"
	"database/sql"

	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
)

// TopUpRepo holds the statements of the top-up transaction. Every method runs
// inside the caller's tx.
type TopUpRepo struct{}

func NewTopUpRepo() *TopUpRepo {
	return &TopUpRepo{}
}

// GetAndLockLatest returns the member's most recently created coupon, locked
// until the tx ends, or nil when the member has none.
func (r *TopUpRepo) GetAndLockLatest(ctx context.Context, tx *sql.Tx, memberID int64) (*models.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM class_coupons
		WHERE member_id = $1
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE
	`
	return scanCoupon(tx.QueryRowContext(ctx, query, memberID))
}

// SaveMerged writes the merged balance fields back to the locked row.
func (r *TopUpRepo) SaveMerged(ctx context.Context, tx *sql.Tx, c models.Coupon) (*models.Coupon, error) {
	query := `
		UPDATE class_coupons
		SET total_classes = $2,
		    classes_remaining = $3,
		    purchase_date = $4,
		    expiry_date = $5,
		    amount_paid = $6,
		    notes = $7,
		    active = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + couponColumns

	return scanCoupon(tx.QueryRowContext(ctx, query,
		c.ID,
		c.TotalClasses,
		c.ClassesRemaining,
		c.PurchaseDate,
		c.ExpiryDate,
		c.AmountPaid,
		c.Notes,
		c.Active,
	))
}

func (r *TopUpRepo) Insert(ctx context.Context, tx *sql.Tx, g models.Grant) (*models.Coupon, error) {
	query := `
		INSERT INTO class_coupons (
			member_id, total_classes, classes_remaining, purchase_date,
			expiry_date, amount_paid, notes, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + couponColumns

	return scanCoupon(tx.QueryRowContext(ctx, query,
		g.MemberID,
		g.TotalClasses,
		g.ClassesRemaining,
		g.PurchaseDate,
		g.ExpiryDate,
		g.AmountPaid,
		g.Notes,
		g.Active,
	))
}
