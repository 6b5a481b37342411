package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
)

const couponColumns = `id, member_id, total_classes, classes_remaining, purchase_date,
		expiry_date, amount_paid, notes, active, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var joinedColumns = []string{
	"cc.id", "cc.member_id", "cc.total_classes", "cc.classes_remaining", "cc.purchase_date",
	"cc.expiry_date", "cc.amount_paid", "cc.notes", "cc.active", "cc.created_at", "cc.updated_at",
	"m.first_name", "m.last_name", "m.email", "m.phone",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func couponDest(c *models.Coupon) []interface{} {
	return []interface{}{
		&c.ID,
		&c.MemberID,
		&c.TotalClasses,
		&c.ClassesRemaining,
		&c.PurchaseDate,
		&c.ExpiryDate,
		&c.AmountPaid,
		&c.Notes,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

// scanCoupon returns nil, nil when the row is missing.
func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var c models.Coupon
	if err := row.Scan(couponDest(&c)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func scanCouponWithMember(row rowScanner) (*models.CouponWithMember, error) {
	var c models.CouponWithMember
	dest := append(couponDest(&c.Coupon), &c.FirstName, &c.LastName, &c.Email, &c.Phone)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

func (r *CouponRepo) ListAll(ctx context.Context, f models.CouponFilter, today models.Date) ([]models.CouponWithMember, error) {
	q := psql.Select(joinedColumns...).
		From("class_coupons cc").
		Join("members m ON cc.member_id = m.id")

	if f.MemberID != nil {
		q = q.Where(sq.Eq{"cc.member_id": *f.MemberID})
	}
	if f.Active != nil {
		q = q.Where(sq.Eq{"cc.active": *f.Active})
	}
	if f.Expired != nil {
		if *f.Expired {
			q = q.Where(sq.Lt{"cc.expiry_date": today})
		} else {
			q = q.Where(sq.Or{
				sq.Eq{"cc.expiry_date": nil},
				sq.GtOrEq{"cc.expiry_date": today},
			})
		}
	}
	q = q.OrderBy("cc.purchase_date DESC", "cc.id DESC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	return r.queryWithMember(ctx, query, args...)
}

func (r *CouponRepo) GetByID(ctx context.Context, id int64) (*models.CouponWithMember, error) {
	query, args, err := psql.Select(joinedColumns...).
		From("class_coupons cc").
		Join("members m ON cc.member_id = m.id").
		Where(sq.Eq{"cc.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}
	return scanCouponWithMember(r.db.QueryRowContext(ctx, query, args...))
}

func (r *CouponRepo) ListForMember(ctx context.Context, memberID int64, activeOnly bool, today models.Date) ([]models.Coupon, error) {
	q := psql.Select(couponColumns).
		From("class_coupons").
		Where(sq.Eq{"member_id": memberID})

	if activeOnly {
		q = q.Where(sq.Eq{"active": true}).
			Where(sq.Gt{"classes_remaining": 0}).
			Where(sq.Or{
				sq.Eq{"expiry_date": nil},
				sq.GtOrEq{"expiry_date": today},
			})
	}
	// soonest expiry first, then oldest purchase
	q = q.OrderBy("expiry_date ASC NULLS LAST", "purchase_date ASC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build member query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := []models.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *CouponRepo) ListExpiring(ctx context.Context, from, to models.Date) ([]models.CouponWithMember, error) {
	query := `
		SELECT ` + joinedSelect() + `
		FROM class_coupons cc
		JOIN members m ON cc.member_id = m.id
		WHERE cc.active = true
		  AND cc.classes_remaining > 0
		  AND cc.expiry_date IS NOT NULL
		  AND cc.expiry_date BETWEEN $1 AND $2
		ORDER BY cc.expiry_date ASC
	`
	return r.queryWithMember(ctx, query, from, to)
}

func (r *CouponRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM class_coupons WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Update overwrites every mutable field; the last writer wins.
func (r *CouponRepo) Update(ctx context.Context, id int64, u models.CouponUpdate) (*models.Coupon, error) {
	query, args, err := psql.Update("class_coupons").
		Set("total_classes", u.TotalClasses).
		Set("classes_remaining", u.ClassesRemaining).
		Set("expiry_date", u.ExpiryDate).
		Set("amount_paid", u.AmountPaid).
		Set("notes", u.Notes).
		Set("active", u.Active).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + couponColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}
	return scanCoupon(r.db.QueryRowContext(ctx, query, args...))
}

func (r *CouponRepo) Deactivate(ctx context.Context, id int64) (*models.Coupon, error) {
	query := `
		UPDATE class_coupons
		SET active = false, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + couponColumns
	return scanCoupon(r.db.QueryRowContext(ctx, query, id))
}

func (r *CouponRepo) Delete(ctx context.Context, id int64) (*models.Coupon, error) {
	query := `DELETE FROM class_coupons WHERE id = $1 RETURNING ` + couponColumns
	return scanCoupon(r.db.QueryRowContext(ctx, query, id))
}

func (r *CouponRepo) Stats(ctx context.Context, today models.Date) (*models.CouponStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE active = true),
			COUNT(*) FILTER (WHERE classes_remaining = 0),
			COUNT(*) FILTER (WHERE expiry_date < $1 AND active = true),
			COALESCE(SUM(classes_remaining) FILTER (WHERE active = true), 0),
			COALESCE(SUM(amount_paid), 0)
		FROM class_coupons
	`
	var s models.CouponStats
	err := r.db.QueryRowContext(ctx, query, today).Scan(
		&s.TotalCoupons,
		&s.ActiveCoupons,
		&s.UsedCoupons,
		&s.ExpiredCoupons,
		&s.TotalRemainingClasses,
		&s.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CouponRepo) MemberSummary(ctx context.Context, memberID int64) (*models.MemberCouponSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE active = true AND classes_remaining > 0),
			COALESCE(SUM(classes_remaining) FILTER (WHERE active = true), 0),
			COALESCE(SUM(total_classes - classes_remaining), 0),
			COALESCE(SUM(amount_paid), 0)
		FROM class_coupons
		WHERE member_id = $1
	`
	var s models.MemberCouponSummary
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(
		&s.TotalCoupons,
		&s.ActiveCoupons,
		&s.TotalClassesAvailable,
		&s.TotalClassesUsed,
		&s.TotalSpent,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CouponRepo) queryWithMember(ctx context.Context, query string, args ...interface{}) ([]models.CouponWithMember, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := []models.CouponWithMember{}
	for rows.Next() {
		c, err := scanCouponWithMember(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func joinedSelect() string {
	return strings.Join(joinedColumns, ", ")
}
