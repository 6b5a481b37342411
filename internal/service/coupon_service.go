package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Cheertaboi/class-coupon-ledger/internal/clock"
	"github.com/Cheertaboi/class-coupon-ledger/internal/metrics"
	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
)

// Repos required by service (use interfaces to allow mocking)
type CouponRepo interface {
	ListAll(ctx context.Context, f models.CouponFilter, today models.Date) ([]models.CouponWithMember, error)
	GetByID(ctx context.Context, id int64) (*models.CouponWithMember, error)
	ListForMember(ctx context.Context, memberID int64, activeOnly bool, today models.Date) ([]models.Coupon, error)
	ListExpiring(ctx context.Context, from, to models.Date) ([]models.CouponWithMember, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, id int64, u models.CouponUpdate) (*models.Coupon, error)
	Deactivate(ctx context.Context, id int64) (*models.Coupon, error)
	Delete(ctx context.Context, id int64) (*models.Coupon, error)
	Stats(ctx context.Context, today models.Date) (*models.CouponStats, error)
	MemberSummary(ctx context.Context, memberID int64) (*models.MemberCouponSummary, error)
}

type UsageRepo interface {
	UseClasses(ctx context.Context, id int64, classes int, today models.Date) (*models.Coupon, error)
	AddClasses(ctx context.Context, id int64, classes int) (*models.Coupon, error)
}

type TopUpRepo interface {
	GetAndLockLatest(ctx context.Context, tx *sql.Tx, memberID int64) (*models.Coupon, error)
	SaveMerged(ctx context.Context, tx *sql.Tx, c models.Coupon) (*models.Coupon, error)
	Insert(ctx context.Context, tx *sql.Tx, g models.Grant) (*models.Coupon, error)
}

// maxTopUpAttempts bounds the insert-race retry to a single extra attempt.
const maxTopUpAttempts = 2

type CouponService struct {
	db        *sql.DB // used for transactions
	coupons   CouponRepo
	usage     UsageRepo
	topUps    TopUpRepo
	clock     clock.Clock
	opTimeout time.Duration
}

func NewCouponService(db *sql.DB, cRepo CouponRepo, uRepo UsageRepo, tRepo TopUpRepo, clk clock.Clock) *CouponService {
	return &CouponService{
		db:        db,
		coupons:   cRepo,
		usage:     uRepo,
		topUps:    tRepo,
		clock:     clk,
		opTimeout: 8 * time.Second,
	}
}

func (s *CouponService) today() models.Date {
	return models.DateOf(s.clock.Now())
}

func (s *CouponService) List(ctx context.Context, f models.CouponFilter) ([]models.CouponWithMember, error) {
	coupons, err := s.coupons.ListAll(ctx, f, s.today())
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

func (s *CouponService) Get(ctx context.Context, id int64) (*models.CouponWithMember, error) {
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon %d: %w", id, err)
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	return c, nil
}

// ListForMember returns a member's coupons, most urgent first. With activeOnly
// it only returns coupons that can still be consumed today.
func (s *CouponService) ListForMember(ctx context.Context, memberID int64, activeOnly bool) ([]models.Coupon, error) {
	coupons, err := s.coupons.ListForMember(ctx, memberID, activeOnly, s.today())
	if err != nil {
		return nil, fmt.Errorf("list member %d coupons: %w", memberID, err)
	}
	return coupons, nil
}

// ListExpiring returns usable coupons whose expiry falls within the next days.
func (s *CouponService) ListExpiring(ctx context.Context, days int) ([]models.CouponWithMember, error) {
	if days < 0 {
		days = models.DefaultExpiringDays
	}
	today := s.today()
	coupons, err := s.coupons.ListExpiring(ctx, today, today.AddDays(days))
	if err != nil {
		return nil, fmt.Errorf("list expiring coupons: %w", err)
	}
	return coupons, nil
}

// TopUp grants classes to a member, merging into their latest coupon row or
// creating the first one. A lost race on the first insert is retried once as
// a merge.
func (s *CouponService) TopUp(ctx context.Context, in models.TopUp) (*models.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	grant := in.Resolve(s.today())

	var lastErr error
	for attempt := 1; attempt <= maxTopUpAttempts; attempt++ {
		c, err := s.topUpOnce(ctx, grant)
		if err == nil {
			metrics.RecordOutcome("top_up", "ok")
			return c, nil
		}
		if isForeignKeyViolation(err) {
			metrics.RecordOutcome("top_up", "not_found")
			return nil, ErrMemberNotFound
		}
		if !isUniqueViolation(err) {
			metrics.RecordOutcome("top_up", "error")
			return nil, err
		}
		lastErr = err
		if attempt < maxTopUpAttempts {
			metrics.TopUpRetries.Inc()
		}
	}

	metrics.RecordOutcome("top_up", "error")
	return nil, fmt.Errorf("top up member %d: %w", grant.MemberID, lastErr)
}

func (s *CouponService) topUpOnce(ctx context.Context, g models.Grant) (*models.Coupon, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	// ensure rollback on any exit
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	latest, err := s.topUps.GetAndLockLatest(ctx, tx, g.MemberID)
	if err != nil {
		return nil, fmt.Errorf("lock latest coupon: %w", err)
	}

	var saved *models.Coupon
	if latest != nil {
		saved, err = s.topUps.SaveMerged(ctx, tx, MergeTopUp(*latest, g))
		if err != nil {
			return nil, fmt.Errorf("save merged coupon: %w", err)
		}
	} else {
		saved, err = s.topUps.Insert(ctx, tx, g)
		if err != nil {
			return nil, fmt.Errorf("insert coupon: %w", err)
		}
	}
	if saved == nil {
		return nil, errors.New("top-up statement returned no row")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit: %w", err)
	}
	committed = true

	return saved, nil
}

// Use debits classes from a coupon. The debit clamps at zero and deactivates
// the coupon once it is used up.
func (s *CouponService) Use(ctx context.Context, id int64, classes int) (*models.Coupon, error) {
	if classes < 1 {
		return nil, ErrInvalidClassCount
	}

	c, err := s.usage.UseClasses(ctx, id, classes, s.today())
	if err != nil {
		metrics.RecordOutcome("use", "error")
		return nil, fmt.Errorf("use coupon %d: %w", id, err)
	}
	if c != nil {
		metrics.RecordOutcome("use", "ok")
		return c, nil
	}

	// nothing matched: tell a missing coupon apart from an unusable one
	exists, err := s.coupons.Exists(ctx, id)
	if err != nil {
		metrics.RecordOutcome("use", "error")
		return nil, fmt.Errorf("check coupon %d: %w", id, err)
	}
	if !exists {
		metrics.RecordOutcome("use", "not_found")
		return nil, ErrCouponNotFound
	}
	metrics.RecordOutcome("use", "rejected")
	return nil, ErrCouponUnavailable
}

// AddClasses credits one specific coupon and reactivates it.
func (s *CouponService) AddClasses(ctx context.Context, id int64, classes int) (*models.Coupon, error) {
	if classes < 1 {
		return nil, ErrInvalidClassCount
	}
	c, err := s.usage.AddClasses(ctx, id, classes)
	if err != nil {
		return nil, fmt.Errorf("add classes to coupon %d: %w", id, err)
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	metrics.RecordOutcome("add_classes", "ok")
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, id int64, u models.CouponUpdate) (*models.Coupon, error) {
	c, err := s.coupons.Update(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update coupon %d: %w", id, err)
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	return c, nil
}

func (s *CouponService) Deactivate(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := s.coupons.Deactivate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deactivate coupon %d: %w", id, err)
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	return c, nil
}

// Delete removes the coupon row for good.
func (s *CouponService) Delete(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := s.coupons.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete coupon %d: %w", id, err)
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	return c, nil
}

func (s *CouponService) Stats(ctx context.Context) (*models.CouponStats, error) {
	stats, err := s.coupons.Stats(ctx, s.today())
	if err != nil {
		return nil, fmt.Errorf("coupon stats: %w", err)
	}
	return stats, nil
}

func (s *CouponService) MemberSummary(ctx context.Context, memberID int64) (*models.MemberCouponSummary, error) {
	summary, err := s.coupons.MemberSummary(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("member %d coupon summary: %w", memberID, err)
	}
	return summary, nil
}
