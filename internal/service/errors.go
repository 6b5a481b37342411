package service

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponUnavailable means the coupon exists but is inactive, used up
	// or expired, so nothing was debited.
	ErrCouponUnavailable = errors.New("coupon is inactive, expired or has no remaining classes")
	ErrMemberNotFound    = errors.New("member not found")
	ErrInvalidClassCount = errors.New("classes must be a positive integer")
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == pqForeignKeyViolation
}
