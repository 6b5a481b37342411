package models

import "github.com/shopspring/decimal"

// CouponStats aggregates the whole club. ExpiredCoupons counts rows that are
// past expiry but still flagged active.
type CouponStats struct {
	TotalCoupons          int64           `json:"total_coupons"`
	ActiveCoupons         int64           `json:"active_coupons"`
	UsedCoupons           int64           `json:"used_coupons"`
	ExpiredCoupons        int64           `json:"expired_coupons"`
	TotalRemainingClasses int64           `json:"total_remaining_classes"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
}

type MemberCouponSummary struct {
	TotalCoupons          int64           `json:"total_coupons"`
	ActiveCoupons         int64           `json:"active_coupons"`
	TotalClassesAvailable int64           `json:"total_classes_available"`
	TotalClassesUsed      int64           `json:"total_classes_used"`
	TotalSpent            decimal.Decimal `json:"total_spent"`
}
