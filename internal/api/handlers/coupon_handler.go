package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
	"github.com/Cheertaboi/class-coupon-ledger/internal/validation"
)

// CouponLedger is the set of ledger operations the HTTP layer calls.
type CouponLedger interface {
	List(ctx context.Context, f models.CouponFilter) ([]models.CouponWithMember, error)
	Get(ctx context.Context, id int64) (*models.CouponWithMember, error)
	ListForMember(ctx context.Context, memberID int64, activeOnly bool) ([]models.Coupon, error)
	ListExpiring(ctx context.Context, days int) ([]models.CouponWithMember, error)
	TopUp(ctx context.Context, in models.TopUp) (*models.Coupon, error)
	Use(ctx context.Context, id int64, classes int) (*models.Coupon, error)
	AddClasses(ctx context.Context, id int64, classes int) (*models.Coupon, error)
	Update(ctx context.Context, id int64, u models.CouponUpdate) (*models.Coupon, error)
	Deactivate(ctx context.Context, id int64) (*models.Coupon, error)
	Delete(ctx context.Context, id int64) (*models.Coupon, error)
	Stats(ctx context.Context) (*models.CouponStats, error)
	MemberSummary(ctx context.Context, memberID int64) (*models.MemberCouponSummary, error)
}

// --- Request DTOs ---

type CreateCouponRequest struct {
	MemberID         int64            `json:"member_id" validate:"required,min=1"`
	TotalClasses     *int             `json:"total_classes" validate:"omitempty,min=1,max=100"`
	ClassesRemaining *int             `json:"classes_remaining" validate:"omitempty,min=0"`
	PurchaseDate     *models.Date     `json:"purchase_date"`
	ExpiryDate       *models.Date     `json:"expiry_date"`
	AmountPaid       *decimal.Decimal `json:"amount_paid" validate:"omitempty,gte=0"`
	Notes            *string          `json:"notes" validate:"omitempty,max=2000"`
	Active           *bool            `json:"active"`
}

func (req CreateCouponRequest) toTopUp() models.TopUp {
	return models.TopUp{
		MemberID:         req.MemberID,
		TotalClasses:     req.TotalClasses,
		ClassesRemaining: req.ClassesRemaining,
		PurchaseDate:     req.PurchaseDate,
		ExpiryDate:       req.ExpiryDate,
		AmountPaid:       nullDecimal(req.AmountPaid),
		Notes:            req.Notes,
		Active:           req.Active,
	}
}

// UpdateCouponRequest replaces a coupon; omitted nullable fields are cleared.
type UpdateCouponRequest struct {
	TotalClasses     *int             `json:"total_classes" validate:"required,min=1,max=100"`
	ClassesRemaining *int             `json:"classes_remaining" validate:"required,min=0"`
	ExpiryDate       *models.Date     `json:"expiry_date"`
	AmountPaid       *decimal.Decimal `json:"amount_paid" validate:"omitempty,gte=0"`
	Notes            *string          `json:"notes" validate:"omitempty,max=2000"`
	Active           *bool            `json:"active" validate:"required"`
}

type ClassesRequest struct {
	Classes *int `json:"classes" validate:"omitempty,min=1"`
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// --- Handler struct & constructor ---

type CouponHandler struct {
	ledger CouponLedger
}

func NewCouponHandler(ledger CouponLedger) *CouponHandler {
	return &CouponHandler{ledger: ledger}
}

// --- Handlers ---

// ListCoupons handles GET /coupons?member_id=&active=&expired=
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f models.CouponFilter

	if raw := q.Get("member_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid member ID")
			return
		}
		f.MemberID = &id
	}
	if q.Has("active") {
		active := q.Get("active") == "true"
		f.Active = &active
	}
	if q.Has("expired") {
		expired := q.Get("expired") == "true"
		f.Expired = &expired
	}

	coupons, err := h.ledger.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err, "Error fetching coupons")
		return
	}
	writeList(w, coupons)
}

// Stats handles GET /coupons/stats
func (h *CouponHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Error fetching coupon stats")
		return
	}
	writeData(w, http.StatusOK, "", stats)
}

// Expiring handles GET /coupons/expiring?days=N (default 30)
func (h *CouponHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days := models.DefaultExpiringDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			days = n
		}
	}

	coupons, err := h.ledger.ListExpiring(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err, "Error fetching expiring coupons")
		return
	}
	writeList(w, coupons)
}

// GetCoupon handles GET /coupons/{id}
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid coupon ID")
		return
	}

	coupon, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Error fetching coupon")
		return
	}
	writeData(w, http.StatusOK, "", coupon)
}

// CreateCoupon handles POST /coupons. A member who already holds a coupon
// gets the new classes merged into it.
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidation(w, verr)
		return
	}

	coupon, err := h.ledger.TopUp(r.Context(), req.toTopUp())
	if err != nil {
		writeServiceError(w, r, err, "Error creating coupon")
		return
	}
	writeData(w, http.StatusCreated, "Coupon created successfully", coupon)
}

// UpdateCoupon handles PUT /coupons/{id}
func (h *CouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid coupon ID")
		return
	}

	var req UpdateCouponRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidation(w, verr)
		return
	}

	coupon, err := h.ledger.Update(r.Context(), id, models.CouponUpdate{
		TotalClasses:     *req.TotalClasses,
		ClassesRemaining: *req.ClassesRemaining,
		ExpiryDate:       req.ExpiryDate,
		AmountPaid:       nullDecimal(req.AmountPaid),
		Notes:            req.Notes,
		Active:           *req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err, "Error updating coupon")
		return
	}
	writeData(w, http.StatusOK, "Coupon updated successfully", coupon)
}

// UseCoupon handles PATCH /coupons/{id}/use {classes} (default 1)
func (h *CouponHandler) UseCoupon(w http.ResponseWriter, r *http.Request) {
	id, classes, ok := h.classesInput(w, r, 1)
	if !ok {
		return
	}

	coupon, err := h.ledger.Use(r.Context(), id, classes)
	if err != nil {
		writeServiceError(w, r, err, "Error using coupon")
		return
	}
	writeData(w, http.StatusOK, fmt.Sprintf("Used %d class(es) from coupon", classes), coupon)
}

// AddClasses handles PATCH /coupons/{id}/add-classes {classes}
func (h *CouponHandler) AddClasses(w http.ResponseWriter, r *http.Request) {
	id, classes, ok := h.classesInput(w, r, 0)
	if !ok {
		return
	}

	coupon, err := h.ledger.AddClasses(r.Context(), id, classes)
	if err != nil {
		writeServiceError(w, r, err, "Error adding classes to coupon")
		return
	}
	writeData(w, http.StatusOK, fmt.Sprintf("Added %d class(es) to coupon", classes), coupon)
}

// classesInput reads the coupon id and {classes} body. A zero fallback makes
// the field mandatory.
func (h *CouponHandler) classesInput(w http.ResponseWriter, r *http.Request, fallback int) (int64, int, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid coupon ID")
		return 0, 0, false
	}

	var req ClassesRequest
	if err := decodeBody(r, &req); err != nil || validation.ValidateStruct(&req) != nil {
		writeError(w, http.StatusBadRequest, "Classes must be a positive integer")
		return 0, 0, false
	}

	classes := fallback
	if req.Classes != nil {
		classes = *req.Classes
	}
	if classes < 1 {
		writeError(w, http.StatusBadRequest, "Classes must be a positive integer")
		return 0, 0, false
	}
	return id, classes, true
}

// DeactivateCoupon handles PATCH /coupons/{id}/deactivate
func (h *CouponHandler) DeactivateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid coupon ID")
		return
	}

	coupon, err := h.ledger.Deactivate(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Error deactivating coupon")
		return
	}
	writeData(w, http.StatusOK, "Coupon deactivated successfully", coupon)
}

// DeleteCoupon handles DELETE /coupons/{id}
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid coupon ID")
		return
	}

	coupon, err := h.ledger.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Error deleting coupon")
		return
	}
	writeData(w, http.StatusOK, "Coupon deleted successfully", coupon)
}
