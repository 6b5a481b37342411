package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/class-coupon-ledger/internal/models"
	"github.com/Cheertaboi/class-coupon-ledger/internal/validation"
)

type TopUpRequest struct {
	Classes      *int             `json:"classes" validate:"omitempty,min=1,max=100"`
	PurchaseDate *models.Date     `json:"purchase_date"`
	ExpiryDate   *models.Date     `json:"expiry_date"`
	AmountPaid   *decimal.Decimal `json:"amount_paid" validate:"omitempty,gte=0"`
	Notes        *string          `json:"notes" validate:"omitempty,max=2000"`
	Active       *bool            `json:"active"`
}

type MemberCouponHandler struct {
	ledger CouponLedger
}

func NewMemberCouponHandler(ledger CouponLedger) *MemberCouponHandler {
	return &MemberCouponHandler{ledger: ledger}
}

// ListCoupons handles GET /members/{id}/coupons?active_only= (default true)
func (h *MemberCouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	activeOnly := true
	if r.URL.Query().Has("active_only") {
		activeOnly = r.URL.Query().Get("active_only") == "true"
	}

	coupons, err := h.ledger.ListForMember(r.Context(), memberID, activeOnly)
	if err != nil {
		writeServiceError(w, r, err, "Error fetching member coupons")
		return
	}
	writeList(w, coupons)
}

// Summary handles GET /members/{id}/coupon-summary
func (h *MemberCouponHandler) Summary(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	summary, err := h.ledger.MemberSummary(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, r, err, "Error fetching member coupon summary")
		return
	}
	writeData(w, http.StatusOK, "", summary)
}

// TopUp handles POST /members/{id}/coupon/top-up
func (h *MemberCouponHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	var req TopUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidation(w, verr)
		return
	}

	coupon, err := h.ledger.TopUp(r.Context(), models.TopUp{
		MemberID:     memberID,
		TotalClasses: req.Classes,
		PurchaseDate: req.PurchaseDate,
		ExpiryDate:   req.ExpiryDate,
		AmountPaid:   nullDecimal(req.AmountPaid),
		Notes:        req.Notes,
		Active:       req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err, "Error topping up member coupon")
		return
	}
	writeData(w, http.StatusOK, "Coupon topped up successfully", coupon)
}
