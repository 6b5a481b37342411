package models

// MemberRef is the slice of a member row shown next to their coupons.
type MemberRef struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone,omitempty"`
}
