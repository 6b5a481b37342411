package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	MemberID   int64            `json:"member_id" validate:"required,min=1"`
	Classes    *int             `json:"total_classes" validate:"omitempty,min=1,max=100"`
	AmountPaid *decimal.Decimal `json:"amount_paid" validate:"omitempty,gte=0"`
	Notes      *string          `json:"notes" validate:"omitempty,max=5"`
}

func intPtr(v int) *int { return &v }

func TestValidateStructPasses(t *testing.T) {
	amount := decimal.NewFromInt(100)
	req := sampleRequest{MemberID: 1, Classes: intPtr(10), AmountPaid: &amount}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Classes: intPtr(101)})
	require.NotNil(t, err)
	require.Len(t, err.Fields, 2)

	assert.Equal(t, "member_id", err.Fields[0].Field)
	assert.Equal(t, "member_id is required", err.Fields[0].Message)
	assert.Equal(t, "total_classes", err.Fields[1].Field)
	assert.Equal(t, "total_classes must be at most 100", err.Fields[1].Message)
	assert.Contains(t, err.Error(), "; ")
}

func TestValidateStructNegativeDecimal(t *testing.T) {
	amount := decimal.NewFromInt(-1)
	err := ValidateStruct(&sampleRequest{MemberID: 1, AmountPaid: &amount})
	require.NotNil(t, err)
	require.Len(t, err.Fields, 1)
	assert.Equal(t, "amount_paid", err.Fields[0].Field)
	assert.Equal(t, "amount_paid must be greater than or equal to 0", err.Fields[0].Message)
}

func TestValidateStructStringLength(t *testing.T) {
	notes := "too long"
	err := ValidateStruct(&sampleRequest{MemberID: 1, Notes: &notes})
	require.NotNil(t, err)
	assert.Equal(t, "notes must be at most 5 characters", err.Fields[0].Message)
}
