package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-03-10", want: "2025-03-10"},
		{in: " 2025-03-10 ", want: "2025-03-10"},
		{in: "2025-03-10T23:15:00Z", want: "2025-03-10"},
		{in: "10/03/2025", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String())
	}
}

func TestDateJSON(t *testing.T) {
	var body struct {
		Expiry *Date `json:"expiry_date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"expiry_date":"2025-06-30"}`), &body))
	require.NotNil(t, body.Expiry)
	assert.Equal(t, NewDate(2025, time.June, 30), *body.Expiry)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"expiry_date":"2025-06-30"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"expiry_date":null}`), &body))
	assert.Nil(t, body.Expiry)

	assert.Error(t, json.Unmarshal([]byte(`{"expiry_date":"soon"}`), &body))
}

func TestDateScan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-10", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-31")))
	assert.Equal(t, "2024-12-31", d.String())

	require.NoError(t, d.Scan("2025-01-01"))
	assert.Equal(t, "2025-01-01", d.String())

	assert.Error(t, d.Scan(int64(20250101)))
}

func TestDateOfKeepsLocalDay(t *testing.T) {
	evening := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	assert.Equal(t, "2025-03-10", DateOf(evening).String())
}

func TestDateOrdering(t *testing.T) {
	d := NewDate(2025, time.February, 27)
	assert.Equal(t, "2025-03-01", d.AddDays(2).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))
}

func TestTopUpResolveDefaults(t *testing.T) {
	today := NewDate(2025, time.March, 10)

	g := TopUp{MemberID: 7}.Resolve(today)

	assert.Equal(t, int64(7), g.MemberID)
	assert.Equal(t, DefaultTotalClasses, g.TotalClasses)
	assert.Equal(t, DefaultTotalClasses, g.ClassesRemaining)
	assert.Equal(t, today, g.PurchaseDate)
	assert.Nil(t, g.ExpiryDate)
	assert.False(t, g.AmountPaid.Valid)
	assert.True(t, g.Active)
}

func TestTopUpResolveExplicitValues(t *testing.T) {
	total, remaining := 8, 5
	active := false
	purchase := NewDate(2025, time.January, 2)
	notes := "gift"

	g := TopUp{
		MemberID:         3,
		TotalClasses:     &total,
		ClassesRemaining: &remaining,
		PurchaseDate:     &purchase,
		AmountPaid:       decimal.NewNullDecimal(decimal.NewFromInt(40)),
		Notes:            &notes,
		Active:           &active,
	}.Resolve(NewDate(2025, time.March, 10))

	assert.Equal(t, 8, g.TotalClasses)
	assert.Equal(t, 5, g.ClassesRemaining)
	assert.Equal(t, purchase, g.PurchaseDate)
	assert.True(t, g.AmountPaid.Valid)
	assert.Equal(t, "gift", *g.Notes)
	assert.False(t, g.Active)
}

func TestTopUpRemainingFollowsTotal(t *testing.T) {
	total := 4
	g := TopUp{TotalClasses: &total}.Resolve(NewDate(2025, time.March, 10))
	assert.Equal(t, 4, g.ClassesRemaining)
}

func TestCouponJSONShape(t *testing.T) {
	c := CouponWithMember{
		Coupon: Coupon{
			ID:               1,
			MemberID:         7,
			TotalClasses:     10,
			ClassesRemaining: 4,
			PurchaseDate:     NewDate(2025, time.March, 10),
			Active:           true,
		},
		MemberRef: MemberRef{FirstName: "Ana", LastName: "Silva"},
	}

	out, err := json.Marshal(c)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "2025-03-10", fields["purchase_date"])
	assert.Nil(t, fields["expiry_date"])
	assert.Nil(t, fields["amount_paid"])
	assert.Equal(t, "Ana", fields["first_name"])
	assert.NotContains(t, fields, "phone")
}
