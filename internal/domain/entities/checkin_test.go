package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestDetails_Validate(t *testing.T) {
	card := PaymentTypeCard
	bogus := PaymentType("bitcoin")
	amount := 5.0
	negative := -1.0

	tests := []struct {
		name    string
		details Details
		field   string
	}{
		{"empty details", Details{}, ""},
		{"full valid", Details{ShowerTime: strPtr("06:30"), WakeupTime: strPtr("05:45:00"), PaymentAmount: &amount, PaymentType: &card}, ""},
		{"bad shower time", Details{ShowerTime: strPtr("6:30")}, "shower_time"},
		{"bad wakeup hour", Details{WakeupTime: strPtr("24:00")}, "wakeup_time"},
		{"negative amount", Details{PaymentAmount: &negative}, "payment_amount"},
		{"unknown payment type", Details{PaymentType: &bogus}, "payment_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.details.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrorTypeBadRequest, appErr.Type)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestCheckin_AssignAndClear(t *testing.T) {
	c := &Checkin{ID: "c1", MatNumber: 1}
	assert.True(t, c.IsAvailable())

	c.Assign("g1", Details{Comments: strPtr("late arrival")})
	assert.False(t, c.IsAvailable())
	assert.Equal(t, "g1", *c.GuestID)

	c.ClearAssignment()
	assert.True(t, c.IsAvailable())
	assert.True(t, c.Details.IsEmpty())
}

func TestDetails_Overlay(t *testing.T) {
	base := Details{Comments: strPtr("a"), ShowerTime: strPtr("06:00")}
	got := base.Overlay(Details{ShowerTime: strPtr("07:00")})

	assert.Equal(t, "a", *got.Comments)
	assert.Equal(t, "07:00", *got.ShowerTime)
	assert.Equal(t, "06:00", *base.ShowerTime)
}

func TestBan_Covers(t *testing.T) {
	ban := &Ban{FromDate: NewDate(2024, 1, 10), ToDate: NewDate(2024, 1, 20), Active: true}

	assert.True(t, ban.Covers(NewDate(2024, 1, 10)))
	assert.True(t, ban.Covers(NewDate(2024, 1, 20)))
	assert.False(t, ban.Covers(NewDate(2024, 1, 21)))
	assert.False(t, ban.Covers(NewDate(2024, 1, 9)))

	ban.Active = false
	assert.False(t, ban.Covers(NewDate(2024, 1, 15)))
}

func TestDate_JSONAndScan(t *testing.T) {
	d := NewDate(2024, time.February, 1)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-01"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(d))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-02-01", scanned.String())

	require.NoError(t, scanned.Scan([]byte("2024-03-05T00:00:00Z")))
	assert.Equal(t, "2024-03-05", scanned.String())

	assert.Error(t, json.Unmarshal([]byte(`"02/01/2024"`), &back))
}

func TestTemplate_Validate(t *testing.T) {
	valid := &Template{AllMats: "1-10", HandicapMats: "2", WorkMats: "9-10"}
	assert.NoError(t, valid.Validate())

	bad := &Template{AllMats: "1-10", SocketMats: "11"}
	var appErr *apperrors.AppError
	require.ErrorAs(t, bad.Validate(), &appErr)
	assert.Equal(t, "socket_mats", appErr.Field)

	missing := &Template{}
	require.ErrorAs(t, missing.Validate(), &appErr)
	assert.Equal(t, "all_mats", appErr.Field)
}
