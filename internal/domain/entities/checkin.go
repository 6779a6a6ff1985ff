package entities

import (
	"fmt"
	"regexp"
	"time"

	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// PaymentType is how a guest paid for a mat
type PaymentType string

const (
	PaymentTypeCash    PaymentType = "cash"
	PaymentTypeCard    PaymentType = "card"
	PaymentTypeCheck   PaymentType = "check"
	PaymentTypeVoucher PaymentType = "voucher"
	PaymentTypeWaived  PaymentType = "waived"
)

// PaymentTypes lists every accepted payment type
var PaymentTypes = []PaymentType{
	PaymentTypeCash,
	PaymentTypeCard,
	PaymentTypeCheck,
	PaymentTypeVoucher,
	PaymentTypeWaived,
}

// Valid reports whether p is one of PaymentTypes
func (p PaymentType) Valid() bool {
	for _, known := range PaymentTypes {
		if p == known {
			return true
		}
	}
	return false
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

// Checkin is one mat at one facility on one night. A nil GuestID means the
// mat is available, and then every detail field is nil as well.
type Checkin struct {
	ID          string    `json:"id" db:"id"`
	FacilityID  string    `json:"facility_id" db:"facility_id"`
	CheckinDate Date      `json:"checkin_date" db:"checkin_date"`
	MatNumber   int       `json:"mat_number" db:"mat_number"`
	GuestID     *string   `json:"guest_id" db:"guest_id"`
	Features    string    `json:"features" db:"features"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Details
}

// Details are the per-stay fields recorded while a mat is occupied
type Details struct {
	Comments      *string      `json:"comments" db:"comments"`
	PaymentType   *PaymentType `json:"payment_type" db:"payment_type"`
	PaymentAmount *float64     `json:"payment_amount" db:"payment_amount"`
	ShowerTime    *string      `json:"shower_time" db:"shower_time"`
	WakeupTime    *string      `json:"wakeup_time" db:"wakeup_time"`
}

// IsAvailable reports whether no guest holds the mat
func (c *Checkin) IsAvailable() bool {
	return c.GuestID == nil
}

// Assign puts guestID on the mat with the given details
func (c *Checkin) Assign(guestID string, details Details) {
	id := guestID
	c.GuestID = &id
	c.Details = details
}

// ClearAssignment returns the mat to the available state
func (c *Checkin) ClearAssignment() {
	c.GuestID = nil
	c.Details = Details{}
}

// Validate checks clock formats, amount sign and payment type
func (d Details) Validate() error {
	if d.ShowerTime != nil && !clockPattern.MatchString(*d.ShowerTime) {
		return apperrors.NewBadRequestError(fmt.Sprintf("shower time %q must be HH:MM or HH:MM:SS", *d.ShowerTime)).WithField("shower_time")
	}
	if d.WakeupTime != nil && !clockPattern.MatchString(*d.WakeupTime) {
		return apperrors.NewBadRequestError(fmt.Sprintf("wakeup time %q must be HH:MM or HH:MM:SS", *d.WakeupTime)).WithField("wakeup_time")
	}
	if d.PaymentAmount != nil && *d.PaymentAmount < 0 {
		return apperrors.NewBadRequestError("payment amount must not be negative").WithField("payment_amount")
	}
	if d.PaymentType != nil && !d.PaymentType.Valid() {
		return apperrors.NewBadRequestError(fmt.Sprintf("unknown payment type %q", *d.PaymentType)).WithField("payment_type")
	}
	return nil
}

// Overlay returns d with every non-nil field of o applied on top
func (d Details) Overlay(o Details) Details {
	if o.Comments != nil {
		d.Comments = o.Comments
	}
	if o.PaymentType != nil {
		d.PaymentType = o.PaymentType
	}
	if o.PaymentAmount != nil {
		d.PaymentAmount = o.PaymentAmount
	}
	if o.ShowerTime != nil {
		d.ShowerTime = o.ShowerTime
	}
	if o.WakeupTime != nil {
		d.WakeupTime = o.WakeupTime
	}
	return d
}

// IsEmpty reports whether every detail field is nil
func (d Details) IsEmpty() bool {
	return d == Details{}
}
