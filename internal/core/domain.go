package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryOther         Category = "Other"
)

const (
	PaymentCash  PaymentMethod = "Cash"
	PaymentCard  PaymentMethod = "Card"
	PaymentUPI   PaymentMethod = "UPI"
	PaymentOther PaymentMethod = "Other"
)

type (
	Category      string
	PaymentMethod string

	// Date is a calendar date with no time-of-day and no timezone.
	Date struct {
		time.Time
	}

	// ExpenseRecord is one ledger entry. ID and CreatedAt are assigned by
	// the store on creation; Owner is immutable after creation.
	ExpenseRecord struct {
		ID            int64
		Owner         string
		Category      Category
		Amount        decimal.Decimal
		PaymentMethod PaymentMethod
		Date          Date
		Notes         string
		CreatedAt     time.Time
	}

	// Identity is a verified (email, name, picture) tuple derived from a
	// signed token issued by the external provider.
	Identity struct {
		Email     string
		Name      string
		Picture   string
		IssuedAt  time.Time
		ExpiresAt time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidPayment  = errors.New("unknown payment method")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyOwner      = errors.New("empty owner email")
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryFood, CategoryTravel, CategoryEntertainment,
		CategoryHealthcare, CategoryShopping, CategoryBills, CategoryOther,
	}
}

// PaymentMethods returns the fixed payment method set in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentOther}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTravel, CategoryEntertainment,
		CategoryHealthcare, CategoryShopping, CategoryBills, CategoryOther:
		return true
	}
	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentOther:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD, the form persisted in the store.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.Owner) == "" {
		return ErrEmptyOwner
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(e.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

// ParseAmount parses a user-supplied decimal currency value. Both dot and
// comma decimal separators are accepted. Zero and negative values are
// rejected before any persistence happens.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
