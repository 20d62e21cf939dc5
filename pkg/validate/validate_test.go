package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/validate"
)

type couponInput struct {
	Code   string          `json:"coupon_code"     validate:"required,min=3,max=10"`
	Amount decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	Status string          `json:"coupon_status"   validate:"required,in=active|used|expired"`
	Email  *string         `json:"email"           validate:"nullable,email"`
	Slug   string          `json:"slug"            validate:"nullable,slug"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(couponInput{Code: "SAVE10", Amount: decimal.NewFromInt(10), Status: "active"})
	assert.Empty(t, errs)
}

func TestRequiredAndIn(t *testing.T) {
	errs := validate.Struct(&couponInput{Status: "pending"})
	assert.Equal(t, "The coupon_code field is required.", errs["coupon_code"])
	assert.Equal(t, "The selected coupon_status is invalid.", errs["coupon_status"])
}

func TestDecimalBounds(t *testing.T) {
	errs := validate.Struct(couponInput{Code: "SAVE", Amount: decimal.NewFromFloat(-0.5), Status: "used"})
	assert.Contains(t, errs, "discount_amount")
}

func TestPointerFields(t *testing.T) {
	bad := "nope"
	good := "a@b.io"

	assert.Contains(t, validate.Struct(couponInput{Code: "abc", Status: "used", Email: &bad}), "email")
	assert.Empty(t, validate.Struct(couponInput{Code: "abc", Status: "used", Email: &good}))
	assert.Empty(t, validate.Struct(couponInput{Code: "abc", Status: "used"}))
}

func TestPatchSkipsAbsentFields(t *testing.T) {
	type patch struct {
		Name  *string `json:"name"  validate:"min=2"`
		Price *int    `json:"price" validate:"gte=0"`
	}
	assert.Empty(t, validate.Struct(patch{}))

	short := "a"
	neg := -1
	errs := validate.Struct(patch{Name: &short, Price: &neg})
	assert.Equal(t, "The name must be at least 2 characters.", errs["name"])
	assert.Contains(t, errs, "price")
}

func TestSlugAndLength(t *testing.T) {
	errs := validate.Struct(couponInput{Code: "WAYTOOLONGCODE", Status: "used", Slug: "Not A Slug"})
	assert.Contains(t, errs, "coupon_code")
	assert.Contains(t, errs, "slug")
}

func TestCheckReturnsValidationError(t *testing.T) {
	err := validate.Check(couponInput{})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Invalid, e.Kind)
	assert.Contains(t, e.Fields, "coupon_code")

	assert.NoError(t, validate.Check(couponInput{Code: "abc", Status: "active"}))
}

func TestPatchValidatesPresentEmptyString(t *testing.T) {
	type patch struct {
		Name *string `json:"name" validate:"min=2"`
	}
	empty := ""
	assert.Contains(t, validate.Struct(patch{Name: &empty}), "name")
}

func TestEmbeddedStructsAreValidated(t *testing.T) {
	type Shared struct {
		Slug *string `json:"slug" validate:"slug"`
	}
	type input struct {
		Name string `json:"name" validate:"required"`
		Shared
	}
	bad := "Not A Slug"
	errs := validate.Struct(input{Shared: Shared{Slug: &bad}})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "slug")
}
