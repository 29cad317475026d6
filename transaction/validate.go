package transaction

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Rshep3087/expensemon/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateAmount accepts a non-negative decimal string.
func validateAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

func validateTransactionType(fl validator.FieldLevel) bool {
	_, err := ParseType(fl.Field().String())
	return err == nil
}

// Input is what a form or the CLI collects before creating a transaction.
type Input struct {
	Amount   string `json:"amount" validate:"required,amount"`
	Category string `json:"category" validate:"required,max=64"`
	Type     string `json:"type" validate:"required,transaction_type"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Note     string `json:"note" validate:"max=500"`
}

// Validate checks the input and converts it into a New transaction.
func (in Input) Validate() (New, error) {
	if err := validate.Struct(in); err != nil {
		return New{}, validationError("validate transaction", err)
	}

	amount, _ := decimal.NewFromString(strings.TrimSpace(in.Amount))
	date, _ := ParseDate(in.Date)

	return New{
		Amount:   amount,
		Category: in.Category,
		Type:     Type(in.Type),
		Date:     date,
		Note:     in.Note,
	}, nil
}

// PatchInput collects changed fields for an edit. Nil means unchanged.
type PatchInput struct {
	Amount   *string `json:"amount" validate:"omitnil,amount"`
	Category *string `json:"category" validate:"omitnil,min=1,max=64"`
	Type     *string `json:"type" validate:"omitnil,transaction_type"`
	Date     *string `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Note     *string `json:"note" validate:"omitnil,max=500"`
}

// Validate checks the input and converts it into a Patch.
func (in PatchInput) Validate() (Patch, error) {
	if err := validate.Struct(in); err != nil {
		return Patch{}, validationError("validate transaction update", err)
	}

	var p Patch
	if in.Amount != nil {
		amount, _ := decimal.NewFromString(strings.TrimSpace(*in.Amount))
		p.Amount = &amount
	}
	p.Category = in.Category
	if in.Type != nil {
		typ := Type(*in.Type)
		p.Type = &typ
	}
	if in.Date != nil {
		date, _ := ParseDate(*in.Date)
		p.Date = &date
	}
	p.Note = in.Note

	if p.IsEmpty() {
		return Patch{}, apperr.E(apperr.ValidationFailure, "validate transaction update", errors.New("nothing to update"))
	}
	return p, nil
}

// Validate checks the filter fields that have a known format.
func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		return validationError("validate filter", err)
	}
	return nil
}

// validationError flattens validator errors into a single ValidationFailure.
func validationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.E(apperr.ValidationFailure, op, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperr.E(apperr.ValidationFailure, op, errors.New(strings.Join(msgs, "; ")))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "amount":
		return fmt.Sprintf("%s must be a non-negative decimal", fe.Field())
	case "transaction_type", "oneof":
		return fmt.Sprintf("%s must be income or expense", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
