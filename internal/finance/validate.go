package finance

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/theirongolddev/poupa/internal/api"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = validate.RegisterTranslation(notBlankTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " is required"
		},
	)
	_ = validate.RegisterTranslation("eqfield", translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			if fe.Field() == "confirm_password" {
				return "passwords do not match"
			}
			return fe.Field() + " must match " + fe.Param()
		},
	)
}

// ValidationError lists per-field problems found before a request is sent.
// It matches api.ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, api.ErrInvalidInput) hold.
func (e *ValidationError) Is(target error) bool {
	return target == api.ErrInvalidInput
}

// Field returns the message for one field, or "".
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("finance: validating: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}

// TransactionForm is the create/edit transaction form.
type TransactionForm struct {
	Description string  `json:"description" validate:"notblank,max=200"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Type        string  `json:"type" validate:"oneof=income expense"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	CategoryID  int     `json:"category_id" validate:"gt=0"`
}

// Validate checks the required fields.
func (f TransactionForm) Validate() error {
	return check(f)
}

// Input converts the form to a create request.
func (f TransactionForm) Input() api.TransactionInput {
	return api.TransactionInput{
		Description: strings.TrimSpace(f.Description),
		Amount:      f.Amount,
		Type:        f.Type,
		Date:        f.Date,
		CategoryID:  f.CategoryID,
	}
}

// Update converts the form to a full-field update request.
func (f TransactionForm) Update() api.TransactionUpdate {
	in := f.Input()
	upd := api.TransactionUpdate{
		Description: &in.Description,
		Amount:      &in.Amount,
		Type:        &in.Type,
		CategoryID:  &in.CategoryID,
	}
	if in.Date != "" {
		upd.Date = &in.Date
	}
	return upd
}

// FormFromTransaction prefills the edit form.
func FormFromTransaction(tx api.Transaction) TransactionForm {
	return TransactionForm{
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Date:        tx.Date,
		CategoryID:  tx.CategoryID,
	}
}

// RegisterForm is the registration form including the confirmation field.
type RegisterForm struct {
	Username        string `json:"username" validate:"notblank"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"notblank"`
	FullName        string `json:"full_name" validate:"notblank"`
	BirthDate       string `json:"birth_date" validate:"required,datetime=2006-01-02"`
}

// Validate checks every field and the password confirmation.
func (f RegisterForm) Validate() error {
	return check(f)
}

// Request drops the confirmation field.
func (f RegisterForm) Request() api.RegisterRequest {
	return api.RegisterRequest{
		Username:  strings.TrimSpace(f.Username),
		Password:  f.Password,
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		FullName:  strings.TrimSpace(f.FullName),
		BirthDate: f.BirthDate,
	}
}

// LoginForm is the login form.
type LoginForm struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// Validate checks both fields are present.
func (f LoginForm) Validate() error {
	return check(f)
}

// ParseAmount reads a positive amount typed as "45.90", "45,90" or
// "1.234,56".
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Fields: map[string]string{"amount": "amount must be a number"}}
	}
	if v <= 0 {
		return 0, &ValidationError{Fields: map[string]string{"amount": "amount must be greater than 0"}}
	}
	return v, nil
}
