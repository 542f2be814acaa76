// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Willysmile/cash-stuffing/internal/models"
)

var (
	hexColorRegex     = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Register adds the custom tags to gin's validator engine. Call it once at startup.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	// Money fields validate as float64 so gt/gte/lte work on them.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})

	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("transaction_type", oneOf(
		models.TransactionTypeIncome, models.TransactionTypeExpense,
		models.TransactionTypeTransfer, models.TransactionTypeAdjustment))
	_ = v.RegisterValidation("transaction_priority", oneOf(
		models.PriorityVital, models.PriorityComfort, models.PriorityPleasure))
	_ = v.RegisterValidation("wish_list_type", oneOf(
		models.WishListTypeToReceive, models.WishListTypeToGive, models.WishListTypeMixed))
	_ = v.RegisterValidation("wish_list_status", oneOf(
		models.WishListStatusActive, models.WishListStatusArchived))
	_ = v.RegisterValidation("item_status", oneOf(
		models.ItemStatusToBuy, models.ItemStatusPurchased))
	_ = v.RegisterValidation("item_priority", oneOf(
		models.ItemPriorityMustHave, models.ItemPriorityWanted, models.ItemPriorityBonus))
}

func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := d.Float64()
		return f
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		f, _ := d.Decimal.Float64()
		return f
	}
	return nil
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodeRegex.MatchString(fl.Field().String())
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func oneOf[T ~string](allowed ...T) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[string(a)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}
