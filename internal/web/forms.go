package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// formError reports a form field that could not be read.
type formError struct {
	field string
	msg   string
}

func (e formError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.msg)
}

// field returns the trimmed value of a form field.
func field(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

// formMoney parses an optional money field. Blank fields are nil.
func formMoney(r *http.Request, name string) (*decimal.Decimal, error) {
	v := field(r, name)
	if v == "" {
		return nil, nil
	}
	d, err := model.ParseMoney(v)
	if err != nil {
		return nil, formError{name, err.Error()}
	}
	return &d, nil
}

// formInt parses an optional whole-number field. Blank fields are nil.
func formInt(r *http.Request, name string) (*int, error) {
	v := field(r, name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, formError{name, "must be a whole number"}
	}
	return &n, nil
}

// formString returns nil for a blank field.
func formString(r *http.Request, name string) *string {
	v := field(r, name)
	if v == "" {
		return nil
	}
	return &v
}

// itemType reads the category select, falling back to the free-text
// "customType" field when "other" is chosen with a name typed in.
func itemType(r *http.Request) string {
	t := strings.ToLower(field(r, "type"))
	if custom := strings.ToLower(field(r, "customType")); t == model.CategoryOther && custom != "" {
		return custom
	}
	return t
}

func itemInputFromForm(r *http.Request) (model.ItemInput, error) {
	in := model.ItemInput{
		Type:          itemType(r),
		Model:         field(r, "model"),
		DatePurchased: field(r, "datePurchased"),
	}
	var err error
	if in.Weight, err = formMoney(r, "weight"); err != nil {
		return in, err
	}
	if in.Units, err = formInt(r, "units"); err != nil {
		return in, err
	}
	if in.CostPrice, err = formMoney(r, "costPrice"); err != nil {
		return in, err
	}
	return in, nil
}

func itemPatchFromForm(r *http.Request) (model.ItemPatch, error) {
	var p model.ItemPatch
	if t := itemType(r); t != "" {
		p.Type = &t
	}
	p.Model = formString(r, "model")
	p.DatePurchased = formString(r, "datePurchased")

	var err error
	if p.Weight, err = formMoney(r, "weight"); err != nil {
		return p, err
	}
	if p.Units, err = formInt(r, "units"); err != nil {
		return p, err
	}
	if p.CostPrice, err = formMoney(r, "costPrice"); err != nil {
		return p, err
	}
	return p, nil
}

func formItemID(r *http.Request) (*int64, error) {
	v := field(r, "itemId")
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, formError{"itemId", "choose an item"}
	}
	return &id, nil
}

func saleInputFromForm(r *http.Request) (model.SaleInput, error) {
	in := model.SaleInput{
		PaymentMethod: model.PaymentMethod(field(r, "paymentMethod")),
		SaleDate:      field(r, "saleDate"),
	}
	id, err := formItemID(r)
	if err != nil {
		return in, err
	}
	if id == nil {
		return in, formError{"itemId", "choose an item"}
	}
	in.ItemID = *id

	units, err := formInt(r, "unitsSold")
	if err != nil {
		return in, err
	}
	if units != nil {
		in.UnitsSold = *units
	}
	if in.CostPrice, err = formMoney(r, "costPrice"); err != nil {
		return in, err
	}
	if in.SellingPrice, err = formMoney(r, "sellingPrice"); err != nil {
		return in, err
	}
	return in, nil
}

func salePatchFromForm(r *http.Request) (model.SalePatch, error) {
	var p model.SalePatch
	var err error
	if p.ItemID, err = formItemID(r); err != nil {
		return p, err
	}
	if p.UnitsSold, err = formInt(r, "unitsSold"); err != nil {
		return p, err
	}
	if p.CostPrice, err = formMoney(r, "costPrice"); err != nil {
		return p, err
	}
	if p.SellingPrice, err = formMoney(r, "sellingPrice"); err != nil {
		return p, err
	}
	if v := field(r, "paymentMethod"); v != "" {
		pm := model.PaymentMethod(v)
		p.PaymentMethod = &pm
	}
	p.SaleDate = formString(r, "saleDate")
	return p, nil
}
