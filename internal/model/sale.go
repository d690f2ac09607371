package model

import "github.com/shopspring/decimal"

// PaymentMethod is how a sale was paid for.
type PaymentMethod string

// Payment methods.
const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentLoanApp    PaymentMethod = "loan_app"
)

// PaymentMethods lists the accepted payment methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCreditCard, PaymentLoanApp}

// OrDefault returns cash for an unset payment method.
func (p PaymentMethod) OrDefault() PaymentMethod {
	if p == "" {
		return PaymentCash
	}
	return p
}

// Label returns the human-readable name of the payment method.
func (p PaymentMethod) Label() string {
	switch p.OrDefault() {
	case PaymentCreditCard:
		return "Credit Card"
	case PaymentLoanApp:
		return "Loan/App"
	default:
		return "Cash"
	}
}

// Sale represents one recorded transaction against an item. Item fields are
// copied at sale time so the record stays accurate after the item changes.
type Sale struct {
	ID            int64           `json:"id"`
	ItemID        int64           `json:"itemId" validate:"required"`
	ItemType      string          `json:"itemType"`
	ItemModel     string          `json:"itemModel"`
	Weight        decimal.Decimal `json:"weight"`
	UnitsSold     int             `json:"unitsSold" validate:"gte=1"`
	CostPrice     decimal.Decimal `json:"costPrice" validate:"gte=0"`
	SellingPrice  decimal.Decimal `json:"sellingPrice" validate:"gte=0"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	GrossMargin   decimal.Decimal `json:"grossMargin"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"omitempty,oneof=cash credit_card loan_app"`
	SaleDate      string          `json:"saleDate" validate:"required,datetime=2006-01-02"`
}

// Snapshot copies the descriptive fields of item onto the sale.
func (s *Sale) Snapshot(item Item) {
	s.ItemID = item.ID
	s.ItemType = item.Type
	s.ItemModel = item.Model
	s.Weight = item.Weight
}

// Price sets units and unit prices and recomputes every derived money field.
func (s *Sale) Price(units int, cost, selling decimal.Decimal) {
	n := decimal.NewFromInt(int64(units))
	s.UnitsSold = units
	s.CostPrice = cost
	s.SellingPrice = selling
	s.TotalRevenue = n.Mul(selling)
	s.TotalCost = n.Mul(cost)
	s.GrossMargin = n.Mul(selling.Sub(cost))
	s.MarginPercent = Percent(selling.Sub(cost), selling)
}

// SaleInput holds the fields required to record a sale. A nil CostPrice
// takes the item's current cost; an empty SaleDate means today.
type SaleInput struct {
	ItemID        int64            `json:"itemId" validate:"required"`
	UnitsSold     int              `json:"unitsSold" validate:"gte=1"`
	CostPrice     *decimal.Decimal `json:"costPrice" validate:"omitempty,gte=0"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice" validate:"required,gte=0"`
	PaymentMethod PaymentMethod    `json:"paymentMethod" validate:"omitempty,oneof=cash credit_card loan_app"`
	SaleDate      string           `json:"saleDate" validate:"omitempty,datetime=2006-01-02"`
}

// SalePatch is a partial sale update. Nil fields keep their current value.
type SalePatch struct {
	ItemID        *int64           `json:"itemId"`
	UnitsSold     *int             `json:"unitsSold"`
	CostPrice     *decimal.Decimal `json:"costPrice"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
	PaymentMethod *PaymentMethod   `json:"paymentMethod"`
	SaleDate      *string          `json:"saleDate"`
}

// Apply merges the patch into sale. Derived fields are not recomputed.
func (p SalePatch) Apply(sale *Sale) {
	if p.ItemID != nil {
		sale.ItemID = *p.ItemID
	}
	if p.UnitsSold != nil {
		sale.UnitsSold = *p.UnitsSold
	}
	if p.CostPrice != nil {
		sale.CostPrice = *p.CostPrice
	}
	if p.SellingPrice != nil {
		sale.SellingPrice = *p.SellingPrice
	}
	if p.PaymentMethod != nil {
		sale.PaymentMethod = *p.PaymentMethod
	}
	if p.SaleDate != nil {
		sale.SaleDate = *p.SaleDate
	}
}
