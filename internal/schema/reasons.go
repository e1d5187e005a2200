package schema

// Reason is a canonical rejection or imputation reason code. Codes are
// stable snake_case strings so reports and exports can key on them.
type Reason string

const (
	ReasonMissingRequired  Reason = "missing_required"
	ReasonBadDate          Reason = "bad_date"
	ReasonBadCustomerID    Reason = "bad_customer_id"
	ReasonBadQuantity      Reason = "bad_quantity"
	ReasonNegativeQuantity Reason = "negative_quantity"
	ReasonBadPrice         Reason = "bad_price"
	ReasonNegativePrice    Reason = "negative_price"
)

// reasonCatalog documents each code for diagnostics surfaced to callers.
var reasonCatalog = map[Reason]string{
	ReasonMissingRequired:  "a required field is empty",
	ReasonBadDate:          "order date could not be parsed",
	ReasonBadCustomerID:    "customer id is not a non-negative integer",
	ReasonBadQuantity:      "quantity is not an integer",
	ReasonNegativeQuantity: "quantity is below 1",
	ReasonBadPrice:         "unit price could not be parsed",
	ReasonNegativePrice:    "unit price is negative",
}

// Describe returns the human-readable explanation for a reason code.
func (r Reason) Describe() string {
	if msg, ok := reasonCatalog[r]; ok {
		return msg
	}
	return string(r)
}
