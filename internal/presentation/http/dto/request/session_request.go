package request

// LoginRequest is the request body for a counter login.
type LoginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// SelectMedicineRequest is the request body for selecting a medicine.
type SelectMedicineRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddItemRequest is the request body for adding the selected medicine
// to the invoice.
type AddItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// CheckoutRequest is the request body for checking out the invoice.
type CheckoutRequest struct {
	DiscountPercent float64 `json:"discount_percent" binding:"min=0,max=100"`
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
}
