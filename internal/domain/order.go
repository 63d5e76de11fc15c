package domain

import "time"

// Order statuses. Orders are created as confirmed; only admin updates can
// move them elsewhere.
const (
	OrderStatusConfirmed = "confirmed"
)

// OrderItem is one line of an order. Price is the unit price snapshotted at
// checkout validation time and never re-read from the live product.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is created only by checkout. Username references the owning user by
// value; deleting the user or its products leaves the order untouched.
type Order struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	OrderDate   time.Time   `json:"order_date"`
	ShipAddress string      `json:"ship_address"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	PaymentID   string      `json:"payment_id"`
	Status      string      `json:"status"`
}
