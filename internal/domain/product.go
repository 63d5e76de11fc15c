package domain

// Product represents an item in the catalog. On-hand quantity is mutated by
// admin updates and by checkout reservations and must never go negative.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	OnHand      int     `json:"on_hand"`
	Description string  `json:"description"`
}
