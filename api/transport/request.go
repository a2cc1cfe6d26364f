package transport

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CartItemRequest struct {
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type StatusRequest struct {
	Status string `json:"status"`
}
