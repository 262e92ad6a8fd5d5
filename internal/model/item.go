package model

// Item is a single entry on a user's list.
type Item struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	UserID    string `json:"userId"`
}

// CreateItemRequest represents a POST /api/items body.
type CreateItemRequest struct {
	Text string `json:"text"`
}

// ItemPatch carries the fields of a PUT /api/items/{id} body. Nil means
// "leave unchanged".
type ItemPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}
