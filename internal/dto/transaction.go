package dto

type TransactionCreateRequest struct {
	Type             string  `json:"type"`
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	Category         string  `json:"category"`
	Memo             string  `json:"memo"`
	ReceiptImagePath string  `json:"receiptImagePath"`
}

// TransactionUpdateRequest carries a partial update; nil fields are left
// untouched.
type TransactionUpdateRequest struct {
	Type             *string  `json:"type"`
	Date             *string  `json:"date"`
	Amount           *float64 `json:"amount"`
	Category         *string  `json:"category"`
	Memo             *string  `json:"memo"`
	ReceiptImagePath *string  `json:"receiptImagePath"`
}

type TransactionResponse struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	Category         string  `json:"category"`
	Memo             string  `json:"memo"`
	ReceiptImagePath string  `json:"receiptImagePath,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"totalPages"`
}

// TransactionFilter collects the list-endpoint query parameters after
// validation; zero values mean "not filtered".
type TransactionFilter struct {
	DateFrom string
	DateTo   string
	Category string
	Type     string
	Search   string
	Page     int
	Limit    int
	Sort     string
	Order    string
}
