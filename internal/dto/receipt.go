package dto

// UploadedImage is the in-memory form of a multipart upload, consumed by the
// file service. It lives only for the duration of one request.
type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ReceiptItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ReceiptExtraction is the sanitized output of the vision pipeline. Optional
// fields are pointers so "not detected" survives JSON round-trips as null.
type ReceiptExtraction struct {
	Date       *string       `json:"date"`
	Store      *string       `json:"store"`
	Items      []ReceiptItem `json:"items"`
	Total      *float64      `json:"total"`
	Category   *string       `json:"category"`
	Confidence float64       `json:"confidence"`
	RawText    string        `json:"rawText"`
}

type ReceiptOCRResponse struct {
	ReceiptExtraction
	ReceiptImagePath string `json:"receiptImagePath"`
}

type ReceiptSaveRequest struct {
	Date             string        `json:"date"`
	Store            string        `json:"store"`
	Items            []ReceiptItem `json:"items"`
	Total            float64       `json:"total"`
	Category         string        `json:"category"`
	Memo             string        `json:"memo"`
	ReceiptImagePath string        `json:"receiptImagePath"`
	Type             string        `json:"type"`
}
