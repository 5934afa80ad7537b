package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gagyebu/internal/dto"
)

// parseExtraction turns raw model output into a well-typed ReceiptExtraction.
// Only the initial JSON parse can fail (ErrUnparseableResponse); after that,
// every per-field defect degrades the field instead of failing the result.
func parseExtraction(raw string) (*dto.ReceiptExtraction, error) {
	text := stripJSONFences(raw)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	// A bare null unmarshals into a nil map without error; it is not an
	// object either.
	if data == nil {
		return nil, fmt.Errorf("%w: null completion", ErrUnparseableResponse)
	}

	result := &dto.ReceiptExtraction{
		Date:     asOptionalString(data["date"]),
		Store:    asOptionalString(data["store"]),
		Items:    sanitizeItems(data["items"]),
		Category: asOptionalString(data["category"]),
		RawText:  asString(data["rawText"]),
	}

	if total, ok := asFloat(data["total"]); ok && total >= 0 {
		result.Total = &total
	}

	if confidence, ok := asFloat(data["confidence"]); ok {
		result.Confidence = clamp(confidence, 0, 1)
	}

	return result, nil
}

// stripJSONFences removes a leading ```json or ``` fence and a trailing ```
// fence, then trims whitespace. Models wrap output in markdown despite being
// told not to.
func stripJSONFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// sanitizeItems keeps only entries that are objects carrying both a name and
// a price coercible to a non-negative number. Names are string-cast.
func sanitizeItems(value interface{}) []dto.ReceiptItem {
	items := []dto.ReceiptItem{}

	list, ok := value.([]interface{})
	if !ok {
		return items
	}

	for _, entry := range list {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		name, hasName := obj["name"]
		priceRaw, hasPrice := obj["price"]
		if !hasName || !hasPrice {
			continue
		}
		price, ok := asFloat(priceRaw)
		if !ok || price < 0 {
			continue
		}
		items = append(items, dto.ReceiptItem{
			Name:  asString(name),
			Price: price,
		})
	}

	return items
}

// asFloat coerces JSON numbers and numeric strings to float64.
func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asOptionalString(value interface{}) *string {
	if s, ok := value.(string); ok {
		return &s
	}
	return nil
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
