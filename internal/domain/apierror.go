package domain

import (
	"encoding/json"
	"fmt"
)

// APIError error member of a JSON-RPC response. Data has no fixed schema yet and
// is kept as an untyped bag; a non-object data value is stored under "value".
type APIError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange api error %d: %s", e.Code, e.Message)
}

// ParseAPIError parses an error object.
func ParseAPIError(data []byte) (*APIError, error) {
	obj, err := decodeObject("error", data)
	if err != nil {
		return nil, err
	}

	code, err := obj.int64("code")
	if err != nil {
		return nil, err
	}
	message, err := obj.optionalString("message")
	if err != nil {
		return nil, err
	}

	apiErr := &APIError{Code: int(code), Message: message}

	raw, ok := obj.lookup("data")
	if !ok {
		return apiErr, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, typeMismatch(obj.fieldPath("data"), err)
	}
	if bag, ok := value.(map[string]any); ok {
		apiErr.Data = bag
	} else {
		apiErr.Data = map[string]any{"value": value}
	}

	return apiErr, nil
}
