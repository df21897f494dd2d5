package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// object is a decoded JSON object that remembers where it sits in the payload,
// so every failure can name the offending field path.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func decodeObject(path string, data []byte) (object, error) {
	if isNull(data) {
		return object{}, missingField(path)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return object{}, decodeError(path, err)
	}
	return object{path: path, fields: fields}, nil
}

func decodeArray(path string, data []byte) ([]json.RawMessage, error) {
	if isNull(data) {
		return nil, missingField(path)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, decodeError(path, err)
	}
	return items, nil
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

func (o object) fieldPath(name string) string {
	return joinPath(o.path, name)
}

func (o object) lookup(name string) (json.RawMessage, bool) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func (o object) require(name string) (json.RawMessage, error) {
	raw, ok := o.lookup(name)
	if !ok {
		return nil, missingField(o.fieldPath(name))
	}
	return raw, nil
}

func (o object) object(name string) (object, error) {
	raw, err := o.require(name)
	if err != nil {
		return object{}, err
	}
	return decodeObject(o.fieldPath(name), raw)
}

func (o object) array(name string) ([]json.RawMessage, error) {
	raw, err := o.require(name)
	if err != nil {
		return nil, err
	}
	return decodeArray(o.fieldPath(name), raw)
}

func (o object) string(name string) (string, error) {
	raw, err := o.require(name)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", typeMismatch(o.fieldPath(name), err)
	}
	return s, nil
}

func (o object) optionalString(name string) (string, error) {
	if _, ok := o.lookup(name); !ok {
		return "", nil
	}
	return o.string(name)
}

// text returns a scalar verbatim: the contents of a JSON string, or the literal
// text of a JSON number.
func (o object) text(name string) (string, error) {
	raw, err := o.require(name)
	if err != nil {
		return "", err
	}
	return scalarText(o.fieldPath(name), raw)
}

func scalarText(field string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", typeMismatch(field, err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", typeMismatch(field, err)
	}
	return n.String(), nil
}

// numberText is text that must also be a decimal number.
func (o object) numberText(name string) (string, error) {
	s, err := o.text(name)
	if err != nil {
		return "", err
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return "", typeMismatch(o.fieldPath(name), err)
	}
	return s, nil
}

func (o object) decimal(name string) (decimal.Decimal, error) {
	s, err := o.text(name)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, typeMismatch(o.fieldPath(name), err)
	}
	return d, nil
}

func (o object) optionalDecimal(name string) (decimal.Decimal, error) {
	if _, ok := o.lookup(name); !ok {
		return decimal.Zero, nil
	}
	return o.decimal(name)
}

func (o object) int64(name string) (int64, error) {
	s, err := o.text(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, typeMismatch(o.fieldPath(name), err)
	}
	return n, nil
}

func (o object) optionalBool(name string) (bool, error) {
	raw, ok := o.lookup(name)
	if !ok {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	s, err := scalarText(o.fieldPath(name), raw)
	if err != nil {
		return false, err
	}
	b, err = strconv.ParseBool(s)
	if err != nil {
		return false, typeMismatch(o.fieldPath(name), errors.Wrapf(err, "not a boolean: %q", s))
	}
	return b, nil
}
