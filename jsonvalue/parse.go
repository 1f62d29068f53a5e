package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Parse parses a single JSON document, preserving object key order.
// Duplicate keys keep their first position and their last value.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("parsing JSON: %w", err)
	}

	// Anything after the top-level value is an error, as in JSON.parse.
	if t, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected %v after top-level value", t)
		}
		return Value{}, fmt.Errorf("parsing JSON: %w", err)
	}

	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	t, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch tok := t.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(tok), nil
	case json.Number:
		return NumberValue(tok), nil
	case string:
		return StringValue(tok), nil
	case json.Delim:
		switch tok {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", t)
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := kt.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected string key, got %T", kt)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("key %q: %w", key, err)
		}
		obj.Set(key, val)
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return ObjectValue(obj), nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("index %d: %w", len(items), err)
		}
		items = append(items, val)
	}

	// Closing bracket.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return ArrayValue(items...), nil
}
