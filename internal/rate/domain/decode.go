package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidBatchEncoding is returned when a request body is not a JSON
// array of records, nor a JSON string containing one.
var ErrInvalidBatchEncoding = errors.New("invalid batch encoding")

// DecodeBatch splits a request body into raw records.
//
// Accepted bodies:
//
//	[{"periodStart":"2021-01-01","rate":"10"}, ...]
//	"[{\"periodStart\":\"2021-01-01\",\"rate\":\"10\"}]"
//
// The second form is a batch that was JSON-encoded twice; it is unwrapped
// once. Anything else, including null and bare objects, fails with
// ErrInvalidBatchEncoding.
func DecodeBatch(body []byte) ([]RawRecord, error) {
	return decodeBatch(body, true)
}

func decodeBatch(body []byte, unwrap bool) ([]RawRecord, error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrInvalidBatchEncoding)
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBatchEncoding, err)
		}
		records := make([]RawRecord, len(items))
		for i, item := range items {
			records[i] = NewRawRecord(item)
		}
		return records, nil

	case '"':
		if !unwrap {
			return nil, fmt.Errorf("%w: batch is encoded more than twice", ErrInvalidBatchEncoding)
		}
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBatchEncoding, err)
		}
		return decodeBatch([]byte(inner), false)

	default:
		return nil, fmt.Errorf("%w: expected an array of records", ErrInvalidBatchEncoding)
	}
}
