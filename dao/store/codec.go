package store

import (
	"encoding/json"
	"fmt"
)

type (
	// Codec converts records to and from the bytes kept in snapshot files.
	Codec[V any] interface {
		// Encode serializes record.
		Encode(record V) ([]byte, error)

		// Decode deserializes data produced by Encode.
		// data is only valid for the duration of the call.
		Decode(data []byte) (V, error)
	}

	// JSONCodec encodes records as JSON.
	JSONCodec[V any] struct{}
)

// Compile-time interface assertion.
var _ Codec[any] = JSONCodec[any]{}

// NewJSONCodec returns a JSON Codec for V.
func NewJSONCodec[V any]() JSONCodec[V] {
	return JSONCodec[V]{}
}

// Encode marshals record to JSON.
func (JSONCodec[V]) Encode(record V) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodecEncodeFailed, err)
	}

	return data, nil
}

// Decode unmarshals a JSON record.
func (JSONCodec[V]) Decode(data []byte) (V, error) {
	var record V

	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("%w: %w", ErrCodecDecodeFailed, err)
	}

	return record, nil
}
