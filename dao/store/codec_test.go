package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJSONCodec_Roundtrip verifies that JSONCodec decodes what it encodes.
func TestJSONCodec_Roundtrip(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec[testRecord]()
	record := testRecord{ID: 7, Name: "seven"}

	data, err := codec.Encode(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"seven"}`, string(data))

	decoded, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

// TestJSONCodec_Errors verifies that codec failures wrap their sentinels.
func TestJSONCodec_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewJSONCodec[testRecord]().Decode([]byte("{not json"))
	require.ErrorIs(t, err, ErrCodecDecodeFailed)

	_, err = NewJSONCodec[chan int]().Encode(make(chan int))
	require.ErrorIs(t, err, ErrCodecEncodeFailed)
}
