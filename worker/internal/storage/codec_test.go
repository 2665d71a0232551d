package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distkv/distkv/worker/internal/errors"
	"github.com/distkv/distkv/worker/internal/model"
)

func TestEncodeDecodeEntry(t *testing.T) {
	in := model.Entry{Key: "foo", Value: "bar", VectorClock: model.VectorClock{"v1": 1700000000000}}

	raw, err := encodeEntry(in)
	require.NoError(t, err)

	out, err := decodeEntry("foo", raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeEntry_Corruption(t *testing.T) {
	raw, err := encodeEntry(model.Entry{Key: "foo", Value: "bar"})
	require.NoError(t, err)

	flipped := append([]byte(nil), raw...)
	flipped[2] ^= 0xFF

	tests := []struct {
		name string
		raw  []byte
	}{
		{"truncated", raw[:2]},
		{"flipped byte", flipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeEntry("foo", tt.raw)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeCorruptedData, errors.GetCode(err))
		})
	}
}
