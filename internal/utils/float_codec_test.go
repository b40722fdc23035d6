package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatCodecRoundTrip(t *testing.T) {
	values := []float32{0, 1.5, -2.25, 3.4e38, -1.18e-38}

	buf := EncodeFloat32s(values)
	require.Len(t, buf, len(values)*4)

	decoded, err := DecodeFloat32s(buf, uint32(len(values)))
	require.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestDecodeFloat32sRejectsWrongLength(t *testing.T) {
	buf := EncodeFloat32s([]float32{1, 2, 3})

	_, err := DecodeFloat32s(buf, 4)
	assert.Error(t, err)

	_, err = DecodeFloat32s(buf[:11], 3)
	assert.Error(t, err)

	_, err = DecodeFloat32s(nil, 1)
	assert.Error(t, err)
}

// Sizes near the uint32 wrap point must fail the length guard instead of
// letting size*4 overflow and index past the buffer.
func TestDecodeFloat32sRejectsOverflowingSize(t *testing.T) {
	_, err := DecodeFloat32s(nil, 1<<30)
	assert.Error(t, err)

	_, err = DecodeFloat32s([]byte{0, 0, 0, 0}, 1<<30+1)
	assert.Error(t, err)

	_, err = DecodeFloat32s(nil, math.MaxUint32)
	assert.Error(t, err)
}

func TestDecodeFloat32sEmpty(t *testing.T) {
	decoded, err := DecodeFloat32s(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
