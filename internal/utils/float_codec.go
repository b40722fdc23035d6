package utils

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Weight vectors travel as flat little-endian IEEE-754 single-precision
// buffers with no length prefix or padding.

func EncodeFloat32s(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeFloat32s decodes buf into exactly size float32 values. Any length
// other than size*4 bytes is rejected; the arithmetic stays in int so an
// untrusted size cannot wrap the guard.
func DecodeFloat32s(buf []byte, size uint32) ([]float32, error) {
	if size > math.MaxInt32/4 {
		return nil, fmt.Errorf("vector size %d exceeds the supported maximum", size)
	}
	if len(buf) != int(size)*4 {
		return nil, fmt.Errorf("expected %d bytes for %d float32 values, got %d", int(size)*4, size, len(buf))
	}
	values := make([]float32, size)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return values, nil
}
