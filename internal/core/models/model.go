package models

import (
	"encoding/binary"
	"fmt"

	"github.com/quorumfed/aggregator/internal/utils"
)

// Model is one published version of the global model. Published models are
// immutable; every commit derives a fresh copy with the next version.
type Model struct {
	Version uint32    `json:"version"`
	Size    uint32    `json:"size"`
	Weights []float32 `json:"weights"`
}

func NewModel(version, size uint32, weights []float32) *Model {
	return &Model{
		Version: version,
		Size:    size,
		Weights: weights,
	}
}

// NewGenesisModel builds the version-0 model with every weight set to the
// configured initial value.
func NewGenesisModel(size uint32, initWeight float32) *Model {
	weights := make([]float32, size)
	for i := range weights {
		weights[i] = initWeight
	}
	return NewModel(0, size, weights)
}

func (m *Model) Clone() *Model {
	weights := make([]float32, len(m.Weights))
	copy(weights, m.Weights)
	return NewModel(m.Version, m.Size, weights)
}

// Apply adds a trainer's delta scaled by its contribution weight.
func (m *Model) Apply(delta []float32, weight float32) {
	for i := range m.Weights {
		m.Weights[i] += delta[i] * weight
	}
}

// Encode serializes the model record as version, size, then the weight
// vector, all little-endian.
func (m *Model) Encode() []byte {
	buf := make([]byte, 8, 8+4*len(m.Weights))
	binary.LittleEndian.PutUint32(buf[0:4], m.Version)
	binary.LittleEndian.PutUint32(buf[4:8], m.Size)
	return append(buf, utils.EncodeFloat32s(m.Weights)...)
}

// DecodeModel parses a stored model record.
func DecodeModel(raw []byte) (*Model, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("%w: model record truncated at %d bytes", ErrSerialization, len(raw))
	}
	version := binary.LittleEndian.Uint32(raw[0:4])
	size := binary.LittleEndian.Uint32(raw[4:8])
	weights, err := utils.DecodeFloat32s(raw[8:], size)
	if err != nil {
		return nil, fmt.Errorf("%w: model record v%d: %v", ErrSerialization, version, err)
	}
	return NewModel(version, size, weights), nil
}
