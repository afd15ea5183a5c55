package params

import (
	"fmt"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
)

// IQMatrixBuffer stores up to 4 quantizer tables, indexed by the frame
// component's quantization table selector, and remembers which ones changed
// since the modification set was last cleared.
//
// Buffer layout: load_quantiser_table[4], quantiser_table[4][64],
// 16 pad bytes.
type IQMatrixBuffer struct {
	load   [4]bool
	tables [4][64]byte
}

// NewIQMatrixBuffer returns an empty buffer with no modified slots.
func NewIQMatrixBuffer() *IQMatrixBuffer {
	return &IQMatrixBuffer{}
}

// Set overwrites a slot with 64 table values and marks it modified. It
// returns the full set of currently modified slot indices.
func (b *IQMatrixBuffer) Set(index int, table *[64]byte) ([]int, error) {
	if index < 0 || index > 3 {
		return nil, fmt.Errorf("quantization table destination %d out of range 0-3: %w",
			index, common.ErrMalformedSegment)
	}
	b.tables[index] = *table
	b.load[index] = true
	return b.Modified(), nil
}

// Table returns a copy of the table in a slot.
func (b *IQMatrixBuffer) Table(index int) ([64]byte, error) {
	if index < 0 || index > 3 {
		return [64]byte{}, fmt.Errorf("quantization table destination %d out of range 0-3: %w",
			index, common.ErrMalformedSegment)
	}
	return b.tables[index], nil
}

// Modified returns the slot indices changed since the last ClearModified.
func (b *IQMatrixBuffer) Modified() []int {
	var out []int
	for i, m := range b.load {
		if m {
			out = append(out, i)
		}
	}
	return out
}

// ClearModified resets the modification set. Backends call this after
// uploading the buffer; later Sets mark their slots again.
func (b *IQMatrixBuffer) ClearModified() {
	b.load = [4]bool{}
}
