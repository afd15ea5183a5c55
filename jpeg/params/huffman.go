// Package params holds the decode parameter records handed to an
// acceleration backend. Each record mirrors the hardware API's buffer
// layout: field order and capacities are part of the contract, and the
// documented padding must be emitted when a backend serializes the record
// into a bit-exact buffer.
package params

import (
	"fmt"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
)

// HuffmanTable is one DC/AC Huffman table pair in the hardware layout.
//
// Buffer layout: num_dc_codes[16], dc_values[12], num_ac_codes[16],
// ac_values[162], 2 pad bytes.
type HuffmanTable struct {
	NumDCCodes [16]byte
	DCValues   [12]byte
	NumACCodes [16]byte
	ACValues   [162]byte
}

// SetDC installs a DC code-length histogram and value list.
func (t *HuffmanTable) SetDC(li, vij []byte) error {
	if len(li) > 16 {
		return fmt.Errorf("DC huffman table has %d code counts, maximum is 16: %w",
			len(li), common.ErrMalformedSegment)
	}
	if len(vij) > 12 {
		return fmt.Errorf("DC huffman table has %d values, maximum is 12: %w",
			len(vij), common.ErrMalformedSegment)
	}
	t.NumDCCodes = [16]byte{}
	t.DCValues = [12]byte{}
	copy(t.NumDCCodes[:], li)
	copy(t.DCValues[:], vij)
	return nil
}

// SetAC installs an AC code-length histogram and value list.
func (t *HuffmanTable) SetAC(li, vij []byte) error {
	if len(li) > 16 {
		return fmt.Errorf("AC huffman table has %d code counts, maximum is 16: %w",
			len(li), common.ErrMalformedSegment)
	}
	if len(vij) > 162 {
		return fmt.Errorf("AC huffman table has %d values, maximum is 162: %w",
			len(vij), common.ErrMalformedSegment)
	}
	t.NumACCodes = [16]byte{}
	t.ACValues = [162]byte{}
	copy(t.NumACCodes[:], li)
	copy(t.ACValues[:], vij)
	return nil
}

// DefaultLuminanceTable returns the ITU-T.81 Annex K luminance tables.
func DefaultLuminanceTable() HuffmanTable {
	var t HuffmanTable
	t.SetDC(common.StandardDCLuminanceBits[:], common.StandardDCLuminanceValues)
	t.SetAC(common.StandardACLuminanceBits[:], common.StandardACLuminanceValues)
	return t
}

// DefaultChrominanceTable returns the ITU-T.81 Annex K chrominance tables.
func DefaultChrominanceTable() HuffmanTable {
	var t HuffmanTable
	t.SetDC(common.StandardDCChrominanceBits[:], common.StandardDCChrominanceValues)
	t.SetAC(common.StandardACChrominanceBits[:], common.StandardACChrominanceValues)
	return t
}

// HuffmanTableBuffer stores up to 2 Huffman table pairs and remembers which
// ones changed since the modification set was last cleared. Baseline JPEG
// permits at most 2 DC and 2 AC tables, so slot N holds the DC/AC pair for
// table destination N.
//
// Buffer layout: load_huffman_table[2], huffman_table[2], 16 pad bytes.
type HuffmanTableBuffer struct {
	load   [2]bool
	tables [2]HuffmanTable
}

// NewHuffmanTableBuffer returns an empty buffer with no modified slots.
func NewHuffmanTableBuffer() *HuffmanTableBuffer {
	return &HuffmanTableBuffer{}
}

// DefaultHuffmanTables returns a buffer seeded with the ITU-T.81 recommended
// tables: luminance in slot 0, chrominance in slot 1. Both slots are marked
// modified so a first submission uploads them.
func DefaultHuffmanTables() *HuffmanTableBuffer {
	b := NewHuffmanTableBuffer()
	b.Set(0, DefaultLuminanceTable())
	b.Set(1, DefaultChrominanceTable())
	return b
}

// Set overwrites a slot and marks it modified. It returns the full set of
// currently modified slot indices.
func (b *HuffmanTableBuffer) Set(index int, t HuffmanTable) ([]int, error) {
	if index < 0 || index > 1 {
		return nil, fmt.Errorf("huffman table destination %d out of range 0-1: %w",
			index, common.ErrMalformedSegment)
	}
	b.tables[index] = t
	b.load[index] = true
	return b.Modified(), nil
}

// Table returns a copy of the table in a slot.
func (b *HuffmanTableBuffer) Table(index int) (HuffmanTable, error) {
	if index < 0 || index > 1 {
		return HuffmanTable{}, fmt.Errorf("huffman table destination %d out of range 0-1: %w",
			index, common.ErrMalformedSegment)
	}
	return b.tables[index], nil
}

// Modified returns the slot indices changed since the last ClearModified.
func (b *HuffmanTableBuffer) Modified() []int {
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
func (b *HuffmanTableBuffer) ClearModified() {
	b.load = [2]bool{}
}
