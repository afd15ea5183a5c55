package params

import (
	"fmt"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
)

// SliceDataFlags marks whether the submitted slice data buffer carries a
// whole scan or a fragment of one.
type SliceDataFlags uint32

const (
	SliceDataFlagAll    SliceDataFlags = 0x00
	SliceDataFlagBegin  SliceDataFlags = 0x01
	SliceDataFlagMiddle SliceDataFlags = 0x02
	SliceDataFlagEnd    SliceDataFlags = 0x04
)

// MaxScanComponents is the scan component capacity of the slice parameter
// buffer.
const MaxScanComponents = 4

// ScanComponentSelector describes one scan component in the hardware layout.
//
// Buffer layout: component_selector, dc_table_selector, ac_table_selector,
// one byte each.
type ScanComponentSelector struct {
	Selector byte
	DCTable  byte
	ACTable  byte
}

// SliceParameterBuffer dimensions one entropy-coded scan for the hardware.
//
// Buffer layout: slice_data_size u32, slice_data_offset u32,
// slice_data_flag u32, slice_horizontal_position u32,
// slice_vertical_position u32, components[4], num_components u8,
// restart_interval u16, num_mcus u32, 16 pad bytes.
type SliceParameterBuffer struct {
	// DataSize and DataOffset locate the entropy-coded bytes within the
	// slice data buffer submitted alongside this record.
	DataSize   uint32
	DataOffset uint32
	Flags      SliceDataFlags

	// RestartInterval is the number of MCUs between restart markers,
	// 0 when restarts are disabled.
	RestartInterval uint16

	// NumMCUs is the total number of minimum coded units in the scan. The
	// hardware desynchronizes partway through the bitstream if this is
	// wrong.
	NumMCUs uint32

	components []ScanComponentSelector
}

// NewSliceParameterBuffer creates a slice parameter buffer covering one
// whole scan.
func NewSliceParameterBuffer(dataSize uint32, restartInterval uint16, numMCUs uint32) *SliceParameterBuffer {
	return &SliceParameterBuffer{
		DataSize:        dataSize,
		Flags:           SliceDataFlagAll,
		RestartInterval: restartInterval,
		NumMCUs:         numMCUs,
	}
}

// PushComponent appends a scan component with its table selectors.
func (b *SliceParameterBuffer) PushComponent(selector, dcTable, acTable byte) error {
	if len(b.components) >= MaxScanComponents {
		return fmt.Errorf("slice parameter buffer holds at most %d components: %w",
			MaxScanComponents, common.ErrMalformedSegment)
	}
	b.components = append(b.components, ScanComponentSelector{
		Selector: selector,
		DCTable:  dcTable,
		ACTable:  acTable,
	})
	return nil
}

// Components returns the accumulated scan components.
func (b *SliceParameterBuffer) Components() []ScanComponentSelector {
	return b.components
}

// MCUCount returns the number of minimum coded units in a frame of the given
// dimensions, where maxH and maxV are the maximum horizontal and vertical
// sampling factors across all frame components. The division must stay in
// exact integer arithmetic.
func MCUCount(width, height uint16, maxH, maxV byte) uint32 {
	hSize := uint32(maxH) * 8
	vSize := uint32(maxV) * 8
	mcusPerRow := (uint32(width) + hSize - 1) / hSize
	mcuRows := (uint32(height) + vSize - 1) / vSize
	return mcusPerRow * mcuRows
}
