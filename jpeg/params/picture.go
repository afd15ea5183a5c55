package params

import (
	"fmt"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
)

// ColorSpace tags the color model of the decoded samples before the
// backend's post-decode conversion stage.
type ColorSpace uint8

const (
	ColorSpaceYUV ColorSpace = 0
	ColorSpaceRGB ColorSpace = 1
	ColorSpaceBGR ColorSpace = 2
)

// String returns the color space name.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceYUV:
		return "YUV"
	case ColorSpaceRGB:
		return "RGB"
	case ColorSpaceBGR:
		return "BGR"
	default:
		return fmt.Sprintf("ColorSpace(%d)", uint8(c))
	}
}

// Rotation selects the rotation the backend applies to the decoded image.
type Rotation uint32

const (
	RotationNone Rotation = 0
	Rotation90   Rotation = 1
	Rotation180  Rotation = 2
	Rotation270  Rotation = 3
)

// String returns the rotation in degrees.
func (r Rotation) String() string {
	switch r {
	case RotationNone:
		return "0"
	case Rotation90:
		return "90"
	case Rotation180:
		return "180"
	case Rotation270:
		return "270"
	default:
		return fmt.Sprintf("Rotation(%d)", uint32(r))
	}
}

// MaxPictureComponents is the frame component capacity of the picture
// parameter buffer.
const MaxPictureComponents = 255

// PictureComponent describes one frame component in the hardware layout.
//
// Buffer layout: component_id, h_sampling_factor, v_sampling_factor,
// quantiser_table_selector, one byte each.
type PictureComponent struct {
	ID                 byte
	HSampling          byte
	VSampling          byte
	QuantTableSelector byte
}

// PictureParameterBuffer carries the frame-level decode parameters.
//
// Buffer layout: picture_width u16, picture_height u16, components[255],
// num_components u8, color_space u8, rotation u32, 60 pad bytes.
type PictureParameterBuffer struct {
	Width      uint16
	Height     uint16
	ColorSpace ColorSpace
	Rotation   Rotation

	components []PictureComponent
}

// NewPictureParameterBuffer creates a picture parameter buffer with no
// components.
func NewPictureParameterBuffer(width, height uint16, colorSpace ColorSpace) *PictureParameterBuffer {
	return &PictureParameterBuffer{
		Width:      width,
		Height:     height,
		ColorSpace: colorSpace,
	}
}

// PushComponent appends a frame component.
func (b *PictureParameterBuffer) PushComponent(id, hSampling, vSampling, quantTableSelector byte) error {
	if len(b.components) >= MaxPictureComponents {
		return fmt.Errorf("picture parameter buffer holds at most %d components: %w",
			MaxPictureComponents, common.ErrMalformedSegment)
	}
	b.components = append(b.components, PictureComponent{
		ID:                 id,
		HSampling:          hSampling,
		VSampling:          vSampling,
		QuantTableSelector: quantTableSelector,
	})
	return nil
}

// Components returns the accumulated frame components.
func (b *PictureParameterBuffer) Components() []PictureComponent {
	return b.components
}

// SetRotation sets the rotation applied by the backend.
func (b *PictureParameterBuffer) SetRotation(r Rotation) {
	b.Rotation = r
}
