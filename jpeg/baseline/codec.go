package baseline

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	accel "github.com/cocosip/go-jpeg-hwdec/codec"
)

var _ codec.Codec = (*AcceleratedCodec)(nil)

// AcceleratedCodec implements the external codec.Codec interface for JPEG
// Baseline (Process 1), routing decodes to a registered acceleration
// backend. When no backend is available Decode fails with
// accel.ErrNoAccelerator so the caller can route the image to a software
// codec; hardware decode coverage is narrower than general JPEG and that
// fallback is expected.
type AcceleratedCodec struct {
	transferSyntax *transfer.Syntax
	backend        string // empty selects the default backend
}

// NewAcceleratedCodec creates a new hardware-accelerated JPEG Baseline codec.
// backend: registered backend name, or "" for the default backend
func NewAcceleratedCodec(backend string) *AcceleratedCodec {
	return &AcceleratedCodec{
		transferSyntax: transfer.JPEGBaseline8Bit,
		backend:        backend,
	}
}

// Name returns the codec name
func (c *AcceleratedCodec) Name() string {
	if c.backend == "" {
		return "JPEG Baseline (Hardware Accelerated)"
	}
	return fmt.Sprintf("JPEG Baseline (Hardware Accelerated, %s)", c.backend)
}

// TransferSyntax returns the transfer syntax this codec handles
func (c *AcceleratedCodec) TransferSyntax() *transfer.Syntax {
	return c.transferSyntax
}

// GetDefaultParameters returns the default codec parameters
func (c *AcceleratedCodec) GetDefaultParameters() codec.Parameters {
	p := NewAcceleratedParameters()
	p.Backend = c.backend
	return p
}

// Encode is not supported; the acceleration backends decode only.
func (c *AcceleratedCodec) Encode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	return fmt.Errorf("JPEG Baseline hardware codec is decode-only")
}

// Decode decodes JPEG Baseline frames on the acceleration backend.
func (c *AcceleratedCodec) Decode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}

	accelParams := c.resolveParameters(parameters)
	if err := accelParams.Validate(); err != nil {
		return fmt.Errorf("invalid codec parameters: %w", err)
	}

	// The parameters may name a backend; otherwise the codec's configured
	// backend applies. The caller's struct is never mutated.
	backendName := accelParams.Backend
	if backendName == "" {
		backendName = c.backend
	}
	backend, err := c.resolveBackend(backendName)
	if err != nil {
		return err
	}

	session, err := backend.NewSession(frameInfo.Width, frameInfo.Height)
	if err != nil {
		return fmt.Errorf("failed to create %dx%d decode session on %q: %w",
			frameInfo.Width, frameInfo.Height, backend.Name(), err)
	}
	defer session.Close()

	jpegParser := NewParser(WithExpectedSize(frameInfo.Width, frameInfo.Height))

	frameCount := oldPixelData.FrameCount()
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}

		if len(frameData) == 0 {
			return fmt.Errorf("frame %d pixel data is empty", frameIndex)
		}

		bundle, err := jpegParser.Parse(frameData)
		if err != nil {
			return fmt.Errorf("JPEG Baseline parse failed for frame %d: %w", frameIndex, err)
		}
		bundle.Picture.SetRotation(accelParams.Rotation)

		err = session.Submit(bundle.Huffman, bundle.IQ, bundle.Picture, bundle.Slice,
			bundle.EntropyData.Bytes(frameData))
		if err != nil {
			return fmt.Errorf("hardware decode failed for frame %d: %w", frameIndex, err)
		}

		img, err := session.ReadImage()
		if err != nil {
			return fmt.Errorf("failed to read back frame %d: %w", frameIndex, err)
		}

		if img.Width != frameInfo.Width || img.Height != frameInfo.Height {
			return fmt.Errorf("decoded dimensions (%dx%d) don't match expected (%dx%d)",
				img.Width, img.Height, frameInfo.Width, frameInfo.Height)
		}

		if err := newPixelData.AddFrame(img.Data); err != nil {
			return fmt.Errorf("failed to add decoded frame %d: %w", frameIndex, err)
		}
	}

	return nil
}

func (c *AcceleratedCodec) resolveParameters(parameters codec.Parameters) *AcceleratedParameters {
	if parameters == nil {
		return NewAcceleratedParameters()
	}
	if ap, ok := parameters.(*AcceleratedParameters); ok {
		return ap
	}
	// Fallback: create from generic parameters
	ap := NewAcceleratedParameters()
	if b := parameters.GetParameter("backend"); b != nil {
		if s, ok := b.(string); ok {
			ap.Backend = s
		}
	}
	if r := parameters.GetParameter("rotation"); r != nil {
		ap.SetParameter("rotation", r)
	}
	return ap
}

func (c *AcceleratedCodec) resolveBackend(name string) (accel.Accelerator, error) {
	if name == "" {
		return accel.Default()
	}
	backend, err := accel.Get(name)
	if err != nil {
		if errors.Is(err, accel.ErrBackendNotFound) {
			return nil, fmt.Errorf("backend %q: %w", name, err)
		}
		return nil, err
	}
	return backend, nil
}

// RegisterAcceleratedCodec registers the hardware JPEG Baseline codec with
// the global registry
func RegisterAcceleratedCodec() {
	registry := codec.GetGlobalRegistry()
	registry.RegisterCodec(transfer.JPEGBaseline8Bit, NewAcceleratedCodec(""))
}

func init() {
	RegisterAcceleratedCodec()
}
