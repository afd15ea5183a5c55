package codec

import "github.com/cocosip/go-jpeg-hwdec/jpeg/params"

// Accelerator is the interface to an external hardware decode library.
// Implementations wrap a driver session object; this module only derives the
// parameter buffers an accelerator consumes.
type Accelerator interface {
	// Name returns a unique, human-readable backend name
	Name() string

	// NewSession creates a decode session for images of the given size
	NewSession(width, height uint16) (Session, error)
}

// Session is one hardware decode session. Parameter buffers must be fully
// constructed before hand-off, and all four records plus the entropy data
// form one atomic decode operation: the external API leaves partial
// submission undefined.
type Session interface {
	// Submit hands the parameter records and the raw entropy-coded bytes
	// to the hardware as one decode operation. It may block while the
	// hardware runs.
	Submit(huffman *params.HuffmanTableBuffer, iq *params.IQMatrixBuffer,
		picture *params.PictureParameterBuffer, slice *params.SliceParameterBuffer,
		entropyData []byte) error

	// ReadImage reads back the completed image
	ReadImage() (*Image, error)

	// Close releases the session's hardware resources
	Close() error
}

// Image is the decoded output read back from a session.
type Image struct {
	Data       []byte // Raw pixel data
	Width      uint16 // Image width
	Height     uint16 // Image height
	Components int    // Number of color components
	BitDepth   int    // Bits per sample
}
