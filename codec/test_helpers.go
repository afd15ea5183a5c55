package codec

import "github.com/cocosip/go-jpeg-hwdec/jpeg/params"

// TestAccelerator is a simple Accelerator implementation for testing. It
// records every submission and returns a fixed gray image on read-back.
type TestAccelerator struct {
	BackendName string
	Sessions    []*TestSession
}

// NewTestAccelerator creates a TestAccelerator with the given name
func NewTestAccelerator(name string) *TestAccelerator {
	return &TestAccelerator{BackendName: name}
}

// Name returns the backend name
func (a *TestAccelerator) Name() string {
	return a.BackendName
}

// NewSession creates a recording session for the given image size
func (a *TestAccelerator) NewSession(width, height uint16) (Session, error) {
	s := &TestSession{Width: width, Height: height}
	a.Sessions = append(a.Sessions, s)
	return s, nil
}

// TestSubmission captures one Submit call.
type TestSubmission struct {
	Huffman     *params.HuffmanTableBuffer
	IQ          *params.IQMatrixBuffer
	Picture     *params.PictureParameterBuffer
	Slice       *params.SliceParameterBuffer
	EntropyData []byte
}

// TestSession records submitted parameter bundles
type TestSession struct {
	Width       uint16
	Height      uint16
	Submissions []TestSubmission
	closed      bool
}

// Submit records the parameter bundle
func (s *TestSession) Submit(huffman *params.HuffmanTableBuffer, iq *params.IQMatrixBuffer,
	picture *params.PictureParameterBuffer, slice *params.SliceParameterBuffer,
	entropyData []byte) error {
	if s.closed {
		return ErrSessionClosed
	}
	if huffman == nil || iq == nil || picture == nil || slice == nil {
		return ErrInvalidParameter
	}
	s.Submissions = append(s.Submissions, TestSubmission{
		Huffman:     huffman,
		IQ:          iq,
		Picture:     picture,
		Slice:       slice,
		EntropyData: entropyData,
	})
	return nil
}

// ReadImage returns a mid-gray image sized from the latest submission's
// picture parameters
func (s *TestSession) ReadImage() (*Image, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if len(s.Submissions) == 0 {
		return nil, ErrInvalidParameter
	}
	pic := s.Submissions[len(s.Submissions)-1].Picture
	components := len(pic.Components())
	data := make([]byte, int(pic.Width)*int(pic.Height)*components)
	for i := range data {
		data[i] = 0x80
	}
	return &Image{
		Data:       data,
		Width:      pic.Width,
		Height:     pic.Height,
		Components: components,
		BitDepth:   8,
	}, nil
}

// Close marks the session closed
func (s *TestSession) Close() error {
	s.closed = true
	return nil
}
