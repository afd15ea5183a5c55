package baseline

import (
	"github.com/cocosip/go-dicom/pkg/imaging/codec"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/params"
)

// Ensure AcceleratedParameters implements codec.Parameters
var _ codec.Parameters = (*AcceleratedParameters)(nil)

// AcceleratedParameters contains parameters for hardware JPEG Baseline
// decoding
type AcceleratedParameters struct {
	// Backend names the acceleration backend to use; empty selects the
	// default backend.
	Backend string

	// Rotation is applied by the backend to the decoded image.
	Rotation params.Rotation

	// internal storage for compatibility with generic parameter interface
	extra map[string]interface{}
}

// NewAcceleratedParameters creates a new AcceleratedParameters with default
// values
func NewAcceleratedParameters() *AcceleratedParameters {
	return &AcceleratedParameters{
		Rotation: params.RotationNone,
		extra:    make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *AcceleratedParameters) GetParameter(name string) interface{} {
	switch name {
	case "backend":
		return p.Backend
	case "rotation":
		return p.Rotation
	default:
		// Check custom parameters
		return p.extra[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *AcceleratedParameters) SetParameter(name string, value interface{}) {
	switch name {
	case "backend":
		if v, ok := value.(string); ok {
			p.Backend = v
		}
	case "rotation":
		if v, ok := value.(params.Rotation); ok {
			p.Rotation = v
		}
	default:
		// Store as custom parameter
		p.extra[name] = value
	}
}

// Validate checks if the parameters are valid and adjusts them if needed
func (p *AcceleratedParameters) Validate() error {
	if p.Rotation > params.Rotation270 {
		p.Rotation = params.RotationNone
	}
	return nil
}

// WithBackend sets the backend and returns the parameters for chaining
func (p *AcceleratedParameters) WithBackend(backend string) *AcceleratedParameters {
	p.Backend = backend
	return p
}

// WithRotation sets the rotation and returns the parameters for chaining
func (p *AcceleratedParameters) WithRotation(rotation params.Rotation) *AcceleratedParameters {
	p.Rotation = rotation
	return p
}
