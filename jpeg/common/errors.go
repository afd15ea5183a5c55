package common

import "errors"

// Parse error taxonomy. All of these are terminal for the current decode
// call; callers that see any of them should route the image to a software
// decode path instead.
var (
	// ErrMalformedSegment indicates a structurally invalid marker segment:
	// a length field below 2, a table selector out of range, a bad
	// precision or table class value, or a table body shorter than its
	// header declares.
	ErrMalformedSegment = errors.New("malformed JPEG segment")

	// ErrUnsupportedCodec indicates a well-formed stream that is not
	// baseline JPEG: a SOF marker other than SOF0, non-8-bit precision,
	// or progressive scan fields.
	ErrUnsupportedCodec = errors.New("unsupported JPEG coding process")

	// ErrTruncatedImage indicates that the stream ended before a required
	// SOF or SOS segment was observed.
	ErrTruncatedImage = errors.New("truncated JPEG image")

	// ErrUnexpectedEOF indicates that a segment declares more bytes than
	// remain in the buffer.
	ErrUnexpectedEOF = errors.New("unexpected end of JPEG data")
)
