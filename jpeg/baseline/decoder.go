// Package baseline derives hardware decode parameters from baseline JPEG
// bitstreams. It drives the marker scanner over a complete in-memory image,
// folds table segments into the parameter builders and emits one
// DecodeParameters bundle per image. Entropy decoding itself is the
// acceleration backend's job.
package baseline

import (
	"errors"
	"fmt"
	"io"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
	"github.com/cocosip/go-jpeg-hwdec/jpeg/parser"
	"github.com/cocosip/go-jpeg-hwdec/jpeg/params"
)

// DecodeParameters is the complete parameter bundle for one baseline decode
// operation. It is only produced once a frame header and a scan header have
// both been observed; all four records plus the entropy byte range must be
// submitted to the acceleration session together.
type DecodeParameters struct {
	Huffman *params.HuffmanTableBuffer
	IQ      *params.IQMatrixBuffer
	Picture *params.PictureParameterBuffer
	Slice   *params.SliceParameterBuffer

	// EntropyData locates the scan's entropy-coded bytes in the parsed
	// buffer.
	EntropyData parser.DataRange
}

// Parser derives DecodeParameters from baseline JPEG buffers. The zero
// value is usable; options constrain or seed it. A Parser may be reused
// across images, each Parse call builds fresh state.
type Parser struct {
	expectWidth   uint16
	expectHeight  uint16
	defaultTables *params.HuffmanTableBuffer
}

// Option configures a Parser.
type Option func(*Parser)

// WithExpectedSize makes Parse reject frames whose dimensions differ from
// an already-created decode session.
func WithExpectedSize(width, height uint16) Option {
	return func(p *Parser) {
		p.expectWidth = width
		p.expectHeight = height
	}
}

// WithDefaultHuffmanTables sets the tables used when an image carries no
// DHT segment at all. The buffer is treated as immutable and may be shared
// across Parse calls. Without this option the ITU-T.81 recommended tables
// are used.
func WithDefaultHuffmanTables(b *params.HuffmanTableBuffer) Option {
	return func(p *Parser) {
		p.defaultTables = b
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse derives decode parameters from a complete JPEG buffer using a
// default Parser.
func Parse(buf []byte) (*DecodeParameters, error) {
	return NewParser().Parse(buf)
}

// parse states
type state int

const (
	awaitFrame state = iota // tables may arrive, frame header required next
	awaitScan               // frame seen, scan header required next
	ready                   // bundle complete, waiting for EOI
)

// Parse walks the buffer's marker segments and assembles the decode
// parameter bundle. Errors wrap one of the common sentinel errors; any
// error means the image must go to a software decoder instead.
func (p *Parser) Parse(buf []byte) (*DecodeParameters, error) {
	scanner := parser.NewScanner(buf)

	first, err := scanner.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty input: %w", common.ErrTruncatedImage)
		}
		return nil, err
	}
	if first.Marker != 0xD8 {
		return nil, fmt.Errorf("input does not start with SOI: %w", common.ErrMalformedSegment)
	}

	huffman := params.NewHuffmanTableBuffer()
	iq := params.NewIQMatrixBuffer()
	dhtSeen := false
	restartInterval := uint16(0)

	var frame *parser.FrameHeader
	bundle := &DecodeParameters{IQ: iq}

	st := awaitFrame
	for {
		seg, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			// Streams may end right after the scan data without a
			// trailing EOI.
			if st == ready {
				return bundle, nil
			}
			return nil, fmt.Errorf("input ended before frame and scan headers: %w",
				common.ErrTruncatedImage)
		}
		if err != nil {
			return nil, err
		}
		if st == ready {
			if seg.Kind == parser.KindEOI {
				return bundle, nil
			}
			// Anything between the scan data and EOI is ignored.
			continue
		}

		switch seg.Kind {
		case parser.KindDQT:
			for _, t := range seg.DQT {
				if _, err := iq.Set(int(t.Dq), t.Qk); err != nil {
					return nil, err
				}
			}

		case parser.KindDHT:
			for _, spec := range seg.DHT {
				if err := foldHuffmanSpec(huffman, spec); err != nil {
					return nil, err
				}
			}
			dhtSeen = true

		case parser.KindDRI:
			restartInterval = seg.RestartInterval

		case parser.KindSOF:
			if st != awaitFrame {
				return nil, fmt.Errorf("multiple frame headers: %w", common.ErrMalformedSegment)
			}
			picture, err := p.buildPicture(seg.Frame)
			if err != nil {
				return nil, err
			}
			frame = seg.Frame
			bundle.Picture = picture
			st = awaitScan

		case parser.KindSOS:
			if st != awaitScan {
				return nil, fmt.Errorf("scan header before frame header: %w",
					common.ErrMalformedSegment)
			}
			slice, err := buildSlice(seg.Scan, frame, restartInterval)
			if err != nil {
				return nil, err
			}
			if !dhtSeen {
				// An absent DHT means ITU default tables; a
				// malformed DHT already failed above.
				huffman = p.defaults()
			}
			bundle.Huffman = huffman
			bundle.Slice = slice
			bundle.EntropyData = seg.Scan.Data
			st = ready

		case parser.KindEOI:
			return nil, fmt.Errorf("EOI before frame and scan headers: %w",
				common.ErrTruncatedImage)

		default:
			// APPn, COM, vendor extensions: ignored.
		}
	}
}

func (p *Parser) defaults() *params.HuffmanTableBuffer {
	if p.defaultTables != nil {
		return p.defaultTables
	}
	return params.DefaultHuffmanTables()
}

func foldHuffmanSpec(huffman *params.HuffmanTableBuffer, spec parser.HuffmanSpec) error {
	table, err := huffman.Table(int(spec.Th))
	if err != nil {
		return err
	}
	switch spec.Tc {
	case 0:
		err = table.SetDC(spec.Li[:], spec.Vij)
	case 1:
		err = table.SetAC(spec.Li[:], spec.Vij)
	default:
		err = fmt.Errorf("huffman table class %d: %w", spec.Tc, common.ErrMalformedSegment)
	}
	if err != nil {
		return err
	}
	_, err = huffman.Set(int(spec.Th), table)
	return err
}

func (p *Parser) buildPicture(frame *parser.FrameHeader) (*params.PictureParameterBuffer, error) {
	if frame.Marker != 0xC0 {
		return nil, fmt.Errorf("SOF marker 0x%02X, only baseline (SOF0) is supported: %w",
			frame.Marker, common.ErrUnsupportedCodec)
	}
	if frame.Precision != 8 {
		return nil, fmt.Errorf("sample precision %d, only 8-bit is supported: %w",
			frame.Precision, common.ErrUnsupportedCodec)
	}
	if p.expectWidth != 0 || p.expectHeight != 0 {
		if frame.Width != p.expectWidth || frame.Height != p.expectHeight {
			return nil, fmt.Errorf("frame is %dx%d but the decode session expects %dx%d: %w",
				frame.Width, frame.Height, p.expectWidth, p.expectHeight,
				common.ErrUnsupportedCodec)
		}
	}

	// JPEG color data is encoded as YUV regardless of the downstream
	// conversion target.
	picture := params.NewPictureParameterBuffer(frame.Width, frame.Height, params.ColorSpaceYUV)
	for _, c := range frame.Components {
		if err := picture.PushComponent(c.ID, c.HorizontalSampling(), c.VerticalSampling(),
			c.QuantTableSelector); err != nil {
			return nil, err
		}
	}
	return picture, nil
}

func buildSlice(scan *parser.ScanHeader, frame *parser.FrameHeader, restartInterval uint16) (*params.SliceParameterBuffer, error) {
	if scan.Ss != 0 || scan.Se != 63 {
		return nil, fmt.Errorf("spectral selection %d..%d, baseline requires 0..63: %w",
			scan.Ss, scan.Se, common.ErrUnsupportedCodec)
	}
	if scan.AhAl != 0 {
		return nil, fmt.Errorf("successive approximation %d/%d, baseline requires 0/0: %w",
			scan.Ah(), scan.Al(), common.ErrUnsupportedCodec)
	}

	maxH, maxV := byte(0), byte(0)
	for _, c := range frame.Components {
		if h := c.HorizontalSampling(); h > maxH {
			maxH = h
		}
		if v := c.VerticalSampling(); v > maxV {
			maxV = v
		}
	}
	if maxH == 0 || maxV == 0 {
		return nil, fmt.Errorf("frame component with zero sampling factor: %w",
			common.ErrMalformedSegment)
	}

	numMCUs := params.MCUCount(frame.Width, frame.Height, maxH, maxV)
	slice := params.NewSliceParameterBuffer(uint32(scan.Data.Len()), restartInterval, numMCUs)
	for _, c := range scan.Components {
		dc, ac := c.DCTableSelector(), c.ACTableSelector()
		if dc > 1 || ac > 1 {
			return nil, fmt.Errorf("scan component %d selects tables %d/%d, baseline allows 0-1: %w",
				c.Selector, dc, ac, common.ErrMalformedSegment)
		}
		if err := slice.PushComponent(c.Selector, dc, ac); err != nil {
			return nil, err
		}
	}
	return slice, nil
}
