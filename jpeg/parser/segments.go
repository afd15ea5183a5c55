package parser

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
)

// QuantTable is one table definition from a DQT segment.
type QuantTable struct {
	// Pq is the table precision. Only 0 (8-bit) is accepted.
	Pq byte
	// Dq is the destination slot, 0-3.
	Dq byte
	// Qk are the 64 table values in zig-zag order, viewed from the input
	// buffer.
	Qk *[64]byte
}

// HuffmanSpec is one table definition from a DHT segment.
type HuffmanSpec struct {
	// Tc is the table class (0 = DC, 1 = AC).
	Tc byte
	// Th is the destination slot.
	Th byte
	// Li counts the codes of each length 1-16.
	Li *[16]byte
	// Vij lists the symbol values, sum(Li) bytes.
	Vij []byte
}

// FrameHeader is the decoded SOF segment.
type FrameHeader struct {
	// Marker is the SOF marker code (0xC0 for baseline).
	Marker     byte
	Precision  byte
	Height     uint16
	Width      uint16
	Components []FrameComponent
}

// FrameComponent describes one frame component from a SOF segment.
type FrameComponent struct {
	ID byte
	// Sampling packs the horizontal factor into the high nibble and the
	// vertical factor into the low nibble.
	Sampling           byte
	QuantTableSelector byte
}

// HorizontalSampling returns the component's horizontal sampling factor.
func (c FrameComponent) HorizontalSampling() byte {
	return c.Sampling >> 4
}

// VerticalSampling returns the component's vertical sampling factor.
func (c FrameComponent) VerticalSampling() byte {
	return c.Sampling & 0x0F
}

// ScanHeader is the decoded SOS segment. Data covers the entropy-coded bytes
// that follow the header, up to the next non-restart marker.
type ScanHeader struct {
	Components []ScanComponent
	Ss         byte
	Se         byte
	AhAl       byte
	Data       DataRange
}

// Ah returns the successive approximation high bits.
func (h *ScanHeader) Ah() byte {
	return h.AhAl >> 4
}

// Al returns the successive approximation low bits.
func (h *ScanHeader) Al() byte {
	return h.AhAl & 0x0F
}

// ScanComponent describes one scan component from a SOS segment.
type ScanComponent struct {
	Selector byte
	// Tables packs the DC table selector into the high nibble and the AC
	// table selector into the low nibble.
	Tables byte
}

// DCTableSelector returns the component's DC Huffman table slot.
func (c ScanComponent) DCTableSelector() byte {
	return c.Tables >> 4
}

// ACTableSelector returns the component's AC Huffman table slot.
func (c ScanComponent) ACTableSelector() byte {
	return c.Tables & 0x0F
}

func decodeDQT(p []byte) ([]QuantTable, error) {
	var tables []QuantTable
	for len(p) > 0 {
		pq := p[0] >> 4
		dq := p[0] & 0x0F
		if pq != 0 {
			return nil, fmt.Errorf("quantization table precision %d, only 8-bit tables are supported: %w",
				pq, common.ErrMalformedSegment)
		}
		if dq > 3 {
			return nil, fmt.Errorf("quantization table destination %d out of range 0-3: %w",
				dq, common.ErrMalformedSegment)
		}
		if len(p) < 65 {
			return nil, fmt.Errorf("quantization table %d has %d of 64 value bytes: %w",
				dq, len(p)-1, common.ErrMalformedSegment)
		}
		tables = append(tables, QuantTable{Pq: pq, Dq: dq, Qk: (*[64]byte)(p[1:65])})
		p = p[65:]
	}
	return tables, nil
}

func decodeDHT(p []byte) ([]HuffmanSpec, error) {
	var specs []HuffmanSpec
	for len(p) > 0 {
		if len(p) < 17 {
			return nil, fmt.Errorf("huffman table header has %d of 17 bytes: %w",
				len(p), common.ErrMalformedSegment)
		}
		tc := p[0] >> 4
		th := p[0] & 0x0F
		if tc > 1 {
			return nil, fmt.Errorf("huffman table class %d, expected 0 (DC) or 1 (AC): %w",
				tc, common.ErrMalformedSegment)
		}
		if th > 3 {
			return nil, fmt.Errorf("huffman table destination %d out of range 0-3: %w",
				th, common.ErrMalformedSegment)
		}
		li := (*[16]byte)(p[1:17])
		n := 0
		for _, c := range li {
			n += int(c)
		}
		if len(p) < 17+n {
			return nil, fmt.Errorf("huffman table %d declares %d values but carries %d: %w",
				th, n, len(p)-17, common.ErrMalformedSegment)
		}
		specs = append(specs, HuffmanSpec{Tc: tc, Th: th, Li: li, Vij: p[17 : 17+n]})
		p = p[17+n:]
	}
	return specs, nil
}

func decodeDRI(p []byte) (uint16, error) {
	if len(p) != 2 {
		return 0, fmt.Errorf("restart interval segment has %d payload bytes, expected 2: %w",
			len(p), common.ErrMalformedSegment)
	}
	return binary.BigEndian.Uint16(p), nil
}

func decodeSOF(marker byte, p []byte) (*FrameHeader, error) {
	if len(p) < 6 {
		return nil, fmt.Errorf("frame header has %d of 6 fixed bytes: %w",
			len(p), common.ErrMalformedSegment)
	}
	f := &FrameHeader{
		Marker:    marker,
		Precision: p[0],
		Height:    binary.BigEndian.Uint16(p[1:3]),
		Width:     binary.BigEndian.Uint16(p[3:5]),
	}
	if f.Width == 0 || f.Height == 0 {
		return nil, fmt.Errorf("frame dimensions %dx%d: %w",
			f.Width, f.Height, common.ErrMalformedSegment)
	}
	nf := int(p[5])
	if nf == 0 {
		return nil, fmt.Errorf("frame declares no components: %w", common.ErrMalformedSegment)
	}
	if len(p) < 6+3*nf {
		return nil, fmt.Errorf("frame declares %d components but carries %d bytes: %w",
			nf, len(p)-6, common.ErrMalformedSegment)
	}
	f.Components = make([]FrameComponent, nf)
	for j := 0; j < nf; j++ {
		c := p[6+3*j:]
		f.Components[j] = FrameComponent{
			ID:                 c[0],
			Sampling:           c[1],
			QuantTableSelector: c[2],
		}
	}
	return f, nil
}

func decodeSOS(p []byte) (*ScanHeader, error) {
	if len(p) < 1 {
		return nil, fmt.Errorf("scan header is empty: %w", common.ErrMalformedSegment)
	}
	ns := int(p[0])
	if ns == 0 {
		return nil, fmt.Errorf("scan declares no components: %w", common.ErrMalformedSegment)
	}
	if len(p) != 1+2*ns+3 {
		return nil, fmt.Errorf("scan header with %d components has %d bytes, expected %d: %w",
			ns, len(p), 1+2*ns+3, common.ErrMalformedSegment)
	}
	h := &ScanHeader{
		Components: make([]ScanComponent, ns),
		Ss:         p[1+2*ns],
		Se:         p[2+2*ns],
		AhAl:       p[3+2*ns],
	}
	for j := 0; j < ns; j++ {
		c := p[1+2*j:]
		h.Components[j] = ScanComponent{Selector: c[0], Tables: c[1]}
	}
	return h, nil
}
