package parser

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
)

// Kind identifies the segment variant carried by a Segment.
type Kind int

const (
	// KindOther covers APPn, COM, SOI, RSTn and any marker the scanner
	// does not interpret.
	KindOther Kind = iota
	KindDQT
	KindDHT
	KindDRI
	KindSOF
	KindSOS
	KindEOI
)

// DataRange is a byte range within the scanned input buffer. Entropy-coded
// scan data is referred to by range rather than by slice so the caller
// controls when (and whether) the underlying bytes are re-sliced.
type DataRange struct {
	Start int
	End   int
}

// Bytes re-slices the range out of the original input buffer.
func (r DataRange) Bytes(buf []byte) []byte {
	return buf[r.Start:r.End]
}

// Len returns the number of bytes covered by the range.
func (r DataRange) Len() int {
	return r.End - r.Start
}

// Segment is one marker segment located in the input buffer. Payload fields
// are views into the scanned buffer and stay valid only as long as it does.
type Segment struct {
	// Pos is the offset of the segment's 0xFF marker prefix.
	Pos int

	Kind   Kind
	Marker byte // marker code, the byte following 0xFF

	// Data is the raw payload of length-bearing markers, without the
	// length field. Nil for stand-alone markers.
	Data []byte

	// Decoded payload for the matching Kind.
	DQT             []QuantTable
	DHT             []HuffmanSpec
	RestartInterval uint16
	Frame           *FrameHeader
	Scan            *ScanHeader
}

// Scanner walks a JPEG byte buffer and produces marker segments in stream
// order. Segments are produced one at a time; re-scanning requires a new
// Scanner.
type Scanner struct {
	buf []byte
	pos int
}

// NewScanner creates a scanner over a complete in-memory JPEG buffer.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Next returns the next segment starting at or after the cursor. It returns
// io.EOF once the buffer is cleanly exhausted.
func (s *Scanner) Next() (*Segment, error) {
	if s.pos >= len(s.buf) {
		return nil, io.EOF
	}
	start := s.pos
	if s.buf[start] != 0xFF {
		return nil, fmt.Errorf("expected marker at offset %d, found 0x%02X: %w",
			start, s.buf[start], common.ErrMalformedSegment)
	}

	// Any run of 0xFF bytes before the marker code is fill and carries no
	// meaning.
	i := start
	for i < len(s.buf) && s.buf[i] == 0xFF {
		i++
	}
	if i >= len(s.buf) {
		return nil, fmt.Errorf("marker prefix at offset %d runs past end of data: %w",
			start, common.ErrUnexpectedEOF)
	}
	marker := s.buf[i]
	if marker == 0x00 {
		return nil, fmt.Errorf("stuffed byte at offset %d outside entropy-coded data: %w",
			i-1, common.ErrMalformedSegment)
	}

	seg := &Segment{Pos: start, Marker: marker}
	if !common.HasLength(0xFF00 | uint16(marker)) {
		if marker == 0xD9 {
			seg.Kind = KindEOI
		}
		s.pos = i + 1
		return seg, nil
	}

	// Length-bearing marker: 2-byte big-endian length that counts itself.
	p := i - 1 // offset of the 0xFF immediately before the marker code
	if p+4 > len(s.buf) {
		return nil, fmt.Errorf("segment 0x%02X at offset %d truncated before length field: %w",
			marker, start, common.ErrUnexpectedEOF)
	}
	length := int(binary.BigEndian.Uint16(s.buf[p+2 : p+4]))
	if length < 2 {
		return nil, fmt.Errorf("segment 0x%02X at offset %d declares length %d: %w",
			marker, start, length, common.ErrMalformedSegment)
	}
	end := p + 2 + length
	if end > len(s.buf) {
		return nil, fmt.Errorf("segment 0x%02X at offset %d declares %d payload bytes but only %d remain: %w",
			marker, start, length-2, len(s.buf)-(p+4), common.ErrUnexpectedEOF)
	}
	seg.Data = s.buf[p+4 : end]
	s.pos = end

	var err error
	switch {
	case marker == 0xDB:
		seg.Kind = KindDQT
		seg.DQT, err = decodeDQT(seg.Data)
	case marker == 0xC4:
		seg.Kind = KindDHT
		seg.DHT, err = decodeDHT(seg.Data)
	case marker == 0xDD:
		seg.Kind = KindDRI
		seg.RestartInterval, err = decodeDRI(seg.Data)
	case common.IsSOF(0xFF00 | uint16(marker)):
		seg.Kind = KindSOF
		seg.Frame, err = decodeSOF(marker, seg.Data)
	case marker == 0xDA:
		seg.Kind = KindSOS
		seg.Scan, err = decodeSOS(seg.Data)
		if err == nil {
			dataEnd := scanDataEnd(s.buf, end)
			seg.Scan.Data = DataRange{Start: end, End: dataEnd}
			s.pos = dataEnd
		}
	}
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// scanDataEnd locates the end of entropy-coded data beginning at start: the
// first 0xFF followed by a byte that is neither a stuffed 0x00, a fill 0xFF,
// nor a restart marker. Data running to the end of the buffer ends there.
func scanDataEnd(buf []byte, start int) int {
	i := start
	for i+1 < len(buf) {
		if buf[i] != 0xFF {
			i++
			continue
		}
		next := buf[i+1]
		switch {
		case next == 0x00:
			i += 2 // stuffed literal 0xFF data byte
		case next == 0xFF:
			i++ // fill byte
		case common.IsRSTByte(next):
			i += 2 // restart marker embedded in the scan
		default:
			return i
		}
	}
	return len(buf)
}
