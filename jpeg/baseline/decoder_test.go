package baseline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/common"
	"github.com/cocosip/go-jpeg-hwdec/jpeg/params"
)

// jpegBuilder assembles synthetic JPEG streams for parser tests.
type jpegBuilder struct {
	buf []byte
}

func newJPEG() *jpegBuilder {
	return &jpegBuilder{buf: []byte{0xFF, 0xD8}}
}

func (b *jpegBuilder) segment(marker byte, payload ...byte) *jpegBuilder {
	length := len(payload) + 2
	b.buf = append(b.buf, 0xFF, marker, byte(length>>8), byte(length))
	b.buf = append(b.buf, payload...)
	return b
}

func (b *jpegBuilder) dqt(dest byte, values [64]byte) *jpegBuilder {
	payload := append([]byte{dest}, values[:]...)
	return b.segment(0xDB, payload...)
}

// dht appends a minimal valid table: one 1-bit code with a single value.
func (b *jpegBuilder) dht(class, dest byte) *jpegBuilder {
	payload := []byte{class<<4 | dest}
	counts := [16]byte{1}
	payload = append(payload, counts[:]...)
	payload = append(payload, 0x00)
	return b.segment(0xC4, payload...)
}

func (b *jpegBuilder) dri(interval uint16) *jpegBuilder {
	return b.segment(0xDD, byte(interval>>8), byte(interval))
}

func (b *jpegBuilder) sof(marker, precision byte, width, height uint16, components ...[3]byte) *jpegBuilder {
	payload := []byte{
		precision,
		byte(height >> 8), byte(height),
		byte(width >> 8), byte(width),
		byte(len(components)),
	}
	for _, c := range components {
		payload = append(payload, c[:]...)
	}
	return b.segment(marker, payload...)
}

func (b *jpegBuilder) sos(ss, se, ahAl byte, entropy []byte, components ...[2]byte) *jpegBuilder {
	payload := []byte{byte(len(components))}
	for _, c := range components {
		payload = append(payload, c[:]...)
	}
	payload = append(payload, ss, se, ahAl)
	b.segment(0xDA, payload...)
	b.buf = append(b.buf, entropy...)
	return b
}

func (b *jpegBuilder) eoi() *jpegBuilder {
	b.buf = append(b.buf, 0xFF, 0xD9)
	return b
}

// minimalGrayscale builds a 16x16 single-component baseline JPEG with one
// quantization table and DC/AC tables in slot 0.
func minimalGrayscale(entropy []byte) []byte {
	var qt [64]byte
	for i := range qt {
		qt[i] = byte(i + 1)
	}
	return newJPEG().
		dqt(0, qt).
		dht(0, 0).
		dht(1, 0).
		sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, entropy, [2]byte{1, 0x00}).
		eoi().buf
}

func TestParseMinimalGrayscale(t *testing.T) {
	entropy := []byte{0x12, 0x34, 0xFF, 0x00, 0x56}
	buf := minimalGrayscale(entropy)

	bundle, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if bundle.Picture.Width != 16 || bundle.Picture.Height != 16 {
		t.Errorf("Picture: got %dx%d, want 16x16", bundle.Picture.Width, bundle.Picture.Height)
	}
	if bundle.Picture.ColorSpace != params.ColorSpaceYUV {
		t.Errorf("Color space: got %v, want YUV", bundle.Picture.ColorSpace)
	}
	if n := len(bundle.Picture.Components()); n != 1 {
		t.Errorf("Frame components: got %d, want 1", n)
	}
	if n := len(bundle.Slice.Components()); n != 1 {
		t.Errorf("Scan components: got %d, want 1", n)
	}
	if bundle.Slice.NumMCUs != 4 {
		t.Errorf("NumMCUs: got %d, want 4", bundle.Slice.NumMCUs)
	}
	if bundle.Slice.DataSize != uint32(len(entropy)) {
		t.Errorf("Entropy size: got %d, want %d", bundle.Slice.DataSize, len(entropy))
	}
	if !bytes.Equal(bundle.EntropyData.Bytes(buf), entropy) {
		t.Error("Entropy data range does not cover the scan data")
	}
	if m := bundle.IQ.Modified(); len(m) != 1 || m[0] != 0 {
		t.Errorf("IQ modified slots: got %v, want [0]", m)
	}
	if m := bundle.Huffman.Modified(); len(m) != 1 || m[0] != 0 {
		t.Errorf("Huffman modified slots: got %v, want [0]", m)
	}
}

func TestParseThreeComponentStructure(t *testing.T) {
	var qt [64]byte
	buf := newJPEG().
		dqt(0, qt).
		dqt(1, qt).
		dht(0, 0).dht(1, 0).dht(0, 1).dht(1, 1).
		sof(0xC0, 8, 16, 16,
			[3]byte{1, 0x22, 0},
			[3]byte{2, 0x11, 1},
			[3]byte{3, 0x11, 1}).
		sos(0, 63, 0, []byte{0xAB},
			[2]byte{1, 0x00},
			[2]byte{2, 0x11},
			[2]byte{3, 0x11}).
		eoi().buf

	bundle, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	pics := bundle.Picture.Components()
	if len(pics) != 3 {
		t.Fatalf("Frame components: got %d, want 3", len(pics))
	}
	for i, want := range []byte{1, 2, 3} {
		if pics[i].ID != want {
			t.Errorf("Frame component %d id: got %d, want %d", i, pics[i].ID, want)
		}
	}
	if pics[0].HSampling != 2 || pics[0].VSampling != 2 {
		t.Errorf("Luma sampling: got %dx%d, want 2x2", pics[0].HSampling, pics[0].VSampling)
	}

	scans := bundle.Slice.Components()
	if len(scans) != 3 {
		t.Fatalf("Scan components: got %d, want 3", len(scans))
	}
	if scans[1].DCTable != 1 || scans[1].ACTable != 1 {
		t.Errorf("Chroma tables: got %d/%d, want 1/1", scans[1].DCTable, scans[1].ACTable)
	}

	// Hmax = Vmax = 2: one 16x16 MCU covers the whole frame.
	if bundle.Slice.NumMCUs != 1 {
		t.Errorf("NumMCUs: got %d, want 1", bundle.Slice.NumMCUs)
	}

	if m := bundle.Huffman.Modified(); len(m) != 2 {
		t.Errorf("Huffman modified slots: got %v, want both", m)
	}
}

func TestParseDefaultHuffmanTables(t *testing.T) {
	var qt [64]byte
	buf := newJPEG().
		dqt(0, qt).
		sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00}).
		eoi().buf

	bundle, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	lum, err := bundle.Huffman.Table(0)
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if !bytes.Equal(lum.NumDCCodes[:], common.StandardDCLuminanceBits[:]) {
		t.Error("Slot 0 is not the ITU default luminance table")
	}
	chrom, _ := bundle.Huffman.Table(1)
	if !bytes.Equal(chrom.NumDCCodes[:], common.StandardDCChrominanceBits[:]) {
		t.Error("Slot 1 is not the ITU default chrominance table")
	}
}

func TestParseCallerSuppliedDefaultTables(t *testing.T) {
	defaults := params.DefaultHuffmanTables()
	p := NewParser(WithDefaultHuffmanTables(defaults))

	var qt [64]byte
	buf := newJPEG().
		dqt(0, qt).
		sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00}).
		eoi().buf

	bundle, err := p.Parse(buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if bundle.Huffman != defaults {
		t.Error("Caller-supplied default tables were not used")
	}
}

func TestParseDHTBadDestinationIsError(t *testing.T) {
	// A DHT destined for slot 2 is syntactically valid but exceeds the 2
	// slots baseline hardware offers; unlike a fully absent DHT it must
	// fail, not fall back to defaults.
	var qt [64]byte
	buf := newJPEG().
		dqt(0, qt).
		dht(0, 2).
		sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00}).
		eoi().buf

	if _, err := Parse(buf); !errors.Is(err, common.ErrMalformedSegment) {
		t.Errorf("Expected ErrMalformedSegment for DHT slot 2, got %v", err)
	}
}

func TestParseRejectsNonBaselineSOF(t *testing.T) {
	var qt [64]byte
	for _, marker := range []byte{0xC1, 0xC2, 0xC3} {
		buf := newJPEG().
			dqt(0, qt).
			sof(marker, 8, 16, 16, [3]byte{1, 0x11, 0}).
			sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00}).
			eoi().buf

		if _, err := Parse(buf); !errors.Is(err, common.ErrUnsupportedCodec) {
			t.Errorf("SOF 0x%02X: expected ErrUnsupportedCodec, got %v", marker, err)
		}
	}
}

func TestParseRejectsNon8BitPrecision(t *testing.T) {
	buf := newJPEG().
		sof(0xC0, 12, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00}).
		eoi().buf

	if _, err := Parse(buf); !errors.Is(err, common.ErrUnsupportedCodec) {
		t.Errorf("Expected ErrUnsupportedCodec for 12-bit precision, got %v", err)
	}
}

func TestParseRejectsProgressiveScanFields(t *testing.T) {
	frame := func() *jpegBuilder {
		return newJPEG().sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0})
	}

	buf := frame().sos(0, 10, 0, []byte{0x01}, [2]byte{1, 0x00}).eoi().buf
	if _, err := Parse(buf); !errors.Is(err, common.ErrUnsupportedCodec) {
		t.Errorf("Expected ErrUnsupportedCodec for Se=10, got %v", err)
	}

	buf = frame().sos(0, 63, 0x21, []byte{0x01}, [2]byte{1, 0x00}).eoi().buf
	if _, err := Parse(buf); !errors.Is(err, common.ErrUnsupportedCodec) {
		t.Errorf("Expected ErrUnsupportedCodec for Ah/Al=2/1, got %v", err)
	}
}

func TestParseRejectsDQT16Bit(t *testing.T) {
	payload := append([]byte{0x10}, make([]byte, 128)...)
	buf := newJPEG().segment(0xDB, payload...).eoi().buf

	if _, err := Parse(buf); !errors.Is(err, common.ErrMalformedSegment) {
		t.Errorf("Expected ErrMalformedSegment for 16-bit DQT, got %v", err)
	}
}

func TestParseTruncatedImages(t *testing.T) {
	// Nothing after SOI.
	if _, err := Parse([]byte{0xFF, 0xD8}); !errors.Is(err, common.ErrTruncatedImage) {
		t.Errorf("SOI only: expected ErrTruncatedImage, got %v", err)
	}

	// EOI before any frame.
	if _, err := Parse([]byte{0xFF, 0xD8, 0xFF, 0xD9}); !errors.Is(err, common.ErrTruncatedImage) {
		t.Errorf("SOI+EOI: expected ErrTruncatedImage, got %v", err)
	}

	// Frame but no scan.
	buf := newJPEG().sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).eoi().buf
	if _, err := Parse(buf); !errors.Is(err, common.ErrTruncatedImage) {
		t.Errorf("No SOS: expected ErrTruncatedImage, got %v", err)
	}

	if _, err := Parse(nil); !errors.Is(err, common.ErrTruncatedImage) {
		t.Errorf("Empty input: expected ErrTruncatedImage, got %v", err)
	}
}

func TestParseRequiresSOI(t *testing.T) {
	buf := newJPEG().buf[2:] // strip SOI
	buf = append(buf, 0xFF, 0xD9)
	if _, err := Parse(buf); !errors.Is(err, common.ErrMalformedSegment) {
		t.Errorf("Expected ErrMalformedSegment without SOI, got %v", err)
	}
}

func TestParseScanBeforeFrame(t *testing.T) {
	buf := newJPEG().
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00}).
		eoi().buf
	if _, err := Parse(buf); !errors.Is(err, common.ErrMalformedSegment) {
		t.Errorf("Expected ErrMalformedSegment for SOS before SOF, got %v", err)
	}
}

func TestParseExpectedSizeMismatch(t *testing.T) {
	p := NewParser(WithExpectedSize(32, 32))
	if _, err := p.Parse(minimalGrayscale([]byte{0x01})); !errors.Is(err, common.ErrUnsupportedCodec) {
		t.Errorf("Expected ErrUnsupportedCodec for size mismatch, got %v", err)
	}

	match := NewParser(WithExpectedSize(16, 16))
	if _, err := match.Parse(minimalGrayscale([]byte{0x01})); err != nil {
		t.Errorf("Matching expected size should parse, got %v", err)
	}
}

func TestParseRestartInterval(t *testing.T) {
	var qt [64]byte
	entropy := []byte{0x01, 0xFF, 0xD0, 0x02, 0xFF, 0xD1, 0x03}
	buf := newJPEG().
		dqt(0, qt).
		dht(0, 0).dht(1, 0).
		dri(2).
		sof(0xC0, 8, 48, 8, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, entropy, [2]byte{1, 0x00}).
		eoi().buf

	bundle, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if bundle.Slice.RestartInterval != 2 {
		t.Errorf("Restart interval: got %d, want 2", bundle.Slice.RestartInterval)
	}
	// Restart markers are part of the scan data.
	if bundle.Slice.DataSize != uint32(len(entropy)) {
		t.Errorf("Entropy size: got %d, want %d", bundle.Slice.DataSize, len(entropy))
	}
	if bundle.Slice.NumMCUs != 6 {
		t.Errorf("NumMCUs: got %d, want 6", bundle.Slice.NumMCUs)
	}
}

func TestParseIgnoresApplicationSegments(t *testing.T) {
	var qt [64]byte
	buf := newJPEG().
		segment(0xE0, 'J', 'F', 'I', 'F', 0).
		segment(0xFE, 'h', 'i').
		dqt(0, qt).
		segment(0xEE, 0x01, 0x02). // vendor extension
		dht(0, 0).dht(1, 0).
		sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00}).
		eoi().buf

	if _, err := Parse(buf); err != nil {
		t.Errorf("APPn/COM segments should be ignored, got %v", err)
	}
}

func TestParseScanTableSelectorOutOfRange(t *testing.T) {
	buf := newJPEG().
		sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x20}). // DC table 2
		eoi().buf
	if _, err := Parse(buf); !errors.Is(err, common.ErrMalformedSegment) {
		t.Errorf("Expected ErrMalformedSegment for DC selector 2, got %v", err)
	}
}

func TestParseWithoutTrailingEOI(t *testing.T) {
	entropy := []byte{0x01, 0x02, 0x03}
	buf := minimalGrayscale(entropy)
	buf = buf[:len(buf)-2] // drop EOI

	bundle, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse without EOI failed: %v", err)
	}
	if !bytes.Equal(bundle.EntropyData.Bytes(buf), entropy) {
		t.Error("Entropy data mismatch without trailing EOI")
	}
}

func TestParseIgnoresSegmentsAfterScan(t *testing.T) {
	var qt [64]byte
	b := newJPEG().
		dqt(0, qt).
		dht(0, 0).dht(1, 0).
		sof(0xC0, 8, 16, 16, [3]byte{1, 0x11, 0}).
		sos(0, 63, 0, []byte{0x01}, [2]byte{1, 0x00})
	b.segment(0xFE, 't', 'r', 'a', 'i', 'l', 'e', 'r')
	b.eoi()

	if _, err := Parse(b.buf); err != nil {
		t.Errorf("Segments between scan data and EOI should be ignored, got %v", err)
	}
}
