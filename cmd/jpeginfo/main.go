// Command jpeginfo dumps the marker segments of a baseline JPEG file and the
// hardware decode parameters derived from them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/cocosip/go-jpeg-hwdec/jpeg/baseline"
	"github.com/cocosip/go-jpeg-hwdec/jpeg/parser"
)

func main() {
	var inputFile = flag.String("input", "", "Input JPEG file")
	var segmentsOnly = flag.Bool("segments-only", false, "Dump marker segments without deriving decode parameters")
	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "usage: jpeginfo -input <file>")
		os.Exit(2)
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		glog.Exitf("Failed to read input file: %v", err)
	}

	dumpSegments(data)

	if !*segmentsOnly {
		dumpParameters(data)
	}
	glog.Flush()
}

func dumpSegments(data []byte) {
	scanner := parser.NewScanner(data)
	for {
		seg, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			glog.Exitf("Scan failed: %v", err)
		}

		switch seg.Kind {
		case parser.KindDQT:
			for _, t := range seg.DQT {
				fmt.Printf("%06x DQT table=%d precision=%d\n", seg.Pos, t.Dq, t.Pq)
			}
		case parser.KindDHT:
			for _, t := range seg.DHT {
				class := "DC"
				if t.Tc == 1 {
					class = "AC"
				}
				fmt.Printf("%06x DHT class=%s table=%d values=%d\n",
					seg.Pos, class, t.Th, len(t.Vij))
			}
		case parser.KindDRI:
			fmt.Printf("%06x DRI interval=%d\n", seg.Pos, seg.RestartInterval)
		case parser.KindSOF:
			f := seg.Frame
			fmt.Printf("%06x SOF%d %dx%d precision=%d components=%d\n",
				seg.Pos, f.Marker-0xC0, f.Width, f.Height, f.Precision, len(f.Components))
			for _, c := range f.Components {
				fmt.Printf("       component id=%d sampling=%dx%d quant-table=%d\n",
					c.ID, c.HorizontalSampling(), c.VerticalSampling(), c.QuantTableSelector)
			}
		case parser.KindSOS:
			s := seg.Scan
			fmt.Printf("%06x SOS components=%d Ss=%d Se=%d Ah=%d Al=%d data=%d bytes\n",
				seg.Pos, len(s.Components), s.Ss, s.Se, s.Ah(), s.Al(), s.Data.Len())
			for _, c := range s.Components {
				fmt.Printf("       component selector=%d dc-table=%d ac-table=%d\n",
					c.Selector, c.DCTableSelector(), c.ACTableSelector())
			}
		case parser.KindEOI:
			fmt.Printf("%06x EOI\n", seg.Pos)
		default:
			fmt.Printf("%06x marker 0x%02X payload=%d bytes\n", seg.Pos, seg.Marker, len(seg.Data))
		}
	}
}

func dumpParameters(data []byte) {
	bundle, err := baseline.Parse(data)
	if err != nil {
		glog.Exitf("Parameter derivation failed: %v", err)
	}

	fmt.Printf("\ndecode parameters:\n")
	fmt.Printf("  picture: %dx%d color-space=%s components=%d\n",
		bundle.Picture.Width, bundle.Picture.Height,
		bundle.Picture.ColorSpace, len(bundle.Picture.Components()))
	fmt.Printf("  slice: mcus=%d restart-interval=%d entropy-data=%d bytes at %06x\n",
		bundle.Slice.NumMCUs, bundle.Slice.RestartInterval,
		bundle.Slice.DataSize, bundle.EntropyData.Start)
	fmt.Printf("  huffman tables to load: %v\n", bundle.Huffman.Modified())
	fmt.Printf("  quantization tables to load: %v\n", bundle.IQ.Modified())
	glog.V(1).Infof("entropy data range: [%d, %d)", bundle.EntropyData.Start, bundle.EntropyData.End)
}
