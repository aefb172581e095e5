// Command av1enc encodes raw Y4M video into an AV1 OBU stream, wrapped in
// an IVF container unless the output path ends in ".obu".
//
// Usage:
//
//	av1enc [options] input.y4m -o out.ivf
//	av1enc [options] W H Y U V -o out.ivf
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/deepteams/av1enc"
	"github.com/deepteams/av1enc/internal/ivf"
	"github.com/deepteams/av1enc/internal/y4m"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "av1enc: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("av1enc", flag.ContinueOnError)
	output := fs.String("o", "out.ivf", "output path (.ivf or .obu)")
	qIdx := fs.Int("q", 128, "base_q_idx, 0-255 (ignored if --bitrate is set)")
	keyint := fs.Int("keyint", 25, "keyframe interval in frames")
	bitrate := fs.Uint64("bitrate", 0, "target bitrate in bits/sec; enables rate control")
	fps := fs.Float64("fps", 25, "frame rate")
	bitDepth := fs.Int("bit-depth", 8, "input bit depth (only 8 is implemented)")
	colorRange := fs.String("color-range", "limited", "limited or full (not yet wired into the bitstream)")

	// Accepted for CLI parity with wav1c-cli (SPEC_FULL.md DOMAIN STACK)
	// but not yet wired into the sequence header writer, which always
	// emits no color description / limited range (internal/headers).
	_ = fs.Bool("hdr10", false, "reserved: not yet wired")
	_ = fs.String("color-primaries", "", "reserved: not yet wired")
	_ = fs.String("color-transfer", "", "reserved: not yet wired")
	_ = fs.String("color-matrix", "", "reserved: not yet wired")
	_ = fs.Uint64("max-cll", 0, "reserved: not yet wired")
	_ = fs.Uint64("max-fall", 0, "reserved: not yet wired")
	_ = fs.String("mdcv", "", "reserved: not yet wired")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *qIdx < 0 || *qIdx > 255 {
		return fmt.Errorf("-q must be in [0,255]")
	}
	if *bitDepth != 8 {
		return fmt.Errorf("--bit-depth %d is not supported by this build (only 8)", *bitDepth)
	}
	if *colorRange != "limited" && *colorRange != "full" {
		return fmt.Errorf("--color-range must be limited or full")
	}

	frames, width, height, err := loadInput(fs.Args())
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	cfg := av1enc.DefaultConfig()
	cfg.BaseQIdx = uint8(*qIdx)
	cfg.Keyint = uint32(*keyint)
	cfg.TargetBitrate = *bitrate
	cfg.FPS = *fps

	enc, err := av1enc.New(width, height, cfg)
	if err != nil {
		return fmt.Errorf("constructing encoder: %w", err)
	}

	var packets []*av1enc.Packet
	for i, f := range frames {
		in := &av1enc.Frame{Y: f.Y, U: f.U, V: f.V, Width: f.Width, Height: f.Height, BitDepth: 8}
		if err := enc.SendFrame(in); err != nil {
			return fmt.Errorf("encoding frame %d: %w", i, err)
		}
		pkt, ok := enc.ReceivePacket()
		if !ok {
			return fmt.Errorf("frame %d: no packet produced", i)
		}
		packets = append(packets, pkt)
		fmt.Fprintf(os.Stderr, "frame %d: %s, %d bytes\n", pkt.FrameNumber, pkt.FrameType, len(pkt.Data))
	}

	return writeOutput(*output, width, height, uint32(*fps), packets)
}

// loadInput accepts either a single Y4M path or a raw "W H Y U V" tuple
// of positional arguments naming planar 8-bit files, matching spec.md §6.
func loadInput(args []string) (frames []*y4m.FramePixels, width, height uint32, err error) {
	switch len(args) {
	case 1:
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return nil, 0, 0, readErr
		}
		frames, err = y4m.ParseAll(data)
		if err != nil {
			return nil, 0, 0, err
		}
		return frames, frames[0].Width, frames[0].Height, nil
	case 5:
		w, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("parsing width: %w", err)
		}
		h, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("parsing height: %w", err)
		}
		width, height = uint32(w), uint32(h)
		y, yErr := os.ReadFile(args[2])
		if yErr != nil {
			return nil, 0, 0, yErr
		}
		u, uErr := readPlane(args[3])
		if uErr != nil {
			return nil, 0, 0, uErr
		}
		v, vErr := readPlane(args[4])
		if vErr != nil {
			return nil, 0, 0, vErr
		}
		frames = []*y4m.FramePixels{{Y: y, U: u, V: v, Width: width, Height: height}}
		return frames, width, height, nil
	default:
		return nil, 0, 0, fmt.Errorf("usage: av1enc input.y4m -o out.ivf  OR  av1enc W H Y U V -o out.ivf")
	}
}

func readPlane(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// writeOutput wraps the coded packets in an IVF container unless the
// output path ends in ".obu", in which case the raw concatenated OBU
// stream is written instead — restoring wav1c-cli's output-format sniff
// (SPEC_FULL.md DOMAIN STACK — supplemented features).
func writeOutput(path string, width, height, fps uint32, packets []*av1enc.Packet) error {
	if strings.HasSuffix(path, ".obu") {
		var out []byte
		for _, p := range packets {
			out = append(out, p.Data...)
		}
		return os.WriteFile(path, out, 0o644)
	}

	w := ivf.New(width, height, fps, 1)
	for _, p := range packets {
		w.AddFrame(p.Data)
	}
	return os.WriteFile(path, w.Bytes(), 0o644)
}
