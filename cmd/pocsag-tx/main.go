// Command pocsag-tx renders pages to audio without the daemon: either
// a single page given on the command line, or a stream of
// ADDRESS:FUNCTION:MESSAGE lines piped through stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbehnke/pocsag-nexus/pkg/audio"
	"github.com/dbehnke/pocsag-nexus/pkg/pcm"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	address := flag.Uint("address", 0, "Pager address (RIC) for one-shot mode")
	function := flag.Int("function", int(pocsag.DefaultFunction), "Function code 0-3")
	message := flag.String("message", "", "Message text for one-shot mode")
	baud := flag.Int("baud", pcm.DefaultBaudRate, "Baud rate: 512, 1200, or 2400")
	sampleRate := flag.Int("samplerate", pcm.DefaultSampleRate, "Output sample rate in Hz")
	inverted := flag.Bool("inverted", false, "Invert FSK polarity")
	output := flag.String("output", "-", "Output file, '-' for stdout; a .wav extension writes a WAV container")
	play := flag.Bool("play", false, "Play through the default audio device instead of writing")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pocsag-tx %s\n", version)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		fmt.Printf("Built: %s\n", buildTime)
		os.Exit(0)
	}

	supported := false
	for _, b := range pcm.SupportedBaudRates {
		if *baud == b {
			supported = true
			break
		}
	}
	if !supported {
		fatal(fmt.Errorf("unsupported baud rate %d (use 512, 1200, or 2400)", *baud))
	}

	// -address selects one-shot mode; without it, lines come from stdin.
	// flag.Visit distinguishes an explicit -address=0 from the default.
	oneShot := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "address" || f.Name == "message" {
			oneShot = true
		}
	})

	renderer := pcm.Renderer{
		SampleRate: *sampleRate,
		BaudRate:   *baud,
		Inverted:   *inverted,
	}

	sink, err := openSink(*output, *play, renderer.EffectiveSampleRate())
	if err != nil {
		fatal(err)
	}

	if oneShot {
		msg := pocsag.Message{
			Address:  uint32(*address),
			Function: pocsag.FunctionCode(*function),
			Text:     *message,
		}
		err = transmitOne(msg, renderer, sink)
	} else {
		err = transmitLines(os.Stdin, renderer, sink)
	}
	if err != nil {
		_ = sink.Close()
		fatal(err)
	}

	if err := sink.Close(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "pocsag-tx:", err)
	os.Exit(1)
}

// openSink picks the audio destination from the flags
func openSink(output string, play bool, sampleRate int) (audio.Sink, error) {
	if play {
		return audio.NewPlayer(sampleRate)
	}
	if output == "-" || output == "" {
		return audio.NewStreamSink(os.Stdout), nil
	}
	if strings.EqualFold(filepath.Ext(output), ".wav") {
		return audio.NewWAVSink(output, sampleRate)
	}
	return audio.NewFileSink(output)
}

func transmitOne(msg pocsag.Message, renderer pcm.Renderer, sink audio.Sink) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return sink.Write(renderer.Render(msg.Encode()))
}

func transmitLines(r io.Reader, renderer pcm.Renderer, sink audio.Sink) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		msg, err := pocsag.ParseLine(line)
		if err != nil {
			return fmt.Errorf("invalid input line %q: %w", line, err)
		}
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("invalid input line %q: %w", line, err)
		}

		if err := sink.Write(renderer.Render(msg.Encode())); err != nil {
			return err
		}
	}
	return scanner.Err()
}
