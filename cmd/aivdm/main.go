package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-ais/aivdm"
	"github.com/go-ais/aivdm/reassembler"
	"github.com/go-ais/aivdm/serialsource"
	"github.com/go-ais/aivdm/tagblock"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "decode":
		err = runDecode(args)
	case "encode":
		err = runEncode(args)
	case "add-tagblock":
		err = runAddTagblock(args)
	case "update-tagblock":
		err = runUpdateTagblock(args)
	case "join-multipart":
		err = runJoinMultipart(args)
	case "stream":
		err = runStream(args)
	case "benchmark":
		err = runBenchmark(args)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "# Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: aivdm <decode|encode|add-tagblock|update-tagblock|join-multipart|stream|benchmark> [flags]")
}

// runDecode reads NMEA lines from stdin and writes one decoded JSON message
// per line to stdout, using safe_decode semantics: a line that fails to
// decode produces {"nmea": ..., "error": ...} rather than aborting.
func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	validateChecksum := fs.Bool("validate-checksum", false, "reject sentences with an invalid NMEA checksum")
	safePayload := fs.Bool("safe-payload", true, "attach payload decode errors to the output instead of failing the line")
	if err := fs.Parse(args); err != nil {
		return err
	}

	decoder := aivdm.NewDecoder(nil)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg := decoder.SafeDecode(line, *safePayload, *validateChecksum)
		b, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		out.Write(b)
		out.WriteByte('\n')
	}
	return scanner.Err()
}

// runEncode reads one JSON message per line from stdin and writes the
// resulting NMEA sentence to stdout, using safe_encode semantics.
func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var message map[string]interface{}
		if err := json.Unmarshal([]byte(line), &message); err != nil {
			fmt.Fprintf(os.Stderr, "# Error decoding input JSON: %v\n", err)
			continue
		}
		msg := aivdm.SafeEncode(message)
		if nmeaLine, ok := msg["nmea"].(string); ok {
			out.WriteString(nmeaLine)
			out.WriteByte('\n')
			continue
		}
		b, _ := json.Marshal(msg)
		out.Write(b)
		out.WriteByte('\n')
	}
	return scanner.Err()
}

// runAddTagblock prepends a freshly built tagblock (station + current
// timestamp) to every NMEA line read from stdin.
func runAddTagblock(args []string) error {
	fs := flag.NewFlagSet("add-tagblock", flag.ExitOnError)
	station := fs.String("station", "ais-tools", "identifier for this receiving station")
	addText := fs.Bool("text", true, "include a human-readable T: field alongside the numeric timestamp")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tb := tagblock.Create(*station, nil, *addText)
		out.WriteString(tagblock.Join(tb, line))
		out.WriteByte('\n')
	}
	return scanner.Err()
}

// runUpdateTagblock merges the -station and -destination values (when
// non-empty) into each line's existing tagblock (creating one if absent),
// re-emitting the sentence with the merged tagblock. No other fields can be
// set.
func runUpdateTagblock(args []string) error {
	fs := flag.NewFlagSet("update-tagblock", flag.ExitOnError)
	station := fs.String("station", "", "set/override the tagblock station (s) field")
	destination := fs.String("destination", "", "set/override the tagblock destination (d) field")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tbStr, rest := tagblock.Split(line)
		fields, err := tagblock.Parse(tbStr, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "# Error parsing tagblock: %v\n", err)
			continue
		}
		if *station != "" {
			fields["tagblock_station"] = *station
		}
		if *destination != "" {
			fields["tagblock_destination"] = *destination
		}
		out.WriteString(tagblock.Join(tagblock.Emit(fields), rest))
		out.WriteByte('\n')
	}
	return scanner.Err()
}

// runJoinMultipart streams stdin through the multipart reassembler,
// emitting joined sentences as soon as their parts are all seen (or
// flushing them unmatched once they age out of the window).
func runJoinMultipart(args []string) error {
	fs := flag.NewFlagSet("join-multipart", flag.ExitOnError)
	maxTimeMs := fs.Int("max-time", 500, "milliseconds an unmatched fragment may sit in the buffer before it is flushed")
	maxCount := fs.Int("max-count", 1000, "messages seen after a fragment arrived before it is flushed unmatched")
	safe := fs.Bool("safe", true, "pass lines that fail to parse through unchanged instead of aborting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r := reassembler.New(time.Duration(*maxTimeMs)*time.Millisecond, *maxCount)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var joined []string
		if *safe {
			joined = r.SafeProcess(line)
		} else {
			var err error
			joined, err = r.Process(line)
			if err != nil {
				return err
			}
		}
		for _, l := range joined {
			out.WriteString(l)
			out.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	for _, l := range r.Flush() {
		out.WriteString(l)
		out.WriteByte('\n')
	}
	return nil
}

// runStream reads raw sentences off a live serial AIS receiver, reassembles
// multipart messages and writes one decoded JSON message per line to
// stdout, until interrupted or the device stops responding.
func runStream(args []string) error {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	device := fs.String("device", "/dev/ttyUSB0", "path to the serial AIS receiver")
	baud := fs.Int("baud", 38400, "device baud rate")
	validateChecksum := fs.Bool("validate-checksum", false, "reject sentences with an invalid NMEA checksum")
	maxTimeMs := fs.Int("max-time", 500, "milliseconds an unmatched multipart fragment may sit buffered")
	maxCount := fs.Int("max-count", 1000, "messages seen after a fragment arrived before it is flushed unmatched")
	if err := fs.Parse(args); err != nil {
		return err
	}

	config := serialsource.DefaultConfig()
	config.BaudRate = *baud
	src, err := serialsource.Open(*device, config)
	if err != nil {
		return err
	}
	defer src.Close()
	if err := src.Initialize(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := reassembler.New(time.Duration(*maxTimeMs)*time.Millisecond, *maxCount)
	decoder := aivdm.NewDecoder(nil)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	err = src.Scan(ctx, func(line string) {
		for _, joined := range r.SafeProcess(line) {
			msg := decoder.SafeDecode(joined, true, *validateChecksum)
			b, marshalErr := json.Marshal(msg)
			if marshalErr != nil {
				fmt.Fprintf(os.Stderr, "# Error marshaling message: %v\n", marshalErr)
				continue
			}
			out.Write(b)
			out.WriteByte('\n')
		}
	})
	for _, joined := range r.Flush() {
		msg := decoder.SafeDecode(joined, true, *validateChecksum)
		b, marshalErr := json.Marshal(msg)
		if marshalErr != nil {
			continue
		}
		out.Write(b)
		out.WriteByte('\n')
	}
	if err == context.Canceled {
		return nil
	}
	return err
}
