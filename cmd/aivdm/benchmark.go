package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/go-ais/aivdm"
)

const (
	type1NMEA  = "!AIVDM,1,1,,A,15NTES0P00J>tC4@@FOhMgvD0D0M,0*49"
	type18NMEA = "!AIVDM,1,1,,A,B>cSnNP00FVur7UaC7WQ3wS1jCJJ,0*73"
	type24NMEA = "!AIVDM,1,1,,B,H>cSnNP@4eEL544000000000000,0*3E"
)

type benchmarkCase struct {
	name     string
	run      func(n int)
	defaultN int
}

func runBenchmark(args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ExitOnError)
	iterations := fs.Int("n", 0, "override the iteration count for every benchmark (0 keeps each benchmark's default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	decoder := aivdm.NewDecoder(nil)
	decoded18, err := decoder.Decode(type18NMEA, false, false)
	if err != nil {
		return fmt.Errorf("priming decode of type 18 benchmark fixture: %w", err)
	}
	decoded24, err := decoder.Decode(type24NMEA, false, false)
	if err != nil {
		return fmt.Errorf("priming decode of type 24 benchmark fixture: %w", err)
	}

	cases := []benchmarkCase{
		{"decode type 1", func(n int) {
			for i := 0; i < n; i++ {
				_, _ = decoder.Decode(type1NMEA, false, false)
			}
		}, 100_000},
		{"decode type 18", func(n int) {
			for i := 0; i < n; i++ {
				_, _ = decoder.Decode(type18NMEA, false, false)
			}
		}, 100_000},
		{"decode type 24", func(n int) {
			for i := 0; i < n; i++ {
				_, _ = decoder.Decode(type24NMEA, false, false)
			}
		}, 100_000},
		{"encode type 18", func(n int) {
			for i := 0; i < n; i++ {
				_, _ = aivdm.Encode(decoded18)
			}
		}, 100_000},
		{"encode type 24", func(n int) {
			for i := 0; i < n; i++ {
				_, _ = aivdm.Encode(decoded24)
			}
		}, 100_000},
	}

	fmt.Printf("%-22s%10s%10s%12s\n", "Benchmark", "Iterations", "Time", "Ops/sec")
	for _, c := range cases {
		n := c.defaultN
		if *iterations > 0 {
			n = *iterations
		}
		start := time.Now()
		c.run(n)
		elapsed := time.Since(start)
		opsPerSec := float64(n) / elapsed.Seconds()
		fmt.Printf("%-22s%10d%9.3fs%12.0f\n", c.name, n, elapsed.Seconds(), opsPerSec)
	}
	return nil
}
