// Package testutil collects small helpers shared across this module's test
// files.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// UTCTime builds a UTC time.Time from a unix timestamp, avoiding test
// flakiness on machines running in a different timezone.
func UTCTime(sec int64) time.Time {
	return time.Unix(sec, 0).In(time.UTC)
}

// LoadJSON unmarshals a file from a test's local testdata directory into
// target.
func LoadJSON(t *testing.T, filename string, target interface{}) {
	b := LoadBytes(t, filename)
	if err := json.Unmarshal(b, target); err != nil {
		t.Fatal(fmt.Errorf("testutil.LoadJSON: %w", err))
	}
}

// LoadBytes reads a file from the calling test's local testdata directory.
func LoadBytes(t *testing.T, name string) []byte {
	_, callerFile, _, _ := runtime.Caller(1)
	path := filepath.Join(filepath.Dir(callerFile), "testdata", name)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// AssertMessageFields compares a decoded AIS message map against the
// expected field values, tolerating floating point imprecision on
// bit-packed lat/lon/speed/course fields (the encode/decode round trip
// through a fixed-point representation, so exact equality is too strict).
func AssertMessageFields(t *testing.T, expect, actual map[string]interface{}, delta float64) {
	for name, expectedValue := range expect {
		actualValue, ok := actual[name]
		if !ok {
			t.Errorf("expected field %q missing from decoded message", name)
			continue
		}
		AssertFieldValue(t, name, expectedValue, actualValue, delta)
	}
}

// AssertFieldValue compares a single field, using delta-tolerant comparison
// for float64 values and exact equality otherwise.
func AssertFieldValue(t *testing.T, name string, expect, actual interface{}, delta float64) {
	if expectFloat, ok := expect.(float64); ok {
		actualFloat, ok := actual.(float64)
		if !ok {
			t.Errorf("field %q: expected float64 %v, got %T %v", name, expectFloat, actual, actual)
			return
		}
		assert.InDelta(t, expectFloat, actualFloat, delta, "field %q", name)
		return
	}
	assert.Equal(t, expect, actual, "field %q", name)
}

// MockReaderWriter replays a scripted sequence of reads/writes, used to
// drive serial-device code paths without a real port.
type MockReaderWriter struct {
	Reads      []ReadResult
	Writes     []WriteResult
	readIndex  int
	writeIndex int
}

type ReadResult struct {
	Read []byte
	Err  error
}

type WriteResult struct {
	N   int
	Err error
}

func (m *MockReaderWriter) Read(p []byte) (int, error) {
	r := m.Reads[m.readIndex]
	m.readIndex++
	if r.Err != nil {
		return len(r.Read), r.Err
	}
	n := copy(p, r.Read)
	return n, nil
}

func (m *MockReaderWriter) Write(p []byte) (int, error) {
	w := m.Writes[m.writeIndex]
	m.writeIndex++
	return w.N, w.Err
}

func (m *MockReaderWriter) Close() error {
	return nil
}
