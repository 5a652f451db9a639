package bitcodec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTestSetupMismatch = errors.New("bitcodec_test: raw bit length mismatch")

func TestUintRoundTrip(t *testing.T) {
	def := Compile(Uint("v", 12, 0))
	buf := New(12)
	err := def.Pack(buf, map[string]interface{}{"v": uint64(3000)})
	assert.NoError(t, err)

	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.Equal(t, uint64(3000), msg["v"])
}

func TestIntSignedRoundTrip(t *testing.T) {
	def := Compile(Int("v", 8, 0))

	var testCases = []struct {
		name  string
		given int64
	}{
		{name: "positive", given: 42},
		{name: "negative", given: -42},
		{name: "min", given: -128},
		{name: "max", given: 127},
		{name: "zero", given: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := New(8)
			assert.NoError(t, def.Pack(buf, map[string]interface{}{"v": tc.given}))
			buf2, _ := bufFromBits(buf)
			msg := map[string]interface{}{}
			assert.NoError(t, def.Unpack(buf2, msg))
			assert.Equal(t, tc.given, msg["v"])
		})
	}
}

func TestUint10RoundTrip(t *testing.T) {
	def := Compile(Uint10("cog", 12, 360))
	buf := New(12)
	assert.NoError(t, def.Pack(buf, map[string]interface{}{"cog": 123.4}))
	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.InDelta(t, 123.4, msg["cog"], 0.05)
}

func TestUint10UsesDefaultWhenAbsent(t *testing.T) {
	def := Compile(Uint10("cog", 12, 360))
	buf := New(12)
	assert.NoError(t, def.Pack(buf, map[string]interface{}{}))
	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.InDelta(t, 360.0, msg["cog"], 0.05)
}

func TestLatLonRoundTrip(t *testing.T) {
	def := Compile(LatLon("x", 28, 181), LatLon("y", 27, 91))
	buf := New(55)
	assert.NoError(t, def.Pack(buf, map[string]interface{}{"x": -6.3452, "y": 53.349617}))
	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.InDelta(t, -6.3452, msg["x"], 0.000001)
	assert.InDelta(t, 53.349617, msg["y"], 0.000001)
}

func TestLatLonSentinelDefault(t *testing.T) {
	def := Compile(LatLon("x", 28, 181), LatLon("y", 27, 91))
	buf := New(55)
	assert.NoError(t, def.Pack(buf, map[string]interface{}{}))
	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.InDelta(t, 181.0, msg["x"], 0.000001)
	assert.InDelta(t, 91.0, msg["y"], 0.000001)
}

func TestHexRoundTrip(t *testing.T) {
	def := Compile(Hex("application_id", 16, "0000"))
	buf := New(16)
	assert.NoError(t, def.Pack(buf, map[string]interface{}{"application_id": "1f02"}))
	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.Equal(t, "1f02", msg["application_id"])
}

func TestASCII6RoundTripField(t *testing.T) {
	def := Compile(ASCII6("callsign", 42, "@@@@@@@"))
	buf := New(42)
	assert.NoError(t, def.Pack(buf, map[string]interface{}{"callsign": "ABC"}))
	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.Equal(t, "ABC@@@@", msg["callsign"])
}

func TestVarHexTruncatesToMultipleOf4(t *testing.T) {
	// 10 bits remaining after a 2-bit field can only yield 2 hex nybbles (8 bits).
	def := Compile(Uint("pad", 2, 0), VarHex("application_data"))
	buf := New(12)
	assert.NoError(t, buf.writeRawForTest([]byte{1, 0, 1, 0, 1, 1, 0, 0, 1, 0, 1, 1}))
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf, msg))
	assert.Len(t, msg["application_data"], 2) // 2 hex chars = 8 bits, not 10
}

func TestBoolRoundTrip(t *testing.T) {
	def := Compile(Bool("raim", false))
	buf := New(1)
	assert.NoError(t, def.Pack(buf, map[string]interface{}{"raim": true}))
	buf2, _ := bufFromBits(buf)
	msg := map[string]interface{}{}
	assert.NoError(t, def.Unpack(buf2, msg))
	assert.Equal(t, true, msg["raim"])
}

// bufFromBits clones a buffer's bit content into a fresh decodable buffer
// with its cursor reset, the way a real encode->wire->decode round trip
// would reconstruct one from an NMEA body.
func bufFromBits(b *BitBuffer) (*BitBuffer, error) {
	body, pad := b.ToNMEA()
	return FromNMEA(body, pad)
}

// writeRawForTest is a test-only helper to seed a buffer's bits directly
// without going through a Field, for exercising truncation edge cases.
func (b *BitBuffer) writeRawForTest(bits []byte) error {
	if len(bits) != len(b.bits) {
		return errTestSetupMismatch
	}
	copy(b.bits, bits)
	return nil
}
