package bitcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	var testCases = []struct {
		name   string
		given  string
		expect string
	}{
		{
			name:   "example sentence body",
			given:  "AIVDM,1,1,,A,15NTES0P00J>tC4@@FOhMgvD0D0M,0",
			expect: "49",
		},
		{
			name:   "empty string checksums to zero",
			given:  "",
			expect: "00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Checksum(tc.given))
		})
	}
}

func TestIsChecksumValid(t *testing.T) {
	var testCases = []struct {
		name   string
		given  string
		expect bool
	}{
		{
			name:   "valid checksum, uppercase",
			given:  "!AIVDM,1,1,,A,15NTES0P00J>tC4@@FOhMgvD0D0M,0*49",
			expect: true,
		},
		{
			name:   "valid checksum, lowercase",
			given:  "!AIVDM,1,1,,B,H>cSnNP@4eEL544000000000000,0*3e",
			expect: true,
		},
		{
			name:   "corrupted groupsize invalidates checksum",
			given:  "!AIVDM,11,1,,A,15NTES0P00J>tC4@@FOhMgvD0D0M,0*49",
			expect: false,
		},
		{
			name:   "missing checksum delimiter",
			given:  "!AIVDM,1,1,,A,15NTES0P00J>tC4@@FOhMgvD0D0M,0",
			expect: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, IsChecksumValid(tc.given))
		})
	}
}

func TestArmorSixBitRoundTrip(t *testing.T) {
	for v := byte(0); v < 64; v++ {
		c := SixBitToArmor(v)
		got, ok := ArmorToSixBit(c)
		assert.True(t, ok, "armor char %q should decode", c)
		assert.Equal(t, v, got)
	}
}

func TestASCII6RoundTrip(t *testing.T) {
	for v := byte(0); v < 64; v++ {
		c := SixBitToASCII8(v)
		got, ok := ASCII8ToSixBit(c)
		assert.True(t, ok, "ascii6 char %q should encode", c)
		assert.Equal(t, v, got)
	}
}
