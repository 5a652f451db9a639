package tagblock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	var testCases = []struct {
		name           string
		given          string
		expectTagblock string
		expectRest     string
	}{
		{
			name:           "no tagblock",
			given:          "!AIVDM,1,1,,A,abc,0*00",
			expectTagblock: "",
			expectRest:     "!AIVDM,1,1,,A,abc,0*00",
		},
		{
			name:           "empty tagblock",
			given:          "\\!AIVDM,1,1,,A,abc,0*00",
			expectTagblock: "",
			expectRest:     "!AIVDM,1,1,,A,abc,0*00",
		},
		{
			name:           "populated tagblock",
			given:          "\\c:123,s:stn*00\\!AIVDM,1,1,,A,abc,0*00",
			expectTagblock: "c:123,s:stn*00",
			expectRest:     "!AIVDM,1,1,,A,abc,0*00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tb, rest := Split(tc.given)
			assert.Equal(t, tc.expectTagblock, tb)
			assert.Equal(t, tc.expectRest, rest)
		})
	}
}

func TestParse(t *testing.T) {
	fields, err := Parse("c:1577762601537,s:sdr-experiments,T:2019-12-30 22.23.21*5D", true)
	require.NoError(t, err)
	assert.InDelta(t, 1577762601.537, fields["tagblock_timestamp"], 0.0001)
	assert.Equal(t, "sdr-experiments", fields["tagblock_station"])
}

func TestParseSecondsThreshold(t *testing.T) {
	fields, err := Parse("c:1577762601,s:stn", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1577762601), fields["tagblock_timestamp"])
}

func TestParseGroupTriple(t *testing.T) {
	fields, err := Parse("g:1-2-1561", false)
	require.NoError(t, err)
	assert.Equal(t, 1, fields["tagblock_sentence"])
	assert.Equal(t, 2, fields["tagblock_groupsize"])
	assert.Equal(t, 1561, fields["tagblock_id"])
}

func TestParseGroupTripleMalformed(t *testing.T) {
	_, err := Parse("g:1-2", false)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseUnrecognizedKey(t *testing.T) {
	fields, err := Parse("x:custom-value", false)
	require.NoError(t, err)
	assert.Equal(t, "custom-value", fields["tagblock_x"])
}

func TestParseInvalidChecksum(t *testing.T) {
	_, err := Parse("c:123,s:stn*00", true)
	assert.Error(t, err)
}

func TestEmitIdempotence(t *testing.T) {
	fields, err := Parse("c:1577762601,s:sdr-experiments,t:hello,d:dest,n:5,r:2", false)
	require.NoError(t, err)

	emitted := Emit(fields)
	reparsed, err := Parse(emitted, true)
	require.NoError(t, err)
	assert.Equal(t, fields, reparsed)
}

func TestEmitGroupTripleOnlyWhenAllThreePresent(t *testing.T) {
	emitted := Emit(map[string]interface{}{"tagblock_sentence": 1, "tagblock_groupsize": 2})
	assert.NotContains(t, emitted, "g:")
}

func TestSafeTimestamp(t *testing.T) {
	var testCases = []struct {
		name   string
		given  string
		expect float64
	}{
		{
			name:   "millisecond timestamp",
			given:  "\\c:1577762601537,s:sdr-experiments*5D\\!AIVDM,1,1,,A,abc,0*00",
			expect: 1577762601.537,
		},
		{
			name:   "no tagblock",
			given:  "!AIVDM,1,1,,A,abc,0*00",
			expect: 0,
		},
		{
			name:   "malformed timestamp does not panic",
			given:  "\\c:notanumber*00\\!AIVDM,1,1,,A,abc,0*00",
			expect: 0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expect, SafeTimestamp(tc.given), 0.0001)
		})
	}
}

func TestCreate(t *testing.T) {
	ts := time.Date(2019, 12, 30, 22, 23, 21, 537_000_000, time.UTC)
	tb := Create("sdr-experiments", &ts, true)

	fields, err := Parse(tb, true)
	require.NoError(t, err)
	assert.Equal(t, "sdr-experiments", fields["tagblock_station"])
	assert.Contains(t, tb, "T:2019-12-30 22.23.21")
}

func TestCreateWithoutTagblockT(t *testing.T) {
	ts := time.Now()
	tb := Create("stn", &ts, false)
	assert.NotContains(t, tb, "T:")
}
