package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSimpleSentence(t *testing.T) {
	fields, body, pad, err := Expand("!AIVDM,1,1,,A,15NTES0P00J>tC4@@FOhMgvD0D0M,0*49", true)
	require.NoError(t, err)
	assert.Equal(t, "15NTES0P00J>tC4@@FOhMgvD0D0M", body)
	assert.Equal(t, 0, pad)
	assert.Equal(t, "AI", fields["tagblock_talker_id"])
	assert.Equal(t, "A", fields["tagblock_channel"])
	assert.Equal(t, 1, fields["tagblock_groupsize"])
	assert.Equal(t, 1, fields["tagblock_sentence"])
	assert.NotContains(t, fields, "tagblock_id")
}

func TestExpandBadChecksum(t *testing.T) {
	_, _, _, err := Expand("!AIVDM,1,1,,A,15NTES0P00J>tC4@@FOhMgvD0D0M,0*00", true)
	assert.Error(t, err)
}

func TestExpandTooFewFields(t *testing.T) {
	_, _, _, err := Expand("!AIVDM,1,1*00", false)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestExpandWithTagblockNoGroupTriple(t *testing.T) {
	fields, _, _, err := Expand("\\s:basestation,c:1577762601\\!AIVDM,2,1,3,A,abc,0*00", false)
	require.NoError(t, err)
	assert.Equal(t, "basestation", fields["tagblock_station"])
	assert.Equal(t, 2, fields["tagblock_groupsize"])
	assert.Equal(t, 1, fields["tagblock_sentence"])
	assert.Equal(t, 3, fields["tagblock_id"])
}

func TestExpandWithTagblockGroupTripleRenamesToGroupID(t *testing.T) {
	// scenario: tagblock carries its own group triple (g:S-G-I), and the
	// wire's own sequential id becomes the plain tagblock_id while the
	// tagblock's unique id moves to tagblock_group_id.
	fields1, _, _, err := Expand("\\g:1-2-1561\\!AIVDM,2,1,1,B,abc,0*00", false)
	require.NoError(t, err)
	assert.Equal(t, 1, fields1["tagblock_sentence"])
	assert.Equal(t, 2, fields1["tagblock_groupsize"])
	assert.Equal(t, 1561, fields1["tagblock_group_id"])
	assert.Equal(t, 1, fields1["tagblock_id"])

	fields2, _, _, err := Expand("\\g:2-2-1561\\!AIVDM,2,2,1,B,def,0*00", false)
	require.NoError(t, err)
	assert.Equal(t, 2, fields2["tagblock_sentence"])
	assert.Equal(t, fields1["tagblock_group_id"], fields2["tagblock_group_id"])
}

func TestSplitMultipartBang(t *testing.T) {
	parts, err := SplitMultipart("!AIVDM,2,1,3,A,abc,0*00!AIVDM,2,2,3,A,def,0*00")
	require.NoError(t, err)
	assert.Equal(t, []string{"!AIVDM,2,1,3,A,abc,0*00", "!AIVDM,2,2,3,A,def,0*00"}, parts)
}

func TestSplitMultipartBackslashBang(t *testing.T) {
	parts, err := SplitMultipart("\\!AIVDM,2,1,3,A,abc,0*00\\!AIVDM,2,2,3,A,def,0*00")
	require.NoError(t, err)
	assert.Equal(t, []string{"\\!AIVDM,2,1,3,A,abc,0*00", "\\!AIVDM,2,2,3,A,def,0*00"}, parts)
}

func TestSplitMultipartFullTagblock(t *testing.T) {
	line := "\\g:1-2-1561\\!AIVDM,2,1,1,B,abc,0*00\\g:2-2-1561\\!AIVDM,2,2,1,B,def,0*00"
	parts, err := SplitMultipart(line)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"\\g:1-2-1561\\!AIVDM,2,1,1,B,abc,0*00",
		"\\g:2-2-1561\\!AIVDM,2,2,1,B,def,0*00",
	}, parts)
}

func TestSplitMultipartInvalid(t *testing.T) {
	_, err := SplitMultipart("not a sentence at all")
	assert.ErrorIs(t, err, ErrFraming)
}

func TestJoinMultipart(t *testing.T) {
	joined, err := JoinMultipart([]string{"!AIVDM,2,1,3,A,abc,0*00", "!AIVDM,2,2,3,A,def,0*00"})
	require.NoError(t, err)
	assert.Equal(t, "!AIVDM,2,1,3,A,abc,0*00!AIVDM,2,2,3,A,def,0*00", joined)
}

func TestJoinMultipartMismatchedPrefix(t *testing.T) {
	_, err := JoinMultipart([]string{"!AIVDM,2,1,3,A,abc,0*00", "\\AIVDM,2,2,3,A,def,0*00"})
	assert.ErrorIs(t, err, ErrFraming)
}
