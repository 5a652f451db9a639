// Package envelope implements the NMEA sentence framing layer: expanding a
// single AIVDM/AIVDO sentence (plus any tagblock) into its tagblock fields,
// body and pad, and splitting/joining the concatenated text form of a
// multipart transmission.
package envelope

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-ais/aivdm/bitcodec"
	"github.com/go-ais/aivdm/internal/utils"
	"github.com/go-ais/aivdm/tagblock"
)

// ErrFraming indicates a malformed sentence structure: missing delimiters
// or the wrong number of comma-separated fields.
var ErrFraming = errors.New("envelope: malformed sentence framing")

var (
	reBang          = regexp.MustCompile(`![^!]+`)
	reBackslashBang = regexp.MustCompile(`\\![^!\\]+`)
	reBackslashFull = regexp.MustCompile(`\\[^\\]+\\![^!\\]+`)
)

// Expand parses a single NMEA sentence (with an optional leading tagblock)
// into its tagblock fields, armored body and pad digit. When
// validateChecksum is set, the sentence checksum must be present and valid.
func Expand(line string, validateChecksum bool) (fields map[string]interface{}, body string, pad int, err error) {
	tbStr, nmea := tagblock.Split(line)
	fields, err = tagblock.Parse(tbStr, false)
	if err != nil {
		return nil, "", 0, err
	}

	nmea = strings.TrimSpace(nmea)
	wireFields := strings.Split(nmea, ",")
	if len(wireFields) < 6 {
		return nil, "", 0, fmt.Errorf("%w: expected at least 6 comma-separated fields, got %d in %q",
			ErrFraming, len(wireFields), utils.FormatSpaces([]byte(nmea)))
	}

	if validateChecksum && !bitcodec.IsChecksumValid(nmea) {
		return nil, "", 0, fmt.Errorf("%w: invalid sentence checksum", bitcodec.ErrChecksum)
	}

	if len(wireFields[0]) < 3 {
		return nil, "", 0, fmt.Errorf("%w: sentence formatter field too short", ErrFraming)
	}
	fields["tagblock_talker_id"] = wireFields[0][1:3]

	groupsize, err := strconv.Atoi(wireFields[1])
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: groupsize field %q is not an integer", ErrFraming, wireFields[1])
	}
	sentence, err := strconv.Atoi(wireFields[2])
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: sentence number field %q is not an integer", ErrFraming, wireFields[2])
	}
	var wireID *int
	if wireFields[3] != "" {
		id, err := strconv.Atoi(wireFields[3])
		if err != nil {
			return nil, "", 0, fmt.Errorf("%w: sequential id field %q is not an integer", ErrFraming, wireFields[3])
		}
		wireID = &id
	}
	fields["tagblock_channel"] = wireFields[4]

	_, hasSentence := fields["tagblock_sentence"]
	_, hasGroupsize := fields["tagblock_groupsize"]
	_, hasID := fields["tagblock_id"]
	hasGroupTriple := hasSentence && hasGroupsize && hasID

	if !hasGroupTriple {
		fields["tagblock_groupsize"] = groupsize
		fields["tagblock_sentence"] = sentence
		if wireID != nil {
			fields["tagblock_id"] = *wireID
		}
	} else {
		// the tagblock's own 'g' triple is the authoritative grouping; its id
		// component is the unique per-session identifier, so it moves to
		// tagblock_group_id and the wire's own sequential id (if any) takes
		// over the plain tagblock_id name.
		fields["tagblock_group_id"] = fields["tagblock_id"]
		if wireID != nil {
			fields["tagblock_id"] = *wireID
		} else {
			delete(fields, "tagblock_id")
		}
	}

	body = wireFields[5]
	star := strings.LastIndexByte(nmea, '*')
	if star < 1 {
		return nil, "", 0, fmt.Errorf("%w: sentence missing checksum delimiter", ErrFraming)
	}
	padDigit := nmea[star-1]
	pad, err = strconv.Atoi(string(padDigit))
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: pad digit %q is not an integer", ErrFraming, string(padDigit))
	}

	return fields, body, pad, nil
}

// SplitMultipart re-splits a line produced by concatenating sentences back
// into its individual fragments, choosing the matching pattern from the
// line's first character.
func SplitMultipart(line string) ([]string, error) {
	var re *regexp.Regexp
	switch {
	case strings.HasPrefix(line, "\\!"):
		re = reBackslashBang
	case strings.HasPrefix(line, "\\"):
		re = reBackslashFull
	case strings.HasPrefix(line, "!"):
		re = reBang
	default:
		return nil, fmt.Errorf("%w: no valid AIVDM message detected", ErrFraming)
	}
	parts := re.FindAllString(line, -1)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no valid AIVDM message detected", ErrFraming)
	}
	return parts, nil
}

// JoinMultipart concatenates fragments in the given order. All fragments
// must start with the same character, either '!' or '\'.
func JoinMultipart(lines []string) (string, error) {
	if len(lines) == 0 {
		return "", nil
	}
	first := lines[0][0]
	if first != '!' && first != '\\' {
		return "", fmt.Errorf("%w: all lines must start with '!' or '\\'", ErrFraming)
	}
	for _, l := range lines {
		if l[0] != first {
			return "", fmt.Errorf("%w: all lines to be joined must start with the same character", ErrFraming)
		}
	}
	return strings.Join(lines, ""), nil
}
