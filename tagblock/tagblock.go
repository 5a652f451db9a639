// Package tagblock implements the NMEA 4.10 tagblock codec: parsing and
// emitting the "k:v,k:v,...*CS" metadata prefix a receiving station may add
// ahead of an AIVDM sentence.
package tagblock

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-ais/aivdm/bitcodec"
)

// ErrParse indicates a tagblock k:v pair failed to decode (non-integer
// where an integer was expected, or a malformed group triple).
var ErrParse = errors.New("tagblock: parse error")

const millisecondThreshold = 40_000_000_000
const tFormat = "2006-01-02 15.04.05"

// Split separates a leading tagblock from the rest of an NMEA line.
// A line with no leading backslash carries no tagblock. A line starting
// with "\!" carries an empty tagblock (the backslash is stripped, the body
// keeps its leading "!"). Otherwise the tagblock is the text between the
// two backslash delimiters.
func Split(line string) (tagblockStr string, rest string) {
	if !strings.HasPrefix(line, "\\") {
		return "", line
	}
	if strings.HasPrefix(line, "\\!") {
		return "", line[1:]
	}
	remainder := line[1:]
	idx := strings.IndexByte(remainder, '\\')
	if idx < 0 {
		return "", line
	}
	return remainder[:idx], remainder[idx+1:]
}

// Join prepends a tagblock (if non-empty) back onto an NMEA body.
func Join(tagblockStr string, nmea string) string {
	if tagblockStr == "" {
		return nmea
	}
	return "\\" + strings.Trim(tagblockStr, "\\") + "\\" + nmea
}

// Parse decodes a tagblock body (without surrounding backslashes) into its
// canonical tagblock_* fields. When validateChecksum is set, a checksum
// suffix must be present and correct.
func Parse(tagblockStr string, validateChecksum bool) (map[string]interface{}, error) {
	body := tagblockStr
	if i := strings.LastIndexByte(tagblockStr, '*'); i >= 0 {
		body = tagblockStr[:i]
		if validateChecksum {
			if !bitcodec.IsChecksumValid(tagblockStr) {
				return nil, fmt.Errorf("%w: invalid tagblock checksum", bitcodec.ErrChecksum)
			}
		}
	} else if validateChecksum {
		return nil, fmt.Errorf("%w: tagblock missing checksum", bitcodec.ErrChecksum)
	}

	fields := map[string]interface{}{}
	if body == "" {
		return fields, nil
	}

	for _, pair := range strings.Split(body, ",") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("%w: malformed tagblock field %q", ErrParse, pair)
		}
		key, value := kv[0], kv[1]

		switch key {
		case "c":
			t, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: tagblock timestamp %q is not an integer", ErrParse, value)
			}
			if t <= millisecondThreshold {
				fields["tagblock_timestamp"] = t
			} else {
				fields["tagblock_timestamp"] = float64(t) / 1000.0
			}
		case "n":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: tagblock line count %q is not an integer", ErrParse, value)
			}
			fields["tagblock_line_count"] = n
		case "r":
			r, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: tagblock relative time %q is not an integer", ErrParse, value)
			}
			fields["tagblock_relative_time"] = r
		case "d":
			fields["tagblock_destination"] = value
		case "s":
			fields["tagblock_station"] = value
		case "t":
			fields["tagblock_text"] = value
		case "g":
			parts := strings.Split(value, "-")
			if len(parts) != 3 {
				return nil, fmt.Errorf("%w: group triple %q must have 3 parts", ErrParse, value)
			}
			sentence, err1 := strconv.Atoi(parts[0])
			groupsize, err2 := strconv.Atoi(parts[1])
			id, err3 := strconv.Atoi(parts[2])
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("%w: group triple %q has non-integer parts", ErrParse, value)
			}
			fields["tagblock_sentence"] = sentence
			fields["tagblock_groupsize"] = groupsize
			fields["tagblock_id"] = id
		default:
			fields["tagblock_"+key] = value
		}
	}
	return fields, nil
}

// canonical emission order: timestamp, station, text, destination, line
// count, relative time, group.
var emitOrder = []struct {
	key       string
	fieldName string
}{
	{"c", "tagblock_timestamp"},
	{"s", "tagblock_station"},
	{"t", "tagblock_text"},
	{"d", "tagblock_destination"},
	{"n", "tagblock_line_count"},
	{"r", "tagblock_relative_time"},
}

// Emit renders tagblock fields back to wire form "k:v,k:v,...*CS", in a
// stable canonical order so that round trips are textually deterministic.
// The group triple is recombined into g:S-G-I only when all three of
// tagblock_sentence/tagblock_groupsize/tagblock_id are present.
func Emit(fields map[string]interface{}) string {
	var parts []string
	for _, e := range emitOrder {
		if v, ok := fields[e.fieldName]; ok {
			if ts, isFloat := v.(float64); isFloat && e.key == "c" {
				// a millisecond timestamp parses to fractional seconds; put it
				// back on the wire as integer milliseconds.
				v = int64(math.Round(ts * 1000))
			}
			parts = append(parts, fmt.Sprintf("%s:%v", e.key, v))
		}
	}
	// preserve any unrecognized tagblock_x fields not covered by the
	// canonical set, in map iteration order (order is not otherwise
	// specified for these by the wire format).
	known := map[string]bool{
		"tagblock_timestamp": true, "tagblock_station": true, "tagblock_text": true,
		"tagblock_destination": true, "tagblock_line_count": true, "tagblock_relative_time": true,
		"tagblock_sentence": true, "tagblock_groupsize": true, "tagblock_id": true,
		"tagblock_group_id": true, "tagblock_channel": true, "tagblock_talker_id": true,
	}
	sentence, hasSentence := fields["tagblock_sentence"]
	groupsize, hasGroupsize := fields["tagblock_groupsize"]
	id, hasID := fields["tagblock_id"]
	if hasSentence && hasGroupsize && hasID {
		parts = append(parts, fmt.Sprintf("g:%v-%v-%v", sentence, groupsize, id))
	}
	for k, v := range fields {
		if known[k] || !strings.HasPrefix(k, "tagblock_") {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%v", strings.TrimPrefix(k, "tagblock_"), v))
	}

	paramStr := strings.Join(parts, ",")
	return paramStr + "*" + bitcodec.Checksum(paramStr)
}

// SafeTimestamp best-effort extracts a tagblock timestamp from a line
// without triggering any errors, for use when reporting a line that failed
// to decode. Returns 0 if no timestamp can be found.
func SafeTimestamp(line string) float64 {
	if !strings.HasPrefix(line, "\\") {
		return 0
	}
	rest := line[1:]
	tb := strings.SplitN(rest, "\\", 2)[0]
	tb = strings.SplitN(tb, "*", 2)[0]
	for _, field := range strings.Split(tb, ",") {
		parts := strings.SplitN(field, ":", 2)
		if len(parts) != 2 || parts[0] != "c" {
			continue
		}
		t, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0
		}
		if t <= millisecondThreshold {
			return float64(t)
		}
		return float64(t) / 1000.0
	}
	return 0
}

// Create builds a fresh tagblock body (without surrounding backslashes) for
// station at timestamp (or now, if nil). When addTagblockT is set, a
// human-readable "T" field is included alongside the numeric "c" field.
func Create(station string, timestamp *time.Time, addTagblockT bool) string {
	t := time.Now()
	if timestamp != nil {
		t = *timestamp
	}
	parts := []string{
		fmt.Sprintf("c:%d", t.UnixMilli()),
		fmt.Sprintf("s:%s", station),
	}
	if addTagblockT {
		parts = append(parts, fmt.Sprintf("T:%s", t.UTC().Format(tFormat)))
	}
	paramStr := strings.Join(parts, ",")
	return paramStr + "*" + bitcodec.Checksum(paramStr)
}
