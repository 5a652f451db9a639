// Package aivdm ties the envelope, tagblock and per-type dispatch layers
// together into the single decode/encode entry point a caller actually
// wants: one NMEA line (single- or multi-part) in, one Message out, and
// back.
package aivdm

import (
	"fmt"
	"sort"

	"github.com/go-ais/aivdm/aistype"
	"github.com/go-ais/aivdm/bitcodec"
	"github.com/go-ais/aivdm/envelope"
)

// ErrGrouping indicates a multipart set whose fragment count did not match
// its declared groupsize.
var ErrGrouping = fmt.Errorf("aivdm: grouping error")

// Decoder decodes AIVDM/AIVDO NMEA lines into Messages, consulting an
// optional fallback for message types the C8 dispatch table does not
// claim.
type Decoder struct {
	Fallback aistype.FallbackDecoder
}

// NewDecoder returns a Decoder that consults fallback (which may be nil)
// for message ids the native dispatch table does not claim.
func NewDecoder(fallback aistype.FallbackDecoder) *Decoder {
	return &Decoder{Fallback: fallback}
}

type expandedFragment struct {
	fields map[string]interface{}
	body   string
	pad    int
}

// Decode splits nmea into its multipart fragments (if any), expands and
// merges their tagblocks and bodies, then decodes the combined payload.
// When safePayload is set, a payload decode failure is attached to the
// returned Message as "error" instead of propagating.
func (d *Decoder) Decode(nmeaLine string, safePayload bool, validateChecksum bool) (Message, error) {
	msg := Message{"nmea": nmeaLine}

	lines, err := envelope.SplitMultipart(nmeaLine)
	if err != nil {
		return nil, err
	}

	fragments := make([]expandedFragment, 0, len(lines))
	for _, line := range lines {
		fields, body, pad, err := envelope.Expand(line, validateChecksum)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, expandedFragment{fields: fields, body: body, pad: pad})
	}

	var fields map[string]interface{}
	var body string
	var pad int
	if len(fragments) == 1 {
		fields, body, pad = fragments[0].fields, fragments[0].body, fragments[0].pad
	} else {
		groupsize, _ := fragments[0].fields["tagblock_groupsize"].(int)
		if groupsize != 0 && len(fragments) != groupsize {
			return nil, fmt.Errorf("%w: Expected %d parts but found %d", ErrGrouping, groupsize, len(fragments))
		}

		sort.Slice(fragments, func(i, j int) bool {
			si, _ := fragments[i].fields["tagblock_sentence"].(int)
			sj, _ := fragments[j].fields["tagblock_sentence"].(int)
			return si < sj
		})

		merged := map[string]interface{}{}
		for i := len(fragments) - 1; i >= 0; i-- {
			for k, v := range fragments[i].fields {
				merged[k] = v
			}
		}
		fields = merged

		var sb []byte
		for _, f := range fragments {
			sb = append(sb, f.body...)
		}
		body = string(sb)
		pad = fragments[len(fragments)-1].pad
	}

	for k, v := range fields {
		msg[k] = v
	}

	var fallback aistype.FallbackDecoder
	if d != nil {
		fallback = d.Fallback
	}
	decoded, err := aistype.Decode(body, pad, fallback)
	if err != nil {
		if safePayload {
			msg["error"] = err.Error()
			return msg, nil
		}
		return nil, err
	}
	for k, v := range decoded {
		msg[k] = v
	}
	return msg, nil
}

// SafeDecode mirrors Decode but traps any error at the message level,
// returning a Message carrying "nmea" plus "error" instead of propagating.
func (d *Decoder) SafeDecode(nmeaLine string, safePayload bool, validateChecksum bool) Message {
	msg, err := d.Decode(nmeaLine, safePayload, validateChecksum)
	if err != nil {
		return Message{"nmea": nmeaLine, "error": err.Error()}
	}
	return msg
}

// Encode routes message to its type's encoder via C8, wraps the resulting
// (body, pad) as a single-part "AIVDM,1,1,,A,<body>,<pad>" sentence, and
// emits it with a freshly computed checksum. No tagblock is added.
func Encode(message map[string]interface{}) (string, error) {
	body, pad, err := aistype.Encode(message)
	if err != nil {
		return "", err
	}
	inner := fmt.Sprintf("AIVDM,1,1,,A,%s,%d", body, pad)
	return fmt.Sprintf("!%s*%s", inner, bitcodec.Checksum(inner)), nil
}

// SafeEncode mirrors Encode but traps any error, returning a Message
// carrying the original fields plus "error" instead of propagating.
func SafeEncode(message map[string]interface{}) Message {
	nmeaLine, err := Encode(message)
	if err != nil {
		out := Message{}
		for k, v := range message {
			out[k] = v
		}
		out["error"] = err.Error()
		return out
	}
	return Message{"nmea": nmeaLine}
}
