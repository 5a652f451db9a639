package aivdm

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Message is an AIS message represented as its canonical map form, with a
// handful of derived operations layered on top. Every decode/encode/dispatch
// function elsewhere in this module works with a plain map[string]interface{}
// so it composes freely with a Message value without conversion.
type Message map[string]interface{}

// defaultUUIDFields are the fields folded into add_uuid's namespace name
// when the caller does not supply its own set.
var defaultUUIDFields = []string{"source", "nmea", "tagblock_timestamp"}

const uuidNamePrefix = "ais-tools"

// NewMessage builds a Message from nothing, a map, or a string (a JSON
// object or a raw NMEA line). The "nmea" key always exists, defaulting to
// the empty string. Malformed JSON input yields a message carrying the
// original text under "nmea" plus a descriptive "error" field rather than
// failing the call.
func NewMessage(v interface{}) Message {
	var m Message
	switch x := v.(type) {
	case nil:
		m = Message{"nmea": ""}
	case Message:
		m = x
	case map[string]interface{}:
		m = Message(x)
	case string:
		m = messageFromString(x)
	default:
		m = Message{"nmea": fmt.Sprintf("%v", x)}
	}
	if m == nil {
		m = Message{}
	}
	if _, ok := m["nmea"]; !ok {
		m["nmea"] = ""
	}
	return m
}

func messageFromString(s string) Message {
	if strings.HasPrefix(s, "{") {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return Message{"nmea": s, "error": fmt.Sprintf("JSONDecodeError: %v", err)}
		}
		return Message(decoded)
	}
	return Message{"nmea": s}
}

// AddSource sets the "source" field to s, unless a non-nil source is
// already present and overwrite is false.
func (m Message) AddSource(s string, overwrite bool) Message {
	if m["source"] == nil || overwrite {
		m["source"] = s
	}
	return m
}

// AddUUID sets the "uuid" field to a deterministic UUID v5 computed from
// the given fields' string values (default: source, nmea,
// tagblock_timestamp), unless a non-nil uuid is already present and
// overwrite is false. The name fed to the UUID namespace is
// "ais-tools/<percent-encoded field value>/..." lowercased, so the same
// input fields always produce the same identifier.
func (m Message) AddUUID(overwrite bool, fields ...string) Message {
	if m["uuid"] != nil && !overwrite {
		return m
	}
	if len(fields) == 0 {
		fields = defaultUUIDFields
	}
	m["uuid"] = uuid.NewSHA1(uuid.NameSpaceURL, []byte(m.uuidName(fields))).String()
	return m
}

func (m Message) uuidName(fields []string) string {
	segments := make([]string, 0, len(fields)+1)
	segments = append(segments, uuidNamePrefix)
	for _, f := range fields {
		segments = append(segments, url.PathEscape(fmt.Sprintf("%v", m[f])))
	}
	return strings.ToLower(strings.Join(segments, "/"))
}

// parserVersion identifies this implementation in "add_parser_version"
// output, the way a downstream pipeline might pin which decoder produced a
// given message.
const parserVersion = "go-ais-tools-1"

// AddParserVersion annotates the message with an implementation-identifying
// string, always overwriting any previous value.
func (m Message) AddParserVersion() Message {
	m["parser_version"] = parserVersion
	return m
}
