// Package reassembler implements the online multipart reassembler: it
// consumes AIVDM/AIVDO lines one at a time and emits lines where multi-part
// transmissions have been concatenated back into a single sentence text,
// using a bounded time/count window to evict stale fragments.
package reassembler

import (
	"fmt"
	"sort"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/go-ais/aivdm/envelope"
)

const (
	// DefaultWindowTime is the default fragment staleness window.
	DefaultWindowTime = 500 * time.Millisecond
	// DefaultWindowCount is the default fragment staleness window, in lines.
	DefaultWindowCount = 1000
)

type fragment struct {
	line     string
	sentence int
}

type groupEntry struct {
	fragments         []fragment
	firstArrivalIndex int
	firstArrivalTime  time.Time
}

func (e *groupEntry) arrivalOrderLines() []string {
	lines := make([]string, len(e.fragments))
	for i, f := range e.fragments {
		lines[i] = f.line
	}
	return lines
}

func (e *groupEntry) hasSentence(p int) bool {
	for _, f := range e.fragments {
		if f.sentence == p {
			return true
		}
	}
	return false
}

func (e *groupEntry) isComplete(groupsize int) bool {
	if len(e.fragments) != groupsize {
		return false
	}
	seen := make(map[int]bool, groupsize)
	for _, f := range e.fragments {
		seen[f.sentence] = true
	}
	for i := 1; i <= groupsize; i++ {
		if !seen[i] {
			return false
		}
	}
	return true
}

func (e *groupEntry) partOrderedLines() []string {
	frags := make([]fragment, len(e.fragments))
	copy(frags, e.fragments)
	sort.Slice(frags, func(i, j int) bool { return frags[i].sentence < frags[j].sentence })
	lines := make([]string, len(frags))
	for i, f := range frags {
		lines[i] = f.line
	}
	return lines
}

type groupKey struct {
	groupsize  int
	useGroupID bool
	groupID    int
	station    string
	id         int
	channel    string
	talkerID   string
}

func (k groupKey) String() string {
	if k.useGroupID {
		return fmt.Sprintf("g|%d|%d", k.groupsize, k.groupID)
	}
	return fmt.Sprintf("k|%d|%s|%d|%s|%s", k.groupsize, k.station, k.id, k.channel, k.talkerID)
}

// Reassembler buffers in-flight multipart fragments keyed per the group
// identity rules, and emits completed or evicted lines. It is not safe for
// concurrent use: a stream gets its own instance.
type Reassembler struct {
	// IgnoreDecodeErrors, when set, passes a line through unchanged instead
	// of propagating a C6 framing error.
	IgnoreDecodeErrors bool
	// ValidateChecksum enables sentence checksum validation during C6
	// expansion.
	ValidateChecksum bool
	// Clock returns the current time; overridable for deterministic tests.
	Clock func() time.Time

	cache      *cache.Cache
	windowTime time.Duration
	windowCnt  int
	index      int
}

// New constructs a Reassembler with the given staleness windows.
func New(windowTime time.Duration, windowCount int) *Reassembler {
	return &Reassembler{
		Clock:      time.Now,
		cache:      cache.New(cache.NoExpiration, 0),
		windowTime: windowTime,
		windowCnt:  windowCount,
	}
}

// Process feeds one raw line through the reassembler, returning zero or
// more output lines: the line itself (single-part or pass-through), a
// completed concatenation, displaced fragments from a duplicate part
// number, and/or fragments evicted by this call's window check.
func (r *Reassembler) Process(line string) ([]string, error) {
	r.index++

	fields, _, _, err := envelope.Expand(line, r.ValidateChecksum)
	if err != nil {
		if r.IgnoreDecodeErrors {
			return append([]string{line}, r.evictionPass()...), nil
		}
		return nil, err
	}

	groupsize, _ := fields["tagblock_groupsize"].(int)
	if groupsize <= 1 {
		return append([]string{line}, r.evictionPass()...), nil
	}

	key := r.keyFor(fields, groupsize)
	cacheKey := key.String()
	sentence, _ := fields["tagblock_sentence"].(int)

	now := r.Clock()

	var entry *groupEntry
	if raw, found := r.cache.Get(cacheKey); found {
		entry = raw.(*groupEntry)
	}

	var out []string
	if entry != nil && entry.hasSentence(sentence) {
		out = append(out, entry.arrivalOrderLines()...)
		entry = &groupEntry{firstArrivalIndex: r.index, firstArrivalTime: now}
	} else if entry == nil {
		entry = &groupEntry{firstArrivalIndex: r.index, firstArrivalTime: now}
	}

	entry.fragments = append(entry.fragments, fragment{line: line, sentence: sentence})

	if entry.isComplete(groupsize) {
		joined, joinErr := envelope.JoinMultipart(entry.partOrderedLines())
		if joinErr != nil {
			// fragments started with mismatched delimiters; fall back to
			// passing them through rather than losing them.
			out = append(out, entry.arrivalOrderLines()...)
		} else {
			out = append(out, joined)
		}
		r.cache.Delete(cacheKey)
	} else {
		r.cache.Set(cacheKey, entry, cache.NoExpiration)
	}

	out = append(out, r.evictionPass()...)
	return out, nil
}

// Flush emits every remaining buffered fragment, in arrival order, and
// clears the reassembler's state. Call this at input end.
func (r *Reassembler) Flush() []string {
	type indexed struct {
		index int
		lines []string
	}
	var all []indexed
	for k, item := range r.cache.Items() {
		e := item.Object.(*groupEntry)
		all = append(all, indexed{index: e.firstArrivalIndex, lines: e.arrivalOrderLines()})
		r.cache.Delete(k)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].index < all[j].index })

	var out []string
	for _, a := range all {
		out = append(out, a.lines...)
	}
	return out
}

func (r *Reassembler) keyFor(fields map[string]interface{}, groupsize int) groupKey {
	if groupID, ok := fields["tagblock_group_id"].(int); ok {
		return groupKey{groupsize: groupsize, useGroupID: true, groupID: groupID}
	}
	station, _ := fields["tagblock_station"].(string)
	id, _ := fields["tagblock_id"].(int)
	channel, _ := fields["tagblock_channel"].(string)
	talkerID, _ := fields["tagblock_talker_id"].(string)
	return groupKey{groupsize: groupsize, station: station, id: id, channel: channel, talkerID: talkerID}
}

// evictionPass checks every buffered key against the time and count
// windows and emits+removes any that have aged out, oldest first.
func (r *Reassembler) evictionPass() []string {
	tCut := r.Clock().Add(-r.windowTime)
	iCut := r.index - r.windowCnt

	type indexed struct {
		index int
		lines []string
	}
	var evicted []indexed
	for k, item := range r.cache.Items() {
		e := item.Object.(*groupEntry)
		if e.firstArrivalTime.Before(tCut) || e.firstArrivalIndex <= iCut {
			evicted = append(evicted, indexed{index: e.firstArrivalIndex, lines: e.arrivalOrderLines()})
			r.cache.Delete(k)
		}
	}
	sort.Slice(evicted, func(i, j int) bool { return evicted[i].index < evicted[j].index })

	var out []string
	for _, e := range evicted {
		out = append(out, e.lines...)
	}
	return out
}

// SafeProcess wraps Process, forcing IgnoreDecodeErrors semantics for this
// one call regardless of the receiver's configured value, mirroring
// safe_join's relationship to join.
func (r *Reassembler) SafeProcess(line string) []string {
	saved := r.IgnoreDecodeErrors
	r.IgnoreDecodeErrors = true
	defer func() { r.IgnoreDecodeErrors = saved }()
	out, _ := r.Process(line)
	return out
}
