// Package reconcile matches Secret Lair drop rows against the Scryfall card
// catalog. It parses the free-form collector number text found on the wiki,
// indexes the catalog by set and attaches the matching cards to each drop.
//
// Everything here is a pure in-memory transform. Diagnostics go to an
// injected slog.Logger and never to process-wide state.
package reconcile

import (
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultSetCode is used for bare numbers when nothing else names a set.
const DefaultSetCode = "SLD"


// CardRange is the normalized set of collector numbers for one drop.
// Numbers is ascending, de-duplicated and never empty.
type CardRange struct {
	SetCode string `json:"set"`
	Numbers []int  `json:"numbers"`
}

// Contains reports whether n is one of the range's collector numbers.
func (r *CardRange) Contains(n int) bool {
	i := sort.SearchInts(r.Numbers, n)
	return i < len(r.Numbers) && r.Numbers[i] == n
}

// String renders the range in the canonical form accepted by Parse:
// consecutive runs become "SET-A - SET-B", isolated numbers "SET-N".
func (r *CardRange) String() string {
	var parts []string
	for i := 0; i < len(r.Numbers); {
		j := i
		for j+1 < len(r.Numbers) && r.Numbers[j+1] == r.Numbers[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, r.SetCode+"-"+strconv.Itoa(r.Numbers[i]))
		} else {
			parts = append(parts, r.SetCode+"-"+strconv.Itoa(r.Numbers[i])+" - "+r.SetCode+"-"+strconv.Itoa(r.Numbers[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}

type partKind int

const (
	partUnrecognized partKind = iota
	partSetRange              // SLD-123 - SLD-129
	partBareRange             // 012 - 016
	partSetSingle             // SLD-123
	partBareSingle            // 123
)

func (k partKind) String() string {
	switch k {
	case partSetRange:
		return "set_range"
	case partBareRange:
		return "bare_range"
	case partSetSingle:
		return "set_single"
	case partBareSingle:
		return "bare_single"
	default:
		return "unrecognized"
	}
}

// rangePart is the classified form of one comma-separated piece of text.
// Bare kinds leave the set fields empty; single kinds have start == end.
type rangePart struct {
	kind     partKind
	startSet string
	endSet   string
	start    int
	end      int
}

var (
	setRangePattern   = regexp.MustCompile(`([A-Z0-9]+)-(\d+)\s*-\s*([A-Z0-9]+)-(\d+)`)
	bareRangePattern  = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	setSinglePattern  = regexp.MustCompile(`([A-Z0-9]+)-(\d+)`)
	bareSinglePattern = regexp.MustCompile(`^(\d+)$`)
)

// partMatchers are tried in order; the first that accepts a part wins.
var partMatchers = []func(string) (rangePart, bool){
	matchSetRange,
	matchBareRange,
	matchSetSingle,
	matchBareSingle,
}

func matchSetRange(s string) (rangePart, bool) {
	m := setRangePattern.FindStringSubmatch(s)
	if m == nil {
		return rangePart{}, false
	}
	start, ok1 := atoi(m[2])
	end, ok2 := atoi(m[4])
	if !ok1 || !ok2 {
		return rangePart{}, false
	}
	return rangePart{kind: partSetRange, startSet: m[1], endSet: m[3], start: start, end: end}, true
}

func matchBareRange(s string) (rangePart, bool) {
	m := bareRangePattern.FindStringSubmatch(s)
	if m == nil {
		return rangePart{}, false
	}
	start, ok1 := atoi(m[1])
	end, ok2 := atoi(m[2])
	if !ok1 || !ok2 {
		return rangePart{}, false
	}
	return rangePart{kind: partBareRange, start: start, end: end}, true
}

func matchSetSingle(s string) (rangePart, bool) {
	m := setSinglePattern.FindStringSubmatch(s)
	if m == nil {
		return rangePart{}, false
	}
	n, ok := atoi(m[2])
	if !ok {
		return rangePart{}, false
	}
	return rangePart{kind: partSetSingle, startSet: m[1], endSet: m[1], start: n, end: n}, true
}

func matchBareSingle(s string) (rangePart, bool) {
	m := bareSinglePattern.FindStringSubmatch(s)
	if m == nil {
		return rangePart{}, false
	}
	n, ok := atoi(m[1])
	if !ok {
		return rangePart{}, false
	}
	return rangePart{kind: partBareSingle, start: n, end: n}, true
}

// atoi fails on digit runs too long for an int.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func classifyPart(s string) rangePart {
	for _, match := range partMatchers {
		if p, ok := match(s); ok {
			return p
		}
	}
	return rangePart{kind: partUnrecognized}
}

// partOutcome is what a classified part did to the parse in progress.
type partOutcome int

const (
	partAccepted partOutcome = iota
	partSkipped              // recognized but rejected: set code mismatch or over the span cap
	partIgnored              // not a collector number notation
)

// RangeParser turns wiki card number text such as "SLD-123 - SLD-129, SLD-140"
// into a CardRange. It is permissive: a bad comma-part is skipped and the
// rest of the string still counts.
type RangeParser struct {
	defaultSetCode string
	maxRangeSpan   int // 0 means unlimited
	logger         *slog.Logger
}

type ParserOption func(*RangeParser)

// WithParserLogger sets the destination for parse diagnostics.
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *RangeParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxRangeSpan caps how many numbers a single range part may expand to.
// Parts above the cap are skipped. Zero or less removes the cap, which is
// also the default.
func WithMaxRangeSpan(span int) ParserOption {
	return func(p *RangeParser) {
		p.maxRangeSpan = max(span, 0)
	}
}

// NewRangeParser creates a parser that assigns defaultSetCode to bare numbers
// when no part of the text names a set first.
func NewRangeParser(defaultSetCode string, opts ...ParserOption) *RangeParser {
	if defaultSetCode == "" {
		defaultSetCode = DefaultSetCode
	}
	p := &RangeParser{
		defaultSetCode: strings.ToUpper(defaultSetCode),
		logger:         discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultSetCode returns the set code assigned to bare numbers.
func (p *RangeParser) DefaultSetCode() string {
	return p.defaultSetCode
}

// Parse returns the range described by text, or false when no collector
// number could be extracted. The first part that fixes a set code fixes it
// for the whole call.
func (p *RangeParser) Parse(text string) (CardRange, bool) {
	st := parseState{parser: p}
	for _, raw := range strings.Split(strings.TrimSpace(text), ",") {
		part := strings.TrimSpace(raw)
		rp := classifyPart(part)
		outcome := st.apply(part, rp)
		if outcome == partIgnored && part != "" {
			p.logger.Debug("ignoring unrecognized card number part", "part", part)
		}
	}

	if len(st.numbers) == 0 || st.setCode == "" {
		p.logger.Warn("could not parse card number format", "text", text)
		return CardRange{}, false
	}

	numbers := sortedUnique(st.numbers)
	p.logger.Debug("identified card range", "set_code", st.setCode, "count", len(numbers))
	return CardRange{SetCode: st.setCode, Numbers: numbers}, true
}

type parseState struct {
	parser  *RangeParser
	setCode string
	numbers []int
}

func (st *parseState) apply(part string, rp rangePart) partOutcome {
	p := st.parser
	switch rp.kind {
	case partSetRange, partSetSingle:
		if rp.startSet != rp.endSet || (st.setCode != "" && st.setCode != rp.startSet) {
			p.logger.Warn("set code mismatch, skipping part",
				"part", part, "established", st.setCode, "start_set", rp.startSet, "end_set", rp.endSet)
			return partSkipped
		}
		if st.setCode == "" {
			st.setCode = rp.startSet
		}
	case partBareRange, partBareSingle:
		if st.setCode == "" {
			st.setCode = p.defaultSetCode
			p.logger.Debug("using default set code", "set_code", st.setCode, "part", part)
		}
	default:
		return partIgnored
	}

	if !st.expand(part, rp) {
		return partSkipped
	}
	return partAccepted
}

// expand appends start..end inclusive. A reversed range appends nothing but
// still counts as accepted; a range over the span cap reports false.
func (st *parseState) expand(part string, rp rangePart) bool {
	p := st.parser
	if rp.end < rp.start {
		p.logger.Warn("range end before start, part adds no numbers", "part", part, "start", rp.start, "end", rp.end)
		return true
	}
	if p.maxRangeSpan > 0 && rp.end-rp.start >= p.maxRangeSpan {
		p.logger.Warn("range too wide, skipping part", "part", part, "span", rp.end-rp.start+1, "max", p.maxRangeSpan)
		return false
	}
	for n := rp.start; ; n++ {
		st.numbers = append(st.numbers, n)
		if n == rp.end {
			break
		}
	}
	return true
}

func sortedUnique(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	w := 0
	for i, n := range out {
		if i > 0 && n == out[w-1] {
			continue
		}
		out[w] = n
		w++
	}
	return out[:w]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
