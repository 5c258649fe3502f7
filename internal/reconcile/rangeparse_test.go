package reconcile

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seq(from, to int) []int {
	var out []int
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *CardRange
	}{
		{"set range", "SLD-123 - SLD-129", &CardRange{SetCode: "SLD", Numbers: seq(123, 129)}},
		{"set range without spaces", "SLD-1-SLD-3", &CardRange{SetCode: "SLD", Numbers: []int{1, 2, 3}}},
		{"bare range gets default set", "012 - 016", &CardRange{SetCode: "SLD", Numbers: seq(12, 16)}},
		{"single card", "SLD-123", &CardRange{SetCode: "SLD", Numbers: []int{123}}},
		{"bare number", "123", &CardRange{SetCode: "SLD", Numbers: []int{123}}},
		{"list is sorted", "SLD-125, SLD-123", &CardRange{SetCode: "SLD", Numbers: []int{123, 125}}},
		{"duplicates removed", "SLD-5, SLD-3 - SLD-6, 5", &CardRange{SetCode: "SLD", Numbers: []int{3, 4, 5, 6}}},
		{"mixed format", "SLD-123 - SLD-125, SLD-135, SLD-140", &CardRange{SetCode: "SLD", Numbers: []int{123, 124, 125, 135, 140}}},
		{"other set code", "PLST-7, PLST-9", &CardRange{SetCode: "PLST", Numbers: []int{7, 9}}},
		{"surrounding prose is tolerated", "Cards SLD-10 - SLD-12 (foil)", &CardRange{SetCode: "SLD", Numbers: []int{10, 11, 12}}},
		{"leading and trailing whitespace", "  SLD-1 ,  SLD-2  ", &CardRange{SetCode: "SLD", Numbers: []int{1, 2}}},
		{"mismatched single skipped", "SLD-1, PLST-2, SLD-3", &CardRange{SetCode: "SLD", Numbers: []int{1, 3}}},
		{"mismatched range skipped", "SLD-1, PLST-2 - PLST-4", &CardRange{SetCode: "SLD", Numbers: []int{1}}},
		{"range sides must agree", "SLD-1 - PLST-3, SLD-9", &CardRange{SetCode: "SLD", Numbers: []int{9}}},
		{"set from first part wins over default", "PLST-4, 7", &CardRange{SetCode: "PLST", Numbers: []int{4, 7}}},
		{"default set rejects later prefix", "7, PLST-4", &CardRange{SetCode: "SLD", Numbers: []int{7}}},
		{"garbage parts ignored", "SLD-1, TBD, SLD-2", &CardRange{SetCode: "SLD", Numbers: []int{1, 2}}},
		{"reversed range contributes nothing", "SLD-9 - SLD-5, SLD-1", &CardRange{SetCode: "SLD", Numbers: []int{1}}},
		{"reversed range still fixes the set", "SLD-9 - SLD-3, PLST-5", nil},
		{"reversed bare range fixes the default set", "9 - 3, PLST-5", nil},
		{"reversed range only", "SLD-9 - SLD-3", nil},
		{"invalid format", "Invalid Format", nil},
		{"empty", "", nil},
		{"only commas", " , ,", nil},
		{"lowercase set code is not a set", "sld-12", nil},
		{"only mismatched range", "SLD-1 - PLST-3", nil},
		{"overflowing number", "99999999999999999999999", nil},
	}

	parser := NewRangeParser(DefaultSetCode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.Parse(tt.input)
			if tt.want == nil {
				if ok {
					t.Fatalf("Parse(%q) = %+v, want no range", tt.input, got)
				}
				return
			}
			if !ok {
				t.Fatalf("Parse(%q) returned no range, want %+v", tt.input, *tt.want)
			}
			if diff := cmp.Diff(*tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseSetRangeProperty(t *testing.T) {
	parser := NewRangeParser(DefaultSetCode)
	for a := 0; a < 40; a += 7 {
		for b := a; b < a+30; b += 5 {
			input := "ABC-" + strconv.Itoa(a) + " - ABC-" + strconv.Itoa(b)
			got, ok := parser.Parse(input)
			if !ok {
				t.Fatalf("Parse(%q) returned no range", input)
			}
			want := CardRange{SetCode: "ABC", Numbers: seq(a, b)}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", input, diff)
			}
		}
	}
}

func TestParseCustomDefaultSet(t *testing.T) {
	parser := NewRangeParser("plst")
	got, ok := parser.Parse("1 - 3")
	if !ok {
		t.Fatal("expected a range")
	}
	if got.SetCode != "PLST" {
		t.Errorf("expected default set PLST, got %s", got.SetCode)
	}
	if parser.DefaultSetCode() != "PLST" {
		t.Errorf("DefaultSetCode() = %s, want PLST", parser.DefaultSetCode())
	}

	if NewRangeParser("").DefaultSetCode() != DefaultSetCode {
		t.Error("empty default set should fall back to SLD")
	}
}

func TestParseWideRangeUncapped(t *testing.T) {
	got, ok := NewRangeParser(DefaultSetCode).Parse("SLD-0 - SLD-10000")
	if !ok {
		t.Fatal("expected a range")
	}
	if len(got.Numbers) != 10001 || got.Numbers[0] != 0 || got.Numbers[10000] != 10000 {
		t.Errorf("expected 0..10000, got %d numbers", len(got.Numbers))
	}

	// zero means no cap
	got, ok = NewRangeParser(DefaultSetCode, WithMaxRangeSpan(0)).Parse("1 - 20000")
	if !ok || len(got.Numbers) != 20000 {
		t.Errorf("expected 20000 numbers, got %d ok=%v", len(got.Numbers), ok)
	}
}

func TestParseMaxRangeSpan(t *testing.T) {
	parser := NewRangeParser(DefaultSetCode, WithMaxRangeSpan(10))

	got, ok := parser.Parse("1 - 10")
	if !ok || len(got.Numbers) != 10 {
		t.Fatalf("range of exactly 10 should parse, got %+v ok=%v", got, ok)
	}

	got, ok = parser.Parse("1 - 11, 50")
	if !ok {
		t.Fatal("expected the bare number to survive")
	}
	if diff := cmp.Diff([]int{50}, got.Numbers); diff != "" {
		t.Errorf("oversized range should be skipped (-want +got):\n%s", diff)
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"SLD-123 - SLD-129",
		"SLD-125, SLD-123",
		"012 - 016",
		"SLD-1 - SLD-3, SLD-7, SLD-9 - SLD-10",
		"PLST-42",
	}

	parser := NewRangeParser(DefaultSetCode)
	for _, input := range inputs {
		first, ok := parser.Parse(input)
		if !ok {
			t.Fatalf("Parse(%q) returned no range", input)
		}
		canonical := first.String()
		second, ok := parser.Parse(canonical)
		if !ok {
			t.Fatalf("Parse(%q) of canonical form returned no range", canonical)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("round trip of %q via %q changed the range (-first +second):\n%s", input, canonical, diff)
		}
	}
}

func TestCardRangeString(t *testing.T) {
	r := CardRange{SetCode: "SLD", Numbers: []int{1, 2, 3, 7, 9, 10}}
	want := "SLD-1 - SLD-3, SLD-7, SLD-9 - SLD-10"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCardRangeContains(t *testing.T) {
	r := CardRange{SetCode: "SLD", Numbers: []int{3, 5, 8}}
	for _, n := range []int{3, 5, 8} {
		if !r.Contains(n) {
			t.Errorf("expected range to contain %d", n)
		}
	}
	for _, n := range []int{0, 4, 9} {
		if r.Contains(n) {
			t.Errorf("expected range not to contain %d", n)
		}
	}
}

func TestParseLogsMismatchWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	parser := NewRangeParser(DefaultSetCode, WithParserLogger(logger))

	if _, ok := parser.Parse("SLD-1, PLST-2"); !ok {
		t.Fatal("expected a range")
	}
	if !strings.Contains(buf.String(), "set code mismatch") {
		t.Errorf("expected a mismatch warning, got %q", buf.String())
	}
}
