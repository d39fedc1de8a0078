package contentfilter

import (
	"encoding/json"
	"fmt"
	"strings"
)

type MatchMode string

const (
	// MatchSubstring fires when the pattern appears anywhere in any variant.
	MatchSubstring MatchMode = "substring"
	// MatchWord fires only on whole-token matches of the letters-and-spaces
	// variants, or when the letters-only variant equals the pattern exactly.
	MatchWord MatchMode = "word"
)

// Entry is one blocklist pattern. Patterns are stored pre-normalized
// (lowercase, letters and spaces).
type Entry struct {
	Pattern string    `json:"pattern"`
	Reason  string    `json:"reason"`
	Mode    MatchMode `json:"mode"`
}

// Result is the outcome of a filter check. A miss is the zero value.
type Result struct {
	Hit     bool   `json:"hit"`
	Reason  string `json:"reason,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// Filter checks text against an ordered blocklist. It holds no mutable
// state and is safe for concurrent use.
type Filter struct {
	entries []Entry
}

func New(entries []Entry) *Filter {
	normalized := make([]Entry, len(entries))
	for i, e := range entries {
		e.Pattern = strings.ToLower(strings.TrimSpace(e.Pattern))
		if e.Mode == "" {
			e.Mode = MatchSubstring
		}
		normalized[i] = e
	}
	return &Filter{entries: normalized}
}

// FromJSON builds a filter from a blocklist data file.
func FromJSON(data []byte) (*Filter, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse blocklist: %w", err)
	}
	for i, e := range entries {
		if e.Pattern == "" {
			return nil, fmt.Errorf("blocklist entry %d has no pattern", i)
		}
		if e.Mode != "" && e.Mode != MatchSubstring && e.Mode != MatchWord {
			return nil, fmt.Errorf("blocklist entry %d has unknown mode %q", i, e.Mode)
		}
	}
	return New(entries), nil
}

// Check tests every normalized variant of text against every entry, in
// blocklist order, and returns the first matching entry's reason. Entries
// win over variants: an earlier entry matching any variant beats a later
// entry matching an earlier variant.
func (f *Filter) Check(text string) Result {
	if text == "" {
		return Result{}
	}
	variants := Variants(text)
	for _, entry := range f.entries {
		for _, variant := range variants {
			if matches(entry, variant) {
				return Result{Hit: true, Reason: entry.Reason, Pattern: entry.Pattern}
			}
		}
	}
	return Result{}
}

func matches(entry Entry, variant string) bool {
	switch entry.Mode {
	case MatchWord:
		if variant == entry.Pattern {
			return true
		}
		// Whole-token match: pad both sides so boundaries line up.
		return strings.Contains(" "+variant+" ", " "+entry.Pattern+" ")
	default:
		return strings.Contains(variant, entry.Pattern)
	}
}

// Entries returns a copy of the blocklist for inspection endpoints.
func (f *Filter) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}
