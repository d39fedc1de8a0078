package contentfilter

// DefaultBlocklist is the built-in pattern set used when no external
// blocklist file is configured. Order matters: the first matching entry's
// reason is reported.
func DefaultBlocklist() []Entry {
	return []Entry{
		{Pattern: "kill yourself", Reason: "self_harm", Mode: MatchSubstring},
		{Pattern: "kys", Reason: "self_harm", Mode: MatchWord},
		{Pattern: "hate", Reason: "hate_speech", Mode: MatchSubstring},
		{Pattern: "nazi", Reason: "hate_speech", Mode: MatchSubstring},
		{Pattern: "buy followers", Reason: "spam", Mode: MatchSubstring},
		{Pattern: "free crypto", Reason: "spam", Mode: MatchSubstring},
		{Pattern: "scam", Reason: "spam", Mode: MatchWord},
	}
}

// Default returns a filter over the built-in blocklist.
func Default() *Filter {
	return New(DefaultBlocklist())
}
