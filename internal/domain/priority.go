package domain

import "strings"

// SourceRank pairs a source type with its rank. Higher ranks win.
type SourceRank struct {
	SourceType string
	Rank       int
}

// DefaultSourcePriority is the built-in ranking of EPW source types.
var DefaultSourcePriority = []SourceRank{
	{SourceType: "TMY3", Rank: 10},
	{SourceType: "CWEC", Rank: 9},
	{SourceType: "CSWD", Rank: 8},
	{SourceType: "IWEC", Rank: 7},
	{SourceType: "SWERA", Rank: 6},
	{SourceType: "TMY2", Rank: 5},
	{SourceType: "TMY", Rank: 4},
	{SourceType: "CTZRV2", Rank: 3},
}

// PriorityTable maps source types to ranks. Rank is total: unlisted source
// types share a floor rank strictly below every listed one.
type PriorityTable struct {
	ranks map[string]int
	floor int
}

// NewPriorityTable builds a table from ranked entries. Source types compare
// case-insensitively; a repeated source type keeps its last rank.
func NewPriorityTable(entries []SourceRank) PriorityTable {
	t := PriorityTable{ranks: make(map[string]int, len(entries))}
	for _, e := range entries {
		t.ranks[strings.ToUpper(strings.TrimSpace(e.SourceType))] = e.Rank
	}
	for _, r := range t.ranks {
		if r-1 < t.floor {
			t.floor = r - 1
		}
	}
	return t
}

// Rank returns the rank of sourceType, or the floor when it is not listed.
func (t PriorityTable) Rank(sourceType string) int {
	if r, ok := t.ranks[strings.ToUpper(strings.TrimSpace(sourceType))]; ok {
		return r
	}
	return t.floor
}

// Floor is the rank given to unlisted source types.
func (t PriorityTable) Floor() int { return t.floor }
