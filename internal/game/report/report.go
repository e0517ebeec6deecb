package report

import (
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// Report groups the entries produced during one main phase of one turn.
type Report struct {
	Turn      int             `json:"turn"`
	MainPhase rules.MainPhase `json:"main_phase"`
	Entries   []Entry         `json:"entries"`
}

// New starts an empty report.
func New(turn int, main rules.MainPhase) *Report {
	return &Report{Turn: turn, MainPhase: main}
}

// Add appends entries to the report.
func (r *Report) Add(entries ...Entry) {
	r.Entries = append(r.Entries, entries...)
}

// Count returns the number of entries of the given type.
func (r *Report) Count(eventType EventType) int {
	n := 0
	for _, e := range r.Entries {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// Log is the ordered list of reports of a game.
type Log struct {
	Reports []*Report `json:"reports"`
}

// Current returns the report being written, or nil before the first one.
func (l *Log) Current() *Report {
	if len(l.Reports) == 0 {
		return nil
	}
	return l.Reports[len(l.Reports)-1]
}

// Begin opens a new report for the given turn and main phase.
func (l *Log) Begin(turn int, main rules.MainPhase) *Report {
	r := New(turn, main)
	l.Reports = append(l.Reports, r)
	return r
}

// Add appends entries to the current report, opening a setup report if none exists.
func (l *Log) Add(entries ...Entry) {
	cur := l.Current()
	if cur == nil {
		cur = l.Begin(0, rules.MainPhaseSetup)
	}
	cur.Add(entries...)
}

// All flattens every entry across reports.
func (l *Log) All() []Entry {
	var out []Entry
	for _, r := range l.Reports {
		out = append(out, r.Entries...)
	}
	return out
}
