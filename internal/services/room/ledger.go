package room

import (
	"slices"

	"github.com/mcoot/mogg-backend/internal/model"
)

// Ledger holds one best score per player for a single room.
// It is not safe for concurrent use; the owning room's lock guards it.
type Ledger struct {
	entries []model.ScoreEntry
	index   map[string]int // player -> position in entries
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// Has reports whether the player has an entry
func (l *Ledger) Has(player string) bool {
	_, ok := l.index[player]
	return ok
}

// Score returns the player's stored score
func (l *Ledger) Score(player string) (int64, bool) {
	i, ok := l.index[player]
	if !ok {
		return 0, false
	}
	return l.entries[i].Score, true
}

// Submit applies the room score policy. Players are matched by exact string.
// A first submission is always accepted. A resubmission is accepted only when
// mayResubmit is set, and then keeps the higher of the two scores.
func (l *Ledger) Submit(player string, score int64, mayResubmit bool) model.SubmitOutcome {
	i, ok := l.index[player]
	if !ok {
		l.index[player] = len(l.entries)
		l.entries = append(l.entries, model.ScoreEntry{PlayerName: player, Score: score})
		return model.OutcomeAcceptedFirst
	}
	if !mayResubmit {
		return model.OutcomeRejectedAlreadyPlayed
	}
	if score > l.entries[i].Score {
		l.entries[i].Score = score
	}
	return model.OutcomeAcceptedUpdate
}

// Reset removes every entry
func (l *Ledger) Reset() {
	l.entries = nil
	l.index = make(map[string]int)
}

// Len returns the number of players with an entry
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries in insertion order
func (l *Ledger) Entries() []model.ScoreEntry {
	return slices.Clone(l.entries)
}

// Top returns up to n entries by descending score. Equal scores keep
// insertion order.
func (l *Ledger) Top(n int) []model.ScoreEntry {
	ranked := slices.Clone(l.entries)
	slices.SortStableFunc(ranked, func(a, b model.ScoreEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []model.ScoreEntry{}
	}
	return ranked
}
