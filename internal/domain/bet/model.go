package bet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	Market1X2     = "1x2"
	MarketTotals  = "totals"
	MarketPenalty = "penalty"
	MarketRedcard = "redcard"
)

const (
	StatusOpen = "open"
	StatusWon  = "won"
	StatusLost = "lost"
)

var ErrBadSelection = errors.New("bad selection encoding")

// Bet is one user wager against a match, addressed by the legacy
// team-name pair. Once Status leaves open, Payout is immutable.
type Bet struct {
	ID        string
	UserID    string
	HomeTeam  string
	AwayTeam  string
	Market    string
	Selection string
	Stake     int64
	Odds      float64
	Status    string
	Payout    int64
	PlacedAt  time.Time
	// KickoffAt is resolved from the match row by repositories so the
	// settlement sweep can gate on it without a second lookup.
	KickoffAt time.Time
}

// TotalsSelection is a decoded totals market pick.
type TotalsSelection struct {
	Over bool
	Line float64
}

// compactLines maps the digit part of compact totals selections
// ("O25", "U35") to their decimal lines.
var compactLines = map[string]float64{
	"05": 0.5, "15": 1.5, "25": 2.5, "35": 3.5,
	"45": 4.5, "55": 5.5, "65": 6.5, "75": 7.5,
	"1": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7,
}

// ParseTotalsSelection decodes both the verbose "over_2.5" form and the
// compact "O25"/"U35" form.
func ParseTotalsSelection(raw string) (TotalsSelection, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return TotalsSelection{}, fmt.Errorf("%w: empty totals selection", ErrBadSelection)
	}

	lower := strings.ToLower(value)
	if side, linePart, found := strings.Cut(lower, "_"); found {
		line, err := strconv.ParseFloat(linePart, 64)
		if err != nil {
			return TotalsSelection{}, fmt.Errorf("%w: totals line %q", ErrBadSelection, linePart)
		}
		switch side {
		case "over":
			return TotalsSelection{Over: true, Line: line}, nil
		case "under":
			return TotalsSelection{Over: false, Line: line}, nil
		default:
			return TotalsSelection{}, fmt.Errorf("%w: totals side %q", ErrBadSelection, side)
		}
	}

	side := lower[:1]
	if side != "o" && side != "u" {
		return TotalsSelection{}, fmt.Errorf("%w: totals selection %q", ErrBadSelection, raw)
	}
	line, ok := compactLines[lower[1:]]
	if !ok {
		return TotalsSelection{}, fmt.Errorf("%w: compact totals line %q", ErrBadSelection, raw)
	}
	return TotalsSelection{Over: side == "o", Line: line}, nil
}

// Parse1X2Selection validates a 1/X/2 pick and returns it normalized.
func Parse1X2Selection(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "1", "x", "2":
		return value, nil
	default:
		return "", fmt.Errorf("%w: 1x2 selection %q", ErrBadSelection, raw)
	}
}

// ParseYesNoSelection validates a special-market pick.
func ParseYesNoSelection(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "1":
		return true, nil
	case "no", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: yes/no selection %q", ErrBadSelection, raw)
	}
}

// WinPayout is the credited amount for a winning bet.
func WinPayout(stake int64, odds float64) int64 {
	return int64(math.Floor(float64(stake) * odds))
}
