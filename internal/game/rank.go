package game

import (
	"fmt"
	"sort"
	"strings"
)

// Metric selects what a leaderboard ranks by.
type Metric string

const (
	MetricCoins    Metric = "coins"
	MetricLevel    Metric = "level"
	MetricPrestige Metric = "prestige"
	MetricClicks   Metric = "clicks"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricCoins:
		return MetricCoins, nil
	case MetricLevel:
		return MetricLevel, nil
	case MetricPrestige:
		return MetricPrestige, nil
	case MetricClicks:
		return MetricClicks, nil
	default:
		return "", fmt.Errorf("unknown leaderboard metric %q", s)
	}
}

// Snapshot is the read-only account projection the ranker orders.
type Snapshot struct {
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	BalanceMicros     int64  `json:"balance_micros"`
	Level             int32  `json:"level"`
	Experience        int64  `json:"experience"`
	PrestigeLevel     int32  `json:"prestige_level"`
	PrestigePoints    int64  `json:"prestige_points"`
	TotalClicks       int64  `json:"total_clicks"`
	TotalEarnedMicros int64  `json:"total_earned_micros"`
}

// RankedRow is one leaderboard entry.
type RankedRow struct {
	Rank int64 `json:"rank"`
	Snapshot
}

// RankedAbove reports whether a ranks strictly ahead of b under the
// metric. Tie-breaks make this a strict total order:
//
//	coins    — balance desc, lifetime earned desc, user id asc
//	level    — level desc, experience desc, user id asc
//	prestige — prestige level desc, prestige points desc, user id asc
//	clicks   — total clicks desc, lifetime earned desc, user id asc
func RankedAbove(m Metric, a, b Snapshot) bool {
	switch m {
	case MetricLevel:
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.Experience != b.Experience {
			return a.Experience > b.Experience
		}
	case MetricPrestige:
		if a.PrestigeLevel != b.PrestigeLevel {
			return a.PrestigeLevel > b.PrestigeLevel
		}
		if a.PrestigePoints != b.PrestigePoints {
			return a.PrestigePoints > b.PrestigePoints
		}
	case MetricClicks:
		if a.TotalClicks != b.TotalClicks {
			return a.TotalClicks > b.TotalClicks
		}
		if a.TotalEarnedMicros != b.TotalEarnedMicros {
			return a.TotalEarnedMicros > b.TotalEarnedMicros
		}
	default: // MetricCoins
		if a.BalanceMicros != b.BalanceMicros {
			return a.BalanceMicros > b.BalanceMicros
		}
		if a.TotalEarnedMicros != b.TotalEarnedMicros {
			return a.TotalEarnedMicros > b.TotalEarnedMicros
		}
	}
	return a.UserID < b.UserID
}

// Rank orders the snapshots under the metric and returns the top rows
// plus the requester's 1-based rank, computed even when the requester
// falls outside the returned window. Rank is zero when the requester has
// no snapshot.
func Rank(m Metric, snaps []Snapshot, limit int, requesterID string) ([]RankedRow, int64) {
	ordered := make([]Snapshot, len(snaps))
	copy(ordered, snaps)
	sort.Slice(ordered, func(i, j int) bool {
		return RankedAbove(m, ordered[i], ordered[j])
	})

	if limit <= 0 {
		limit = 50
	}
	var requesterRank int64
	rows := make([]RankedRow, 0, min(limit, len(ordered)))
	for i, snap := range ordered {
		rank := int64(i) + 1
		if snap.UserID == requesterID {
			requesterRank = rank
		}
		if i < limit {
			rows = append(rows, RankedRow{Rank: rank, Snapshot: snap})
		} else if requesterRank != 0 {
			break
		}
	}
	return rows, requesterRank
}
