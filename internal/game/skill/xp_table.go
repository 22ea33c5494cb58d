// Package skill implements XP accounting, level derivation and the shared
// skill-action pipeline.
package skill

import "math"

// MaxXP is the hard cap on stored experience in any one skill.
const MaxXP int64 = 200_000_000

const (
	MaxLevel      = 120
	NormalCap     = 99
	EliteCap      = 120
	HitpointsInit = 1154 // level 10
)

// XPTable[L-1] is the minimum XP for level L. The first 99 entries follow
// the classical curve (0 at level 1, 13,034,431 at level 99); entries
// 100-120 extend the same recurrence for elite skills.
var XPTable = buildXPTable()

func buildXPTable() [MaxLevel]int64 {
	var table [MaxLevel]int64
	points := 0.0
	for lvl := 1; lvl <= MaxLevel; lvl++ {
		table[lvl-1] = int64(math.Floor(points / 4))
		points += math.Floor(float64(lvl) + 300*math.Pow(2, float64(lvl)/7.0))
	}
	return table
}

// LevelFromXP returns the greatest level L <= cap with XPTable[L-1] <= xp.
func LevelFromXP(xp int64, cap int) int {
	if cap > MaxLevel {
		cap = MaxLevel
	}
	level := 1
	for l := 2; l <= cap; l++ {
		if XPTable[l-1] > xp {
			break
		}
		level = l
	}
	return level
}

// XPForLevel returns the minimum XP for a level (1-based).
func XPForLevel(level int) int64 {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return XPTable[level-1]
}
