package domain

import (
	"fmt"
	"sort"
)

// Tier is the family a rank belongs to.
type Tier string

const (
	TierStarter  Tier = "starter"
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// RankTier is one row of the leveling table.
type RankTier struct {
	Tier     Tier   `json:"tier"`
	Level    int    `json:"level"`
	Name     string `json:"name"`
	SubLevel int    `json:"subLevel"`
	MinXP    int    `json:"minXP"`
	Icon     string `json:"icon"`
}

// XP rules, applied once per logged day.
const (
	FirstMealXP    = 10
	SecondMealXP   = 5
	ThirdMealXP    = 3
	PerfectDayXP   = 5
	ComebackXP     = 8
	ComebackMinGap = 2
)

// DefaultProgressionLookbackDays bounds the history XP is accrued over.
// totals reflect recent progress, not lifetime activity.
const DefaultProgressionLookbackDays = 90

// DefaultMaxTierSpan is the level span shown once the last tier is reached.
const DefaultMaxTierSpan = 500

var rankTable = buildRankTable()

func buildRankTable() []RankTier {
	type family struct {
		tier       Tier
		label      string
		icon       string
		thresholds []int
	}
	families := []family{
		{TierStarter, "Starter", "🌱", []int{0}},
		{TierBronze, "Bronze", "🥉", []int{50, 120, 200}},
		{TierSilver, "Silver", "🥈", []int{300, 420, 560}},
		{TierGold, "Gold", "🥇", []int{720, 900, 1100}},
		{TierPlatinum, "Platinum", "💎", []int{1350, 1650, 2000}},
	}
	numerals := []string{"I", "II", "III"}

	var table []RankTier
	for _, f := range families {
		for i, minXP := range f.thresholds {
			name := f.label
			if len(f.thresholds) > 1 {
				name = fmt.Sprintf("%s %s", f.label, numerals[i])
			}
			table = append(table, RankTier{
				Tier:     f.tier,
				Level:    len(table) + 1,
				Name:     name,
				SubLevel: i + 1,
				MinXP:    minXP,
				Icon:     f.icon,
			})
		}
	}
	return table
}

// RankTable returns a copy of the leveling table, ordered by MinXP.
func RankTable() []RankTier {
	out := make([]RankTier, len(rankTable))
	copy(out, rankTable)
	return out
}

// ProgressionConfig tunes XP accrual.
type ProgressionConfig struct {
	LookbackDays int
	MaxTierSpan  int
}

// DefaultProgressionConfig returns the standard 90-day accrual settings.
func DefaultProgressionConfig() ProgressionConfig {
	return ProgressionConfig{
		LookbackDays: DefaultProgressionLookbackDays,
		MaxTierSpan:  DefaultMaxTierSpan,
	}
}

// WithDefaults fills unset fields with their defaults.
func (c ProgressionConfig) WithDefaults() ProgressionConfig {
	if c.LookbackDays <= 0 {
		c.LookbackDays = DefaultProgressionLookbackDays
	}
	if c.MaxTierSpan <= 0 {
		c.MaxTierSpan = DefaultMaxTierSpan
	}
	return c
}

// DayXP returns the XP a day earns from its meal count alone.
// returns diminish per meal; three meals also earn the perfect-day bonus.
func DayXP(mealCount int) int {
	xp := 0
	if mealCount >= 1 {
		xp += FirstMealXP
	}
	if mealCount >= 2 {
		xp += SecondMealXP
	}
	if mealCount >= 3 {
		xp += ThirdMealXP + PerfectDayXP
	}
	return xp
}

// AccrueXP sums XP over the logged days in chronological order.
// a day at least ComebackMinGap days after the previous logged day
// earns the comeback bonus; the first logged day never does.
func AccrueXP(buckets map[string]DayBucket) int {
	days := loggedDays(buckets)

	total := 0
	prev := ""
	for _, b := range days {
		total += DayXP(b.MealCount)
		if prev != "" && DaysBetween(prev, b.DayKey) >= ComebackMinGap {
			total += ComebackXP
		}
		prev = b.DayKey
	}
	return total
}

// ResolveRank returns the highest tier whose MinXP is at most totalXP,
// plus the next tier when one exists.
func ResolveRank(totalXP int) (current RankTier, next *RankTier) {
	idx := sort.Search(len(rankTable), func(i int) bool {
		return rankTable[i].MinXP > totalXP
	}) - 1
	if idx < 0 {
		idx = 0
	}

	current = rankTable[idx]
	if idx+1 < len(rankTable) {
		n := rankTable[idx+1]
		next = &n
	}
	return current, next
}

// Win is one micro-achievement of today.
type Win struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	XP    int    `json:"xp"`
}

// TodayWins lists the meal-count thresholds reached today.
func TodayWins(mealCount int) []Win {
	wins := make([]Win, 0, 3)
	if mealCount >= 1 {
		wins = append(wins, Win{ID: "first_meal", Label: "Logged your first meal", XP: FirstMealXP})
	}
	if mealCount >= 2 {
		wins = append(wins, Win{ID: "second_meal", Label: "Kept it going", XP: SecondMealXP})
	}
	if mealCount >= 3 {
		wins = append(wins, Win{ID: "perfect_day", Label: "Perfect day", XP: ThirdMealXP + PerfectDayXP})
	}
	return wins
}

// ProgressState is the gamified view of a user's recent activity.
type ProgressState struct {
	Rank            string `json:"rank"`
	Tier            Tier   `json:"tier"`
	SubLevel        int    `json:"subLevel"`
	Icon            string `json:"icon"`
	TotalXP         int    `json:"totalXP"`
	CurrentLevelXP  int    `json:"currentLevelXP"`
	NextLevelXP     int    `json:"nextLevelXP"`
	ProgressPercent int    `json:"progressPercent"`
	TodayWins       []Win  `json:"todayWins"`
	Streak          int    `json:"streak"`
	HasComeback     bool   `json:"hasComeback"`
}

// BuildProgressState accrues XP over the lookback window ending today and
// resolves the rank. buckets must not be zero-filled.
//
// only XP is bounded by the lookback. the streak and the comeback flag read
// every bucket given, so callers pass at least StreakWindow(today).
func BuildProgressState(buckets map[string]DayBucket, today string, cfg ProgressionConfig) ProgressState {
	cfg = cfg.WithDefaults()
	window := WindowEndingOn(today, cfg.LookbackDays)

	history := make(map[string]DayBucket, len(buckets))
	for key, b := range buckets {
		if window.Contains(key) && b.IsActive() {
			history[key] = b
		}
	}

	totalXP := AccrueXP(history)
	current, next := ResolveRank(totalXP)

	xpInto := totalXP - current.MinXP
	xpFor := cfg.MaxTierSpan
	percent := 100
	if next != nil {
		xpFor = next.MinXP - current.MinXP
		percent = roundScore(float64(xpInto) / float64(xpFor) * 100)
	}

	return ProgressState{
		Rank:            current.Name,
		Tier:            current.Tier,
		SubLevel:        current.SubLevel,
		Icon:            current.Icon,
		TotalXP:         totalXP,
		CurrentLevelXP:  xpInto,
		NextLevelXP:     xpFor,
		ProgressPercent: percent,
		TodayWins:       TodayWins(history[today].MealCount),
		Streak:          CurrentStreak(ActiveDaysFrom(buckets), today),
		HasComeback:     hasComeback(buckets, today),
	}
}

// hasComeback reports whether today resumes logging after a gap.
func hasComeback(buckets map[string]DayBucket, today string) bool {
	if !buckets[today].IsActive() {
		return false
	}
	prev := ""
	for _, b := range loggedDays(buckets) {
		if b.DayKey >= today {
			break
		}
		prev = b.DayKey
	}
	return prev != "" && DaysBetween(prev, today) >= ComebackMinGap
}

func loggedDays(buckets map[string]DayBucket) []DayBucket {
	active := make(map[string]DayBucket, len(buckets))
	for key, b := range buckets {
		if b.IsActive() {
			b.DayKey = key
			active[key] = b
		}
	}
	return SortedBuckets(active)
}
