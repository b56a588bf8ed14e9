package model

import "fmt"

// Position is the positional category of a drafted player.
type Position string

const (
	PosQB      Position = "QB"
	PosRB      Position = "RB"
	PosWR      Position = "WR"
	PosTE      Position = "TE"
	PosUnknown Position = "Unknown"
)

// Positions lists the recognised categories in display order.
var Positions = []Position{PosQB, PosRB, PosWR, PosTE, PosUnknown}

// IsSkill reports whether p may fill the Flex role.
func (p Position) IsSkill() bool {
	return p == PosRB || p == PosWR || p == PosTE
}

// PickCount is the number of picks in every entry.
const PickCount = 6

// AllWeeks selects every week in week-restricted views.
const AllWeeks = "All Weeks"

// ---- Raw input ----

// RawEntry is one contest submission as read from a weekly file.
type RawEntry struct {
	Username string
	Place    int
	Points   float64
	Players  [PickCount]string
	Week     string
}

// Batch is one ingested weekly file.
type Batch struct {
	Source  string
	Hash    string // sha256 of the file contents
	Week    string
	Entries []RawEntry
}

// ---- Enrichment ----

// Slot is a 1-based pick index. The zero value means unassigned.
type Slot int

const Unassigned Slot = 0

func (s Slot) Assigned() bool { return s > 0 }

func (s Slot) String() string {
	if s == Unassigned {
		return "—"
	}
	return fmt.Sprintf("%d", int(s))
}

// Roles holds the pick slot assigned to each draft role.
type Roles struct {
	QB   Slot
	RB1  Slot
	WR1  Slot
	WR2  Slot
	TE   Slot
	Flex Slot
}

// Used reports whether slot is held by any role.
func (r Roles) Used(slot Slot) bool {
	if slot == Unassigned {
		return false
	}
	return r.QB == slot || r.RB1 == slot || r.WR1 == slot ||
		r.WR2 == slot || r.TE == slot || r.Flex == slot
}

// Tier identifies one of the elite percentile tiers.
type Tier int

const (
	Tier01 Tier = iota // top 0.1%
	Tier05             // top 0.5%
	Tier1              // top 1%
)

// Tiers lists the tiers from the most to the least selective.
var Tiers = []Tier{Tier01, Tier05, Tier1}

// Fraction is the share of a week's field covered by the tier.
func (t Tier) Fraction() float64 {
	switch t {
	case Tier01:
		return 0.001
	case Tier05:
		return 0.005
	default:
		return 0.01
	}
}

func (t Tier) String() string {
	switch t {
	case Tier01:
		return "Top 0.1%"
	case Tier05:
		return "Top 0.5%"
	default:
		return "Top 1%"
	}
}

// TierFlags marks membership in each elite tier.
type TierFlags struct {
	Elite01 bool
	Elite05 bool
	Elite1  bool
}

// Has reports whether the flag for t is set.
func (f TierFlags) Has(t Tier) bool {
	switch t {
	case Tier01:
		return f.Elite01
	case Tier05:
		return f.Elite05
	default:
		return f.Elite1
	}
}

// Entry is a RawEntry after the enrichment pipeline. It is not mutated afterwards.
type Entry struct {
	RawEntry
	Positions    [PickCount]Position
	Roles        Roles
	Tiers        TierFlags
	TotalEntries int // entries by the same user across all loaded weeks
}

// ---- Derived tables ----

// UserSummary is the per-user elite finish rollup.
type UserSummary struct {
	Username     string
	Count01      int
	Count05      int
	Count1       int
	TotalEntries int
	Rate01       float64
	Rate05       float64
	Rate1        float64
}

// PlayerHitRate contrasts a player's elite appearances with the population.
type PlayerHitRate struct {
	Player          string
	PopulationCount int
	EliteCount      int
	HitRate         float64 // percent
}

// PairHitRate is PlayerHitRate for an unordered pair; PlayerA <= PlayerB.
type PairHitRate struct {
	PlayerA         string
	PlayerB         string
	PopulationCount int
	EliteCount      int
	HitRate         float64 // percent
}

// RoundPositionCount is the number of tier entries that took Position in Round.
type RoundPositionCount struct {
	Round    int
	Position Position
	Count    int
}

// UserBreakdown is the drill-down view for one user.
type UserBreakdown struct {
	Username     string
	TotalEntries int
	AvgPoints    float64
	Count01      int
	Count05      int
	Count1       int
	Entries      []Entry // sorted by week, then place
}
