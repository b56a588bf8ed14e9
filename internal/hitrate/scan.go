package hitrate

import "github.com/pable/go-dawgbowl-metrics/internal/model"

// Report is the trait scan of one batch under the flat top-fraction policy.
type Report struct {
	Week         string
	TotalEntries int
	Cutoff       int
	Players      []model.PlayerHitRate
	Pairs        []model.PairHitRate
}

// Scan runs the flat top-fraction policy over one batch of entries.
func Scan(week string, entries []model.Entry, fraction float64) Report {
	r := Report{Week: week, TotalEntries: len(entries)}
	if len(entries) == 0 {
		return r
	}
	elite := TopFraction(entries, fraction)
	r.Cutoff = len(elite)
	r.Players = Players(entries, elite)
	r.Pairs = Pairs(entries, elite)
	return r
}

// ScanTier measures hit rates with the per-week tier flags instead.
func ScanTier(week string, entries []model.Entry, t model.Tier) Report {
	elite := TierElite(entries, t)
	return Report{
		Week:         week,
		TotalEntries: len(entries),
		Cutoff:       len(elite),
		Players:      Players(entries, elite),
		Pairs:        Pairs(entries, elite),
	}
}
