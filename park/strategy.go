// Ride-choice strategies. These are policy, not mechanism: they only read
// the registry and the visitor's preferences, and never touch ride state.

package park

import "math/rand"

// RideChoiceStrategy picks the next ride for a visitor, or nil when nothing
// is open. Implementations sample from the visitor's private rng so choices
// stay reproducible per seed.
type RideChoiceStrategy interface {
	PickRide(v *Visitor, p *Park) *Ride
}

// RandomStrategy picks uniformly among open rides.
type RandomStrategy struct{}

func (RandomStrategy) PickRide(v *Visitor, p *Park) *Ride {
	rides := p.OpenRides()
	if len(rides) == 0 {
		return nil
	}
	return rides[v.rng.Intn(len(rides))]
}

// PreferenceStrategy picks among open rides weighted by the visitor's ride
// preferences (unlisted rides weigh 1.0, non-positive weights are skipped).
type PreferenceStrategy struct{}

func (PreferenceStrategy) PickRide(v *Visitor, p *Park) *Ride {
	rides := p.OpenRides()
	if len(rides) == 0 {
		return nil
	}
	var items []*Ride
	var weights []float64
	for _, r := range rides {
		w, ok := v.ridePrefs[r.Name()]
		if !ok {
			w = 1.0
		}
		if w > 0 {
			items = append(items, r)
			weights = append(weights, w)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return pickWeighted(v.rng, items, weights)
}

// PopularityWaitTradeoff scores open rides by preference times popularity,
// penalizing estimated waits beyond WaitPenaltyAfter minutes. Deterministic
// given the same queue lengths; favors thrill seekers who tolerate short
// lines but bail on long ones.
type PopularityWaitTradeoff struct {
	WaitPenaltyAfter int64
}

func (s PopularityWaitTradeoff) PickRide(v *Visitor, p *Park) *Ride {
	rides := p.OpenRides()
	var best *Ride
	bestScore := -1e9
	for _, r := range rides {
		pref, ok := v.ridePrefs[r.Name()]
		if !ok {
			pref = 1.0
		}
		eta := p.EstimatedWaitMinutes(r.Name())
		over := eta - s.WaitPenaltyAfter
		if over < 0 {
			over = 0
		}
		penalty := 1.0 / (1.0 + float64(over))
		score := pref * r.Popularity() * penalty
		if score > bestScore {
			best, bestScore = r, score
		}
	}
	return best
}

// pickWeighted picks one item with probability proportional to its weight.
// Weights need not be normalized.
func pickWeighted[T any](rng *rand.Rand, items []T, weights []float64) T {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if x <= acc {
			return items[i]
		}
	}
	return items[len(items)-1]
}
