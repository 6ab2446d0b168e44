package dynamics

import "github.com/katalvlaran/trafficsim/measurement"

// Aggregate is the per-period observable bundle spec.md §6's aggregate CSV
// line reports: n_agents plus a mean/stddev pair for speed, density, flow,
// travel time, and spire flow.
type Aggregate struct {
	NAgents    int
	Speed      measurement.Stats
	Density    measurement.Stats
	Flow       measurement.Stats
	TravelTime measurement.Stats
	SpireFlow  measurement.Stats
}

// Aggregate computes the current observable bundle. Speed is drawn from
// every alive agent; density and flow from every street, flow being this
// tick's turn-tally crossings at the street's downstream node (spec.md
// glossary "Turn tally consistency"); spire flow from every SpireStreet's
// in-out net (spec.md §8 scenario S6).
func (d *RoadDynamics) Aggregate() Aggregate {
	speeds := make([]float64, 0, len(d.agents))
	for _, ag := range d.agents {
		speeds = append(speeds, ag.Speed)
	}

	streetIDs := d.graph.StreetIDs()
	densities := make([]float64, 0, len(streetIDs))
	flows := make([]float64, 0, len(streetIDs))
	var spireFlows []float64
	for _, id := range streetIDs {
		s, ok := d.graph.Street(id)
		if !ok {
			continue
		}
		densities = append(densities, s.Density(true))

		total := 0
		if t, ok := d.turns[id]; ok {
			for _, v := range t {
				total += v
			}
		}
		flows = append(flows, float64(total))

		if s.IsSpire() {
			in, out := s.SpireCounts(false)
			spireFlows = append(spireFlows, float64(in)-float64(out))
		}
	}

	return Aggregate{
		NAgents:    d.AliveCount(),
		Speed:      measurement.Reduce(speeds),
		Density:    measurement.Reduce(densities),
		Flow:       measurement.Reduce(flows),
		TravelTime: d.TravelTimeStats(),
		SpireFlow:  measurement.Reduce(spireFlows),
	}
}
