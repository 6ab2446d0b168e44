package dynamics

import "github.com/katalvlaran/trafficsim/core"

// Evolve advances the simulation by exactly one tick, running Stage A
// (street-to-node handoff), Stage B (node release), Stage C (per-agent
// update), and Stage D (time advance) in that fixed order (spec.md §4.5).
// The turn tally resets at the start of every call; exit-queue tails are
// sampled after the time advance whenever the time is a multiple of
// DataUpdatePeriod, and the traffic-light optimizer then runs whenever
// DataUpdatePeriod ticks have elapsed since its last run.
func (d *RoadDynamics) Evolve() error {
	d.turns = make(map[core.StreetID]*turnTally)

	if err := d.stageA(); err != nil {
		return err
	}
	if err := d.stageB(); err != nil {
		return err
	}
	if err := d.stageC(); err != nil {
		return err
	}
	d.time++

	if d.time%d.opts.DataUpdatePeriod == 0 {
		d.sampleTails()
	}
	if d.time-d.lastOptTime >= d.opts.DataUpdatePeriod {
		if err := d.runOptimizer(); err != nil {
			return err
		}
	}

	return nil
}

// TurnTallies returns a snapshot of this tick's turn-bucket crossing
// counts per street, ordered [Right, Straight, Left, UTurn] (spec.md
// glossary "Turn tally consistency").
func (d *RoadDynamics) TurnTallies() map[core.StreetID][4]int {
	out := make(map[core.StreetID][4]int, len(d.turns))
	for id, t := range d.turns {
		out[id] = [4]int(*t)
	}

	return out
}
