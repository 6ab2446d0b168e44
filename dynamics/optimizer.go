package dynamics

import (
	"fmt"
	"math"

	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/node"
)

// sampleTails accumulates each street's current exit-queue length into
// d.tails, the running S_g/S_r sample the optimizer consumes between runs
// (spec.md §4.5 "Traffic-light optimizer" step 2).
func (d *RoadDynamics) sampleTails() {
	for _, streetID := range d.graph.StreetIDs() {
		s, ok := d.graph.Street(streetID)
		if !ok {
			continue
		}
		d.tails[streetID] += s.NExitingAgents()
	}
}

// runOptimizer retunes every TrafficLight's green times from the
// accumulated tail samples and live queue lengths since the last run
// (spec.md §4.5 "Traffic-light optimizer"). Priority incoming streets and
// non-priority incoming streets are summed separately; a light close to
// balanced is reset to its as-configured cycle, otherwise its green times
// are shifted toward whichever side is more congested.
func (d *RoadDynamics) runOptimizer() error {
	ticksElapsed := int(d.time - d.lastOptTime)
	if ticksElapsed <= 0 {
		ticksElapsed = 1
	}

	globalDensity := d.meanStreetDensity(d.graph.StreetIDs())

	for _, nodeID := range d.graph.NodeIDs() {
		n, ok := d.graph.Node(nodeID)
		if !ok {
			return fmt.Errorf("%w: node %d vanished mid-tick", ErrProgrammingError, nodeID)
		}
		tl, isLight := n.(*node.TrafficLight)
		if !isLight {
			continue
		}

		streets := tl.ConfiguredStreets()
		if len(streets) == 0 {
			continue
		}

		var sumGreen, sumRed, queueGreen, queueRed int
		for _, streetID := range streets {
			s, ok := d.graph.Street(streetID)
			if !ok {
				return fmt.Errorf("%w: unknown street %d", ErrInvalidArgument, streetID)
			}
			tail := d.tails[streetID]
			queue := s.NExitingAgents()
			if tl.IsPriority(streetID) {
				sumGreen += tail
				queueGreen += queue
			} else {
				sumRed += tail
				queueRed += queue
			}
		}

		if math.Abs(float64(sumGreen-sumRed)) < d.opts.OptimizerThreshold*float64(min(sumGreen, sumRed)) {
			tl.ResetCycles()

			continue
		}

		nCycles := ticksElapsed / int(d.opts.DataUpdatePeriod)
		if nCycles < 1 {
			nCycles = 1
		}
		delta := int(math.Abs(float64(queueGreen-queueRed))) / nCycles
		if delta == 0 {
			continue
		}

		if d.opts.OptimizerMode == DoubleTail {
			localDensity := d.meanStreetDensity(streets)
			if localDensity > 0 {
				scale := math.Tanh(globalDensity/localDensity) * d.opts.OptimizerDensityTolerance
				delta = int(math.Round(float64(delta) * scale))
			}
		}
		if delta == 0 {
			continue
		}

		shift := core.Delay(delta)
		if queueGreen > queueRed {
			tl.IncreaseGreenTimes(shift)
		} else {
			tl.DecreaseGreenTimes(shift)
		}
	}

	d.tails = make(map[core.StreetID]int)
	d.lastOptTime = d.time

	return nil
}

func (d *RoadDynamics) meanStreetDensity(ids []core.StreetID) float64 {
	if len(ids) == 0 {
		return 0
	}
	sum := 0.0
	n := 0
	for _, id := range ids {
		s, ok := d.graph.Street(id)
		if !ok {
			continue
		}
		sum += s.Density(true)
		n++
	}
	if n == 0 {
		return 0
	}

	return sum / float64(n)
}
