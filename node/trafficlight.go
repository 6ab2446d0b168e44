package node

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/trafficsim/core"
)

// Cycle is a traffic-light timing pair: green for GreenTime ticks starting
// at Phase within the light's total cycle length T. A cycle is green at
// counter c iff c lies in the half-open interval [Phase, Phase+GreenTime)
// mod T (spec.md §4.3).
type Cycle struct {
	GreenTime core.Delay
	Phase     core.Delay
}

// defaultedCycle remembers a Cycle's as-configured values so ResetCycles
// can restore them after the optimizer has retuned green/phase (spec.md
// §4.5 step 4, supplemented from original_source's TrafficLightCycle).
type defaultedCycle struct {
	current Cycle
	initial Cycle
}

// isGreen reports whether this cycle is green at counter c within a cycle
// of total length cycleLen.
func (dc defaultedCycle) isGreen(cycleLen, c core.Delay) bool {
	g, phi := dc.current.GreenTime, dc.current.Phase
	if g == 0 {
		return false
	}
	// c in [phi, phi+g) mod cycleLen
	lo := int(phi) % int(cycleLen)
	hi := (int(phi) + int(g)) % int(cycleLen)
	cc := int(c) % int(cycleLen)
	if lo < hi {
		return cc >= lo && cc < hi
	}
	// wraps past cycleLen
	return cc >= lo || cc < hi
}

// TrafficLight extends Intersection with a per-incoming-street,
// per-direction cycle program: total cycle length T, a phase counter c,
// and a map from incoming street id to a 3-entry array of cycles indexed
// by direction {Right=0, Straight=1, Left=2} (spec.md §4.3). U-turn
// queries are aliased to Left.
type TrafficLight struct {
	*Intersection

	cycleLen core.Delay
	counter  core.Delay
	cycles   map[core.StreetID][3]*defaultedCycle
}

// NewTrafficLight constructs a TrafficLight with the given id, capacity,
// transport capacity and total cycle length T.
func NewTrafficLight(id core.NodeID, capacity, transportCapacity int, cycleLen core.Delay) *TrafficLight {
	return &TrafficLight{
		Intersection: NewIntersection(id, capacity, transportCapacity),
		cycleLen:     cycleLen,
		cycles:       make(map[core.StreetID][3]*defaultedCycle),
	}
}

// CycleLength returns the total cycle length T.
func (tl *TrafficLight) CycleLength() core.Delay { return tl.cycleLen }

// Counter returns the current phase counter c.
func (tl *TrafficLight) Counter() core.Delay { return tl.counter }

// Advance increments the phase counter modulo T. Named Advance rather than
// an operator overload, since Go has none for user types.
func (tl *TrafficLight) Advance() {
	tl.counter = core.Delay((int(tl.counter) + 1) % int(tl.cycleLen))
}

func dirSlot(dir core.Direction) (int, error) {
	switch dir.ResolveUTurn() {
	case core.Right:
		return 0, nil
	case core.Straight:
		return 1, nil
	case core.Left:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: query-only direction %v cannot be set", ErrInvalidArgument, dir)
	}
}

// SetCycle installs a cycle for (streetID, direction). direction must be
// an atomic direction (Right/Straight/Left/UTurn); UTurn is aliased to
// Left. g must be <= T and phi must be < T.
func (tl *TrafficLight) SetCycle(streetID core.StreetID, direction core.Direction, g, phi core.Delay) error {
	slot, err := dirSlot(direction)
	if err != nil {
		return err
	}
	if g > tl.cycleLen {
		return fmt.Errorf("%w: green time %d exceeds cycle length %d", ErrInvalidArgument, g, tl.cycleLen)
	}
	if phi >= tl.cycleLen {
		return fmt.Errorf("%w: phase %d >= cycle length %d", ErrInvalidArgument, phi, tl.cycleLen)
	}

	trio, ok := tl.cycles[streetID]
	if !ok {
		trio = [3]*defaultedCycle{}
	}
	c := Cycle{GreenTime: g, Phase: phi}
	trio[slot] = &defaultedCycle{current: c, initial: c}
	tl.cycles[streetID] = trio

	return nil
}

// SetComplementaryCycle installs, for newStreet, cycles whose green time
// equals T - g and phase equals phi + (T - g) mod T for every direction
// templateStreet has configured — the traffic light's "other phase"
// (spec.md §4.3).
func (tl *TrafficLight) SetComplementaryCycle(newStreet, templateStreet core.StreetID) error {
	trio, ok := tl.cycles[templateStreet]
	if !ok {
		return fmt.Errorf("%w: street %d has no cycle", ErrNoCycle, templateStreet)
	}
	var out [3]*defaultedCycle
	for slot, dc := range trio {
		if dc == nil {
			continue
		}
		g := tl.cycleLen - dc.current.GreenTime
		phi := core.Delay((int(dc.current.Phase) + int(tl.cycleLen-dc.current.GreenTime)) % int(tl.cycleLen))
		c := Cycle{GreenTime: g, Phase: phi}
		out[slot] = &defaultedCycle{current: c, initial: c}
	}
	tl.cycles[newStreet] = out

	return nil
}

// MoveCycle moves the cycle configuration from oldStreet to newStreet,
// used when Graph.BuildAdjacency's canonical renumbering changes a
// street's id after cycles were configured against the pre-renumbering id
// (SPEC_FULL.md §4, grounded on original_source TrafficLight::moveCycle).
func (tl *TrafficLight) MoveCycle(oldStreet, newStreet core.StreetID) error {
	trio, ok := tl.cycles[oldStreet]
	if !ok {
		return fmt.Errorf("%w: street %d has no cycle", ErrNoCycle, oldStreet)
	}
	delete(tl.cycles, oldStreet)
	tl.cycles[newStreet] = trio

	return nil
}

// IsGreen reports whether (streetID, direction) is green at the current
// counter. direction may be an atomic direction or one of the
// RightAndStraight/LeftAndStraight/Any pseudo-directions, which OR
// together the corresponding atomic cycles. Fails with ErrNoCycle if
// streetID has no configured cycle for an atomic direction being queried.
func (tl *TrafficLight) IsGreen(streetID core.StreetID, direction core.Direction) (bool, error) {
	trio, ok := tl.cycles[streetID]
	if !ok {
		return false, fmt.Errorf("%w: street %d has no cycle configured", ErrNoCycle, streetID)
	}

	check := func(slot int) (bool, error) {
		dc := trio[slot]
		if dc == nil {
			return false, fmt.Errorf("%w: street %d has no cycle for direction slot %d", ErrNoCycle, streetID, slot)
		}

		return dc.isGreen(tl.cycleLen, tl.counter), nil
	}

	switch direction {
	case core.RightAndStraight:
		r, err := check(0)
		if err != nil {
			return false, err
		}
		s, err := check(1)
		if err != nil {
			return false, err
		}

		return r || s, nil
	case core.LeftAndStraight:
		l, err := check(2)
		if err != nil {
			return false, err
		}
		s, err := check(1)
		if err != nil {
			return false, err
		}

		return l || s, nil
	case core.Any:
		anyGreen := false
		for slot := 0; slot < 3; slot++ {
			if trio[slot] == nil {
				continue
			}
			g, err := check(slot)
			if err != nil {
				return false, err
			}
			anyGreen = anyGreen || g
		}

		return anyGreen, nil
	default:
		slot, err := dirSlot(direction)
		if err != nil {
			return false, err
		}

		return check(slot)
	}
}

// ResetCycles restores every configured cycle to its as-set (initial)
// green time and phase, undoing any optimizer retuning (spec.md §4.5
// step 4).
func (tl *TrafficLight) ResetCycles() {
	for _, trio := range tl.cycles {
		for _, dc := range trio {
			if dc != nil {
				dc.current = dc.initial
			}
		}
	}
}

// ConfiguredStreets returns, in ascending order, every incoming street id
// this traffic light has at least one direction cycle configured for.
// Used by the traffic-light optimizer to enumerate a node's incoming
// streets without a separate reverse-adjacency index.
func (tl *TrafficLight) ConfiguredStreets() []core.StreetID {
	out := make([]core.StreetID, 0, len(tl.cycles))
	for id := range tl.cycles {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// MaxGreenTime returns the largest configured green time among priority
// (if priorityStreets is true) or non-priority incoming streets, across
// all configured directions. Returns 0 if no matching street has a cycle
// (supplemented from original_source TrafficLight::maxGreenTime).
func (tl *TrafficLight) MaxGreenTime(priorityStreets bool) core.Delay {
	var max core.Delay
	for streetID, trio := range tl.cycles {
		if tl.IsPriority(streetID) != priorityStreets {
			continue
		}
		for _, dc := range trio {
			if dc != nil && dc.current.GreenTime > max {
				max = dc.current.GreenTime
			}
		}
	}

	return max
}

// IncreaseGreenTimes shifts every priority-street cycle's green time up by
// delta and every non-priority-street cycle's green time down by delta,
// clamped to [0, T] and keeping phase coherent so the light never reports
// green for longer than a cycle allows (spec.md §4.5 step 6).
func (tl *TrafficLight) IncreaseGreenTimes(delta core.Delay) {
	tl.shiftGreenTimes(int(delta))
}

// DecreaseGreenTimes is the inverse of IncreaseGreenTimes: priority
// streets lose delta, non-priority streets gain delta (spec.md §4.5,
// "or the reverse").
func (tl *TrafficLight) DecreaseGreenTimes(delta core.Delay) {
	tl.shiftGreenTimes(-int(delta))
}

// shiftGreenTimes applies a signed delta to every configured cycle's green
// time, +delta for priority streets and -delta for non-priority streets
// (so IncreaseGreenTimes/DecreaseGreenTimes just flip the sign of delta).
// Whichever side's green time shrinks has its phase advanced by the same
// amount, keeping the green window's end time fixed rather than letting it
// slide (mirrors original_source's TrafficLight::increaseGreenTimes/
// decreaseGreenTimes, which construct the shrinking side's new cycle as
// `TrafficLightCycle(greenTime - delta, phase + delta)`).
func (tl *TrafficLight) shiftGreenTimes(delta int) {
	for streetID, trio := range tl.cycles {
		sign := 1
		if !tl.IsPriority(streetID) {
			sign = -1
		}
		greenDelta := sign * delta
		for _, dc := range trio {
			if dc == nil {
				continue
			}
			g := int(dc.current.GreenTime) + greenDelta
			if g < 0 {
				g = 0
			}
			if g > int(tl.cycleLen) {
				g = int(tl.cycleLen)
			}
			dc.current.GreenTime = core.Delay(g)

			if greenDelta < 0 {
				phi := (int(dc.current.Phase) - greenDelta) % int(tl.cycleLen)
				dc.current.Phase = core.Delay(phi)
			}
		}
	}
}
