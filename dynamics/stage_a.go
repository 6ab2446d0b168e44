package dynamics

import (
	"fmt"
	"math"

	"github.com/katalvlaran/trafficsim/agent"
	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/node"
	"github.com/katalvlaran/trafficsim/street"
)

// stageA runs the street-to-node handoff (spec.md §4.5 Stage A). For every
// street, lane, up to scaledTransport(TransportCapacity) attempts are made
// to release the head-of-line agent onto its destination node. Every
// skip/fail branch breaks the lane's attempt loop rather than retrying,
// since nothing about a blocked head-of-line agent changes again until
// Stage B runs later in the same tick; only a successful dequeue advances
// to the next attempt.
func (d *RoadDynamics) stageA() error {
	for _, streetID := range d.graph.StreetIDs() {
		s, ok := d.graph.Street(streetID)
		if !ok {
			return fmt.Errorf("%w: street %d vanished mid-tick", ErrProgrammingError, streetID)
		}

		attempts := scaledTransport(s.TransportCapacity(), d.opts.MaxFlowPercentage)
		for lane := 0; lane < s.Lanes(); lane++ {
			for i := 0; i < attempts; i++ {
				advanced, err := d.stageAAttempt(s, lane)
				if err != nil {
					return err
				}
				if !advanced {
					break
				}
			}
		}
	}

	return nil
}

// stageAAttempt tries to release the head-of-line agent in s's lane.
// It returns advanced=true only when the lane's front changed (a
// successful arrival or node handoff), signalling the caller to attempt
// the next agent in the same lane.
func (d *RoadDynamics) stageAAttempt(s *street.Street, lane int) (bool, error) {
	agID, ok, err := s.PeekFront(lane)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	ag, ok := d.agents[agID]
	if !ok {
		return false, fmt.Errorf("%w: queued agent %d not tracked", ErrProgrammingError, agID)
	}
	if ag.Delay > 0 {
		return false, nil
	}

	if !d.rng.Bernoulli(d.opts.PassageProbability) {
		// A random agent failing the stop-line gate is treated as having
		// arrived (spec.md §9 Open Question 3); a non-random agent simply
		// waits for the next tick.
		if ag.IsRandom() {
			if err := d.arriveAgent(s, lane, ag); err != nil {
				return false, err
			}

			return true, nil
		}

		return false, nil
	}
	ag.Speed = 0

	dstNode := s.Dst()
	n, ok := d.graph.Node(dstNode)
	if !ok {
		return false, fmt.Errorf("%w: unknown node %d", ErrInvalidArgument, dstNode)
	}
	if n.IsFull() {
		return false, nil
	}

	// An agent whose itinerary destination is dstNode arrives here: there is
	// no next street to turn onto, so neither a traffic-light check nor a
	// pending-next-street memo applies.
	if it := d.itineraryFor(ag); it != nil && it.Destination() == dstNode {
		if err := d.arriveAgent(s, lane, ag); err != nil {
			return false, err
		}

		return true, nil
	}

	nextID, hasPending := ag.PendingNext()
	if !hasPending {
		return false, fmt.Errorf("%w: agent %d has no pending next-street memo", ErrProgrammingError, ag.ID)
	}
	nextStreet, ok := d.graph.Street(nextID)
	if !ok {
		return false, fmt.Errorf("%w: unknown street %d", ErrInvalidArgument, nextID)
	}

	if tl, isLight := n.(*node.TrafficLight); isLight {
		delta := core.WrapAngle(nextStreet.Bearing() - s.Bearing())
		dir := core.DirectionFromDelta(delta)
		green, err := tl.IsGreen(s.ID(), dir)
		if err != nil {
			return false, err
		}
		if !green {
			return false, nil
		}
	}

	if nextStreet.IsFull() {
		return false, nil
	}

	if _, _, err := s.Dequeue(lane); err != nil {
		return false, err
	}

	switch typed := n.(type) {
	case *node.Roundabout:
		if err := typed.Enqueue(ag.ID); err != nil {
			return false, fmt.Errorf("%w: %v", ErrProgrammingError, err)
		}
	default:
		il, ok := n.(intersectionLike)
		if !ok {
			return false, fmt.Errorf("%w: node %d is neither Intersection-like nor Roundabout", ErrProgrammingError, dstNode)
		}
		delta := core.WrapAngle(nextStreet.Bearing() - s.Bearing())
		angleKey := int(math.Round(delta * 100))
		if err := il.AddAgent(angleKey, ag.ID); err != nil {
			return false, fmt.Errorf("%w: %v", ErrProgrammingError, err)
		}
		d.tally(s.ID(), core.DirectionFromDelta(delta))
	}
	ag.ClearStreet()

	return true, nil
}

// arriveAgent dequeues ag from s's lane and completes its lifecycle:
// records its travel time, then either resets it (reinsert) or destroys
// it (spec.md §3 "Agent" lifecycle).
func (d *RoadDynamics) arriveAgent(s *street.Street, lane int, ag *agent.Agent) error {
	if _, _, err := s.Dequeue(lane); err != nil {
		return err
	}
	d.travelTime.Add(float64(ag.Time))
	d.arrivedCount++
	if ag.Reinsert {
		ag.Reset()
		d.resetCount++
	} else {
		delete(d.agents, ag.ID)
	}

	return nil
}
