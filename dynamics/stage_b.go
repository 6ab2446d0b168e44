package dynamics

import (
	"fmt"
	"math"

	"github.com/katalvlaran/trafficsim/agent"
	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/node"
	"github.com/katalvlaran/trafficsim/street"
)

// intersectionLike is the subset of Intersection's API TrafficLight
// promotes unchanged, letting stageB share one release routine for both
// (spec.md §4.3: TrafficLight embeds *Intersection).
type intersectionLike interface {
	node.Node
	Pending(rng *core.RNG) []node.PendingEntry
	RemoveAgent(id core.AgentID)
	AddAgent(angleKey int, id core.AgentID) error
}

// stageB runs the node release step (spec.md §4.5 Stage B): each node
// attempts up to scaledTransport(TransportCapacity) releases onto the
// agent's chosen next street.
func (d *RoadDynamics) stageB() error {
	for _, nodeID := range d.graph.NodeIDs() {
		n, ok := d.graph.Node(nodeID)
		if !ok {
			return fmt.Errorf("%w: node %d vanished mid-tick", ErrProgrammingError, nodeID)
		}

		switch typed := n.(type) {
		case *node.TrafficLight:
			if err := d.releaseLoop(typed); err != nil {
				return err
			}
			typed.Advance()
		case *node.Intersection:
			if err := d.releaseLoop(typed); err != nil {
				return err
			}
		case *node.Roundabout:
			if err := d.releaseRoundabout(typed); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unrecognized node variant at %d", ErrProgrammingError, nodeID)
		}
	}

	return nil
}

func (d *RoadDynamics) releaseLoop(il intersectionLike) error {
	attempts := scaledTransport(il.TransportCapacity(), d.opts.MaxFlowPercentage)
	for i := 0; i < attempts; i++ {
		released, err := d.releaseOneFromIntersection(il)
		if err != nil {
			return err
		}
		if !released {
			return nil
		}
	}

	return nil
}

// releaseOneFromIntersection attempts to release exactly one pending
// agent, honoring angle-key release order. If ForcePriorities is set, a
// blocked head-of-line agent stops the node's release entirely this tick
// rather than letting a later pending agent cut ahead (spec.md §4.5 Stage
// B, "priorities").
func (d *RoadDynamics) releaseOneFromIntersection(il intersectionLike) (bool, error) {
	for _, pe := range il.Pending(d.rng) {
		ag, ok := d.agents[pe.AgentID]
		if !ok {
			return false, fmt.Errorf("%w: pending agent %d not tracked", ErrProgrammingError, pe.AgentID)
		}
		nextID, hasPending := ag.PendingNext()
		if !hasPending {
			return false, fmt.Errorf("%w: agent %d pending release with no next-street memo", ErrProgrammingError, ag.ID)
		}
		nextStreet, ok := d.graph.Street(nextID)
		if !ok {
			return false, fmt.Errorf("%w: unknown next street %d", ErrInvalidArgument, nextID)
		}
		if nextStreet.IsFull() {
			if d.opts.ForcePriorities {
				return false, nil
			}

			continue
		}

		il.RemoveAgent(ag.ID)
		if err := d.releaseAgentOntoStreet(ag, nextStreet); err != nil {
			return false, err
		}

		return true, nil
	}

	return false, nil
}

func (d *RoadDynamics) releaseRoundabout(r *node.Roundabout) error {
	attempts := scaledTransport(r.TransportCapacity(), d.opts.MaxFlowPercentage)
	for i := 0; i < attempts; i++ {
		agID, ok := r.Front()
		if !ok {
			return nil
		}
		ag, ok := d.agents[agID]
		if !ok {
			return fmt.Errorf("%w: roundabout agent %d not tracked", ErrProgrammingError, agID)
		}
		nextID, hasPending := ag.PendingNext()
		if !hasPending {
			return fmt.Errorf("%w: agent %d pending release with no next-street memo", ErrProgrammingError, ag.ID)
		}
		nextStreet, ok := d.graph.Street(nextID)
		if !ok {
			return fmt.Errorf("%w: unknown next street %d", ErrInvalidArgument, nextID)
		}
		if nextStreet.IsFull() {
			return nil
		}

		r.Dequeue()
		if err := d.releaseAgentOntoStreet(ag, nextStreet); err != nil {
			return err
		}
	}

	return nil
}

// releaseAgentOntoStreet admits ag onto nextStreet's waiting set, assigning
// its travel speed and delay (spec.md §4.2). Delay is measured in ticks and
// stored as a core.Delay (uint8); a street so slow/long that its ceil'd
// travel time would not fit surfaces as ErrOverflow rather than silently
// truncating.
func (d *RoadDynamics) releaseAgentOntoStreet(ag *agent.Agent, nextStreet *street.Street) error {
	speed := nextStreet.AssignSpeed(d.rng, d.opts.MinSpeedRatio, d.opts.SpeedFluctuationStd)
	if speed <= 0 {
		speed = 1e-3
	}
	delayF := math.Ceil(nextStreet.Length() / speed)
	if delayF > math.MaxUint8 {
		return fmt.Errorf("%w: street %d travel time %d exceeds delay range", ErrOverflow, nextStreet.ID(), int(delayF))
	}

	ag.SetStreet(nextStreet.ID())
	ag.Speed = speed
	ag.Delay = core.Delay(delayF)
	ag.ClearPendingNext()

	if err := nextStreet.AddAgent(ag.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrProgrammingError, err)
	}

	return nil
}
