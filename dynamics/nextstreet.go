package dynamics

import (
	"fmt"

	"github.com/katalvlaran/trafficsim/agent"
	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/node"
	"github.com/katalvlaran/trafficsim/street"
)

// chooseNextStreet implements spec.md §4.5 "Next-street selection
// (m_nextStreetId)": pick a destination row of candidate next streets
// (the itinerary path row with probability 1-error_probability for
// non-random agents, otherwise the full adjacency row), draw uniformly,
// and reject U-turns unless curNode is a roundabout or there is only one
// candidate. refBearing is the bearing of the street the agent currently
// occupies, used to classify a candidate as a U-turn; nil disables U-turn
// rejection entirely, for the source-node injection case where there is no
// incoming street to measure a turn against.
func (d *RoadDynamics) chooseNextStreet(a *agent.Agent, curNode core.NodeID, refBearing *float64) (core.StreetID, error) {
	outs, err := d.graph.OutgoingStreets(curNode)
	if err != nil {
		return 0, err
	}
	if len(outs) == 0 {
		return 0, fmt.Errorf("%w: node %d has no outgoing streets", ErrNoPathToDestination, curNode)
	}

	candidates := outs
	if it := d.itineraryFor(a); it != nil && d.rng.Bernoulli(1-d.opts.ErrorProbability) {
		candNodes, err := it.Candidates(curNode)
		if err != nil {
			return 0, err
		}
		candidates = filterByDst(outs, candNodes)
		if len(candidates) == 0 {
			// Should not happen for a node with a valid itinerary row, but
			// fall back to the full adjacency row rather than strand the
			// agent.
			candidates = outs
		}
	}

	n, ok := d.graph.Node(curNode)
	if !ok {
		return 0, fmt.Errorf("%w: unknown node %d", ErrInvalidArgument, curNode)
	}
	_, isRoundabout := n.(*node.Roundabout)

	if len(candidates) == 1 {
		return candidates[0].ID(), nil
	}

	pool := candidates
	if !isRoundabout && refBearing != nil {
		nonUTurn := make([]*street.Street, 0, len(candidates))
		for _, c := range candidates {
			if core.DirectionFromDelta(core.WrapAngle(c.Bearing()-*refBearing)) != core.UTurn {
				nonUTurn = append(nonUTurn, c)
			}
		}
		if len(nonUTurn) > 0 {
			pool = nonUTurn
		}
	}

	return pool[d.rng.IntN(len(pool))].ID(), nil
}

// filterByDst returns the subset of outs whose Dst is in allowed.
func filterByDst(outs []*street.Street, allowed []core.NodeID) []*street.Street {
	set := make(map[core.NodeID]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	out := make([]*street.Street, 0, len(allowed))
	for _, s := range outs {
		if _, ok := set[s.Dst()]; ok {
			out = append(out, s)
		}
	}

	return out
}
