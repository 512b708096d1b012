package room

import "github.com/maz/hunter/internal/gridutil"

// Coin is a grid-bound collectible. Collected coins cannot be collected
// again until they respawn at a new, valid cell (see CoinMgr).
type Coin struct {
	ID        string
	Cell      gridutil.Cell
	Collected bool
}

// Sinkhole is a paired teleport portal. Teleporting chooses a random other
// live sinkhole as destination.
type Sinkhole struct {
	ID       string
	Cell     gridutil.Cell
	ColorTag string
}

// TrapKind distinguishes ground collectibles from deployed, armed traps.
type TrapKind string

const (
	TrapCollectible TrapKind = "collectible"
	TrapDeployed    TrapKind = "deployed"
)

// Trap models both sub-kinds named in the spec: a collectible picked up by
// survivors, or a deployed trap that fires once against a hunter.
type Trap struct {
	ID         string
	Kind       TrapKind
	Cell       gridutil.Cell
	DeployedBy string // playerId, only set when Kind == TrapDeployed
}

// OccupiedSet is a read-only view over every spawnable cell in a room,
// built on demand by the Runtime and handed to a single manager's
// spawn/respawn call. Managers never reach across to peer managers
// directly.
type OccupiedSet struct {
	cells map[gridutil.Cell]struct{}
}

// BuildOccupiedSet unions the cells of every live coin, sinkhole, trap and
// deployed trap in the room.
func BuildOccupiedSet(r *Room) OccupiedSet {
	cells := make(map[gridutil.Cell]struct{}, len(r.Coins)+len(r.Sinkholes)+len(r.Traps))
	for _, c := range r.Coins {
		if !c.Collected {
			cells[c.Cell] = struct{}{}
		}
	}
	for _, s := range r.Sinkholes {
		cells[s.Cell] = struct{}{}
	}
	for _, t := range r.Traps {
		cells[t.Cell] = struct{}{}
	}
	return OccupiedSet{cells: cells}
}

// Occupied reports whether cell is occupied by any spawnable.
func (o OccupiedSet) Occupied(cell gridutil.Cell) bool {
	_, ok := o.cells[cell]
	return ok
}

// WithExtra returns a copy of the set with additional cells marked occupied,
// used while choosing several spawn cells in one pass so earlier choices in
// the same batch are respected.
func (o OccupiedSet) WithExtra(extra ...gridutil.Cell) OccupiedSet {
	cells := make(map[gridutil.Cell]struct{}, len(o.cells)+len(extra))
	for c := range o.cells {
		cells[c] = struct{}{}
	}
	for _, c := range extra {
		cells[c] = struct{}{}
	}
	return OccupiedSet{cells: cells}
}
