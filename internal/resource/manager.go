package resource

import "math/rand"

type cell struct{ x, y int }

// Manager owns every resource node in the world plus the village ledger:
// an unconstrained map of resources the village holds outside any physical
// storage facility. The ledger is a deliberate escape valve for overflow,
// not bounded storage.
type Manager struct {
	nodes []*Node
	grid  map[cell][]*Node

	villageResources map[Type]float64

	rng *rand.Rand
}

// NewManager creates an empty resource manager.
func NewManager(seed int64) *Manager {
	return &Manager{
		grid:             make(map[cell][]*Node),
		villageResources: make(map[Type]float64),
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// Add registers a node with the manager and its spatial index.
func (m *Manager) Add(n *Node) {
	m.nodes = append(m.nodes, n)
	c := cell{n.X, n.Y}
	m.grid[c] = append(m.grid[c], n)
}

// Remove deletes a node from the manager and the spatial index.
// Used when a node is fully worked out (felled tree, exhausted vein).
func (m *Manager) Remove(n *Node) {
	for i, other := range m.nodes {
		if other == n {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			break
		}
	}
	c := cell{n.X, n.Y}
	at := m.grid[c]
	for i, other := range at {
		if other == n {
			m.grid[c] = append(at[:i], at[i+1:]...)
			break
		}
	}
	if len(m.grid[c]) == 0 {
		delete(m.grid, c)
	}
}

// At returns every node at the given grid position.
func (m *Manager) At(x, y int) []*Node {
	return m.grid[cell{x, y}]
}

// Nodes returns all nodes. The slice is shared; callers must not mutate it.
func (m *Manager) Nodes() []*Node { return m.nodes }

// Step regrows every node by dt, scaled by the externally supplied season
// modifier.
func (m *Manager) Step(dt, seasonModifier float64) {
	for _, n := range m.nodes {
		n.Regrow(dt, seasonModifier, m.rng)
	}
}

// AddToVillageStorage credits the village ledger. The ledger has no
// capacity bound.
func (m *Manager) AddToVillageStorage(t Type, amount float64) {
	if amount <= 0 {
		return
	}
	m.villageResources[t] += amount
}

// TakeFromVillageStorage debits the ledger, clamped to what is held, and
// returns the amount actually taken.
func (m *Manager) TakeFromVillageStorage(t Type, amount float64) float64 {
	held := m.villageResources[t]
	taken := amount
	if taken > held {
		taken = held
	}
	if taken <= 0 {
		return 0
	}
	remaining := held - taken
	if remaining <= 0 {
		delete(m.villageResources, t)
	} else {
		m.villageResources[t] = remaining
	}
	return taken
}

// VillageResources returns a copy of the ledger.
func (m *Manager) VillageResources() map[Type]float64 {
	out := make(map[Type]float64, len(m.villageResources))
	for t, amt := range m.villageResources {
		out[t] = amt
	}
	return out
}

// VillageAmount returns the ledger balance for one resource type.
func (m *Manager) VillageAmount(t Type) float64 {
	return m.villageResources[t]
}
