package resource

import "math/rand"

// reseedChance is the per-step probability of a depleted node coming back
// at 10% of its maximum quantity.
const reseedChance = 0.05

// Node is a depletable, regrowable point resource on the world grid.
type Node struct {
	Type         Type
	X, Y         int
	Quantity     float64
	MaxQuantity  float64
	RegrowthRate float64
	Depleted     bool
}

// NewNode creates a resource node at the given position.
func NewNode(t Type, x, y int, quantity, maxQuantity, regrowthRate float64) *Node {
	return &Node{
		Type:         t,
		X:            x,
		Y:            y,
		Quantity:     quantity,
		MaxQuantity:  maxQuantity,
		RegrowthRate: regrowthRate,
	}
}

// Extract removes up to amount from the node and returns the amount
// actually taken. Taking the node to zero marks it depleted.
func (n *Node) Extract(amount float64) float64 {
	if n.Depleted {
		return 0
	}
	taken := amount
	if taken > n.Quantity {
		taken = n.Quantity
	}
	n.Quantity -= taken
	if n.Quantity <= 0 {
		n.Quantity = 0
		n.Depleted = true
	}
	return taken
}

// Regrow grows the node toward MaxQuantity by RegrowthRate * dt *
// seasonModifier. A depleted node has a small independent chance per call of
// spontaneously reseeding at 10% of its maximum.
func (n *Node) Regrow(dt, seasonModifier float64, rng *rand.Rand) {
	if n.Depleted && rng.Float64() < reseedChance {
		n.Depleted = false
		n.Quantity = n.MaxQuantity * 0.1
	}
	if !n.Depleted && n.Quantity < n.MaxQuantity {
		n.Quantity += n.RegrowthRate * dt * seasonModifier
		if n.Quantity > n.MaxQuantity {
			n.Quantity = n.MaxQuantity
		}
	}
}
