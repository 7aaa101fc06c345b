// Initial resource placement: clustered nodes whose density is shaped by a
// simplex fertility field, so clusters land in natural-looking patches
// instead of uniform scatter.
package resource

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// clusterParams controls placement for one resource type.
type clusterParams struct {
	clusters     int
	density      float64
	maxQuantity  float64
	regrowthRate float64
}

var defaultClusterParams = map[Type]clusterParams{
	Tree:      {clusters: 5, density: 0.7, maxQuantity: 100, regrowthRate: 0.5},
	Stone:     {clusters: 3, density: 0.6, maxQuantity: 200, regrowthRate: 0.1},
	IronOre:   {clusters: 2, density: 0.4, maxQuantity: 150, regrowthRate: 0.05},
	FoodBerry: {clusters: 6, density: 0.5, maxQuantity: 50, regrowthRate: 0.8},
	FoodFish:  {clusters: 2, density: 0.6, maxQuantity: 80, regrowthRate: 0.6},
	FoodWheat: {clusters: 4, density: 0.8, maxQuantity: 120, regrowthRate: 0.3},
	Water:     {clusters: 1, density: 0.9, maxQuantity: 500, regrowthRate: 1.0},
	Clay:      {clusters: 3, density: 0.5, maxQuantity: 100, regrowthRate: 0.2},
	Herb:      {clusters: 4, density: 0.4, maxQuantity: 40, regrowthRate: 0.6},
}

// Generate places clustered resource nodes across a width x height grid.
// Deterministic for a given seed.
func (m *Manager) Generate(width, height int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	fertility := opensimplex.NewNormalized(seed)

	for t := Type(0); t < NumTypes; t++ {
		params, ok := defaultClusterParams[t]
		if !ok {
			continue // manufactured goods never spawn as nodes
		}
		m.generateClusters(t, params, width, height, rng, fertility)
	}
}

func (m *Manager) generateClusters(t Type, params clusterParams, width, height int, rng *rand.Rand, fertility opensimplex.Noise) {
	for i := 0; i < params.clusters; i++ {
		centerX := rng.Intn(width)
		centerY := rng.Intn(height)
		clusterSize := 3 + rng.Intn(5)

		for dx := -clusterSize; dx <= clusterSize; dx++ {
			for dy := -clusterSize; dy <= clusterSize; dy++ {
				x, y := centerX+dx, centerY+dy
				if x < 0 || x >= width || y < 0 || y >= height {
					continue
				}

				// Density falls off toward the cluster edge and is scaled
				// by the fertility field at this cell.
				falloff := 1.0 - float64(abs(dx)+abs(dy))/float64(2*clusterSize)
				fert := 0.5 + fertility.Eval2(float64(x)*0.08, float64(y)*0.08)
				if rng.Float64() >= params.density*falloff*fert {
					continue
				}

				maxQty := params.maxQuantity * (0.5 + 0.5*falloff)
				initial := maxQty * (0.6 + rng.Float64()*0.4)
				m.Add(NewNode(t, x, y, initial, maxQty, params.regrowthRate))
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
