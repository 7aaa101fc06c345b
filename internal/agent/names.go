package agent

import "math/rand"

var givenNames = []string{
	"John", "William", "Robert", "Thomas", "Edward", "Henry",
	"Richard", "Walter", "Hugh", "Simon", "Peter", "Geoffrey",
	"Alice", "Emma", "Matilda", "Isabella", "Margaret", "Joan",
	"Agnes", "Eleanor", "Catherine", "Cecily", "Anne", "Elizabeth",
}

var surnames = []string{
	"Smith", "Miller", "Baker", "Carpenter", "Wright", "Fletcher",
	"Cook", "Taylor", "Carter", "Shepherd", "Cooper", "Fisher",
	"Hunter", "Farmer",
}

func randomName(rng *rand.Rand) string {
	return givenNames[rng.Intn(len(givenNames))] + " " + surnames[rng.Intn(len(surnames))]
}
