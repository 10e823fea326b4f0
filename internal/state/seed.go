package state

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// SeedSize is the number of animals generated for a fresh farm.
const SeedSize = 100

var seedBreeds = []string{"Landrace", "Yorkshire", "Duroc", "Hampshire"}

// GenerateSeed builds a demo registry. Passing the same rng seed and now
// yields the same herd.
func GenerateSeed(rng *rand.Rand, now time.Time) Herd {
	animals := make([]models.Animal, 0, SeedSize)
	for i := 1; i <= SeedSize; i++ {
		group := models.Groups[rng.IntN(len(models.Groups))]
		weight := float64(rng.IntN(120-10+1) + 10)
		sex := models.SexFemale
		if rng.Float64() > 0.5 {
			sex = models.SexMale
		}
		age := time.Duration(rng.Float64() * float64(365*24*time.Hour))

		animals = append(animals, models.Animal{
			ID:            fmt.Sprintf("p-%d", i),
			TagID:         fmt.Sprintf("TAG-%d", 1000+i),
			Name:          fmt.Sprintf("Pig #%d", i),
			Group:         group,
			Weight:        weight,
			WeightHistory: []models.WeightPoint{{Date: now, Value: weight}},
			Sex:           sex,
			Breed:         seedBreeds[rng.IntN(len(seedBreeds))],
			BirthDate:     now.Add(-age).Format(time.DateOnly),
			IsPregnant:    group == models.GroupPregnant,
			PhotoURL:      fmt.Sprintf("https://picsum.photos/seed/pig%d/200/200", i),
			Status:        models.StatusPending,
		})
	}
	return Herd{Animals: animals, Events: []models.FeedEvent{}}
}

// NewSeed builds a demo registry from a time-based random source.
func NewSeed(now time.Time) Herd {
	seed := uint64(now.UnixNano())
	return GenerateSeed(rand.New(rand.NewPCG(seed, seed>>1)), now)
}
