package drivers

import "math/rand/v2"

var (
	randomOwners = []string{"Ana Silva", "Pedro Ruiz", "Carmen Vega", "José Torres", "Laura Morales"}
	randomBrands = []string{"Toyota", "Honda", "Chevrolet", "Hyundai", "Nissan"}
	randomModels = []string{"2018", "2019", "2020", "2021", "2022", "2023"}
)

const (
	plateLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	plateDigits  = "0123456789"
)

// Pool hands out drivers to traffic cars, preferring ones not on the road.
// It is not safe for concurrent use.
type Pool struct {
	drivers []Driver
	inUse   map[string]bool
	rng     *rand.Rand
}

// NewPool creates a pool over ds. A nil rng uses a randomly seeded source.
func NewPool(ds []Driver, rng *rand.Rand) *Pool {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Pool{
		drivers: ds,
		inUse:   make(map[string]bool),
		rng:     rng,
	}
}

// Len returns the number of known drivers.
func (p *Pool) Len() int { return len(p.drivers) }

// InUse returns the number of plates currently marked as on the road.
func (p *Pool) InUse() int { return len(p.inUse) }

// Acquire returns a copy of a random unused driver and marks it in use.
// When every driver is in use one is reused without marking; when the pool
// is empty a random driver is synthesised.
func (p *Pool) Acquire() Driver {
	if len(p.drivers) == 0 {
		return p.Random()
	}

	available := make([]int, 0, len(p.drivers))
	for i, d := range p.drivers {
		if !p.inUse[d.Plate] {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		return p.drivers[p.rng.IntN(len(p.drivers))]
	}

	d := p.drivers[available[p.rng.IntN(len(available))]]
	p.inUse[d.Plate] = true
	return d
}

// Release marks plate as no longer on the road.
func (p *Pool) Release(plate string) {
	delete(p.inUse, plate)
}

// Random synthesises a driver with an ABC123-style plate.
func (p *Pool) Random() Driver {
	return Driver{
		Plate: p.randomPlate(),
		Class: "Car",
		Brand: randomBrands[p.rng.IntN(len(randomBrands))],
		Model: randomModels[p.rng.IntN(len(randomModels))],
		Owner: randomOwners[p.rng.IntN(len(randomOwners))],
		Level: p.rng.IntN(100),
	}
}

func (p *Pool) randomPlate() string {
	b := make([]byte, 0, 6)
	for range 3 {
		b = append(b, plateLetters[p.rng.IntN(len(plateLetters))])
	}
	for range 3 {
		b = append(b, plateDigits[p.rng.IntN(len(plateDigits))])
	}
	return string(b)
}

// Sample returns up to n distinct drivers in random order.
func (p *Pool) Sample(n int) []Driver {
	idx := p.rng.Perm(len(p.drivers))
	n = min(n, len(idx))
	out := make([]Driver, n)
	for i := range n {
		out[i] = p.drivers[idx[i]]
	}
	return out
}
