package genetics

import "math/rand"

// Species groups genomes whose compatibility distance to a shared
// representative falls under the population's speciation threshold
// (spec §4.8-4.9).
type Species struct {
	Id             int
	Representative *Genome
	Members        []*Genome
	Alive          bool
	// Age counts the generations this species has survived since
	// founding, incremented once per Speciate call while alive.
	Age int

	AvgFitness         float64
	AvgFitnessAdjusted float64
	GensSinceImproved  int

	AllowedOffspring int
}

// NewSpecies starts a species with representative as its sole member.
func NewSpecies(id int, representative *Genome) *Species {
	return &Species{Id: id, Representative: representative, Members: []*Genome{representative}, Alive: true, Age: 1}
}

// Speciate implements spec §4.9: rotate each surviving species'
// representative, then place every other genome into the first
// compatible species or found a new one. Concludes by adapting
// SpeciationThresh toward the target species-count band and calling
// updateFitnesses.
func (p *Population) Speciate() {
	isRepresentative := make(map[*Genome]bool)
	for _, sp := range p.Species {
		if !sp.Alive || len(sp.Members) == 0 {
			sp.Alive = false
			continue
		}
		rep := sp.Members[rand.Intn(len(sp.Members))]
		sp.Representative = rep
		sp.Members = sp.Members[:0]
		sp.Members = append(sp.Members, rep)
		rep.SpeciesId = sp.Id
		sp.Age++
		isRepresentative[rep] = true
	}

	for _, g := range p.Genomes {
		if isRepresentative[g] {
			continue
		}
		placed := false
		for _, sp := range p.Species {
			if !sp.Alive {
				continue
			}
			d := CompareGenomes(g, sp.Representative, p.Config.Compatibility)
			if d < p.SpeciationThresh {
				sp.Members = append(sp.Members, g)
				g.SpeciesId = sp.Id
				placed = true
				break
			}
		}
		if !placed {
			ns := NewSpecies(p.nextSpeciesId, g)
			p.nextSpeciesId++
			g.SpeciesId = ns.Id
			p.Species = append(p.Species, ns)
		}
	}

	aliveCount := 0
	for _, sp := range p.Species {
		if sp.Alive {
			aliveCount++
		}
	}
	lo := p.Config.TargetSpeciesCount - p.Config.TargetSpeciesCountTol
	hi := p.Config.TargetSpeciesCount + p.Config.TargetSpeciesCountTol
	if aliveCount < lo {
		p.SpeciationThresh -= p.Config.StepThresh
	} else if aliveCount > hi {
		p.SpeciationThresh += p.Config.StepThresh
	}
	if p.SpeciationThresh < p.Config.StepThresh {
		p.SpeciationThresh = p.Config.StepThresh
	}

	p.updateFitnesses()
}

// updateFitnesses implements spec §4.10: per-species stagnation
// tracking and the allowed-offspring quota each species earns for the
// next generation.
func (p *Population) updateFitnesses() {
	var fittest *Genome
	for _, g := range p.Genomes {
		if fittest == nil || g.Fitness > fittest.Fitness {
			fittest = g
		}
	}
	p.fittest = fittest

	var popAvgAdjusted float64
	popSize := len(p.Genomes)
	for _, sp := range p.Species {
		if !sp.Alive || len(sp.Members) == 0 {
			continue
		}
		var sum float64
		for _, m := range sp.Members {
			sum += m.Fitness
		}
		avg := sum / float64(len(sp.Members))
		if avg > sp.AvgFitness {
			sp.GensSinceImproved = 0
		} else {
			sp.GensSinceImproved++
		}
		sp.AvgFitness = avg
		sp.AvgFitnessAdjusted = avg / float64(len(sp.Members))
		if popSize > 0 {
			popAvgAdjusted += sp.AvgFitnessAdjusted * float64(len(sp.Members)) / float64(popSize)
		}
	}

	for _, sp := range p.Species {
		if !sp.Alive || len(sp.Members) == 0 {
			sp.AllowedOffspring = 0
			continue
		}
		if sp.GensSinceImproved < p.Config.ThreshGensSinceImproved && popAvgAdjusted > 0 {
			sp.AllowedOffspring = int(float64(len(sp.Members)) * sp.AvgFitnessAdjusted / popAvgAdjusted)
		} else {
			sp.AllowedOffspring = 0
		}
	}
}
