package geo

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
)

// Tier is the position of a Location in the four-level hierarchy.
type Tier int

const (
	TierNational Tier = iota
	TierRegion
	TierDivision
	TierAtom
)

func (t Tier) String() string {
	switch t {
	case TierNational:
		return "national"
	case TierRegion:
		return "region"
	case TierDivision:
		return "division"
	case TierAtom:
		return "atom"
	default:
		return "unknown"
	}
}

// Location is a single vertex of the geography hierarchy.
type Location struct {
	ID   string
	Tier Tier
}

// Catalog is the static, read-only geography registry: national, HHS
// region, census division, and atom locations, linked parent-to-child in
// a directed graph so that Constituents is a single BFS query.
type Catalog struct {
	graph      *core.Graph
	tierOf     map[string]Tier
	atoms      []string
	regions    []string
	population map[string]map[int]int64
}

// NewCatalog builds the standard national/HHS-region/census-division/atom
// hierarchy described in package data.go.
func NewCatalog() *Catalog {
	g := core.NewGraph(core.WithDirected(true))
	c := &Catalog{
		graph:      g,
		tierOf:     make(map[string]Tier),
		population: make(map[string]map[int]int64),
	}

	mustAddVertex(g, nationalID)
	c.tierOf[nationalID] = TierNational

	for n := 1; n <= 10; n++ {
		id := hhsRegionName[n]
		mustAddVertex(g, id)
		c.tierOf[id] = TierRegion
		c.regions = append(c.regions, id)
		mustAddEdge(g, nationalID, id)
	}
	for n := 1; n <= 9; n++ {
		id := divisionName[n]
		mustAddVertex(g, id)
		c.tierOf[id] = TierDivision
		c.regions = append(c.regions, id)
		mustAddEdge(g, nationalID, id)
	}

	for _, a := range atomTable {
		mustAddVertex(g, a.id)
		c.tierOf[a.id] = TierAtom
		c.atoms = append(c.atoms, a.id)
		mustAddEdge(g, hhsRegionName[a.hhsRegion], a.id)
		if a.division != 0 {
			mustAddEdge(g, divisionName[a.division], a.id)
		}

		seasons := map[int]int64{defaultSeason: a.population}
		for season, pop := range populationOverrides[a.id] {
			seasons[season] = pop
		}
		c.population[a.id] = seasons
	}

	sort.Strings(c.atoms)
	return c
}

func mustAddVertex(g *core.Graph, id string) {
	if err := g.AddVertex(id); err != nil {
		panic(fmt.Sprintf("geo: building catalog: %v", err))
	}
}

func mustAddEdge(g *core.Graph, from, to string) {
	if _, err := g.AddEdge(from, to, 0); err != nil {
		panic(fmt.Sprintf("geo: building catalog: %v", err))
	}
}

// National returns the single national location's ID.
func (c *Catalog) National() string { return nationalID }

// Atoms returns every atom ID, sorted.
func (c *Catalog) Atoms() []string {
	out := make([]string, len(c.atoms))
	copy(out, c.atoms)
	return out
}

// Regions returns every HHS-region and census-division ID.
func (c *Catalog) Regions() []string {
	out := make([]string, len(c.regions))
	copy(out, c.regions)
	return out
}

// Locations returns the combined canonical order: national, then regions,
// then atoms.
func (c *Catalog) Locations() []Location {
	out := make([]Location, 0, 1+len(c.regions)+len(c.atoms))
	out = append(out, Location{nationalID, TierNational})
	for _, r := range c.regions {
		out = append(out, Location{r, c.tierOf[r]})
	}
	for _, a := range c.Atoms() {
		out = append(out, Location{a, TierAtom})
	}
	return out
}

// Tier reports the tier of a location ID, and whether it exists.
func (c *Catalog) Tier(id string) (Tier, bool) {
	t, ok := c.tierOf[id]
	return t, ok
}

// Constituents returns the atoms reachable from location, i.e. the atoms it
// decomposes into. An atom is its own sole constituent.
func (c *Catalog) Constituents(location string) ([]string, error) {
	if _, ok := c.tierOf[location]; !ok {
		return nil, fmt.Errorf("geo: unknown location %q", location)
	}
	result, err := bfs.BFS(c.graph, location)
	if err != nil {
		return nil, fmt.Errorf("geo: constituents of %q: %w", location, err)
	}
	out := make([]string, 0, len(result.Order))
	for _, id := range result.Order {
		if c.tierOf[id] == TierAtom {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Population returns the population of an atom for the given season. A
// season of 0 means "unspecified": the most recent known population is
// returned. For a specified season absent from the record, the latest
// population known at or before that season is used, falling back to the
// earliest known population if the atom has no data that old.
func (c *Catalog) Population(atom string, season int) (int64, error) {
	seasons, ok := c.population[atom]
	if !ok {
		return 0, fmt.Errorf("geo: unknown atom %q", atom)
	}
	known := make([]int, 0, len(seasons))
	for s := range seasons {
		known = append(known, s)
	}
	sort.Ints(known)

	if season == 0 {
		return seasons[known[len(known)-1]], nil
	}
	best := known[0]
	for _, s := range known {
		if s <= season {
			best = s
		}
	}
	return seasons[best], nil
}
