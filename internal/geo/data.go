package geo

// atomRecord is a single row of the static atom table: HHS region number
// (1-10), census division number (1-9, 0 for territories and sub-state
// atoms which sit outside the division tier), and a default-season
// population. A handful of atoms additionally carry an older season's
// population in populationOverrides to exercise season fallback.
type atomRecord struct {
	id         string
	hhsRegion  int
	division   int
	population int64
}

// defaultSeason is the season year populations below are stated for,
// absent a more specific entry in populationOverrides.
const defaultSeason = 2020

var atomTable = []atomRecord{
	{"al", 4, 6, 5024279},
	{"ak", 10, 9, 733391},
	{"az", 9, 8, 7151502},
	{"ar", 6, 7, 3011524},
	{"ca", 9, 9, 39538223},
	{"co", 8, 8, 5773714},
	{"ct", 1, 1, 3605944},
	{"de", 3, 5, 989948},
	{"dc", 3, 5, 689545},
	{"fl", 4, 5, 21538187},
	{"ga", 4, 5, 10711908},
	{"hi", 9, 9, 1455271},
	{"id", 10, 8, 1839106},
	{"il", 5, 3, 12812508},
	{"in", 5, 3, 6785528},
	{"ia", 7, 4, 3190369},
	{"ks", 7, 4, 2937880},
	{"ky", 4, 6, 4505836},
	{"la", 6, 7, 4657757},
	{"me", 1, 1, 1362359},
	{"md", 3, 5, 6177224},
	{"ma", 1, 1, 7029917},
	{"mi", 5, 3, 10077331},
	{"mn", 5, 4, 5706494},
	{"ms", 4, 6, 2961279},
	{"mo", 7, 4, 6154913},
	{"mt", 8, 8, 1084225},
	{"ne", 7, 4, 1961504},
	{"nv", 9, 8, 3104614},
	{"nh", 1, 1, 1377529},
	{"nj", 2, 2, 9288994},
	{"nm", 6, 8, 2117522},
	{"ny", 2, 2, 20201249},
	{"nc", 4, 5, 10439388},
	{"nd", 8, 4, 779094},
	{"oh", 5, 3, 11799448},
	{"ok", 6, 7, 3959353},
	{"or", 10, 9, 4237256},
	{"pa", 3, 2, 13002700},
	{"ri", 1, 1, 1097379},
	{"sc", 4, 5, 5118425},
	{"sd", 8, 4, 886667},
	{"tn", 4, 6, 6910840},
	{"tx", 6, 7, 29145505},
	{"ut", 8, 8, 3271616},
	{"vt", 1, 1, 643077},
	{"va", 3, 5, 8631393},
	{"wa", 10, 9, 7705281},
	{"wv", 3, 5, 1793716},
	{"wi", 5, 3, 5893718},
	{"wy", 8, 8, 576851},
	{"pr", 2, 0, 3285874},
	{"vi", 2, 0, 87146},
	// jfk is the New York City media market, disaggregated from "ny" as
	// its own reporting atom. It is not a census division member and its
	// population is independent of ny's.
	{"jfk", 2, 0, 8336817},
}

// populationOverrides supplies an earlier season's population for a few
// atoms, so Population's season-fallback path has something to exercise.
var populationOverrides = map[string]map[int]int64{
	"ca": {2019: 39512223},
	"ny": {2019: 19453561},
	"tx": {2019: 28995881},
}

var hhsRegionName = map[int]string{
	1: "hhs1", 2: "hhs2", 3: "hhs3", 4: "hhs4", 5: "hhs5",
	6: "hhs6", 7: "hhs7", 8: "hhs8", 9: "hhs9", 10: "hhs10",
}

var divisionName = map[int]string{
	1: "div1", 2: "div2", 3: "div3", 4: "div4", 5: "div5",
	6: "div6", 7: "div7", 8: "div8", 9: "div9",
}

const nationalID = "nat"
