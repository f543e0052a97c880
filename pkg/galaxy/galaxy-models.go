package galaxy

import "time"

// The six reference entity types mirror the external dataset. Descriptive
// attributes stay free-text strings, verbatim from the source, which uses
// literal "unknown" and "n/a" values even in numeric-looking fields.

type Person struct {
	Id        int64
	Name      string
	BirthYear string
	EyeColor  string
	Gender    string
	HairColor string
	Height    string
	Mass      string
	SkinColor string
}

type Film struct {
	Id           int64
	Title        string
	EpisodeId    int
	OpeningCrawl string
	Director     string
	Producer     string
	ReleaseDate  time.Time
}

type Starship struct {
	Id                   int64
	Name                 string
	Model                string
	StarshipClass        string
	Manufacturer         string
	CostInCredits        string
	Length               string
	Crew                 string
	Passengers           string
	MaxAtmospheringSpeed string
	HyperdriveRating     string
	MGLT                 string
	CargoCapacity        string
	Consumables          string
}

type Vehicle struct {
	Id                   int64
	Name                 string
	Model                string
	VehicleClass         string
	Manufacturer         string
	Length               string
	CostInCredits        string
	Crew                 string
	Passengers           string
	MaxAtmospheringSpeed string
	CargoCapacity        string
	Consumables          string
}

type Species struct {
	Id              int64
	Name            string
	Classification  string
	Designation     string
	AverageHeight   string
	AverageLifespan string
	EyeColors       string
	HairColors      string
	SkinColors      string
	Language        string
}

type Planet struct {
	Id             int64
	Name           string
	Diameter       string
	RotationPeriod string
	OrbitalPeriod  string
	Gravity        string
	Population     string
	Climate        string
	Terrain        string
	SurfaceWater   string
}

// Reference points at a related entity by id and display name.
type Reference struct {
	Id   int64
	Name string
}

// Detail views embed the entity and its related collections, resolved
// through the join tables.

type PersonDetail struct {
	Person
	Homeworld *Reference
	Films     []Reference
	Species   []Reference
	Starships []Reference
	Vehicles  []Reference
}

type FilmDetail struct {
	Film
	Characters []Reference
	Species    []Reference
	Starships  []Reference
	Vehicles   []Reference
	Planets    []Reference
}

type StarshipDetail struct {
	Starship
	Pilots []Reference
	Films  []Reference
}

type VehicleDetail struct {
	Vehicle
	Pilots []Reference
	Films  []Reference
}

type SpeciesDetail struct {
	Species
	Homeworld *Reference
	People    []Reference
	Films     []Reference
}

type PlanetDetail struct {
	Planet
	Residents []Reference
	Films     []Reference
}

// SearchResult is one search hit; every entity type reports its display name
// under the same key.
type SearchResult struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Id   int64  `json:"id"`
}

// SearchResults groups hits by entity type; groups without matches stay empty
// rather than being omitted.
type SearchResults struct {
	People    []SearchResult `json:"people"`
	Films     []SearchResult `json:"films"`
	Starships []SearchResult `json:"starships"`
	Vehicles  []SearchResult `json:"vehicles"`
	Planets   []SearchResult `json:"planets"`
	Species   []SearchResult `json:"species"`
}
