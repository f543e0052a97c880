package ingest

import (
	"errors"
	"strconv"
	"strings"
)

// Wire records mirror the external dataset API's JSON payloads. Every record
// carries its canonical URL, from which its numeric identifier is extracted;
// cross-references arrive as lists of such URLs.

type personRecord struct {
	Name      string   `json:"name"`
	BirthYear string   `json:"birth_year"`
	EyeColor  string   `json:"eye_color"`
	Gender    string   `json:"gender"`
	HairColor string   `json:"hair_color"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	SkinColor string   `json:"skin_color"`
	Homeworld *string  `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Starships []string `json:"starships"`
	Vehicles  []string `json:"vehicles"`
	URL       string   `json:"url"`
}

type filmRecord struct {
	Title        string   `json:"title"`
	EpisodeId    int      `json:"episode_id"`
	OpeningCrawl string   `json:"opening_crawl"`
	Director     string   `json:"director"`
	Producer     string   `json:"producer"`
	ReleaseDate  string   `json:"release_date"`
	Characters   []string `json:"characters"`
	Planets      []string `json:"planets"`
	Starships    []string `json:"starships"`
	Vehicles     []string `json:"vehicles"`
	Species      []string `json:"species"`
	URL          string   `json:"url"`
}

type starshipRecord struct {
	Name                 string   `json:"name"`
	Model                string   `json:"model"`
	StarshipClass        string   `json:"starship_class"`
	Manufacturer         string   `json:"manufacturer"`
	CostInCredits        string   `json:"cost_in_credits"`
	Length               string   `json:"length"`
	Crew                 string   `json:"crew"`
	Passengers           string   `json:"passengers"`
	MaxAtmospheringSpeed string   `json:"max_atmosphering_speed"`
	HyperdriveRating     string   `json:"hyperdrive_rating"`
	MGLT                 string   `json:"MGLT"`
	CargoCapacity        string   `json:"cargo_capacity"`
	Consumables          string   `json:"consumables"`
	Pilots               []string `json:"pilots"`
	Films                []string `json:"films"`
	URL                  string   `json:"url"`
}

type vehicleRecord struct {
	Name                 string   `json:"name"`
	Model                string   `json:"model"`
	VehicleClass         string   `json:"vehicle_class"`
	Manufacturer         string   `json:"manufacturer"`
	Length               string   `json:"length"`
	CostInCredits        string   `json:"cost_in_credits"`
	Crew                 string   `json:"crew"`
	Passengers           string   `json:"passengers"`
	MaxAtmospheringSpeed string   `json:"max_atmosphering_speed"`
	CargoCapacity        string   `json:"cargo_capacity"`
	Consumables          string   `json:"consumables"`
	Pilots               []string `json:"pilots"`
	Films                []string `json:"films"`
	URL                  string   `json:"url"`
}

type speciesRecord struct {
	Name            string   `json:"name"`
	Classification  string   `json:"classification"`
	Designation     string   `json:"designation"`
	AverageHeight   string   `json:"average_height"`
	AverageLifespan string   `json:"average_lifespan"`
	EyeColors       string   `json:"eye_colors"`
	HairColors      string   `json:"hair_colors"`
	SkinColors      string   `json:"skin_colors"`
	Language        string   `json:"language"`
	Homeworld       *string  `json:"homeworld"`
	People          []string `json:"people"`
	Films           []string `json:"films"`
	URL             string   `json:"url"`
}

type planetRecord struct {
	Name           string   `json:"name"`
	Diameter       string   `json:"diameter"`
	RotationPeriod string   `json:"rotation_period"`
	OrbitalPeriod  string   `json:"orbital_period"`
	Gravity        string   `json:"gravity"`
	Population     string   `json:"population"`
	Climate        string   `json:"climate"`
	Terrain        string   `json:"terrain"`
	SurfaceWater   string   `json:"surface_water"`
	Residents      []string `json:"residents"`
	Films          []string `json:"films"`
	URL            string   `json:"url"`
}

var errBadResourceURL = errors.New("malformed resource URL")

// resourceId extracts the numeric identifier from a resource URL's trailing
// path segment, i.e. ".../planets/1/" yields 1.
func resourceId(resourceURL string) (int64, error) {
	var segments = strings.Split(strings.TrimSuffix(resourceURL, "/"), "/")
	if len(segments) == 0 {
		return 0, errBadResourceURL
	}
	id, err := strconv.ParseInt(segments[len(segments)-1], 10, 64)
	if err != nil || id < 1 {
		return 0, errBadResourceURL
	}
	return id, nil
}
