package galaxy

import (
	"database/sql"
	"errors"
	"strings"
)

type Repository interface {
	ListPeople() ([]Person, error)
	ListFilms() ([]Film, error)
	ListStarships() ([]Starship, error)
	ListVehicles() ([]Vehicle, error)
	ListSpecies() ([]Species, error)
	ListPlanets() ([]Planet, error)

	GetPerson(id int64) (*PersonDetail, error)
	GetFilm(id int64) (*FilmDetail, error)
	GetStarship(id int64) (*StarshipDetail, error)
	GetVehicle(id int64) (*VehicleDetail, error)
	GetSpecies(id int64) (*SpeciesDetail, error)
	GetPlanet(id int64) (*PlanetDetail, error)

	Search(query string) (SearchResults, error)
}

type galaxyRepository struct {
	Connection *sql.DB
}

var ErrNotFound = errors.New("entity not found")

// NewRepository wraps the read path over the reference dataset; the tables it
// queries are written once by ingestion and never mutated afterwards.
func NewRepository(connection *sql.DB) Repository {
	return &galaxyRepository{connection}
}

func (gr *galaxyRepository) ListPeople() ([]Person, error) {
	var people = make([]Person, 0)
	rows, err := gr.Connection.Query(`
		SELECT id, name, birth_year, eye_color, gender, hair_color, height, mass, skin_color
		FROM people ORDER BY id`)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var p Person
		if err = rows.Scan(&p.Id, &p.Name, &p.BirthYear, &p.EyeColor, &p.Gender,
			&p.HairColor, &p.Height, &p.Mass, &p.SkinColor); err != nil {
			return people, err
		}
		people = append(people, p)
	}
	return people, closeRows(rows)
}

func (gr *galaxyRepository) ListFilms() ([]Film, error) {
	var films = make([]Film, 0)
	rows, err := gr.Connection.Query(`
		SELECT id, title, episode_id, opening_crawl, director, producer, release_date
		FROM films ORDER BY id`)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var f Film
		if err = rows.Scan(&f.Id, &f.Title, &f.EpisodeId, &f.OpeningCrawl,
			&f.Director, &f.Producer, &f.ReleaseDate); err != nil {
			return films, err
		}
		films = append(films, f)
	}
	return films, closeRows(rows)
}

func (gr *galaxyRepository) ListStarships() ([]Starship, error) {
	var starships = make([]Starship, 0)
	rows, err := gr.Connection.Query(`
		SELECT id, name, model, starship_class, manufacturer, cost_in_credits, length,
			crew, passengers, max_atmosphering_speed, hyperdrive_rating, mglt,
			cargo_capacity, consumables
		FROM starships ORDER BY id`)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var s Starship
		if err = rows.Scan(&s.Id, &s.Name, &s.Model, &s.StarshipClass, &s.Manufacturer,
			&s.CostInCredits, &s.Length, &s.Crew, &s.Passengers, &s.MaxAtmospheringSpeed,
			&s.HyperdriveRating, &s.MGLT, &s.CargoCapacity, &s.Consumables); err != nil {
			return starships, err
		}
		starships = append(starships, s)
	}
	return starships, closeRows(rows)
}

func (gr *galaxyRepository) ListVehicles() ([]Vehicle, error) {
	var vehicles = make([]Vehicle, 0)
	rows, err := gr.Connection.Query(`
		SELECT id, name, model, vehicle_class, manufacturer, length, cost_in_credits,
			crew, passengers, max_atmosphering_speed, cargo_capacity, consumables
		FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var v Vehicle
		if err = rows.Scan(&v.Id, &v.Name, &v.Model, &v.VehicleClass, &v.Manufacturer,
			&v.Length, &v.CostInCredits, &v.Crew, &v.Passengers, &v.MaxAtmospheringSpeed,
			&v.CargoCapacity, &v.Consumables); err != nil {
			return vehicles, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, closeRows(rows)
}

func (gr *galaxyRepository) ListSpecies() ([]Species, error) {
	var species = make([]Species, 0)
	rows, err := gr.Connection.Query(`
		SELECT id, name, classification, designation, average_height, average_lifespan,
			eye_colors, hair_colors, skin_colors, language
		FROM species ORDER BY id`)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var s Species
		if err = rows.Scan(&s.Id, &s.Name, &s.Classification, &s.Designation,
			&s.AverageHeight, &s.AverageLifespan, &s.EyeColors, &s.HairColors,
			&s.SkinColors, &s.Language); err != nil {
			return species, err
		}
		species = append(species, s)
	}
	return species, closeRows(rows)
}

func (gr *galaxyRepository) ListPlanets() ([]Planet, error) {
	var planets = make([]Planet, 0)
	rows, err := gr.Connection.Query(`
		SELECT id, name, diameter, rotation_period, orbital_period, gravity, population,
			climate, terrain, surface_water
		FROM planets ORDER BY id`)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var p Planet
		if err = rows.Scan(&p.Id, &p.Name, &p.Diameter, &p.RotationPeriod, &p.OrbitalPeriod,
			&p.Gravity, &p.Population, &p.Climate, &p.Terrain, &p.SurfaceWater); err != nil {
			return planets, err
		}
		planets = append(planets, p)
	}
	return planets, closeRows(rows)
}

func (gr *galaxyRepository) GetPerson(id int64) (*PersonDetail, error) {
	var detail PersonDetail
	var homeworldId sql.NullInt64
	if err := gr.Connection.QueryRow(`
		SELECT id, name, birth_year, eye_color, gender, hair_color, height, mass, skin_color, homeworld_id
		FROM people WHERE id = ?`, id).Scan(
		&detail.Id, &detail.Name, &detail.BirthYear, &detail.EyeColor, &detail.Gender,
		&detail.HairColor, &detail.Height, &detail.Mass, &detail.SkinColor, &homeworldId,
	); err != nil {
		return nil, notFoundOr(err)
	}

	var err error
	if detail.Homeworld, err = gr.getPlanetReference(homeworldId); err != nil {
		return nil, err
	}
	if detail.Films, err = gr.getReferences(`
		SELECT films.id, title FROM films
		JOIN people_films ON films.id = people_films.film_id
		WHERE person_id = ? ORDER BY films.id`, id); err != nil {
		return nil, err
	}
	if detail.Species, err = gr.getReferences(`
		SELECT species.id, name FROM species
		JOIN species_people ON species.id = species_people.species_id
		WHERE person_id = ? ORDER BY species.id`, id); err != nil {
		return nil, err
	}
	if detail.Starships, err = gr.getReferences(`
		SELECT starships.id, name FROM starships
		JOIN people_starships ON starships.id = people_starships.starship_id
		WHERE person_id = ? ORDER BY starships.id`, id); err != nil {
		return nil, err
	}
	if detail.Vehicles, err = gr.getReferences(`
		SELECT vehicles.id, name FROM vehicles
		JOIN people_vehicles ON vehicles.id = people_vehicles.vehicle_id
		WHERE person_id = ? ORDER BY vehicles.id`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (gr *galaxyRepository) GetFilm(id int64) (*FilmDetail, error) {
	var detail FilmDetail
	if err := gr.Connection.QueryRow(`
		SELECT id, title, episode_id, opening_crawl, director, producer, release_date
		FROM films WHERE id = ?`, id).Scan(
		&detail.Id, &detail.Title, &detail.EpisodeId, &detail.OpeningCrawl,
		&detail.Director, &detail.Producer, &detail.ReleaseDate,
	); err != nil {
		return nil, notFoundOr(err)
	}

	var err error
	if detail.Characters, err = gr.getReferences(`
		SELECT people.id, name FROM people
		JOIN people_films ON people.id = people_films.person_id
		WHERE film_id = ? ORDER BY people.id`, id); err != nil {
		return nil, err
	}
	if detail.Species, err = gr.getReferences(`
		SELECT species.id, name FROM species
		JOIN films_species ON species.id = films_species.species_id
		WHERE film_id = ? ORDER BY species.id`, id); err != nil {
		return nil, err
	}
	if detail.Starships, err = gr.getReferences(`
		SELECT starships.id, name FROM starships
		JOIN films_starships ON starships.id = films_starships.starship_id
		WHERE film_id = ? ORDER BY starships.id`, id); err != nil {
		return nil, err
	}
	if detail.Vehicles, err = gr.getReferences(`
		SELECT vehicles.id, name FROM vehicles
		JOIN films_vehicles ON vehicles.id = films_vehicles.vehicle_id
		WHERE film_id = ? ORDER BY vehicles.id`, id); err != nil {
		return nil, err
	}
	if detail.Planets, err = gr.getReferences(`
		SELECT planets.id, name FROM planets
		JOIN films_planets ON planets.id = films_planets.planet_id
		WHERE film_id = ? ORDER BY planets.id`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (gr *galaxyRepository) GetStarship(id int64) (*StarshipDetail, error) {
	var detail StarshipDetail
	if err := gr.Connection.QueryRow(`
		SELECT id, name, model, starship_class, manufacturer, cost_in_credits, length,
			crew, passengers, max_atmosphering_speed, hyperdrive_rating, mglt,
			cargo_capacity, consumables
		FROM starships WHERE id = ?`, id).Scan(
		&detail.Id, &detail.Name, &detail.Model, &detail.StarshipClass, &detail.Manufacturer,
		&detail.CostInCredits, &detail.Length, &detail.Crew, &detail.Passengers,
		&detail.MaxAtmospheringSpeed, &detail.HyperdriveRating, &detail.MGLT,
		&detail.CargoCapacity, &detail.Consumables,
	); err != nil {
		return nil, notFoundOr(err)
	}

	var err error
	if detail.Pilots, err = gr.getReferences(`
		SELECT people.id, name FROM people
		JOIN people_starships ON people.id = people_starships.person_id
		WHERE starship_id = ? ORDER BY people.id`, id); err != nil {
		return nil, err
	}
	if detail.Films, err = gr.getReferences(`
		SELECT films.id, title FROM films
		JOIN films_starships ON films.id = films_starships.film_id
		WHERE starship_id = ? ORDER BY films.id`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (gr *galaxyRepository) GetVehicle(id int64) (*VehicleDetail, error) {
	var detail VehicleDetail
	if err := gr.Connection.QueryRow(`
		SELECT id, name, model, vehicle_class, manufacturer, length, cost_in_credits,
			crew, passengers, max_atmosphering_speed, cargo_capacity, consumables
		FROM vehicles WHERE id = ?`, id).Scan(
		&detail.Id, &detail.Name, &detail.Model, &detail.VehicleClass, &detail.Manufacturer,
		&detail.Length, &detail.CostInCredits, &detail.Crew, &detail.Passengers,
		&detail.MaxAtmospheringSpeed, &detail.CargoCapacity, &detail.Consumables,
	); err != nil {
		return nil, notFoundOr(err)
	}

	var err error
	if detail.Pilots, err = gr.getReferences(`
		SELECT people.id, name FROM people
		JOIN people_vehicles ON people.id = people_vehicles.person_id
		WHERE vehicle_id = ? ORDER BY people.id`, id); err != nil {
		return nil, err
	}
	if detail.Films, err = gr.getReferences(`
		SELECT films.id, title FROM films
		JOIN films_vehicles ON films.id = films_vehicles.film_id
		WHERE vehicle_id = ? ORDER BY films.id`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (gr *galaxyRepository) GetSpecies(id int64) (*SpeciesDetail, error) {
	var detail SpeciesDetail
	var homeworldId sql.NullInt64
	if err := gr.Connection.QueryRow(`
		SELECT id, name, classification, designation, average_height, average_lifespan,
			eye_colors, hair_colors, skin_colors, language, homeworld_id
		FROM species WHERE id = ?`, id).Scan(
		&detail.Id, &detail.Name, &detail.Classification, &detail.Designation,
		&detail.AverageHeight, &detail.AverageLifespan, &detail.EyeColors,
		&detail.HairColors, &detail.SkinColors, &detail.Language, &homeworldId,
	); err != nil {
		return nil, notFoundOr(err)
	}

	var err error
	if detail.Homeworld, err = gr.getPlanetReference(homeworldId); err != nil {
		return nil, err
	}
	if detail.People, err = gr.getReferences(`
		SELECT people.id, name FROM people
		JOIN species_people ON people.id = species_people.person_id
		WHERE species_id = ? ORDER BY people.id`, id); err != nil {
		return nil, err
	}
	if detail.Films, err = gr.getReferences(`
		SELECT films.id, title FROM films
		JOIN films_species ON films.id = films_species.film_id
		WHERE species_id = ? ORDER BY films.id`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (gr *galaxyRepository) GetPlanet(id int64) (*PlanetDetail, error) {
	var detail PlanetDetail
	if err := gr.Connection.QueryRow(`
		SELECT id, name, diameter, rotation_period, orbital_period, gravity, population,
			climate, terrain, surface_water
		FROM planets WHERE id = ?`, id).Scan(
		&detail.Id, &detail.Name, &detail.Diameter, &detail.RotationPeriod,
		&detail.OrbitalPeriod, &detail.Gravity, &detail.Population, &detail.Climate,
		&detail.Terrain, &detail.SurfaceWater,
	); err != nil {
		return nil, notFoundOr(err)
	}

	var err error
	if detail.Residents, err = gr.getReferences(`
		SELECT id, name FROM people WHERE homeworld_id = ? ORDER BY id`, id); err != nil {
		return nil, err
	}
	if detail.Films, err = gr.getReferences(`
		SELECT films.id, title FROM films
		JOIN films_planets ON films.id = films_planets.film_id
		WHERE planet_id = ? ORDER BY films.id`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Search matches the query as a case-insensitive substring against the
// primary name of each entity type independently. A blank query yields
// all-empty groups rather than the full dataset.
func (gr *galaxyRepository) Search(query string) (results SearchResults, err error) {
	results = SearchResults{
		People:    make([]SearchResult, 0),
		Films:     make([]SearchResult, 0),
		Starships: make([]SearchResult, 0),
		Vehicles:  make([]SearchResult, 0),
		Planets:   make([]SearchResult, 0),
		Species:   make([]SearchResult, 0),
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	var pattern = likePattern(query)

	type group struct {
		hits       *[]SearchResult
		entityType string
		statement  string
	}

	for _, g := range []group{
		{&results.People, "person", `SELECT id, name FROM people WHERE name LIKE ? ESCAPE '\' ORDER BY id`},
		{&results.Films, "film", `SELECT id, title FROM films WHERE title LIKE ? ESCAPE '\' ORDER BY id`},
		{&results.Starships, "starship", `SELECT id, name FROM starships WHERE name LIKE ? ESCAPE '\' ORDER BY id`},
		{&results.Vehicles, "vehicle", `SELECT id, name FROM vehicles WHERE name LIKE ? ESCAPE '\' ORDER BY id`},
		{&results.Planets, "planet", `SELECT id, name FROM planets WHERE name LIKE ? ESCAPE '\' ORDER BY id`},
		{&results.Species, "species", `SELECT id, name FROM species WHERE name LIKE ? ESCAPE '\' ORDER BY id`},
	} {
		if *g.hits, err = gr.searchGroup(g.statement, pattern, g.entityType); err != nil {
			return results, err
		}
	}

	return results, nil
}

func (gr *galaxyRepository) searchGroup(statement, pattern, entityType string) ([]SearchResult, error) {
	var hits = make([]SearchResult, 0)
	rows, err := gr.Connection.Query(statement, pattern)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var hit = SearchResult{Type: entityType}
		if err = rows.Scan(&hit.Id, &hit.Name); err != nil {
			return hits, err
		}
		hits = append(hits, hit)
	}
	return hits, closeRows(rows)
}

// likePattern wraps the query in wildcards, escaping the ones it may contain;
// LIKE compares ASCII case-insensitively, which covers the dataset's names.
func likePattern(query string) string {
	var escaped = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

// getReferences runs a two-column id/name query into a reference slice.
func (gr *galaxyRepository) getReferences(statement string, args ...any) ([]Reference, error) {
	var references = make([]Reference, 0)
	rows, err := gr.Connection.Query(statement, args...)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var reference Reference
		if err = rows.Scan(&reference.Id, &reference.Name); err != nil {
			return references, err
		}
		references = append(references, reference)
	}
	return references, closeRows(rows)
}

// getPlanetReference resolves an optional homeworld column into a reference,
// or nil when the source dataset left it unknown.
func (gr *galaxyRepository) getPlanetReference(id sql.NullInt64) (*Reference, error) {
	if !id.Valid {
		return nil, nil
	}
	var reference Reference
	if err := gr.Connection.QueryRow(
		"SELECT id, name FROM planets WHERE id = ?", id.Int64).Scan(&reference.Id, &reference.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reference, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		return err
	}
	return rows.Close()
}
