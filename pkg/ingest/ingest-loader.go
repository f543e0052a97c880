package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Loader performs the one-time bulk load of the reference dataset: a single
// sequential writer, run before the web application serves traffic.
type Loader struct {
	Connection *sql.DB
	Client     *Client
	Logger     logrus.FieldLogger
}

// ErrPopulated marks an attempt to re-run ingestion against a store that
// already holds entity rows; the load is strictly one-shot.
var ErrPopulated = errors.New("entity store is already populated")

func NewLoader(connection *sql.DB, client *Client, logger logrus.FieldLogger) *Loader {
	return &Loader{Connection: connection, Client: client, Logger: logger}
}

// Run fetches all six collections, then writes entities and cross-links in a
// single transaction: either the whole dataset lands or none of it does.
// Entities precede links, so every cross-reference resolves against rows that
// are already present; references pointing outside the dataset are skipped.
func (l *Loader) Run() error {

	populated, err := l.populated()
	if err != nil {
		return err
	}
	if populated {
		return ErrPopulated
	}

	planets, err := l.Client.Planets()
	if err != nil {
		return err
	}
	people, err := l.Client.People()
	if err != nil {
		return err
	}
	films, err := l.Client.Films()
	if err != nil {
		return err
	}
	species, err := l.Client.Species()
	if err != nil {
		return err
	}
	starships, err := l.Client.Starships()
	if err != nil {
		return err
	}
	vehicles, err := l.Client.Vehicles()
	if err != nil {
		return err
	}

	tx, err := l.Connection.Begin()
	if err != nil {
		return err
	}

	// rolling back after a commit is a safe NOP
	defer func() { _ = tx.Rollback() }()

	if err = l.insertPlanets(tx, planets); err != nil {
		return err
	}
	if err = l.insertPeople(tx, people); err != nil {
		return err
	}
	if err = l.insertFilms(tx, films); err != nil {
		return err
	}
	if err = l.insertSpecies(tx, species); err != nil {
		return err
	}
	if err = l.insertStarships(tx, starships); err != nil {
		return err
	}
	if err = l.insertVehicles(tx, vehicles); err != nil {
		return err
	}

	// link phase: every entity row exists by now
	for _, record := range people {
		id, err := resourceId(record.URL)
		if err != nil {
			continue
		}
		if err = l.link(tx, "people_films", "person_id", "film_id", "people", "films", id, record.Films); err != nil {
			return err
		}
		if err = l.link(tx, "species_people", "person_id", "species_id", "people", "species", id, record.Species); err != nil {
			return err
		}
		if err = l.link(tx, "people_starships", "person_id", "starship_id", "people", "starships", id, record.Starships); err != nil {
			return err
		}
		if err = l.link(tx, "people_vehicles", "person_id", "vehicle_id", "people", "vehicles", id, record.Vehicles); err != nil {
			return err
		}
	}

	for _, record := range films {
		id, err := resourceId(record.URL)
		if err != nil {
			continue
		}
		if err = l.link(tx, "people_films", "film_id", "person_id", "films", "people", id, record.Characters); err != nil {
			return err
		}
		if err = l.link(tx, "films_species", "film_id", "species_id", "films", "species", id, record.Species); err != nil {
			return err
		}
		if err = l.link(tx, "films_starships", "film_id", "starship_id", "films", "starships", id, record.Starships); err != nil {
			return err
		}
		if err = l.link(tx, "films_vehicles", "film_id", "vehicle_id", "films", "vehicles", id, record.Vehicles); err != nil {
			return err
		}
		if err = l.link(tx, "films_planets", "film_id", "planet_id", "films", "planets", id, record.Planets); err != nil {
			return err
		}
	}

	for _, record := range species {
		id, err := resourceId(record.URL)
		if err != nil {
			continue
		}
		if err = l.link(tx, "films_species", "species_id", "film_id", "species", "films", id, record.Films); err != nil {
			return err
		}
		if err = l.link(tx, "species_people", "species_id", "person_id", "species", "people", id, record.People); err != nil {
			return err
		}
	}

	for _, record := range starships {
		id, err := resourceId(record.URL)
		if err != nil {
			continue
		}
		if err = l.link(tx, "films_starships", "starship_id", "film_id", "starships", "films", id, record.Films); err != nil {
			return err
		}
		if err = l.link(tx, "people_starships", "starship_id", "person_id", "starships", "people", id, record.Pilots); err != nil {
			return err
		}
	}

	for _, record := range vehicles {
		id, err := resourceId(record.URL)
		if err != nil {
			continue
		}
		if err = l.link(tx, "films_vehicles", "vehicle_id", "film_id", "vehicles", "films", id, record.Films); err != nil {
			return err
		}
		if err = l.link(tx, "people_vehicles", "vehicle_id", "person_id", "vehicles", "people", id, record.Pilots); err != nil {
			return err
		}
	}

	for _, record := range planets {
		id, err := resourceId(record.URL)
		if err != nil {
			continue
		}
		if err = l.link(tx, "films_planets", "planet_id", "film_id", "planets", "films", id, record.Films); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	l.Logger.WithFields(logrus.Fields{
		"planets":   len(planets),
		"people":    len(people),
		"films":     len(films),
		"species":   len(species),
		"starships": len(starships),
		"vehicles":  len(vehicles),
	}).Info("ingestion complete")

	return nil
}

// populated reports whether any of the six entity tables holds rows.
func (l *Loader) populated() (bool, error) {
	var total int64
	err := l.Connection.QueryRow(`
		SELECT (SELECT count(*) FROM planets)
			+ (SELECT count(*) FROM people)
			+ (SELECT count(*) FROM films)
			+ (SELECT count(*) FROM species)
			+ (SELECT count(*) FROM starships)
			+ (SELECT count(*) FROM vehicles)`).Scan(&total)
	return total > 0, err
}

func (l *Loader) insertPlanets(tx *sql.Tx, records []planetRecord) error {
	for _, record := range records {
		id, err := resourceId(record.URL)
		if err != nil {
			l.Logger.WithField("url", record.URL).Warn("skipping planet with malformed URL")
			continue
		}
		if _, err = tx.Exec(`
			INSERT INTO planets (id, name, diameter, rotation_period, orbital_period, gravity,
				population, climate, terrain, surface_water)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, record.Name, record.Diameter, record.RotationPeriod, record.OrbitalPeriod,
			record.Gravity, record.Population, record.Climate, record.Terrain,
			record.SurfaceWater); err != nil {
			return fmt.Errorf("inserting planet %q: %w", record.Name, err)
		}
	}
	return nil
}

func (l *Loader) insertPeople(tx *sql.Tx, records []personRecord) error {
	for _, record := range records {
		id, err := resourceId(record.URL)
		if err != nil {
			l.Logger.WithField("url", record.URL).Warn("skipping person with malformed URL")
			continue
		}
		// the homeworld subselect leaves the column null when the referenced
		// planet isn't part of the dataset
		if _, err = tx.Exec(`
			INSERT INTO people (id, name, birth_year, eye_color, gender, hair_color, height,
				mass, skin_color, homeworld_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT id FROM planets WHERE id = ?))`,
			id, record.Name, record.BirthYear, record.EyeColor, record.Gender,
			record.HairColor, record.Height, record.Mass, record.SkinColor,
			homeworldId(record.Homeworld)); err != nil {
			return fmt.Errorf("inserting person %q: %w", record.Name, err)
		}
	}
	return nil
}

func (l *Loader) insertFilms(tx *sql.Tx, records []filmRecord) error {
	for _, record := range records {
		id, err := resourceId(record.URL)
		if err != nil {
			l.Logger.WithField("url", record.URL).Warn("skipping film with malformed URL")
			continue
		}
		released, err := time.Parse("2006-01-02", record.ReleaseDate)
		if err != nil {
			return fmt.Errorf("parsing release date of %q: %w", record.Title, err)
		}
		if _, err = tx.Exec(`
			INSERT INTO films (id, title, episode_id, opening_crawl, director, producer, release_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, record.Title, record.EpisodeId, record.OpeningCrawl, record.Director,
			record.Producer, released); err != nil {
			return fmt.Errorf("inserting film %q: %w", record.Title, err)
		}
	}
	return nil
}

func (l *Loader) insertSpecies(tx *sql.Tx, records []speciesRecord) error {
	for _, record := range records {
		id, err := resourceId(record.URL)
		if err != nil {
			l.Logger.WithField("url", record.URL).Warn("skipping species with malformed URL")
			continue
		}
		if _, err = tx.Exec(`
			INSERT INTO species (id, name, classification, designation, average_height,
				average_lifespan, eye_colors, hair_colors, skin_colors, language, homeworld_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT id FROM planets WHERE id = ?))`,
			id, record.Name, record.Classification, record.Designation, record.AverageHeight,
			record.AverageLifespan, record.EyeColors, record.HairColors, record.SkinColors,
			record.Language, homeworldId(record.Homeworld)); err != nil {
			return fmt.Errorf("inserting species %q: %w", record.Name, err)
		}
	}
	return nil
}

func (l *Loader) insertStarships(tx *sql.Tx, records []starshipRecord) error {
	for _, record := range records {
		id, err := resourceId(record.URL)
		if err != nil {
			l.Logger.WithField("url", record.URL).Warn("skipping starship with malformed URL")
			continue
		}
		if _, err = tx.Exec(`
			INSERT INTO starships (id, name, model, starship_class, manufacturer, cost_in_credits,
				length, crew, passengers, max_atmosphering_speed, hyperdrive_rating, mglt,
				cargo_capacity, consumables)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, record.Name, record.Model, record.StarshipClass, record.Manufacturer,
			record.CostInCredits, record.Length, record.Crew, record.Passengers,
			record.MaxAtmospheringSpeed, record.HyperdriveRating, record.MGLT,
			record.CargoCapacity, record.Consumables); err != nil {
			return fmt.Errorf("inserting starship %q: %w", record.Name, err)
		}
	}
	return nil
}

func (l *Loader) insertVehicles(tx *sql.Tx, records []vehicleRecord) error {
	for _, record := range records {
		id, err := resourceId(record.URL)
		if err != nil {
			l.Logger.WithField("url", record.URL).Warn("skipping vehicle with malformed URL")
			continue
		}
		if _, err = tx.Exec(`
			INSERT INTO vehicles (id, name, model, vehicle_class, manufacturer, length,
				cost_in_credits, crew, passengers, max_atmosphering_speed, cargo_capacity, consumables)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, record.Name, record.Model, record.VehicleClass, record.Manufacturer,
			record.Length, record.CostInCredits, record.Crew, record.Passengers,
			record.MaxAtmospheringSpeed, record.CargoCapacity, record.Consumables); err != nil {
			return fmt.Errorf("inserting vehicle %q: %w", record.Name, err)
		}
	}
	return nil
}

// link inserts one join row per cross-reference URL, ignoring duplicates (the
// dataset declares most relations from both sides) and references that don't
// resolve to loaded rows.
func (l *Loader) link(tx *sql.Tx, joinTable, leftColumn, rightColumn, leftTable, rightTable string, leftId int64, rightURLs []string) error {
	for _, rightURL := range rightURLs {
		rightId, err := resourceId(rightURL)
		if err != nil {
			l.Logger.WithField("url", rightURL).Warn("skipping malformed cross-reference")
			continue
		}
		// table and column names come from the fixed call sites above
		if _, err = tx.Exec(fmt.Sprintf(`
			INSERT OR IGNORE INTO %s (%s, %s)
			SELECT ?, ?
			WHERE EXISTS (SELECT 1 FROM %s WHERE id = ?) AND EXISTS (SELECT 1 FROM %s WHERE id = ?)`,
			joinTable, leftColumn, rightColumn, leftTable, rightTable),
			leftId, rightId, leftId, rightId); err != nil {
			return fmt.Errorf("linking %s %d to %s %d: %w", leftTable, leftId, rightTable, rightId, err)
		}
	}
	return nil
}

// homeworldId reduces an optional homeworld URL to an id, or 0 when absent or
// malformed; the insert's subselect turns an unresolved id into NULL.
func homeworldId(homeworldURL *string) int64 {
	if homeworldURL == nil || *homeworldURL == "" {
		return 0
	}
	id, err := resourceId(*homeworldURL)
	if err != nil {
		return 0
	}
	return id
}
