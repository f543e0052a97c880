package galaxy_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrelle/holonet/pkg/galaxy"
	"github.com/atrelle/holonet/pkg/storage/sqlite"
)

// newTestRepository initialises a throwaway database with a small slice of the
// archive: two planets, two people, one film, a starship, a vehicle and a
// species, cross-linked like the real dataset.
func newTestRepository(t *testing.T) galaxy.Repository {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	storage, err := sqlite.New(logger, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	_, err = storage.Connection.Exec(`
		INSERT INTO planets (id, name, diameter, rotation_period, orbital_period, gravity,
			population, climate, terrain, surface_water) VALUES
			(1, 'Tatooine', '10465', '23', '304', '1 standard', '200000', 'arid', 'desert', '1'),
			(2, 'Alderaan', '12500', '24', '364', '1 standard', '2000000000', 'temperate', 'grasslands', '40');

		INSERT INTO people (id, name, birth_year, eye_color, gender, hair_color, height,
			mass, skin_color, homeworld_id) VALUES
			(1, 'Luke Skywalker', '19BBY', 'blue', 'male', 'blond', '172', '77', 'fair', 1),
			(2, 'Leia Organa', '19BBY', 'brown', 'female', 'brown', '150', '49', 'light', 2);

		INSERT INTO starships (id, name, model, starship_class, manufacturer, cost_in_credits,
			length, crew, passengers, max_atmosphering_speed, hyperdrive_rating, mglt,
			cargo_capacity, consumables) VALUES
			(1, 'X-wing', 'T-65 X-wing', 'Starfighter', 'Incom Corporation', '149999',
			'12.5', '1', '0', '1050', '1.0', '100', '110', '1 week');

		INSERT INTO vehicles (id, name, model, vehicle_class, manufacturer, length,
			cost_in_credits, crew, passengers, max_atmosphering_speed, cargo_capacity,
			consumables) VALUES
			(1, 'Snowspeeder', 't-47 airspeeder', 'airspeeder', 'Incom corporation', '4.5',
			'unknown', '2', '0', '650', '10', 'none');

		INSERT INTO species (id, name, classification, designation, average_height,
			average_lifespan, eye_colors, hair_colors, skin_colors, language, homeworld_id) VALUES
			(1, 'Human', 'mammal', 'sentient', '180', '120', 'brown, blue', 'black, blonde',
			'caucasian, black', 'Galactic Basic', NULL);`)
	require.NoError(t, err)

	_, err = storage.Connection.Exec(`
		INSERT INTO films (id, title, episode_id, opening_crawl, director, producer, release_date)
		VALUES (1, 'A New Hope', 4, 'It is a period of civil war.', 'George Lucas',
			'Gary Kurtz, Rick McCallum', ?)`,
		time.Date(1977, time.May, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = storage.Connection.Exec(`
		INSERT INTO people_films VALUES (1, 1), (2, 1);
		INSERT INTO species_people VALUES (1, 1), (1, 2);
		INSERT INTO people_starships VALUES (1, 1);
		INSERT INTO people_vehicles VALUES (1, 1);
		INSERT INTO films_species VALUES (1, 1);
		INSERT INTO films_starships VALUES (1, 1);
		INSERT INTO films_vehicles VALUES (1, 1);
		INSERT INTO films_planets VALUES (1, 1), (1, 2);`)
	require.NoError(t, err)

	return galaxy.NewRepository(storage.Connection)
}

func referenceNames(references []galaxy.Reference) []string {
	names := make([]string, 0, len(references))
	for _, reference := range references {
		names = append(names, reference.Name)
	}
	return names
}

func TestListPeople(t *testing.T) {
	gr := newTestRepository(t)

	people, err := gr.ListPeople()
	require.NoError(t, err)
	require.Len(t, people, 2)

	// id order
	assert.Equal(t, "Luke Skywalker", people[0].Name)
	assert.Equal(t, "Leia Organa", people[1].Name)
	assert.Equal(t, "19BBY", people[0].BirthYear)
}

func TestListFilms(t *testing.T) {
	gr := newTestRepository(t)

	films, err := gr.ListFilms()
	require.NoError(t, err)
	require.Len(t, films, 1)
	assert.Equal(t, "A New Hope", films[0].Title)
	assert.Equal(t, 4, films[0].EpisodeId)
	assert.Equal(t, 1977, films[0].ReleaseDate.Year())
}

func TestGetPerson(t *testing.T) {
	gr := newTestRepository(t)

	person, err := gr.GetPerson(1)
	require.NoError(t, err)
	assert.Equal(t, "Luke Skywalker", person.Name)

	require.NotNil(t, person.Homeworld)
	assert.Equal(t, "Tatooine", person.Homeworld.Name)
	assert.Equal(t, []string{"A New Hope"}, referenceNames(person.Films))
	assert.Equal(t, []string{"Human"}, referenceNames(person.Species))
	assert.Equal(t, []string{"X-wing"}, referenceNames(person.Starships))
	assert.Equal(t, []string{"Snowspeeder"}, referenceNames(person.Vehicles))
}

func TestGetPersonNotFound(t *testing.T) {
	gr := newTestRepository(t)

	_, err := gr.GetPerson(404)
	assert.ErrorIs(t, err, galaxy.ErrNotFound)
}

func TestGetFilm(t *testing.T) {
	gr := newTestRepository(t)

	film, err := gr.GetFilm(1)
	require.NoError(t, err)
	assert.Equal(t, "A New Hope", film.Title)
	assert.Equal(t, []string{"Luke Skywalker", "Leia Organa"}, referenceNames(film.Characters))
	assert.Equal(t, []string{"Tatooine", "Alderaan"}, referenceNames(film.Planets))
	assert.Equal(t, []string{"Human"}, referenceNames(film.Species))
	assert.Equal(t, []string{"X-wing"}, referenceNames(film.Starships))
	assert.Equal(t, []string{"Snowspeeder"}, referenceNames(film.Vehicles))
}

func TestGetStarship(t *testing.T) {
	gr := newTestRepository(t)

	starship, err := gr.GetStarship(1)
	require.NoError(t, err)
	assert.Equal(t, "X-wing", starship.Name)
	assert.Equal(t, "100", starship.MGLT)
	assert.Equal(t, []string{"Luke Skywalker"}, referenceNames(starship.Pilots))
	assert.Equal(t, []string{"A New Hope"}, referenceNames(starship.Films))
}

func TestGetPlanet(t *testing.T) {
	gr := newTestRepository(t)

	planet, err := gr.GetPlanet(1)
	require.NoError(t, err)
	assert.Equal(t, "Tatooine", planet.Name)
	assert.Equal(t, []string{"Luke Skywalker"}, referenceNames(planet.Residents))
	assert.Equal(t, []string{"A New Hope"}, referenceNames(planet.Films))
}

// a species without a recorded homeworld carries no reference at all
func TestGetSpeciesWithoutHomeworld(t *testing.T) {
	gr := newTestRepository(t)

	species, err := gr.GetSpecies(1)
	require.NoError(t, err)
	assert.Nil(t, species.Homeworld)
	assert.Equal(t, []string{"Luke Skywalker", "Leia Organa"}, referenceNames(species.People))
}

func TestSearchGroupsByType(t *testing.T) {
	gr := newTestRepository(t)

	results, err := gr.Search("a")
	require.NoError(t, err)

	assert.Len(t, results.People, 2)
	assert.Len(t, results.Planets, 2)
	assert.Len(t, results.Species, 1)
	require.Len(t, results.Films, 1)
	assert.Equal(t, "film", results.Films[0].Type)
	assert.Equal(t, "A New Hope", results.Films[0].Name)
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	gr := newTestRepository(t)

	results, err := gr.Search("TATOO")
	require.NoError(t, err)
	require.Len(t, results.Planets, 1)
	assert.Equal(t, "Tatooine", results.Planets[0].Name)
	assert.Empty(t, results.People)

	results, err = gr.Search("wing")
	require.NoError(t, err)
	require.Len(t, results.Starships, 1)
	assert.Equal(t, "X-wing", results.Starships[0].Name)
}

func TestSearchBlankQuery(t *testing.T) {
	gr := newTestRepository(t)

	results, err := gr.Search("   ")
	require.NoError(t, err)
	assert.Empty(t, results.People)
	assert.Empty(t, results.Films)
	assert.Empty(t, results.Starships)
	assert.Empty(t, results.Vehicles)
	assert.Empty(t, results.Planets)
	assert.Empty(t, results.Species)
}

// LIKE wildcards in the query are matched literally
func TestSearchEscapesWildcards(t *testing.T) {
	gr := newTestRepository(t)

	results, err := gr.Search("%")
	require.NoError(t, err)
	assert.Empty(t, results.People)
	assert.Empty(t, results.Planets)
}
