package sqlite

const schema = `
BEGIN TRANSACTION;

CREATE TABLE
	IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created datetime NOT NULL,
		updated datetime NOT NULL
	);

CREATE TABLE
	IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created datetime NOT NULL
	);

CREATE TABLE
	IF NOT EXISTS planets (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		diameter TEXT,
		rotation_period TEXT,
		orbital_period TEXT,
		gravity TEXT,
		population TEXT,
		climate TEXT,
		terrain TEXT,
		surface_water TEXT
	);

CREATE TABLE
	IF NOT EXISTS people (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		birth_year TEXT,
		eye_color TEXT,
		gender TEXT,
		hair_color TEXT,
		height TEXT,
		mass TEXT,
		skin_color TEXT,
		homeworld_id INTEGER REFERENCES planets (id)
	);

CREATE TABLE
	IF NOT EXISTS films (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL UNIQUE,
		episode_id INTEGER,
		opening_crawl TEXT,
		director TEXT,
		producer TEXT,
		release_date date
	);

CREATE TABLE
	IF NOT EXISTS starships (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		model TEXT,
		starship_class TEXT,
		manufacturer TEXT,
		cost_in_credits TEXT,
		length TEXT,
		crew TEXT,
		passengers TEXT,
		max_atmosphering_speed TEXT,
		hyperdrive_rating TEXT,
		mglt TEXT,
		cargo_capacity TEXT,
		consumables TEXT
	);

CREATE TABLE
	IF NOT EXISTS vehicles (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		model TEXT,
		vehicle_class TEXT,
		manufacturer TEXT,
		length TEXT,
		cost_in_credits TEXT,
		crew TEXT,
		passengers TEXT,
		max_atmosphering_speed TEXT,
		cargo_capacity TEXT,
		consumables TEXT
	);

CREATE TABLE
	IF NOT EXISTS species (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		classification TEXT,
		designation TEXT,
		average_height TEXT,
		average_lifespan TEXT,
		eye_colors TEXT,
		hair_colors TEXT,
		skin_colors TEXT,
		language TEXT,
		homeworld_id INTEGER REFERENCES planets (id)
	);

CREATE TABLE
	IF NOT EXISTS people_films (
		person_id INTEGER NOT NULL REFERENCES people (id),
		film_id INTEGER NOT NULL REFERENCES films (id),
		PRIMARY KEY (person_id, film_id)
	);

CREATE TABLE
	IF NOT EXISTS species_people (
		species_id INTEGER NOT NULL REFERENCES species (id),
		person_id INTEGER NOT NULL REFERENCES people (id),
		PRIMARY KEY (species_id, person_id)
	);

CREATE TABLE
	IF NOT EXISTS people_starships (
		person_id INTEGER NOT NULL REFERENCES people (id),
		starship_id INTEGER NOT NULL REFERENCES starships (id),
		PRIMARY KEY (person_id, starship_id)
	);

CREATE TABLE
	IF NOT EXISTS people_vehicles (
		person_id INTEGER NOT NULL REFERENCES people (id),
		vehicle_id INTEGER NOT NULL REFERENCES vehicles (id),
		PRIMARY KEY (person_id, vehicle_id)
	);

CREATE TABLE
	IF NOT EXISTS films_species (
		film_id INTEGER NOT NULL REFERENCES films (id),
		species_id INTEGER NOT NULL REFERENCES species (id),
		PRIMARY KEY (film_id, species_id)
	);

CREATE TABLE
	IF NOT EXISTS films_starships (
		film_id INTEGER NOT NULL REFERENCES films (id),
		starship_id INTEGER NOT NULL REFERENCES starships (id),
		PRIMARY KEY (film_id, starship_id)
	);

CREATE TABLE
	IF NOT EXISTS films_vehicles (
		film_id INTEGER NOT NULL REFERENCES films (id),
		vehicle_id INTEGER NOT NULL REFERENCES vehicles (id),
		PRIMARY KEY (film_id, vehicle_id)
	);

CREATE TABLE
	IF NOT EXISTS films_planets (
		film_id INTEGER NOT NULL REFERENCES films (id),
		planet_id INTEGER NOT NULL REFERENCES planets (id),
		PRIMARY KEY (film_id, planet_id)
	);

CREATE TABLE
	IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL CHECK (length ("text") > 0 AND length ("text") <= 200),
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		person_id INTEGER REFERENCES people (id) ON DELETE CASCADE,
		film_id INTEGER REFERENCES films (id) ON DELETE CASCADE,
		starship_id INTEGER REFERENCES starships (id) ON DELETE CASCADE,
		vehicle_id INTEGER REFERENCES vehicles (id) ON DELETE CASCADE,
		species_id INTEGER REFERENCES species (id) ON DELETE CASCADE,
		planet_id INTEGER REFERENCES planets (id) ON DELETE CASCADE,
		upvotes INTEGER NOT NULL DEFAULT 0,
		downvotes INTEGER NOT NULL DEFAULT 0,
		created datetime NOT NULL,
		CHECK (
			(person_id IS NOT NULL) + (film_id IS NOT NULL) + (starship_id IS NOT NULL)
			+ (vehicle_id IS NOT NULL) + (species_id IS NOT NULL) + (planet_id IS NOT NULL) = 1
		)
	);

CREATE TABLE
	IF NOT EXISTS comment_votes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id INTEGER NOT NULL REFERENCES comments (id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		vote BOOLEAN NOT NULL,
		UNIQUE (comment_id, user_id)
	);

COMMIT;
`
