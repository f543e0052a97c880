package sqlite

import (
	"database/sql"
	"errors"
	"os"
	"strings"

	// registers the sqlite3 driver for every importer of this package
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type Storage struct {
	Connection *sql.DB
}

// New opens the database at the given path, creating and initialising it from
// the embedded schema when absent. An existing database has its schema
// compared against the embedded one; a mismatch aborts startup rather than
// risking queries against unknown tables.
func New(logger logrus.FieldLogger, path string) (*Storage, error) {

	logger.Println("initialising SQLite DB")

	var connection *sql.DB
	var err error

	// the database already exists, check for its contents
	if _, err = os.Stat(path); err == nil {
		connection, err = getValidConnection(path)
		if err != nil {
			return nil, err
		}
	} else {
		// create the file and initialise the schema; mind the explicit need for foreign keys constraints
		connection, err = sql.Open("sqlite3", getConnectionString(path))
		if err != nil {
			return nil, err
		}
		if _, err = connection.Exec(schema); err != nil {
			return nil, err
		}
	}

	// opening the DB will fail silently when the package is compiled without CGO_ENABLED
	if err = connection.Ping(); err != nil {
		return nil, err
	}
	return &Storage{Connection: connection}, nil
}

func (s *Storage) Close() error {
	return s.Connection.Close()
}

func getValidConnection(path string) (connection *sql.DB, err error) {
	connection, err = sql.Open("sqlite3", getConnectionString(path))
	if err != nil {
		return nil, err
	}

	// read the schema as defined in the storage package
	desired, err := sql.Open("sqlite3", getConnectionString(":memory:"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = desired.Close() }()
	if _, err = desired.Exec(schema); err != nil {
		return nil, err
	}

	// compare the defined schema with the actual one found in the existing database
	desiredTables, err := mapSchema(desired)
	if err != nil {
		return nil, err
	}
	actualTables, err := mapSchema(connection)
	if err != nil {
		return nil, err
	}

	// the database already exists and its schema matches the desired one
	if sameSchemaMap(desiredTables, actualTables) {
		return connection, nil
	}
	return nil, errors.New("schema mismatch")
}

func mapSchema(connection *sql.DB) (tables map[string]string, err error) {

	rows, err := connection.Query(`SELECT name, sql FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}

	// for some reason in memory and on file sqlite schemas differ, possibly due to the hosting platform
	var replacer = strings.NewReplacer(
		"\n\t\t", "",
		"\r\n\t\t", "",
		"\r\n", "",
		"\n", "",
	)

	tables = make(map[string]string)
	var name, sqlCode string
	for rows.Next() {
		if err = rows.Scan(&name, &sqlCode); err != nil {
			return tables, err
		}
		tables[name] = replacer.Replace(sqlCode)
	}

	if err = rows.Err(); err != nil {
		return tables, err
	}

	if err = rows.Close(); err != nil {
		return tables, err
	}

	return tables, err
}

func sameSchemaMap(first, second map[string]string) bool {
	// the second map might be larger than the first, hence the additional length check
	if len(first) != len(second) {
		return false
	}
	for firstKey, firstValue := range first {
		if secondValue, found := second[firstKey]; !found || secondValue != firstValue {
			return false
		}
	}
	return true
}

// getConnectionString provides a configuration string that enables foreign keys
// constraints and immediate write transactions, so that concurrent vote
// updates serialise at transaction start rather than on upgrade.
func getConnectionString(path string) string {
	return path + "?_fk=on&_txlock=immediate"
}
