package comments

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind discriminates the one entity type a comment is attached to.
type Kind string

const (
	KindPerson   Kind = "person"
	KindFilm     Kind = "film"
	KindStarship Kind = "starship"
	KindVehicle  Kind = "vehicle"
	KindSpecies  Kind = "species"
	KindPlanet   Kind = "planet"
)

var kinds = []interface{}{KindPerson, KindFilm, KindStarship, KindVehicle, KindSpecies, KindPlanet}

// Target identifies the single entity a comment belongs to. Representing the
// target as a tagged pair, rather than six optional ids, makes the "exactly
// one" rule hold by construction; the mapping to the discriminated columns
// happens in the repository.
type Target struct {
	Kind Kind
	Id   int64
}

func (t Target) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Kind, validation.Required, validation.In(kinds...)),
		validation.Field(&t.Id, validation.Required, validation.Min(1)),
	)
}

// column returns the comments table column holding this target's foreign key.
func (t Target) column() string {
	switch t.Kind {
	case KindPerson:
		return "person_id"
	case KindFilm:
		return "film_id"
	case KindStarship:
		return "starship_id"
	case KindVehicle:
		return "vehicle_id"
	case KindSpecies:
		return "species_id"
	default:
		return "planet_id"
	}
}

// table returns the entity table a target kind refers to.
func (t Target) table() string {
	switch t.Kind {
	case KindPerson:
		return "people"
	case KindFilm:
		return "films"
	case KindStarship:
		return "starships"
	case KindVehicle:
		return "vehicles"
	case KindSpecies:
		return "species"
	default:
		return "planets"
	}
}

type Comment struct {
	Id         int64
	Text       string
	AuthorId   int64
	AuthorName string
	Upvotes    int
	Downvotes  int
	Created    time.Time
}

type AddCommentData struct {
	Text string
}

func (data AddCommentData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Text, validation.Required, validation.Length(1, 200)),
	)
}

// Vote directions as submitted by clients.

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

type VoteData struct {
	Vote Direction
}

func (data VoteData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Vote, validation.Required, validation.In(Up, Down)),
	)
}

// VoteTally reports a comment's counters after a vote was applied.
type VoteTally struct {
	CommentId int64
	Upvotes   int
	Downvotes int
}
