package galaxy

import (
	"errors"
	"net/http"

	"github.com/atrelle/holonet/pkg/auth"
	"github.com/atrelle/holonet/pkg/comments"
	"github.com/atrelle/holonet/pkg/httpjson"
	"github.com/atrelle/holonet/pkg/rest"
)

func RegisterHandlers(engine rest.Engine, gr Repository, cr comments.Repository, sr auth.Repository, signer *auth.Signer) {
	engine.Get("/", index())
	engine.Get("/search", search(gr))

	engine.Get("/characters", listPeople(gr))
	engine.Get("/characters/:id", personDetail(gr, cr))
	engine.Post("/characters/:id", addComment(cr, comments.KindPerson), auth.Auth(sr, signer))

	engine.Get("/films", listFilms(gr))
	engine.Get("/films/:id", filmDetail(gr, cr))
	engine.Post("/films/:id", addComment(cr, comments.KindFilm), auth.Auth(sr, signer))

	engine.Get("/starships", listStarships(gr))
	engine.Get("/starships/:id", starshipDetail(gr, cr))
	engine.Post("/starships/:id", addComment(cr, comments.KindStarship), auth.Auth(sr, signer))

	engine.Get("/vehicles", listVehicles(gr))
	engine.Get("/vehicles/:id", vehicleDetail(gr, cr))
	engine.Post("/vehicles/:id", addComment(cr, comments.KindVehicle), auth.Auth(sr, signer))

	engine.Get("/species", listSpecies(gr))
	engine.Get("/species/:id", speciesDetail(gr, cr))
	engine.Post("/species/:id", addComment(cr, comments.KindSpecies), auth.Auth(sr, signer))

	engine.Get("/planets", listPlanets(gr))
	engine.Get("/planets/:id", planetDetail(gr, cr))
	engine.Post("/planets/:id", addComment(cr, comments.KindPlanet), auth.Auth(sr, signer))
}

// index handles the GET "/" landing route.
func index() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		httpjson.Ok(writer, struct {
			Name        string
			Collections []string
		}{
			Name:        "holonet",
			Collections: []string{"characters", "films", "starships", "vehicles", "species", "planets"},
		})
	}
}

// search handles the GET "/search?query=" route, grouping substring matches by
// entity type.
func search(gr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		results, err := gr.Search(request.URL.Query().Get("query"))
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("search failed")
			httpjson.InternalServerError(writer, err)
			return
		}
		httpjson.Ok(writer, results)
	}
}

func listPeople(gr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respondList(writer, request)(gr.ListPeople())
	}
}

func listFilms(gr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respondList(writer, request)(gr.ListFilms())
	}
}

func listStarships(gr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respondList(writer, request)(gr.ListStarships())
	}
}

func listVehicles(gr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respondList(writer, request)(gr.ListVehicles())
	}
}

func listSpecies(gr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respondList(writer, request)(gr.ListSpecies())
	}
}

func listPlanets(gr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respondList(writer, request)(gr.ListPlanets())
	}
}

// respondList writes a listing query's outcome, logging storage failures.
func respondList(writer http.ResponseWriter, request *http.Request) func(payload any, err error) {
	return func(payload any, err error) {
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("listing query failed")
			httpjson.InternalServerError(writer, err)
			return
		}
		httpjson.Ok(writer, payload)
	}
}

func personDetail(gr Repository, cr comments.Repository) http.HandlerFunc {
	return detail(comments.KindPerson, cr, func(id int64) (any, error) { return gr.GetPerson(id) })
}

func filmDetail(gr Repository, cr comments.Repository) http.HandlerFunc {
	return detail(comments.KindFilm, cr, func(id int64) (any, error) { return gr.GetFilm(id) })
}

func starshipDetail(gr Repository, cr comments.Repository) http.HandlerFunc {
	return detail(comments.KindStarship, cr, func(id int64) (any, error) { return gr.GetStarship(id) })
}

func vehicleDetail(gr Repository, cr comments.Repository) http.HandlerFunc {
	return detail(comments.KindVehicle, cr, func(id int64) (any, error) { return gr.GetVehicle(id) })
}

func speciesDetail(gr Repository, cr comments.Repository) http.HandlerFunc {
	return detail(comments.KindSpecies, cr, func(id int64) (any, error) { return gr.GetSpecies(id) })
}

func planetDetail(gr Repository, cr comments.Repository) http.HandlerFunc {
	return detail(comments.KindPlanet, cr, func(id int64) (any, error) { return gr.GetPlanet(id) })
}

// detail builds the GET handler for one entity type: the entity with its
// related collections, plus its comments.
func detail(kind comments.Kind, cr comments.Repository, get func(id int64) (any, error)) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		entity, err := get(id)
		if errors.Is(err, ErrNotFound) {
			httpjson.NotFound(writer, "Entity not found")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("detail query failed")
			httpjson.InternalServerError(writer, err)
			return
		}

		entityComments, err := cr.ListFor(comments.Target{Kind: kind, Id: id})
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't fetch entity comments")
			httpjson.InternalServerError(writer, err)
			return
		}

		httpjson.Ok(writer, struct {
			Entity   any
			Comments []comments.Comment
		}{entity, entityComments})
	}
}

// addComment builds the authenticated POST handler attaching a comment to one
// entity of the given kind.
func addComment(cr comments.Repository, kind comments.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		data, err := httpjson.DecodeValidate[comments.AddCommentData](request)
		if err != nil {
			httpjson.ValidationError(writer, err)
			return
		}

		comment, err := cr.Add(auth.MustGetUser(request).Id, comments.Target{Kind: kind, Id: id}, data)
		switch {
		case err == nil:
			httpjson.Created(writer, comment)
		case errors.Is(err, comments.ErrNotFound):
			httpjson.NotFound(writer, "Entity not found")
		default:
			rest.GetLogger(request).WithError(err).Error("couldn't add comment")
			httpjson.InternalServerError(writer, err)
		}
	}
}
