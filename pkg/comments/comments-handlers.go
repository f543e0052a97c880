package comments

import (
	"errors"
	"net/http"

	"github.com/atrelle/holonet/pkg/auth"
	"github.com/atrelle/holonet/pkg/httpjson"
	"github.com/atrelle/holonet/pkg/rest"
)

func RegisterHandlers(engine rest.Engine, cr Repository, sr auth.Repository, signer *auth.Signer) {
	engine.Post("/comment/:id/vote", castVote(cr), auth.Auth(sr, signer))
	engine.Post("/comment/:id/delete", deleteComment(cr), auth.Auth(sr, signer))
}

// castVote handles the POST "/comment/:id/vote" route: first votes count,
// repeats toggle off, opposite directions flip.
func castVote(cr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		commentId, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		data, err := httpjson.DecodeValidate[VoteData](request)
		if err != nil {
			httpjson.ValidationError(writer, err)
			return
		}

		tally, err := cr.CastVote(commentId, auth.MustGetUser(request).Id, data.Vote)
		switch {
		case err == nil:
			httpjson.Ok(writer, tally)
		case errors.Is(err, ErrSelfVote):
			httpjson.Forbidden(writer, "You cannot vote on your own comment.")
		case errors.Is(err, ErrNotFound):
			httpjson.NotFound(writer, "Comment not found")
		default:
			rest.GetLogger(request).WithError(err).Error("vote failed")
			httpjson.InternalServerError(writer, err)
		}
	}
}

// deleteComment handles the POST "/comment/:id/delete" route; authors only.
func deleteComment(cr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		commentId, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		switch err = cr.Delete(commentId, auth.MustGetUser(request).Id); {
		case err == nil:
			httpjson.NoContent(writer)
		case errors.Is(err, ErrNotOwner):
			httpjson.Forbidden(writer, "You do not have permission to delete this comment.")
		case errors.Is(err, ErrNotFound):
			httpjson.NotFound(writer, "Comment not found")
		default:
			rest.GetLogger(request).WithError(err).Error("comment deletion failed")
			httpjson.InternalServerError(writer, err)
		}
	}
}
