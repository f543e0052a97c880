package users

import (
	"errors"
	"net/http"

	"github.com/atrelle/holonet/pkg/auth"
	"github.com/atrelle/holonet/pkg/httpjson"
	"github.com/atrelle/holonet/pkg/rest"
)

func RegisterHandlers(engine rest.Engine, ur UserRepository, sr auth.Repository, signer *auth.Signer) {
	engine.Post("/signup", signUp(ur))
	engine.Post("/login", logIn(ur, sr, signer))
	engine.Post("/logout", logOut(sr, signer), auth.Auth(sr, signer))

	engine.Get("/profile/:id", getProfile(ur), auth.Auth(sr, signer))
	engine.Get("/edit/:id", getAccount(), auth.Auth(sr, signer))
	engine.Post("/edit/:id", editUser(ur), auth.Auth(sr, signer))
	engine.Post("/edit/:id/delete", deleteUser(ur), auth.Auth(sr, signer))
}

// signUp handles the POST "/signup" route.
func signUp(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := httpjson.DecodeValidate[SignupData](request)
		if err != nil {
			httpjson.ValidationError(writer, err)
			return
		}

		newUser, err := ur.Register(data)
		switch {
		case err == nil:
			httpjson.Created(writer, newUser)
		case errors.Is(err, ErrDuplicateUsername):
			httpjson.Conflict(writer, "Username already exists, please choose a different one.")
		case errors.Is(err, ErrDuplicateEmail):
			httpjson.Conflict(writer, "Email address is already registered, please use a different one.")
		default:
			rest.GetLogger(request).WithError(err).Error("signup failed")
			httpjson.InternalServerError(writer, err)
		}
	}
}

// logIn handles the POST "/login" route, establishing a session on success.
func logIn(ur UserRepository, sr auth.Repository, signer *auth.Signer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := httpjson.DecodeValidate[LoginData](request)
		if err != nil {
			httpjson.ValidationError(writer, err)
			return
		}

		user, err := ur.Authenticate(data.Username, data.Password)
		if errors.Is(err, ErrLoginFailed) {
			httpjson.UnauthorisedWithMessage(writer, "Login unsuccessful. Please check your username and password.")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("login failed")
			httpjson.InternalServerError(writer, err)
			return
		}

		token, err := sr.AddSession(user.Id)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't establish session")
			httpjson.InternalServerError(writer, err)
			return
		}

		auth.SetCookie(writer, signer, token)
		httpjson.Ok(writer, user)
	}
}

// logOut handles the POST "/logout" route, revoking the caller's session.
func logOut(sr auth.Repository, signer *auth.Signer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		// the Auth middleware already verified the cookie, so the token parses
		token, err := auth.GetToken(request, signer)
		if err == nil {
			_ = sr.DeleteSession(token)
		}

		auth.ClearCookie(writer)
		httpjson.NoContent(writer)
	}
}

// getProfile handles the GET "/profile/:id" route; only the owner may view it.
func getProfile(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		userId, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		if auth.MustGetUser(request).Id != userId {
			httpjson.Forbidden(writer, "You do not have permission to view this profile.")
			return
		}

		user, err := ur.GetUserById(userId)
		if err != nil {
			httpjson.NotFound(writer, "User not found")
			return
		}

		comments, err := ur.GetComments(userId)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't fetch profile comments")
			httpjson.InternalServerError(writer, err)
			return
		}

		httpjson.Ok(writer, Profile{User: user, Comments: comments})
	}
}

// getAccount handles the GET "/edit/:id" route, returning the editable fields.
func getAccount() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		userId, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		var user = auth.MustGetUser(request)
		if user.Id != userId {
			httpjson.Forbidden(writer, "You do not have permission to edit this user.")
			return
		}

		httpjson.Ok(writer, Account{Username: user.Username, Email: user.Email})
	}
}

// editUser handles the POST "/edit/:id" route; the current password must be
// re-entered to authorise any change.
func editUser(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		userId, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		if auth.MustGetUser(request).Id != userId {
			httpjson.Forbidden(writer, "You do not have permission to edit this user.")
			return
		}

		data, err := httpjson.DecodeValidate[UpdateUserData](request)
		if err != nil {
			httpjson.ValidationError(writer, err)
			return
		}

		switch err = ur.Update(userId, data); {
		case err == nil:
			httpjson.NoContent(writer)
		case errors.Is(err, ErrWrongPassword):
			httpjson.Forbidden(writer, "Incorrect current password. Changes not saved.")
		case errors.Is(err, ErrDuplicateUsername):
			httpjson.Conflict(writer, "Username already exists. Please choose a different one.")
		case errors.Is(err, ErrDuplicateEmail):
			httpjson.Conflict(writer, "Email address is already registered, please use a different one.")
		default:
			rest.GetLogger(request).WithError(err).Error("account edit failed")
			httpjson.InternalServerError(writer, err)
		}
	}
}

// deleteUser handles the POST "/edit/:id/delete" route; only the owner may
// delete the account, and their comments and votes go with it.
func deleteUser(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		userId, err := rest.GetIntParam(request, "id")
		if err != nil {
			httpjson.BadRequest(writer)
			return
		}

		if auth.MustGetUser(request).Id != userId {
			httpjson.Forbidden(writer, "You do not have permission to delete this user.")
			return
		}

		if err = ur.Delete(userId); err != nil {
			rest.GetLogger(request).WithError(err).Error("account deletion failed")
			httpjson.InternalServerError(writer, err)
			return
		}

		// the session row vanished with the cascade; drop the cookie too
		auth.ClearCookie(writer)
		httpjson.NoContent(writer)
	}
}
