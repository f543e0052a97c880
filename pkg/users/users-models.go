package users

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var usernameRules = []validation.Rule{validation.Required, validation.Length(3, 30), is.UTFLetterNumeric}
var passwordRules = []validation.Rule{validation.Required, validation.Length(8, 50)}

type User struct {
	Id       int64
	Username string
	Email    string
	Created  time.Time
	Updated  time.Time
}

type SignupData struct {
	Username string
	Email    string
	Password string
}

func (data SignupData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, usernameRules...),
		validation.Field(&data.Email, validation.Required, is.Email),
		validation.Field(&data.Password, passwordRules...),
	)
}

type LoginData struct {
	Username string
	Password string
}

func (data LoginData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, validation.Required),
		validation.Field(&data.Password, validation.Required),
	)
}

// UpdateUserData describes an account edit; the current password authorises
// the change even when the password itself stays the same.
type UpdateUserData struct {
	Username    string
	Email       string
	Password    string
	NewPassword string
}

func (data UpdateUserData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, usernameRules...),
		validation.Field(&data.Email, validation.Required, is.Email),
		validation.Field(&data.Password, validation.Required),
		validation.Field(&data.NewPassword, validation.Length(8, 50)),
	)
}

// Account carries the editable fields, returned for form prefills.
type Account struct {
	Username string
	Email    string
}

// ProfileComment pairs one of the user's comments with the entity it targets.
type ProfileComment struct {
	Id         int64
	Text       string
	Upvotes    int
	Downvotes  int
	TargetType string
	TargetId   int64
	TargetName string
	Created    time.Time
}

// Profile is the owner-only view of an account and its comment history.
type Profile struct {
	User     User
	Comments []ProfileComment
}
