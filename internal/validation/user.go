package validation

import "strings"

// UpsertUserRequest - тело POST /users.
type UpsertUserRequest struct {
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// ValidateUpsertUser нормализует email к нижнему регистру, имя - без краевых пробелов.
func ValidateUpsertUser(req UpsertUserRequest) (email string, name *string, err error) {
	var errs fieldErrors

	email = strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case email == "":
		errs.add("email", "is required")
	case !checkLength(&errs, "email", email, MaxEmailLength):
	case !IsEmail(email):
		errs.add("email", "must be a valid email address")
	}

	if n := optionalText(req.Name); n != nil && checkLength(&errs, "name", *n, MaxNameLength) {
		name = n
	}

	return email, name, errs.err()
}
