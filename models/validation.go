package models

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	NameMaxLength     = 50
	EmailMaxLength    = 255
	PasswordMinLength = 6
)

var emailPattern = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-]+(\.[a-z\d\-]+)*\.[a-z]+$`)

// ValidationErrors maps a field name to its messages. An empty value means valid.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) Valid() bool {
	return len(v) == 0
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, msg := range v[field] {
			parts = append(parts, field+" "+msg)
		}
	}
	return strings.Join(parts, ", ")
}

// UserRule is a single check run against a candidate user.
type UserRule func(u *User, errs ValidationErrors)

// UserRules are evaluated in order. Email uniqueness needs the store and is
// checked by the user service after these pass.
var UserRules = []UserRule{
	ValidateName,
	ValidateEmail,
	ValidatePassword,
}

func ValidateUser(u *User) ValidationErrors {
	errs := ValidationErrors{}
	for _, rule := range UserRules {
		rule(u, errs)
	}
	return errs
}

func ValidateName(u *User, errs ValidationErrors) {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		errs.Add("name", "can't be blank")
		return
	}
	if utf8.RuneCountInString(u.Name) > NameMaxLength {
		errs.Add("name", "is too long (maximum is 50 characters)")
	}
}

func ValidateEmail(u *User, errs ValidationErrors) {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		errs.Add("email", "can't be blank")
		return
	}
	if len(email) > EmailMaxLength {
		errs.Add("email", "is too long (maximum is 255 characters)")
		return
	}
	if !emailPattern.MatchString(email) {
		errs.Add("email", "is invalid")
	}
}

// ValidatePassword only applies to new records or when a password is being set.
func ValidatePassword(u *User, errs ValidationErrors) {
	if !u.IsNew() && u.Password == "" && u.PasswordConfirmation == "" {
		return
	}

	if strings.TrimSpace(u.Password) == "" {
		errs.Add("password", "can't be blank")
	} else if utf8.RuneCountInString(u.Password) < PasswordMinLength {
		errs.Add("password", "is too short (minimum is 6 characters)")
	}

	if strings.TrimSpace(u.PasswordConfirmation) == "" {
		errs.Add("password_confirmation", "can't be blank")
	} else if u.Password != u.PasswordConfirmation {
		errs.Add("password_confirmation", "doesn't match Password")
	}
}

func ValidateEssay(e *Essay) ValidationErrors {
	errs := ValidationErrors{}
	if e.UserID == 0 {
		errs.Add("user_id", "can't be blank")
	}
	content := strings.TrimSpace(e.Content)
	if content == "" {
		errs.Add("content", "can't be blank")
	} else if utf8.RuneCountInString(e.Content) > EssayContentMaxLength {
		errs.Add("content", "is too long (maximum is 5000 characters)")
	}
	return errs
}

// NormalizeEmail is applied before every write and every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
