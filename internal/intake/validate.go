// Package intake validates raw job-application form input into a well-typed
// draft. Validation is pure and deterministic: no persistence, no clock, no
// side effects. Rules are checked in a fixed order and the first failure wins,
// mirroring how the submission form reports a single error at a time.
//
// Error messages are the exact pt-BR copy shown to the submitter, so handlers
// can surface them verbatim.
package intake

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Age bounds accepted on the intake form.
const (
	MinAge = 18
	MaxAge = 70
)

// Validation failures, surfaced verbatim to the submitter. They are sentinel
// values so callers can branch with errors.Is while still printing the
// user-facing message.
var (
	// ErrMissingField is returned when any of the four form fields is empty.
	ErrMissingField = errors.New("Todos os campos são obrigatórios")

	// ErrInvalidAge is returned when age does not parse or is outside [18, 70].
	ErrInvalidAge = fmt.Errorf("Idade deve ser entre %d e %d anos", MinAge, MaxAge)

	// ErrInvalidPhone is returned when the phone contains anything but digits.
	ErrInvalidPhone = errors.New("Telefone deve conter apenas números")

	// ErrInvalidIDGame is returned when the in-game id contains anything but digits.
	ErrInvalidIDGame = errors.New("ID deve conter apenas números")
)

// digitsRE accepts one or more ASCII digits and nothing else. Any length is
// fine; the form imposes no upper bound on phone or id length.
var digitsRE = regexp.MustCompile(`^\d+$`)

// RawIntake carries the form fields exactly as submitted, before any parsing.
// Age arrives as a string because the form does.
type RawIntake struct {
	FullName string `json:"full_name"`
	Age      string `json:"age"`
	Phone    string `json:"phone"`
	IDGame   string `json:"id_game"`
}

// Draft is a validated application draft ready for persistence. Phone and
// IDGame hold the raw digit strings; FullName is trimmed.
type Draft struct {
	FullName string
	Age      int
	Phone    string
	IDGame   string
}

// Validate checks raw form input and returns a Draft or the first failing
// rule's error. Order matters and matches the submission form:
//
//  1. all four fields present and non-empty   → ErrMissingField
//  2. age parses to an integer in [18, 70]    → ErrInvalidAge
//  3. phone matches ^\d+$                     → ErrInvalidPhone
//  4. id_game matches ^\d+$                   → ErrInvalidIDGame
func Validate(raw RawIntake) (Draft, error) {
	name := strings.TrimSpace(raw.FullName)
	ageStr := strings.TrimSpace(raw.Age)
	phone := strings.TrimSpace(raw.Phone)
	idGame := strings.TrimSpace(raw.IDGame)

	if name == "" || ageStr == "" || phone == "" || idGame == "" {
		return Draft{}, ErrMissingField
	}

	age, err := strconv.Atoi(ageStr)
	if err != nil || age < MinAge || age > MaxAge {
		return Draft{}, ErrInvalidAge
	}

	if !digitsRE.MatchString(phone) {
		return Draft{}, ErrInvalidPhone
	}

	if !digitsRE.MatchString(idGame) {
		return Draft{}, ErrInvalidIDGame
	}

	return Draft{
		FullName: name,
		Age:      age,
		Phone:    phone,
		IDGame:   idGame,
	}, nil
}

// IsValidationError reports whether err is one of the intake sentinels, i.e.
// a user-correctable failure whose message is safe to show as-is.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidAge) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrInvalidIDGame)
}

// nonDigitRE strips everything that is not a digit before display grouping.
var nonDigitRE = regexp.MustCompile(`\D`)

// FormatPhone groups a digit string for display: 11+ digits become
// "(DD) DDDDD-DDDD", exactly 10 become "(DD) DDDD-DDDD", anything shorter is
// returned as plain digits. The grouping is cosmetic only — the stored value
// is always the raw digit string, and FormatPhone never alters digits.
func FormatPhone(value string) string {
	digits := nonDigitRE.ReplaceAllString(value, "")
	switch {
	case len(digits) >= 11:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:7], digits[7:11]) + digits[11:]
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:])
	default:
		return digits
	}
}
