package users

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// MinNameLength is the shortest accepted user name, in characters.
const MinNameLength = 3

// ValidationKind classifies a rejected name.
type ValidationKind string

const KindTooShort ValidationKind = "too_short"

// ValidationError reports a client-supplied name that fails the name rules.
// Message describes the first violated rule and is safe to return to callers.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// OptionalString is a JSON field that remembers whether it was present in
// the request body and whether its value was a JSON string.
type OptionalString struct {
	Value    string
	Present  bool
	IsString bool
}

// Some returns a present string value.
func Some(s string) OptionalString {
	return OptionalString{Value: s, Present: true, IsString: true}
}

// UnmarshalJSON implements json.Unmarshaler. Non-string values are
// recorded, not rejected, so that Validate can report them.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	var s string
	if err := json.Unmarshal(data, &s); err != nil || string(data) == "null" {
		o.Value, o.IsString = "", false
		return nil
	}
	o.Value, o.IsString = s, true
	return nil
}

// Validate checks a candidate user name and returns it trimmed.
func Validate(name OptionalString) (string, error) {
	switch {
	case !name.Present:
		return "", &ValidationError{Kind: KindTooShort, Message: "name is required"}
	case !name.IsString:
		return "", &ValidationError{Kind: KindTooShort, Message: "name must be a string"}
	}

	trimmed := strings.TrimSpace(name.Value)
	if utf8.RuneCountInString(trimmed) < MinNameLength {
		return "", &ValidationError{Kind: KindTooShort, Message: "name must be at least 3 characters"}
	}
	return trimmed, nil
}
