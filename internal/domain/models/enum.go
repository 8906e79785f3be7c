// internal/domain/models/enum.go
package models

import (
	"fmt"
	"slices"
	"strings"
)

// EnumError reports a value that is not a member of a closed enumeration.
type EnumError struct {
	Kind    string
	Value   string
	Allowed []string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Kind, e.Value, strings.Join(e.Allowed, ", "))
}

// parseEnum converts s into a member of allowed or returns an *EnumError.
func parseEnum[T ~string](kind, s string, allowed []T) (T, error) {
	v := T(strings.TrimSpace(s))
	if slices.Contains(allowed, v) {
		return v, nil
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", &EnumError{Kind: kind, Value: s, Allowed: names}
}
