package validate

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	reUsername = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)
	reUUID     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ProductID accepts only the canonical hyphenated uuid form.
func ProductID(s string) (uuid.UUID, bool) {
	s = strings.TrimSpace(s)
	if !reUUID.MatchString(s) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Password only bounds the length; the credential store decides the rest.
func Password(s string) bool {
	l := len(s)
	return l >= 1 && l <= 128
}
