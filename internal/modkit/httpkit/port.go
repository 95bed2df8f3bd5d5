package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perrs "shelfsync/internal/platform/errors"
)

// Port implements middleware.AuthPort over an Authorization: Bearer header
type Port struct {
	check func(token string) (user string, err error)
}

// Parse returns the user behind the bearer token, any failure is unauthorized
func (p *Port) Parse(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const scheme = "bearer"
	if len(s) < len(scheme) || !strings.EqualFold(s[:len(scheme)], scheme) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	token := strings.TrimSpace(s[len(scheme):])
	if token == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	if p == nil || p.check == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	user, err := p.check(token)
	if err != nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return user, nil
}

// StaticToken accepts exactly one shared bearer token and names its holder user
// an empty token accepts nothing
func StaticToken(token, user string) *Port {
	want := []byte(token)
	return &Port{check: func(got string) (string, error) {
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return "", perrs.Unauthorizedf("invalid bearer token")
		}
		return user, nil
	}}
}
