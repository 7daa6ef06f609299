package feed

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type AdmissionKind int

const (
	Anonymous AdmissionKind = iota
	Identified
	Rejected
)

func (k AdmissionKind) String() string {
	switch k {
	case Anonymous:
		return "anonymous"
	case Identified:
		return "identified"
	default:
		return "rejected"
	}
}

// Admission is the outcome of the connection handshake. UserID is set only
// for Identified, Reason only for Rejected.
type Admission struct {
	Kind   AdmissionKind
	UserID uuid.UUID
	Reason string
}

// Verifier checks a bearer credential and returns the user it names.
type Verifier interface {
	VerifyAccess(token string) (uuid.UUID, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(token string) (uuid.UUID, error)

func (f VerifierFunc) VerifyAccess(token string) (uuid.UUID, error) {
	return f(token)
}

// Credential returns the bearer token from the Authorization header, falling
// back to the token query parameter.
func Credential(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Admit lets connections without a credential in anonymously and rejects
// only credentials that are present but do not verify.
func Admit(r *http.Request, v Verifier) Admission {
	token := Credential(r)
	if token == "" {
		return Admission{Kind: Anonymous}
	}
	if v == nil {
		return Admission{Kind: Rejected, Reason: "Authentication unavailable"}
	}

	userID, err := v.VerifyAccess(token)
	if err != nil {
		return Admission{Kind: Rejected, Reason: "Authentication error: invalid or expired token"}
	}
	return Admission{Kind: Identified, UserID: userID}
}
