package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Annotator identifies one labeler. The uid is stable across sessions so
// cap counting and "mine" queries stay consistent.
type Annotator struct {
	UID         string
	DisplayName string
	Role        string
}

// Resolve builds an Annotator from an external identity. An explicit uid
// wins; otherwise a stable uid is derived from the lowercased email so the
// same person maps to the same uid on every machine.
func Resolve(uid, email, displayName, role string) (Annotator, error) {
	uid = strings.TrimSpace(uid)
	email = strings.ToLower(strings.TrimSpace(email))
	if uid == "" {
		if email == "" {
			return Annotator{}, errors.New("identity requires a uid or an email")
		}
		uid = DeriveUID(email)
	}
	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = nameFromEmail(email)
	}
	return Annotator{
		UID:         uid,
		DisplayName: DisplayName(displayName),
		Role:        strings.ToLower(strings.TrimSpace(role)),
	}, nil
}

// DeriveUID maps an external identity string onto a uuid-shaped stable uid.
func DeriveUID(external string) string {
	sum := sha256.Sum256([]byte("annotator:" + external))
	hexDigest := hex.EncodeToString(sum[:16])
	return strings.Join([]string{
		hexDigest[0:8],
		hexDigest[8:12],
		hexDigest[12:16],
		hexDigest[16:20],
		hexDigest[20:32],
	}, "-")
}

// DisplayName normalizes a free-form name into title case.
func DisplayName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return cases.Title(language.Und).String(raw)
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return strings.TrimSpace(local)
}
