package admin

import (
	"strings"

	"github.com/go-account-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Whitelist holds the statically configured admin accounts.
type Whitelist struct {
	hashes map[string]string
}

func NewWhitelist(admins []config.AdminCredential) *Whitelist {
	w := &Whitelist{hashes: make(map[string]string, len(admins))}
	for _, a := range admins {
		w.hashes[normalize(a.Email)] = a.PasswordHash
	}
	return w
}

// Contains reports whether email belongs to an admin.
func (w *Whitelist) Contains(email string) bool {
	_, ok := w.hashes[normalize(email)]
	return ok
}

// Validate reports whether email/password match a whitelisted admin.
func (w *Whitelist) Validate(email, password string) bool {
	hash, ok := w.hashes[normalize(email)]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
