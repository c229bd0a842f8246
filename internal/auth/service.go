package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminDisabled     = errors.New("rechargement manuel désactivé")
	ErrMissingAdminToken = errors.New("jeton administrateur manquant")
	ErrInvalidAdminToken = errors.New("jeton administrateur invalide")
)

// Verifier vérifie le jeton administrateur contre un hash bcrypt
type Verifier struct {
	hash []byte
}

// NewVerifier crée un Verifier ; un hash vide désactive l'accès administrateur
func NewVerifier(tokenHash string) *Verifier {
	return &Verifier{hash: []byte(strings.TrimSpace(tokenHash))}
}

// Enabled indique si un jeton est configuré
func (v *Verifier) Enabled() bool {
	return len(v.hash) > 0
}

// Check compare le jeton présenté au hash configuré
func (v *Verifier) Check(token string) error {
	if !v.Enabled() {
		return ErrAdminDisabled
	}
	if token == "" {
		return ErrMissingAdminToken
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(token)); err != nil {
		return ErrInvalidAdminToken
	}
	return nil
}

// HashToken produit le hash bcrypt à placer dans admin.token_hash
func HashToken(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrMissingAdminToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// tokenFromHeader extrait le jeton de "Authorization: Bearer" ou "X-Admin-Token"
func tokenFromHeader(authorization, adminHeader string) string {
	if adminHeader != "" {
		return strings.TrimSpace(adminHeader)
	}
	const prefix = "bearer "
	if len(authorization) > len(prefix) && strings.EqualFold(authorization[:len(prefix)], prefix) {
		return strings.TrimSpace(authorization[len(prefix):])
	}
	return ""
}
