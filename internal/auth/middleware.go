package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Middleware protège les routes d'administration
type Middleware struct {
	verifier *Verifier
	logger   *zerolog.Logger
}

// NewMiddleware crée le middleware
func NewMiddleware(verifier *Verifier, logger *zerolog.Logger) *Middleware {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Middleware{verifier: verifier, logger: logger}
}

// RequireAdmin refuse la requête sans jeton administrateur valide
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromHeader(r.Header.Get("Authorization"), r.Header.Get("X-Admin-Token"))

		if err := m.verifier.Check(token); err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrAdminDisabled) {
				status = http.StatusForbidden
			}
			m.logger.Warn().
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Err(err).
				Msg("Accès administrateur refusé")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		next.ServeHTTP(w, r)
	})
}
