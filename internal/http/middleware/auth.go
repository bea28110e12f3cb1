package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/httputil"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/requestctx"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/tenant"
)

// Auth valida o JWT, resolve o handle do tenant a partir da claim e injeta
// ambos no contexto. Toda rota autenticada opera somente sobre o datastore do
// tenant do token; nenhuma consulta cruzada é construível a partir daqui.
func Auth(logger *zerolog.Logger, manager *auth.Manager, resolver *tenant.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				logger.Error().Msg("token manager não configurado")
				httputil.RespondError(w, http.StatusInternalServerError, "authentication service unavailable")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := manager.ValidateToken(parts[1])
			if err != nil {
				logger.Debug().Err(err).Msg("invalid token")
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if strings.TrimSpace(claims.TenantKey) == "" {
				logger.Error().Msg("token sem chave de tenant")
				httputil.RespondError(w, http.StatusForbidden, "invalid tenant context")
				return
			}

			handle, err := resolver.Resolve(r.Context(), claims.TenantKey)
			if err != nil {
				logger.Error().Err(err).Str("tenant", claims.TenantKey).Msg("falha ao resolver datastore do tenant")
				httputil.RespondError(w, http.StatusInternalServerError, "tenant datastore unavailable")
				return
			}

			ctx := requestctx.WithClaims(r.Context(), claims)
			ctx = requestctx.WithHandle(ctx, handle)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORS adiciona headers de CORS para permitir acesso dos terminais web.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Tenant-Key")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adiciona headers de segurança às respostas.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// RecoverPanic recupera de panics e retorna um erro 500.
func RecoverPanic(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("recovered from panic")

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
