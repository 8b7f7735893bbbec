package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"order-relay/internal/model"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const submitterKey contextKey = "submitter"

// WithSubmitter returns a copy of ctx carrying the authenticated submitter.
func WithSubmitter(ctx context.Context, s model.Submitter) context.Context {
	return context.WithValue(ctx, submitterKey, s)
}

// SubmitterFrom returns the submitter stored by SubmitterAuth.
func SubmitterFrom(ctx context.Context) (model.Submitter, bool) {
	s, ok := ctx.Value(submitterKey).(model.Submitter)
	return s, ok
}

// SubmitterAuth validates an HS256 bearer token and stores the submitter it
// names in the request context. The token must carry a UUID "sub" claim and a
// non-empty "name" claim. Other claims are ignored.
func SubmitterAuth(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				unauthorised(w, "missing bearer token")
				return
			}

			scheme, token, found := strings.Cut(raw, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("invalid authorization header")
				unauthorised(w, "invalid authorization header")
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(strings.TrimSpace(token), claims, keyFunc); err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
				unauthorised(w, "invalid token")
				return
			}

			submitter, err := submitterFromClaims(claims)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token claims invalid")
				unauthorised(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubmitter(r.Context(), submitter)))
		})
	}
}

func submitterFromClaims(claims jwt.MapClaims) (model.Submitter, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return model.Submitter{}, err
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return model.Submitter{}, err
	}

	name, _ := claims["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Submitter{}, jwt.ErrTokenInvalidClaims
	}

	return model.Submitter{UserID: userID, DisplayName: name}, nil
}

func unauthorised(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Success: false,
		Error:   model.ErrCodeUnauthorised,
		Message: message,
	})
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("request_id", chimiddleware.GetReqID(r.Context())).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(model.ErrorResponse{
						Success: false,
						Error:   model.ErrCodeInternalError,
						Message: "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
