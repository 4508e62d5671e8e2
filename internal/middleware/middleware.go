package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"

	handlers "quizbook/internal/handler"
	"quizbook/internal/service"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the last middleware runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

// accessToken takes the token from "Authorization: Bearer <token>" or, failing
// that, from the token cookie.
func accessToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if cookie, err := r.Cookie(handlers.AccessCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// Authenticate rejects requests without a valid access token and puts the
// user id into the request context.
func Authenticate(tokens service.TokenService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := accessToken(r)
			if !ok {
				handlers.WriteError(w, "Not authorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				handlers.WriteError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(r.Context(), claims.ID)))
		})
	}
}

// Identify is Authenticate for public routes: a valid token identifies the
// viewer, anything else passes through anonymously.
func Identify(tokens service.TokenService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := accessToken(r); ok {
				if claims, err := tokens.VerifyAccess(token); err == nil {
					r = r.WithContext(handlers.WithUserID(r.Context(), claims.ID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CORS(origin string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func statusColor(code int) func(a ...interface{}) string {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case code >= 400:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %s %s", r.Method, r.URL.Path, statusColor(rec.status)(rec.status), time.Since(start).Round(time.Microsecond))
	})
}
