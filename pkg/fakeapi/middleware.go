package fakeapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ctxKey int

const userIDKey ctxKey = 0

var ErrUnauthenticated = errors.New("Unauthorized")

func withUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserIDFromContext(ctx context.Context) (int, error) {
	id, ok := ctx.Value(userIDKey).(int)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

// Auth resolves a bearer token into a user id on the request context.
// Missing or bad tokens pass through anonymously; handlers decide whether
// a user is required.
func Auth(tokens *TokenIssuer, logger *zap.SugaredLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := tokens.Parse(raw)
		if err != nil {
			logger.Infow("rejected token",
				"path", r.URL.Path,
				"error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func AccessLog(logger *zap.SugaredLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"requestID", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start))
	})
}
