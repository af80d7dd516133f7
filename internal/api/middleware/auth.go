package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/identity"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const (
	msgMissingIdentity = "отсутствует идентификатор пользователя или роль"
	msgInvalidIdentity = "некорректный идентификатор пользователя или роль"
	msgUnknownIdentity = "пользователь не подтвержден"
)

type actorKey struct{}

// WithActor кладет актора в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor возвращает актора, установленного Auth
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// Auth читает X-User-ID и X-User-Role без внешней проверки
func Auth(next http.Handler) http.Handler {
	return NewAuth(nil, nil)(next)
}

// NewAuth читает актора из заголовков и, если задан verifier, подтверждает его.
// Недоступность verifier в режиме fail-open не блокирует запрос.
func NewAuth(verifier ActorVerifier, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idStr := r.Header.Get(HeaderUserID)
			roleStr := r.Header.Get(HeaderUserRole)
			if idStr == "" || roleStr == "" {
				handlers.RespondUnauthorized(w, msgMissingIdentity)
				return
			}

			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil || id <= 0 {
				handlers.RespondUnauthorized(w, msgInvalidIdentity)
				return
			}
			role, err := domain.ParseRole(roleStr)
			if err != nil {
				handlers.RespondUnauthorized(w, msgInvalidIdentity)
				return
			}

			actor := domain.Actor{ID: id, Role: role}

			if verifier != nil {
				err := verifier.VerifyActor(r.Context(), actor)
				switch {
				case err == nil, errors.Is(err, identity.ErrServiceDegraded):
				case errors.Is(err, identity.ErrAccountNotFound),
					errors.Is(err, identity.ErrRoleMismatch),
					errors.Is(err, identity.ErrAccountDisabled):
					if logger != nil {
						logger.Warn("Auth - identity rejected: user_id=%d, role=%s: %v", actor.ID, actor.Role, err)
					}
					handlers.RespondUnauthorized(w, msgUnknownIdentity)
					return
				default:
					if logger != nil {
						logger.Error("Auth - identity verification failed: user_id=%d: %v", actor.ID, err)
					}
					handlers.RespondUnavailable(w)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
