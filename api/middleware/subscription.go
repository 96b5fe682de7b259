package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/directsales-backend/api/responses"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
)

// SubscriptionChecker reports whether a consultant may use the sales surface.
type SubscriptionChecker interface {
	IsActive(ctx context.Context, consultantID uuid.UUID) (bool, error)
}

// RequireActiveSubscription gates consultant routes on an active or trialing
// subscription. Admins pass through.
func RequireActiveSubscription(checker SubscriptionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if RoleFromContext(ctx) == enums.UserRoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription checker unavailable"))
				return
			}

			userID, ok := UserUUIDFromContext(ctx)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			active, err := checker.IsActive(ctx, userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !active {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSubscriptionInactive, "an active subscription is required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
