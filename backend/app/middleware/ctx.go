package middleware

import (
	"context"

	jwtutil "filepower/backend/app/jwt"
	"filepower/backend/app/services"
)

func GetClaims(ctx context.Context) *jwtutil.Claims {
	if v := ctx.Value(ClaimsKey); v != nil {
		if c, ok := v.(*jwtutil.Claims); ok {
			return c
		}
	}
	return nil
}

// GetActor returns the signed-in user as a service actor.
func GetActor(ctx context.Context) services.Actor {
	c := GetClaims(ctx)
	if c == nil {
		return services.Actor{}
	}
	return services.Actor{ID: c.UserID, Email: c.Email, Role: c.Role}
}
