package globals

import (
	"context"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/components/telemetry"
	"gsapp-backend/internal/config"
	"gsapp-backend/internal/repository"
)

type contextKey struct{}

type Value struct {
	Config     config.Config
	Tel        telemetry.API
	Store      cache.Store
	Repository *repository.Repository
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, contextKey{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(contextKey{}).(*Value)
}
