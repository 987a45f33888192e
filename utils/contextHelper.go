package utils

import (
	"context"

	"github.com/Wawaweaa/fitax-steamlit-mvp/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyPlatform      = appctx.ContextKeyPlatform
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetPlatformFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyPlatform)
}

func SetPlatformInContext(ctx context.Context, platform string) context.Context {
	return appctx.Set(ctx, ContextKeyPlatform, platform)
}
