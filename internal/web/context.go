package web

import (
	"context"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvclean/internal/core"
)

// SourceAPI marks runs started over HTTP.
const SourceAPI = "api"

// WithRequestMetadata adds the source and a fresh run ID to the context for
// the run record. The client IP is already there from mw.ClientAddress.
func WithRequestMetadata(ctx context.Context) context.Context {
	ctx = core.ContextWithSource(ctx, SourceAPI)
	return core.ContextWithRunID(ctx, uuid.NewString())
}
