package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biey-root/serverless-rest-api/internal/httperr"
	"github.com/biey-root/serverless-rest-api/internal/store"
)

// writeStoreError maps store outcomes onto the error envelope. Conditional
// check failures were already translated per-operation by the adapter; what
// arrives here is one of the closed set of domain outcomes.
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httperr.Write(c, http.StatusNotFound, "NOT_FOUND", "Todo not found")
	case errors.Is(err, store.ErrConflict):
		httperr.Write(c, http.StatusConflict, "CONFLICT", "Item already exists (id collision)")
	case errors.Is(err, store.ErrNoMutableFields):
		httperr.Write(c, http.StatusBadRequest, "NO_MUTABLE_FIELDS", "No updatable fields provided")
	default:
		var upstream *store.UpstreamError
		if errors.As(err, &upstream) {
			slog.ErrorContext(c.Request.Context(), "upstream store error",
				slog.String("requestId", RequestIDFromContext(c)),
				slog.String("code", upstream.Code),
			)
			httperr.WriteDetails(c, http.StatusBadGateway, "AWS_ERROR", "Upstream AWS error", map[string]any{
				"aws": map[string]any{"code": upstream.Code, "message": upstream.Message},
			})
			return
		}
		slog.ErrorContext(c.Request.Context(), "unhandled error",
			slog.String("requestId", RequestIDFromContext(c)),
			slog.String("error", err.Error()),
		)
		httperr.Write(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
	}
}
