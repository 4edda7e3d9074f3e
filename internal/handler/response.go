package handler

import (
	"errors"
	"net/http"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to HTTP statuses. Storage-layer errors are
// typed and surfaced; nothing is silently swallowed.
func respondError(c *gin.Context, err error) {
	var (
		validation  *shared.ValidationError
		notFound    *shared.NotFoundError
		unavailable *shared.StoreUnavailableError
		transaction *shared.TransactionError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": unavailable.Error()})
	case errors.As(err, &transaction):
		c.JSON(http.StatusInternalServerError, gin.H{"error": transaction.Error()})
	case errors.Is(err, shared.ErrSweepInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}
