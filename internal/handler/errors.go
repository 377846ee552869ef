// Package handler exposes the distribution engine over HTTP with Gin.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps err to a status code. Not-found and invalid-request errors
// carry their message to the client; anything else is logged and hidden
// behind msg.
func writeError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	var notFound *model.NotFoundError
	var invalid *model.InvalidRequestError
	switch {
	case errors.As(err, &notFound):
		logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// pathID parses a positive integer path parameter. It writes a 400 and
// returns false when the parameter is not one.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
