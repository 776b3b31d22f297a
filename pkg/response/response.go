package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"kanau.app/kanaupoints/pkg/apperror"
)

// GetUserID parses the user id from the request path
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return uuid.Nil, apperror.ErrInvalidInput
	}
	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.WithError(err).Error("internal error")
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
