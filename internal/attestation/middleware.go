package attestation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/apperr"
)

var errMissingToken = errors.New("missing app check token")

// RequireAppCheck rejects requests without a valid App Check token and
// stores the verified Identity on the request context otherwise.
func RequireAppCheck(verifier Verifier, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientName := c.GetHeader(HeaderClientName)
		token := c.GetHeader(HeaderAppCheckToken)

		if token == "" {
			abortUnauthorized(c, errMissingToken)
			return
		}

		if err := verifier.Verify(c.Request.Context(), token); err != nil {
			logger.WithError(err).WithField("client_name", clientName).Warn("app check verification failed")
			abortUnauthorized(c, err)
			return
		}

		ctx := WithIdentity(c.Request.Context(), Identity{ClientName: clientName, Token: token})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, cause error) {
	err := apperr.Unauthorized(cause)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   apperr.Code(err),
		"message": apperr.PublicMessage(err),
	})
}
