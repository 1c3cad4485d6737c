package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"rewear-server/internal/schemas"
	"rewear-server/internal/utils"
)

// ValidateAndSanitizeStruct binds the request body into a fresh instance of the
// given prototype struct, validates it and stores it in the request context.
// A fresh instance per request keeps concurrent requests from sharing state.
func ValidateAndSanitizeStruct(prototype interface{}) gin.HandlerFunc {
	prototypeType := reflect.TypeOf(prototype).Elem()

	return func(c *gin.Context) {
		obj := reflect.New(prototypeType).Interface()

		if err := c.ShouldBindJSON(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			c.Abort()
			return
		}

		validate := utils.GetValidator()
		if err := validate.Validate.Struct(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			c.Abort()
			return
		}

		// Set the validated object in the context
		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}
