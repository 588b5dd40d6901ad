package pkg

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UsernameKey is the gin context key holding the authenticated username.
const UsernameKey = "username"

var validate = validator.New()

func ParseAndValidate(c *gin.Context, dto interface{}) error {
	if err := c.ShouldBindJSON(dto); err != nil {
		return err
	}
	return validate.Struct(dto)
}

// GetUsername reads the authenticated username. When it is missing the request
// is aborted with 401 and ok is false.
func GetUsername(c *gin.Context) (string, bool) {
	username := c.GetString(UsernameKey)
	if username == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return "", false
	}
	return username, true
}

// ParamID parses the named path parameter as a positive id. On failure the
// request is answered with 400 and ok is false.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
