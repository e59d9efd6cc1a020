package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var registerTagNames sync.Once

// UseJSONFieldNames makes binding errors report json field names
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bindJSON decodes the body into req and writes a 400 when it is unusable
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, ok := fields[fe.Field()]; !ok {
				fields[fe.Field()] = fieldMessage(fe)
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

// writeError maps a service error onto the response taxonomy. Internal
// errors are logged and never echoed to the client.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch domain.Kind(err) {
	case domain.KindValidation:
		var verr *domain.ValidationError
		errors.As(err, &verr)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verr.Fields})
	case domain.KindAuthentication:
		c.JSON(http.StatusBadRequest, gin.H{"message": authMessage(err)})
	case domain.KindConflict:
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case domain.KindAuthorization:
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTOTPInvalidCode):
		return "Invalid TOTP code"
	case errors.Is(err, domain.ErrTOTPSetupNotInitiated):
		return "TOTP setup not initiated"
	default:
		return "Invalid credentials"
	}
}
