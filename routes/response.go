package routes

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"marketplace-server/middleware"
	"marketplace-server/repository"
	"marketplace-server/services"
	"marketplace-server/utils"
)

func errorBody(code, message string, details interface{}) gin.H {
	body := gin.H{"code": code, "message": message}
	if details != nil {
		body["details"] = details
	}
	return gin.H{"success": false, "error": body}
}

// respondError writes typed service errors as they are. Anything else is
// logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	if se, ok := services.AsError(err); ok {
		c.JSON(se.Status, errorBody(se.Code, se.Message, nil))
		return
	}
	log.Printf("❌ [%s] %s %s failed: %v", c.GetString("request_id"), c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Internal server error", nil))
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, data interface{}, p utils.Pagination, total int64) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p.WithTotal(total)})
}

// bindJSON decodes the body and reports binding failures as 400s.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Invalid request body", validationDetails(err)))
		return false
	}
	return true
}

func validationDetails(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldMessage(fe))
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Invalid "+name, nil))
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func pageFrom(c *gin.Context) (utils.Pagination, repository.Page) {
	p := utils.ParsePagination(c)
	return p, repository.Page{Limit: p.Limit, Offset: p.Offset()}
}

// principal reads the caller set by the auth middleware. Routes using it
// are always mounted behind AuthMiddleware.
func principal(c *gin.Context) services.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}

func optionalPrincipal(c *gin.Context) *services.Principal {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return nil
	}
	return &p
}
