package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salespos-api/pkg/pagination"
)

// Context keys set by the auth middleware
const (
	ContextSubject = "auth_subject"
	ContextRole    = "auth_role"
)

// DayLayout is the calendar-day format accepted in query strings
const DayLayout = "2006-01-02"

// GetSubject extracts the token subject from the Gin context
func GetSubject(c *gin.Context) string {
	return c.GetString(ContextSubject)
}

// GetRole extracts the token role from the Gin context
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	p := &pagination.PaginationParams{Page: page, PerPage: perPage}
	p.Validate()
	return p
}

// parseDay reads a YYYY-MM-DD day in loc. An empty value means today.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	return time.ParseInLocation(DayLayout, s, loc)
}

func badBody(c *gin.Context, err error) {
	response.BadRequest(c, "Invalid request body: "+err.Error())
}
