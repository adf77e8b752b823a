package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"transroute/internal/middleware"
	"transroute/internal/repositories"
	"transroute/internal/services"
)

const dateLayout = "2006-01-02"

// respondError maps domain errors onto HTTP statuses. Anything unexpected
// is logged and reported as a 500.
func respondError(c *gin.Context, op string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, repositories.ErrRPC):
		logrus.WithError(err).Warn(op + ": procedure rejected the request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).WithField("request_id", c.GetString(middleware.ContextRequestID)).Error(op + ": internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON binds the body and answers 400 with per-field messages on failure.
func bindJSON(c *gin.Context, op string, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logrus.WithError(err).Warn(op + ": invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + describeBindError(err)})
		return false
	}
	return true
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "location":
			msgs = append(msgs, fmt.Sprintf("%s must look like \"City, State|Name\"", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s %s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:    c.GetUint(middleware.ContextUserID),
		CompanyID: c.GetUint(middleware.ContextCompanyID),
	}
}

func companyFrom(c *gin.Context) uint {
	return c.GetUint(middleware.ContextCompanyID)
}

// queryUint reads an optional positive integer query parameter.
func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, &services.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	id := uint(v)
	return &id, nil
}

// queryTime accepts RFC3339 or a plain date. A plain date used as an upper
// bound covers the whole day.
func queryTime(c *gin.Context, name string, endOfDay bool) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: name, Message: "must be RFC3339 or YYYY-MM-DD"}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func dbError(op string, err error) error {
	return repositories.Wrap(op, err)
}
