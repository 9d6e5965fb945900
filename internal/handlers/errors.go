package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"upscoverflow/internal/apperror"
	"upscoverflow/internal/middleware"
	"upscoverflow/internal/response"
	"upscoverflow/internal/services"
	"upscoverflow/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// respondError maps err onto the error envelope. Unknown errors become a 500 and
// are logged with their cause.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, http.StatusNotFound, "Resource not found", nil)
		return
	}

	if appErr, ok := apperror.As(err); ok && appErr.Kind != apperror.KindInternal {
		response.Error(c, appErr.Kind.Status(), appErr.Message, appErr.Errors)
		return
	}

	_ = c.Error(err)
	log.Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
	response.Error(c, http.StatusInternalServerError, "Internal Server Error", nil)
}

func badRequest(c *gin.Context, message string, details ...string) {
	response.Error(c, http.StatusBadRequest, message, details)
}

// queryID parses a required positive id from the query string.
func queryID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Query(name))
	if !ok {
		badRequest(c, "Invalid "+name, name+" must be a positive integer")
	}
	return id, ok
}

// pageQuery reads page, limit and sortBy. Malformed numbers become 0 and are
// rejected by the listing's own validation.
func pageQuery(c *gin.Context, defaultLimit int) services.PageQuery {
	return services.PageQuery{
		Page:   utils.StringToInt(c.DefaultQuery("page", "1"), 0),
		Limit:  utils.StringToInt(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)), 0),
		SortBy: c.Query("sortBy"),
	}
}

func viewer(c *gin.Context) string {
	return middleware.ViewerID(c)
}
