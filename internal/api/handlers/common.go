package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/skillsage/internal/api/middleware"
	"github.com/yoockh/skillsage/internal/utils"
)

// retryAfterSeconds is advertised on UPSTREAM_UNAVAILABLE responses.
const retryAfterSeconds = 5

type APIError struct {
	Code      utils.Code `json:"code"`
	Message   string     `json:"message"`
	Retryable bool       `json:"retryable,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if !errors.As(err, &ae) {
		code := utils.CodeInternal
		if errors.Is(err, utils.ErrNotFound) {
			code = utils.CodeNotFound
		}
		_ = c.Error(err)
		c.JSON(status, APIError{Code: code, Message: http.StatusText(status)})
		return
	}

	_ = c.Error(err)
	body := APIError{Code: ae.Code, Message: ae.Message}
	if utils.Retryable(err) {
		body.Retryable = true
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	c.JSON(status, body)
}

func requireUserID(c *gin.Context) (string, bool) {
	if s := c.GetString(middleware.CtxUserID); s != "" {
		return s, true
	}
	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

func badRequest(op, msg string, err error) error {
	return utils.E(utils.CodeInvalidArgument, op, msg, err)
}

// readFormFile reads a multipart file up to max bytes. A missing field
// yields (nil, nil, nil).
func readFormFile(c *gin.Context, field string, max int64) ([]byte, *multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if fh.Size > max {
		return nil, fh, errors.New("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fh, err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, max))
	return b, fh, err
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
