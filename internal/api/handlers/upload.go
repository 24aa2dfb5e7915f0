package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/services"
	"github.com/yoockh/skillsage/internal/utils"
)

// upload reads the multipart "file" field, sniffs its content type from the
// bytes rather than trusting the client header, and hands it to the service.
func upload(c *gin.Context, svc services.UploadService, userID string, kind models.UploadKind, max int64) (*models.UploadedFile, error) {
	const op = "Handler.Upload"

	data, fh, err := readFormFile(c, "file", max)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), err)
	}
	if fh == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", nil)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file is empty", nil)
	}

	mime := http.DetectContentType(data)
	return svc.Upload(c.Request.Context(), services.UploadInput{
		UserID:   userID,
		Kind:     kind,
		FileName: fh.Filename,
		MimeType: mime,
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	})
}
