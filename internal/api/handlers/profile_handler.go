package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/skillsage/internal/api/middleware"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/services"
	"github.com/yoockh/skillsage/internal/utils"
)

type ProfileHandler struct {
	svc     services.ProfileService
	users   services.UserService
	uploads services.UploadService
}

func NewProfileHandler(svc services.ProfileService, users services.UserService, uploads services.UploadService) *ProfileHandler {
	return &ProfileHandler{svc: svc, users: users, uploads: uploads}
}

// CurrentUser answers GET /me from the token claims.
func (h *ProfileHandler) CurrentUser(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	me, err := h.users.Me(c.Request.Context(), userID, c.GetString(middleware.CtxEmail), c.GetString(middleware.CtxRole))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.Update", "invalid request body", err))
		return
	}

	p, err := h.svc.Update(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Picture uploads a profile picture and makes it the profile image.
func (h *ProfileHandler) Picture(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	f, err := upload(c, h.uploads, userID, models.UploadPicture, services.MaxPictureBytes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}
