package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/services"
	"github.com/yoockh/skillsage/internal/utils"
)

type ResumeHandler struct {
	uploads services.UploadService
	resumes services.ResumeService
}

func NewResumeHandler(uploads services.UploadService, resumes services.ResumeService) *ResumeHandler {
	return &ResumeHandler{uploads: uploads, resumes: resumes}
}

func (h *ResumeHandler) Upload(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	f, err := upload(c, h.uploads, userID, models.UploadResume, services.MaxResumeBytes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *ResumeHandler) Latest(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	f, err := h.uploads.Latest(c.Request.Context(), userID, models.UploadResume)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

type analyzeResumeRequest struct {
	Role       string `json:"role"`
	Experience string `json:"experience"`
	ResumeText string `json:"resume_text"`
}

func (h *ResumeHandler) Analyze(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req analyzeResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.Analyze", "invalid request body", err))
		return
	}

	a, err := h.resumes.Analyze(c.Request.Context(), services.AnalyzeResumeInput{
		UserID:     userID,
		Role:       req.Role,
		Experience: req.Experience,
		ResumeText: req.ResumeText,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *ResumeHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.resumes.List(c.Request.Context(), userID, queryInt(c, "limit", 20))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": rows})
}
