package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/skillsage/internal/models"
	mongorepo "github.com/yoockh/skillsage/internal/repositories/mongo"
	"github.com/yoockh/skillsage/internal/services"
	"github.com/yoockh/skillsage/internal/utils"
)

type AdminHandler struct {
	refs  services.ReferenceService
	calls services.AICallService
}

func NewAdminHandler(refs services.ReferenceService, calls services.AICallService) *AdminHandler {
	return &AdminHandler{refs: refs, calls: calls}
}

// Ingest queues reference gathering and returns immediately.
func (h *AdminHandler) Ingest(c *gin.Context) {
	var req models.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.Ingest", "invalid request body", err))
		return
	}
	id, err := h.refs.Enqueue(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "topic": req.Topic, "difficulty": req.Difficulty})
}

func (h *AdminHandler) References(c *gin.Context) {
	diff, _ := models.ParseDifficulty(c.Query("difficulty"))
	docs, err := h.refs.List(c.Request.Context(), c.Query("topic"), diff, queryInt(c, "limit", 50))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"references": docs})
}

func (h *AdminHandler) AICalls(c *gin.Context) {
	f := mongorepo.AICallFilter{
		SessionID: c.Query("session_id"),
		UserID:    c.Query("user_id"),
		Kind:      models.AICallKind(c.Query("kind")),
		Status:    c.Query("status"),
	}
	calls, err := h.calls.List(c.Request.Context(), f, int64(queryInt(c, "limit", 100)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": calls})
}
