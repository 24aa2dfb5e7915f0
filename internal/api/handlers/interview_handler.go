package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/skillsage/internal/services"
)

const maxAudioBytes = 25 << 20

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type createSessionRequest struct {
	Topic      string `json:"topic"`
	Course     string `json:"course"` // older clients
	Difficulty string `json:"difficulty"`
}

func (h *InterviewHandler) CreateSession(c *gin.Context) {
	const op = "InterviewHandler.CreateSession"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(op, "invalid request body", err))
		return
	}
	topic := req.Topic
	if strings.TrimSpace(topic) == "" {
		topic = req.Course
	}

	session, err := h.svc.CreateSession(c.Request.Context(), userID, topic, req.Difficulty)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type submitAnswerRequest struct {
	SessionID  string `json:"session_id"`
	Order      *int   `json:"order"`
	OrderID    *int   `json:"order_id"` // older clients
	AnswerText string `json:"answer_text"`
	TimeTaken  int    `json:"time_taken"`
}

// SubmitAnswer accepts JSON for typed answers or multipart/form-data with an
// optional answer_audio file.
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	const op = "InterviewHandler.SubmitAnswer"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	in := services.SubmitAnswerInput{UserID: userID}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := bindMultipartAnswer(c, &in); err != nil {
			writeError(c, badRequest(op, err.Error(), err))
			return
		}
	} else {
		var req submitAnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, badRequest(op, "invalid request body", err))
			return
		}
		order := req.Order
		if order == nil {
			order = req.OrderID
		}
		if order == nil {
			writeError(c, badRequest(op, "order is required", nil))
			return
		}
		in.SessionID = req.SessionID
		in.Order = *order
		in.Text = req.AnswerText
		in.TimeTaken = req.TimeTaken
	}

	progress, err := h.svc.SubmitAnswer(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

type formError string

func (e formError) Error() string { return string(e) }

func bindMultipartAnswer(c *gin.Context, in *services.SubmitAnswerInput) error {
	in.SessionID = c.PostForm("session_id")
	in.Text = c.PostForm("answer_text")

	orderStr := c.PostForm("order")
	if orderStr == "" {
		orderStr = c.PostForm("order_id")
	}
	order, err := strconv.Atoi(strings.TrimSpace(orderStr))
	if err != nil {
		return formError("order must be an integer")
	}
	in.Order = order

	if v := strings.TrimSpace(c.PostForm("time_taken")); v != "" {
		if in.TimeTaken, err = strconv.Atoi(v); err != nil {
			return formError("time_taken must be an integer")
		}
	}
	if v := strings.TrimSpace(c.PostForm("sample_rate")); v != "" {
		if in.SampleRate, err = strconv.Atoi(v); err != nil || in.SampleRate < 0 {
			return formError("sample_rate must be a non-negative integer")
		}
	}

	audio, _, err := readFormFile(c, "answer_audio", maxAudioBytes)
	if err != nil {
		return formError("invalid answer_audio: " + err.Error())
	}
	in.Audio = audio
	return nil
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func (h *InterviewHandler) Summary(c *gin.Context) {
	const op = "InterviewHandler.Summary"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest(op, "invalid request body", err))
		return
	}

	text, err := h.svc.GetSummary(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": text})
}

func (h *InterviewHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListSessions(c.Request.Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": rows})
}

func (h *InterviewHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	detail, err := h.svc.GetSession(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *InterviewHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(c.Request.Context(), userID, c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InterviewHandler) Transcribe(c *gin.Context) {
	const op = "InterviewHandler.Transcribe"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	audio, fh, err := readFormFile(c, "file", maxAudioBytes)
	if err != nil {
		writeError(c, badRequest(op, "invalid audio file", err))
		return
	}
	if fh == nil {
		writeError(c, badRequest(op, "missing multipart field 'file'", nil))
		return
	}
	rate := 0
	if v := strings.TrimSpace(c.PostForm("sample_rate")); v != "" {
		if rate, err = strconv.Atoi(v); err != nil {
			writeError(c, badRequest(op, "sample_rate must be an integer", err))
			return
		}
	}

	text, err := h.svc.Transcribe(c.Request.Context(), userID, audio, rate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": text})
}
