package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/skillsage/internal/cache"
	"github.com/yoockh/skillsage/internal/metrics"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/providers/llm"
	"github.com/yoockh/skillsage/internal/providers/questions"
	"github.com/yoockh/skillsage/internal/providers/stt"
	"github.com/yoockh/skillsage/internal/providers/summary"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
	"github.com/yoockh/skillsage/internal/utils"
)

type SubmitAnswerInput struct {
	UserID     string
	SessionID  string
	Order      int
	Text       string
	Audio      []byte
	SampleRate int
	TimeTaken  int
}

type InterviewService interface {
	CreateSession(ctx context.Context, userID, topic, difficulty string) (*models.InterviewSession, error)
	SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (*models.Progress, error)
	GetSummary(ctx context.Context, userID, sessionID string) (string, error)

	ListSessions(ctx context.Context, userID string, limit, offset int) ([]models.SessionSummary, error)
	GetSession(ctx context.Context, userID, sessionID string) (*models.SessionDetail, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error

	// Transcribe runs the speech provider outside of an interview. Failures
	// surface as TRANSCRIPTION_FAILED.
	Transcribe(ctx context.Context, userID string, audio []byte, sampleRate int) (string, error)
}

type InterviewDeps struct {
	Repo       pgrepo.InterviewRepository
	Questions  questions.Source
	STT        stt.Provider
	Summarizer summary.Summarizer
	Cache      cache.Cache      // optional
	Recorder   llm.CallRecorder // optional
	Log        logrus.FieldLogger

	TargetMinutes     int
	SummaryTTL        time.Duration
	TranscribeTimeout time.Duration
	Language          string
}

type interviewService struct {
	InterviewDeps
}

func NewInterviewService(d InterviewDeps) InterviewService {
	if d.TargetMinutes <= 0 {
		d.TargetMinutes = 25
	}
	if d.SummaryTTL <= 0 {
		d.SummaryTTL = 24 * time.Hour
	}
	if d.TranscribeTimeout <= 0 {
		d.TranscribeTimeout = 30 * time.Second
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return &interviewService{InterviewDeps: d}
}

func (s *interviewService) CreateSession(ctx context.Context, userID, topic, difficulty string) (*models.InterviewSession, error) {
	const op = "InterviewService.CreateSession"

	topic = strings.TrimSpace(topic)
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if topic == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "topic is required", nil)
	}
	level, ok := models.ParseDifficulty(difficulty)
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "difficulty must be one of easy, medium, hard", nil)
	}

	items, err := s.Questions.Generate(ctx, questions.Request{
		UserID:        userID,
		Topic:         topic,
		Difficulty:    level,
		TargetMinutes: s.TargetMinutes,
	})
	if err != nil {
		return nil, err
	}
	if err := checkItems(items); err != nil {
		return nil, utils.E(utils.CodeUpstreamFormat, op, "question generator returned unusable questions", err)
	}

	session := &models.InterviewSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		Topic:         topic,
		Difficulty:    level,
		TotalDuration: s.TargetMinutes,
		CreatedAt:     time.Now().UTC(),
	}
	qs := make([]models.InterviewQuestion, len(items))
	for i, it := range items {
		qs[i] = models.InterviewQuestion{
			ID:            uuid.NewString(),
			SessionID:     session.ID,
			Order:         it.Order,
			QuestionText:  it.Question,
			AllocatedTime: it.AllocatedTime,
		}
	}

	if err := s.Repo.CreateWithQuestions(ctx, session, qs); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist session", err)
	}
	session.Questions = qs

	s.Log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"user_id":    userID,
		"topic":      topic,
		"difficulty": level,
		"questions":  len(qs),
	}).Info("interview session created")
	return session, nil
}

func checkItems(items []questions.Item) error {
	if len(items) == 0 {
		return errors.New("no questions")
	}
	for _, it := range items {
		if it.Order <= 0 || strings.TrimSpace(it.Question) == "" || it.AllocatedTime <= 0 {
			return errors.New("question " + strconv.Itoa(it.Order) + " is incomplete")
		}
	}
	return nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (*models.Progress, error) {
	const op = "InterviewService.SubmitAnswer"

	if in.UserID == "" || in.SessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	if in.TimeTaken < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "time_taken must be >= 0", nil)
	}

	session, err := s.ownedSession(ctx, op, in.UserID, in.SessionID)
	if err != nil {
		return nil, err
	}

	q, err := s.Repo.QuestionByOrder(ctx, in.SessionID, in.Order)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "question "+strconv.Itoa(in.Order)+" not found in session", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load question", err)
	}

	text := s.answerText(ctx, in)

	if err := s.Repo.UpsertAnswer(ctx, &models.InterviewAnswer{
		ID:          uuid.NewString(),
		QuestionID:  q.ID,
		UserID:      in.UserID,
		AnswerText:  text,
		TimeTaken:   in.TimeTaken,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save answer", err)
	}

	answered, err := s.Repo.CountAnswered(ctx, in.SessionID, in.UserID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count answers", err)
	}
	total, err := s.Repo.CountQuestions(ctx, in.SessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count questions", err)
	}

	completed := session.Completed
	if total > 0 && answered == total {
		if err := s.Repo.MarkCompleted(ctx, in.SessionID); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to mark session completed", err)
		}
		if !completed {
			metrics.InterviewCompleted()
			s.Log.WithFields(logrus.Fields{"session_id": in.SessionID, "user_id": in.UserID}).Info("interview session completed")
		}
		completed = true
	}

	return &models.Progress{
		AnswerText:    text,
		AnsweredCount: answered,
		TotalCount:    total,
		Completed:     completed,
	}, nil
}

// answerText picks what gets stored: a transcript for non-empty audio, else
// the typed text, else the no-answer marker. Transcription problems never
// fail the submission.
func (s *interviewService) answerText(ctx context.Context, in SubmitAnswerInput) string {
	if len(in.Audio) == 0 {
		if t := strings.TrimSpace(in.Text); t != "" {
			return t
		}
		return models.AnswerNoVerbal
	}

	text, err := s.transcribe(ctx, in.UserID, in.SessionID, in.Audio, in.SampleRate)
	switch {
	case errors.Is(err, stt.ErrNoSpeech):
		return models.AnswerNoVerbal
	case err != nil:
		s.Log.WithError(err).WithFields(logrus.Fields{
			"session_id": in.SessionID,
			"order":      in.Order,
			"audio_size": len(in.Audio),
		}).Warn("transcription failed, storing placeholder answer")
		return models.AnswerTranscriptionFailed
	}
	return text
}

func (s *interviewService) transcribe(ctx context.Context, userID, sessionID string, audio []byte, sampleRate int) (string, error) {
	if s.STT == nil {
		return "", errors.New("speech provider is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.TranscribeTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.STT.Transcribe(ctx, stt.Request{
		Audio:        audio,
		SampleRateHz: sampleRate,
		Language:     s.Language,
	})
	text := strings.TrimSpace(res.Text)
	if err == nil && text == "" {
		err = stt.ErrNoSpeech
	}

	llm.Observe(ctx, s.Recorder, models.AICall{
		Kind:      models.AICallTranscribe,
		Provider:  s.STT.Name(),
		UserID:    userID,
		SessionID: sessionID,
	}, start, text, err)

	return text, err
}

func (s *interviewService) Transcribe(ctx context.Context, userID string, audio []byte, sampleRate int) (string, error) {
	const op = "InterviewService.Transcribe"

	if len(audio) == 0 {
		return "", utils.E(utils.CodeInvalidArgument, op, "audio file is empty", nil)
	}
	if sampleRate < 0 {
		return "", utils.E(utils.CodeInvalidArgument, op, "sample_rate must be >= 0", nil)
	}

	text, err := s.transcribe(ctx, userID, "", audio, sampleRate)
	if errors.Is(err, stt.ErrNoSpeech) {
		return "", utils.E(utils.CodeTranscriptionFailed, op, "no speech detected in audio", err)
	}
	if err != nil {
		return "", utils.E(utils.CodeTranscriptionFailed, op, "transcription failed", err)
	}
	return text, nil
}

func (s *interviewService) GetSummary(ctx context.Context, userID, sessionID string) (string, error) {
	const op = "InterviewService.GetSummary"

	if userID == "" || sessionID == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	session, err := s.ownedSession(ctx, op, userID, sessionID)
	if err != nil {
		return "", err
	}

	entries, err := s.Repo.Transcript(ctx, sessionID, userID)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to load transcript", err)
	}
	if len(entries) == 0 {
		return "", utils.E(utils.CodeNoContent, op, "no answers submitted for this session", nil)
	}

	key := cache.SummaryKey(sessionID, transcriptDigest(entries))
	if text, ok := s.cachedSummary(ctx, key); ok {
		return text, nil
	}

	text, err := s.Summarizer.Summarize(ctx, summary.Request{
		SessionID:  sessionID,
		UserID:     userID,
		Topic:      session.Topic,
		Difficulty: session.Difficulty,
		Entries:    entries,
	})
	if err != nil {
		return "", err
	}

	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, key, text, s.SummaryTTL); err != nil {
			s.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to cache summary")
		}
	}
	return text, nil
}

func (s *interviewService) cachedSummary(ctx context.Context, key string) (string, bool) {
	if s.Cache == nil {
		return "", false
	}
	var text string
	hit, err := s.Cache.GetJSON(ctx, key, &text)
	if err != nil {
		s.Log.WithError(err).WithField("key", key).Warn("summary cache read failed")
		return "", false
	}
	return text, hit && text != ""
}

// transcriptDigest is the cache identity of a transcript.
func transcriptDigest(entries []models.TranscriptEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strconv.Itoa(e.Order))
		b.WriteByte(0x1f)
		b.WriteString(e.Question)
		b.WriteByte(0x1f)
		b.WriteString(e.Answer)
		b.WriteByte(0x1e)
	}
	return b.String()
}

func (s *interviewService) ListSessions(ctx context.Context, userID string, limit, offset int) ([]models.SessionSummary, error) {
	const op = "InterviewService.ListSessions"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	if rows == nil {
		rows = []models.SessionSummary{}
	}
	return rows, nil
}

func (s *interviewService) GetSession(ctx context.Context, userID, sessionID string) (*models.SessionDetail, error) {
	const op = "InterviewService.GetSession"

	session, err := s.ownedSession(ctx, op, userID, sessionID)
	if err != nil {
		return nil, err
	}
	qs, err := s.Repo.Questions(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load questions", err)
	}
	answers, err := s.Repo.AnswersByUser(ctx, sessionID, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load answers", err)
	}

	byQuestion := make(map[string]*models.InterviewAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	detail := &models.SessionDetail{
		Session:       session,
		Questions:     make([]models.AnsweredQuestion, len(qs)),
		AnsweredCount: len(byQuestion),
		TotalCount:    len(qs),
	}
	for i, q := range qs {
		detail.Questions[i] = models.AnsweredQuestion{InterviewQuestion: q, Answer: byQuestion[q.ID]}
	}
	return detail, nil
}

func (s *interviewService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	const op = "InterviewService.DeleteSession"

	if _, err := s.ownedSession(ctx, op, userID, sessionID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete session", err)
	}

	if s.Cache != nil {
		if err := s.Cache.DelPrefix(ctx, cache.SummaryPrefix(sessionID)); err != nil {
			s.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to drop cached summaries")
		}
	}
	s.Log.WithFields(logrus.Fields{"session_id": sessionID, "user_id": userID}).Info("interview session deleted")
	return nil
}

// ownedSession loads the session and checks the caller owns it.
func (s *interviewService) ownedSession(ctx context.Context, op, userID, sessionID string) (*models.InterviewSession, error) {
	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, utils.E(utils.CodeNotFound, op, "session not found", utils.ErrNotFound)
	}
	session, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if session.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "session belongs to another user", nil)
	}
	return session, nil
}
