package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
	"github.com/dmitrijs2005/meetscribe/internal/filex"
)

// TokenSource yields the bearer token of the current session, "" when
// anonymous. The session container satisfies it.
type TokenSource interface {
	Token() string
}

// Deadlines bound the pass-through calls. Transfer applies to media uploads
// and PDF downloads, Request to everything else; zero means no bound.
type Deadlines struct {
	Request  time.Duration
	Transfer time.Duration
}

func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func bearer(ts TokenSource) (string, error) {
	tok := ts.Token()
	if tok == "" {
		return "", client.ErrUnauthorized
	}
	return tok, nil
}

// TranscriptionService is the pass-through to the transcription API, bound
// to the current session's token.
type TranscriptionService interface {
	List(ctx context.Context) ([]models.Transcription, error)
	Get(ctx context.Context, id string) (*models.Transcription, error)
	FromYouTube(ctx context.Context, videoURL, userID string) (*models.Transcription, error)
	// Upload sends the local file at path; the media kind is derived from
	// its extension.
	Upload(ctx context.Context, path string) (*models.Transcription, error)
	Update(ctx context.Context, id, title, summary string) (*models.Transcription, error)
	Delete(ctx context.Context, id string) error
	Ask(ctx context.Context, id, question string) (*models.ChatEntry, error)
	History(ctx context.Context, id string) ([]models.ChatEntry, error)
	// Quiz returns the stored quiz, generating it first when none exists.
	Quiz(ctx context.Context, id string) (*models.Quiz, error)
	SubmitQuiz(ctx context.Context, id string, answers []models.QuizAnswer) (*models.QuizResult, error)
	// DownloadPDF writes the transcription PDF to path.
	DownloadPDF(ctx context.Context, id, path string) error
}

type transcriptionService struct {
	client    client.TranscriptionClient
	tokens    TokenSource
	deadlines Deadlines
}

func NewTranscriptionService(c client.TranscriptionClient, tokens TokenSource, d Deadlines) TranscriptionService {
	return &transcriptionService{client: c, tokens: tokens, deadlines: d}
}

var audioExt = map[string]bool{".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true, ".aac": true}
var videoExt = map[string]bool{".mp4": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true}

// MediaKindOf classifies a file by extension.
func MediaKindOf(path string) (models.MediaKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case audioExt[ext]:
		return models.MediaAudio, nil
	case videoExt[ext]:
		return models.MediaVideo, nil
	}
	return "", fmt.Errorf("unsupported file type %q", ext)
}

func (s *transcriptionService) List(ctx context.Context) ([]models.Transcription, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.ListTranscriptions(ctx, tok)
}

func (s *transcriptionService) Get(ctx context.Context, id string) (*models.Transcription, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.GetTranscription(ctx, tok, id)
}

func (s *transcriptionService) FromYouTube(ctx context.Context, videoURL, userID string) (*models.Transcription, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.TranscribeYouTube(ctx, tok, videoURL, userID)
}

func (s *transcriptionService) Upload(ctx context.Context, path string) (*models.Transcription, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Transfer)
	defer cancel()
	kind, err := MediaKindOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return s.client.TranscribeFile(ctx, tok, kind, filepath.Base(path), f)
}

func (s *transcriptionService) Update(ctx context.Context, id, title, summary string) (*models.Transcription, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.UpdateTranscription(ctx, tok, id, title, summary)
}

func (s *transcriptionService) Delete(ctx context.Context, id string) error {
	tok, err := bearer(s.tokens)
	if err != nil {
		return err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.DeleteTranscription(ctx, tok, id)
}

func (s *transcriptionService) Ask(ctx context.Context, id, question string) (*models.ChatEntry, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.Ask(ctx, tok, id, question)
}

func (s *transcriptionService) History(ctx context.Context, id string) ([]models.ChatEntry, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.ChatHistory(ctx, tok, id)
}

func (s *transcriptionService) Quiz(ctx context.Context, id string) (*models.Quiz, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()

	quiz, err := s.client.GetQuiz(ctx, tok, id)
	if err == nil && quiz != nil && len(quiz.Questions) > 0 {
		return quiz, nil
	}
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	if err := s.client.GenerateQuiz(ctx, tok, id); err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	return s.client.GetQuiz(ctx, tok, id)
}

func (s *transcriptionService) SubmitQuiz(ctx context.Context, id string, answers []models.QuizAnswer) (*models.QuizResult, error) {
	tok, err := bearer(s.tokens)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Request)
	defer cancel()
	return s.client.SubmitQuiz(ctx, tok, id, answers)
}

func (s *transcriptionService) DownloadPDF(ctx context.Context, id, path string) error {
	tok, err := bearer(s.tokens)
	if err != nil {
		return err
	}
	ctx, cancel := withDeadline(ctx, s.deadlines.Transfer)
	defer cancel()
	return filex.WriteFromFunc(path, func(w io.Writer) error {
		return s.client.DownloadPDF(ctx, tok, id, w)
	})
}
