package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

// LoginResult is a successful login: the identity and its bearer token.
type LoginResult struct {
	User  *models.User
	Token string
}

// AuthClient covers the /auth endpoints.
type AuthClient interface {
	Register(ctx context.Context, name, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (*LoginResult, error)
	VerifyEmail(ctx context.Context, token string) error
	GetProfile(ctx context.Context, token string) (*models.User, error)
	// GoogleLoginURL is where the user starts the federated login; the
	// provider eventually redirects back with ?token=.
	GoogleLoginURL() string
}

// TranscriptionClient covers the /transcribe endpoints.
type TranscriptionClient interface {
	ListTranscriptions(ctx context.Context, token string) ([]models.Transcription, error)
	GetTranscription(ctx context.Context, token, id string) (*models.Transcription, error)
	TranscribeYouTube(ctx context.Context, token, videoURL, userID string) (*models.Transcription, error)
	TranscribeFile(ctx context.Context, token string, kind models.MediaKind, name string, r io.Reader) (*models.Transcription, error)
	UpdateTranscription(ctx context.Context, token, id, title, summary string) (*models.Transcription, error)
	DeleteTranscription(ctx context.Context, token, id string) error
	Ask(ctx context.Context, token, id, question string) (*models.ChatEntry, error)
	ChatHistory(ctx context.Context, token, id string) ([]models.ChatEntry, error)
	GenerateQuiz(ctx context.Context, token, id string) error
	GetQuiz(ctx context.Context, token, id string) (*models.Quiz, error)
	SubmitQuiz(ctx context.Context, token, id string, answers []models.QuizAnswer) (*models.QuizResult, error)
	DownloadPDF(ctx context.Context, token, id string, w io.Writer) error
}

// AdminClient covers the /users endpoints (admin role only).
type AdminClient interface {
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	GetUser(ctx context.Context, token, id string) (*models.User, error)
	UpdateUser(ctx context.Context, token, id, name, email string, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, token, id string) error
}

type Client interface {
	AuthClient
	TranscriptionClient
	AdminClient
}
