package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestTranscriptions_Anonymous_Unauthorized(t *testing.T) {
	fc := &fakeClient{}
	svc := NewTranscriptionService(fc, staticToken(""), Deadlines{})
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	_, err = svc.Get(ctx, "t1")
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.ErrorIs(t, svc.Delete(ctx, "t1"), client.ErrUnauthorized)
	require.ErrorIs(t, svc.DownloadPDF(ctx, "t1", filepath.Join(t.TempDir(), "x.pdf")), client.ErrUnauthorized)
	assert.Empty(t, fc.LastToken)
}

func TestTranscriptions_HungCallHitsDeadline(t *testing.T) {
	fc := &fakeClient{Hang: true}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{Request: 20 * time.Millisecond, Transfer: time.Hour})

	start := time.Now()
	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTranscriptions_UploadUsesTransferDeadline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o600))
	fc := &fakeClient{Transcription: &models.Transcription{ID: "t1"}}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{Request: time.Second, Transfer: time.Hour})

	_, err := svc.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), fc.LastDeadline, time.Minute)

	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Second), fc.LastDeadline, 500*time.Millisecond)
}

func TestTranscriptions_NoDeadlineConfigured(t *testing.T) {
	fc := &fakeClient{}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{})

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.True(t, fc.LastDeadline.IsZero())
}

func TestTranscriptions_PassesToken(t *testing.T) {
	fc := &fakeClient{
		Transcriptions: []models.Transcription{{ID: "t1"}},
		Transcription:  &models.Transcription{ID: "t1"},
	}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{})
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tok", fc.LastToken)

	_, err = svc.FromYouTube(ctx, "https://youtu.be/x", "u1")
	require.NoError(t, err)

	entry, err := svc.Ask(ctx, "t1", "why?")
	require.NoError(t, err)
	assert.Equal(t, "why?", entry.Question)

	hist, err := svc.History(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	_, err = svc.Update(ctx, "t1", "title", "summary")
	require.NoError(t, err)
}

func TestMediaKindOf(t *testing.T) {
	tests := []struct {
		path string
		want models.MediaKind
		err  bool
	}{
		{"call.MP3", models.MediaAudio, false},
		{"/tmp/a.wav", models.MediaAudio, false},
		{"meeting.mp4", models.MediaVideo, false},
		{"x.webm", models.MediaVideo, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := MediaKindOf(tt.path)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpload_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standup.m4a")
	require.NoError(t, os.WriteFile(path, []byte("sound"), 0o600))

	fc := &fakeClient{Transcription: &models.Transcription{ID: "f1"}}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{})

	tr, err := svc.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "f1", tr.ID)
	assert.Equal(t, models.MediaAudio, fc.LastUploadKind)
	assert.Equal(t, "standup.m4a", fc.LastUploadName)
	assert.Equal(t, "sound", fc.LastUploadBody)
}

func TestUpload_Errors(t *testing.T) {
	svc := NewTranscriptionService(&fakeClient{}, staticToken("tok"), Deadlines{})

	_, err := svc.Upload(context.Background(), "notes.txt")
	require.Error(t, err)

	_, err = svc.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
}

func TestQuiz_ExistingIsReturned(t *testing.T) {
	fc := &fakeClient{QuizRet: &models.Quiz{Questions: []models.QuizQuestion{{Question: "q"}}}}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{})

	q, err := svc.Quiz(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, q.Questions, 1)
	assert.Equal(t, 0, fc.GenerateCalls)
}

func TestQuiz_GeneratesWhenMissing(t *testing.T) {
	fc := &fakeClient{
		GetQuizErr:   &client.APIError{Status: 404, Kind: client.ErrNotFound},
		QuizAfterGen: &models.Quiz{Questions: []models.QuizQuestion{{Question: "q1"}, {Question: "q2"}}},
	}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{})

	q, err := svc.Quiz(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, q.Questions, 2)
	assert.Equal(t, 1, fc.GenerateCalls)
}

func TestQuiz_OtherErrorsPropagate(t *testing.T) {
	fc := &fakeClient{GetQuizErr: client.ErrUnavailable}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{})

	_, err := svc.Quiz(context.Background(), "t1")
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, 0, fc.GenerateCalls)
}

func TestSubmitQuiz(t *testing.T) {
	fc := &fakeClient{QuizResult: &models.QuizResult{CorrectCount: 3, Percentage: 75}}
	svc := NewTranscriptionService(fc, staticToken("tok"), Deadlines{})

	res, err := svc.SubmitQuiz(context.Background(), "t1", []models.QuizAnswer{{Selected: "a"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.CorrectCount)
}

func TestDownloadPDF_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t1.pdf")
	svc := NewTranscriptionService(&fakeClient{PDF: "%PDF-1.7"}, staticToken("tok"), Deadlines{})

	require.NoError(t, svc.DownloadPDF(context.Background(), "t1", path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(b))
}

func TestDownloadPDF_FailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t1.pdf")
	boom := errors.New("connection reset")
	svc := NewTranscriptionService(&fakeClient{PDFErr: boom}, staticToken("tok"), Deadlines{})

	require.ErrorIs(t, svc.DownloadPDF(context.Background(), "t1", path), boom)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
