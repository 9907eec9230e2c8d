package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

var errCancelled = errors.New("cancelled")

var getMultiline = GetMultiline

const transcriptionsPath = "/transcriptions"

func transcriptionPath(id string) string {
	return transcriptionsPath + "/" + id
}

// YouTube transcribes a YouTube video and opens the result.
func (a *App) YouTube(ctx context.Context, videoURL string) error {
	if err := a.allowed(transcriptionsPath); err != nil {
		return err
	}

	a.printf("Transcribing, this can take a while…\n")
	t, err := a.transcriptions.FromYouTube(ctx, videoURL, a.session.User().ID)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("Created %s.\n", t.ID)
	return a.Go(ctx, transcriptionPath(t.ID))
}

// Upload transcribes a local audio or video file and opens the result.
func (a *App) Upload(ctx context.Context, path string) error {
	if err := a.allowed(transcriptionsPath); err != nil {
		return err
	}

	a.printf("Uploading %s…\n", path)
	t, err := a.transcriptions.Upload(ctx, path)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("Created %s.\n", t.ID)
	return a.Go(ctx, transcriptionPath(t.ID))
}

// Rename edits the title and summary of a transcription. Empty answers keep
// the current values.
func (a *App) Rename(ctx context.Context, id string) error {
	if err := a.allowed(transcriptionPath(id)); err != nil {
		return err
	}

	t, err := a.transcriptions.Get(ctx, id)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", t.Title), a.out)
	if err != nil {
		return err
	}
	summary, err := getMultiline(a.reader, "Summary (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	if title == "" {
		title = t.Title
	}
	if summary == "" {
		summary = t.Summary
	}

	if _, err := a.transcriptions.Update(ctx, id, title, summary); err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("Updated.\n")
	return nil
}

// Delete removes a transcription after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.allowed(transcriptionPath(id)); err != nil {
		return err
	}
	if err := a.confirm(fmt.Sprintf("Delete transcription %s?", id)); err != nil {
		return err
	}

	if err := a.transcriptions.Delete(ctx, id); err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("Deleted.\n")
	return nil
}

// Ask asks a question about a transcription.
func (a *App) Ask(ctx context.Context, id string) error {
	if err := a.allowed(transcriptionPath(id)); err != nil {
		return err
	}

	q, err := GetRequiredText(a.reader, "Question", a.out)
	if err != nil {
		a.printf("%v\n", err)
		return err
	}

	entry, err := a.transcriptions.Ask(ctx, id, q)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("%s\n", entry.Answer)
	return nil
}

// History prints the questions asked about a transcription.
func (a *App) History(ctx context.Context, id string) error {
	if err := a.allowed(transcriptionPath(id)); err != nil {
		return err
	}

	entries, err := a.transcriptions.History(ctx, id)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	if len(entries) == 0 {
		a.printf("No questions yet. Try 'ask %s'.\n", id)
		return nil
	}
	for _, e := range entries {
		a.printf("[%s]\nQ: %s\nA: %s\n\n", formatTime(e.CreatedAt), e.Question, e.Answer)
	}
	return nil
}

// Quiz takes the quiz of a transcription, generating it on first use, and
// prints the score.
func (a *App) Quiz(ctx context.Context, id string) error {
	if err := a.allowed(transcriptionPath(id)); err != nil {
		return err
	}

	quiz, err := a.transcriptions.Quiz(ctx, id)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}

	answers := make([]models.QuizAnswer, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		a.printf("\n%d. %s\n", i+1, q.Question)
		keys := q.OptionKeys()
		for _, k := range keys {
			a.printf("   %s) %s\n", k, q.Options[k])
		}

		choice, err := a.chooseOption(keys)
		if err != nil {
			return err
		}
		answers = append(answers, models.QuizAnswer{Selected: choice})
	}

	res, err := a.transcriptions.SubmitQuiz(ctx, id, answers)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("\nScore: %d correct, %d wrong (%.0f%%)\n", res.CorrectCount, res.WrongCount, res.Percentage)
	return nil
}

// chooseOption prompts until the answer is one of keys.
func (a *App) chooseOption(keys []string) (string, error) {
	for {
		s, err := getSimpleText(a.reader, "Answer ("+strings.Join(keys, "/")+")", a.out)
		if err != nil {
			return "", err
		}
		s = strings.ToLower(s)
		for _, k := range keys {
			if strings.ToLower(k) == s {
				return k, nil
			}
		}
		a.printf("Pick one of %s.\n", strings.Join(keys, ", "))
	}
}

// PDF saves the transcription PDF to file, <id>.pdf by default.
func (a *App) PDF(ctx context.Context, id, file string) error {
	if err := a.allowed(transcriptionPath(id)); err != nil {
		return err
	}
	if file == "" {
		file = id + ".pdf"
	}

	if err := a.transcriptions.DownloadPDF(ctx, id, file); err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("Saved %s.\n", file)
	return nil
}

func (a *App) confirm(question string) error {
	s, err := getSimpleText(a.reader, question+" Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(s, "yes") {
		a.printf("Cancelled.\n")
		return errCancelled
	}
	return nil
}
