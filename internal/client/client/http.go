package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/meetscribe/internal/client/models"
	"github.com/dmitrijs2005/meetscribe/internal/common"
)

// HTTPClient implements Client against the REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient validates baseURL (scheme and host required). A nil
// httpClient means http.DefaultClient.
func NewHTTPClient(baseURL string, httpClient *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host required", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(u.String(), "/"), http: httpClient}, nil
}

// status is the envelope every endpoint answers with.
type status struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// rejected reports an explicit success:false.
func (s status) rejected() bool {
	return s.Success != nil && !*s.Success
}

func (c *HTTPClient) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *HTTPClient) newJSONRequest(ctx context.Context, method, target, token string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	}
	return req, nil
}

// send executes req and decodes a 2xx JSON body into out (when non-nil).
func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, target, token string, body, out any) error {
	req, err := c.newJSONRequest(ctx, method, target, token, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *HTTPClient) mapError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.Kind = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Kind = ErrNotFound
	case resp.StatusCode >= 500:
		apiErr.Kind = ErrUnavailable
	default:
		apiErr.Kind = ErrRejected
	}
	return apiErr
}

// readMessage pulls a human-readable message out of an error body: the JSON
// "message" or "error" field, or else the first bytes of the raw text.
func readMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func rejectedErr(s status) error {
	return &APIError{Status: http.StatusOK, Message: s.Message, Kind: ErrRejected}
}

// ---- auth ----

func (c *HTTPClient) Register(ctx context.Context, name, email string, password []byte) error {
	req := map[string]string{"name": name, "email": email, "password": string(password)}

	var resp status
	if err := c.do(ctx, http.MethodPost, c.endpoint("auth", "register"), "", req, &resp); err != nil {
		return err
	}
	if resp.rejected() {
		return rejectedErr(resp)
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	req := map[string]string{"email": email, "password": string(password)}

	var resp struct {
		status
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoint("auth", "login"), "", req, &resp); err != nil {
		return nil, err
	}
	if resp.Success == nil || !*resp.Success {
		return nil, rejectedErr(resp.status)
	}
	if !resp.User.HasIdentity() || resp.Token == "" {
		return nil, fmt.Errorf("%w: login response without user id or token", ErrMalformedResponse)
	}
	return &LoginResult{User: resp.User, Token: resp.Token}, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) error {
	var resp status
	if err := c.do(ctx, http.MethodGet, c.endpoint("auth", "verify", token), "", nil, &resp); err != nil {
		return err
	}
	if resp.Success == nil || !*resp.Success {
		return rejectedErr(resp)
	}
	return nil
}

// GetProfile accepts both {"user": {...}} and a bare user object.
func (c *HTTPClient) GetProfile(ctx context.Context, token string) (*models.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint("auth", "profile"), token, nil, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (c *HTTPClient) GoogleLoginURL() string {
	return c.endpoint("auth", "google")
}

func decodeUser(raw json.RawMessage) (*models.User, error) {
	var wrapped struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User.HasIdentity() {
		return wrapped.User, nil
	}

	var bare models.User
	if err := json.Unmarshal(raw, &bare); err == nil && bare.HasIdentity() {
		return &bare, nil
	}
	return nil, fmt.Errorf("%w: user without id", ErrMalformedResponse)
}

// ---- transcriptions ----

type transcriptionEnvelope struct {
	status
	Transcription *models.Transcription `json:"transcription"`
}

func (c *HTTPClient) ListTranscriptions(ctx context.Context, token string) ([]models.Transcription, error) {
	var resp struct {
		Transcriptions []models.Transcription `json:"transcriptions"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("transcribe"), token, nil, &resp); err != nil {
		return nil, err
	}
	models.SortByNewest(resp.Transcriptions)
	return resp.Transcriptions, nil
}

func (c *HTTPClient) GetTranscription(ctx context.Context, token, id string) (*models.Transcription, error) {
	var resp transcriptionEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("transcribe", id), token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Transcription == nil {
		return nil, fmt.Errorf("%w: no transcription in response", ErrMalformedResponse)
	}
	return resp.Transcription, nil
}

func (c *HTTPClient) TranscribeYouTube(ctx context.Context, token, videoURL, userID string) (*models.Transcription, error) {
	req := map[string]string{"url": videoURL, "userId": userID}

	var resp transcriptionEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint("transcribe", "youtube"), token, req, &resp); err != nil {
		return nil, err
	}
	if resp.rejected() {
		return nil, rejectedErr(resp.status)
	}
	return resp.Transcription, nil
}

// TranscribeFile streams r as the multipart "file" field to the audio or
// video endpoint.
func (c *HTTPClient) TranscribeFile(ctx context.Context, token string, kind models.MediaKind, name string, r io.Reader) (*models.Transcription, error) {
	if kind != models.MediaAudio && kind != models.MediaVideo {
		return nil, fmt.Errorf("unsupported media kind %q", kind)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("transcribe", string(kind)), pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))

	var resp transcriptionEnvelope
	if err := c.send(req, &resp); err != nil {
		return nil, err
	}
	if resp.rejected() {
		return nil, rejectedErr(resp.status)
	}
	return resp.Transcription, nil
}

func (c *HTTPClient) UpdateTranscription(ctx context.Context, token, id, title, summary string) (*models.Transcription, error) {
	req := map[string]string{"title": title, "summary": summary}

	var resp transcriptionEnvelope
	if err := c.do(ctx, http.MethodPut, c.endpoint("transcribe", id), token, req, &resp); err != nil {
		return nil, err
	}
	if resp.rejected() {
		return nil, rejectedErr(resp.status)
	}
	return resp.Transcription, nil
}

func (c *HTTPClient) DeleteTranscription(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("transcribe", id), token, nil, nil)
}

func (c *HTTPClient) Ask(ctx context.Context, token, id, question string) (*models.ChatEntry, error) {
	var resp struct {
		Answer struct {
			Answer string `json:"answer"`
		} `json:"answer"`
		CreatedAt time.Time `json:"created_at"`
	}
	req := map[string]string{"question": question}
	if err := c.do(ctx, http.MethodPost, c.endpoint("transcribe", id, "ask"), token, req, &resp); err != nil {
		return nil, err
	}

	entry := &models.ChatEntry{Question: question, Answer: resp.Answer.Answer, CreatedAt: resp.CreatedAt}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return entry, nil
}

func (c *HTTPClient) ChatHistory(ctx context.Context, token, id string) ([]models.ChatEntry, error) {
	var resp struct {
		status
		History []models.ChatEntry `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("transcribe", id, "ask"), token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Success == nil || !*resp.Success {
		return nil, &APIError{Status: http.StatusOK, Message: "no history found", Kind: ErrNotFound}
	}
	return resp.History, nil
}

func (c *HTTPClient) GenerateQuiz(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPost, c.endpoint("transcribe", id, "quiz"), token, struct{}{}, nil)
}

func (c *HTTPClient) GetQuiz(ctx context.Context, token, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.do(ctx, http.MethodGet, c.endpoint("transcribe", id, "quiz"), token, nil, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (c *HTTPClient) SubmitQuiz(ctx context.Context, token, id string, answers []models.QuizAnswer) (*models.QuizResult, error) {
	var resp struct {
		Result *models.QuizResult `json:"result"`
	}
	req := map[string]any{"answers": answers}
	if err := c.do(ctx, http.MethodPost, c.endpoint("transcribe", id, "submit_quiz"), token, req, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: no quiz result in response", ErrMalformedResponse)
	}
	return resp.Result, nil
}

func (c *HTTPClient) DownloadPDF(ctx context.Context, token, id string, w io.Writer) error {
	req, err := c.newJSONRequest(ctx, http.MethodGet, c.endpoint("transcribe", id, "download"), token, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// ---- admin ----

func (c *HTTPClient) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var resp struct {
		Users []models.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("users"), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, token, id string) (*models.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint("users", id), token, nil, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, token, id, name, email string, role models.Role) (*models.User, error) {
	req := map[string]string{"name": name, "email": email, "role": string(role)}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, c.endpoint("users", id), token, req, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("users", id), token, nil, nil)
}
