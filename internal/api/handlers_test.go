package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F0nkell/AI-careerist/internal/api"
	"github.com/F0nkell/AI-careerist/internal/core"
	"github.com/F0nkell/AI-careerist/internal/speech"
	"github.com/F0nkell/AI-careerist/internal/store"
)

const testBotToken = "123456:TEST-TOKEN"

type fakeProcessor struct {
	calls  int
	input  core.TurnInput
	result *core.TurnResult
	err    error
}

func (f *fakeProcessor) ProcessVoiceTurn(ctx context.Context, in core.TurnInput) (*core.TurnResult, error) {
	f.calls++
	f.input = in
	return f.result, f.err
}

type fakeUserStore struct {
	upserts []store.User
}

func (f *fakeUserStore) UpsertUser(ctx context.Context, user *store.User) error {
	f.upserts = append(f.upserts, *user)
	return nil
}

// Panicking stages prove that a request never reached the external services.

type panicConverter struct{}

func (panicConverter) ToWAV(ctx context.Context, src, dst string) error {
	panic("converter must not be called")
}

type panicTranscriber struct{}

func (panicTranscriber) Transcribe(ctx context.Context, path, language string) (string, error) {
	panic("transcriber must not be called")
}

type panicResponder struct{}

func (panicResponder) Respond(ctx context.Context, prompt core.TurnPrompt) (string, error) {
	panic("responder must not be called")
}

type panicSynthesizer struct{}

func (panicSynthesizer) Synthesize(ctx context.Context, text, dir, name string) (string, error) {
	panic("synthesizer must not be called")
}

type panicRetriever struct{}

func (panicRetriever) Context(ctx context.Context, category string) (string, error) {
	panic("retriever must not be called")
}

var (
	_ speech.Converter   = panicConverter{}
	_ speech.Transcriber = panicTranscriber{}
	_ speech.Synthesizer = panicSynthesizer{}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, processor api.TurnProcessor, users api.UserStore) *httptest.Server {
	t.Helper()
	handler := api.NewAPIHandler(processor, users, testBotToken, testLogger())
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func signInitData(t *testing.T, botToken string, values url.Values) string {
	t.Helper()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func multipartAudio(t *testing.T, audio []byte, history string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	file, err := w.CreateFormFile("file", "voice.ogg")
	require.NoError(t, err)
	_, err = file.Write(audio)
	require.NoError(t, err)

	if history != "" {
		require.NoError(t, w.WriteField("history", history))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestHealthHandler(t *testing.T) {
	srv := newServer(t, &fakeProcessor{}, &fakeUserStore{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestMeHandler_Unauthorized(t *testing.T) {
	srv := newServer(t, &fakeProcessor{}, &fakeUserStore{})

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Bearer sometoken"},
		{name: "garbage payload", header: "twa-init-data not-signed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/me", nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestMeHandler_ValidPayload(t *testing.T) {
	users := &fakeUserStore{}
	srv := newServer(t, &fakeProcessor{}, users)

	initData := signInitData(t, testBotToken, url.Values{
		"auth_date": {fmt.Sprintf("%d", time.Now().Unix())},
		"user":      {`{"id":5000000001,"first_name":"Alice","username":"alice","is_premium":true}`},
	})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "twa-init-data "+initData)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var identity struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&identity))
	assert.Equal(t, int64(5000000001), identity.ID)
	assert.Equal(t, "Alice", identity.FirstName)

	// First authenticated contact creates the user.
	require.Len(t, users.upserts, 1)
	assert.Equal(t, int64(5000000001), users.upserts[0].ID)
	assert.True(t, users.upserts[0].IsPremium)
}

func TestInterviewChat_MissingFile(t *testing.T) {
	srv := newServer(t, &fakeProcessor{}, &fakeUserStore{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("history", "[]"))
	require.NoError(t, w.Close())

	resp, err := http.Post(srv.URL+"/interview/chat", w.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInterviewChat_BadHistoryJSON(t *testing.T) {
	srv := newServer(t, &fakeProcessor{}, &fakeUserStore{})

	body, contentType := multipartAudio(t, bytes.Repeat([]byte{0x01}, 2048), "{not an array")
	resp, err := http.Post(srv.URL+"/interview/chat", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInterviewChat_HistoryPassedThrough(t *testing.T) {
	processor := &fakeProcessor{result: &core.TurnResult{UserText: "привет", AIText: "Здравствуйте!"}}
	srv := newServer(t, processor, &fakeUserStore{})

	history := `[{"role":"user","content":"привет"},{"role":"assistant","content":"здравствуйте"}]`
	body, contentType := multipartAudio(t, bytes.Repeat([]byte{0x01}, 2048), history)

	resp, err := http.Post(srv.URL+"/interview/chat", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, processor.calls)
	require.Len(t, processor.input.History, 2)
	assert.Equal(t, "assistant", processor.input.History[1].Role)
}

func TestInterviewChat_ProcessorError(t *testing.T) {
	processor := &fakeProcessor{err: fmt.Errorf("model overloaded")}
	srv := newServer(t, processor, &fakeUserStore{})

	body, contentType := multipartAudio(t, bytes.Repeat([]byte{0x01}, 2048), "")
	resp, err := http.Post(srv.URL+"/interview/chat", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	// The upstream cause stays in the logs, not in the response.
	assert.NotContains(t, payload["detail"], "overloaded")
}

// TestInterviewChat_ShortAudioEndToEnd runs the real orchestrator with
// panicking stages: a 500-byte upload must produce the loudness prompt
// without touching any external service.
func TestInterviewChat_ShortAudioEndToEnd(t *testing.T) {
	svc := core.NewInterviewService(core.InterviewDeps{
		Retriever:   panicRetriever{},
		Converter:   panicConverter{},
		Transcriber: panicTranscriber{},
		Responder:   panicResponder{},
		Synthesizer: panicSynthesizer{},
		TempDir:     t.TempDir(),
		Language:    "ru",
		Logger:      testLogger(),
	})
	srv := newServer(t, svc, &fakeUserStore{})

	body, contentType := multipartAudio(t, bytes.Repeat([]byte{0x01}, 500), "")
	resp, err := http.Post(srv.URL+"/interview/chat", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result core.TurnResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Empty(t, result.UserText)
	assert.Equal(t, core.ReplyTooQuiet, result.AIText)
	assert.Empty(t, result.AudioBase64)
}
