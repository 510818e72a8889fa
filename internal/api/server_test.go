package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickai/quickai/internal/config"
	"github.com/quickai/quickai/internal/media"
	"github.com/quickai/quickai/internal/models"
)

const testSecret = "test-secret"

type fakeService struct {
	content string
	err     error

	gotUserID  string
	gotPrompt  string
	gotLength  int
	gotPublish bool
	gotObject  string
	gotSource  media.Source
	gotResume  []byte
	gotLikeID  int

	creations []models.Creation
	message   string
}

func (f *fakeService) GenerateArticle(_ context.Context, userID, prompt string, length int) (string, error) {
	f.gotUserID, f.gotPrompt, f.gotLength = userID, prompt, length
	return f.content, f.err
}

func (f *fakeService) GenerateBlogTitle(_ context.Context, userID, prompt string) (string, error) {
	f.gotUserID, f.gotPrompt = userID, prompt
	return f.content, f.err
}

func (f *fakeService) GenerateImage(_ context.Context, userID, prompt string, publish bool) (string, error) {
	f.gotUserID, f.gotPrompt, f.gotPublish = userID, prompt, publish
	return f.content, f.err
}

func (f *fakeService) RemoveBackground(_ context.Context, userID string, image media.Source) (string, error) {
	f.gotUserID, f.gotSource = userID, image
	return f.content, f.err
}

func (f *fakeService) RemoveObject(_ context.Context, userID string, image media.Source, object string) (string, error) {
	f.gotUserID, f.gotSource, f.gotObject = userID, image, object
	return f.content, f.err
}

func (f *fakeService) ReviewResume(_ context.Context, userID string, resume []byte) (string, error) {
	f.gotUserID, f.gotResume = userID, resume
	return f.content, f.err
}

func (f *fakeService) UserCreations(_ context.Context, userID string) ([]models.Creation, error) {
	f.gotUserID = userID
	return f.creations, f.err
}

func (f *fakeService) PublishedCreations(context.Context) ([]models.Creation, error) {
	return f.creations, f.err
}

func (f *fakeService) ToggleLike(_ context.Context, userID string, id int) (string, error) {
	f.gotUserID, f.gotLikeID = userID, id
	return f.message, f.err
}

type fakeSessions struct {
	token string
	err   error
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (string, error) {
	return f.token, f.err
}

func setupTestServer(t *testing.T, svc *fakeService) *Server {
	t.Helper()
	cfg := config.LoadConfig()
	cfg.Supabase.JWTSecret = testSecret
	return NewServer(cfg, svc, &fakeSessions{token: "provider-token"}, nil)
}

func mintToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func jsonRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAuthGating(t *testing.T) {
	server := setupTestServer(t, &fakeService{})

	t.Run("health check is open", func(t *testing.T) {
		resp, err := server.app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing token is rejected with the standard envelope", func(t *testing.T) {
		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/ai/generate-article", "", models.GenerateArticleRequest{Prompt: "p", Length: 100}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeBody[models.MessageResponse](t, resp)
		assert.False(t, body.Success)
		assert.Equal(t, "Unauthorized", body.Message)
	})

	t.Run("token signed with the wrong key is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		resp, err := server.app.Test(jsonRequest(t, "GET", "/api/user/get-user-creations", signed, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token without a subject is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		resp, err := server.app.Test(jsonRequest(t, "GET", "/api/user/get-user-creations", signed, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("returns the provider token", func(t *testing.T) {
		server := setupTestServer(t, &fakeService{})
		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/auth/login", "", models.LoginRequest{
			Email:    "user@example.com",
			Password: "password",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[models.LoginResponse](t, resp)
		assert.True(t, body.Success)
		assert.Equal(t, "provider-token", body.Token)
		assert.Equal(t, "Bearer", body.TokenType)
	})

	t.Run("missing credentials are rejected", func(t *testing.T) {
		server := setupTestServer(t, &fakeService{})
		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/auth/login", "", models.LoginRequest{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid credentials map to 401", func(t *testing.T) {
		svc := &fakeService{}
		cfg := config.LoadConfig()
		cfg.Supabase.JWTSecret = testSecret
		server := NewServer(cfg, svc, &fakeSessions{err: models.NewError(models.KindUnauthorized, "Invalid credentials")}, nil)

		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/auth/login", "", models.LoginRequest{
			Email:    "user@example.com",
			Password: "wrong",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHandleGenerateArticle(t *testing.T) {
	t.Run("passes the subject and body through and wraps the content", func(t *testing.T) {
		svc := &fakeService{content: "the article"}
		server := setupTestServer(t, svc)

		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/ai/generate-article", mintToken(t, "user-7"),
			models.GenerateArticleRequest{Prompt: "write about Go", Length: 800}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[models.ContentResponse](t, resp)
		assert.True(t, body.Success)
		assert.Equal(t, "the article", body.Content)
		assert.Equal(t, "user-7", svc.gotUserID)
		assert.Equal(t, "write about Go", svc.gotPrompt)
		assert.Equal(t, 800, svc.gotLength)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input maps to 400", models.NewError(models.KindInvalidInput, "Prompt is required."), http.StatusBadRequest},
		{"plan gate maps to 403", models.NewError(models.KindPlanRequired, "This feature is only available for premium subscriptions"), http.StatusForbidden},
		{"upstream failure maps to 502", models.NewError(models.KindUpstream, "model overloaded"), http.StatusBadGateway},
		{"persistence failure maps to 500", models.NewError(models.KindPersistence, "Failed to save creation"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, &fakeService{err: tt.err})
			resp, err := server.app.Test(jsonRequest(t, "POST", "/api/ai/generate-article", mintToken(t, "user-7"),
				models.GenerateArticleRequest{Prompt: "p", Length: 100}))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody[models.MessageResponse](t, resp)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHandleGenerateImage(t *testing.T) {
	t.Run("coerces a string publish flag", func(t *testing.T) {
		svc := &fakeService{content: "https://cdn.example/img.png"}
		server := setupTestServer(t, svc)

		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/ai/generate-image", mintToken(t, "user-7"),
			map[string]any{"prompt": "a lighthouse", "publish": "true"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, svc.gotPublish)
	})

	t.Run("boolean publish flag", func(t *testing.T) {
		svc := &fakeService{content: "https://cdn.example/img.png"}
		server := setupTestServer(t, svc)

		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/ai/generate-image", mintToken(t, "user-7"),
			map[string]any{"prompt": "a lighthouse", "publish": false}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, svc.gotPublish)
	})
}

func multipartRequest(t *testing.T, target, token, fileField, filename string, fileData []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = part.Write(fileData)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHandleRemoveObject(t *testing.T) {
	t.Run("passes the file and object name through", func(t *testing.T) {
		svc := &fakeService{content: "https://cdn.example/edited.png"}
		server := setupTestServer(t, svc)

		req := multipartRequest(t, "/api/ai/remove-image-object", mintToken(t, "user-7"),
			"image", "photo.png", []byte("png-bytes"), map[string]string{"object": "duck"})
		resp, err := server.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "duck", svc.gotObject)
		assert.Equal(t, []byte("png-bytes"), svc.gotSource.Bytes)
	})

	t.Run("missing file maps to 400", func(t *testing.T) {
		server := setupTestServer(t, &fakeService{})
		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/ai/remove-image-object", mintToken(t, "user-7"),
			map[string]string{"object": "duck"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody[models.MessageResponse](t, resp)
		assert.Equal(t, "Image file is required.", body.Message)
	})
}

func TestHandleReviewResume(t *testing.T) {
	t.Run("uploads the resume bytes", func(t *testing.T) {
		svc := &fakeService{content: "## Feedback"}
		server := setupTestServer(t, svc)

		req := multipartRequest(t, "/api/ai/review-resume", mintToken(t, "user-7"),
			"resume", "resume.pdf", []byte("%PDF-1.4 data"), nil)
		resp, err := server.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []byte("%PDF-1.4 data"), svc.gotResume)
	})

	t.Run("unreadable document maps to 422", func(t *testing.T) {
		svc := &fakeService{err: models.NewError(models.KindUnreadableDocument, "Resume text is too short or unreadable.")}
		server := setupTestServer(t, svc)

		req := multipartRequest(t, "/api/ai/review-resume", mintToken(t, "user-7"),
			"resume", "resume.pdf", []byte("%PDF-1.4 data"), nil)
		resp, err := server.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestUserRoutes(t *testing.T) {
	t.Run("lists the caller's creations", func(t *testing.T) {
		svc := &fakeService{creations: []models.Creation{{ID: 1, UserID: "user-7", Type: models.TypeArticle}}}
		server := setupTestServer(t, svc)

		resp, err := server.app.Test(jsonRequest(t, "GET", "/api/user/get-user-creations", mintToken(t, "user-7"), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[models.CreationsResponse](t, resp)
		assert.True(t, body.Success)
		require.Len(t, body.Creations, 1)
		assert.Equal(t, "user-7", svc.gotUserID)
	})

	t.Run("lists the public feed", func(t *testing.T) {
		svc := &fakeService{creations: []models.Creation{{ID: 2, Publish: true}}}
		server := setupTestServer(t, svc)

		resp, err := server.app.Test(jsonRequest(t, "GET", "/api/user/get-published-creations", mintToken(t, "user-7"), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[models.CreationsResponse](t, resp)
		require.Len(t, body.Creations, 1)
	})

	t.Run("toggles a like", func(t *testing.T) {
		svc := &fakeService{message: "Creation Liked"}
		server := setupTestServer(t, svc)

		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/user/toggle-like-creations", mintToken(t, "user-7"),
			models.ToggleLikeRequest{ID: 12}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[models.MessageResponse](t, resp)
		assert.Equal(t, "Creation Liked", body.Message)
		assert.Equal(t, 12, svc.gotLikeID)
	})

	t.Run("unknown creation maps to 404", func(t *testing.T) {
		svc := &fakeService{err: models.NewError(models.KindNotFound, "Creation not found")}
		server := setupTestServer(t, svc)

		resp, err := server.app.Test(jsonRequest(t, "POST", "/api/user/toggle-like-creations", mintToken(t, "user-7"),
			models.ToggleLikeRequest{ID: 99}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
