package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"
	"vocab-quiz/internal/util"
	"vocab-quiz/internal/validation"
)

// Function-field fakes; unset functions fail the call.

type fakeQuizService struct {
	ListLevelsFunc   func(ctx context.Context) (*dto.LevelListResponse, error)
	StartSessionFunc func(ctx context.Context, levelNumber int, userID string) (*dto.SessionResponse, error)
	GetSessionFunc   func(ctx context.Context, id string) (*dto.SessionResponse, error)
	GradeCurrentFunc func(ctx context.Context, id string, req dto.AnswerRequest) (*dto.AnswerResponse, error)
	AdvanceNextFunc  func(ctx context.Context, id string) (*dto.SessionResponse, error)
	GradeFunc        func(ctx context.Context, req dto.GradeRequest) (*dto.GradeResponse, error)
}

var errNotStubbed = errors.New("not stubbed")

func (f *fakeQuizService) ListLevels(ctx context.Context) (*dto.LevelListResponse, error) {
	if f.ListLevelsFunc == nil {
		return nil, errNotStubbed
	}
	return f.ListLevelsFunc(ctx)
}

func (f *fakeQuizService) StartSession(ctx context.Context, n int, userID string) (*dto.SessionResponse, error) {
	if f.StartSessionFunc == nil {
		return nil, errNotStubbed
	}
	return f.StartSessionFunc(ctx, n, userID)
}

func (f *fakeQuizService) GetSession(ctx context.Context, id string) (*dto.SessionResponse, error) {
	if f.GetSessionFunc == nil {
		return nil, errNotStubbed
	}
	return f.GetSessionFunc(ctx, id)
}

func (f *fakeQuizService) GradeCurrent(ctx context.Context, id string, req dto.AnswerRequest) (*dto.AnswerResponse, error) {
	if f.GradeCurrentFunc == nil {
		return nil, errNotStubbed
	}
	return f.GradeCurrentFunc(ctx, id, req)
}

func (f *fakeQuizService) AdvanceNext(ctx context.Context, id string) (*dto.SessionResponse, error) {
	if f.AdvanceNextFunc == nil {
		return nil, errNotStubbed
	}
	return f.AdvanceNextFunc(ctx, id)
}

func (f *fakeQuizService) Grade(ctx context.Context, req dto.GradeRequest) (*dto.GradeResponse, error) {
	if f.GradeFunc == nil {
		return nil, errNotStubbed
	}
	return f.GradeFunc(ctx, req)
}

type fakeAuthService struct {
	service.AuthService
	tokens      map[string]*dto.AuthClaims
	RefreshFunc func(ctx context.Context, token string) (string, string, error)
	CallbackFn  func(ctx context.Context, code, received, expected string) (string, string, *domain.User, error)
}

func (f *fakeAuthService) ValidateJWT(_ context.Context, token string) (*dto.AuthClaims, error) {
	if c, ok := f.tokens[token]; ok {
		return c, nil
	}
	return nil, domain.NewUnauthorizedError("invalid token")
}

func (f *fakeAuthService) GetGoogleLoginURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, token string) (string, string, error) {
	return f.RefreshFunc(ctx, token)
}

func (f *fakeAuthService) HandleGoogleCallback(ctx context.Context, code, received, expected string) (string, string, *domain.User, error) {
	return f.CallbackFn(ctx, code, received, expected)
}

type fakeUserService struct{}

func (fakeUserService) GetUserProfile(_ context.Context, userID string) (*dto.UserProfileResponse, error) {
	return &dto.UserProfileResponse{ID: userID, Email: userID + "@example.com"}, nil
}

type fakeProgressService struct {
	service.ProgressService
}

func (fakeProgressService) ListUserProgress(_ context.Context, userID string) (*dto.ProgressResponse, error) {
	return &dto.ProgressResponse{Progress: []dto.ProgressItem{{LevelNumber: 1, HighestScore: 4, IsPassed: userID == "user123"}}}, nil
}

func newTestApp(quiz *fakeQuizService, auth *fakeAuthService) *fiber.App {
	if auth.tokens == nil {
		auth.tokens = map[string]*dto.AuthClaims{"good": {UserID: "user123", TokenType: "access"}}
	}
	v := validation.NewValidator()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	RegisterRoutes(app.Group("/api"), Handlers{
		Quiz: NewQuizHandler(quiz, v),
		Auth: NewAuthHandler(auth, v),
		User: NewUserHandler(fakeUserService{}, fakeProgressService{}),
	}, auth)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestListLevels(t *testing.T) {
	app := newTestApp(&fakeQuizService{ListLevelsFunc: func(context.Context) (*dto.LevelListResponse, error) {
		return &dto.LevelListResponse{Levels: []dto.LevelResponse{{Number: 1, Title: "JLPT N5 Vocabulary", PassingScore: 3}}}, nil
	}}, &fakeAuthService{})

	resp, body := doJSON(t, app, "GET", "/api/levels", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LevelListResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "JLPT N5 Vocabulary", out.Levels[0].Title)
}

func TestStartSession(t *testing.T) {
	var gotUser string
	quiz := &fakeQuizService{StartSessionFunc: func(_ context.Context, n int, userID string) (*dto.SessionResponse, error) {
		gotUser = userID
		if n == 9 {
			return nil, domain.NewLevelNotFoundError(9)
		}
		return &dto.SessionResponse{ID: util.NewULID(), LevelNumber: n, State: "awaiting_input", Total: 5, StartedAt: time.Now()}, nil
	}}
	app := newTestApp(quiz, &fakeAuthService{})

	resp, _ := doJSON(t, app, "POST", "/api/sessions", dto.StartSessionRequest{LevelNumber: 1}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "", gotUser)

	resp, _ = doJSON(t, app, "POST", "/api/sessions", dto.StartSessionRequest{LevelNumber: 1}, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "user123", gotUser)

	resp, _ = doJSON(t, app, "POST", "/api/sessions", dto.StartSessionRequest{LevelNumber: 9}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/sessions", map[string]int{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "level_number")
}

func TestSessionRoutes(t *testing.T) {
	id := util.NewULID()
	quiz := &fakeQuizService{
		GetSessionFunc: func(_ context.Context, got string) (*dto.SessionResponse, error) {
			if got != id {
				return nil, domain.NewSessionNotFoundError(got)
			}
			return &dto.SessionResponse{ID: id, State: "awaiting_input", Question: &dto.QuestionView{Prompt: "猫", Type: "word"}}, nil
		},
		GradeCurrentFunc: func(_ context.Context, _ string, req dto.AnswerRequest) (*dto.AnswerResponse, error) {
			return &dto.AnswerResponse{Correct: req.Answer == "cat", ReferenceAnswer: "แมว", Score: 1, State: "graded"}, nil
		},
		AdvanceNextFunc: func(context.Context, string) (*dto.SessionResponse, error) {
			return nil, domain.NewInvalidStateError(domain.SessionStateAwaitingInput, "advance")
		},
	}
	app := newTestApp(quiz, &fakeAuthService{})

	resp, body := doJSON(t, app, "GET", "/api/sessions/"+id, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "answers_primary")

	resp, _ = doJSON(t, app, "GET", "/api/sessions/"+util.NewULID(), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/api/sessions/not-a-ulid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, "POST", "/api/sessions/"+id+"/answer", dto.AnswerRequest{Answer: "cat"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ans dto.AnswerResponse
	require.NoError(t, json.Unmarshal(body, &ans))
	assert.True(t, ans.Correct)

	resp, body = doJSON(t, app, "POST", "/api/sessions/"+id+"/next", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_STATE")
}

func TestGrade(t *testing.T) {
	quiz := &fakeQuizService{GradeFunc: func(_ context.Context, req dto.GradeRequest) (*dto.GradeResponse, error) {
		return &dto.GradeResponse{Correct: req.Answer == "cat", ReferenceAnswer: "แมว"}, nil
	}}
	app := newTestApp(quiz, &fakeAuthService{})

	resp, _ := doJSON(t, app, "POST", "/api/grade", dto.GradeRequest{Answer: "cat", Type: "word", AcceptedPrimary: "แมว", AcceptedSecondary: "cat"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/grade", dto.GradeRequest{Answer: "cat", Type: "essay"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserRoutesRequireAuth(t *testing.T) {
	app := newTestApp(&fakeQuizService{}, &fakeAuthService{})

	resp, _ := doJSON(t, app, "GET", "/api/users/me/progress", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, "GET", "/api/users/me/progress", nil, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var progress dto.ProgressResponse
	require.NoError(t, json.Unmarshal(body, &progress))
	assert.True(t, progress.Progress[0].IsPassed)

	resp, _ = doJSON(t, app, "GET", "/api/users/me", nil, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	auth := &fakeAuthService{
		RefreshFunc: func(_ context.Context, token string) (string, string, error) {
			if token != "r1" {
				return "", "", domain.NewUnauthorizedError("invalid token")
			}
			return "a2", "r2", nil
		},
		CallbackFn: func(_ context.Context, code, received, expected string) (string, string, *domain.User, error) {
			if received != expected {
				return "", "", nil, domain.NewUnauthorizedError("oauth state mismatch")
			}
			return "a1", "r1", &domain.User{ID: "user123", Email: "a@example.com"}, nil
		},
	}
	app := newTestApp(&fakeQuizService{}, auth)

	resp, _ := doJSON(t, app, "GET", "/api/auth/google/login", nil, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "state=")
	assert.Contains(t, resp.Header.Get("Set-Cookie"), oauthStateCookieName)

	resp, body := doJSON(t, app, "GET", "/api/auth/google/callback?code=c&state=s", nil, map[string]string{"Cookie": oauthStateCookieName + "=s"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &login))
	assert.Equal(t, "a1", login.AccessToken)
	assert.Equal(t, "a@example.com", login.User.Email)

	resp, _ = doJSON(t, app, "GET", "/api/auth/google/callback?code=c&state=s", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/api/auth/google/callback?state=s", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, "POST", "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "r1"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tokens dto.TokenResponse
	require.NoError(t, json.Unmarshal(body, &tokens))
	assert.Equal(t, "a2", tokens.AccessToken)

	resp, _ = doJSON(t, app, "POST", "/api/auth/refresh", dto.RefreshTokenRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "bad"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
