package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nrw/pkg/contentfilter"
	"nrw/pkg/logger"
	"nrw/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockModerationRepository struct {
	mock.Mock
}

func (m *MockModerationRepository) GetPostByID(id string) (*models.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockModerationRepository) GetPendingPosts(limit, offset int) ([]*models.Post, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockModerationRepository) UpdatePostStatus(id string, status models.PostStatus) error {
	return m.Called(id, status).Error(0)
}

func setupHandler(repo *MockModerationRepository) (*ModerationHandler, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	handler := NewModerationHandler(repo, contentfilter.Default(), nil, logger.New())
	router := gin.New()
	router.GET("/moderation/pending", handler.GetPendingPosts)
	router.POST("/moderation/posts/:post_id/review", handler.ReviewPost)
	router.POST("/moderation/check", handler.CheckText)
	router.GET("/moderation/blocklist", handler.GetBlocklist)
	return handler, router
}

func TestGetPendingPosts(t *testing.T) {
	repo := new(MockModerationRepository)
	_, router := setupHandler(repo)

	posts := []*models.Post{
		{ID: "p1", Status: models.StatusPending},
		{ID: "p2", Status: models.StatusPending},
	}
	repo.On("GetPendingPosts", 50, 0).Return(posts, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/moderation/pending", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])
}

func TestReviewPostApproved(t *testing.T) {
	repo := new(MockModerationRepository)
	_, router := setupHandler(repo)

	repo.On("GetPostByID", "p1").Return(&models.Post{ID: "p1", AuthorID: "a1", Status: models.StatusPending}, nil)
	repo.On("UpdatePostStatus", "p1", models.StatusApproved).Return(nil)

	body := bytes.NewBufferString(`{"status":"approved"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/moderation/posts/p1/review", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestReviewPostInvalidStatus(t *testing.T) {
	repo := new(MockModerationRepository)
	_, router := setupHandler(repo)

	body := bytes.NewBufferString(`{"status":"maybe"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/moderation/posts/p1/review", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "UpdatePostStatus", mock.Anything, mock.Anything)
}

func TestReviewPostNotFound(t *testing.T) {
	repo := new(MockModerationRepository)
	_, router := setupHandler(repo)

	repo.On("GetPostByID", "missing").Return(nil, errors.New("record not found"))

	body := bytes.NewBufferString(`{"status":"rejected"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/moderation/posts/missing/review", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckTextBlocked(t *testing.T) {
	repo := new(MockModerationRepository)
	_, router := setupHandler(repo)

	body := bytes.NewBufferString(`{"text":"spread h4te"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/moderation/check", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["blocked"])
	assert.NotEmpty(t, response["reason"])
}

func TestCheckTextClean(t *testing.T) {
	repo := new(MockModerationRepository)
	_, router := setupHandler(repo)

	body := bytes.NewBufferString(`{"text":"what a lovely day"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/moderation/check", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, false, response["blocked"])
}

func TestGetBlocklist(t *testing.T) {
	repo := new(MockModerationRepository)
	_, router := setupHandler(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/moderation/blocklist", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Greater(t, response["count"], float64(0))
}
