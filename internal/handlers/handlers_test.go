package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/cache"
	"github.com/ibunity/backend/internal/middleware"
	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/storage"
	"github.com/ibunity/backend/internal/testdb"
)

// newTestEnv wires the handlers onto a router the way the server does,
// backed by a throwaway database and a temp upload dir.
func newTestEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.New(t)
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	feedCache, err := cache.New(64)
	require.NoError(t, err)

	h := NewHandler(db, store, feedCache)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)

	public := api.Group("")
	public.Use(middleware.OptionalAuth())
	{
		public.GET("/feed", h.Post.GetFeed)
		public.GET("/posts/:id", h.Post.GetPost)
		public.GET("/posts/:id/answers", h.Answer.GetAnswers)
		public.GET("/posts/:id/difficulty", h.Difficulty.GetDifficulty)
		public.GET("/answers/:id/replies", h.Reply.GetReplies)
		public.GET("/subjects", h.Subject.ListSubjects)
		public.GET("/subjects/:id", h.Subject.GetSubject)
		public.GET("/content/:id", h.Content.GetContent)
		public.GET("/files/*path", h.Content.ServeFile)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", h.Auth.GetMe)
		protected.DELETE("/posts/:id", h.Post.DeletePost)
		protected.POST("/posts/:id/vote", h.Post.VotePost)
		protected.POST("/posts/:id/difficulty", h.Difficulty.VoteDifficulty)
		protected.POST("/posts/:id/answers", h.Answer.CreateAnswer)
		protected.DELETE("/answers/:id", h.Answer.DeleteAnswer)
		protected.POST("/answers/:id/vote", h.Answer.VoteAnswer)
		protected.POST("/answers/:id/replies", h.Reply.CreateReply)
		protected.DELETE("/replies/:id", h.Reply.DeleteReply)
		protected.POST("/replies/:id/vote", h.Reply.VoteReply)
		protected.POST("/subjects/:id/join", h.Subject.JoinSubject)
		protected.DELETE("/subjects/:id/join", h.Subject.LeaveSubject)
		protected.GET("/notifications", h.Notification.List)
		protected.GET("/notifications/unread-count", h.Notification.UnreadCount)
		protected.POST("/notifications/:id/read", h.Notification.Read)
		protected.POST("/create-payment-intent", h.Payment.CreatePaymentIntent)
		protected.POST("/create-razorpay-order", h.Payment.CreateRazorpayOrder)
		protected.POST("/purchases/confirm", h.Payment.ConfirmPurchase)
	}

	return r, db
}

// tokenFor signs a token the same way the auth handler does.
func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Username:    name,
		Email:       name + "@test.local",
		Password:    "x",
		DisplayName: name,
		Role:        "member",
		Curriculum:  "DP",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createSubject(t *testing.T, db *gorm.DB, name, curriculum string) models.Subject {
	t.Helper()
	subject := models.Subject{Name: name, Curriculum: curriculum, Group: "Sciences"}
	require.NoError(t, db.Create(&subject).Error)
	return subject
}

func createPost(t *testing.T, db *gorm.DB, subjectID, authorID int, title string) models.Post {
	t.Helper()
	post := models.Post{SubjectID: subjectID, AuthorID: authorID, Title: title, Body: "body"}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func createAnswer(t *testing.T, db *gorm.DB, postID, authorID int) models.Answer {
	t.Helper()
	answer := models.Answer{PostID: postID, AuthorID: authorID, Body: "an answer"}
	require.NoError(t, db.Create(&answer).Error)
	return answer
}
