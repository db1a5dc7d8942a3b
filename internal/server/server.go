package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ibunity/backend/internal/cache"
	"github.com/ibunity/backend/internal/database"
	"github.com/ibunity/backend/internal/handlers"
	"github.com/ibunity/backend/internal/middleware"
	"github.com/ibunity/backend/internal/storage"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db := database.New()
	database.SeedSubjects(db.GetDB())

	store, err := storage.New(os.Getenv("UPLOAD_DIR"))
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	feedCache, err := cache.New(500)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db.GetDB(), store, feedCache)

	newServer := &Server{
		db:      db,
		handler: handler,
	}

	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Public reads; personalize when a valid token is present
		public := api.Group("")
		public.Use(middleware.OptionalAuth())
		{
			public.GET("/feed", s.handler.Post.GetFeed)
			public.GET("/posts/:id", s.handler.Post.GetPost)
			public.GET("/posts/:id/answers", s.handler.Answer.GetAnswers)
			public.GET("/posts/:id/difficulty", s.handler.Difficulty.GetDifficulty)
			public.GET("/answers/:id/replies", s.handler.Reply.GetReplies)
			public.GET("/subjects", s.handler.Subject.ListSubjects)
			public.GET("/subjects/:id", s.handler.Subject.GetSubject)
			public.GET("/content", s.handler.Content.ListContent)
			public.GET("/content/:id", s.handler.Content.GetContent)
			public.GET("/users/:id", s.handler.User.GetUserProfile)
			public.GET("/users/:id/posts", s.handler.Post.GetUserPosts)
			public.GET("/files/*path", s.handler.Content.ServeFile)
		}

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.POST("/auth/phone/send", s.handler.Auth.SendPhoneVerification)
			protected.POST("/auth/phone/verify", s.handler.Auth.CheckPhoneVerification)

			// Post protected routes
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)
			protected.POST("/posts/:id/difficulty", s.handler.Difficulty.VoteDifficulty)

			// Answer protected routes
			protected.POST("/posts/:id/answers", s.handler.Answer.CreateAnswer)
			protected.PUT("/answers/:id", s.handler.Answer.UpdateAnswer)
			protected.DELETE("/answers/:id", s.handler.Answer.DeleteAnswer)
			protected.POST("/answers/:id/vote", s.handler.Answer.VoteAnswer)

			// Reply protected routes
			protected.POST("/answers/:id/replies", s.handler.Reply.CreateReply)
			protected.PUT("/replies/:id", s.handler.Reply.UpdateReply)
			protected.DELETE("/replies/:id", s.handler.Reply.DeleteReply)
			protected.POST("/replies/:id/vote", s.handler.Reply.VoteReply)

			// Subject membership
			protected.POST("/subjects/:id/join", s.handler.Subject.JoinSubject)
			protected.DELETE("/subjects/:id/join", s.handler.Subject.LeaveSubject)

			// Notifications (polled by clients)
			protected.GET("/notifications", s.handler.Notification.List)
			protected.GET("/notifications/unread-count", s.handler.Notification.UnreadCount)
			protected.POST("/notifications/:id/read", s.handler.Notification.Read)
			protected.POST("/notifications/read-all", s.handler.Notification.ReadAll)
			protected.DELETE("/notifications/:id", s.handler.Notification.Delete)

			// Content library and purchases
			protected.POST("/content", s.handler.Content.CreateContent)
			protected.GET("/purchases", s.handler.Content.ListPurchases)
			protected.POST("/purchases/confirm", s.handler.Payment.ConfirmPurchase)
			protected.POST("/create-payment-intent", s.handler.Payment.CreatePaymentIntent)
			protected.POST("/create-razorpay-order", s.handler.Payment.CreateRazorpayOrder)

			// Submissions
			protected.POST("/submissions", s.handler.Submission.CreateSubmission)
			protected.GET("/submissions", s.handler.Submission.ListSubmissions)
			protected.POST("/submissions/:id/status", s.handler.Submission.UpdateSubmissionStatus)

			// User protected routes
			protected.PUT("/users/:id", s.handler.User.UpdateUserProfile)
		}
	}

	return r
}
