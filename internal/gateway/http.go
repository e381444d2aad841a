package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/governance"
	"github.com/rahul/pathwise/internal/observability"
	"github.com/rahul/pathwise/internal/tracker"
)

const sessionKey = "session"

// HTTPServer serves the JSON task API.
type HTTPServer struct {
	Tracker Tracker
	Auth    Authenticator
	Policy  governance.PolicyEngine
	Logger  *observability.Logger

	router *gin.Engine
	srv    *http.Server
}

type goalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func NewHTTPServer(t Tracker, auth Authenticator, policy governance.PolicyEngine, logger *observability.Logger) *HTTPServer {
	s := &HTTPServer{
		Tracker: t,
		Auth:    auth,
		Policy:  policy,
		Logger:  logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests, cors)
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api/tasks", s.authenticate, s.throttle)
	{
		api.GET("", s.handleList)
		api.POST("/create", s.handleCreate)
		api.GET("/stats/overview", s.handleStats)
		api.GET("/:id", s.handleGet)
		api.GET("/:id/insights", s.handleInsights)
		api.PUT("/:id", s.handleEdit)
		api.PUT("/:id/subtask/:subtaskId/complete", s.handleToggle)
		api.DELETE("/:id", s.handleDelete)
	}

	s.router = router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Listen binds addr; Start then serves on it.
func (s *HTTPServer) Listen(addr string) {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *HTTPServer) Start() error {
	if s.srv == nil {
		s.Listen(":5000")
	}
	log.Printf("HTTP API listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// Middleware

func (s *HTTPServer) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	owner := ""
	if sess, ok := sessionFrom(c); ok {
		owner = sess.OwnerID
	}
	s.Logger.LogRequest(owner, c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
}

func cors(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, HEAD, PUT, PATCH, POST, DELETE")
	h.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func (s *HTTPServer) authenticate(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}
	sess, ok := s.Auth.Authenticate(token)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func (s *HTTPServer) throttle(c *gin.Context) {
	if s.Policy == nil {
		c.Next()
		return
	}
	sess, _ := sessionFrom(c)
	res, err := s.Policy.Evaluate(c.Request.Context(), governance.Request{
		Action:  governance.ActionRequest,
		OwnerID: sess.OwnerID,
	})
	if err != nil {
		s.writeError(c, err)
		c.Abort()
		return
	}
	if res.Effect != governance.EffectAllow {
		s.Logger.LogPolicy(sess.OwnerID, string(governance.ActionRequest), string(res.Effect), res.Reason)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": res.Reason})
		return
	}
	c.Next()
}

func sessionFrom(c *gin.Context) (tracker.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return tracker.Session{}, false
	}
	sess, ok := v.(tracker.Session)
	return sess, ok
}

// writeError maps domain errors to status codes. Foreign and missing ids
// both answer 404.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var verr *goal.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error(), "field": verr.Field})
	case errors.Is(err, goal.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, tracker.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	default:
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

// Handlers

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"system": observability.GetStatus(),
	})
}

func (s *HTTPServer) handleList(c *gin.Context) {
	sess, _ := sessionFrom(c)
	goals, err := s.Tracker.List(c.Request.Context(), sess)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (s *HTTPServer) handleCreate(c *gin.Context) {
	sess, _ := sessionFrom(c)
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	g, err := s.Tracker.Create(c.Request.Context(), sess, req.Title, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully with AI-generated plan",
		"task":    g,
	})
}

func (s *HTTPServer) handleGet(c *gin.Context) {
	sess, _ := sessionFrom(c)
	g, err := s.Tracker.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *HTTPServer) handleInsights(c *gin.Context) {
	sess, _ := sessionFrom(c)
	in, err := s.Tracker.Insights(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

func (s *HTTPServer) handleEdit(c *gin.Context) {
	sess, _ := sessionFrom(c)
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	g, err := s.Tracker.Edit(c.Request.Context(), sess, c.Param("id"), req.Title, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    g,
	})
}

func (s *HTTPServer) handleToggle(c *gin.Context) {
	sess, _ := sessionFrom(c)
	g, done, err := s.Tracker.ToggleStep(c.Request.Context(), sess, c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "Subtask updated successfully",
		"task":             g,
		"subtaskCompleted": done,
	})
}

func (s *HTTPServer) handleDelete(c *gin.Context) {
	sess, _ := sessionFrom(c)
	if err := s.Tracker.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (s *HTTPServer) handleStats(c *gin.Context) {
	sess, _ := sessionFrom(c)
	stats, err := s.Tracker.Stats(c.Request.Context(), sess)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
