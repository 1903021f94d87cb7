package architect

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/voxeldragons/siteapi/internal/architect"
	"github.com/voxeldragons/siteapi/internal/security"
)

// Handler exposes architect chat sessions over HTTP.
//
// Sessions live only in this process; a browser reload starts over by
// creating a new session, which matches the original client behavior.
type Handler struct {
	svc *architect.Service

	mu       sync.Mutex
	sessions map[string]*architect.Session
}

// NewHandler constructs an architect Handler.
func NewHandler(svc *architect.Service) *Handler {
	return &Handler{svc: svc, sessions: make(map[string]*architect.Session)}
}

// RegisterArchitectRoutes registers the chat relay endpoints.
func RegisterArchitectRoutes(r *gin.Engine, svc *architect.Service) {
	if r == nil || svc == nil {
		return
	}
	h := NewHandler(svc)
	group := r.Group("/v0/architect")
	group.POST("/sessions", h.CreateSession)
	group.POST("/sessions/:id/messages", h.SendMessage)
}

// createSessionRequest carries the uploaded project files.
type createSessionRequest struct {
	Files []architect.ProjectFile `json:"files"`
}

// CreateSession opens a chat session seeded with the project files.
func (h *Handler) CreateSession(c *gin.Context) {
	var body createSessionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files are required"})
		return
	}

	session, errStart := h.svc.StartSession(c.Request.Context(), body.Files)
	if errStart != nil {
		log.WithError(errStart).Error("architect session start failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream model error"})
		return
	}

	id, errID := security.GenerateRandomString(16)
	if errID != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate session id failed"})
		return
	}

	h.mu.Lock()
	h.sessions[id] = session
	h.mu.Unlock()

	log.Infof("architect session started with %d files", len(body.Files))
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

// sendMessageRequest carries one user chat message. Stream defaults to
// true; a client sending `"stream": false` gets one JSON reply instead
// of server-sent events.
type sendMessageRequest struct {
	Message string `json:"message"`
	Stream  *bool  `json:"stream"`
}

// SendMessage streams the model reply for one message as server-sent events.
//
// Each fragment arrives as `data: {"text": "..."}`; the stream ends with
// `data: [DONE]` on success or `data: {"error": "..."}` on failure. A
// mid-stream upstream error simply ends the stream.
func (h *Handler) SendMessage(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	h.mu.Lock()
	session, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var body sendMessageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	message := strings.TrimSpace(body.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	if body.Stream != nil && !*body.Stream {
		reply, errSend := session.SendMessage(c.Request.Context(), message)
		if errSend != nil {
			log.WithError(errSend).Error("architect send failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream model error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"text": reply})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	errStream := session.SendMessageStream(c.Request.Context(), message, func(fragment string) error {
		return writeEvent(c, gin.H{"text": fragment})
	})
	if errStream != nil {
		log.WithError(errStream).Error("architect stream failed")
		_ = writeEvent(c, gin.H{"error": "upstream model error"})
		return
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

// writeEvent writes one JSON SSE frame and flushes it to the client.
func writeEvent(c *gin.Context, payload gin.H) error {
	data, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return errMarshal
	}
	if _, errWrite := fmt.Fprintf(c.Writer, "data: %s\n\n", data); errWrite != nil {
		return errWrite
	}
	c.Writer.Flush()
	return nil
}
