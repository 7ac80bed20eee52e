package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"careerbridge-service/internal/assistant"
)

// AssistantHandler proxies the AI assistant screen to the remote
// text-completion endpoint, re-emitting the decoded stream as SSE.
type AssistantHandler struct {
	client *assistant.Client
}

// NewAssistantHandler builds an AssistantHandler.
func NewAssistantHandler(client *assistant.Client) *AssistantHandler {
	return &AssistantHandler{client: client}
}

// Chat streams a completion for the posted message history. Each delta goes
// out as an SSE data event, terminated by [DONE].
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req struct {
		Messages []assistant.TurnMessage `json:"messages" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	onDelta := func(delta string) {
		payload, _ := json.Marshal(gin.H{"delta": delta})
		fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		flusher.Flush()
	}

	_, err := h.client.Stream(c.Request.Context(), req.Messages, onDelta)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, assistant.ErrRateLimited):
			status = http.StatusTooManyRequests
		case errors.Is(err, assistant.ErrQuotaExhausted):
			status = http.StatusPaymentRequired
		case errors.Is(err, assistant.ErrNotConfigured):
			status = http.StatusServiceUnavailable
		}
		// Headers may already be out; surface the failure in-stream too.
		payload, _ := json.Marshal(gin.H{"error": err.Error(), "status": status})
		fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	flusher.Flush()
}
