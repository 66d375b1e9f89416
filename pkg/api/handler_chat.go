package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getChatHandler handles GET /api/chat.
func (s *Server) getChatHandler(c *gin.Context) {
	c.JSON(http.StatusOK, chatResponse(handleFrom(c).Visitor().Widget))
}

// toggleChatHandler handles POST /api/chat/toggle.
func (s *Server) toggleChatHandler(c *gin.Context) {
	w := handleFrom(c).Visitor().Widget
	w.Toggle()
	c.JSON(http.StatusOK, chatResponse(w))
}

// setChatInputHandler handles PUT /api/chat/input.
func (s *Server) setChatInputHandler(c *gin.Context) {
	var req ChatInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	w := handleFrom(c).Visitor().Widget
	w.SetInput(req.Text)
	c.JSON(http.StatusOK, chatResponse(w))
}

// sendChatMessageHandler handles POST /api/chat/messages. The bot reply is
// appended later, so a submitted message answers 202. Blank text is ignored
// and answers 200 with the unchanged state.
func (s *Server) sendChatMessageHandler(c *gin.Context) {
	var req ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	w := handleFrom(c).Visitor().Widget
	var submitted bool
	if req.Text == nil {
		_, submitted = w.SubmitPending()
	} else {
		_, submitted = w.Submit(*req.Text)
	}

	status := http.StatusOK
	if submitted {
		status = http.StatusAccepted
	}
	c.JSON(status, chatResponse(w))
}
