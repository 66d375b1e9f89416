package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// loginPageHandler handles GET /login, the landing page of forced logouts.
func (s *Server) loginPageHandler(c *gin.Context) {
	h := handleFrom(c)
	c.JSON(http.StatusOK, LoginPageResponse{
		Page:          s.catalog.Page("login"),
		Authenticated: h.Token() != "",
	})
}

// loginHandler handles POST /login by storing the backend token for the
// visitor.
func (s *Server) loginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	h := handleFrom(c)
	if err := s.sessions.Login(c.Request.Context(), h.Visitor().ID, req.Token); err != nil {
		abortWithError(c, err)
		return
	}
	s.logger.Info("Visitor logged in", "session_id", h.Visitor().ID)
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// logoutHandler handles POST /logout.
func (s *Server) logoutHandler(c *gin.Context) {
	h := handleFrom(c)
	if err := s.sessions.Logout(c.Request.Context(), h.Visitor().ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}
