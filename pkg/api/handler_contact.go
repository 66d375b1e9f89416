package api

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kientrucanlac/anlac/pkg/apiclient"
	"github.com/kientrucanlac/anlac/pkg/envelope"
	"github.com/kientrucanlac/anlac/pkg/fetch"
)

const msgContactReceived = "Cảm ơn bạn đã liên hệ! Chúng tôi sẽ phản hồi trong thời gian sớm nhất."

// submitContactHandler handles POST /contact.
func (s *Server) submitContactHandler(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	contact, err := req.toContact()
	if err != nil {
		abortWithError(c, err)
		return
	}

	h, client, ok := s.withBackend(c)
	if !ok {
		return
	}

	m := fetch.NewMutation()
	created, err := fetch.Execute(c.Request.Context(), m, func(ctx context.Context) (*envelope.Envelope[apiclient.Contact], error) {
		return client.Contacts.Create(ctx, contact)
	})
	if target, redirect := h.Redirect(); redirect {
		c.Redirect(http.StatusFound, target)
		return
	}
	if err != nil {
		s.logger.Warn("Contact submission failed", "error", m.Err())
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ContactResponse{Contact: created, Message: msgContactReceived})
}

func (r ContactRequest) toContact() (apiclient.Contact, error) {
	contact := apiclient.Contact{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Service: strings.TrimSpace(r.Service),
		Message: strings.TrimSpace(r.Message),
	}
	if contact.Name == "" {
		return contact, NewValidationError("name", "name is required")
	}
	if contact.Email == "" && contact.Phone == "" {
		return contact, NewValidationError("email", "email or phone is required")
	}
	if contact.Email != "" {
		if _, err := mail.ParseAddress(contact.Email); err != nil {
			return contact, NewValidationError("email", "invalid email address")
		}
	}
	if contact.Message == "" {
		return contact, NewValidationError("message", "message is required")
	}
	return contact, nil
}
