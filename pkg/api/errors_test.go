package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kientrucanlac/anlac/pkg/fetch"
	"github.com/kientrucanlac/anlac/pkg/session"
	"github.com/kientrucanlac/anlac/pkg/site"
)

func TestMapAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation error",
			err:        NewValidationError("name", "name is required"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "validation error on field 'name': name is required",
		},
		{
			name:       "unknown blog category",
			err:        fmt.Errorf("%w: gardening", site.ErrUnknownCategory),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "unknown blog category: gardening",
		},
		{
			name:       "missing token",
			err:        session.ErrNoToken,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "token is required",
		},
		{
			name:       "expired token",
			err:        session.ErrTokenExpired,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "token has expired",
		},
		{
			name:       "rejected backend call is a gateway failure",
			err:        &fetch.Error{Message: "Hết phiên"},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Hết phiên",
		},
		{
			name:       "backend failure",
			err:        &fetch.Error{Message: "Dịch vụ tạm ngưng"},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Dịch vụ tạm ngưng",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := mapAPIError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
