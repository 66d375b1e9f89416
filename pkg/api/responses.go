package api

import (
	"github.com/kientrucanlac/anlac/pkg/apiclient"
	"github.com/kientrucanlac/anlac/pkg/chat"
	"github.com/kientrucanlac/anlac/pkg/fetch"
	"github.com/kientrucanlac/anlac/pkg/site"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HomeResponse is returned by GET /.
type HomeResponse struct {
	Page     site.PageMeta                    `json:"page"`
	Company  site.Company                     `json:"company"`
	Services fetch.State[[]apiclient.Service] `json:"services"`
	Projects fetch.State[[]apiclient.Project] `json:"featured_projects"`
}

// ServicesResponse is returned by GET /services.
type ServicesResponse struct {
	Page     site.PageMeta                    `json:"page"`
	Services fetch.State[[]apiclient.Service] `json:"services"`
}

// PortfolioResponse is returned by GET /portfolio.
type PortfolioResponse struct {
	Page     site.PageMeta                    `json:"page"`
	Category string                           `json:"category"`
	Projects fetch.State[[]apiclient.Project] `json:"projects"`
}

// ProjectResponse is returned by GET /project/:id.
type ProjectResponse struct {
	Page    site.PageMeta                  `json:"page"`
	Project fetch.State[apiclient.Project] `json:"project"`
}

// BlogResponse is returned by GET /blog.
type BlogResponse struct {
	Page       site.PageMeta    `json:"page"`
	Category   string           `json:"category"`
	Search     string           `json:"search,omitempty"`
	Categories []site.Category  `json:"categories"`
	Listing    site.BlogListing `json:"listing"`
}

// AboutResponse is returned by GET /about.
type AboutResponse struct {
	Page    site.PageMeta `json:"page"`
	Company site.Company  `json:"company"`
}

// ContactPageResponse is returned by GET /contact.
type ContactPageResponse struct {
	Page     site.PageMeta                    `json:"page"`
	Company  site.Company                     `json:"company"`
	Services fetch.State[[]apiclient.Service] `json:"services"`
}

// ContactResponse is returned by a successful POST /contact.
type ContactResponse struct {
	Contact apiclient.Contact `json:"contact"`
	Message string            `json:"message"`
}

// LoginPageResponse is returned by GET /login.
type LoginPageResponse struct {
	Page          site.PageMeta `json:"page"`
	Authenticated bool          `json:"authenticated"`
}

// StatusResponse acknowledges a state change.
type StatusResponse struct {
	Status string `json:"status"`
}

// ChatResponse is the visitor's chat widget state.
type ChatResponse struct {
	Open     bool           `json:"open"`
	Input    string         `json:"input"`
	Messages []chat.Message `json:"messages"`
	Pending  int            `json:"pending_replies"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}

// HealthCheck is one component's health.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func chatResponse(w *chat.Widget) ChatResponse {
	return ChatResponse{
		Open:     w.IsOpen(),
		Input:    w.Input(),
		Messages: w.Messages(),
		Pending:  w.PendingReplies(),
	}
}
