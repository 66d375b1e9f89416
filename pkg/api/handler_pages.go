package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/kientrucanlac/anlac/pkg/apiclient"
	"github.com/kientrucanlac/anlac/pkg/envelope"
	"github.com/kientrucanlac/anlac/pkg/fetch"
	"github.com/kientrucanlac/anlac/pkg/session"
	"github.com/kientrucanlac/anlac/pkg/site"
)

// featuredLimit caps the projects shown on the home page.
const featuredLimit = 6

// load runs producer through a Query activated with deps and waits for it to
// settle. The Query lives only as long as the request.
func load[T any](ctx context.Context, logger *slog.Logger, producer envelope.Producer[T], deps ...any) (fetch.State[T], error) {
	q := fetch.NewQuery(producer, fetch.WithLogger[T](logger))
	defer q.Close()

	q.Activate(ctx, deps...)
	return q.Wait(ctx)
}

// render writes body unless a backend call forced the visitor to log in
// again, in which case it redirects.
func render(c *gin.Context, h *session.Handle, body any) {
	if target, ok := h.Redirect(); ok {
		c.Redirect(http.StatusFound, target)
		return
	}
	c.JSON(http.StatusOK, body)
}

// withBackend resolves the visitor handle and its backend client, aborting
// the request when the client cannot be built.
func (s *Server) withBackend(c *gin.Context) (*session.Handle, *apiclient.Client, bool) {
	h := handleFrom(c)
	client, err := s.backend(h)
	if err != nil {
		abortWithError(c, err)
		return nil, nil, false
	}
	return h, client, true
}

// homeHandler handles GET /. Services and featured projects load
// concurrently.
func (s *Server) homeHandler(c *gin.Context) {
	h, client, ok := s.withBackend(c)
	if !ok {
		return
	}

	resp := HomeResponse{
		Page:    s.catalog.Page("home"),
		Company: s.catalog.Company,
	}
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		resp.Services, err = load(ctx, s.logger, client.Services.List)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Projects, err = load(ctx, s.logger, featuredProjects(client))
		return err
	})
	if err := g.Wait(); err != nil {
		abortWithError(c, err)
		return
	}

	render(c, h, resp)
}

func featuredProjects(client *apiclient.Client) envelope.Producer[[]apiclient.Project] {
	return func(ctx context.Context) (*envelope.Envelope[[]apiclient.Project], error) {
		env, err := client.Projects.List(ctx)
		if err != nil || !env.OK() {
			return env, err
		}
		featured := make([]apiclient.Project, 0, featuredLimit)
		for _, p := range env.Data {
			if p.Featured {
				featured = append(featured, p)
			}
		}
		if len(featured) == 0 {
			featured = env.Data
		}
		if len(featured) > featuredLimit {
			featured = featured[:featuredLimit]
		}
		return envelope.New(featured), nil
	}
}

// servicesHandler handles GET /services.
func (s *Server) servicesHandler(c *gin.Context) {
	h, client, ok := s.withBackend(c)
	if !ok {
		return
	}
	services, err := load(c.Request.Context(), s.logger, client.Services.List)
	if err != nil {
		abortWithError(c, err)
		return
	}
	render(c, h, ServicesResponse{Page: s.catalog.Page("services"), Services: services})
}

// portfolioHandler handles GET /portfolio?category=.
func (s *Server) portfolioHandler(c *gin.Context) {
	h, client, ok := s.withBackend(c)
	if !ok {
		return
	}
	category := strings.TrimSpace(c.DefaultQuery("category", site.AllCategories))
	if category == "" {
		category = site.AllCategories
	}

	projects, err := load(c.Request.Context(), s.logger, projectsInCategory(client, category), category)
	if err != nil {
		abortWithError(c, err)
		return
	}
	render(c, h, PortfolioResponse{
		Page:     s.catalog.Page("portfolio"),
		Category: category,
		Projects: projects,
	})
}

func projectsInCategory(client *apiclient.Client, category string) envelope.Producer[[]apiclient.Project] {
	return func(ctx context.Context) (*envelope.Envelope[[]apiclient.Project], error) {
		env, err := client.Projects.List(ctx)
		if err != nil || !env.OK() || category == site.AllCategories {
			return env, err
		}
		matched := []apiclient.Project{}
		for _, p := range env.Data {
			if p.Category == category {
				matched = append(matched, p)
			}
		}
		return envelope.New(matched), nil
	}
}

// projectHandler handles GET /project/:id.
func (s *Server) projectHandler(c *gin.Context) {
	h, client, ok := s.withBackend(c)
	if !ok {
		return
	}
	id := c.Param("id")
	project, err := load(c.Request.Context(), s.logger, func(ctx context.Context) (*envelope.Envelope[apiclient.Project], error) {
		return client.Projects.Get(ctx, id)
	}, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	render(c, h, ProjectResponse{Page: s.catalog.Page("project"), Project: project})
}

// blogHandler handles GET /blog?category=&q=. Posts come from the site
// catalog, not the backend.
func (s *Server) blogHandler(c *gin.Context) {
	category := c.DefaultQuery("category", site.AllCategories)
	search := c.Query("q")

	listing, err := s.catalog.FilterPosts(category, search)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, BlogResponse{
		Page:       s.catalog.Page("blog"),
		Category:   category,
		Search:     search,
		Categories: s.catalog.Categories,
		Listing:    listing,
	})
}

// aboutHandler handles GET /about.
func (s *Server) aboutHandler(c *gin.Context) {
	c.JSON(http.StatusOK, AboutResponse{Page: s.catalog.Page("about"), Company: s.catalog.Company})
}

// contactPageHandler handles GET /contact. The service list feeds the form's
// service selector.
func (s *Server) contactPageHandler(c *gin.Context) {
	h, client, ok := s.withBackend(c)
	if !ok {
		return
	}
	services, err := load(c.Request.Context(), s.logger, client.Services.List)
	if err != nil {
		abortWithError(c, err)
		return
	}
	render(c, h, ContactPageResponse{
		Page:     s.catalog.Page("contact"),
		Company:  s.catalog.Company,
		Services: services,
	})
}
