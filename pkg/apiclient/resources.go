package apiclient

import (
	"context"
	"net/url"

	"github.com/kientrucanlac/anlac/pkg/envelope"
)

// Resource is a CRUD endpoint family rooted at path.
type Resource[T any] struct {
	client *Client
	path   string
}

// List fetches every item.
func (r *Resource[T]) List(ctx context.Context) (*envelope.Envelope[[]T], error) {
	return Get[[]T](ctx, r.client, r.path)
}

// Get fetches one item by id.
func (r *Resource[T]) Get(ctx context.Context, id string) (*envelope.Envelope[T], error) {
	return Get[T](ctx, r.client, r.itemPath(id))
}

// Create posts a new item.
func (r *Resource[T]) Create(ctx context.Context, item T) (*envelope.Envelope[T], error) {
	return Post[T](ctx, r.client, r.path, item)
}

// Update replaces the item with id.
func (r *Resource[T]) Update(ctx context.Context, id string, item T) (*envelope.Envelope[T], error) {
	return Put[T](ctx, r.client, r.itemPath(id), item)
}

// Delete removes the item with id.
func (r *Resource[T]) Delete(ctx context.Context, id string) (*envelope.Envelope[any], error) {
	return Delete[any](ctx, r.client, r.itemPath(id))
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// ProjectResource adds image upload to the project endpoints.
type ProjectResource struct {
	Resource[Project]
}

// UploadImage attaches an image to a project as multipart/form-data.
func (r *ProjectResource) UploadImage(ctx context.Context, id string, image File) (*envelope.Envelope[Project], error) {
	if image.Field == "" {
		image.Field = "image"
	}
	return Upload[Project](ctx, r.client, r.itemPath(id)+"/images", nil, image)
}
