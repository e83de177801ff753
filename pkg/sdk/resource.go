package sdk

import (
	"context"
	"net/http"
	"net/url"
)

// Resource is a typed handle on one collection path of the API.
// Every call issues exactly one request.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds path (e.g. "/placement/drives") to c.
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

func (r *Resource[T]) item(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// List fetches the whole collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.client.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Create posts a new record and returns the server's version of it.
func (r *Resource[T]) Create(ctx context.Context, rec T) (T, error) {
	var out T
	err := r.client.do(ctx, http.MethodPost, r.path, rec, &out)
	return out, err
}

// Update replaces the record at id and returns the server's version of it.
func (r *Resource[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var out T
	err := r.client.do(ctx, http.MethodPut, r.item(id), rec, &out)
	return out, err
}

// Remove deletes the record at id.
func (r *Resource[T]) Remove(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.item(id), nil, nil)
}
