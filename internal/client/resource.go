package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
)

// resource provides the CRUD calls shared by every entity collection.
type resource[T any] struct {
	httpClient *http.Client
	path       string
	kind       string
	plural     string
}

func newResource[T any](httpClient *http.Client, path, kind, plural string) resource[T] {
	return resource[T]{
		httpClient: httpClient,
		path:       path,
		kind:       kind,
		plural:     plural,
	}
}

func (r *resource[T]) itemPath(id uuid.UUID) string {
	return r.path + "/" + id.String()
}

func (r *resource[T]) list(ctx context.Context, path string, query url.Values) ([]T, error) {
	resp, err := r.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.plural, err)
	}

	return decodeList[T](resp, r.plural)
}

func (r *resource[T]) get(ctx context.Context, id uuid.UUID) (*T, error) {
	resp, err := r.httpClient.Get(ctx, r.itemPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", r.kind, err)
	}

	return decode[T](resp, r.kind)
}

func (r *resource[T]) create(ctx context.Context, body interface{}) (*T, error) {
	return r.post(ctx, r.path, body)
}

func (r *resource[T]) post(ctx context.Context, path string, body interface{}) (*T, error) {
	resp, err := r.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.kind, err)
	}

	return decode[T](resp, r.kind)
}

func (r *resource[T]) update(ctx context.Context, id uuid.UUID, body interface{}) (*T, error) {
	resp, err := r.httpClient.Put(ctx, r.itemPath(id), body)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", r.kind, err)
	}

	return decode[T](resp, r.kind)
}

func (r *resource[T]) delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.httpClient.Delete(ctx, r.itemPath(id), nil)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", r.kind, err)
	}

	return nil
}

// getOne resolves a list query that must match exactly one entity.
func (r *resource[T]) getOne(ctx context.Context, query url.Values, ambiguous error) (*T, error) {
	items, err := r.list(ctx, r.path, query)
	if err != nil {
		return nil, err
	}

	switch len(items) {
	case 0:
		return nil, &zen.Error{
			Code:   zen.CodeNotFound,
			Method: "GET",
			Path:   r.path,
			Detail: []string{"KeyError", fmt.Sprintf("no %s matches %s", r.kind, query.Encode())},
		}
	case 1:
		return &items[0], nil
	default:
		return nil, fmt.Errorf("%w: %d %s match %s", ambiguous, len(items), r.plural, query.Encode())
	}
}

func decode[T any](resp *http.Response, what string) (*T, error) {
	var result T

	err := json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, malformed(resp, what, err)
	}

	return &result, nil
}

func decodeList[T any](resp *http.Response, what string) ([]T, error) {
	var result []T

	err := json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, malformed(resp, what+" list", err)
	}

	if result == nil {
		result = []T{}
	}

	return result, nil
}

// malformed reports a success response whose body does not have the expected shape.
func malformed(resp *http.Response, what string, err error) error {
	return &zen.Error{
		Code:       zen.CodeMalformedResponse,
		StatusCode: resp.StatusCode,
		Detail:     []string{"parsing " + what + " response", err.Error()},
		Err:        err,
	}
}
