package store

import (
	"context"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
)

// Result is the response envelope of the bulk-load HTTP service.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// API is the request/response backend the store confirms optimistic
// mutations against and bulk-loads from. A call that returns an error and
// one that returns Success=false are treated the same way.
type API interface {
	FetchObjects(ctx context.Context) (Result[[]SpatialObject], error)
	FetchAssistant(ctx context.Context) (Result[Assistant], error)
	FetchStorageItems(ctx context.Context) (Result[[]StorageItem], error)

	MoveObject(ctx context.Context, id string, pos geometry.Position) (Result[SpatialObject], error)
	CreateObject(ctx context.Context, obj SpatialObject) (Result[SpatialObject], error)
	DeleteObject(ctx context.Context, id string) (Result[struct{}], error)
	UpdateObjectState(ctx context.Context, id string, states map[string]any) (Result[SpatialObject], error)
	MoveAssistant(ctx context.Context, pos geometry.Position) (Result[Assistant], error)

	StoreObject(ctx context.Context, id string) (Result[StorageItem], error)
	PlaceStorageItem(ctx context.Context, id, roomID string, pos geometry.Position) (Result[SpatialObject], error)
}

// APIError is a failure reported by, or while talking to, the API. Its
// message is what gets shown to the user.
type APIError struct {
	Op      string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// failure converts a call outcome into an *APIError, or nil on success.
func failure[T any](op string, res Result[T], err error) *APIError {
	if err != nil {
		return &APIError{Op: op, Message: err.Error()}
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = op + " failed"
		}
		return &APIError{Op: op, Message: msg}
	}
	return nil
}
