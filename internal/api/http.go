package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/YourBr0ther/deskmate-sub001/internal/protocol"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

const (
	DefaultTimeout = 10 * time.Second

	// MaxResponseBody caps how much of a response is read.
	MaxResponseBody = 4 << 20

	maxErrorBody = 512
)

// HTTPClient talks to the bulk-load HTTP service. Every endpoint answers
// with a {success,data,error} envelope.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	maxBody    int64
}

var _ store.API = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    MaxResponseBody,
	}
}

// assistantWire is the flat assistant snapshot served by the HTTP API.
type assistantWire struct {
	Position          protocol.Position `json:"position"`
	IsMoving          bool              `json:"is_moving"`
	Mood              string            `json:"mood"`
	Status            string            `json:"status"`
	Facing            string            `json:"facing"`
	SittingOnObjectID *string           `json:"sitting_on_object_id"`
	HoldingObjectID   *string           `json:"holding_object_id"`
	EnergyLevel       float64           `json:"energy_level"`
	CurrentAction     string            `json:"current_action"`
}

func (a assistantWire) toStore() store.Assistant {
	return store.Assistant{
		Position:          a.Position.Pixels(),
		IsMoving:          a.IsMoving,
		Mood:              store.Mood(a.Mood),
		Status:            store.Status(a.Status),
		Facing:            store.Facing(a.Facing),
		SittingOnObjectID: a.SittingOnObjectID,
		HoldingObjectID:   a.HoldingObjectID,
		EnergyLevel:       a.EnergyLevel,
		CurrentAction:     a.CurrentAction,
	}
}

func (c *HTTPClient) FetchObjects(ctx context.Context) (store.Result[[]store.SpatialObject], error) {
	res, err := do[[]protocol.Object](ctx, c, http.MethodGet, "/api/objects", nil)
	return mapResult(res, func(objs []protocol.Object) []store.SpatialObject {
		out := make([]store.SpatialObject, 0, len(objs))
		for _, o := range objs {
			out = append(out, o.ToStore())
		}
		return out
	}), err
}

func (c *HTTPClient) FetchAssistant(ctx context.Context) (store.Result[store.Assistant], error) {
	res, err := do[assistantWire](ctx, c, http.MethodGet, "/api/assistant", nil)
	return mapResult(res, assistantWire.toStore), err
}

func (c *HTTPClient) FetchStorageItems(ctx context.Context) (store.Result[[]store.StorageItem], error) {
	res, err := do[[]protocol.StorageItem](ctx, c, http.MethodGet, "/api/storage", nil)
	return mapResult(res, func(items []protocol.StorageItem) []store.StorageItem {
		out := make([]store.StorageItem, 0, len(items))
		for _, it := range items {
			out = append(out, it.ToStore())
		}
		return out
	}), err
}

func (c *HTTPClient) MoveObject(ctx context.Context, id string, pos geometry.Position) (store.Result[store.SpatialObject], error) {
	body := map[string]any{"position": protocol.FromPixels(pos)}
	res, err := do[protocol.Object](ctx, c, http.MethodPut, "/api/objects/"+url.PathEscape(id)+"/position", body)
	return mapResult(res, protocol.Object.ToStore), err
}

func (c *HTTPClient) CreateObject(ctx context.Context, obj store.SpatialObject) (store.Result[store.SpatialObject], error) {
	res, err := do[protocol.Object](ctx, c, http.MethodPost, "/api/objects", protocol.ObjectFromStore(obj))
	return mapResult(res, protocol.Object.ToStore), err
}

func (c *HTTPClient) DeleteObject(ctx context.Context, id string) (store.Result[struct{}], error) {
	res, err := do[json.RawMessage](ctx, c, http.MethodDelete, "/api/objects/"+url.PathEscape(id), nil)
	return mapResult(res, func(json.RawMessage) struct{} { return struct{}{} }), err
}

func (c *HTTPClient) UpdateObjectState(ctx context.Context, id string, states map[string]any) (store.Result[store.SpatialObject], error) {
	body := map[string]any{"states": states}
	res, err := do[protocol.Object](ctx, c, http.MethodPut, "/api/objects/"+url.PathEscape(id)+"/state", body)
	return mapResult(res, protocol.Object.ToStore), err
}

func (c *HTTPClient) MoveAssistant(ctx context.Context, pos geometry.Position) (store.Result[store.Assistant], error) {
	body := map[string]any{"target": protocol.FromPixels(pos)}
	res, err := do[assistantWire](ctx, c, http.MethodPost, "/api/assistant/move", body)
	return mapResult(res, assistantWire.toStore), err
}

func (c *HTTPClient) StoreObject(ctx context.Context, id string) (store.Result[store.StorageItem], error) {
	res, err := do[protocol.StorageItem](ctx, c, http.MethodPost, "/api/objects/"+url.PathEscape(id)+"/store", nil)
	return mapResult(res, protocol.StorageItem.ToStore), err
}

func (c *HTTPClient) PlaceStorageItem(ctx context.Context, id, roomID string, pos geometry.Position) (store.Result[store.SpatialObject], error) {
	body := map[string]any{"room_id": roomID, "position": protocol.FromPixels(pos)}
	res, err := do[protocol.Object](ctx, c, http.MethodPost, "/api/storage/"+url.PathEscape(id)+"/place", body)
	return mapResult(res, protocol.Object.ToStore), err
}

// mapResult converts the data of a successful result. A failed result
// keeps its message and the zero value.
func mapResult[A, B any](r store.Result[A], fn func(A) B) store.Result[B] {
	out := store.Result[B]{Success: r.Success, Error: r.Error}
	if r.Success {
		out.Data = fn(r.Data)
	}
	return out
}

func do[T any](ctx context.Context, c *HTTPClient, method, path string, body any) (store.Result[T], error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return store.Result[T]{}, fmt.Errorf("%s %s: encoding body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return store.Result[T]{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return store.Result[T]{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return store.Result[T]{}, fmt.Errorf("%s %s: reading body: %w", method, path, err)
	}
	if int64(len(raw)) > c.maxBody {
		return store.Result[T]{}, fmt.Errorf("%s %s: response body exceeds %d bytes", method, path, c.maxBody)
	}

	var res store.Result[T]
	if err := json.Unmarshal(raw, &res); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return store.Result[T]{}, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, errorBody(raw))
		}
		return store.Result[T]{}, fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest && res.Success {
		res.Success = false
	}
	if !res.Success && res.Error == "" && resp.StatusCode >= http.StatusBadRequest {
		res.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return res, nil
}

func errorBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
