package api

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/YourBr0ther/deskmate-sub001/internal/storage"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

const assistantAssetID = "assistant"

// assistantSpec lets the assistant snapshot live in an asset file.
type assistantSpec struct {
	store.Assistant
}

func (a *assistantSpec) Validate() error {
	if a.EnergyLevel < 0 || a.EnergyLevel > 1 {
		return fmt.Errorf("energy_level must be between 0 and 1")
	}
	if !geometry.InRoom(a.Position) {
		return fmt.Errorf("position %v is outside the room", a.Position)
	}
	return nil
}

// FixtureBackend serves the bulk-load API from JSON assets on disk so the
// client can run without the HTTP service. Mutations are written back.
//
// Layout under the root:
//
//	objects/*.json    spatial objects
//	storage/*.json    storage items
//	assistant/*.json  a single asset with id "assistant"
type FixtureBackend struct {
	objects   *storage.FileStore[*store.SpatialObject]
	items     *storage.FileStore[*store.StorageItem]
	assistant *storage.FileStore[*assistantSpec]

	now func() time.Time
	mu  sync.Mutex
}

var _ store.API = (*FixtureBackend)(nil)

func NewFixtureBackend(root string) (*FixtureBackend, error) {
	for _, dir := range []string{"objects", "storage", "assistant"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fmt.Errorf("creating fixture dir: %w", err)
		}
	}

	objects, err := storage.NewFileStore[*store.SpatialObject](filepath.Join(root, "objects"))
	if err != nil {
		return nil, fmt.Errorf("loading objects: %w", err)
	}
	items, err := storage.NewFileStore[*store.StorageItem](filepath.Join(root, "storage"))
	if err != nil {
		return nil, fmt.Errorf("loading storage items: %w", err)
	}
	assistant, err := storage.NewFileStore[*assistantSpec](filepath.Join(root, "assistant"))
	if err != nil {
		return nil, fmt.Errorf("loading assistant: %w", err)
	}

	return &FixtureBackend{
		objects:   objects,
		items:     items,
		assistant: assistant,
		now:       time.Now,
	}, nil
}

func ok[T any](data T) store.Result[T] {
	return store.Result[T]{Success: true, Data: data}
}

func fail[T any](format string, args ...any) store.Result[T] {
	return store.Result[T]{Error: fmt.Sprintf(format, args...)}
}

func (f *FixtureBackend) FetchObjects(context.Context) (store.Result[[]store.SpatialObject], error) {
	all := f.objects.GetAll()
	out := make([]store.SpatialObject, 0, len(all))
	for id, o := range all {
		obj := o.Clone()
		obj.ID = id
		out = append(out, obj)
	}
	slices.SortFunc(out, func(a, b store.SpatialObject) int { return cmp.Compare(a.ID, b.ID) })
	return ok(out), nil
}

func (f *FixtureBackend) FetchAssistant(context.Context) (store.Result[store.Assistant], error) {
	a, found := f.assistant.Get(assistantAssetID)
	if !found {
		return ok(store.DefaultAssistant()), nil
	}
	return ok(a.Assistant), nil
}

func (f *FixtureBackend) FetchStorageItems(context.Context) (store.Result[[]store.StorageItem], error) {
	all := f.items.GetAll()
	out := make([]store.StorageItem, 0, len(all))
	for id, it := range all {
		item := *it
		item.ID = id
		item.Properties = maps.Clone(it.Properties)
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b store.StorageItem) int { return cmp.Compare(a.ID, b.ID) })
	return ok(out), nil
}

func (f *FixtureBackend) MoveObject(_ context.Context, id string, pos geometry.Position) (store.Result[store.SpatialObject], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, found := f.objects.Get(id)
	if !found {
		return fail[store.SpatialObject]("object %s not found", id), nil
	}
	if !o.Movable {
		return fail[store.SpatialObject]("object %s is not movable", id), nil
	}

	obj := o.Clone()
	obj.Position = geometry.ClampToRoom(pos)
	if err := f.objects.Save(id, &obj); err != nil {
		return store.Result[store.SpatialObject]{}, err
	}
	return ok(obj), nil
}

func (f *FixtureBackend) CreateObject(_ context.Context, obj store.SpatialObject) (store.Result[store.SpatialObject], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj = obj.Clone()
	if obj.ID == "" {
		obj.ID = uuid.New().String()
	}
	if _, found := f.objects.Get(obj.ID); found {
		return fail[store.SpatialObject]("object %s already exists", obj.ID), nil
	}
	if err := obj.Validate(); err != nil {
		return fail[store.SpatialObject]("%v", err), nil
	}
	obj.Position = geometry.ClampToRoom(obj.Position)

	if err := f.objects.Save(obj.ID, &obj); err != nil {
		return store.Result[store.SpatialObject]{}, err
	}
	return ok(obj), nil
}

func (f *FixtureBackend) DeleteObject(_ context.Context, id string) (store.Result[struct{}], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, found := f.objects.Get(id); !found {
		return fail[struct{}]("object %s not found", id), nil
	}
	if err := f.objects.Delete(id); err != nil {
		return store.Result[struct{}]{}, err
	}
	return ok(struct{}{}), nil
}

func (f *FixtureBackend) UpdateObjectState(_ context.Context, id string, states map[string]any) (store.Result[store.SpatialObject], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, found := f.objects.Get(id)
	if !found {
		return fail[store.SpatialObject]("object %s not found", id), nil
	}

	obj := o.Clone()
	if obj.States == nil {
		obj.States = map[string]any{}
	}
	maps.Copy(obj.States, states)
	if err := f.objects.Save(id, &obj); err != nil {
		return store.Result[store.SpatialObject]{}, err
	}
	return ok(obj), nil
}

func (f *FixtureBackend) MoveAssistant(_ context.Context, pos geometry.Position) (store.Result[store.Assistant], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a := store.DefaultAssistant()
	if cur, found := f.assistant.Get(assistantAssetID); found {
		a = cur.Assistant
	}
	a.Position = geometry.ClampToRoom(pos)
	a.IsMoving = false

	if err := f.assistant.Save(assistantAssetID, &assistantSpec{Assistant: a}); err != nil {
		return store.Result[store.Assistant]{}, err
	}
	return ok(a), nil
}

func (f *FixtureBackend) StoreObject(_ context.Context, id string) (store.Result[store.StorageItem], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, found := f.objects.Get(id)
	if !found {
		return fail[store.StorageItem]("object %s not found", id), nil
	}
	if !o.Movable {
		return fail[store.StorageItem]("object %s cannot be stored", id), nil
	}

	item := store.StorageItem{
		ID:         id,
		Name:       o.Name,
		Type:       o.Type,
		Size:       o.Size,
		Properties: maps.Clone(o.Properties),
		CreatedAt:  f.now().UTC(),
	}
	if err := f.items.Save(id, &item); err != nil {
		return store.Result[store.StorageItem]{}, err
	}
	if err := f.objects.Delete(id); err != nil {
		return store.Result[store.StorageItem]{}, err
	}
	return ok(item), nil
}

func (f *FixtureBackend) PlaceStorageItem(_ context.Context, id, roomID string, pos geometry.Position) (store.Result[store.SpatialObject], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, found := f.items.Get(id)
	if !found {
		return fail[store.SpatialObject]("storage item %s not found", id), nil
	}
	if _, taken := f.objects.Get(id); taken {
		return fail[store.SpatialObject]("object %s already exists", id), nil
	}

	typ := it.Type
	if !typ.Valid() || typ == store.ObjectTypeStorageItem {
		typ = store.ObjectTypeItem
	}
	obj := store.SpatialObject{
		ID:          id,
		Type:        typ,
		Name:        it.Name,
		Position:    geometry.ClampToRoom(pos),
		Size:        it.Size,
		Interactive: true,
		Movable:     true,
		RoomID:      roomID,
		Properties:  maps.Clone(it.Properties),
	}
	if err := f.objects.Save(id, &obj); err != nil {
		return store.Result[store.SpatialObject]{}, err
	}
	if err := f.items.Delete(id); err != nil {
		return store.Result[store.SpatialObject]{}, err
	}
	return ok(obj), nil
}
