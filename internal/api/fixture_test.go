package api

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/YourBr0ther/deskmate-sub001/internal/storage"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

func writeFixture[T storage.ValidatingSpec](t *testing.T, dir, id string, spec T) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	data, err := json.Marshal(storage.Asset[T]{Version: 1, Identifier: id, Spec: spec})
	if err != nil {
		t.Fatalf("marshalling fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func newFixture(t *testing.T) (*FixtureBackend, string) {
	t.Helper()
	root := t.TempDir()

	writeFixture(t, filepath.Join(root, "objects"), "desk", &store.SpatialObject{
		ID: "desk", Type: store.ObjectTypeFurniture, Name: "Desk",
		Position: geometry.Position{X: 100, Y: 100}, Size: geometry.Size{Width: 120, Height: 60},
		Solid: true,
	})
	writeFixture(t, filepath.Join(root, "objects"), "lamp", &store.SpatialObject{
		ID: "lamp", Type: store.ObjectTypeItem, Name: "Lamp",
		Position: geometry.Position{X: 400, Y: 100}, Size: geometry.Size{Width: 30, Height: 30},
		Interactive: true, Movable: true, States: map[string]any{"on": false},
	})
	writeFixture(t, filepath.Join(root, "storage"), "book", &store.StorageItem{
		ID: "book", Name: "Book", Type: store.ObjectTypeItem, Size: geometry.Size{Width: 30, Height: 30},
	})
	writeFixture(t, filepath.Join(root, "assistant"), assistantAssetID, &assistantSpec{Assistant: store.Assistant{
		Position: geometry.Position{X: 600, Y: 300}, Mood: store.MoodFocused, Status: store.StatusIdle,
		Facing: store.FacingRight, EnergyLevel: 0.8,
	}})

	f, err := NewFixtureBackend(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f, root
}

func TestNewFixtureBackend_EmptyRoot(t *testing.T) {
	f, err := NewFixtureBackend(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	objs, _ := f.FetchObjects(context.Background())
	testutil.AssertEqual(t, "objects", len(objs.Data), 0)

	a, _ := f.FetchAssistant(context.Background())
	testutil.AssertEqual(t, "default assistant", a.Data, store.DefaultAssistant())
}

func TestNewFixtureBackend_InvalidAssistant(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "assistant"), assistantAssetID, &assistantSpec{Assistant: store.Assistant{EnergyLevel: 3}})

	_, err := NewFixtureBackend(root)
	testutil.AssertErrorContains(t, err, "energy_level must be between 0 and 1")
}

func TestFixtureBackend_Fetch(t *testing.T) {
	f, _ := newFixture(t)

	objs, err := f.FetchObjects(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "count", len(objs.Data), 2)
	testutil.AssertEqual(t, "sorted", objs.Data[0].ID, "desk")

	items, err := f.FetchStorageItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "items", len(items.Data), 1)

	a, err := f.FetchAssistant(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "mood", a.Data.Mood, store.MoodFocused)
}

func TestFixtureBackend_Failures(t *testing.T) {
	tests := map[string]struct {
		call   func(f *FixtureBackend) string
		expMsg string
	}{
		"move unknown object": {
			call: func(f *FixtureBackend) string {
				res, _ := f.MoveObject(context.Background(), "ghost", geometry.Position{})
				return res.Error
			},
			expMsg: "object ghost not found",
		},
		"move immovable object": {
			call: func(f *FixtureBackend) string {
				res, _ := f.MoveObject(context.Background(), "desk", geometry.Position{})
				return res.Error
			},
			expMsg: "object desk is not movable",
		},
		"create duplicate": {
			call: func(f *FixtureBackend) string {
				res, _ := f.CreateObject(context.Background(), store.SpatialObject{ID: "desk", Type: store.ObjectTypeItem})
				return res.Error
			},
			expMsg: "object desk already exists",
		},
		"create invalid type": {
			call: func(f *FixtureBackend) string {
				res, _ := f.CreateObject(context.Background(), store.SpatialObject{ID: "rug", Type: "carpet"})
				return res.Error
			},
			expMsg: `object "rug": invalid type "carpet"`,
		},
		"delete unknown": {
			call: func(f *FixtureBackend) string {
				res, _ := f.DeleteObject(context.Background(), "ghost")
				return res.Error
			},
			expMsg: "object ghost not found",
		},
		"store furniture": {
			call: func(f *FixtureBackend) string {
				res, _ := f.StoreObject(context.Background(), "desk")
				return res.Error
			},
			expMsg: "object desk cannot be stored",
		},
		"place unknown item": {
			call: func(f *FixtureBackend) string {
				res, _ := f.PlaceStorageItem(context.Background(), "ghost", "main-room", geometry.Position{})
				return res.Error
			},
			expMsg: "storage item ghost not found",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f, _ := newFixture(t)
			testutil.AssertEqual(t, "message", tt.call(f), tt.expMsg)
		})
	}
}

func TestFixtureBackend_MutationsPersist(t *testing.T) {
	f, root := newFixture(t)
	ctx := context.Background()

	if res, err := f.MoveObject(ctx, "lamp", geometry.Position{X: 5000, Y: 200}); err != nil || !res.Success {
		t.Fatalf("move: %v %q", err, res.Error)
	}
	if res, err := f.UpdateObjectState(ctx, "lamp", map[string]any{"on": true}); err != nil || !res.Success {
		t.Fatalf("update state: %v %q", err, res.Error)
	}
	if res, err := f.MoveAssistant(ctx, geometry.Position{X: 50, Y: 60}); err != nil || !res.Success {
		t.Fatalf("move assistant: %v %q", err, res.Error)
	}

	reopened, err := NewFixtureBackend(root)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}

	objs, _ := reopened.FetchObjects(ctx)
	lamp := objs.Data[1]
	testutil.AssertEqual(t, "clamped x", lamp.Position.X, float64(geometry.RoomWidth))
	testutil.AssertEqual(t, "state", lamp.States["on"], any(true))

	a, _ := reopened.FetchAssistant(ctx)
	testutil.AssertEqual(t, "assistant position", a.Data.Position, geometry.Position{X: 50, Y: 60})
	testutil.AssertEqual(t, "assistant mood kept", a.Data.Mood, store.MoodFocused)
}

func TestFixtureBackend_StoreAndPlace(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	stored, err := f.StoreObject(ctx, "lamp")
	if err != nil || !stored.Success {
		t.Fatalf("store: %v %q", err, stored.Error)
	}
	testutil.AssertEqual(t, "item name", stored.Data.Name, "Lamp")
	if _, found := f.objects.Get("lamp"); found {
		t.Error("lamp still in objects after store")
	}

	placed, err := f.PlaceStorageItem(ctx, "book", "main-room", geometry.Position{X: 200, Y: 200})
	if err != nil || !placed.Success {
		t.Fatalf("place: %v %q", err, placed.Error)
	}
	testutil.AssertEqual(t, "placed room", placed.Data.RoomID, "main-room")
	testutil.AssertEqual(t, "placed position", placed.Data.Position, geometry.Position{X: 200, Y: 200})
	testutil.AssertEqual(t, "placed movable", placed.Data.Movable, true)

	items, _ := f.FetchStorageItems(ctx)
	testutil.AssertEqual(t, "items", len(items.Data), 1)
	testutil.AssertEqual(t, "remaining item", items.Data[0].ID, "lamp")
}

func TestFixtureBackend_DrivesStore(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()
	s := store.New(f)

	if err := s.LoadRoomData(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.LoadStorageItems(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "room objects", len(s.GetCurrentRoomObjects()), 2)
	testutil.AssertEqual(t, "assistant mood", s.Assistant().Mood, store.MoodFocused)

	if err := s.MoveObject(ctx, "lamp", geometry.Position{X: 500, Y: 100}); err != nil {
		t.Fatalf("move: %v", err)
	}
	err := s.MoveObject(ctx, "desk", geometry.Position{X: 500, Y: 300})
	testutil.AssertErrorContains(t, err, "object desk is not movable")
	desk, _ := s.Object("desk")
	testutil.AssertEqual(t, "desk rolled back", desk.Position, geometry.Position{X: 100, Y: 100})

	if err := s.StoreObject(ctx, "lamp"); err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, ok := s.StorageItem("lamp"); !ok {
		t.Error("lamp missing from storage")
	}
	testutil.AssertEqual(t, "ledger empty", len(s.PendingOperations()), 0)
}
