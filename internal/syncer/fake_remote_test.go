package syncer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/carekeep/internal/remote"
	"github.com/desertthunder/carekeep/internal/shared"
)

// fakeRemote is an in-memory collaborator. Records are stored newest first with numeric ids.
type fakeRemote struct {
	mu          sync.Mutex
	down        bool
	failCreates int
	records     map[string][]remote.WireRecord
	nextID      int
	calls       map[string]int
	createdAt   time.Time
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records:   make(map[string][]remote.WireRecord),
		nextID:    100,
		calls:     make(map[string]int),
		createdAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeRemote) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRemote) stored(path string) []remote.WireRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.WireRecord(nil), f.records[path]...)
}

func (f *fakeRemote) put(path string, rec remote.WireRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[path] = append([]remote.WireRecord{rec}, f.records[path]...)
}

func (f *fakeRemote) unavailable() error {
	return fmt.Errorf("%w: connection refused", shared.ErrRemoteUnavailable)
}

func (f *fakeRemote) FetchAll(_ context.Context, path string) ([]remote.WireRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["GET"]++
	if f.down {
		return nil, f.unavailable()
	}
	return append([]remote.WireRecord{}, f.records[path]...), nil
}

func (f *fakeRemote) Create(_ context.Context, path string, rec remote.WireRecord) (remote.WireRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["POST"]++
	if f.down {
		return nil, f.unavailable()
	}
	if f.failCreates > 0 {
		f.failCreates--
		return nil, f.unavailable()
	}

	f.nextID++
	stored := remote.WireRecord{}
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = f.nextID
	stored["created_at"] = f.createdAt.Format(time.RFC3339)
	f.records[path] = append([]remote.WireRecord{stored}, f.records[path]...)
	return stored, nil
}

func (f *fakeRemote) index(path, id string) int {
	for i, r := range f.records[path] {
		if fmt.Sprint(r["id"]) == id {
			return i
		}
	}
	return -1
}

func (f *fakeRemote) Update(_ context.Context, path, id string, rec remote.WireRecord) (remote.WireRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["PUT"]++
	if f.down {
		return nil, f.unavailable()
	}

	i := f.index(path, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}

	stored := remote.WireRecord{}
	for k, v := range rec {
		stored[k] = v
	}
	n, _ := strconv.Atoi(id)
	stored["id"] = n
	stored["created_at"] = f.records[path][i]["created_at"]
	f.records[path][i] = stored
	return stored, nil
}

func (f *fakeRemote) Delete(_ context.Context, path, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["DELETE"]++
	if f.down {
		return f.unavailable()
	}

	i := f.index(path, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	f.records[path] = append(f.records[path][:i], f.records[path][i+1:]...)
	return nil
}
