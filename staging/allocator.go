// Package staging owns the lifecycle of locally-selected files between
// selection and send. It is the sole owner of preview handles and must
// release every one of them on every exit path.
package staging

import (
	"sync"

	"github.com/google/uuid"

	"parley/domain"
	"parley/errors"
)

// Allocator creates and revokes local preview handles, the module's
// equivalent of revocable object URLs.
type Allocator interface {
	Create(name string) domain.Handle
	Revoke(handle domain.Handle) error
	// Outstanding counts handles created and not yet revoked.
	Outstanding() int
}

// LocalAllocator tracks handle state in memory. Revoking a handle twice is
// a defect, so it is reported as an error instead of being swallowed.
type LocalAllocator struct {
	mu      sync.Mutex
	live    map[domain.Handle]struct{}
	revoked map[domain.Handle]struct{}
}

func NewLocalAllocator() *LocalAllocator {
	return &LocalAllocator{
		live:    make(map[domain.Handle]struct{}),
		revoked: make(map[domain.Handle]struct{}),
	}
}

func (a *LocalAllocator) Create(name string) domain.Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	handle := domain.Handle("local://" + uuid.NewString() + "/" + name)
	a.live[handle] = struct{}{}
	return handle
}

func (a *LocalAllocator) Revoke(handle domain.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, done := a.revoked[handle]; done {
		return errors.ErrHandleRevoked
	}
	if _, ok := a.live[handle]; !ok {
		return errors.ErrUnknownHandle
	}
	delete(a.live, handle)
	a.revoked[handle] = struct{}{}
	return nil
}

func (a *LocalAllocator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}
