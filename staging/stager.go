package staging

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"parley/domain"
	"parley/domain/mimetypes"
	"parley/errors"
)

// File is one locally-selected file entering the staging area.
type File struct {
	Name string
	Data []byte
}

// Stager validates and stages selected files, keeping exactly one live
// handle per staged preview until it leaves through Unstage, ClearAll or
// teardown.
type Stager struct {
	mu       sync.Mutex
	log      *slog.Logger
	alloc    Allocator
	previews []domain.AttachmentPreview
}

func NewStager(log *slog.Logger, alloc Allocator) *Stager {
	return &Stager{log: log, alloc: alloc}
}

// Stage validates each file against the declared kind and stages the ones
// that pass. Partial-failure semantics: mismatches are excluded and reported
// through a ValidationError while the remainder still succeeds.
func (s *Stager) Stage(files []File, kind domain.AttachmentKind) ([]domain.AttachmentPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rejected []string
	staged := make([]domain.AttachmentPreview, 0, len(files))
	for _, f := range files {
		detected := mimetype.Detect(f.Data).String()
		if !matchesKind(detected, kind) {
			s.log.Warn("Rejecting staged file", "name", f.Name, "detected", detected, "kind", kind)
			rejected = append(rejected, f.Name)
			continue
		}
		preview := domain.AttachmentPreview{
			Name:    f.Name,
			Handle:  s.alloc.Create(f.Name),
			Kind:    kind,
			Mime:    detected,
			Payload: f.Data,
		}
		s.previews = append(s.previews, preview)
		staged = append(staged, preview)
	}

	if len(rejected) > 0 {
		return staged, &errors.ValidationError{
			Reason: fmt.Sprintf("not a %s file: %s", kind, strings.Join(rejected, ", ")),
		}
	}
	return staged, nil
}

// Unstage revokes the preview's local handle and removes it.
func (s *Stager) Unstage(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.previews) {
		return &errors.ValidationError{Reason: fmt.Sprintf("no staged attachment at index %d", index)}
	}
	if err := s.alloc.Revoke(s.previews[index].Handle); err != nil {
		return err
	}
	s.previews = append(s.previews[:index], s.previews[index+1:]...)
	return nil
}

// ClearAll revokes every live handle. Used at send time and on teardown.
func (s *Stager) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.previews {
		if err := s.alloc.Revoke(p.Handle); err != nil {
			// A failed revoke here means the exactly-once invariant was
			// already broken elsewhere; log it, never panic a teardown.
			s.log.Error("Revoking staged handle failed", "handle", p.Handle, "error", err)
		}
	}
	s.previews = nil
}

// Previews returns a copy of the currently staged attachments, in staging order.
func (s *Stager) Previews() []domain.AttachmentPreview {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AttachmentPreview, len(s.previews))
	copy(out, s.previews)
	return out
}

func matchesKind(detected string, kind domain.AttachmentKind) bool {
	switch kind {
	case domain.AttachmentImage:
		return mimetypes.IsImage(detected)
	case domain.AttachmentVideo:
		return mimetypes.IsVideo(detected)
	default:
		// Generic file attachments accept any payload.
		return true
	}
}
