package staging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"parley/domain"
	"parley/errors"
)

// Minimal real payloads so MIME detection sees actual magic bytes.
var (
	pngPayload = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	mp4Payload = []byte{
		0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
		'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
		'i', 's', 'o', 'm', 'm', 'p', '4', '1',
	}
	textPayload = []byte("just some plain notes")
)

func TestStager_Stage_Then_Unstage_Leaves_No_Handles(t *testing.T) {
	req := require.New(t)
	alloc := NewLocalAllocator()
	stager := NewStager(slog.Default(), alloc)

	staged, err := stager.Stage([]File{
		{Name: "a.png", Data: pngPayload},
		{Name: "b.png", Data: pngPayload},
	}, domain.AttachmentImage)
	req.NoError(err)
	req.Len(staged, 2)
	req.Equal(2, alloc.Outstanding())

	// Unstage every staged item, front first.
	req.NoError(stager.Unstage(0))
	req.NoError(stager.Unstage(0))

	req.Empty(stager.Previews())
	req.Equal(0, alloc.Outstanding())
}

func TestStager_Partial_Failure_Keeps_Valid_Files(t *testing.T) {
	req := require.New(t)
	alloc := NewLocalAllocator()
	stager := NewStager(slog.Default(), alloc)

	// When staging a mixed batch as images
	staged, err := stager.Stage([]File{
		{Name: "photo.png", Data: pngPayload},
		{Name: "notes.txt", Data: textPayload},
	}, domain.AttachmentImage)

	// Then the mismatch is rejected with a validation error
	var verr *errors.ValidationError
	req.ErrorAs(err, &verr)
	req.Contains(verr.Reason, "notes.txt")

	// And the remainder is staged anyway
	req.Len(staged, 1)
	req.Equal("photo.png", staged[0].Name)
	req.Equal(1, alloc.Outstanding())
}

func TestStager_Video_Kind_Accepts_Video_Only(t *testing.T) {
	req := require.New(t)
	stager := NewStager(slog.Default(), NewLocalAllocator())

	staged, err := stager.Stage([]File{
		{Name: "clip.mp4", Data: mp4Payload},
		{Name: "photo.png", Data: pngPayload},
	}, domain.AttachmentVideo)

	req.Error(err)
	req.Len(staged, 1)
	req.Equal("clip.mp4", staged[0].Name)
}

func TestStager_Generic_File_Kind_Accepts_Anything(t *testing.T) {
	req := require.New(t)
	stager := NewStager(slog.Default(), NewLocalAllocator())

	staged, err := stager.Stage([]File{
		{Name: "notes.txt", Data: textPayload},
		{Name: "photo.png", Data: pngPayload},
	}, domain.AttachmentFile)

	req.NoError(err)
	req.Len(staged, 2)
}

func TestStager_ClearAll_Revokes_Everything_Once(t *testing.T) {
	req := require.New(t)
	alloc := NewLocalAllocator()
	stager := NewStager(slog.Default(), alloc)

	_, err := stager.Stage([]File{
		{Name: "a.png", Data: pngPayload},
		{Name: "b.png", Data: pngPayload},
	}, domain.AttachmentImage)
	req.NoError(err)

	stager.ClearAll()
	req.Equal(0, alloc.Outstanding())

	// Clearing an already-empty stager revokes nothing further.
	stager.ClearAll()
	req.Equal(0, alloc.Outstanding())
}

func TestStager_Unstage_Out_Of_Range(t *testing.T) {
	req := require.New(t)
	stager := NewStager(slog.Default(), NewLocalAllocator())

	var verr *errors.ValidationError
	req.ErrorAs(stager.Unstage(0), &verr)
}

func TestLocalAllocator_Double_Revoke_Is_Reported(t *testing.T) {
	req := require.New(t)
	alloc := NewLocalAllocator()

	handle := alloc.Create("a.png")
	req.NoError(alloc.Revoke(handle))
	req.ErrorIs(alloc.Revoke(handle), errors.ErrHandleRevoked)
	req.ErrorIs(alloc.Revoke(domain.Handle("local://never-created")), errors.ErrUnknownHandle)
}
