package domain

// AttachmentKind is the kind declared by the compose surface when staging
// files. Staged payloads must match it (image files must carry an image
// content type, video files a video content type).
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentVideo AttachmentKind = "video"
	AttachmentFile  AttachmentKind = "file"
)

// MessageType maps an attachment kind to the type of the message it rides on.
func (k AttachmentKind) MessageType() MessageType {
	switch k {
	case AttachmentImage:
		return TypeImage
	case AttachmentVideo:
		return TypeVideo
	default:
		return TypeFile
	}
}

// AttachmentMeta travels with a sent message and describes one attachment.
type AttachmentMeta struct {
	Name string
	Mime string
	Size int64
	URL  string
}

// Handle is a revocable local reference to a staged payload, comparable to
// a browser object URL. Handles are exclusively owned by the staging area
// between creation and revocation.
type Handle string

// AttachmentPreview is ephemeral, client-only state: it exists between file
// selection and send, unstage, or teardown - whichever comes first.
type AttachmentPreview struct {
	Name    string
	Handle  Handle
	Kind    AttachmentKind
	Mime    string
	Payload []byte
}
