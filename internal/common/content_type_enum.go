package common

import (
	"mime"
	"path/filepath"
	"strings"
)

// AttachmentKind decides how a client renders an attachment.
type AttachmentKind string

const (
	AttachmentKindImage AttachmentKind = "image"
	AttachmentKindFile  AttachmentKind = "file"
)

func (k AttachmentKind) String() string {
	return string(k)
}

func (k AttachmentKind) IsValid() bool {
	return k == AttachmentKindImage || k == AttachmentKindFile
}

// Inline reports whether the attachment is shown in place rather than as a link.
func (k AttachmentKind) Inline() bool {
	return k == AttachmentKindImage
}

func DetectAttachmentKind(mimeType string) AttachmentKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/") {
		return AttachmentKindImage
	}
	return AttachmentKindFile
}

// ContentTypeForName guesses a media type from a file name.
func ContentTypeForName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".dcm":
		return "application/dicom"
	case ".txt":
		return "text/plain"
	}

	if ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	return "application/octet-stream"
}

// ResolveContentType prefers the declared type unless it is empty or generic.
func ResolveContentType(declared, filename string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" || declared == "application/octet-stream" {
		return ContentTypeForName(filename)
	}
	return declared
}
