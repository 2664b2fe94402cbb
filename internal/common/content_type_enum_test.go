package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentKind_String(t *testing.T) {
	assert.Equal(t, "image", AttachmentKindImage.String())
	assert.Equal(t, "file", AttachmentKindFile.String())
}

func TestAttachmentKind_IsValid(t *testing.T) {
	assert.True(t, AttachmentKindImage.IsValid())
	assert.True(t, AttachmentKindFile.IsValid())
	assert.False(t, AttachmentKind("video").IsValid())
}

func TestDetectAttachmentKind(t *testing.T) {
	imageTypes := []string{"image/jpeg", "image/png", "IMAGE/GIF", " image/webp"}
	for _, mimeType := range imageTypes {
		kind := DetectAttachmentKind(mimeType)
		assert.Equal(t, AttachmentKindImage, kind, "Failed for MIME type: %s", mimeType)
		assert.True(t, kind.Inline())
	}

	fileTypes := []string{"application/pdf", "text/plain", "video/mp4", ""}
	for _, mimeType := range fileTypes {
		kind := DetectAttachmentKind(mimeType)
		assert.Equal(t, AttachmentKindFile, kind, "Failed for MIME type: %s", mimeType)
		assert.False(t, kind.Inline())
	}
}

func TestContentTypeForName(t *testing.T) {
	tests := map[string]string{
		"scan.JPG":             "image/jpeg",
		"xray.png":             "image/png",
		"labs.pdf":             "application/pdf",
		"study.dcm":            "application/dicom",
		"README":               "application/octet-stream",
		"blob.claridx-unknown": "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentTypeForName(name), name)
	}
}

func TestResolveContentType(t *testing.T) {
	assert.Equal(t, "image/png", ResolveContentType("image/png", "scan.jpg"))
	assert.Equal(t, "image/jpeg", ResolveContentType("", "scan.jpg"))
	assert.Equal(t, "application/pdf", ResolveContentType("application/octet-stream", "labs.pdf"))
}
