package copilot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"claridx/internal/common"

	"github.com/disintegration/imaging"
)

// NormalizeImage re-encodes any supported image as JPEG, fitted inside a
// maxDim square. The model is always told it receives a JPEG.
func NormalizeImage(data []byte, maxDim int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, common.WrapError(common.CodeInvalidInput, "unsupported or corrupt image", err)
	}

	if maxDim > 0 {
		b := img.Bounds()
		if b.Dx() > maxDim || b.Dy() > maxDim {
			img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeBase64Image accepts raw base64 or a data URL.
func decodeBase64Image(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, common.WrapError(common.CodeInvalidInput, "image is not valid base64", err)
	}
	return data, nil
}
