package validation

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/templui/postline/internal/model"
)

// mediaPrefixes maps accepted content type majors to post file types
var mediaPrefixes = map[string]string{
	"image/": model.FileTypeImage,
	"video/": model.FileTypeVideo,
}

// MediaKind derives the post file type ("image" or "video") from a declared
// content type such as "image/png" or "video/mp4; codecs=avc1".
func MediaKind(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", NewFieldError("file", fmt.Sprintf("invalid content type %q", contentType))
	}

	for prefix, kind := range mediaPrefixes {
		if strings.HasPrefix(mediaType, prefix) {
			return kind, nil
		}
	}

	return "", NewFieldError("file", fmt.Sprintf("unsupported content type %q (images and videos only)", mediaType))
}

// ValidateMedia checks an uploaded file before anything is staged:
// non-empty, within maxSize, declared as image/* or video/*, and
// not contradicted by the file's magic numbers.
// Returns the derived file type.
func ValidateMedia(header *multipart.FileHeader, maxSize int64) (string, error) {
	if header.Size <= 0 {
		return "", NewFieldError("file", "file is empty")
	}

	if maxSize > 0 && header.Size > maxSize {
		maxMB := maxSize / (1 << 20)
		return "", NewFieldError("file", fmt.Sprintf("file too large: maximum size is %d MB", maxMB))
	}

	kind, err := MediaKind(header.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads at most 512 bytes
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	if !sniffAgrees(kind, detected) {
		return "", NewFieldError("file", fmt.Sprintf("file content (%s) does not match declared type", detected))
	}

	return kind, nil
}

// sniffAgrees reports whether the sniffed type is compatible with kind.
// Many video containers are not recognized by the sniffer, so an
// undetermined result is accepted.
func sniffAgrees(kind, detected string) bool {
	if detected == "application/octet-stream" {
		return true
	}
	for prefix, k := range mediaPrefixes {
		if strings.HasPrefix(detected, prefix) {
			return k == kind
		}
	}
	// MP4/WebM/OGG may sniff as audio or application types
	if kind == model.FileTypeVideo {
		return strings.HasPrefix(detected, "audio/") || detected == "application/ogg"
	}
	return false
}
