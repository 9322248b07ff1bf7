package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/fxjournal/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // Often used for CSV by older Excel
	"text/plain":               true,
	"application/octet-stream": true, // Fallback, but be more cautious
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": false, // .xlsx, explicitly disallow
}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	if allowed, exists := AllowedClientContentTypes[strings.ToLower(contentType)]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for CSV upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// It returns the detected content type and an error if validation fails. The
// read pointer is reset so the parser sees the full file afterwards.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	detectedContentType := http.DetectContentType(buffer[:n])
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	// A CSV should detect as some flavor of text; anything else (zip,
	// executable, image) is rejected before it reaches the decoder.
	allowedDetectedTypes := map[string]bool{
		"text/plain":               true,
		"text/csv":                 true,
		"application/csv":          true,
		"application/octet-stream": true, // relies on strict parsing later
	}

	if !allowedDetectedTypes[detectedContentType] {
		logger.L.Warn("Disallowed detected file content type (magic bytes)", "detectedContentType", detectedContentType)
		return detectedContentType, fmt.Errorf("detected file content type '%s' is not consistent with a CSV file", detectedContentType)
	}

	return detectedContentType, nil
}
