package storage

import (
	"fmt"
	"strings"
)

// AllowedContentTypes lists the MIME types the application stores.
var AllowedContentTypes = map[string]bool{
	"text/csv":         true,
	"application/json": true,
	"application/pdf":  true,
}

// ValidateContentType checks if the content type is allowed.
func (c *Client) ValidateContentType(contentType string) error {
	// Drop parameters like charset.
	normalized := strings.Split(contentType, ";")[0]
	normalized = strings.TrimSpace(strings.ToLower(normalized))

	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateSize checks an object size against the configured maximum. A
// non-positive maximum disables the upper bound.
func (c *Client) ValidateSize(sizeBytes int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if c.maxObjectSize > 0 && sizeBytes > c.maxObjectSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, c.maxObjectSize)
	}
	return nil
}
