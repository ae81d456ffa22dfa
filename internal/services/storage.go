package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// StorageService defines the interface for file storage operations
type StorageService interface {
	// Upload uploads a file to storage and returns its URL
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, key string) error

	// GetURL returns the URL for a file
	GetURL(key string) string

	// Exists checks if a file exists in storage
	Exists(ctx context.Context, key string) (bool, error)
}

// ImportArchive describes an archived recipient upload
type ImportArchive struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImportArchiveKey returns the storage key for a recipient file uploaded to an event
func ImportArchiveKey(eventID int, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Trim(unsafeFilenameChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = "recipients.csv"
	}
	return fmt.Sprintf("imports/%d/%s-%s", eventID, uuid.NewString(), name)
}
