/*
Package storage persists uploaded media (avatars, photos, videos, voice
notes) in an S3-compatible bucket.

Clients send media inline as base64; the server decodes and uploads the
bytes itself, then records the resulting public URL in the message ledger
or profile.
*/
package storage

import (
	"context"
	"io"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// PublicBaseURL is the prefix of publicly reachable object URLs.
	PublicBaseURL string
}

// Service defines the public interface of the media store.
type Service interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key string, mimeType string, body io.Reader) (string, error)

	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
}

// NewService is the factory function for Service.
// Currently only S3-compatible backends are supported.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}
