// Package gcsstore moves raw transaction batches in and out of Google
// Cloud Storage for the ingestion hosts.
package gcsstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// ParseURI splits a "gs://bucket/object" URI.
func ParseURI(uri string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("ParseURI: %q is not a gs:// URI", uri)
	}
	bucket, object, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("ParseURI: %q has no bucket/object split", uri)
	}
	return bucket, object, nil
}

// Download fetches an object's bytes by gs:// URI.
func Download(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Download: create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Download: open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Download: read GCS object: %w", err)
	}
	return data, nil
}

// Upload writes bytes to a bucket object and returns its gs:// URI.
func Upload(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("Upload: create storage client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("Upload: write GCS object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: close GCS writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", bucket, object), nil
}
