// Package archive uploads processed audio to a Cloud Storage bucket and
// hands back a public URL as the archived-audio locator.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCS struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func New(ctx context.Context, bucketName string, credentialsJSON []byte) (*GCS, error) {
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCS{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
	}, nil
}

// Upload copies localPath to destPath in the bucket, marks the object
// publicly readable, and returns its public URL.
func (g *GCS) Upload(ctx context.Context, localPath, destPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open local file: %w", err)
	}
	defer f.Close()

	obj := g.bucket.Object(destPath)

	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("upload object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object: %w", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("make object public: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, destPath), nil
}
