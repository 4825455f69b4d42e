// Package archive writes terminal execution records to blob storage for
// long-term history, keeping the hot store small. Buckets are addressed by
// URL, so local file, in-memory, and S3-compatible targets all work
package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/floeworks/floe/pkg/api"
)

// BlobArchiver stores execution records as JSON blobs
type BlobArchiver struct {
	bucket *blob.Bucket
	prefix string
}

// ErrNotArchived is returned when no archived record exists for an id
var ErrNotArchived = fmt.Errorf("execution not archived")

// New opens the bucket at bucketURL and returns an archiver writing under
// the given key prefix
func New(
	ctx context.Context, bucketURL, prefix string,
) (*BlobArchiver, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return NewWithBucket(bucket, prefix), nil
}

// NewWithBucket wraps an already-open bucket
func NewWithBucket(bucket *blob.Bucket, prefix string) *BlobArchiver {
	return &BlobArchiver{bucket: bucket, prefix: prefix}
}

// Archive writes the execution record to the bucket
func (a *BlobArchiver) Archive(
	ctx context.Context, exec *api.WorkflowExecution,
) error {
	data, err := json.Marshal(exec)
	if err != nil {
		return err
	}
	return a.bucket.WriteAll(ctx, a.key(exec.ID), data, &blob.WriterOptions{
		ContentType: "application/json",
	})
}

// Load reads an archived execution record back
func (a *BlobArchiver) Load(
	ctx context.Context, id string,
) (*api.WorkflowExecution, error) {
	data, err := a.bucket.ReadAll(ctx, a.key(id))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotArchived, id)
		}
		return nil, err
	}

	var exec api.WorkflowExecution
	if err := json.Unmarshal(data, &exec); err != nil {
		return nil, err
	}
	return &exec, nil
}

// Delete removes an archived execution record
func (a *BlobArchiver) Delete(ctx context.Context, id string) error {
	err := a.bucket.Delete(ctx, a.key(id))
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("%w: %s", ErrNotArchived, id)
	}
	return err
}

// Close releases the underlying bucket
func (a *BlobArchiver) Close() error {
	return a.bucket.Close()
}

func (a *BlobArchiver) key(id string) string {
	if a.prefix == "" {
		return "executions/" + id + ".json"
	}
	return a.prefix + "/executions/" + id + ".json"
}
