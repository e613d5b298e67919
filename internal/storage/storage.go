// Package storage is the shared media store (S3-compatible) used for
// exports and delete archives. Implementations stream; nothing touches disk.
package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions describe an upload. Size is the exact byte count, or -1 when
// unknown. Metadata is stored as user metadata on the object.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Object describes a stored object after upload.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is what the DataPost service needs from the media store:
// uploading content snapshots and handing out download links.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (Object, error)
	// PresignGet returns a URL that downloads key without credentials until expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
