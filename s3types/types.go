// Package s3types provides shared type definitions for the bucket walker.
package s3types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DirectoryMarkerSuffix is the path separator that marks a pseudo-directory key.
const DirectoryMarkerSuffix = "/"

// Bucket identifies a storage bucket and, optionally, the static credentials
// used to access it. A Bucket is an immutable value owned by the caller.
type Bucket struct {
	// Name is the S3 bucket name
	Name string

	// Region is the AWS region the bucket lives in
	Region string

	// AccessKeyID is the static access key id; blank means ambient credentials
	AccessKeyID string

	// SecretAccessKey is the static secret access key
	SecretAccessKey string

	// SessionToken is the optional session token for temporary credentials
	SessionToken string
}

// HasStaticCredentials reports whether the bucket carries a non-blank access key id.
func (b Bucket) HasStaticCredentials() bool {
	return strings.TrimSpace(b.AccessKeyID) != ""
}

// String returns the bucket name and region. Credentials are never included.
func (b Bucket) String() string {
	if b.Region == "" {
		return b.Name
	}
	return fmt.Sprintf("%s (%s)", b.Name, b.Region)
}

// Object represents an S3 object with its basic metadata.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class
	StorageClass string
}

// IsDirectoryMarker reports whether the object is a pseudo-directory placeholder.
func (o Object) IsDirectoryMarker() bool {
	return strings.HasSuffix(o.Key, DirectoryMarkerSuffix)
}

// Page is a single ListObjectsV2 response as seen by the walker.
// Failed listings are represented as pages too, with Err set.
type Page struct {
	// Number is the 1-based position of the page within the walk
	Number int

	// StatusCode is the HTTP status of the listing response (0 if none was received)
	StatusCode int

	// RequestID is the service request id, when available
	RequestID string

	// Objects contains the listed objects in listing order
	Objects []Object

	// ContinuationToken is the token that was sent to obtain this page
	ContinuationToken string

	// NextContinuationToken is the token for the following page
	NextContinuationToken string

	// IsTruncated indicates more pages remain
	IsTruncated bool

	// KeyCount is the number of keys reported by the service
	KeyCount int

	// Err is the listing error; nil for a successful page
	Err error
}

// Succeeded reports whether the listing request succeeded.
func (p *Page) Succeeded() bool {
	return p.Err == nil && p.StatusCode >= http.StatusOK && p.StatusCode < http.StatusMultipleChoices
}

// Mark records where a walk stopped so it can be resumed later.
type Mark struct {
	// ContinuationToken is the token of the next page to list
	ContinuationToken string

	// LastKey is the last key seen by the walk
	LastKey string

	// HasMore indicates there are pages left to walk
	HasMore bool
}

// ObjectError records a failed per-object operation.
type ObjectError struct {
	// Key is the object key that failed
	Key string

	// Err is the error returned (or recovered) from the operation
	Err error
}

// Error implements the error interface.
func (e ObjectError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e ObjectError) Unwrap() error {
	return e.Err
}

// WalkResult is the aggregated outcome of a walk.
type WalkResult struct {
	// Pages is the number of listing requests issued
	Pages int

	// FailedPages is the number of listing requests that did not succeed
	FailedPages int

	// Listed is the number of object records returned by successful pages
	Listed int

	// Visited is the number of objects whose operation completed without error
	Visited int

	// Skipped is the number of directory markers that were not operated on
	Skipped int

	// Failed is the number of objects whose operation returned an error
	Failed int

	// Errors contains the per-object errors in completion order
	Errors []ObjectError

	// Cancelled indicates the walk stopped because its context was cancelled
	Cancelled bool

	// Mark is the resume point after the last successful page
	Mark Mark

	// Duration is how long the walk took
	Duration time.Duration
}

// Err joins all per-object errors, or returns nil if every operation succeeded.
func (r *WalkResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i := range r.Errors {
		errs[i] = r.Errors[i]
	}
	return errors.Join(errs...)
}
