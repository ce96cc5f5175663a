package actions

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vudodov/aws.s3/s3api"
	"github.com/vudodov/aws.s3/s3types"
)

// ClassTotal is the object count and byte total of one storage class.
type ClassTotal struct {
	StorageClass string
	Objects      int64
	Bytes        int64
}

// SizeTally sums object counts and sizes per storage class.
type SizeTally struct {
	mu      sync.Mutex
	classes map[string]*ClassTotal
}

// NewSizeTally creates an empty SizeTally.
func NewSizeTally() *SizeTally {
	return &SizeTally{classes: make(map[string]*ClassTotal)}
}

// Operate adds obj to the tally.
func (s *SizeTally) Operate(_ context.Context, _ s3api.S3API, obj s3types.Object) error {
	class := obj.StorageClass
	if class == "" {
		// ListObjectsV2 omits the class for STANDARD on some S3-compatible stores
		class = string(types.ObjectStorageClassStandard)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	total, ok := s.classes[class]
	if !ok {
		total = &ClassTotal{StorageClass: class}
		s.classes[class] = total
	}
	total.Objects++
	total.Bytes += obj.Size
	return nil
}

// Totals returns the per-class totals ordered by storage class.
func (s *SizeTally) Totals() []ClassTotal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ClassTotal, 0, len(s.classes))
	for _, total := range s.classes {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StorageClass < out[j].StorageClass })
	return out
}

// Sum returns the totals over every storage class.
func (s *SizeTally) Sum() (objects, bytes int64) {
	for _, total := range s.Totals() {
		objects += total.Objects
		bytes += total.Bytes
	}
	return objects, bytes
}
