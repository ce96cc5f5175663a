package actions

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/vudodov/aws.s3/s3api"
	"github.com/vudodov/aws.s3/s3types"
)

// Digest fingerprints a listing. Each object contributes the xxhash64 of
// "key|etag|size"; contributions are summed, so the result does not depend on
// the order objects are visited in. Two prefixes with the same keys, ETags and
// sizes produce the same digest.
type Digest struct {
	sum   atomic.Uint64
	count atomic.Int64
}

// NewDigest creates an empty Digest.
func NewDigest() *Digest {
	return &Digest{}
}

// Operate adds obj to the digest.
func (d *Digest) Operate(_ context.Context, _ s3api.S3API, obj s3types.Object) error {
	d.sum.Add(objectHash(obj))
	d.count.Add(1)
	return nil
}

// Sum64 returns the digest value.
func (d *Digest) Sum64() uint64 {
	return d.sum.Load()
}

// Count returns the number of objects added.
func (d *Digest) Count() int64 {
	return d.count.Load()
}

// String returns the digest as 16 hex digits.
func (d *Digest) String() string {
	return fmt.Sprintf("%016x", d.Sum64())
}

func objectHash(obj s3types.Object) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(obj.Key)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(obj.ETag)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(strconv.FormatInt(obj.Size, 10))
	return h.Sum64()
}
