// Package testutil provides an in-memory paged listing fixture.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const tokenPrefix = "token-"

// PagedListing simulates ListObjectsV2 over a fixed set of keys.
// Keys are served in the order they were added, a page at a time, with
// continuation tokens of the form "token-<offset>".
type PagedListing struct {
	mu sync.Mutex

	keys     []string
	pageSize int
	failOn   map[int]error
	onCall   func(call int)
	inputs   []s3.ListObjectsV2Input
}

// NewPagedListing creates a fixture holding keys, listed in the given order.
func NewPagedListing(keys ...string) *PagedListing {
	return &PagedListing{
		keys:   append([]string(nil), keys...),
		failOn: make(map[int]error),
	}
}

// NewSortedPagedListing creates a fixture that lists keys in lexicographic order, like S3.
func NewSortedPagedListing(keys ...string) *PagedListing {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return NewPagedListing(sorted...)
}

// WithPageSize forces a page size regardless of the requested MaxKeys.
func (l *PagedListing) WithPageSize(size int) *PagedListing {
	l.pageSize = size
	return l
}

// FailCall makes the n-th (1-based) ListObjectsV2 call return err.
func (l *PagedListing) FailCall(n int, err error) *PagedListing {
	l.failOn[n] = err
	return l
}

// OnCall registers a hook run after each call has been served.
func (l *PagedListing) OnCall(fn func(call int)) *PagedListing {
	l.onCall = fn
	return l
}

// Calls returns the number of ListObjectsV2 calls made.
func (l *PagedListing) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inputs)
}

// Inputs returns copies of every ListObjectsV2 input received.
func (l *PagedListing) Inputs() []s3.ListObjectsV2Input {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]s3.ListObjectsV2Input(nil), l.inputs...)
}

// ListObjectsV2 serves one page of the fixture.
func (l *PagedListing) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	l.mu.Lock()
	l.inputs = append(l.inputs, *params)
	call := len(l.inputs)
	failErr := l.failOn[call]
	hook := l.onCall
	l.mu.Unlock()

	if hook != nil {
		defer hook(call)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failErr != nil {
		return nil, failErr
	}

	matching := l.matching(aws.ToString(params.Prefix))

	start := 0
	if token := aws.ToString(params.ContinuationToken); token != "" {
		offset, err := strconv.Atoi(strings.TrimPrefix(token, tokenPrefix))
		if err != nil || !strings.HasPrefix(token, tokenPrefix) {
			return nil, fmt.Errorf("invalid continuation token %q", token)
		}
		start = offset
	} else if after := aws.ToString(params.StartAfter); after != "" {
		for start < len(matching) && matching[start] <= after {
			start++
		}
	}

	size := l.pageSize
	if size <= 0 {
		size = int(aws.ToInt32(params.MaxKeys))
	}
	if size <= 0 || size > 1000 {
		size = 1000
	}

	end := start + size
	if end > len(matching) {
		end = len(matching)
	}
	if start > end {
		start = end
	}

	contents := make([]types.Object, 0, end-start)
	for i, key := range matching[start:end] {
		contents = append(contents, CreateTestObject(key, int64(1024*(start+i+1)), time.Unix(1700000000, 0).UTC()))
	}

	output := &s3.ListObjectsV2Output{
		Name:              params.Bucket,
		Prefix:            params.Prefix,
		Contents:          contents,
		KeyCount:          aws.Int32(int32(len(contents))),
		MaxKeys:           aws.Int32(int32(size)),
		ContinuationToken: params.ContinuationToken,
		IsTruncated:       aws.Bool(end < len(matching)),
	}
	if end < len(matching) {
		output.NextContinuationToken = aws.String(tokenPrefix + strconv.Itoa(end))
	}
	return output, nil
}

func (l *PagedListing) matching(prefix string) []string {
	out := make([]string, 0, len(l.keys))
	for _, key := range l.keys {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}
