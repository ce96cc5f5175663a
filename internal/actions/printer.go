package actions

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vudodov/aws.s3/s3api"
	"github.com/vudodov/aws.s3/s3types"
)

// Printer writes one tab-separated line per object: key, size and ETag.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Operate prints obj.
func (p *Printer) Operate(_ context.Context, _ s3api.S3API, obj s3types.Object) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "%s\t%d\t%s\n", obj.Key, obj.Size, obj.ETag)
	return err
}
