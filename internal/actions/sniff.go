package actions

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	s3errors "github.com/vudodov/aws.s3/errors"
	"github.com/vudodov/aws.s3/s3api"
	"github.com/vudodov/aws.s3/s3types"
)

const (
	// SniffLength is the number of leading bytes fetched per object.
	SniffLength = 3072

	// EmptyMIME is reported for zero-length objects, which are not fetched.
	EmptyMIME = "inode/x-empty"
)

// Sniffer detects the MIME type of each object from its first SniffLength
// bytes, fetched with a ranged GetObject through the walk's client.
type Sniffer struct {
	bucket string
	w      io.Writer

	mu     sync.Mutex
	counts map[string]int
}

// NewSniffer creates a Sniffer for objects of bucket. When w is non-nil a
// "key<TAB>mime" line is written per object.
func NewSniffer(bucket string, w io.Writer) *Sniffer {
	return &Sniffer{
		bucket: bucket,
		w:      w,
		counts: make(map[string]int),
	}
}

// Operate detects and records the MIME type of obj.
func (s *Sniffer) Operate(ctx context.Context, client s3api.S3API, obj s3types.Object) error {
	mime, err := s.detect(ctx, client, obj)
	if err != nil {
		return s3errors.NewObjectError("sniff", s.bucket, obj.Key, s3errors.Classify(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[mime]++
	if s.w != nil {
		if _, err := fmt.Fprintf(s.w, "%s\t%s\n", obj.Key, mime); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sniffer) detect(ctx context.Context, client s3api.S3API, obj s3types.Object) (string, error) {
	if obj.Size == 0 {
		return EmptyMIME, nil
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(obj.Key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", SniffLength-1)),
	})
	if err != nil {
		return "", err
	}
	defer out.Body.Close()

	mt, err := mimetype.DetectReader(io.LimitReader(out.Body, SniffLength))
	if err != nil {
		return "", fmt.Errorf("read object head: %w", err)
	}
	return mt.String(), nil
}

// MIMECount is the number of objects detected as one MIME type.
type MIMECount struct {
	MIME    string
	Objects int
}

// Counts returns the detected MIME types, most frequent first.
func (s *Sniffer) Counts() []MIMECount {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MIMECount, 0, len(s.counts))
	for mime, n := range s.counts {
		out = append(out, MIMECount{MIME: mime, Objects: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Objects != out[j].Objects {
			return out[i].Objects > out[j].Objects
		}
		return out[i].MIME < out[j].MIME
	})
	return out
}
