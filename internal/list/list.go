package list

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/vudodov/aws.s3/errors"
	"github.com/vudodov/aws.s3/s3types"
)

// MaxPageSize is the largest page ListObjectsV2 returns.
const MaxPageSize int32 = 1000

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Config holds configuration for list operations.
type Config struct {
	Bucket            string
	Prefix            string
	StartAfter        string
	ContinuationToken string // Resume from a previous walk
	PageSize          int32
}

// Paginator walks ListObjectsV2 pages one at a time.
// A Paginator is not safe for concurrent use.
type Paginator struct {
	client            S3Interface
	config            *Config
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
	pageNumber        int
	err               error
}

// NewPaginator creates a paginator positioned before the first page.
func NewPaginator(client S3Interface, config *Config) *Paginator {
	p := &Paginator{
		client:    client,
		config:    config,
		pageSize:  optimalPageSize(config),
		firstPage: true,
	}
	if config.ContinuationToken != "" {
		p.continuationToken = aws.String(config.ContinuationToken)
	}
	return p
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.err == nil && (p.firstPage || p.hasMorePages)
}

// Err returns the error that ended pagination early while the last page itself
// succeeded, such as a truncated response without a continuation token.
func (p *Paginator) Err() error {
	return p.err
}

// NextToken returns the continuation token of the page that would be fetched next.
func (p *Paginator) NextToken() string {
	return aws.ToString(p.continuationToken)
}

// NextPage fetches the next page of results.
// A failed request yields a page with Err set and ends pagination.
func (p *Paginator) NextPage(ctx context.Context) *s3types.Page {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.config.Bucket),
		Prefix:  aws.String(p.config.Prefix),
		MaxKeys: aws.Int32(p.pageSize),
	}

	if p.continuationToken != nil {
		input.ContinuationToken = p.continuationToken
	} else if p.firstPage && p.config.StartAfter != "" {
		input.StartAfter = aws.String(p.config.StartAfter)
	}

	p.pageNumber++
	page := &s3types.Page{
		Number:            p.pageNumber,
		ContinuationToken: aws.ToString(p.continuationToken),
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	p.firstPage = false
	if err != nil {
		p.hasMorePages = false
		page.Err = fmt.Errorf("list objects page %d: %w", page.Number, errors.Classify(err))
		page.StatusCode = errors.StatusCode(err)
		page.RequestID = errors.RequestID(err)
		return page
	}

	convertOutput(output, page)
	if err := statusError(page); err != nil {
		p.hasMorePages = false
		page.Err = err
		return page
	}

	p.hasMorePages = page.IsTruncated
	p.continuationToken = output.NextContinuationToken
	if page.IsTruncated && page.NextContinuationToken == "" {
		p.hasMorePages = false
		p.err = errors.NewBucketError("list", p.config.Bucket, errors.ErrListFailed).
			WithPrefix(p.config.Prefix).
			WithMessage(fmt.Sprintf("page %d is truncated but has no continuation token", page.Number))
	}

	return page
}

// statusError reports a response that carried no SDK error but a non-2xx
// HTTP status.
func statusError(page *s3types.Page) error {
	if page.StatusCode >= http.StatusOK && page.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	return fmt.Errorf("list objects page %d: unexpected HTTP status %d", page.Number, page.StatusCode)
}

// convertOutput copies an S3 response into page.
func convertOutput(output *s3.ListObjectsV2Output, page *s3types.Page) {
	page.StatusCode = http.StatusOK
	if raw, ok := awsmiddleware.GetRawResponse(output.ResultMetadata).(*smithyhttp.Response); ok && raw != nil {
		page.StatusCode = raw.StatusCode
	}
	if id, ok := awsmiddleware.GetRequestIDMetadata(output.ResultMetadata); ok {
		page.RequestID = id
	}

	page.IsTruncated = aws.ToBool(output.IsTruncated)
	page.NextContinuationToken = aws.ToString(output.NextContinuationToken)
	page.KeyCount = int(aws.ToInt32(output.KeyCount))
	page.Objects = make([]s3types.Object, 0, len(output.Contents))

	for _, obj := range output.Contents {
		page.Objects = append(page.Objects, s3types.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}
}

// optimalPageSize determines the page size for pagination.
func optimalPageSize(config *Config) int32 {
	if config.PageSize > 0 && config.PageSize <= MaxPageSize {
		return config.PageSize
	}
	// Default to maximum for efficiency
	return MaxPageSize
}
