package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	s3errors "github.com/vudodov/aws.s3/errors"
	"github.com/vudodov/aws.s3/internal/list"
	"github.com/vudodov/aws.s3/internal/validation"
	"github.com/vudodov/aws.s3/internal/workpool"
	"github.com/vudodov/aws.s3/s3api"
	"github.com/vudodov/aws.s3/s3types"
)

// OperateFunc is applied to every object a walk visits. client is the handle
// the walk lists through, so the operation may read or modify the object.
type OperateFunc func(ctx context.Context, client s3api.S3API, obj s3types.Object) error

// FailureFunc is invoked once for a listing page that did not succeed.
type FailureFunc func(page *s3types.Page)

// Walker runs walks with a fixed set of options. A Walker is safe for
// concurrent use; each call opens and closes its own client.
type Walker struct {
	config s3types.WalkConfig
}

// NewWalker creates a Walker with opts applied over the defaults.
func NewWalker(opts ...s3types.WalkOption) *Walker {
	cfg := s3types.WalkConfig{
		PageSize:    list.MaxPageSize,
		Concurrency: workpool.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Walker{config: cfg}
}

// Walk applies operate to every object under prefix, one object at a time in
// listing order. Directory markers are skipped.
//
// Pagination stops at the first page that fails; onFailure, if non-nil, is
// called with that page and the returned error wraps errors.ErrListFailed.
// Cancellation of ctx is checked before each listing request. Errors returned
// by operate do not stop the walk: they are collected in the result and joined
// into the returned error under errors.ErrOperationFailed.
//
// The result is non-nil whenever the input was valid.
func Walk(
	ctx context.Context,
	bucket s3types.Bucket,
	prefix string,
	operate OperateFunc,
	onFailure FailureFunc,
	opts ...s3types.WalkOption,
) (*s3types.WalkResult, error) {
	return NewWalker(opts...).Walk(ctx, bucket, prefix, operate, onFailure)
}

// WalkConcurrent is like Walk but runs operate on up to WithConcurrency objects
// at once. Objects of a page are dispatched in listing order, dispatch blocks
// while every slot is busy, and WalkConcurrent returns only after all
// dispatched operations have finished. A panic in operate is recovered and
// recorded for that object as errors.ErrOperationPanic.
func WalkConcurrent(
	ctx context.Context,
	bucket s3types.Bucket,
	prefix string,
	operate OperateFunc,
	onFailure FailureFunc,
	opts ...s3types.WalkOption,
) (*s3types.WalkResult, error) {
	return NewWalker(opts...).WalkConcurrent(ctx, bucket, prefix, operate, onFailure)
}

// Walk runs a sequential walk. See the package-level Walk.
func (w *Walker) Walk(
	ctx context.Context,
	bucket s3types.Bucket,
	prefix string,
	operate OperateFunc,
	onFailure FailureFunc,
) (*s3types.WalkResult, error) {
	return w.walk(ctx, s3types.VariantSequential, bucket, prefix, operate, onFailure)
}

// WalkConcurrent runs a concurrent walk. See the package-level WalkConcurrent.
func (w *Walker) WalkConcurrent(
	ctx context.Context,
	bucket s3types.Bucket,
	prefix string,
	operate OperateFunc,
	onFailure FailureFunc,
) (*s3types.WalkResult, error) {
	return w.walk(ctx, s3types.VariantConcurrent, bucket, prefix, operate, onFailure)
}

func (w *Walker) walk(
	ctx context.Context,
	variant string,
	bucket s3types.Bucket,
	prefix string,
	operate OperateFunc,
	onFailure FailureFunc,
) (result *s3types.WalkResult, err error) {
	start := time.Now()
	rec := w.recorder()

	if err := w.validate(ctx, bucket, prefix, operate); err != nil {
		rec.RecordWalk(variant, err, time.Since(start))
		return nil, err
	}

	logger := w.config.Logger
	result = &s3types.WalkResult{}

	if logger != nil {
		logger.DebugContext(ctx, "starting walk",
			"bucket", bucket.Name,
			"prefix", prefix,
			"variant", variant)
	}

	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			rec.RecordWalk(variant, s3errors.NewBucketError("operate", bucket.Name, s3errors.ErrOperationPanic).
				WithPrefix(prefix), result.Duration)
			panic(r)
		}
		rec.RecordWalk(variant, err, result.Duration)
		if logger != nil {
			logger.InfoContext(ctx, "walk finished",
				"bucket", bucket.Name,
				"prefix", prefix,
				"variant", variant,
				"pages", result.Pages,
				"visited", result.Visited,
				"skipped", result.Skipped,
				"failed", result.Failed,
				"cancelled", result.Cancelled,
				"duration", result.Duration)
		}
	}()

	client, err := w.openClient(ctx, bucket)
	if err != nil {
		return result, err
	}
	defer closeClient(ctx, client, logger)

	t := &tally{result: result, rec: rec}
	dispatch := t.sequential(ctx, client, operate)
	var pool *workpool.Pool
	if variant == s3types.VariantConcurrent {
		pool = workpool.New(w.config.Concurrency)
		dispatch = t.concurrent(ctx, client, operate, pool)
	}

	listErr := w.paginate(ctx, client, bucket, prefix, onFailure, t, dispatch)

	if pool != nil {
		pool.Wait()
	}

	return result, w.walkError(bucket, prefix, listErr, result)
}

// paginate lists pages until the listing ends, fails or ctx is cancelled,
// handing each successful page's objects to dispatch.
func (w *Walker) paginate(
	ctx context.Context,
	client s3api.S3API,
	bucket s3types.Bucket,
	prefix string,
	onFailure FailureFunc,
	t *tally,
	dispatch func(obj s3types.Object),
) error {
	logger := w.config.Logger
	result := t.result

	paginator := list.NewPaginator(client, &list.Config{
		Bucket:            bucket.Name,
		Prefix:            prefix,
		StartAfter:        w.config.StartAfter,
		ContinuationToken: w.config.ContinuationToken,
		PageSize:          w.config.PageSize,
	})
	result.Mark = s3types.Mark{ContinuationToken: w.config.ContinuationToken, HasMore: true}

	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return w.cancelled(ctx, bucket, prefix, result, err)
		}

		page := paginator.NextPage(ctx)
		result.Pages++

		if !page.Succeeded() {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(page.Err, ctxErr) {
				return w.cancelled(ctx, bucket, prefix, result, ctxErr)
			}

			result.FailedPages++
			t.rec.RecordPage(false)
			if logger != nil {
				logger.ErrorContext(ctx, "listing page failed",
					"bucket", bucket.Name,
					"prefix", prefix,
					"page", page.Number,
					"status", page.StatusCode,
					"request_id", page.RequestID,
					"error", page.Err)
			}
			if onFailure != nil {
				onFailure(page)
			}
			return s3errors.NewBucketError("list", bucket.Name,
				fmt.Errorf("%w: %w", s3errors.ErrListFailed, page.Err)).WithPrefix(prefix)
		}

		t.rec.RecordPage(true)
		result.Listed += len(page.Objects)
		for _, obj := range page.Objects {
			dispatch(obj)
		}

		result.Mark.ContinuationToken = page.NextContinuationToken
		result.Mark.HasMore = page.IsTruncated
		if n := len(page.Objects); n > 0 {
			result.Mark.LastKey = page.Objects[n-1].Key
		}
	}

	return paginator.Err()
}

func (w *Walker) cancelled(
	ctx context.Context,
	bucket s3types.Bucket,
	prefix string,
	result *s3types.WalkResult,
	err error,
) error {
	result.Cancelled = true
	if logger := w.config.Logger; logger != nil {
		logger.InfoContext(ctx, "walk cancelled",
			"bucket", bucket.Name,
			"prefix", prefix,
			"page", result.Pages)
	}
	return s3errors.NewBucketError("walk", bucket.Name, err).WithPrefix(prefix)
}

// walkError combines the listing error with the collected operation errors.
func (w *Walker) walkError(bucket s3types.Bucket, prefix string, listErr error, result *s3types.WalkResult) error {
	var opErr error
	if len(result.Errors) > 0 {
		opErr = s3errors.NewBucketError("operate", bucket.Name,
			fmt.Errorf("%w: %d of %d objects: %w",
				s3errors.ErrOperationFailed, result.Failed, result.Visited+result.Failed, result.Err())).
			WithPrefix(prefix)
	}
	return errors.Join(listErr, opErr)
}

func (w *Walker) validate(ctx context.Context, bucket s3types.Bucket, prefix string, operate OperateFunc) error {
	if ctx == nil {
		return s3errors.NewError("walk", s3errors.ErrInvalidInput).WithMessage("context cannot be nil")
	}
	if err := validateBucket(bucket); err != nil {
		return s3errors.NewBucketError("walk", bucket.Name, err)
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return s3errors.NewBucketError("walk", bucket.Name, err)
	}
	if operate == nil {
		return s3errors.NewBucketError("walk", bucket.Name, s3errors.ErrInvalidInput).
			WithMessage("operate function cannot be nil")
	}
	if err := validation.ValidatePageSize(w.config.PageSize); err != nil {
		return s3errors.NewBucketError("walk", bucket.Name, err)
	}
	if w.config.Concurrency <= 0 {
		return s3errors.NewBucketError("walk", bucket.Name, s3errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("concurrency must be positive, got %d", w.config.Concurrency))
	}
	return nil
}

// validateBucket applies the DNS naming rules, falling back to the legacy
// charset for buckets in (or defaulting to) us-east-1.
func validateBucket(bucket s3types.Bucket) error {
	err := validation.ValidateBucketName(bucket.Name)
	if err == nil || bucket.Name == "" {
		return err
	}
	if region := bucket.Region; region != "" && region != validation.LegacyRegion {
		return err
	}
	if validation.ValidateLegacyBucketName(bucket.Name) == nil {
		return nil
	}
	return err
}

func (w *Walker) openClient(ctx context.Context, bucket s3types.Bucket) (s3api.S3API, error) {
	factory := w.config.ClientFactory
	if factory == nil {
		factory = ClientFactory(w.config.ClientOptions...)
	}

	client, err := factory(ctx, bucket)
	if err != nil {
		if errors.Is(err, s3errors.ErrClientInit) {
			return nil, err
		}
		return nil, s3errors.NewBucketError("client", bucket.Name,
			fmt.Errorf("%w: %w", s3errors.ErrClientInit, err))
	}
	if client == nil {
		return nil, s3errors.NewBucketError("client", bucket.Name, s3errors.ErrClientInit).
			WithMessage("client factory returned nil")
	}
	return client, nil
}

func (w *Walker) recorder() s3types.Recorder {
	if w.config.Recorder != nil {
		return w.config.Recorder
	}
	return nopRecorder{}
}

func closeClient(ctx context.Context, client s3api.S3API, logger *slog.Logger) {
	closer, ok := client.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to close client", "error", err)
	}
}

// tally accumulates per-object outcomes into a WalkResult.
type tally struct {
	mu     sync.Mutex
	result *s3types.WalkResult
	rec    s3types.Recorder
}

func (t *tally) skip() {
	t.mu.Lock()
	t.result.Skipped++
	t.mu.Unlock()
	t.rec.RecordObject(s3types.OutcomeSkipped)
}

func (t *tally) finish(key string, err error) {
	t.mu.Lock()
	if err != nil {
		t.result.Failed++
		t.result.Errors = append(t.result.Errors, s3types.ObjectError{Key: key, Err: err})
	} else {
		t.result.Visited++
	}
	t.mu.Unlock()

	if err != nil {
		t.rec.RecordObject(s3types.OutcomeFailed)
	} else {
		t.rec.RecordObject(s3types.OutcomeVisited)
	}
}

func (t *tally) run(ctx context.Context, client s3api.S3API, operate OperateFunc, obj s3types.Object) error {
	t.rec.OperationStarted()
	defer t.rec.OperationFinished()
	return operate(ctx, client, obj)
}

func (t *tally) sequential(ctx context.Context, client s3api.S3API, operate OperateFunc) func(s3types.Object) {
	return func(obj s3types.Object) {
		if obj.IsDirectoryMarker() {
			t.skip()
			return
		}
		t.finish(obj.Key, t.run(ctx, client, operate, obj))
	}
}

func (t *tally) concurrent(
	ctx context.Context,
	client s3api.S3API,
	operate OperateFunc,
	pool *workpool.Pool,
) func(s3types.Object) {
	return func(obj s3types.Object) {
		if obj.IsDirectoryMarker() {
			t.skip()
			return
		}
		pool.Go(func() error {
			return t.run(ctx, client, operate, obj)
		}, func(err error) {
			t.finish(obj.Key, err)
		})
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordPage(bool) {}
func (nopRecorder) RecordObject(s3types.ObjectOutcome) {}
func (nopRecorder) OperationStarted() {}
func (nopRecorder) OperationFinished() {}
func (nopRecorder) RecordWalk(string, error, time.Duration) {}
