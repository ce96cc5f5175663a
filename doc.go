// Package s3 walks the objects stored under a prefix of an S3 bucket and applies
// a caller-supplied operation to each one.
//
// A walk lists the prefix one ListObjectsV2 page at a time, following
// continuation tokens until the listing is exhausted, the context is cancelled,
// or a page fails. Pseudo-directory markers (keys ending in "/") are skipped.
// Each walk opens its own client from the bucket's credentials and closes it
// when the walk returns.
//
// Two variants are provided:
//   - Walk runs the operation for each object in listing order, one at a time
//   - WalkConcurrent dispatches objects to a bounded pool of goroutines and
//     returns once every dispatched operation has finished
//
// Example usage:
//
//	bucket := s3types.Bucket{Name: "data", Region: "eu-west-1"}
//	result, err := s3.Walk(ctx, bucket, "logs/2024/",
//	    func(ctx context.Context, client s3api.S3API, obj s3types.Object) error {
//	        fmt.Println(obj.Key, obj.Size)
//	        return nil
//	    },
//	    func(page *s3types.Page) {
//	        log.Printf("page %d failed with status %d", page.Number, page.StatusCode)
//	    },
//	    s3.WithPageSize(500),
//	)
package s3
