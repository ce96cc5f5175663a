// Command s3walk walks the objects under an S3 prefix and reports on them.
//
// Usage:
//
//	s3walk ls     --bucket data --prefix logs/2024/
//	s3walk du     --bucket data
//	s3walk digest --bucket data --prefix releases/v1/
//	s3walk sniff  --bucket data --concurrency 16
//
// Every flag falls back to an environment variable (S3WALK_* or the usual AWS_*).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.shutdown()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "s3walk: %v\n", err)
		os.Exit(1)
	}
}
