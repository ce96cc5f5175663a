// Package list handles paginated S3 object listing for walks.
//
// Every ListObjectsV2 response, successful or not, is turned into an
// s3types.Page so the walker can hand failed pages to its failure callback.
package list
