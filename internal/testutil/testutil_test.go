package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagedListing_Pages(t *testing.T) {
	listing := NewPagedListing(GenerateKeys("p/", 5)...).WithPageSize(2)
	ctx := context.Background()

	input := &s3.ListObjectsV2Input{Bucket: aws.String("bucket"), Prefix: aws.String("p/")}
	var keys []string
	for {
		out, err := listing.ListObjectsV2(ctx, input)
		require.NoError(t, err)
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}

	assert.Equal(t, GenerateKeys("p/", 5), keys)
	assert.Equal(t, 3, listing.Calls())
}

func TestPagedListing_PrefixAndStartAfter(t *testing.T) {
	listing := NewSortedPagedListing("b/2", "a/1", "b/1", "b/3")
	out, err := listing.ListObjectsV2(context.Background(), &s3.ListObjectsV2Input{
		Prefix:     aws.String("b/"),
		StartAfter: aws.String("b/1"),
	})
	require.NoError(t, err)
	require.Len(t, out.Contents, 2)
	assert.Equal(t, "b/2", aws.ToString(out.Contents[0].Key))
	assert.Equal(t, "b/3", aws.ToString(out.Contents[1].Key))
	assert.False(t, aws.ToBool(out.IsTruncated))
}

func TestPagedListing_FailCall(t *testing.T) {
	listing := NewPagedListing("k").FailCall(1, NewAPIError(http.StatusForbidden, "AccessDenied", "denied"))

	_, err := listing.ListObjectsV2(context.Background(), &s3.ListObjectsV2Input{})
	require.Error(t, err)

	var apiErr smithy.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "AccessDenied", apiErr.ErrorCode())

	var respErr *smithyhttp.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusForbidden, respErr.HTTPStatusCode())

	// second call succeeds
	_, err = listing.ListObjectsV2(context.Background(), &s3.ListObjectsV2Input{})
	assert.NoError(t, err)
}

func TestGenerateTree(t *testing.T) {
	keys, markers := NewTestDataGenerator(42).GenerateTree("root/", 3, 10)
	assert.Equal(t, 3, markers)
	assert.Len(t, keys, 13)
}

func TestMockS3Client_RecordsCalls(t *testing.T) {
	client := NewMockBuilder().Build()
	ctx := context.Background()

	_, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Prefix: aws.String("logs/")})
	require.NoError(t, err)
	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{Key: aws.String("logs/a")})
	require.NoError(t, err)
	_, err = client.GetObject(ctx, &s3.GetObjectInput{Key: aws.String("logs/b")})
	require.NoError(t, err)

	assert.Len(t, client.Calls(""), 3)
	assert.Equal(t, []Call{{Op: "ListObjectsV2", Key: "logs/"}}, client.Calls("ListObjectsV2"))
	assert.Equal(t, []Call{{Op: "HeadObject", Key: "logs/a"}}, client.Calls("HeadObject"))
	assert.Empty(t, client.Calls("DeleteObject"))

	require.NoError(t, client.Close())
	assert.True(t, client.Closed)
}
