package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vudodov/aws.s3/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		wantError bool
		errMsg    string
	}{
		// Valid bucket names
		{"valid_simple", "my-bucket", false, ""},
		{"valid_short_word", "data", false, ""},
		{"valid_with_numbers", "my-bucket123", false, ""},
		{"valid_starts_with_number", "2024-logs", false, ""},
		{"valid_with_dots", "my.bucket", false, ""},
		{"valid_min_length", "abc", false, ""},
		{"valid_max_length", strings.Repeat("a", 63), false, ""},

		// Invalid bucket names
		{"empty", "", true, "bucket name cannot be empty"},
		{"too_short", "ab", true, "bucket name must be between 3 and 63 characters long"},
		{"too_long", strings.Repeat("a", 64), true, "bucket name must be between 3 and 63 characters long"},
		{"starts_with_hyphen", "-bucket", true, "bucket name cannot start or end with a hyphen or dot"},
		{"ends_with_dot", "bucket.", true, "bucket name cannot start or end with a hyphen or dot"},
		{
			"contains_uppercase",
			"MyBucket",
			true,
			"bucket name can only contain lowercase letters, numbers, dots, and hyphens",
		},
		{
			"contains_underscore",
			"my_bucket",
			true,
			"bucket name can only contain lowercase letters, numbers, dots, and hyphens",
		},
		{"ip_address", "192.168.1.1", true, "bucket name cannot be formatted as an IP address"},
		{"adjacent_dots", "my..bucket", true, "bucket name cannot contain two adjacent periods"},
		{"reserved_prefix", "xn--bucket", true, "reserved prefix xn--"},
		{"reserved_suffix", "logs-s3alias", true, "reserved suffix -s3alias"},
		{"dotted_not_ip", "1.2.3.bucket", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateLegacyBucketName(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		wantError bool
		errMsg    string
	}{
		{"uppercase", "MyBucket", false, ""},
		{"underscore", "my_bucket", false, ""},
		{"long", strings.Repeat("A", 255), false, ""},
		{"dns_compliant", "my-bucket", false, ""},
		{"too_short", "ab", true, "between 3 and 255"},
		{"too_long", strings.Repeat("a", 256), true, "between 3 and 255"},
		{"space", "my bucket", true, "letters, numbers, dots, hyphens, and underscores"},
		{"slash", "my/bucket", true, "letters, numbers, dots, hyphens, and underscores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLegacyBucketName(tt.bucket)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantError bool
		errMsg    string
	}{
		{"empty_matches_all", "", false, ""},
		{"nested", "logs/2024/", false, ""},
		{"no_trailing_slash", "logs/2024", false, ""},
		{"unicode", "données/été/", false, ""},
		{"max_length", strings.Repeat("p", 1024), false, ""},
		{"too_long", strings.Repeat("p", 1025), true, "prefix cannot exceed 1024 bytes"},
		{"control_character", "logs/\x00/", true, "prefix cannot contain control characters"},
		{"newline", "logs\n", true, "prefix cannot contain control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrefix(tt.prefix)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidPrefix)
			assert.True(t, errors.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidatePageSize(t *testing.T) {
	assert.NoError(t, ValidatePageSize(1))
	assert.NoError(t, ValidatePageSize(1000))
	assert.ErrorIs(t, ValidatePageSize(0), errors.ErrInvalidInput)
	assert.ErrorIs(t, ValidatePageSize(1001), errors.ErrInvalidInput)
	assert.ErrorIs(t, ValidatePageSize(-5), errors.ErrInvalidInput)
}
