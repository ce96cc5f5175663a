package validation

import (
	"net"
	"strings"
	"unicode"

	"github.com/vudodov/aws.s3/errors"
)

// Prefixes and suffixes S3 reserves for access points and internal names.
var (
	reservedPrefixes = []string{"xn--", "sthree-"}
	reservedSuffixes = []string{"-s3alias", "--ol-s3", ".mrap", "--x-s3"}
)

// maxKeyLength is the longest object key (and therefore prefix) S3 accepts, in bytes.
const maxKeyLength = 1024

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if err := validateBucketNameBasics(bucket); err != nil {
		return err
	}

	if err := validateBucketNameCharacters(bucket); err != nil {
		return err
	}

	return validateBucketNameStructure(bucket)
}

// LegacyRegion is the only region that still serves buckets named before
// the DNS naming rules were enforced.
const LegacyRegion = "us-east-1"

// maxLegacyBucketLength is the longest legacy us-east-1 bucket name.
const maxLegacyBucketLength = 255

// ValidateLegacyBucketName accepts the relaxed names older us-east-1 buckets
// may carry: up to 255 letters of either case, digits, dots, hyphens and
// underscores. Such buckets are addressed path-style.
func ValidateLegacyBucketName(bucket string) error {
	if len(bucket) < 3 || len(bucket) > maxLegacyBucketLength {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("legacy bucket name must be between 3 and 255 characters long")
	}
	for _, char := range bucket {
		if !isValidLegacyBucketChar(char) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage("legacy bucket name can only contain letters, numbers, dots, hyphens, and underscores")
		}
	}
	return nil
}

// ValidatePrefix validates a listing prefix. An empty prefix is valid and matches every key.
func ValidatePrefix(prefix string) error {
	if len(prefix) > maxKeyLength {
		return errors.NewError("validatePrefix", errors.ErrInvalidPrefix).
			WithPrefix(prefix[:32]).
			WithMessage("prefix cannot exceed 1024 bytes")
	}

	if hasControlCharacters(prefix) {
		return errors.NewError("validatePrefix", errors.ErrInvalidPrefix).
			WithMessage("prefix cannot contain control characters")
	}

	return nil
}

// ValidatePageSize validates a ListObjectsV2 page size.
func ValidatePageSize(size int32) error {
	if size < 1 || size > 1000 {
		return errors.NewError("validatePageSize", errors.ErrInvalidInput).
			WithMessage("page size must be between 1 and 1000")
	}
	return nil
}

// validateBucketNameBasics validates basic bucket name requirements
func validateBucketNameBasics(bucket string) error {
	if bucket == "" {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithMessage("bucket name cannot be empty")
	}

	// Bucket names must be between 3 and 63 characters long
	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must be between 3 and 63 characters long")
	}

	return nil
}

// validateBucketNameCharacters validates allowed characters in bucket names
func validateBucketNameCharacters(bucket string) error {
	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	return nil
}

// validateBucketNameStructure validates bucket name structural requirements
func validateBucketNameStructure(bucket string) error {
	first, last := bucket[0], bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot be formatted as an IP address")
	}

	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(bucket, prefix) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage("bucket name cannot start with the reserved prefix " + prefix)
		}
	}
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(bucket, suffix) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage("bucket name cannot end with the reserved suffix " + suffix)
		}
	}

	if strings.Contains(bucket, "..") {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot contain two adjacent periods")
	}

	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

func isValidLegacyBucketChar(char rune) bool {
	return isValidBucketChar(char) || (char >= 'A' && char <= 'Z') || char == '_'
}

// isIPAddress reports whether s is a dotted IPv4 address.
func isIPAddress(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
