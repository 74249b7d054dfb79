package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorCode extracts the provider error code from err, or "" when err is
// not an API error.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether the provider rejected a reference to a
// resource that does not exist. EC2 signals this with Invalid*.NotFound
// codes, DocumentDB with *NotFound / *NotFoundFault faults.
func IsNotFound(err error) bool {
	code := ErrorCode(err)
	return code != "" && strings.Contains(code, "NotFound")
}

// IsDuplicate reports whether the provider rejected a create because the
// identity is already taken: an unguarded re-apply collides here. It also
// matches the rule- and route-level duplicates the client tolerates.
func IsDuplicate(err error) bool {
	code := ErrorCode(err)
	if code == "" {
		return false
	}
	return strings.Contains(code, "AlreadyExists") || strings.HasSuffix(code, ".Duplicate")
}
