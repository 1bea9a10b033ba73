// Package validation provides input validation middleware for the AI module API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for string fields
const MaxStringLength = 10000

var (
	// bech32AddressRegex validates VindexChain bech32 account addresses.
	// Charset excludes 1, b, i, o per the bech32 spec.
	bech32AddressRegex = regexp.MustCompile(`^vindex1[02-9ac-hj-np-z]{8,80}$`)
	// hexAddressRegex validates 0x-prefixed EVM-style addresses, accepted
	// for bridged accounts
	hexAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	// denomRegex validates token denominations (e.g. "vdx", "uvdx")
	denomRegex = regexp.MustCompile(`^[a-z][a-z0-9/]{1,63}$`)
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidAddress checks if a string is a valid VindexChain account address.
// Both native bech32 addresses and bridged 0x addresses are accepted.
func IsValidAddress(addr string) bool {
	return bech32AddressRegex.MatchString(addr) || hexAddressRegex.MatchString(addr)
}

// IsValidDenom checks if a string is a valid token denomination
func IsValidDenom(denom string) bool {
	return denomRegex.MatchString(denom)
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	// Trim whitespace
	s = strings.TrimSpace(s)

	// Limit length
	if len(s) > maxLen {
		s = s[:maxLen]
	}

	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	return s
}

// SanitizeAddress normalizes an account address for lookups and cache keys
func SanitizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	addr = strings.ToLower(addr)
	return addr
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidAddress checks if a field is a valid account address
func ValidAddress(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !IsValidAddress(value) {
			return &ValidationError{Field: field, Message: "must be a valid account address (vindex1... or 0x...)"}
		}
		return nil
	}
}

// ValidDenom checks if a field is a valid token denomination
func ValidDenom(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if !IsValidDenom(value) {
			return &ValidationError{Field: field, Message: "must be a valid token denomination"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// AddressParamMiddleware validates the :address URL parameter on routes that use it.
// Apply to route groups that include :address params to reject malformed addresses early.
func AddressParamMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.Param("address")
		if addr != "" && !IsValidAddress(SanitizeAddress(addr)) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_address",
				"message": "address must be a valid account address (vindex1... or 0x...)",
			})
			return
		}
		c.Next()
	}
}
