package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// StagingPrefix marks temporary files a backend writes before committing an
// asset. Identifiers may not start with it.
const StagingPrefix = ".binstore-"

// validatorInstance is a package-level validator instance.
// A single instance caches struct information across calls.
var validatorInstance = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("safesegment", validateSafeSegment)
	return v
}

// Validator returns the shared validator with the safesegment rule registered.
func Validator() *validator.Validate {
	return validatorInstance
}

// validateSafeSegment accepts strings that stay a single path segment when
// joined under a directory.
func validateSafeSegment(fl validator.FieldLevel) bool {
	return IsSafeSegment(fl.Field().String())
}

// IsSafeSegment reports whether id can be used verbatim as one path segment.
func IsSafeSegment(id string) bool {
	switch id {
	case "", ".", "..":
		return false
	}
	if strings.ContainsAny(id, "/\\\x00") {
		return false
	}
	return !strings.HasPrefix(id, StagingPrefix)
}

// ValidateBucketID checks a bucket identifier.
func ValidateBucketID(bucket string) error {
	if err := validatorInstance.Var(bucket, "safesegment"); err != nil {
		return InvalidIdentifier(bucket, "", err)
	}
	return nil
}

// ValidateAssetID checks a bucket and asset identifier pair.
func ValidateAssetID(bucket, asset string) error {
	if err := ValidateBucketID(bucket); err != nil {
		return err
	}
	if err := validatorInstance.Var(asset, "safesegment"); err != nil {
		return InvalidIdentifier(bucket, asset, err)
	}
	return nil
}
