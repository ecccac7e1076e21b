package domain

import (
	"github.com/allisson/nodelock/internal/errors"
	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
)

// License errors.
var (
	// ErrLicenseNotFound indicates no license file is installed.
	ErrLicenseNotFound = errors.Wrap(errors.ErrNotFound, "license not found")

	// ErrLicenseUnreadable indicates the license file exists but could not be
	// read, decoded or decrypted. It wraps ErrLicenseNotFound: a damaged file is
	// treated exactly like a missing one.
	ErrLicenseUnreadable = errors.Wrap(ErrLicenseNotFound, "license file unreadable")

	// ErrSignatureInvalid indicates the license fields do not match their signature.
	ErrSignatureInvalid = errors.Wrap(errors.ErrForbidden, "license signature invalid")

	// ErrFingerprintMismatch indicates the license was issued for another machine.
	ErrFingerprintMismatch = errors.Wrap(errors.ErrForbidden, "license issued for a different machine")

	// ErrLicenseExpired indicates the license expiration date has passed.
	ErrLicenseExpired = errors.Wrap(errors.ErrForbidden, "license expired")
)

// Denial reasons reported in logs, metrics and the status command.
const (
	ReasonValid               = "valid"
	ReasonNotFound            = "not_found"
	ReasonUnreadable          = "unreadable"
	ReasonSignatureInvalid    = "signature_invalid"
	ReasonFingerprintMismatch = "fingerprint_mismatch"
	ReasonExpired             = "expired"
	ReasonHardwareQuery       = "hardware_query_failed"
	ReasonInternal            = "internal_error"
)

// DenialReason maps a verification error to a stable, short reason code.
func DenialReason(err error) string {
	switch {
	case err == nil:
		return ReasonValid
	case errors.Is(err, ErrLicenseUnreadable):
		return ReasonUnreadable
	case errors.Is(err, ErrLicenseNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrSignatureInvalid):
		return ReasonSignatureInvalid
	case errors.Is(err, ErrFingerprintMismatch):
		return ReasonFingerprintMismatch
	case errors.Is(err, ErrLicenseExpired):
		return ReasonExpired
	case errors.Is(err, hardwareDomain.ErrHardwareQuery):
		return ReasonHardwareQuery
	default:
		return ReasonInternal
	}
}
