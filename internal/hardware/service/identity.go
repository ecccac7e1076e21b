// Package service derives the machine fingerprint from the platform hardware identifier.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
)

// placeholderUUIDs are values firmware vendors ship unconfigured boards with.
// Every machine carrying one would share a fingerprint.
var placeholderUUIDs = map[string]struct{}{
	"00000000-0000-0000-0000-000000000000": {},
	"ffffffff-ffff-ffff-ffff-ffffffffffff": {},
	"03000200-0400-0500-0006-000700080009": {},
}

// Identity computes the fingerprint of the current machine.
type Identity interface {
	Fingerprint(ctx context.Context) (hardwareDomain.Fingerprint, error)
}

type identity struct {
	source  Source
	timeout time.Duration
	logger  *slog.Logger
}

// NewIdentity creates an Identity backed by source. A non-positive timeout disables the per-query deadline.
func NewIdentity(source Source, timeout time.Duration, logger *slog.Logger) Identity {
	return &identity{
		source:  source,
		timeout: timeout,
		logger:  logger,
	}
}

// Fingerprint queries the platform identifier, validates it is a real UUID and
// hashes its canonical form. Errors wrap hardwareDomain.ErrHardwareQuery.
func (i *identity) Fingerprint(ctx context.Context) (hardwareDomain.Fingerprint, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	raw, err := i.source.PlatformID(ctx)
	if err != nil {
		return hardwareDomain.Fingerprint{}, err
	}

	canonical, err := canonicalPlatformID(raw)
	if err != nil {
		return hardwareDomain.Fingerprint{}, err
	}

	fp := hardwareDomain.NewFingerprint(canonical)
	i.logger.Debug("hardware fingerprint computed",
		slog.String("source", i.source.Name()),
		slog.String("fingerprint", fp.String()),
	)
	return fp, nil
}

// canonicalPlatformID parses raw as a UUID and returns its lowercase form, so
// "4C4C4544-..." from wmic and "4c4c4544-..." from sysfs hash the same.
func canonicalPlatformID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: platform identifier is not a uuid", hardwareDomain.ErrHardwareQuery)
	}

	canonical := id.String()
	if _, ok := placeholderUUIDs[canonical]; ok {
		return "", fmt.Errorf("%w: platform identifier is a firmware placeholder", hardwareDomain.ErrHardwareQuery)
	}
	return canonical, nil
}
