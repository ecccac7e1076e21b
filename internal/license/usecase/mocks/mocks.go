// Package mocks provides mock implementations for testing license workflows.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
)

// MockLicenseRepository is a mock implementation of LicenseRepository for testing.
type MockLicenseRepository struct {
	mock.Mock
}

// Save mocks the Save method of LicenseRepository.
func (m *MockLicenseRepository) Save(ctx context.Context, license *licenseDomain.License) error {
	args := m.Called(ctx, license)
	return args.Error(0)
}

// Load mocks the Load method of LicenseRepository.
func (m *MockLicenseRepository) Load(ctx context.Context) (*licenseDomain.License, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licenseDomain.License), args.Error(1)
}

// Delete mocks the Delete method of LicenseRepository.
func (m *MockLicenseRepository) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIdentity is a mock implementation of the hardware Identity for testing.
type MockIdentity struct {
	mock.Mock
}

// Fingerprint mocks the Fingerprint method of Identity.
func (m *MockIdentity) Fingerprint(ctx context.Context) (hardwareDomain.Fingerprint, error) {
	args := m.Called(ctx)
	return args.Get(0).(hardwareDomain.Fingerprint), args.Error(1)
}

// MockVerifierUseCase is a mock implementation of VerifierUseCase for testing.
type MockVerifierUseCase struct {
	mock.Mock
}

// Check mocks the Check method of VerifierUseCase.
func (m *MockVerifierUseCase) Check(ctx context.Context) (*licenseDomain.License, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licenseDomain.License), args.Error(1)
}

// Evaluate mocks the Evaluate method of VerifierUseCase.
func (m *MockVerifierUseCase) Evaluate(
	ctx context.Context,
	license *licenseDomain.License,
	local hardwareDomain.Fingerprint,
	hardwareErr error,
) error {
	args := m.Called(ctx, license, local, hardwareErr)
	return args.Error(0)
}

// Verify mocks the Verify method of VerifierUseCase.
func (m *MockVerifierUseCase) Verify(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// MockIssuerUseCase is a mock implementation of IssuerUseCase for testing.
type MockIssuerUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of IssuerUseCase.
func (m *MockIssuerUseCase) Issue(
	ctx context.Context,
	input licenseDomain.IssueInput,
) (*licenseDomain.License, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licenseDomain.License), args.Error(1)
}

// Install mocks the Install method of IssuerUseCase.
func (m *MockIssuerUseCase) Install(
	ctx context.Context,
	input licenseDomain.IssueInput,
) (*licenseDomain.License, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licenseDomain.License), args.Error(1)
}
