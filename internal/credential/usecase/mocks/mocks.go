// Package mocks provides mock implementations for testing credential workflows.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/nodelock/internal/credential/domain"
)

// MockCredentialRepository is a mock implementation of CredentialRepository for testing.
type MockCredentialRepository struct {
	mock.Mock
}

// Create mocks the Create method of CredentialRepository.
func (m *MockCredentialRepository) Create(ctx context.Context, creds *credentialDomain.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

// Update mocks the Update method of CredentialRepository.
func (m *MockCredentialRepository) Update(ctx context.Context, creds *credentialDomain.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

// Get mocks the Get method of CredentialRepository.
func (m *MockCredentialRepository) Get(ctx context.Context, username string) (*credentialDomain.Credentials, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credentials), args.Error(1)
}

// Count mocks the Count method of CredentialRepository.
func (m *MockCredentialRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockPasswordService is a mock implementation of PasswordService for testing.
type MockPasswordService struct {
	mock.Mock
}

// HashPassword mocks the HashPassword method of PasswordService.
func (m *MockPasswordService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// VerifyPassword mocks the VerifyPassword method of PasswordService.
func (m *MockPasswordService) VerifyPassword(candidate, storedHash string) bool {
	args := m.Called(candidate, storedHash)
	return args.Bool(0)
}

// MockCredentialUseCase is a mock implementation of CredentialUseCase for testing.
type MockCredentialUseCase struct {
	mock.Mock
}

// Initialize mocks the Initialize method of CredentialUseCase.
func (m *MockCredentialUseCase) Initialize(ctx context.Context, input credentialDomain.InitializeInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

// IsInitialized mocks the IsInitialized method of CredentialUseCase.
func (m *MockCredentialUseCase) IsInitialized(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// Authenticate mocks the Authenticate method of CredentialUseCase.
func (m *MockCredentialUseCase) Authenticate(
	ctx context.Context,
	username, password string,
) (*credentialDomain.Credentials, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credentials), args.Error(1)
}

// ChangePassword mocks the ChangePassword method of CredentialUseCase.
func (m *MockCredentialUseCase) ChangePassword(ctx context.Context, input credentialDomain.ChangePasswordInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}
