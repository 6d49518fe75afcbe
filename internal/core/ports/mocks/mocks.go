// Package mocks provides gomock-style doubles for the service ports used
// by HTTP middleware and handler tests. It is hand-maintained in the shape
// mockgen would emit, since this module does not run go generate.
package mocks

import (
	"context"
	"reflect"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

// MockTokenService is a mock of the TokenService interface.
type MockTokenService struct {
	ctrl     *gomock.Controller
	recorder *MockTokenServiceMockRecorder
}

type MockTokenServiceMockRecorder struct {
	mock *MockTokenService
}

func NewMockTokenService(ctrl *gomock.Controller) *MockTokenService {
	m := &MockTokenService{ctrl: ctrl}
	m.recorder = &MockTokenServiceMockRecorder{m}
	return m
}

func (m *MockTokenService) EXPECT() *MockTokenServiceMockRecorder {
	return m.recorder
}

func (m *MockTokenService) Generate(userID uuid.UUID, email string, role domain.Role) (string, time.Time, error) {
	panic("Generate is unused by middleware tests; extend MockTokenService if needed")
}

func (m *MockTokenService) Validate(token string) (*ports.TokenClaims, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Validate", token)
	claims, _ := ret[0].(*ports.TokenClaims)
	err, _ := ret[1].(error)
	return claims, err
}

func (mr *MockTokenServiceMockRecorder) Validate(token interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Validate", reflect.TypeOf((*MockTokenService)(nil).Validate), token)
}

// MockKeyStoreService is a mock of the KeyStoreService interface.
type MockKeyStoreService struct {
	ctrl     *gomock.Controller
	recorder *MockKeyStoreServiceMockRecorder
}

type MockKeyStoreServiceMockRecorder struct {
	mock *MockKeyStoreService
}

func NewMockKeyStoreService(ctrl *gomock.Controller) *MockKeyStoreService {
	m := &MockKeyStoreService{ctrl: ctrl}
	m.recorder = &MockKeyStoreServiceMockRecorder{m}
	return m
}

func (m *MockKeyStoreService) EXPECT() *MockKeyStoreServiceMockRecorder {
	return m.recorder
}

func (m *MockKeyStoreService) IssueKey(ctx context.Context, merchantID uuid.UUID, label string) (string, string, *domain.ApiKey, error) {
	panic("IssueKey is unused by middleware tests; extend MockKeyStoreService if needed")
}

func (m *MockKeyStoreService) ResolveKey(ctx context.Context, keyID, keySecret string) (*domain.Merchant, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ResolveKey", ctx, keyID, keySecret)
	merchant, _ := ret[0].(*domain.Merchant)
	err, _ := ret[1].(error)
	return merchant, err
}

func (mr *MockKeyStoreServiceMockRecorder) ResolveKey(ctx, keyID, keySecret interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ResolveKey", reflect.TypeOf((*MockKeyStoreService)(nil).ResolveKey), ctx, keyID, keySecret)
}

func (m *MockKeyStoreService) RevokeKey(ctx context.Context, keyID string) error {
	panic("RevokeKey is unused by middleware tests; extend MockKeyStoreService if needed")
}
