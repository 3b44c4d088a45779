package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attachbridge/internal/dispatch"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (dispatch.Result, error) {
	a := m.Called(ctx, name, args)
	return a.Get(0).(dispatch.Result), a.Error(1)
}

func (m *MockRunner) LookPath(file string) (string, error) {
	a := m.Called(file)
	return a.String(0), a.Error(1)
}
