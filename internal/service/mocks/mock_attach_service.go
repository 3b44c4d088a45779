package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attachbridge/internal/model"
)

type MockAttachService struct {
	mock.Mock
}

func (m *MockAttachService) Attach(ctx context.Context, filePath string) (*model.AttachOutcome, error) {
	args := m.Called(ctx, filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AttachOutcome), args.Error(1)
}

type MockNamingEngine struct {
	mock.Mock
}

func (m *MockNamingEngine) CreateUniqueCopy(ctx context.Context, sourcePath string) (*model.UniqueCopy, error) {
	args := m.Called(ctx, sourcePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UniqueCopy), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) OpenMailWithAttachment(ctx context.Context, filePath string) model.AttachResult {
	args := m.Called(ctx, filePath)
	return args.Get(0).(model.AttachResult)
}
