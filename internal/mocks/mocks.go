// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyboard-ai/internal/types"
)

// MockSceneParser is a mock implementation of types.SceneParser
type MockSceneParser struct {
	mock.Mock
}

func (m *MockSceneParser) Parse(ctx context.Context, rawText string, language string) (*types.ParsedScenario, error) {
	args := m.Called(ctx, rawText, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ParsedScenario), args.Error(1)
}

// MockTextImprover is a mock implementation of types.TextImprover
type MockTextImprover struct {
	mock.Mock
}

func (m *MockTextImprover) Improve(ctx context.Context, text, styleHint, toneHint, languageHint string) (string, error) {
	args := m.Called(ctx, text, styleHint, toneHint, languageHint)
	return args.String(0), args.Error(1)
}

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
