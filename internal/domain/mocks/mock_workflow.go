// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"solseed.dev/pkg/solseed/internal/domain"
	m "solseed.dev/pkg/solseed/internal/model"
)

// MockWorkflow is a mock implementation of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a MockWorkflow that asserts its expectations when
// the test finishes.
func NewMockWorkflow(t *testing.T) *MockWorkflow {
	t.Helper()

	mw := &MockWorkflow{}
	mw.Mock.Test(t)

	t.Cleanup(func() { mw.AssertExpectations(t) })

	return mw
}

// Inject implements domain.Workflow.
func (mw *MockWorkflow) Inject(ctx context.Context, args domain.InjectArgs) (*domain.InjectSummary, error) {
	ret := mw.Called(ctx, args)

	var summary *domain.InjectSummary
	if v := ret.Get(0); v != nil {
		summary = v.(*domain.InjectSummary)
	}

	return summary, ret.Error(1)
}

// Eval implements domain.Workflow.
func (mw *MockWorkflow) Eval(ctx context.Context, args domain.EvalArgs) ([]m.ToolRun, error) {
	ret := mw.Called(ctx, args)

	var runs []m.ToolRun
	if v := ret.Get(0); v != nil {
		runs = v.([]m.ToolRun)
	}

	return runs, ret.Error(1)
}

// Score implements domain.Workflow.
func (mw *MockWorkflow) Score(ctx context.Context, args domain.ScoreArgs) ([]m.ScoreCard, error) {
	ret := mw.Called(ctx, args)

	var cards []m.ScoreCard
	if v := ret.Get(0); v != nil {
		cards = v.([]m.ScoreCard)
	}

	return cards, ret.Error(1)
}

// Merge implements domain.Workflow.
func (mw *MockWorkflow) Merge(ctx context.Context, args domain.MergeArgs) (m.GroundTruth, error) {
	ret := mw.Called(ctx, args)

	var gt m.GroundTruth
	if v := ret.Get(0); v != nil {
		gt = v.(m.GroundTruth)
	}

	return gt, ret.Error(1)
}
