// Package mocks provides test doubles for the sheets client.
package mocks

import (
	"context"

	sheets "github.com/PippinModels/commercial-pricing-app/pkg/sheets"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// GetSpreadsheet provides a mock function with given fields: ctx, spreadsheetID
func (_m *MockClient) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	ret := _m.Called(ctx, spreadsheetID)

	if len(ret) == 0 {
		panic("no return value specified for GetSpreadsheet")
	}

	var r0 *sheets.Spreadsheet
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*sheets.Spreadsheet, error)); ok {
		return rf(ctx, spreadsheetID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *sheets.Spreadsheet); ok {
		r0 = rf(ctx, spreadsheetID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*sheets.Spreadsheet)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, spreadsheetID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetValues provides a mock function with given fields: ctx, spreadsheetID, a1Range
func (_m *MockClient) GetValues(ctx context.Context, spreadsheetID string, a1Range string) ([][]string, error) {
	ret := _m.Called(ctx, spreadsheetID, a1Range)

	if len(ret) == 0 {
		panic("no return value specified for GetValues")
	}

	var r0 [][]string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) ([][]string, error)); ok {
		return rf(ctx, spreadsheetID, a1Range)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) [][]string); ok {
		r0 = rf(ctx, spreadsheetID, a1Range)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([][]string)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, spreadsheetID, a1Range)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// AppendValues provides a mock function with given fields: ctx, spreadsheetID, a1Range, rows
func (_m *MockClient) AppendValues(ctx context.Context, spreadsheetID string, a1Range string, rows [][]any) error {
	ret := _m.Called(ctx, spreadsheetID, a1Range, rows)

	if len(ret) == 0 {
		panic("no return value specified for AppendValues")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, [][]any) error); ok {
		r0 = rf(ctx, spreadsheetID, a1Range, rows)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ClearValues provides a mock function with given fields: ctx, spreadsheetID, a1Range
func (_m *MockClient) ClearValues(ctx context.Context, spreadsheetID string, a1Range string) error {
	ret := _m.Called(ctx, spreadsheetID, a1Range)

	if len(ret) == 0 {
		panic("no return value specified for ClearValues")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, spreadsheetID, a1Range)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// AddSheet provides a mock function with given fields: ctx, spreadsheetID, title
func (_m *MockClient) AddSheet(ctx context.Context, spreadsheetID string, title string) error {
	ret := _m.Called(ctx, spreadsheetID, title)

	if len(ret) == 0 {
		panic("no return value specified for AddSheet")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, spreadsheetID, title)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockClient creates a new instance of MockClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
