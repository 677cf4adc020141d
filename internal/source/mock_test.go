package source

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/mock"
)

// mockClient implements notion.Client for testing.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *mockClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *mockClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *mockClient) GetBlockChildren(ctx context.Context, blockID string, cursor string) (*notionapi.GetChildrenResponse, error) {
	args := m.Called(ctx, blockID, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.GetChildrenResponse), args.Error(1)
}

func (m *mockClient) AppendBlockChildren(ctx context.Context, blockID string, children []notionapi.Block) (*notionapi.AppendBlockChildrenResponse, error) {
	args := m.Called(ctx, blockID, children)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.AppendBlockChildrenResponse), args.Error(1)
}

func (m *mockClient) DeleteBlock(ctx context.Context, blockID string) error {
	args := m.Called(ctx, blockID)
	return args.Error(0)
}
