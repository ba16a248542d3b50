package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"legisbase/internal/catalog"
	"legisbase/internal/core"
	applog "legisbase/internal/log"
)

const (
	toolListBills = "list_bills"
	toolGetBill   = "get_bill"
)

// ErrBillNotFound is the tool error for a get_bill miss. Its text matches
// the HTTP API error.
var ErrBillNotFound = errors.New("Bill not found")

// ListBillsInput holds the optional listing filter.
type ListBillsInput struct {
	Search string `json:"search,omitempty" jsonschema:"case-insensitive text matched against title, summary and AI interpretation"`
	Tag    string `json:"tag,omitempty" jsonschema:"exact tag, case-insensitive"`
}

// ListBillsResult is the list_bills output.
type ListBillsResult struct {
	Bills []core.Bill `json:"bills"`
	Count int         `json:"count"`
}

// GetBillInput names one bill.
type GetBillInput struct {
	ID int `json:"id" jsonschema:"numeric bill id"`
}

// GetBillResult is the get_bill output.
type GetBillResult struct {
	Bill core.Bill `json:"bill"`
}

// ListBillsTool defines the MCP tool schema for listing bills.
func ListBillsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        toolListBills,
		Description: "Lists legislative bills, optionally filtered by search text and tag",
	}
}

// GetBillTool defines the MCP tool schema for fetching one bill.
func GetBillTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        toolGetBill,
		Description: "Returns one legislative bill by id",
	}
}

// ListBillsHandler answers list_bills from svc.
func ListBillsHandler(svc *catalog.Service, logger *applog.Logger) mcp.ToolHandlerFor[ListBillsInput, ListBillsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListBillsInput) (*mcp.CallToolResult, ListBillsResult, error) {
		f := core.NewBillFilter(input.Search, input.Tag)
		bills, err := svc.ListBills(ctx, f)
		if err != nil {
			return nil, ListBillsResult{}, fmt.Errorf("list bills: %w", err)
		}
		out := ListBillsResult{Bills: bills, Count: len(bills)}

		logger.DebugContext(ctx, "MCP list_bills",
			applog.NewFields().
				WithOperation(applog.OpList).
				WithQuery(f.Search.String(), f.Tag.String()).
				WithResultCount(len(bills)).
				ToSlice()...)

		res, err := textResult(out)
		return res, out, err
	}
}

// GetBillHandler answers get_bill from svc. A missing bill is reported as a
// tool error, not a protocol error.
func GetBillHandler(svc *catalog.Service, logger *applog.Logger) mcp.ToolHandlerFor[GetBillInput, GetBillResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetBillInput) (*mcp.CallToolResult, GetBillResult, error) {
		bill, err := svc.GetBill(ctx, input.ID)
		if errors.Is(err, core.ErrNotFound) {
			logger.DebugContext(ctx, "MCP get_bill miss",
				applog.NewFields().WithOperation(applog.OpGet).WithBill(input.ID).ToSlice()...)
			return nil, GetBillResult{}, ErrBillNotFound
		}
		if err != nil {
			return nil, GetBillResult{}, fmt.Errorf("get bill: %w", err)
		}
		out := GetBillResult{Bill: bill}
		res, err := textResult(out)
		return res, out, err
	}
}

// textResult mirrors the structured output as JSON text for clients that
// only read content blocks.
func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
