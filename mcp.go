package arbex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/arbex/export"
)

// RegisterMCP registers arbex tools on an MCP server.
func (r *Runner) RegisterMCP(srv *mcp.Server) {
	r.registerExportTool(srv)
	r.registerClassifyTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		var res mcp.CallToolResult
		res.SetError(fmt.Errorf("marshal: %w", err))
		return &res, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errResult(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(errors.New(err.Error()))
	return &res, nil
}

// --- export ---

type exportToolResp struct {
	Report       *export.Report `json:"report"`
	ArtifactPath string         `json:"artifact_path"`
}

func (r *Runner) registerExportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "arbex_export",
		Description: "Run a tree export against the configured surface and return the run report.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rep, path, err := r.Export(ctx)
		if err != nil {
			return errResult(err)
		}
		return textResult(exportToolResp{Report: rep, ArtifactPath: path})
	})
}

// --- classify ---

type classifyReq struct {
	Name string `json:"name"`
}

func (r *Runner) registerClassifyTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "arbex_classify",
		Description: "Classify a filename as text or binary using the configured extension set.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Filename to classify"},
		}, []string{"name"}),
	}

	srv.AddTool(tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args classifyReq
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errResult(fmt.Errorf("invalid arguments: %w", err))
		}
		kind := export.NewClassifier(r.cfg.Engine.BinaryExtensions, false).Classify(args.Name)
		return textResult(map[string]string{"name": args.Name, "kind": kind.String()})
	})
}
