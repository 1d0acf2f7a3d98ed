package registry

import (
	"context"
	"fmt"
	"net/http"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gloop-agent/gloop/agent"
)

// ImportMCP connects to an external MCP server over streamable HTTP via
// mark3labs/mcp-go's client transport and registers every tool it
// advertises as a ToolDefinition, so the Invoke step can call it exactly
// like a built-in tool. This is the concrete mechanism behind the Install
// Form when source names an mcp:// URL.
func ImportMCP(ctx context.Context, r *Registry, serverURL string) error {
	cli, err := mcpclient.NewStreamableHttpClient(serverURL)
	if err != nil {
		return fmt.Errorf("registry: create MCP client for %s: %w", serverURL, err)
	}
	if err := cli.Start(ctx); err != nil {
		return fmt.Errorf("registry: start MCP client for %s: %w", serverURL, err)
	}

	initReq := mcptypes.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcptypes.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcptypes.Implementation{Name: "gloop", Version: "1"}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		return fmt.Errorf("registry: initialize MCP session with %s: %w", serverURL, err)
	}

	listing, err := cli.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("registry: list tools on %s: %w", serverURL, err)
	}

	for _, tool := range listing.Tools {
		r.Register(mcpToolDefinition(cli, tool))
	}
	return nil
}

func mcpToolDefinition(cli *mcpclient.Client, tool mcptypes.Tool) agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        tool.Name,
		Description: tool.Description,
		Arguments:   mcpArgumentOrder(tool),
		Execute: func(ctx context.Context, values map[string]string) (string, error) {
			arguments := make(map[string]any, len(values))
			for k, v := range values {
				arguments[k] = v
			}
			req := mcptypes.CallToolRequest{}
			req.Params.Name = tool.Name
			req.Params.Arguments = arguments
			result, err := cli.CallTool(ctx, req)
			if err != nil {
				return "", fmt.Errorf("registry: call MCP tool %s: %w", tool.Name, err)
			}
			return mcpResultText(result), nil
		},
	}
}

func mcpArgumentOrder(tool mcptypes.Tool) []agent.ArgSpec {
	if tool.InputSchema.Properties == nil {
		return nil
	}
	specs := make([]agent.ArgSpec, 0, len(tool.InputSchema.Properties))
	for name, raw := range tool.InputSchema.Properties {
		specs = append(specs, agent.ArgSpec{Name: name, Description: mcpPropertyDescription(raw)})
	}
	return specs
}

// mcpPropertyDescription pulls the "description" string out of one
// property's raw JSON-schema value, as decoded by encoding/json into
// map[string]any. A property with no description, or one that isn't an
// object, contributes an empty description rather than an error.
func mcpPropertyDescription(raw any) string {
	prop, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	desc, _ := prop["description"].(string)
	return desc
}

func mcpResultText(result *mcptypes.CallToolResult) string {
	out := ""
	for _, c := range result.Content {
		if text, ok := c.(mcptypes.TextContent); ok {
			out += text.Text
		}
	}
	return out
}

// ServeMCP exposes the registry's current tool set as an MCP server over
// streamable HTTP using modelcontextprotocol/go-sdk, so another gloop
// process (or a human MCP inspector) can drive gloop's tools directly —
// the same listing ListTools exposes to a human operator via /tools.
func ServeMCP(ctx context.Context, r *Registry, addr string) error {
	server := mcp.NewServer(&mcp.Implementation{Name: "gloop", Version: "1"}, nil)

	for _, def := range r.All() {
		def := def
		mcp.AddTool(server, &mcp.Tool{Name: def.Name, Description: def.Description}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			values := make(map[string]string, len(args))
			for k, v := range args {
				values[k] = fmt.Sprintf("%v", v)
			}
			output, err := def.Execute(ctx, values)
			if err != nil {
				return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}}}, nil, nil
			}
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: output}}}, nil, nil
		})
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("registry: serve MCP on %s: %w", addr, err)
	}
	return nil
}
