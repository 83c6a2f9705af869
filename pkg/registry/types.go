package registry

import "context"

// ToolDescriptor describes one remote tool in the catalog
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	ArgsSchema  map[string]interface{} `json:"args_schema"`
	Server      string                 `json:"server"` // ID of the provider that owns the tool
}

// ToolMetadata is the compact per-tool view surfaced to the generation stages
type ToolMetadata struct {
	Description string                 `json:"description"`
	ArgsSchema  map[string]interface{} `json:"args_schema"`
}

// Provider is a connection to one backing tool server
type Provider interface {
	// ID returns the provider identifier (e.g. "searchconsole", "dataforseo")
	ID() string

	// ListTools fetches the tool definitions from the server
	ListTools(ctx context.Context) ([]ToolDescriptor, error)

	// CallTool invokes a tool by name and returns its decoded result
	CallTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error)

	// Close tears down the connection
	Close() error
}
