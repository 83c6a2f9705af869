package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPProvider speaks JSON-RPC 2.0 to a tool server over streamable HTTP.
// One session is negotiated on first use and reused for the process lifetime.
type HTTPProvider struct {
	id     string
	url    string
	client *http.Client

	mu          sync.Mutex
	nextID      int
	sessionID   string
	initialized bool
}

// NewHTTPProvider creates a provider for the given endpoint URL
func NewHTTPProvider(id, url string) *HTTPProvider {
	return &HTTPProvider{
		id:  id,
		url: url,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ID returns the provider identifier
func (p *HTTPProvider) ID() string {
	return p.id
}

func (p *HTTPProvider) ensureSession(ctx context.Context) error {
	p.mu.Lock()
	initialized := p.initialized
	p.mu.Unlock()
	if initialized {
		return nil
	}

	params := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "searchlens",
			"version": "0.1.0",
		},
	}
	if _, err := p.call(ctx, "initialize", params); err != nil {
		return err
	}

	p.mu.Lock()
	p.initialized = true
	p.mu.Unlock()
	return nil
}

func (p *HTTPProvider) call(ctx context.Context, method string, params interface{}) (*rpcResponse, error) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	sessionID := p.sessionID
	p.mu.Unlock()

	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		httpReq.Header.Set("Mcp-Session-Id", sessionID)
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if sid := httpResp.Header.Get("Mcp-Session-Id"); sid != "" {
		p.mu.Lock()
		p.sessionID = sid
		p.mu.Unlock()
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("tool server returned HTTP %d", httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	// Streamable HTTP may wrap the response in an SSE data frame.
	payload := body
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("event:")) || bytes.HasPrefix(bytes.TrimSpace(body), []byte("data:")) {
		payload = extractSSEData(body)
	}

	var resp rpcResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tool server response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("tool server error (%d): %s", resp.Error.Code, resp.Error.Message)
	}

	return &resp, nil
}

// extractSSEData pulls the last data: payload out of an SSE body
func extractSSEData(body []byte) []byte {
	var last []byte
	for _, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if bytes.HasPrefix(line, []byte("data:")) {
			last = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
		}
	}
	if last == nil {
		return body
	}
	return last
}

// ListTools fetches the tool definitions from the server
func (p *HTTPProvider) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	if err := p.ensureSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach tool server %s: %w", p.id, err)
	}

	resp, err := p.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var listResult rpcToolList
	if err := json.Unmarshal(resp.Result, &listResult); err != nil {
		return nil, err
	}

	tools := make([]ToolDescriptor, 0, len(listResult.Tools))
	for _, t := range listResult.Tools {
		tools = append(tools, ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			ArgsSchema:  t.InputSchema,
			Server:      p.id,
		})
	}

	return tools, nil
}

// CallTool invokes a tool on the server and returns its decoded result
func (p *HTTPProvider) CallTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	if err := p.ensureSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach tool server %s: %w", p.id, err)
	}

	callParams := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}

	resp, err := p.call(ctx, "tools/call", callParams)
	if err != nil {
		return nil, err
	}

	return decodeToolResult(resp.Result)
}

// Close marks the session as finished
func (p *HTTPProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = false
	p.sessionID = ""
	return nil
}
