package registry

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// JSON-RPC messages exchanged with tool servers
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      interface{}     `json:"id"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type rpcToolList struct {
	Tools []struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description"`
		InputSchema map[string]interface{} `json:"inputSchema"`
	} `json:"tools"`
}

const rpcCallTimeout = 30 * time.Second

// StdioProvider speaks JSON-RPC 2.0 to a tool server subprocess over stdio.
// The process is started lazily on first use and reused until Close.
type StdioProvider struct {
	id      string
	command string
	args    []string
	env     []string

	mu      sync.Mutex
	process *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Scanner
	nextID  int
	pending map[int]chan *rpcResponse
	closed  bool
}

// NewStdioProvider creates a provider that launches command args... on demand
func NewStdioProvider(id, command string, args, env []string) *StdioProvider {
	return &StdioProvider{
		id:      id,
		command: command,
		args:    args,
		env:     env,
		pending: make(map[int]chan *rpcResponse),
	}
}

// ID returns the provider identifier
func (p *StdioProvider) ID() string {
	return p.id
}

// start launches the server process and performs the initialize handshake
func (p *StdioProvider) start(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrProviderClosed
	}
	if p.process != nil {
		p.mu.Unlock()
		return nil
	}

	cmd := exec.Command(p.command, p.args...)
	if len(p.env) > 0 {
		cmd.Env = p.env
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		p.mu.Unlock()
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.mu.Unlock()
		return err
	}

	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return err
	}

	p.process = cmd
	p.stdin = stdin
	p.stdout = bufio.NewScanner(stdout)
	p.stdout.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	p.mu.Unlock()

	go p.listen()

	return p.initialize(ctx)
}

func (p *StdioProvider) listen() {
	for p.stdout.Scan() {
		var resp rpcResponse
		if err := json.Unmarshal(p.stdout.Bytes(), &resp); err != nil {
			log.Error().Err(err).Str("provider", p.id).Msg("Failed to unmarshal tool server response")
			continue
		}

		if id, ok := resp.ID.(float64); ok {
			p.mu.Lock()
			ch, exists := p.pending[int(id)]
			if exists {
				delete(p.pending, int(id))
				ch <- &resp
			}
			p.mu.Unlock()
		}
	}
}

func (p *StdioProvider) initialize(ctx context.Context) error {
	params := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "searchlens",
			"version": "0.1.0",
		},
	}
	_, err := p.call(ctx, "initialize", params)
	return err
}

func (p *StdioProvider) call(ctx context.Context, method string, params interface{}) (*rpcResponse, error) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	ch := make(chan *rpcResponse, 1)
	p.pending[id] = ch
	stdin := p.stdin
	p.mu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	}

	data, err := json.Marshal(req)
	if err != nil {
		p.forget(id)
		return nil, err
	}

	if _, err := io.WriteString(stdin, string(data)+"\n"); err != nil {
		p.forget(id)
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("tool server error (%d): %s", resp.Error.Code, resp.Error.Message)
		}
		return resp, nil
	case <-ctx.Done():
		p.forget(id)
		return nil, ctx.Err()
	case <-time.After(rpcCallTimeout):
		p.forget(id)
		return nil, fmt.Errorf("tool server request timeout")
	}
}

// forget drops an abandoned pending request so a late response is discarded
// instead of accumulating map entries.
func (p *StdioProvider) forget(id int) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

// ListTools fetches the tool definitions from the server
func (p *StdioProvider) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	if err := p.start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start tool server %s: %w", p.id, err)
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
func (p *StdioProvider) CallTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	if err := p.start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start tool server %s: %w", p.id, err)
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

// Close terminates the server process
func (p *StdioProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.process == nil {
		return nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}
	err := p.process.Process.Kill()
	p.process = nil
	return err
}

// decodeToolResult unwraps a tools/call result envelope. Servers return
// {"content": [{"type": "text", "text": "..."}]}; text payloads that parse as
// JSON are decoded, everything else is passed through as-is.
func decodeToolResult(raw json.RawMessage) (interface{}, error) {
	var envelope struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}

	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Content) == 0 {
		// Not the standard envelope; return the raw result decoded generically.
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, err
		}
		return generic, nil
	}

	text := envelope.Content[0].Text
	if envelope.IsError {
		return nil, fmt.Errorf("tool call failed: %s", text)
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		// Plain-text result. Any JSON-compatible type is a valid result.
		return text, nil
	}
	return decoded, nil
}
