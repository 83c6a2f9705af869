package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// Registry is the central catalog of remote tools across all providers.
//
// Tools are loaded once and cached; Reload forces a re-fetch. The provider
// connections are process-wide and reused across pipeline runs.
type Registry struct {
	providers []Provider

	mu      sync.RWMutex
	tools   []ToolDescriptor
	byName  map[string]ToolDescriptor
	schemas map[string]*gojsonschema.Schema
	loaded  bool
}

// New creates a registry over the given providers
func New(providers ...Provider) *Registry {
	return &Registry{
		providers: providers,
		byName:    make(map[string]ToolDescriptor),
		schemas:   make(map[string]*gojsonschema.Schema),
	}
}

// Tools returns the full cached tool list, loading it on first use
func (r *Registry) Tools(ctx context.Context) ([]ToolDescriptor, error) {
	r.mu.RLock()
	if r.loaded {
		tools := r.tools
		r.mu.RUnlock()
		return tools, nil
	}
	r.mu.RUnlock()

	return r.load(ctx)
}

// Reload forces a re-fetch of the catalog from all providers
func (r *Registry) Reload(ctx context.Context) ([]ToolDescriptor, error) {
	return r.load(ctx)
}

func (r *Registry) load(ctx context.Context) ([]ToolDescriptor, error) {
	if len(r.providers) == 0 {
		return nil, ErrNoProviders
	}

	var tools []ToolDescriptor
	for _, provider := range r.providers {
		listed, err := provider.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools from %s: %w", provider.ID(), err)
		}
		tools = append(tools, listed...)
	}

	byName := make(map[string]ToolDescriptor, len(tools))
	schemas := make(map[string]*gojsonschema.Schema, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
		if t.ArgsSchema == nil {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.ArgsSchema))
		if err != nil {
			log.Warn().Str("tool", t.Name).Err(err).Msg("Tool declares an uncompilable args schema")
			continue
		}
		schemas[t.Name] = schema
	}

	r.mu.Lock()
	r.tools = tools
	r.byName = byName
	r.schemas = schemas
	r.loaded = true
	r.mu.Unlock()

	log.Info().Int("count", len(tools)).Msg("Tool catalog loaded")

	return tools, nil
}

// Tool looks up a single descriptor by exact name
func (r *Registry) Tool(ctx context.Context, name string) (ToolDescriptor, bool, error) {
	if _, err := r.Tools(ctx); err != nil {
		return ToolDescriptor{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok, nil
}

// Has reports whether a tool name exists in the cached catalog.
// Returns false when the catalog has not been loaded yet.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// Metadata returns a map of tool name to description and args schema
func (r *Registry) Metadata(ctx context.Context) (map[string]ToolMetadata, error) {
	tools, err := r.Tools(ctx)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]ToolMetadata, len(tools))
	for _, t := range tools {
		meta[t.Name] = ToolMetadata{
			Description: t.Description,
			ArgsSchema:  t.ArgsSchema,
		}
	}
	return meta, nil
}

// Invoke executes a tool by name with the provided args.
//
// The args schema is advisory: mismatches are logged, never enforced, and the
// remote call's own failure is propagated to the caller unswallowed.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	if _, err := r.Tools(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	tool, ok := r.byName[name]
	schema := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if schema != nil {
		if result, err := schema.Validate(gojsonschema.NewGoLoader(args)); err == nil && !result.Valid() {
			log.Debug().Str("tool", name).Msg("Tool args do not match declared schema; dispatching anyway")
		}
	}

	provider := r.providerFor(tool.Server)
	if provider == nil {
		return nil, fmt.Errorf("no provider for server %s", tool.Server)
	}

	return provider.CallTool(ctx, name, args)
}

func (r *Registry) providerFor(id string) Provider {
	for _, p := range r.providers {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// Close tears down all provider connections
func (r *Registry) Close() error {
	var firstErr error
	for _, p := range r.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
