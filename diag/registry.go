package diag

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{strictMode: true}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates).
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) { c.strictMode = enabled }
}

// Registry publishes JSON Schemas for the condition-record shapes an
// embedder emits, keyed by record kind or embedder-chosen name.
type Registry struct {
	config  registryConfig
	schemas sync.Map // map[string]string (json schema)
	models  sync.Map // map[string]any
}

// NewRegistry creates a Registry with the given options, with the
// binding's own Record shape pre-registered under "condition".
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Registry{config: cfg}
	if err := r.Register("condition", Record{}); err != nil {
		return nil, err
	}
	return r, nil
}

// Register generates and stores the schema for a record model.
func (r *Registry) Register(name string, model any) error {
	if r.config.strictMode {
		if _, exists := r.schemas.Load(name); exists {
			return fmt.Errorf("diag: record shape %q already registered", name)
		}
	}

	r.models.Store(name, model)

	s := jsonschema.Reflect(model)
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("diag: marshaling schema for %s: %w", name, err)
	}
	r.schemas.Store(name, string(data))
	return nil
}

// Schema retrieves the JSON Schema registered under name.
func (r *Registry) Schema(name string) (string, bool) {
	v, ok := r.schemas.Load(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// List returns all registered record shape names.
func (r *Registry) List() []string {
	var names []string
	r.schemas.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	return names
}
