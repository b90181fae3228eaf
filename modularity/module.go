package modularity

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/composekit/di"
)

// Module is a unit of application functionality loaded at runtime.
type Module interface {
	Initialize(ctx context.Context) error
}

// ModuleType is the service type module implementations are bound under.
// Each implementation is a named binding keyed by ModuleInfo.Type.
var ModuleType = reflect.TypeOf((*Module)(nil)).Elem()

// InitializationMode decides when a module is loaded.
type InitializationMode int

const (
	// WhenAvailable modules are loaded during bootstrap.
	WhenAvailable InitializationMode = iota
	// OnDemand modules are loaded by an explicit LoadModule call.
	OnDemand
)

func (m InitializationMode) String() string {
	if m == OnDemand {
		return "on_demand"
	}
	return "when_available"
}

// ParseInitializationMode parses the config form of a mode. Empty means
// WhenAvailable.
func ParseInitializationMode(s string) (InitializationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "when_available":
		return WhenAvailable, nil
	case "on_demand":
		return OnDemand, nil
	default:
		return WhenAvailable, fmt.Errorf("unknown initialization mode %q", s)
	}
}

// ModuleState tracks a module through loading.
type ModuleState int

const (
	StateNotStarted ModuleState = iota
	StateInitializing
	StateInitialized
	StateFailed
)

func (s ModuleState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateFailed:
		return "failed"
	default:
		return "not_started"
	}
}

// ModuleInfo describes one catalog entry.
type ModuleInfo struct {
	Name      string
	Type      string
	DependsOn []string
	Mode      InitializationMode
	State     ModuleState
}

// ModuleConfig is the configuration-file form of a catalog entry.
type ModuleConfig struct {
	Name      string   `yaml:"name" mapstructure:"name" validate:"required"`
	Type      string   `yaml:"type" mapstructure:"type"`
	DependsOn []string `yaml:"depends_on" mapstructure:"depends_on"`
	Mode      string   `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=when_available on_demand"`
}

// ToInfo converts the config entry. Type defaults to Name.
func (c ModuleConfig) ToInfo() (*ModuleInfo, error) {
	mode, err := ParseInitializationMode(c.Mode)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", c.Name, err)
	}
	typ := c.Type
	if typ == "" {
		typ = c.Name
	}
	return &ModuleInfo{
		Name:      c.Name,
		Type:      typ,
		DependsOn: append([]string(nil), c.DependsOn...),
		Mode:      mode,
	}, nil
}

// RegisterModuleType binds a module implementation under ModuleType with
// typeName as its key. Modules are transient; the initializer resolves each
// module once.
func RegisterModuleType(c di.Container, typeName string, constructor interface{}) error {
	return c.Register(ModuleType, constructor, di.Transient, di.WithName(typeName))
}
