package spec

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Manifest is the canonical, storable representation of an agent graph,
// independent of live object identity. It is the unit of storage,
// distribution, linting, and version diffing; it never executes.
type Manifest struct {
	Metadata Metadata    `json:"metadata" yaml:"metadata"`
	Version  VersionInfo `json:"version" yaml:"version"`
	Policy   Policy      `json:"policy" yaml:"policy"`
	Graph    Graph       `json:"graph" yaml:"graph"`
}

// Metadata describes the agent.
type Metadata struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// VersionInfo carries the semantic version and change history.
type VersionInfo struct {
	Version   string           `json:"version" yaml:"version"`
	Changelog []ChangeLogEntry `json:"changelog,omitempty" yaml:"changelog,omitempty"`
}

// ChangeLogEntry is one entry in the agent's change history.
type ChangeLogEntry struct {
	Version     string    `json:"version" yaml:"version"`
	Date        time.Time `json:"date" yaml:"date"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// Policy holds execution limits and the tool allow list.
type Policy struct {
	// AllowedTools restricts which registered tools an imported graph may
	// bind. Empty means unrestricted.
	AllowedTools []string `json:"allowed_tools,omitempty" yaml:"allowed_tools,omitempty"`
	// MaxSteps seeds the executor's circuit breaker when running this
	// manifest. Zero means the executor default.
	MaxSteps     int     `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	CostLimitUSD float64 `json:"cost_limit_usd,omitempty" yaml:"cost_limit_usd,omitempty"`
}

// Graph is the serialized topology.
type Graph struct {
	StartNode string       `json:"start_node" yaml:"start_node"`
	Nodes     []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges     []EdgeRecord `json:"edges" yaml:"edges"`
}

// NodeRecord is one serialized node. Type is a graph.Kind* label; Config
// holds the variant-specific fields and is decoded with the typed
// *Config structs below.
type NodeRecord struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Label  string         `json:"label,omitempty" yaml:"label,omitempty"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// EdgeRecord is one serialized reference between nodes. Condition
// distinguishes a router's branches; ConditionDefault and ConditionError
// mark the fallback and error branches. Terminal references have no edge.
type EdgeRecord struct {
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Reserved edge conditions.
const (
	// ConditionDefault marks a router's fallback branch.
	ConditionDefault = "default"
	// ConditionError marks a tool's error branch.
	ConditionError = "error"
)

// Store persists manifests, versioned per agent id.
type Store interface {
	Save(ctx context.Context, m *Manifest) error
	Load(ctx context.Context, agentID, version string) (*Manifest, error)
	ListVersions(ctx context.Context, agentID string) ([]string, error)
}

// --- Typed node configurations ---

// SetValueConfig configures a set_value node.
type SetValueConfig struct {
	Key   string `mapstructure:"key" json:"key"`
	Value any    `mapstructure:"value" json:"value"`
}

// LLMConfig configures an llm node.
type LLMConfig struct {
	Model             string `mapstructure:"model" json:"model"`
	PromptTemplate    string `mapstructure:"prompt_template" json:"prompt_template"`
	OutputKey         string `mapstructure:"output_key" json:"output_key"`
	SystemInstruction string `mapstructure:"system_instruction" json:"system_instruction,omitempty"`
	MaxRetries        int    `mapstructure:"max_retries" json:"max_retries,omitempty"`
}

// ToolConfig configures a tool node. ToolName is resolved against the
// host's registry at import time; the document never carries executable
// code.
type ToolConfig struct {
	ToolName  string   `mapstructure:"tool_name" json:"tool_name"`
	InputKeys []string `mapstructure:"input_keys" json:"input_keys"`
	OutputKey string   `mapstructure:"output_key" json:"output_key,omitempty"`
}

// RouterConfig configures a router node. Routes maps route keys to node
// ids; Decision names the registered decision function.
type RouterConfig struct {
	Decision     string            `mapstructure:"decision" json:"decision"`
	Routes       map[string]string `mapstructure:"routes" json:"routes"`
	DefaultRoute string            `mapstructure:"default_route" json:"default_route,omitempty"`
}

// DecodeConfig decodes a NodeRecord's untyped config into one of the
// typed *Config structs.
func DecodeConfig(record NodeRecord, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(record.Config); err != nil {
		return fmt.Errorf("node %s: invalid %s config: %w", record.ID, record.Type, err)
	}
	return nil
}

// NodeIndex maps node ids to their records.
func (g *Graph) NodeIndex() map[string]NodeRecord {
	idx := make(map[string]NodeRecord, len(g.Nodes))
	for _, n := range g.Nodes {
		idx[n.ID] = n
	}
	return idx
}
