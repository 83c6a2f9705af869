package config

import "time"

// Config is the main searchlens configuration
type Config struct {
	// AI holds generation collaborator settings
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Servers configures the backing tool providers
	Servers ServersConfig `json:"servers" mapstructure:"servers"`

	// Selection configures the tool selector
	Selection SelectionConfig `json:"selection" mapstructure:"selection"`

	// Executor configures the script sandbox
	Executor ExecutorConfig `json:"executor" mapstructure:"executor"`

	// Logging configures log output
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// DataDir is where snapshots, history and logs live
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// AIConfig holds generation provider settings
type AIConfig struct {
	Provider    string  `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey      string  `json:"api_key" mapstructure:"api_key"`
	Model       string  `json:"model" mapstructure:"model"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// ServersConfig configures the two backend classes
type ServersConfig struct {
	Primary   StdioServerConfig `json:"primary" mapstructure:"primary"`
	Secondary HTTPServerConfig  `json:"secondary" mapstructure:"secondary"`

	// RefreshSchedule is a cron spec for periodic catalog reloads; empty disables
	RefreshSchedule string `json:"refresh_schedule" mapstructure:"refresh_schedule"`
}

// StdioServerConfig launches a tool server subprocess over stdio
type StdioServerConfig struct {
	Command string   `json:"command" mapstructure:"command"`
	Args    []string `json:"args" mapstructure:"args"`
	Env     []string `json:"env" mapstructure:"env"`
}

// HTTPServerConfig points at a streamable HTTP tool server
type HTTPServerConfig struct {
	URL string `json:"url" mapstructure:"url"`
}

// SelectionConfig configures the tool selector
type SelectionConfig struct {
	// MaxToolsPerStep caps tools exposed per plan step
	MaxToolsPerStep int `json:"max_tools_per_step" mapstructure:"max_tools_per_step"`
}

// ExecutorConfig configures sandboxed execution
type ExecutorConfig struct {
	// Timeout bounds one script execution including its tool calls
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		Selection: SelectionConfig{
			MaxToolsPerStep: 6,
		},
		Executor: ExecutorConfig{
			Timeout: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}
