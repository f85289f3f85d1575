package domain

// RegistryEntry describes a known command.
// Group is the catalog section (system, git, ai, dev); Category is the finer label (file-system, version-control...).
type RegistryEntry struct {
	Command     string   `json:"command" yaml:"command" mapstructure:"command"`
	Description string   `json:"description" yaml:"description" mapstructure:"description"`
	Usage       string   `json:"usage" yaml:"usage" mapstructure:"usage"`
	Examples    []string `json:"examples" yaml:"examples" mapstructure:"examples"`
	Category    string   `json:"category" yaml:"category" mapstructure:"category"`
	Group       string   `json:"group" yaml:"group" mapstructure:"group"`
}
