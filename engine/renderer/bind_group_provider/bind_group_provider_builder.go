package bind_group_provider

// BindGroupProviderOption is a functional option applied by NewBindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLabel overrides the default "mesh_<id>" label prefix.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - BindGroupProviderOption: option function to apply
func WithLabel(label string) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if label != "" {
			p.label = label
		}
	}
}
