package bind_group_provider

// BufferWrite is one staged upload into a provider's uniform buffer. The backend collects
// them while resolving a frame and flushes them to the queue before encoding the pass.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
