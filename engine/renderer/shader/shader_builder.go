package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithStruct registers a WGSL struct with the shader's pre-processor so the source can pull it in
// with @oxy:include and reference it in @oxy:group annotations.
//
// Parameters:
//   - key: the annotation argument naming the struct
//   - src: the struct's WGSL source and type name
//
// Returns:
//   - ShaderBuilderOption: a function that registers the struct on the shader's pre-processor
func WithStruct(key AnnotationArg, src StructSource) ShaderBuilderOption {
	return func(s *shader) {
		s.pp.RegisterStruct(key, src)
	}
}

// WithPreProcessor replaces the shader's pre-processor so several stages can share one struct registry.
// Declarations are copied out of the pre-processor when the source is parsed.
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}
