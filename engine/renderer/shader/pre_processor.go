// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with generated WGSL declarations
// or injected struct source, and collects the declarations and instance-stepped structs
// that resource wiring and vertex layout parsing rely on.
package shader

import (
	"fmt"
	"strings"
)

// StructSource pairs a WGSL struct source string, usually embedded from a .wgsl asset file,
// with the WGSL type name it declares.
type StructSource struct {
	// Source is the raw WGSL struct definition text injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations (e.g. "Projection").
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps struct type argument keys to their WGSL source and type name.
	structRegistry map[AnnotationArg]StructSource

	// addressSpaceRegistry maps address space argument keys to WGSL var<> syntax strings.
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group and provider annotations during a Process call.
	declarations []Annotation

	// instanced accumulates the struct names of @oxy:instance annotations during a Process call.
	instanced map[string]bool
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations.
type PreProcessor interface {
	// RegisterStruct makes a WGSL struct available to @oxy:include and @oxy:group under key.
	//
	// Parameters:
	//   - key: the annotation argument naming the struct
	//   - src: the struct's WGSL source and type name
	RegisterStruct(key AnnotationArg, src StructSource)

	// Process takes raw WGSL shader source code and replaces @oxy: annotations with their
	// WGSL output. include annotations become the registered struct source, group annotations
	// become @group/@binding declarations, provider and instance annotations produce no output.
	// Collected state is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown struct
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected during the most
	// recent call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation

	// InstanceStructs returns the struct names marked with @oxy:instance during the most recent call to Process.
	InstanceStructs() map[string]bool
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with the address space mappings pre-populated
// and an empty struct registry.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: make(map[AnnotationArg]StructSource),
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
		instanced: make(map[string]bool),
	}
}

func (p *preProcessor) RegisterStruct(key AnnotationArg, src StructSource) {
	p.structRegistry[key] = src
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	p.instanced = make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct type %q in @oxy:group annotation", i+1, a.Args[2])
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		case annotationTypeInstance:
			p.instanced[string(a.Args[0])] = true
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) InstanceStructs() map[string]bool {
	return p.instanced
}
