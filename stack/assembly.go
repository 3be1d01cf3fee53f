package stack

import (
	"fmt"

	eksblueprint "github.com/nordforge/eksblueprint"
)

// Assembly is an ordered collection of stacks that deploy together as one
// environment. Stack order is the declaration order.
type Assembly struct {
	name   string
	stacks []*Stack
}

// NewAssembly creates an empty assembly.
func NewAssembly(name string) *Assembly {
	return &Assembly{name: name}
}

// Name returns the assembly name.
func (a *Assembly) Name() string { return a.name }

// Add appends a stack to the assembly.
func (a *Assembly) Add(s *Stack) {
	a.stacks = append(a.stacks, s)
}

// Stacks returns the stacks in declaration order.
func (a *Assembly) Stacks() []*Stack {
	return a.stacks
}

// Stack returns the stack with the given name, or nil.
func (a *Assembly) Stack(name string) *Stack {
	for _, s := range a.stacks {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// BuiltStack pairs a stack with its built template.
type BuiltStack struct {
	Stack    *Stack
	Template *eksblueprint.Template
}

// Build builds every stack in declaration order.
func (a *Assembly) Build() ([]BuiltStack, error) {
	seen := make(map[string]bool)
	built := make([]BuiltStack, 0, len(a.stacks))
	for _, s := range a.stacks {
		if seen[s.Name()] {
			return nil, fmt.Errorf("duplicate stack name: %s", s.Name())
		}
		seen[s.Name()] = true

		t, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("building stack %s: %w", s.Name(), err)
		}
		built = append(built, BuiltStack{Stack: s, Template: t})
	}
	return built, nil
}
