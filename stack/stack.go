// Package stack provides deployable-unit assembly: named resources with an
// explicit dependency graph, resolved once into a CloudFormation template.
package stack

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/internal/serialize"
)

type entry struct {
	resource eksblueprint.Resource
	deps     map[string]bool
}

// Stack collects resources and their declared dependency edges. All
// registration problems (duplicate names, unknown dependencies, cycles) are
// reported by Build, so the graph is resolved exactly once before emission.
type Stack struct {
	name        string
	description string
	resources   map[string]*entry
	parameters  map[string]eksblueprint.Parameter
	outputs     map[string]eksblueprint.Output
	errs        []error
}

// New creates an empty stack.
func New(name string) *Stack {
	return &Stack{
		name:       name,
		resources:  make(map[string]*entry),
		parameters: make(map[string]eksblueprint.Parameter),
		outputs:    make(map[string]eksblueprint.Output),
	}
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// SetDescription sets the template description.
func (s *Stack) SetDescription(d string) { s.description = d }

// Add registers a resource under a logical name with its dependency edges.
func (s *Stack) Add(name string, r eksblueprint.Resource, deps ...string) {
	if _, exists := s.resources[name]; exists {
		s.errs = append(s.errs, fmt.Errorf("duplicate resource name: %s", name))
		return
	}
	e := &entry{resource: r, deps: make(map[string]bool)}
	for _, d := range deps {
		e.deps[d] = true
	}
	s.resources[name] = e
}

// AddDependency declares an ordering edge from one registered resource to
// another, for ordering not implied at registration time.
func (s *Stack) AddDependency(from, to string) {
	e, ok := s.resources[from]
	if !ok {
		s.errs = append(s.errs, fmt.Errorf("dependency from unknown resource: %s", from))
		return
	}
	e.deps[to] = true
}

// SetParameter adds a template parameter.
func (s *Stack) SetParameter(name string, p eksblueprint.Parameter) {
	s.parameters[name] = p
}

// SetOutput adds a template output.
func (s *Stack) SetOutput(name string, o eksblueprint.Output) {
	s.outputs[name] = o
}

// Has reports whether a resource is registered under the given name.
func (s *Stack) Has(name string) bool {
	_, ok := s.resources[name]
	return ok
}

// Resource returns the registered resource, or nil.
func (s *Stack) Resource(name string) eksblueprint.Resource {
	if e, ok := s.resources[name]; ok {
		return e.resource
	}
	return nil
}

// Resources returns all registered resource names, sorted.
func (s *Stack) Resources() []string {
	names := make([]string, 0, len(s.resources))
	for name := range s.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dependencies returns the declared dependency edges of a resource, sorted.
func (s *Stack) Dependencies(name string) []string {
	e, ok := s.resources[name]
	if !ok {
		return nil
	}
	deps := make([]string, 0, len(e.deps))
	for d := range e.deps {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps
}

// Build resolves the dependency graph and emits the CloudFormation template.
// Identical registrations produce identical templates.
func (s *Stack) Build() (*eksblueprint.Template, error) {
	if len(s.errs) > 0 {
		return nil, errors.Join(s.errs...)
	}

	for name, e := range s.resources {
		for dep := range e.deps {
			if _, ok := s.resources[dep]; !ok {
				return nil, fmt.Errorf("%s depends on unknown resource %s", name, dep)
			}
		}
	}

	order, err := s.topologicalSort()
	if err != nil {
		return nil, err
	}

	template := &eksblueprint.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              s.description,
		Resources:                make(map[string]eksblueprint.ResourceDef),
	}

	for _, name := range order {
		e := s.resources[name]
		props, err := serialize.Properties(e.resource)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		template.Resources[name] = eksblueprint.ResourceDef{
			Type:       e.resource.ResourceType(),
			Properties: props,
			DependsOn:  s.Dependencies(name),
		}
	}

	if len(s.parameters) > 0 {
		template.Parameters = make(map[string]eksblueprint.Parameter, len(s.parameters))
		for name, p := range s.parameters {
			template.Parameters[name] = p
		}
	}
	if len(s.outputs) > 0 {
		template.Outputs = make(map[string]eksblueprint.Output, len(s.outputs))
		for name, o := range s.outputs {
			template.Outputs[name] = o
		}
	}

	return template, nil
}

// topologicalSort returns resources in dependency order.
func (s *Stack) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range s.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, e := range s.resources {
		for dep := range e.deps {
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm with a sorted queue for deterministic order.
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(s.resources) {
		return nil, s.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (s *Stack) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range s.Dependencies(node) {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for _, name := range s.Resources() {
		if !visited[name] {
			if findCycle(name) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected:"
		for i, name := range cycle {
			msg += "\n  " + name
			if i < len(cycle)-1 {
				msg += " →"
			}
		}
		return errors.New(msg)
	}

	return errors.New("circular dependency detected")
}

// ToJSON serializes the template to indented JSON.
func ToJSON(t *eksblueprint.Template) ([]byte, error) {
	return t.MarshalIndentJSON()
}

// ToYAML serializes the template to YAML.
func ToYAML(t *eksblueprint.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
