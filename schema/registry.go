// Package schema holds the known Open Badges specification versions and
// classifies badge objects against them.
//
// Each version is a Descriptor compiled once from embedded JSON Schema
// (draft-04) and JSON-LD context files. The process-wide registry is built
// lazily on first use and is read-only afterwards, so it can be shared
// between goroutines without locking.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/openbadges/badgecheck/badge"
)

// Descriptor is one compiled specification version.
type Descriptor struct {
	Key            string
	SchemaURL      string
	DefaultType    badge.Role
	ContextURL     string
	ContextAliases []string

	// Context is the parsed JSON-LD context document.
	Context map[string]any

	Family        Family
	CaseSensitive bool

	schemas map[badge.Role]*jsonschema.Schema
}

// HasSchema reports whether the descriptor defines a schema for role.
func (d *Descriptor) HasSchema(role badge.Role) bool {
	_, ok := d.schemas[role]
	return ok
}

// Validate checks obj against the descriptor's schema for role. It returns
// a *ValidationError listing every violated constraint, or nil.
func (d *Descriptor) Validate(obj any, role badge.Role) error {
	sch, ok := d.schemas[role]
	if !ok {
		return &ValidationError{
			SchemaURL: d.SchemaURL,
			Violations: []Violation{{
				Field:      "/",
				Constraint: "role",
				Message:    fmt.Sprintf("version %s does not define a %s", d.Key, role),
			}},
		}
	}

	if err := sch.Validate(obj); err != nil {
		return newValidationError(d.SchemaURL, err)
	}
	return nil
}

// Matches reports whether obj validates against the schema for role.
func (d *Descriptor) Matches(obj any, role badge.Role) bool {
	return d.Validate(obj, role) == nil
}

// HasContext reports whether iri is the descriptor's context or an alias.
func (d *Descriptor) HasContext(iri string) bool {
	iri = strings.TrimSpace(iri)
	if iri == d.ContextURL {
		return true
	}
	for _, alias := range d.ContextAliases {
		if iri == alias {
			return true
		}
	}
	return false
}

// Registry is an ordered, immutable set of descriptors.
type Registry struct {
	ordered []*Descriptor
	byKey   map[string]*Descriptor
}

// NewRegistry compiles defs, reading schema files from definitions/ and
// context files from contexts/ inside fsys.
func NewRegistry(fsys fs.FS, defs []Definition) (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft4)
	compiler.AssertFormat()

	r := &Registry{byKey: make(map[string]*Descriptor, len(defs))}
	contexts := make(map[string]map[string]any)

	for _, def := range defs {
		if _, dup := r.byKey[def.Key]; dup {
			return nil, fmt.Errorf("duplicate schema definition %q", def.Key)
		}

		d := &Descriptor{
			Key:            def.Key,
			SchemaURL:      def.SchemaURL,
			DefaultType:    def.DefaultType,
			ContextURL:     def.Context,
			ContextAliases: def.ContextAliases,
			Family:         def.Family,
			CaseSensitive:  def.CaseSensitive,
			schemas:        make(map[badge.Role]*jsonschema.Schema),
		}

		files := map[badge.Role]string{badge.RoleAssertion: def.SchemaFile}
		for role, file := range def.Components {
			files[role] = file
		}

		for role, file := range files {
			url := def.SchemaURL
			if role != badge.RoleAssertion {
				url = def.SchemaURL + "/" + string(role)
			}
			sch, err := compile(compiler, fsys, url, path.Join("definitions", file))
			if err != nil {
				return nil, fmt.Errorf("schema %s (%s): %w", def.Key, role, err)
			}
			d.schemas[role] = sch
		}

		if def.ContextFile != "" {
			ctx, ok := contexts[def.ContextFile]
			if !ok {
				var err error
				ctx, err = loadContext(fsys, path.Join("contexts", def.ContextFile))
				if err != nil {
					return nil, fmt.Errorf("context %s: %w", def.Key, err)
				}
				contexts[def.ContextFile] = ctx
			}
			d.Context = ctx
		}

		r.ordered = append(r.ordered, d)
		r.byKey[d.Key] = d
	}

	return r, nil
}

func compile(c *jsonschema.Compiler, fsys fs.FS, url, file string) (*jsonschema.Schema, error) {
	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func loadContext(fsys fs.FS, file string) (map[string]any, error) {
	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, errors.New("context document is not an object")
	}
	return m, nil
}

// Lookup returns the descriptor registered under key.
func (r *Registry) Lookup(key string) (*Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// ByContext returns the first descriptor declaring iri as its context.
func (r *Registry) ByContext(iri string) (*Descriptor, bool) {
	for _, d := range r.ordered {
		if d.HasContext(iri) {
			return d, true
		}
	}
	return nil, false
}

// Descriptors returns the descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	return append([]*Descriptor(nil), r.ordered...)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the process-wide registry built from Definitions.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = NewRegistry(staticFiles, Definitions)
	})
	return defaultRegistry, defaultErr
}

// MustDefault is like Default but panics if the embedded definitions fail
// to compile.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Violation is one violated schema constraint.
type Violation struct {
	// Field is the JSON pointer of the offending value.
	Field string `json:"field"`
	// Constraint is the schema keyword path that failed, e.g. "required".
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// ValidationError is returned when an object does not satisfy a schema.
type ValidationError struct {
	SchemaURL  string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("does not validate against %s: %s", e.SchemaURL, strings.Join(parts, "; "))
}

var printer = message.NewPrinter(language.English)

func newValidationError(schemaURL string, err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &ValidationError{
			SchemaURL:  schemaURL,
			Violations: []Violation{{Field: "/", Constraint: "schema", Message: err.Error()}},
		}
	}

	out := &ValidationError{SchemaURL: schemaURL}
	collectViolations(verr, &out.Violations)
	return out
}

func collectViolations(verr *jsonschema.ValidationError, out *[]Violation) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			collectViolations(cause, out)
		}
		return
	}

	*out = append(*out, Violation{
		Field:      "/" + strings.Join(verr.InstanceLocation, "/"),
		Constraint: strings.Join(verr.ErrorKind.KeywordPath(), "/"),
		Message:    verr.ErrorKind.LocalizedString(printer),
	})
}
