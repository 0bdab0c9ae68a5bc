package view

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/stoewer/go-strcase"

	"github.com/mark3labs/apiview/internal/codemodel"
	"github.com/mark3labs/apiview/internal/shape"
	"github.com/mark3labs/apiview/internal/typeresolve"
)

const (
	DefaultCredentialName = "Credential"
	DefaultCredentialType = "AzureCredential"
)

// Options tune how a code model becomes a ClientView.
type Options struct {
	Flavor Flavor
	// PackageName overrides info.title.
	PackageName    string
	EndpointName   string
	CredentialName string
	CredentialType string
	// IncludeGroups keeps only the named groups when non-empty. Use
	// DefaultGroupName for the unnamed group.
	IncludeGroups []string
	ExcludeGroups []string
	// BodyTemplates replaces request or response blocks with legacy JSON
	// templates, keyed "<group>.<operation>" by display name.
	BodyTemplates map[string]BodyTemplate
	Logger        *slog.Logger
}

// BodyTemplate holds the legacy template form of an operation's bodies:
// type strings such as "int32 (optional)", one-item lists and objects, with
// {"str": T} for maps. Nil sides keep the schema-derived block.
type BodyTemplate struct {
	Request  any `yaml:"request" json:"request"`
	Response any `yaml:"response" json:"response"`
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FromCodeModel builds the client view of m. The model is expected to have
// passed codemodel.Validate; missing pieces it still finds are errors.
func FromCodeModel(m *codemodel.CodeModel, opts Options) (*ClientView, error) {
	if m == nil {
		return nil, fmt.Errorf("nil code model")
	}
	log := opts.logger()
	flavor := opts.Flavor.orDefault()

	if len(m.GlobalParameters) == 0 || m.GlobalParameters[0] == nil || m.GlobalParameters[0].Schema == nil {
		return nil, &codemodel.ModelError{Code: codemodel.MissingField, Path: "globalParameters[0].schema.type"}
	}
	endpoint := m.GlobalParameters[0]

	cfg := ClientConfig{
		PackageName:    firstNonEmpty(opts.PackageName, m.Info.Title),
		EndpointName:   firstNonEmpty(opts.EndpointName, endpoint.Name()),
		EndpointType:   endpoint.Schema.Type,
		CredentialName: firstNonEmpty(opts.CredentialName, DefaultCredentialName),
		CredentialType: firstNonEmpty(opts.CredentialType, DefaultCredentialType),
		Version:        m.Info.Version,
		Flavor:         flavor,
	}
	cfg.Namespace = flavor.NamespacePrefix + cfg.PackageName

	include := toSet(opts.IncludeGroups)
	exclude := toSet(opts.ExcludeGroups)

	used := make(map[string]bool, len(opts.BodyTemplates))
	var groups []*OperationGroupView
	for gi, g := range m.OperationGroups {
		if g == nil {
			continue
		}
		gv := &OperationGroupView{Name: g.Name(), Namespace: cfg.Namespace}
		if (len(include) > 0 && !include[gv.DisplayName()]) || exclude[gv.DisplayName()] {
			log.Debug("skipping operation group", "group", gv.DisplayName())
			continue
		}
		for oi, op := range g.Operations {
			if op == nil {
				continue
			}
			ov, err := operationView(op, cfg, log)
			if err != nil {
				return nil, fmt.Errorf("operationGroups[%d].operations[%d]: %w", gi, oi, err)
			}
			key := gv.DisplayName() + "." + ov.Name
			if tpl, ok := opts.BodyTemplates[key]; ok {
				if err := applyTemplate(ov, tpl); err != nil {
					return nil, fmt.Errorf("body template %s: %w", key, err)
				}
				used[key] = true
			}
			gv.Operations = append(gv.Operations, ov)
		}
		groups = append(groups, gv)
	}
	unused := make([]string, 0)
	for key := range opts.BodyTemplates {
		if !used[key] {
			unused = append(unused, key)
		}
	}
	sort.Strings(unused)
	for _, key := range unused {
		log.Warn("body template matches no rendered operation", "key", key)
	}
	log.Info("built client view", "package", cfg.PackageName, "groups", len(groups))
	return NewClientView(cfg, groups), nil
}

func operationView(op *codemodel.Operation, cfg ClientConfig, log *slog.Logger) (*OperationView, error) {
	if op.Name() == "" {
		return nil, &codemodel.ModelError{Code: codemodel.MissingField, Path: "language.default.name"}
	}
	ov := &OperationView{
		Name:        op.Name(),
		Description: op.Summary(),
		Paging:      op.Pageable(),
		LRO:         op.LRO(),
		Namespace:   cfg.Namespace,
		Flavor:      cfg.Flavor,
	}

	for _, r := range op.Responses {
		if r != nil && r.Schema != nil {
			ov.ReturnType, _ = typeresolve.Resolve(r.Schema, ov.Paging)
			ov.Response = bodyShape(r.Schema)
			break
		}
	}

	params := append([]*codemodel.Parameter(nil), op.SignatureParameters...)
	for _, req := range op.Requests {
		if req != nil {
			params = append(params, req.SignatureParameters...)
		}
	}
	dropped := 0
	for _, p := range params {
		if p == nil {
			continue
		}
		pv := parameterView(p, cfg.Namespace)
		if pv.Type == "" {
			dropped++
		}
		if p.Schema != nil && typeresolve.UnsupportedPrecision(p.Schema) {
			log.Warn("unsupported numeric precision", "operation", ov.Name, "parameter", pv.Name, "precision", p.Schema.Precision)
		}
		ov.Parameters = append(ov.Parameters, pv)
	}
	if dropped > 0 {
		log.Debug("dropping untyped parameters", "operation", ov.Name, "count", dropped)
	}

	if body := op.BodyParameter(); body != nil {
		ov.Request = bodyShape(body.Schema)
	}

	seen := make(map[string]bool)
	for _, list := range [][]*codemodel.Response{op.Responses, op.Exceptions} {
		for _, r := range list {
			if r == nil {
				continue
			}
			for _, code := range r.StatusCodes() {
				if !seen[code] {
					seen[code] = true
					ov.StatusCodes = append(ov.StatusCodes, code)
				}
			}
		}
	}
	return ov, nil
}

func applyTemplate(ov *OperationView, tpl BodyTemplate) error {
	if tpl.Request != nil {
		sh, err := shape.FromTemplate(templateName(ov.Request, ov.Name, "Request"), tpl.Request)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		ov.Request = sh
	}
	if tpl.Response != nil {
		sh, err := shape.FromTemplate(templateName(ov.Response, ov.Name, "Response"), tpl.Response)
		if err != nil {
			return fmt.Errorf("response: %w", err)
		}
		ov.Response = sh
	}
	return nil
}

// templateName keeps the model name of the block being replaced.
func templateName(current *shape.Shape, op, suffix string) string {
	if current != nil && current.Name != "" {
		return current.Name
	}
	return strcase.UpperCamelCase(op) + suffix
}

// bodyShape returns the shape rendered in a Request or Response block. Only
// structured bodies get one: scalars and binary streams are already fully
// described by the signature, and a model without fields has nothing to show.
func bodyShape(s *codemodel.Schema) *shape.Shape {
	if s == nil {
		return nil
	}
	switch s.Type {
	case codemodel.TypeArray, codemodel.TypeDictionary:
	case codemodel.TypeObject:
		if len(s.Properties) == 0 {
			return nil
		}
	default:
		return nil
	}
	return shape.FromSchema(s)
}

// parameterView resolves a parameter's display type. An object parameter
// shows its first property's type; the body parameter also takes that
// property's serialized name.
func parameterView(p *codemodel.Parameter, namespace string) ParameterView {
	pv := ParameterView{Name: p.Name(), Required: p.Required, Namespace: namespace}
	s := p.Schema
	if s == nil {
		return pv
	}
	pv.Default = formatDefault(s.DefaultValue)

	if s.Type == codemodel.TypeObject && len(s.Properties) > 0 && s.Properties[0] != nil {
		first := s.Properties[0]
		pv.Type, _ = typeresolve.Resolve(first.Schema, false)
		if pv.Name == "body" && first.SerializedName != "" {
			pv.Name = first.SerializedName
		}
		return pv
	}
	pv.Type, _ = typeresolve.Resolve(s, false)
	return pv
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
