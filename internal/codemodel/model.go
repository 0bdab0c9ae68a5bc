// Package codemodel holds the service description consumed by the view
// renderer: an autorest-style code model decoded from YAML or JSON, or
// adapted from an OpenAPI document.
package codemodel

// Schema type names used by the code model.
const (
    TypeString       = "string"
    TypeBoolean      = "boolean"
    TypeInteger      = "integer"
    TypeNumber       = "number"
    TypeObject       = "object"
    TypeArray        = "array"
    TypeDictionary   = "dictionary"
    TypeChoice       = "choice"
    TypeSealedChoice = "sealed-choice"
    TypeBinary       = "binary"
    TypeDateTime     = "date-time"
    TypeDate         = "date"
    TypeUUID         = "uuid"
    TypeAny          = "any"
)

// Operation extensions recognised by the renderer.
const (
    ExtPageable = "x-ms-pageable"
    ExtLRO      = "x-ms-long-running-operation"
)

// BodyLocation is the protocol.http.in value of a body parameter.
const BodyLocation = "body"

type CodeModel struct {
    Info             Info              `yaml:"info" json:"info"`
    GlobalParameters []*Parameter      `yaml:"globalParameters" json:"globalParameters"`
    OperationGroups  []*OperationGroup `yaml:"operationGroups" json:"operationGroups"`
}

type Info struct {
    Title       string `yaml:"title" json:"title"`
    Version     string `yaml:"version,omitempty" json:"version,omitempty"`
    Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Languages carries per-language metadata; only the default entry is used.
type Languages struct {
    Default Language `yaml:"default" json:"default"`
}

type Language struct {
    Name           string `yaml:"name" json:"name"`
    Summary        string `yaml:"summary,omitempty" json:"summary,omitempty"`
    Description    string `yaml:"description,omitempty" json:"description,omitempty"`
    SerializedName string `yaml:"serializedName,omitempty" json:"serializedName,omitempty"`
}

type OperationGroup struct {
    Language   Languages    `yaml:"language" json:"language"`
    Operations []*Operation `yaml:"operations" json:"operations"`
}

// Name is the group's display name; "" denotes the default group.
func (g *OperationGroup) Name() string { return g.Language.Default.Name }

type Operation struct {
    Language            Languages      `yaml:"language" json:"language"`
    Extensions          map[string]any `yaml:"extensions,omitempty" json:"extensions,omitempty"`
    SignatureParameters []*Parameter   `yaml:"signatureParameters" json:"signatureParameters"`
    Parameters          []*Parameter   `yaml:"parameters,omitempty" json:"parameters,omitempty"`
    Requests            []*Request     `yaml:"requests" json:"requests"`
    Responses           []*Response    `yaml:"responses" json:"responses"`
    Exceptions          []*Response    `yaml:"exceptions,omitempty" json:"exceptions,omitempty"`
}

func (o *Operation) Name() string { return o.Language.Default.Name }

// Summary returns the operation summary, falling back to its description.
func (o *Operation) Summary() string {
    if o.Language.Default.Summary != "" {
        return o.Language.Default.Summary
    }
    return o.Language.Default.Description
}

func (o *Operation) Pageable() bool { return truthy(o.Extensions[ExtPageable]) }
func (o *Operation) LRO() bool      { return truthy(o.Extensions[ExtLRO]) }

// BodyParameter returns the first request parameter sent in the HTTP body.
func (o *Operation) BodyParameter() *Parameter {
    for _, req := range o.Requests {
        if req == nil {
            continue
        }
        for _, list := range [][]*Parameter{req.Parameters, req.SignatureParameters} {
            for _, p := range list {
                if p != nil && p.In() == BodyLocation {
                    return p
                }
            }
        }
    }
    return nil
}

type Request struct {
    SignatureParameters []*Parameter `yaml:"signatureParameters,omitempty" json:"signatureParameters,omitempty"`
    Parameters          []*Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
    Protocol            Protocols    `yaml:"protocol,omitempty" json:"protocol,omitempty"`
}

type Response struct {
    Schema   *Schema   `yaml:"schema,omitempty" json:"schema,omitempty"`
    Protocol Protocols `yaml:"protocol" json:"protocol"`
}

func (r *Response) StatusCodes() []string {
    if r == nil || r.Protocol.HTTP == nil {
        return nil
    }
    return r.Protocol.HTTP.StatusCodes
}

type Protocols struct {
    HTTP *HTTPProtocol `yaml:"http,omitempty" json:"http,omitempty"`
}

type HTTPProtocol struct {
    In             string   `yaml:"in,omitempty" json:"in,omitempty"`
    Method         string   `yaml:"method,omitempty" json:"method,omitempty"`
    Path           string   `yaml:"path,omitempty" json:"path,omitempty"`
    StatusCodes    []string `yaml:"statusCodes,omitempty" json:"statusCodes,omitempty"`
    KnownMediaType string   `yaml:"knownMediaType,omitempty" json:"knownMediaType,omitempty"`
}

type Parameter struct {
    Language Languages `yaml:"language" json:"language"`
    Schema   *Schema   `yaml:"schema" json:"schema"`
    Required bool      `yaml:"required,omitempty" json:"required,omitempty"`
    Protocol Protocols `yaml:"protocol,omitempty" json:"protocol,omitempty"`
}

func (p *Parameter) Name() string { return p.Language.Default.Name }

// In returns the HTTP location of the parameter, or "" when unknown.
func (p *Parameter) In() string {
    if p.Protocol.HTTP == nil {
        return ""
    }
    return p.Protocol.HTTP.In
}

type Schema struct {
    Type         string      `yaml:"type" json:"type"`
    Language     Languages   `yaml:"language,omitempty" json:"language,omitempty"`
    Precision    int         `yaml:"precision,omitempty" json:"precision,omitempty"`
    ElementType  *Schema     `yaml:"elementType,omitempty" json:"elementType,omitempty"`
    ChoiceType   *Schema     `yaml:"choiceType,omitempty" json:"choiceType,omitempty"`
    Choices      []*Choice   `yaml:"choices,omitempty" json:"choices,omitempty"`
    Properties   []*Property `yaml:"properties,omitempty" json:"properties,omitempty"`
    DefaultValue any         `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
}

func (s *Schema) Name() string { return s.Language.Default.Name }

type Choice struct {
    Value    any       `yaml:"value" json:"value"`
    Language Languages `yaml:"language,omitempty" json:"language,omitempty"`
}

type Property struct {
    SerializedName string    `yaml:"serializedName" json:"serializedName"`
    Language       Languages `yaml:"language,omitempty" json:"language,omitempty"`
    Schema         *Schema   `yaml:"schema" json:"schema"`
    Required       bool      `yaml:"required,omitempty" json:"required,omitempty"`
    ReadOnly       bool      `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
}

// Name returns the wire name, falling back to the language name.
func (p *Property) Name() string {
    if p.SerializedName != "" {
        return p.SerializedName
    }
    return p.Language.Default.Name
}

// truthy follows the extension's presence semantics: absent, null, false,
// empty strings and empty objects are off.
func truthy(v any) bool {
    switch t := v.(type) {
    case nil:
        return false
    case bool:
        return t
    case string:
        return t != ""
    case map[string]any:
        return len(t) > 0
    default:
        return true
    }
}
