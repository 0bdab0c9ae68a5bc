package codemodel

import (
    "fmt"

    "gopkg.in/yaml.v3"
)

// decoder builds a CodeModel from a parsed node tree. Schemas are memoized by
// node identity, so anchors and aliases that refer back to an enclosing
// schema become pointer cycles instead of a decode failure.
type decoder struct {
    schemas map[*yaml.Node]*Schema
}

func newDecoder() *decoder {
    return &decoder{schemas: make(map[*yaml.Node]*Schema)}
}

func (d *decoder) model(doc *yaml.Node) (*CodeModel, error) {
    root := deref(doc)
    m := &CodeModel{}
    if err := field(root, "info", &m.Info); err != nil {
        return nil, err
    }
    var err error
    if m.GlobalParameters, err = d.parameters(lookup(root, "globalParameters")); err != nil {
        return nil, err
    }
    for _, gn := range items(lookup(root, "operationGroups")) {
        g := &OperationGroup{}
        if err := field(gn, "language", &g.Language); err != nil {
            return nil, err
        }
        for _, on := range items(lookup(gn, "operations")) {
            op, err := d.operation(on)
            if err != nil {
                return nil, err
            }
            g.Operations = append(g.Operations, op)
        }
        m.OperationGroups = append(m.OperationGroups, g)
    }
    return m, nil
}

func (d *decoder) operation(n *yaml.Node) (*Operation, error) {
    op := &Operation{}
    if err := field(n, "language", &op.Language); err != nil {
        return nil, err
    }
    if err := field(n, "extensions", &op.Extensions); err != nil {
        return nil, err
    }
    var err error
    if op.SignatureParameters, err = d.parameters(lookup(n, "signatureParameters")); err != nil {
        return nil, err
    }
    if op.Parameters, err = d.parameters(lookup(n, "parameters")); err != nil {
        return nil, err
    }
    for _, rn := range items(lookup(n, "requests")) {
        req := &Request{}
        if err := field(rn, "protocol", &req.Protocol); err != nil {
            return nil, err
        }
        if req.SignatureParameters, err = d.parameters(lookup(rn, "signatureParameters")); err != nil {
            return nil, err
        }
        if req.Parameters, err = d.parameters(lookup(rn, "parameters")); err != nil {
            return nil, err
        }
        op.Requests = append(op.Requests, req)
    }
    if op.Responses, err = d.responses(lookup(n, "responses")); err != nil {
        return nil, err
    }
    if op.Exceptions, err = d.responses(lookup(n, "exceptions")); err != nil {
        return nil, err
    }
    return op, nil
}

func (d *decoder) parameters(seq *yaml.Node) ([]*Parameter, error) {
    var out []*Parameter
    for _, pn := range items(seq) {
        p := &Parameter{}
        if err := field(pn, "language", &p.Language); err != nil {
            return nil, err
        }
        if err := field(pn, "required", &p.Required); err != nil {
            return nil, err
        }
        if err := field(pn, "protocol", &p.Protocol); err != nil {
            return nil, err
        }
        s, err := d.schema(lookup(pn, "schema"))
        if err != nil {
            return nil, err
        }
        p.Schema = s
        out = append(out, p)
    }
    return out, nil
}

func (d *decoder) responses(seq *yaml.Node) ([]*Response, error) {
    var out []*Response
    for _, rn := range items(seq) {
        r := &Response{}
        if err := field(rn, "protocol", &r.Protocol); err != nil {
            return nil, err
        }
        s, err := d.schema(lookup(rn, "schema"))
        if err != nil {
            return nil, err
        }
        r.Schema = s
        out = append(out, r)
    }
    return out, nil
}

// schemaFields and propertyFields hold the keys of a schema or property that
// never nest another schema; decoding skips the keys they leave out.
type schemaFields struct {
    Type         string    `yaml:"type"`
    Language     Languages `yaml:"language"`
    Precision    int       `yaml:"precision"`
    Choices      []*Choice `yaml:"choices"`
    DefaultValue any       `yaml:"defaultValue"`
}

type propertyFields struct {
    SerializedName string    `yaml:"serializedName"`
    Language       Languages `yaml:"language"`
    Required       bool      `yaml:"required"`
    ReadOnly       bool      `yaml:"readOnly"`
}

func (d *decoder) schema(n *yaml.Node) (*Schema, error) {
    if n == nil {
        return nil, nil
    }
    if s, ok := d.schemas[n]; ok {
        return s, nil
    }
    s := &Schema{}
    d.schemas[n] = s

    var f schemaFields
    if err := n.Decode(&f); err != nil {
        return nil, fmt.Errorf("line %d: %w", n.Line, err)
    }
    s.Type = f.Type
    s.Language = f.Language
    s.Precision = f.Precision
    s.Choices = f.Choices
    s.DefaultValue = f.DefaultValue

    var err error
    if s.ElementType, err = d.schema(lookup(n, "elementType")); err != nil {
        return nil, err
    }
    if s.ChoiceType, err = d.schema(lookup(n, "choiceType")); err != nil {
        return nil, err
    }
    for _, pn := range items(lookup(n, "properties")) {
        var pf propertyFields
        if err := pn.Decode(&pf); err != nil {
            return nil, fmt.Errorf("line %d: %w", pn.Line, err)
        }
        ps, err := d.schema(lookup(pn, "schema"))
        if err != nil {
            return nil, err
        }
        s.Properties = append(s.Properties, &Property{
            SerializedName: pf.SerializedName,
            Language:       pf.Language,
            Schema:         ps,
            Required:       pf.Required,
            ReadOnly:       pf.ReadOnly,
        })
    }
    return s, nil
}

// field decodes the value under key into out; absent and null keys leave
// out untouched.
func field(n *yaml.Node, key string, out any) error {
    v := lookup(n, key)
    if v == nil {
        return nil
    }
    if err := v.Decode(out); err != nil {
        return fmt.Errorf("line %d: %s: %w", v.Line, key, err)
    }
    return nil
}

// items returns the dereferenced entries of a sequence node.
func items(seq *yaml.Node) []*yaml.Node {
    if seq == nil || seq.Kind != yaml.SequenceNode {
        return nil
    }
    out := make([]*yaml.Node, 0, len(seq.Content))
    for _, c := range seq.Content {
        if n := deref(c); n != nil && !(n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
            out = append(out, n)
        }
    }
    return out
}
