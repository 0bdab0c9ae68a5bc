package codemodel

import (
    "fmt"
    "strconv"

    "gopkg.in/yaml.v3"
)

// ModelErrorCode classifies structural problems in a decoded code model.
type ModelErrorCode string

const (
    MissingField ModelErrorCode = "MissingField"
    InvalidField ModelErrorCode = "InvalidField"
)

// ModelError identifies the first required field that is absent or has the
// wrong shape. Path uses dotted keys with [i] indexes, e.g.
// operationGroups[0].operations[2].language.default.name.
type ModelError struct {
    Code ModelErrorCode
    Path string
    Line int
}

func (e *ModelError) Error() string {
    msg := "missing required field"
    if e.Code == InvalidField {
        msg = "invalid field"
    }
    if e.Line > 0 {
        return fmt.Sprintf("codemodel: %s %s (line %d)", msg, e.Path, e.Line)
    }
    return fmt.Sprintf("codemodel: %s %s", msg, e.Path)
}

// Parse decodes a YAML or JSON code model and checks that every key the
// renderer dereferences is present. Either a complete model or an error is
// returned. Self-referencing schema anchors decode to cyclic schemas.
func Parse(data []byte) (*CodeModel, error) {
    var doc yaml.Node
    if err := yaml.Unmarshal(data, &doc); err != nil {
        return nil, fmt.Errorf("decode code model: %w", err)
    }
    if err := Validate(&doc); err != nil {
        return nil, err
    }
    m, err := newDecoder().model(&doc)
    if err != nil {
        return nil, fmt.Errorf("decode code model: %w", err)
    }
    return m, nil
}

// Validate walks a raw code-model document and reports the first missing
// required key. Null values count as missing.
func Validate(doc *yaml.Node) error {
    root := deref(doc)
    if root == nil || root.Kind != yaml.MappingNode {
        return &ModelError{Code: InvalidField, Path: "$", Line: lineOf(doc)}
    }
    if _, err := need(root, "", "info", "title"); err != nil {
        return err
    }

    globals, err := needSeq(root, "", "globalParameters")
    if err != nil {
        return err
    }
    if len(globals) == 0 {
        return &ModelError{Code: MissingField, Path: "globalParameters[0]", Line: root.Line}
    }
    if err := checkParameter(globals[0], "globalParameters[0]"); err != nil {
        return err
    }

    groups, err := needSeq(root, "", "operationGroups")
    if err != nil {
        return err
    }
    for i, g := range groups {
        gpath := index("operationGroups", i)
        if _, err := need(g, gpath, "language", "default", "name"); err != nil {
            return err
        }
        ops, err := needSeq(g, gpath, "operations")
        if err != nil {
            return err
        }
        for j, op := range ops {
            if err := checkOperation(op, index(gpath+".operations", j)); err != nil {
                return err
            }
        }
    }
    return nil
}

func checkOperation(op *yaml.Node, path string) error {
    if _, err := need(op, path, "language", "default", "name"); err != nil {
        return err
    }
    if lookup(op, "language", "default", "summary") == nil {
        if _, err := need(op, path, "language", "default", "description"); err != nil {
            return err
        }
    }

    params, err := needSeq(op, path, "signatureParameters")
    if err != nil {
        return err
    }
    for i, p := range params {
        if err := checkParameter(p, index(path+".signatureParameters", i)); err != nil {
            return err
        }
    }

    requests, err := needSeq(op, path, "requests")
    if err != nil {
        return err
    }
    for i, r := range requests {
        rpath := index(path+".requests", i)
        sig := lookup(r, "signatureParameters")
        if sig == nil {
            continue
        }
        if sig.Kind != yaml.SequenceNode {
            return &ModelError{Code: InvalidField, Path: rpath + ".signatureParameters", Line: sig.Line}
        }
        for k, p := range sig.Content {
            if err := checkParameter(p, index(rpath+".signatureParameters", k)); err != nil {
                return err
            }
        }
    }

    responses, err := needSeq(op, path, "responses")
    if err != nil {
        return err
    }
    if err := checkResponses(responses, path+".responses"); err != nil {
        return err
    }
    if exc := lookup(op, "exceptions"); exc != nil {
        if exc.Kind != yaml.SequenceNode {
            return &ModelError{Code: InvalidField, Path: path + ".exceptions", Line: exc.Line}
        }
        if err := checkResponses(exc.Content, path+".exceptions"); err != nil {
            return err
        }
    }
    return nil
}

func checkParameter(p *yaml.Node, path string) error {
    if _, err := need(p, path, "language", "default", "name"); err != nil {
        return err
    }
    _, err := need(p, path, "schema", "type")
    return err
}

func checkResponses(list []*yaml.Node, path string) error {
    for i, r := range list {
        codes, err := need(r, index(path, i), "protocol", "http", "statusCodes")
        if err != nil {
            return err
        }
        if codes.Kind != yaml.SequenceNode {
            return &ModelError{Code: InvalidField, Path: index(path, i) + ".protocol.http.statusCodes", Line: codes.Line}
        }
    }
    return nil
}

// need follows keys from n and fails with the path of the first absent key.
func need(n *yaml.Node, path string, keys ...string) (*yaml.Node, error) {
    cur := deref(n)
    for _, k := range keys {
        path = join(path, k)
        next := lookup(cur, k)
        if next == nil {
            return nil, &ModelError{Code: MissingField, Path: path, Line: lineOf(cur)}
        }
        cur = next
    }
    return cur, nil
}

func needSeq(n *yaml.Node, path string, key string) ([]*yaml.Node, error) {
    seq, err := need(n, path, key)
    if err != nil {
        return nil, err
    }
    if seq.Kind != yaml.SequenceNode {
        return nil, &ModelError{Code: InvalidField, Path: join(path, key), Line: seq.Line}
    }
    return seq.Content, nil
}

// lookup follows mapping keys through aliases. Missing keys and explicit
// nulls both yield nil.
func lookup(n *yaml.Node, keys ...string) *yaml.Node {
    cur := deref(n)
    for _, k := range keys {
        if cur == nil || cur.Kind != yaml.MappingNode {
            return nil
        }
        var next *yaml.Node
        for i := 0; i+1 < len(cur.Content); i += 2 {
            if cur.Content[i].Value == k {
                next = deref(cur.Content[i+1])
                break
            }
        }
        if next == nil || (next.Kind == yaml.ScalarNode && next.Tag == "!!null") {
            return nil
        }
        cur = next
    }
    return cur
}

func deref(n *yaml.Node) *yaml.Node {
    for n != nil {
        switch {
        case n.Kind == yaml.AliasNode:
            n = n.Alias
        case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
            n = n.Content[0]
        case n.Kind == yaml.DocumentNode:
            return nil
        default:
            return n
        }
    }
    return nil
}

func lineOf(n *yaml.Node) int {
    if n == nil {
        return 0
    }
    return n.Line
}

func join(path, key string) string {
    if path == "" {
        return key
    }
    return path + "." + key
}

func index(path string, i int) string {
    return path + "[" + strconv.Itoa(i) + "]"
}
