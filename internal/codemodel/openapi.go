package codemodel

import (
    "context"
    "encoding/json"
    "fmt"
    "regexp"
    "sort"
    "strings"

    "github.com/getkin/kin-openapi/openapi3"
    "github.com/gobuffalo/flect"
    "github.com/stoewer/go-strcase"
)

// EndpointParameter is the name of the global endpoint parameter produced
// for OpenAPI inputs.
const EndpointParameter = "$host"

// FromOpenAPI adapts an OpenAPI v3 document into a code model. Operations are
// grouped by the "Group_Operation" convention of their operationId, then by
// their first tag; untagged operations land in the default group. Paths,
// methods, parameters and status codes are visited in a stable order so the
// result is deterministic.
func FromOpenAPI(ctx context.Context, doc *openapi3.T) (*CodeModel, error) {
    _ = ctx
    if doc == nil {
        return nil, fmt.Errorf("nil document")
    }

    title := "Service"
    version := ""
    description := ""
    if doc.Info != nil {
        if t := identifier(doc.Info.Title); t != "" {
            title = t
        }
        version = safeStr(doc.Info.Version)
        description = safeStr(doc.Info.Description)
    }

    a := &adapter{
        schemas: make(map[*openapi3.Schema]*Schema),
        names:   make(map[*openapi3.Schema]string),
    }
    if doc.Components != nil {
        for name, ref := range doc.Components.Schemas {
            if ref != nil && ref.Value != nil {
                a.names[ref.Value] = name
            }
        }
    }

    m := &CodeModel{
        Info: Info{Title: title, Version: version, Description: description},
        GlobalParameters: []*Parameter{{
            Language: Languages{Default: Language{Name: EndpointParameter, Description: "Service host"}},
            Schema:   &Schema{Type: TypeString},
            Required: true,
        }},
        OperationGroups: []*OperationGroup{},
    }

    groups := make(map[string]*OperationGroup)
    pathKeys := make([]string, 0, len(doc.Paths))
    for p := range doc.Paths {
        pathKeys = append(pathKeys, p)
    }
    sort.Strings(pathKeys)

    for _, p := range pathKeys {
        item := doc.Paths[p]
        if item == nil {
            continue
        }
        ops := []struct {
            method string
            op     *openapi3.Operation
        }{
            {"get", item.Get},
            {"post", item.Post},
            {"put", item.Put},
            {"delete", item.Delete},
            {"patch", item.Patch},
            {"head", item.Head},
            {"options", item.Options},
            {"trace", item.Trace},
        }
        for _, pair := range ops {
            if pair.op == nil {
                continue
            }
            groupName, op := a.operation(p, pair.method, item.Parameters, pair.op)
            g, ok := groups[groupName]
            if !ok {
                g = &OperationGroup{Language: Languages{Default: Language{Name: groupName}}}
                groups[groupName] = g
                m.OperationGroups = append(m.OperationGroups, g)
            }
            g.Operations = append(g.Operations, op)
        }
    }
    return m, nil
}

type adapter struct {
    schemas map[*openapi3.Schema]*Schema
    names   map[*openapi3.Schema]string
}

func (a *adapter) operation(path, method string, shared openapi3.Parameters, o *openapi3.Operation) (string, *Operation) {
    group, name := splitOperationID(o.OperationID)
    if name == "" {
        name = identifierLower(method + " " + path)
    }
    if group == "" && len(o.Tags) > 0 {
        group = identifier(o.Tags[0])
    }

    op := &Operation{
        Language: Languages{Default: Language{
            Name:        name,
            Summary:     safeStr(o.Summary),
            Description: safeStr(o.Description),
        }},
        Extensions:          extensions(o.Extensions),
        SignatureParameters: []*Parameter{},
        Responses:           []*Response{},
    }

    // Operation-level parameters override path-level ones with the same key.
    merged := make(map[string]*Parameter)
    for _, list := range []openapi3.Parameters{shared, o.Parameters} {
        for _, pref := range list {
            if pm := a.parameter(pref); pm != nil {
                merged[paramKey(pm.In(), pm.Name())] = pm
            }
        }
    }
    for _, pm := range merged {
        op.SignatureParameters = append(op.SignatureParameters, pm)
    }
    sort.Slice(op.SignatureParameters, func(i, j int) bool {
        pi, pj := op.SignatureParameters[i], op.SignatureParameters[j]
        if pi.In() == pj.In() {
            return pi.Name() < pj.Name()
        }
        return pi.In() < pj.In()
    })

    req := &Request{Protocol: Protocols{HTTP: &HTTPProtocol{Method: method, Path: path}}}
    if o.RequestBody != nil && o.RequestBody.Value != nil {
        mime, media := pickMedia(o.RequestBody.Value.Content)
        if media != nil {
            body := &Parameter{
                Language: Languages{Default: Language{Name: "body", Description: safeStr(o.RequestBody.Value.Description)}},
                Schema:   a.mediaSchema(mime, media, identifier(name)+"Request"),
                Required: o.RequestBody.Value.Required,
                Protocol: Protocols{HTTP: &HTTPProtocol{In: BodyLocation}},
            }
            req.SignatureParameters = append(req.SignatureParameters, body)
            req.Parameters = append(req.Parameters, body)
            req.Protocol.HTTP.KnownMediaType = mime
        }
    }
    op.Requests = []*Request{req}

    codes := make([]string, 0, len(o.Responses))
    for code := range o.Responses {
        codes = append(codes, code)
    }
    sort.Strings(codes)
    for _, code := range codes {
        rref := o.Responses[code]
        if rref == nil || rref.Value == nil {
            continue
        }
        resp := &Response{Protocol: Protocols{HTTP: &HTTPProtocol{StatusCodes: []string{code}}}}
        if mime, media := pickMedia(rref.Value.Content); media != nil {
            resp.Schema = a.mediaSchema(mime, media, identifier(name)+"Response")
            resp.Protocol.HTTP.KnownMediaType = mime
        }
        if isErrorStatus(code) {
            op.Exceptions = append(op.Exceptions, resp)
        } else {
            op.Responses = append(op.Responses, resp)
        }
    }
    return group, op
}

func (a *adapter) parameter(pref *openapi3.ParameterRef) *Parameter {
    if pref == nil || pref.Value == nil {
        return nil
    }
    p := pref.Value
    in := safeStr(p.In)
    if in == openapi3.ParameterInCookie {
        return nil
    }
    schema := a.schema(p.Schema, identifier(p.Name))
    if schema == nil {
        schema = &Schema{Type: TypeString}
    }
    return &Parameter{
        Language: Languages{Default: Language{Name: safeStr(p.Name), Description: safeStr(p.Description)}},
        Schema:   schema,
        Required: p.Required || in == openapi3.ParameterInPath,
        Protocol: Protocols{HTTP: &HTTPProtocol{In: in}},
    }
}

func (a *adapter) mediaSchema(mime string, media *openapi3.MediaType, hint string) *Schema {
    if isBinaryMedia(mime) {
        return &Schema{Type: TypeBinary}
    }
    s := a.schema(media.Schema, hint)
    if s == nil {
        return &Schema{Type: TypeAny}
    }
    return s
}

// schema converts an OpenAPI schema. Converted schemas are memoized by
// identity so recursive component references become pointer cycles instead
// of infinite trees.
func (a *adapter) schema(ref *openapi3.SchemaRef, hint string) *Schema {
    if ref == nil || ref.Value == nil {
        return nil
    }
    v := ref.Value
    if s, ok := a.schemas[v]; ok {
        return s
    }
    name := a.names[v]
    if name == "" && ref.Ref != "" {
        name = ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]
    }
    if name == "" {
        name = hint
    }

    out := &Schema{
        Language:     Languages{Default: Language{Name: name, Description: safeStr(v.Description)}},
        DefaultValue: v.Default,
    }
    a.schemas[v] = out

    switch {
    case len(v.Enum) > 0:
        out.Type = TypeChoice
        out.ChoiceType = &Schema{Type: primitive(v)}
        for _, e := range v.Enum {
            out.Choices = append(out.Choices, &Choice{Value: e, Language: Languages{Default: Language{Name: fmt.Sprint(e)}}})
        }
    case v.Type == openapi3.TypeArray:
        out.Type = TypeArray
        out.ElementType = a.schema(v.Items, flect.Singularize(name))
        if out.ElementType == nil {
            out.ElementType = &Schema{Type: TypeAny}
        }
    case isDictionary(v):
        out.Type = TypeDictionary
        out.ElementType = a.schema(v.AdditionalProperties.Schema, name+"Value")
        if out.ElementType == nil {
            out.ElementType = &Schema{Type: TypeAny}
        }
    case v.Type == openapi3.TypeObject || len(v.Properties) > 0 || len(v.AllOf) > 0:
        out.Type = TypeObject
        a.properties(out, v)
    default:
        out.Type = primitive(v)
        out.Precision = precision(v)
    }
    return out
}

// properties flattens allOf members before the schema's own properties.
func (a *adapter) properties(out *Schema, v *openapi3.Schema) {
    seen := make(map[string]bool)
    for _, member := range v.AllOf {
        ms := a.schema(member, out.Name())
        if ms == nil {
            continue
        }
        for _, p := range ms.Properties {
            if !seen[p.SerializedName] {
                seen[p.SerializedName] = true
                out.Properties = append(out.Properties, p)
            }
        }
    }

    required := make(map[string]bool, len(v.Required))
    for _, r := range v.Required {
        required[r] = true
    }
    keys := make([]string, 0, len(v.Properties))
    for k := range v.Properties {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    for _, k := range keys {
        if seen[k] {
            continue
        }
        seen[k] = true
        ps := a.schema(v.Properties[k], identifier(k))
        if ps == nil {
            continue
        }
        out.Properties = append(out.Properties, &Property{
            SerializedName: k,
            Language:       Languages{Default: Language{Name: strcase.LowerCamelCase(k)}},
            Schema:         ps,
            Required:       required[k],
            ReadOnly:       v.Properties[k].Value != nil && v.Properties[k].Value.ReadOnly,
        })
    }
}

func isDictionary(v *openapi3.Schema) bool {
    if len(v.Properties) > 0 {
        return false
    }
    ap := v.AdditionalProperties
    return ap.Schema != nil || (ap.Has != nil && *ap.Has)
}

func primitive(v *openapi3.Schema) string {
    switch v.Type {
    case openapi3.TypeInteger:
        return TypeInteger
    case openapi3.TypeNumber:
        return TypeNumber
    case openapi3.TypeBoolean:
        return TypeBoolean
    case openapi3.TypeString:
        switch v.Format {
        case "binary":
            return TypeBinary
        case "date-time":
            return TypeDateTime
        case "date":
            return TypeDate
        case "uuid":
            return TypeUUID
        }
        return TypeString
    case "":
        return TypeAny
    }
    return v.Type
}

func precision(v *openapi3.Schema) int {
    switch v.Type {
    case openapi3.TypeInteger:
        if v.Format == "int64" {
            return 64
        }
        return 32
    case openapi3.TypeNumber:
        if v.Format == "float" {
            return 32
        }
        return 64
    }
    return 0
}

// pickMedia prefers JSON content, then the first media type by name.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
    if len(content) == 0 {
        return "", nil
    }
    keys := make([]string, 0, len(content))
    for k := range content {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    for _, k := range keys {
        if k == "application/json" || strings.HasSuffix(k, "+json") {
            return k, content[k]
        }
    }
    return keys[0], content[keys[0]]
}

func isBinaryMedia(mime string) bool {
    return mime == "application/octet-stream" || strings.HasPrefix(mime, "image/") ||
        strings.HasPrefix(mime, "audio/") || strings.HasPrefix(mime, "video/")
}

func isErrorStatus(code string) bool {
    return code == "default" || strings.HasPrefix(code, "4") || strings.HasPrefix(code, "5")
}

// splitOperationID splits "Group_Operation" ids. Ids without an underscore
// only name the operation.
func splitOperationID(id string) (string, string) {
    id = safeStr(id)
    if id == "" {
        return "", ""
    }
    if i := strings.Index(id, "_"); i > 0 && i < len(id)-1 {
        return identifier(id[:i]), identifierLower(id[i+1:])
    }
    return "", identifierLower(id)
}

func extensions(in map[string]interface{}) map[string]any {
    if len(in) == 0 {
        return nil
    }
    out := make(map[string]any, len(in))
    for k, v := range in {
        if raw, ok := v.(json.RawMessage); ok {
            var decoded any
            if err := json.Unmarshal(raw, &decoded); err == nil {
                v = decoded
            }
        }
        out[k] = v
    }
    return out
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

// identifier turns free text such as titles, tags and paths into an
// UpperCamelCase identifier.
func identifier(s string) string {
    return strcase.UpperCamelCase(strings.TrimSpace(nonIdent.ReplaceAllString(s, " ")))
}

func identifierLower(s string) string {
    return strcase.LowerCamelCase(strings.TrimSpace(nonIdent.ReplaceAllString(s, " ")))
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }
