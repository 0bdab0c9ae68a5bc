package codemodel

import (
    "sort"
    "strings"

    "gopkg.in/yaml.v3"
)

var v2Methods = map[string]bool{
    "get": true, "post": true, "put": true, "delete": true,
    "patch": true, "options": true, "head": true,
}

// preprocessV2ForCompatibility rewrites Swagger v2 operations that
// openapi2conv rejects:
//   - several body parameters are merged into one object body named "body";
//   - body parameters mixed with formData become formData parameters and the
//     operation consumes multipart/form-data.
//
// On any decode or encode error the input is returned unchanged.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
    var doc map[string]any
    if err := yaml.Unmarshal(data, &doc); err != nil {
        return data, false, err
    }
    paths, _ := doc["paths"].(map[string]any)
    if len(paths) == 0 {
        return data, false, nil
    }

    modified := false
    eachV2Operation(paths, func(op map[string]any) {
        params, _ := op["parameters"].([]any)
        bodies, forms := countLocations(params)
        switch {
        case bodies > 0 && forms > 0:
            modified = bodyParamsToFormData(op, params) || modified
        case bodies > 1:
            modified = mergeBodyParams(op, params) || modified
        }
    })

    if !modified {
        return data, false, nil
    }
    out, err := yaml.Marshal(doc)
    if err != nil {
        return data, false, err
    }
    return out, true, nil
}

// eachV2Operation visits operations in path order so rewrites are stable.
func eachV2Operation(paths map[string]any, fn func(op map[string]any)) {
    keys := make([]string, 0, len(paths))
    for k := range paths {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    for _, k := range keys {
        item, _ := paths[k].(map[string]any)
        for method, raw := range item {
            if !v2Methods[strings.ToLower(method)] {
                continue
            }
            if op, ok := raw.(map[string]any); ok {
                fn(op)
            }
        }
    }
}

func countLocations(params []any) (bodies, forms int) {
    for _, p := range params {
        pm, _ := p.(map[string]any)
        switch strings.ToLower(asString(pm["in"])) {
        case "body":
            bodies++
        case "formdata":
            forms++
        }
    }
    return bodies, forms
}

func mergeBodyParams(op map[string]any, params []any) bool {
    props := map[string]any{}
    var required []any
    rest := make([]any, 0, len(params))
    for _, p := range params {
        pm, _ := p.(map[string]any)
        if pm == nil {
            continue
        }
        if !strings.EqualFold(asString(pm["in"]), "body") {
            rest = append(rest, p)
            continue
        }
        name := asString(pm["name"])
        if name == "" {
            name = "field"
        }
        schema := schemaOfParam(pm)
        if schema == nil {
            schema = map[string]any{"type": "string"}
        }
        props[name] = schema
        if rb, _ := pm["required"].(bool); rb {
            required = append(required, name)
        }
    }

    body := map[string]any{"type": "object", "properties": props}
    if len(required) > 0 {
        body["required"] = required
    }
    op["parameters"] = append([]any{map[string]any{
        "in":     "body",
        "name":   "body",
        "schema": body,
    }}, rest...)
    return true
}

func bodyParamsToFormData(op map[string]any, params []any) bool {
    out := make([]any, 0, len(params))
    for _, p := range params {
        pm, _ := p.(map[string]any)
        if pm == nil {
            continue
        }
        if strings.EqualFold(asString(pm["in"]), "body") {
            out = append(out, formFieldFromBody(pm))
            continue
        }
        out = append(out, pm)
    }
    op["parameters"] = out

    consumes, _ := op["consumes"].([]any)
    for _, c := range consumes {
        if asString(c) == "multipart/form-data" {
            return true
        }
    }
    op["consumes"] = append(consumes, "multipart/form-data")
    return true
}

func asString(v any) string {
    s, _ := v.(string)
    return s
}

// schemaOfParam returns the parameter's schema, synthesizing one from
// type/items/format for non-body style parameters.
func schemaOfParam(pm map[string]any) map[string]any {
    if sch, ok := pm["schema"].(map[string]any); ok {
        return sch
    }
    t := asString(pm["type"])
    if t == "" {
        return nil
    }
    m := map[string]any{"type": t}
    if it, ok := pm["items"].(map[string]any); ok {
        m["items"] = it
    }
    if f := asString(pm["format"]); f != "" {
        m["format"] = f
    }
    return m
}

func formFieldFromBody(pm map[string]any) map[string]any {
    name := asString(pm["name"])
    if name == "" {
        name = "field"
    }
    out := map[string]any{"in": "formData", "name": name}
    if desc := asString(pm["description"]); desc != "" {
        out["description"] = desc
    }
    if req, ok := pm["required"].(bool); ok {
        out["required"] = req
    }

    src := schemaOfParam(pm)
    typ := ""
    if src != nil {
        typ = asString(src["type"])
        if it, ok := src["items"]; ok {
            out["items"] = it
        }
        if f := asString(src["format"]); f != "" {
            out["format"] = f
        }
    }
    // Referenced objects cannot be form fields.
    if typ == "" || typ == "object" {
        typ = "string"
    }
    out["type"] = typ
    return out
}
