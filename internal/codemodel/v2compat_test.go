package codemodel

import (
    "strings"
    "testing"
)

func TestV2Compat_MultipleBodyMerged(t *testing.T) {
    t.Parallel()
    in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /x:
    post:
      parameters:
      - in: body
        name: a
        required: true
        schema: { type: string }
      - in: body
        name: b
        schema: { type: integer }
      - in: query
        name: q
        type: string
      responses: { '200': { description: ok } }
`)
    out, changed, err := preprocessV2ForCompatibility(in)
    if err != nil {
        t.Fatalf("preprocess: %v", err)
    }
    if !changed {
        t.Fatalf("expected changes")
    }
    s := string(out)
    if strings.Count(s, "in: body") != 1 || !strings.Contains(s, "name: body") {
        t.Fatalf("expected a single merged body parameter, got:\n%s", s)
    }
    if !strings.Contains(s, "name: q") {
        t.Fatalf("expected non-body parameters to survive, got:\n%s", s)
    }
}

func TestV2Compat_BodyAndFormData_ToFormData(t *testing.T) {
    t.Parallel()
    in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /upload:
    post:
      parameters:
      - in: body
        name: desc
        schema: { type: string }
      - in: formData
        name: file
        type: file
        required: true
      responses: { '200': { description: ok } }
`)
    out, changed, err := preprocessV2ForCompatibility(in)
    if err != nil {
        t.Fatalf("preprocess: %v", err)
    }
    if !changed {
        t.Fatalf("expected changes")
    }
    s := string(out)
    if strings.Contains(s, "in: body") {
        t.Fatalf("expected no body params after conversion to formData, got:\n%s", s)
    }
    if !strings.Contains(s, "multipart/form-data") {
        t.Fatalf("expected consumes multipart/form-data, got:\n%s", s)
    }
}

func TestV2Compat_Untouched(t *testing.T) {
    t.Parallel()
    in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /x:
    post:
      parameters:
      - in: body
        name: a
        schema: { type: string }
      responses: { '200': { description: ok } }
`)
    out, changed, err := preprocessV2ForCompatibility(in)
    if err != nil {
        t.Fatalf("preprocess: %v", err)
    }
    if changed || string(out) != string(in) {
        t.Fatalf("expected input to be returned unchanged")
    }
}
