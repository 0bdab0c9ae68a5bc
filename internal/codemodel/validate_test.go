package codemodel

import (
    "errors"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const petsModel = `info:
  title: PetStore
  version: "2024-01-01"
globalParameters:
  - language: { default: { name: endpoint } }
    schema: { type: string }
operationGroups:
  - language: { default: { name: Pets } }
    operations:
      - language:
          default:
            name: getPet
            description: Gets a pet.
        extensions:
          x-ms-pageable: { nextLinkName: nextLink }
        signatureParameters:
          - language: { default: { name: id } }
            schema: { type: string }
            required: true
        requests:
          - protocol: { http: { method: get, path: "/pets/{id}" } }
        responses:
          - schema: &pet
              type: object
              language: { default: { name: Pet } }
              properties:
                - serializedName: name
                  schema: { type: string }
                  required: true
            protocol: { http: { statusCodes: [200] } }
        exceptions:
          - protocol: { http: { statusCodes: ["default"] } }
`

func TestParse_Valid(t *testing.T) {
    t.Parallel()
    m, err := Parse([]byte(petsModel))
    require.NoError(t, err)

    assert.Equal(t, "PetStore", m.Info.Title)
    require.Len(t, m.OperationGroups, 1)
    op := m.OperationGroups[0].Operations[0]
    assert.Equal(t, "getPet", op.Name())
    assert.Equal(t, "Gets a pet.", op.Summary())
    assert.True(t, op.Pageable())
    assert.False(t, op.LRO())
    assert.Equal(t, []string{"200"}, op.Responses[0].StatusCodes())
    assert.Equal(t, "Pet", op.Responses[0].Schema.Name())
    assert.Equal(t, []string{"default"}, op.Exceptions[0].StatusCodes())
}

func TestParse_MissingOperationName(t *testing.T) {
    t.Parallel()
    broken := strings.Replace(petsModel, "            name: getPet\n", "", 1)
    _, err := Parse([]byte(broken))

    var me *ModelError
    if !errors.As(err, &me) {
        t.Fatalf("expected ModelError, got %v (%T)", err, err)
    }
    if me.Code != MissingField {
        t.Fatalf("expected MissingField, got %v", me.Code)
    }
    if me.Path != "operationGroups[0].operations[0].language.default.name" {
        t.Fatalf("unexpected path %q", me.Path)
    }
    if me.Line == 0 {
        t.Fatalf("expected a line number")
    }
}

func TestParse_NullCountsAsMissing(t *testing.T) {
    t.Parallel()
    broken := strings.Replace(petsModel, "  title: PetStore", "  title: null", 1)
    _, err := Parse([]byte(broken))

    var me *ModelError
    require.ErrorAs(t, err, &me)
    assert.Equal(t, "info.title", me.Path)
}

func TestParse_SummaryOrDescriptionRequired(t *testing.T) {
    t.Parallel()
    broken := strings.Replace(petsModel, "            description: Gets a pet.\n", "", 1)
    _, err := Parse([]byte(broken))

    var me *ModelError
    require.ErrorAs(t, err, &me)
    assert.Equal(t, "operationGroups[0].operations[0].language.default.description", me.Path)
}

func TestParse_StatusCodesRequired(t *testing.T) {
    t.Parallel()
    broken := strings.Replace(petsModel, `protocol: { http: { statusCodes: ["default"] } }`, `protocol: { http: {} }`, 1)
    _, err := Parse([]byte(broken))

    var me *ModelError
    require.ErrorAs(t, err, &me)
    assert.Equal(t, "operationGroups[0].operations[0].exceptions[0].protocol.http.statusCodes", me.Path)
}

func TestParse_ParameterSchemaTypeRequired(t *testing.T) {
    t.Parallel()
    broken := strings.Replace(petsModel, "            schema: { type: string }\n            required: true", "            schema: {}\n            required: true", 1)
    _, err := Parse([]byte(broken))

    var me *ModelError
    require.ErrorAs(t, err, &me)
    assert.Equal(t, "operationGroups[0].operations[0].signatureParameters[0].schema.type", me.Path)
}

func TestParse_SequenceExpected(t *testing.T) {
    t.Parallel()
    broken := strings.Replace(petsModel, "        requests:\n          - protocol: { http: { method: get, path: \"/pets/{id}\" } }\n", "        requests: {}\n", 1)
    _, err := Parse([]byte(broken))

    var me *ModelError
    require.ErrorAs(t, err, &me)
    assert.Equal(t, InvalidField, me.Code)
    assert.Equal(t, "operationGroups[0].operations[0].requests", me.Path)
}

func TestParse_EmptyDocument(t *testing.T) {
    t.Parallel()
    _, err := Parse([]byte(""))
    var me *ModelError
    require.ErrorAs(t, err, &me)
}

const recursiveModel = `info:
  title: Errors
globalParameters:
  - language: { default: { name: endpoint } }
    schema: { type: string }
operationGroups:
  - language: { default: { name: "" } }
    operations:
      - language: { default: { name: check, summary: Checks. } }
        signatureParameters: []
        requests: []
        responses:
          - schema: &ref_0
              type: object
              language: { default: { name: InnerError } }
              properties:
                - serializedName: code
                  schema: { type: string }
                - serializedName: innererror
                  schema: *ref_0
            protocol: { http: { statusCodes: ["200"] } }
        exceptions:
          - schema: *ref_0
            protocol: { http: { statusCodes: ["default"] } }
`

func TestParse_RecursiveAnchor(t *testing.T) {
    t.Parallel()
    m, err := Parse([]byte(recursiveModel))
    require.NoError(t, err)

    op := m.OperationGroups[0].Operations[0]
    inner := op.Responses[0].Schema
    require.NotNil(t, inner)
    assert.Equal(t, "InnerError", inner.Name())
    require.Len(t, inner.Properties, 2)
    assert.Equal(t, "innererror", inner.Properties[1].Name())
    assert.Same(t, inner, inner.Properties[1].Schema)
    assert.Same(t, inner, op.Exceptions[0].Schema)
    assert.Empty(t, op.SignatureParameters)
}

func TestParse_SharedParameterAnchor(t *testing.T) {
    t.Parallel()
    model := strings.Replace(petsModel,
        "          - language: { default: { name: id } }\n            schema: { type: string }\n            required: true\n",
        "          - &id\n            language: { default: { name: id } }\n            schema: { type: string }\n            required: true\n          - *id\n", 1)
    m, err := Parse([]byte(model))
    require.NoError(t, err)

    params := m.OperationGroups[0].Operations[0].SignatureParameters
    require.Len(t, params, 2)
    for _, p := range params {
        assert.Equal(t, "id", p.Name())
        assert.True(t, p.Required)
        assert.Equal(t, TypeString, p.Schema.Type)
    }
}
