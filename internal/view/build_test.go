package view

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/apiview/internal/codemodel"
	"github.com/mark3labs/apiview/internal/token"
)

// getPetModel is the smallest complete document: one group, one operation,
// one required parameter and a model return type without a body block.
const getPetModel = `info:
  title: Pets
globalParameters:
  - language: { default: { name: endpoint } }
    schema: { type: string }
operationGroups:
  - language: { default: { name: Pets } }
    operations:
      - language: { default: { name: getPet, summary: "" } }
        signatureParameters:
          - language: { default: { name: id } }
            schema: { type: string }
            required: true
        requests:
          - protocol: { http: { method: get, path: "/pets/{id}" } }
        responses:
          - schema:
              type: object
              language: { default: { name: Pet } }
            protocol: { http: { statusCodes: [] } }
`

const storeModel = `info:
  title: Store
  version: "2024-01-01"
globalParameters:
  - language: { default: { name: $host } }
    schema: { type: string }
operationGroups:
  - language: { default: { name: Orders } }
    operations:
      - language: { default: { name: listOrders, summary: Lists orders. } }
        extensions:
          x-ms-pageable: { nextLinkName: nextLink }
        signatureParameters:
          - language: { default: { name: top } }
            schema: { type: integer, precision: 32, defaultValue: 10 }
          - language: { default: { name: weird } }
            schema: { type: integer, precision: 16 }
        requests:
          - protocol: { http: { method: get, path: /orders } }
        responses:
          - schema:
              type: object
              language: { default: { name: OrderList } }
              properties:
                - serializedName: value
                  schema:
                    type: array
                    elementType: &order
                      type: object
                      language: { default: { name: Order } }
                      properties:
                        - serializedName: id
                          schema: { type: string }
                          required: true
            protocol: { http: { statusCodes: ["200"] } }
        exceptions:
          - protocol: { http: { statusCodes: ["default"] } }
      - language: { default: { name: createOrder, description: Creates an order. } }
        extensions:
          x-ms-long-running-operation: true
        signatureParameters: []
        requests:
          - signatureParameters:
              - language: { default: { name: body } }
                schema:
                  type: object
                  language: { default: { name: CreateOrderRequest } }
                  properties:
                    - serializedName: order
                      schema: *order
                      required: true
                required: true
                protocol: { http: { in: body } }
              - language: { default: { name: contentType } }
                schema: { type: "" }
        responses:
          - schema: *order
            protocol: { http: { statusCodes: ["201", "200"] } }
          - protocol: { http: { statusCodes: ["200"] } }
        exceptions:
          - protocol: { http: { statusCodes: ["400", "default"] } }
  - language: { default: { name: "" } }
    operations:
      - language: { default: { name: ping, description: Health. } }
        signatureParameters: []
        requests: []
        responses: []
`

func parse(t *testing.T, src string) *codemodel.CodeModel {
	t.Helper()
	m, err := codemodel.Parse([]byte(src))
	require.NoError(t, err)
	return m
}

func TestFromCodeModel_GetPetScenario(t *testing.T) {
	t.Parallel()

	c, err := FromCodeModel(parse(t, getPetModel), Options{})
	require.NoError(t, err)
	doc, err := c.Render()
	require.NoError(t, err)
	require.NoError(t, doc.Check())

	text := plain(doc.Tokens)
	namespaceAt := strings.Index(text, "Azure.Pets {")
	ctorAt := strings.Index(text, "Pets(string endpoint, AzureCredential Credential)")
	overviewAt := strings.Index(text, "Pet getPet(string id)")
	detailsAt := strings.Index(text, "Pet getPet\n            (\n                string id\n            )\n")
	require.GreaterOrEqual(t, namespaceAt, 0)
	assert.Less(t, namespaceAt, ctorAt)
	assert.Less(t, ctorAt, overviewAt)
	assert.Less(t, overviewAt, detailsAt)

	assert.NotContains(t, text, "Status Codes")
	assert.NotContains(t, text, "Request")
	assert.NotContains(t, text, "Response")

	var keywordPets bool
	var open, closed int
	for _, tk := range doc.Tokens {
		if tk.Kind() == token.Keyword && tk.Value() == "Pets" {
			keywordPets = true
		}
		open += strings.Count(tk.Value(), "{")
		closed += strings.Count(tk.Value(), "}")
	}
	assert.True(t, keywordPets)
	assert.Equal(t, open, closed)

	assert.Equal(t, "Pets", doc.Name)
	assert.Equal(t, "Pets", doc.PackageName)
	assert.Equal(t, "LLC", doc.Language)
}

func TestFromCodeModel_Store(t *testing.T) {
	t.Parallel()

	c, err := FromCodeModel(parse(t, storeModel), Options{})
	require.NoError(t, err)

	require.Len(t, c.Groups, 2)
	assert.True(t, c.Groups[0].IsDefault())
	assert.Equal(t, "$host", c.EndpointName)
	assert.Equal(t, "2024-01-01", c.Version)

	orders := c.Groups[1]
	require.Len(t, orders.Operations, 2)

	list := orders.Operations[0]
	assert.Equal(t, "listOrders", list.Name)
	assert.Equal(t, "Lists orders.", list.Description)
	assert.True(t, list.Paging)
	assert.False(t, list.LRO)
	assert.Equal(t, "Order", list.ReturnType)
	assert.Equal(t, []string{"200", "default"}, list.StatusCodes)
	require.Len(t, list.Parameters, 2)
	assert.Equal(t, "int32", list.Parameters[0].Type)
	require.NotNil(t, list.Parameters[0].Default)
	assert.Equal(t, "10", *list.Parameters[0].Default)
	assert.Equal(t, "integer", list.Parameters[1].Type)
	require.NotNil(t, list.Response)
	assert.Equal(t, "OrderList", list.Response.Name)
	assert.Nil(t, list.Request)

	create := orders.Operations[1]
	assert.Equal(t, "Creates an order.", create.Description)
	assert.True(t, create.LRO)
	assert.Equal(t, "Order", create.ReturnType)
	assert.Equal(t, []string{"201", "200", "400", "default"}, create.StatusCodes)
	require.Len(t, create.Parameters, 2)
	assert.Equal(t, ParameterView{Name: "order", Type: "Order", Required: true, Namespace: "Azure.Store"}, create.Parameters[0])
	assert.Equal(t, "", create.Parameters[1].Type)
	require.NotNil(t, create.Request)
	assert.Equal(t, "CreateOrderRequest", create.Request.Name)
	require.NotNil(t, create.Response)
	assert.Equal(t, "Order", create.Response.Name)
}

func TestFromCodeModel_RendersStore(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := FromCodeModel(parse(t, storeModel), Options{Logger: logger})
	require.NoError(t, err)
	doc, err := c.Render()
	require.NoError(t, err)
	require.NoError(t, doc.Check())

	text := plain(doc.Tokens)
	assert.Contains(t, text, "    void ping()\n")
	assert.Contains(t, text, "Paging[Order] listOrders(int32? top = 10, integer? weird)")
	assert.Contains(t, text, "LRO[Order] createOrder(Order order)")
	assert.Contains(t, text, "Status Codes: 201, 200, 400, default")
	assert.Contains(t, text, "model CreateOrderRequest {\n                    order: Order;\n                        model Order {")
	assert.Less(t, strings.Index(text, "void ping"), strings.Index(text, "OperationGroup Orders"))

	assert.Contains(t, logs.String(), "unsupported numeric precision")
	assert.Contains(t, logs.String(), "dropping untyped parameters")
}

func TestFromCodeModel_GroupFilters(t *testing.T) {
	t.Parallel()

	c, err := FromCodeModel(parse(t, storeModel), Options{IncludeGroups: []string{"Orders"}})
	require.NoError(t, err)
	require.Len(t, c.Groups, 1)
	assert.Equal(t, "Orders", c.Groups[0].Name)

	c, err = FromCodeModel(parse(t, storeModel), Options{ExcludeGroups: []string{DefaultGroupName}})
	require.NoError(t, err)
	require.Len(t, c.Groups, 1)
	assert.Equal(t, "Orders", c.Groups[0].Name)
}

func TestFromCodeModel_Overrides(t *testing.T) {
	t.Parallel()

	protocol, err := LookupFlavor("protocol")
	require.NoError(t, err)

	c, err := FromCodeModel(parse(t, getPetModel), Options{
		Flavor:         protocol,
		PackageName:    "PetClient",
		CredentialName: "token",
		CredentialType: "TokenCredential",
	})
	require.NoError(t, err)
	assert.Equal(t, "Azure.PetClient", c.Namespace)

	doc, err := c.Render()
	require.NoError(t, err)
	assert.Equal(t, "Protocol", doc.Language)
	assert.Contains(t, plain(doc.Tokens), "PetClient(string endpoint, TokenCredential token)")
}

func TestFromCodeModel_MissingEndpoint(t *testing.T) {
	t.Parallel()

	_, err := FromCodeModel(&codemodel.CodeModel{Info: codemodel.Info{Title: "X"}}, Options{})
	var me *codemodel.ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "globalParameters[0].schema.type", me.Path)
}

func TestLookupFlavor(t *testing.T) {
	t.Parallel()

	_, err := LookupFlavor("cobol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llc")
	assert.Equal(t, []string{"llc", "protocol"}, Flavors())
}

func TestFromCodeModel_BodyTemplates(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	c, err := FromCodeModel(parse(t, getPetModel), Options{
		BodyTemplates: map[string]BodyTemplate{
			"Pets.getPet": {Response: map[string]any{
				"name":  "str",
				"tags":  []any{"str (optional)"},
				"owner": map[string]any{"email": "str"},
			}},
			"Pets.deletePet": {Request: "str"},
		},
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	doc, err := c.Render()
	require.NoError(t, err)
	require.NoError(t, doc.Check())

	text := plain(doc.Tokens)
	assert.Contains(t, text, "            Response\n")
	assert.Contains(t, text, "                model GetPetResponse {\n")
	assert.Contains(t, text, "name: str;")
	assert.Contains(t, text, "tags?: str[];")
	assert.Contains(t, text, "owner: owner;")
	assert.Contains(t, text, "model owner {")
	assert.Contains(t, text, "email: str;")
	assert.NotContains(t, text, "Request")

	assert.Contains(t, logs.String(), "body template matches no rendered operation")
	assert.Contains(t, logs.String(), "key=Pets.deletePet")
}

func TestFromCodeModel_BodyTemplateMismatch(t *testing.T) {
	t.Parallel()

	_, err := FromCodeModel(parse(t, getPetModel), Options{
		BodyTemplates: map[string]BodyTemplate{
			"Pets.getPet": {Request: map[string]any{"str": "int", "x": "y"}},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "body template Pets.getPet")
}

// recursiveModel refers back to its own anchor, the way generated code
// models describe nested error details.
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
`

func TestFromCodeModel_RecursiveSchema(t *testing.T) {
	t.Parallel()

	c, err := FromCodeModel(parse(t, recursiveModel), Options{})
	require.NoError(t, err)
	doc, err := c.Render()
	require.NoError(t, err)
	require.NoError(t, doc.Check())

	text := plain(doc.Tokens)
	assert.Contains(t, text, "InnerError check()")
	assert.Contains(t, text, "model InnerError {")
	assert.Contains(t, text, "code?: string;")
	assert.Contains(t, text, "innererror?: InnerError;")
	assert.Equal(t, 1, strings.Count(text, "model InnerError {"))
}
