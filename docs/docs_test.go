package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type document struct {
	BasePath    string                                `json:"basePath"`
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]struct {
		Properties map[string]json.RawMessage `json:"properties"`
	} `json:"definitions"`
}

func TestSwaggerDocument(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "/api", doc.BasePath)

	routes := map[string][]string{
		"/auth/refresh":                   {"post"},
		"/admin/pending/{entity}":         {"get"},
		"/admin/{entity}/{id}/status":     {"put"},
		"/admin/institutes/{id}/featured": {"put"},
		"/facilities":                     {"get", "post"},
		"/facilities/{id}":                {"delete"},
		"/reviews/{id}":                   {"put", "delete"},
		"/enquiries/{id}/status":          {"put"},
	}
	for path, methods := range routes {
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, "%s %s", m, path)
		}
	}

	assert.Contains(t, doc.Definitions["service.PendingUser"].Properties, "institute")
	assert.Contains(t, doc.Definitions["model.Facility"].Properties, "name")
	assert.NotContains(t, doc.Definitions["model.User"].Properties, "password_hash")
}
