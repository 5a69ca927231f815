package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	httpSwagger "github.com/swaggo/http-swagger"
)

func TestDocTemplateRenders(t *testing.T) {
	var doc struct {
		BasePath            string                    `json:"basePath"`
		Info                map[string]any            `json:"info"`
		Paths               map[string]map[string]any `json:"paths"`
		SecurityDefinitions map[string]map[string]any `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Equal(t, "Indicador Online Dashboard API", doc.Info["title"])
	assert.Equal(t, "X-Session-ID", doc.SecurityDefinitions["SessionAuth"]["name"])

	for path, method := range map[string]string{
		"/auth/login":                "post",
		"/drafts/{id}/commands":      "post",
		"/drafts/{id}/submit":        "post",
		"/companies/{id}":            "put",
		"/anomalies/{id}/transition": "post",
		"/admin/audit-logs":          "get",
		"/checklists/{id}/employees": "post",
	} {
		assert.Contains(t, doc.Paths[path], method, path)
	}
}

func TestSwaggerUIServesDoc(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/drafts/{id}/submit"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
