package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alevsk/shapeshift/internal/config"
	"github.com/alevsk/shapeshift/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func TestNewServer(t *testing.T) {
	s := NewServer(nil, nil)
	require.NotNil(t, s)
	assert.NotNil(t, s.router)
	assert.NotNil(t, s.orch)
	assert.Equal(t, "json", s.defaults.Target)
}

func TestHealthCheckHandler(t *testing.T) {
	rr := do(t, NewServer(nil, nil), http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, `{"status":"healthy"}`+"\n", rr.Body.String())
}

func TestFormatsHandler(t *testing.T) {
	rr := do(t, NewServer(nil, nil), http.MethodGet, "/api/v1/formats", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"formats":["json","yaml","toml","xml","openapi"]}`, rr.Body.String())
}

func TestTransformHandler(t *testing.T) {
	s := NewServer(nil, nil)

	tests := []struct {
		name          string
		body          string
		wantValid     bool
		wantFormatted string
		wantSource    string
	}{
		{
			name:          "explicit formats",
			body:          `{"data": "{\"a\": 1}", "from": "json", "to": "yaml"}`,
			wantValid:     true,
			wantFormatted: "a: 1",
			wantSource:    "json",
		},
		{
			name:          "config defaults",
			body:          `{"data": "a: 1", "from": "yaml"}`,
			wantValid:     true,
			wantFormatted: "{\n  \"a\": 1\n}",
			wantSource:    "yaml",
		},
		{
			name:          "compact",
			body:          `{"data": "a: 1", "pretty": false}`,
			wantValid:     true,
			wantFormatted: `{"a":1}`,
			wantSource:    "yaml",
		},
		{
			name:       "unknown target is still 200",
			body:       `{"data": "a: 1", "from": "yaml", "to": "ini"}`,
			wantValid:  false,
			wantSource: "yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, http.MethodPost, "/api/v1/transform", tt.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var res types.TransformResult
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
			assert.Equal(t, tt.wantValid, res.Valid, res.Errors)
			assert.Equal(t, tt.wantFormatted, res.Formatted)
			assert.Equal(t, tt.wantSource, res.SourceFormat)
		})
	}
}

func TestTransformResponseKeepsMarkup(t *testing.T) {
	rr := do(t, NewServer(nil, nil), http.MethodPost, "/api/v1/transform", `{"data": "{\"a\": 1}", "from": "json", "to": "xml"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Contains(t, rr.Body.String(), "<a>")
	assert.NotContains(t, rr.Body.String(), `\u003c`)
}

func TestTransformStrictFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Strict = true
	s := NewServer(nil, cfg)

	body := `{"data": "{\"password\": \"correct-horse-battery\"}", "from": "json"}`
	rr := do(t, s, http.MethodPost, "/api/v1/transform", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var res types.TransformResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.False(t, res.Valid)

	rr = do(t, s, http.MethodPost, "/api/v1/transform", `{"data": "{\"password\": \"correct-horse-battery\"}", "from": "json", "strict": false}`)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Valid)
}

func TestValidateHandler(t *testing.T) {
	s := NewServer(nil, nil)
	openapi := `{\"openapi\": \"3.0.0\", \"info\": {\"title\": \"x\", \"version\": \"1\"}}`

	rr := do(t, s, http.MethodPost, "/api/v1/validate", `{"data": "`+openapi+`", "format": "openapi", "strict": true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var res types.ValidationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"no 'paths' defined in openapi document"}, res.Errors)

	rr = do(t, s, http.MethodPost, "/api/v1/validate", `{"data": "title = \"x\""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	res = types.ValidationResult{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Valid)
	assert.Equal(t, "toml", res.Metadata["format"])

	rr = do(t, s, http.MethodPost, "/api/v1/validate", `{"data": ""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDetectHandler(t *testing.T) {
	s := NewServer(nil, nil)

	rr := do(t, s, http.MethodPost, "/api/v1/detect", `{"data": "<a>1</a>"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"format":"xml","confidence":"100%","message":"detected format: xml (100% confidence)"}`, rr.Body.String())

	rr = do(t, s, http.MethodPost, "/api/v1/detect", `{"data": "   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error"`)
}

func TestBadRequests(t *testing.T) {
	s := NewServer(nil, nil)

	for _, path := range []string{"/api/v1/transform", "/api/v1/validate", "/api/v1/detect"} {
		rr := do(t, s, http.MethodPost, path, `{not json`)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "invalid request body")
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 16
	s := NewServer(nil, cfg)

	rr := do(t, s, http.MethodPost, "/api/v1/detect", `{"data": "`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
