package scanner

import (
	"testing"

	"github.com/alevsk/shapeshift/internal/document"
	"github.com/stretchr/testify/assert"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		want []string
	}{
		{
			name: "long api key",
			doc:  document.MapOf("api_key", "sk-1234567890abcdef"),
			want: []string{"potential secret at api_key: suspicious key name"},
		},
		{
			name: "short value",
			doc:  document.MapOf("api_key", "x"),
			want: []string{},
		},
		{
			name: "exactly ten characters",
			doc:  document.MapOf("password", "0123456789"),
			want: []string{},
		},
		{
			name: "case insensitive key",
			doc:  document.MapOf("DB_PASSWORD", "hunter2hunter2"),
			want: []string{"potential secret at DB_PASSWORD: suspicious key name"},
		},
		{
			name: "non string value",
			doc:  document.MapOf("token", int64(12345678901234)),
			want: []string{},
		},
		{
			name: "nested path",
			doc: document.MapOf("services", []any{
				document.MapOf("name", "db", "auth", document.MapOf("secret", "averyverylongsecret")),
			}),
			want: []string{"potential secret at services[0].auth.secret: suspicious key name"},
		},
		{
			name: "innocent keys",
			doc:  document.MapOf("name", "a rather long name value", "description", "a rather long text"),
			want: []string{},
		},
		{
			name: "scalar document",
			doc:  "password=supersecretvalue",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scan(tt.doc))
		})
	}
}

func TestScanDepthCeiling(t *testing.T) {
	build := func(depth int) any {
		var doc any = document.MapOf("token", "abcdefghijklmnop")
		for i := 0; i < depth; i++ {
			doc = document.MapOf("n", doc)
		}
		return doc
	}

	// the mapping holding "token" sits at depth 50 and is still inspected
	assert.Len(t, Scan(build(MaxDepth)), 1)
	// one level deeper is silently skipped
	assert.Empty(t, Scan(build(MaxDepth+1)))
}

func TestScanCountsRunes(t *testing.T) {
	// ten runes, more than ten bytes
	assert.Empty(t, Scan(document.MapOf("secret", "éééééééééé")))
	assert.Len(t, Scan(document.MapOf("secret", "éééééééééée")), 1)
}
