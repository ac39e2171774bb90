// Package scanner flags mapping entries that look like hardcoded secrets.
// It is a heuristic: it never fails and never blocks a transform.
package scanner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alevsk/shapeshift/internal/document"
)

const (
	// MaxDepth is the deepest container whose entries are inspected
	MaxDepth = 50
	// MinSecretLength is the length a value must exceed to be reported
	MinSecretLength = 10
)

// SuspiciousTokens are matched case-insensitively against mapping keys
var SuspiciousTokens = []string{"password", "secret", "token", "key", "api"}

// Scan returns one warning per suspicious entry, in document order
func Scan(doc any) []string {
	warnings := []string{}
	// entries of a container at MaxDepth sit one level below it
	document.Walk(doc, MaxDepth+1, func(n document.Node) bool {
		if !n.InMap || !suspiciousKey(n.Key) {
			return true
		}
		if s, ok := n.Value.(string); ok && utf8.RuneCountInString(s) > MinSecretLength {
			warnings = append(warnings, fmt.Sprintf("potential secret at %s: suspicious key name", n.Path))
		}
		return true
	})
	return warnings
}

func suspiciousKey(key string) bool {
	key = strings.ToLower(key)
	for _, token := range SuspiciousTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}
