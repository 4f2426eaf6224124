// Package testutil provides shared test helpers for creating config files and
// lead report fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// LeadMarkdown is a two-lead answer in the Markdown subset providers are
// asked to produce.
const LeadMarkdown = `## Lead 1: Acme GmbH
- **Contact Person:** Jane Doe
- **Position:** HR Manager
- **Website:** acme.example

## Lead 2: Beta AG
- **Contact Person:** John Roe
- **Email:** info@beta.example
`

// SetupTestConfig creates a minimal config file with a YAML history directory,
// a UTC report timezone and a log file for testing.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	historyDir := filepath.Join(tmpDir, "history")
	require.NoError(t, os.MkdirAll(historyDir, 0755))

	configContent := fmt.Sprintf(`history:
  driver: yaml
  directory: %s
report:
  timezone: UTC
log:
  file: %s
`,
		historyDir,
		filepath.Join(tmpDir, "logs", "leadgen.log"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKeys creates a config file with fake provider keys for
// tests that require API key validation to pass.
func SetupTestConfigWithAPIKeys(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte("anthropic:\n  api_key: fake-anthropic-key\ngemini:\n  api_key: fake-gemini-key\n")...)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// WriteFile writes contents to name under dir and returns the path.
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

// pdfTextOperator matches a literal string passed to the Tj operator. Text
// placed at a fixed position is written as "(text) Tj" and flowing text as
// "(text)Tj", so the whitespace is optional.
var pdfTextOperator = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s?Tj`)

var pdfStringUnescaper = strings.NewReplacer(`\\`, `\`, `\(`, "(", `\)`, ")")

// PDFTexts returns the unescaped strings drawn by Tj operators in an
// uncompressed PDF document, in content stream order.
func PDFTexts(doc []byte) []string {
	matches := pdfTextOperator.FindAllSubmatch(doc, -1)
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, pdfStringUnescaper.Replace(string(m[1])))
	}
	return texts
}
