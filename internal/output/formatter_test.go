package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmello/clamtap/pkg/types"
)

func sampleFindings() []types.Finding {
	f1 := types.NewFinding("Malware identified",
		`ClamAV identified malware at URL: "http://x/eicar.com", the matched signature name is "Eicar-Test-Signature".`,
		"http://x/eicar.com", "1", "clamav")
	f1.Metadata = map[string]string{"signature": "Eicar-Test-Signature"}

	f2 := types.NewFinding("Malware identified",
		`ClamAV identified malware at URL: "http://x/dropper.exe", the matched signature name is "Win.Trojan.Agent-1".`,
		"http://x/dropper.exe", "2", "clamav")
	f2.Metadata = map[string]string{"signature": "Win.Trojan.Agent-1"}

	return []types.Finding{f1, f2}
}

func TestGetFormatter(t *testing.T) {
	f, err := GetFormatter("table")
	require.NoError(t, err)
	assert.IsType(t, &TableFormatter{}, f)

	f, err = GetFormatter("json")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	f, err = GetFormatter("markdown")
	require.NoError(t, err)
	assert.IsType(t, &MarkdownFormatter{}, f)
}

func TestGetFormatter_Unknown(t *testing.T) {
	_, err := GetFormatter("xml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, sampleFindings())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "http://x/eicar.com")
	assert.Contains(t, out, "Eicar-Test-Signature")
	assert.Contains(t, out, "2 findings")
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No findings.")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := (&JSONFormatter{}).Format(&buf, sampleFindings())
	require.NoError(t, err)

	var decoded []types.Finding
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "Malware identified", decoded[0].Title)
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := (&MarkdownFormatter{}).Format(&buf, sampleFindings())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "| Severity | Title | URL | Signature |")
	assert.Contains(t, out, "Win.Trojan.Agent-1")
	assert.Contains(t, out, "**Summary:** 2 findings")
}

func TestMarkdownFormatter_EscapesPipes(t *testing.T) {
	f := types.NewFinding("Malware identified", "d", "http://x/a|b", "1", "clamav")

	var buf bytes.Buffer
	err := (&MarkdownFormatter{}).Format(&buf, []types.Finding{f})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `http://x/a\|b`)
}
