package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"text", ModeText},
		{"markdown", ModeMarkdown},
		{"json", ModeJSON},
		{"", ModeAuto},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}

	_, err := ParseMode("yaml")
	assert.Error(t, err)
	m, err := ParseMode("json")
	require.NoError(t, err)
	assert.Equal(t, ModeJSON, m)
}

func TestOutputMode_Resolve(t *testing.T) {
	assert.Equal(t, ModeText, ModeAuto.Resolve(true))
	assert.Equal(t, ModeMarkdown, ModeAuto.Resolve(false))
	assert.Equal(t, ModeJSON, ModeJSON.Resolve(true))
}

func TestRenderer_NonTTYHasNoANSI(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	r := NewRendererWithTTY(out, errOut, false, ModeText)

	r.Header(1, "Setups")
	r.Success("done")
	r.Muted("quiet")
	r.StatusLine("api", "success", "(dev)")
	r.Warning("careful")
	r.Error("broken")

	assert.False(t, ansiPattern.MatchString(out.String()), out.String())
	assert.False(t, ansiPattern.MatchString(errOut.String()), errOut.String())
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, out.String(), "✓ api (dev)")
	assert.Contains(t, errOut.String(), "! careful")
	assert.Contains(t, errOut.String(), "✗ broken")
}

func TestRenderer_MarkdownHeader(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.Mode())

	r.Header(2, "Envs")
	assert.Equal(t, "## Envs\n\n", out.String())
}

func TestRenderer_Table(t *testing.T) {
	tests := []struct {
		name string
		mode OutputMode
		want []string
	}{
		{name: "markdown", mode: ModeMarkdown, want: []string{"| SETUP", "| API", "| ---"}},
		{name: "text", mode: ModeText, want: []string{"SETUP", "API", "DEV", "┌"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			r := NewRendererWithTTY(out, &bytes.Buffer{}, false, tt.mode)
			r.Table([]string{"setup", "env"}, [][]string{{"api", "dev"}})
			got := strings.ToUpper(out.String())
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestRenderer_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeJSON)
	require.NoError(t, r.JSON(map[string]string{"setup": "api"}))
	assert.JSONEq(t, `{"setup":"api"}`, out.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# A\n", FormatHeader(0, "A"))
	assert.Equal(t, "###### A\n", FormatHeader(9, "A"))
	assert.Equal(t, "```sh\necho\n```", FormatCodeBlock("sh", "echo\n"))
}

func TestRenderer_Code(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeMarkdown)
	r.Code("sh", "echo hi\n")
	assert.Equal(t, "```sh\necho hi\n```\n", out.String())

	out.Reset()
	r = NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeText)
	r.Code("sh", "echo hi\n")
	assert.Equal(t, "echo hi\n", out.String())
}
