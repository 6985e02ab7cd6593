package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{"", ModeText},
		{"markdown", ModeText},
		{ModeText, ModeText},
		{ModeJSON, ModeJSON},
		{ModeYAML, ModeYAML},
		{ModeTable, ModeTable},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, false, tt.mode, ColorAuto)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestStylesRespectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		isTTY    bool
		color    ColorMode
		wantANSI bool
	}{
		{"never on tty", true, ColorNever, false},
		{"auto off tty", false, ColorAuto, false},
		{"always off tty", false, ColorAlways, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, ModeText, tt.color)
			got := r.Styles().Error.Render("boom")
			assert.Equal(t, tt.wantANSI, got != "boom", "rendered %q", got)
			assert.Contains(t, got, "boom")
		})
	}
}

func TestEncode(t *testing.T) {
	v := map[string]any{"code": "SC1001", "line": 1}

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON, ColorNever)
		require.NoError(t, r.Encode(v))
		assert.JSONEq(t, `{"code":"SC1001","line":1}`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeYAML, ColorNever)
		require.NoError(t, r.Encode(v))
		assert.YAMLEq(t, "code: SC1001\nline: 1\n", out.String())
	})

	t.Run("text", func(t *testing.T) {
		r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, false, ModeText, ColorNever)
		assert.Error(t, r.Encode(v))
		assert.False(t, r.IsStructured())
	})
}

func TestPrint(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText, ColorNever)
	r.Println("a", "b")
	r.Printf("%d\n", 3)
	r.Errorf("oops %s\n", "x")

	assert.Equal(t, "a b\n3\n", out.String())
	assert.Equal(t, "oops x\n", errOut.String())
	assert.False(t, r.IsTTY())
	assert.Same(t, &out, r.Writer())
}
