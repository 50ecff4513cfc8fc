package selectors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-apply/internal/domain/entity"
)

func TestDefault(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	for name, chain := range cat.Chains() {
		assert.NotEmpty(t, *chain, name)
	}
	assert.Equal(t, "button.jobs-apply-button", cat.ApplyButton[0])
	assert.Equal(t, "a[aria-label*='Easy Apply']", cat.ApplyButton[len(cat.ApplyButton)-1])
	assert.Equal(t, entity.SelectorChain{".jobs-easy-apply-content", "div[role='dialog']", ".jobs-easy-apply-modal"}, cat.Modal)
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("submit:\n  - \"button.send\"\n"), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, entity.SelectorChain{"button.send"}, cat.Submit)
	assert.Equal(t, "button[aria-label='Continue to next step']", cat.Next[0])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr error
		msg     string
	}{
		{name: "unknown chain", content: "apply:\n  - \"button\"\n", msg: `unknown selector chain "apply"`},
		{name: "empty chain", content: "modal: []\n", wantErr: entity.ErrEmptyChain},
		{name: "blank candidate", content: "modal:\n  - \" \"\n", msg: "blank"},
		{name: "not yaml", content: "modal: [", msg: "decode"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, string(rune('a'+i))+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read selector catalog")
}

func TestLoad_NoPath(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, def, cat)
}
