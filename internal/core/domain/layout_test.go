package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/forge/internal/core/domain"
)

func TestLayoutPaths(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "DefaultForgePath",
			got:      domain.DefaultForgePath(),
			expected: ".forge",
		},
		{
			name:     "DefaultStorePath",
			got:      domain.DefaultStorePath(),
			expected: filepath.Join(".forge", "store"),
		},
		{
			name:     "DefaultDebugLogPath",
			got:      domain.DefaultDebugLogPath(),
			expected: filepath.Join(".forge", "debug.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestNewLayout(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "site")

	l := domain.NewLayout(root, "", "")
	assert.Equal(t, filepath.Join(root, "src"), l.Source)
	assert.Equal(t, filepath.Join(root, "dist"), l.Output)
	assert.Equal(t, filepath.Join(root, ".forge"), l.StateDir())

	abs := filepath.Join(string(filepath.Separator), "tmp", "out")
	l = domain.NewLayout(root, "assets/", abs)
	assert.Equal(t, filepath.Join(root, "assets"), l.Source)
	assert.Equal(t, abs, l.Output)
}
