package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "xsdtree.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
follow = true
root = "schemas"
format = "json"
never_follow = ["empty", "text"]
control_attribute = ""
jobs = 4

[[schema]]
path = "F02_2014.xsd"
source = "F02"

[[schema]]
path = "sub/F03_2014.xsd"
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Follow)
	assert.Equal(t, "schemas", cfg.Root)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 16, cfg.MaxDepth)
	assert.Equal(t, []string{"empty", "text"}, cfg.NeverFollow)
	assert.Empty(t, cfg.ControlAttribute)
	assert.Equal(t, 4, cfg.Jobs)
	require.Len(t, cfg.Schemas, 2)
	assert.Equal(t, "F02", SourceOf(cfg.Schemas[0]))
	assert.Equal(t, "F03_2014", SourceOf(cfg.Schemas[1]))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `follow = false`))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "syntax", body: `follow = `, want: "failed to parse TOML"},
		{name: "unknown key", body: "follw = true\n", want: "unknown keys: follw"},
		{name: "schema without path", body: "[[schema]]\nsource = \"F01\"\n", want: "missing path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "xml" }},
		{"max depth", func(c *Config) { c.MaxDepth = 0 }},
		{"jobs", func(c *Config) { c.Jobs = 0 }},
		{"root", func(c *Config) { c.Root = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.MaxDepth = -1
	require.Error(t, cfg.Options(nil, nil).Validate())

	cfg = Default()
	cfg.AddSchemas("a.xsd", "b.xsd")
	require.NoError(t, cfg.Options(nil, nil).Validate())
	assert.Equal(t, []Schema{{Path: "a.xsd"}, {Path: "b.xsd"}}, cfg.Schemas)
}
