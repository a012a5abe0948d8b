package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const goodSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="A">
    <xs:complexType>
      <xs:sequence><xs:element name="B" type="xs:string"/></xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`

const badSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="A">
    <xs:complexType><xs:sequence minOccurs="0"><xs:element name="B" type="xs:string"/></xs:sequence></xs:complexType>
  </xs:element>
</xs:schema>`

func schemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.xsd"), []byte(goodSchema), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.xsd"), []byte(badSchema), 0o600))
	return dir
}

func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestFlattenCSV(t *testing.T) {
	dir := schemaDir(t)

	code, stdout, stderr := runCmd("flatten", "--root", dir, "--max-depth", "2", "good.xsd")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "source,path,level0,level1,kind,name,"))
	assert.True(t, strings.HasPrefix(lines[1], "good,1,1,,element,A,"))
	assert.True(t, strings.HasPrefix(lines[2], "good,1.1,1,1,element,B,"))
}

func TestFlattenJSONToFile(t *testing.T) {
	dir := schemaDir(t)
	out := filepath.Join(t.TempDir(), "rows.json")

	code, stdout, stderr := runCmd("flatten", "--root", dir, "--format", "json", "-o", out, "good.xsd")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "1.1", rows[1]["path"])
}

func TestFlattenPartialFailure(t *testing.T) {
	dir := schemaDir(t)

	code, stdout, stderr := runCmd("flatten", "--root", dir, "--jobs", "2", "good.xsd", "bad.xsd")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "good,1.1,")
	assert.NotContains(t, stdout, "bad,")
	assert.Contains(t, stderr, "bad.xsd: [shape-attribute-unexpected] unexpected attribute minOccurs")
	assert.Contains(t, stderr, "at bad.xsd:/xs:schema/xs:element/xs:complexType/xs:sequence")
}

func TestCheck(t *testing.T) {
	dir := schemaDir(t)

	code, stdout, stderr := runCmd("check", "--root", dir, "good.xsd")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "good.xsd: ok (2 entries)\n", stdout)

	code, _, stderr = runCmd("check", "--root", dir, "--fail-fast", "bad.xsd", "good.xsd")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[shape-attribute-unexpected]")
}

func TestConfigFile(t *testing.T) {
	dir := schemaDir(t)
	cfgPath := filepath.Join(t.TempDir(), "xsdtree.toml")
	cfg := "root = " + strconv.Quote(dir) + `
format = "yaml"

[[schema]]
path = "good.xsd"
source = "G"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	code, stdout, stderr := runCmd("flatten", "--config", cfgPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "source: G")

	code, stdout, stderr = runCmd("flatten", "--config", cfgPath, "--format", "csv")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "source,path,"))
}

func TestUsageErrors(t *testing.T) {
	dir := schemaDir(t)
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"no schema", []string{"flatten", "--root", dir}, 2, "at least one schema is required"},
		{"unknown flag", []string{"flatten", "--bogus", "good.xsd"}, 2, "unknown flag"},
		{"bad format", []string{"flatten", "--root", dir, "--format", "xml", "good.xsd"}, 2, "unknown format"},
		{"zero jobs", []string{"check", "--root", dir, "--jobs", "0", "good.xsd"}, 2, "jobs must be positive"},
		{"missing config", []string{"check", "--config", filepath.Join(dir, "absent.toml"), "good.xsd"}, 1, "absent.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestVerboseLogs(t *testing.T) {
	dir := schemaDir(t)

	code, _, stderr := runCmd("check", "--root", dir, "-v", "good.xsd")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "schema document loaded")
}

func TestFailFastSkipsRemainingSchemas(t *testing.T) {
	dir := schemaDir(t)

	code, stdout, stderr := runCmd("check", "--root", dir, "--fail-fast", "--jobs", "1", "bad.xsd", "good.xsd")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "bad.xsd: [shape-attribute-unexpected]")
	assert.Contains(t, stderr, "good.xsd: skipped\n")

	code, stdout, _ = runCmd("check", "--root", dir, "--jobs", "1", "bad.xsd", "good.xsd")
	assert.Equal(t, 1, code)
	assert.Equal(t, "good.xsd: ok (2 entries)\n", stdout)
}

func TestProfiles(t *testing.T) {
	dir := schemaDir(t)
	out := t.TempDir()
	cpu := filepath.Join(out, "cpu.pprof")
	mem := filepath.Join(out, "mem.pprof")

	code, _, stderr := runCmd("check", "--root", dir, "--cpuprofile", cpu, "--memprofile", mem, "good.xsd")
	require.Equal(t, 0, code, stderr)
	for _, p := range []string{cpu, mem} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
	}

	missing := filepath.Join(out, "absent", "mem.pprof")
	code, _, stderr = runCmd("flatten", "--root", dir, "--memprofile", missing, "good.xsd")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "mem profile")
}
