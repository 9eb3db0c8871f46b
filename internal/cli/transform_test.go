package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/sigbridge/internal/transform"
)

func TestTransform_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	rulePath := writeFixture(t, "rules.xml", cliRuleDoc)
	outPath := filepath.Join(dir, "alarms.xml")

	out, err := execute(t, "transform", rulePath,
		"-o", outPath,
		"--report-prefix", filepath.Join(dir, "report"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 rule(s) processed, 1 alarm(s) generated")
	assert.Contains(t, out, outPath)
	assert.FileExists(t, outPath)

	data, rerr := os.ReadFile(outPath)
	require.NoError(t, rerr)
	assert.Contains(t, string(data), `name="Test Rule"`)
	assert.Contains(t, string(data), "47|12345")
}

func TestTransform_JSONResult(t *testing.T) {
	dir := t.TempDir()
	rulePath := writeFixture(t, "rules.xml", cliRuleDoc)

	out, err := execute(t, "--format", "json", "transform", rulePath,
		"--report-prefix", filepath.Join(dir, "report"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, merr := json.Marshal(resp.Data)
	require.NoError(t, merr)
	var result transform.RunResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.AlarmsGenerated)
	assert.NotEmpty(t, result.RunID)
}

func TestTransform_FailureExitsWithFailure(t *testing.T) {
	out, err := execute(t, "transform", filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestTransform_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixture(t, "cfg.yaml", "version: 9.9.9\nreport_prefix: "+filepath.Join(dir, "cfg_report")+"\n")

	doc := `<nitro_policy><rules><rule>
	  <id>47-1</id><message>m</message><severity>10</severity>
	  <text><![CDATA[<ruleset id="47-1"/>]]></text>
	</rule></rules></nitro_policy>`
	versionlessPath := writeFixture(t, "versionless.xml", doc)

	out, err := execute(t, "transform", versionlessPath, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "version 9.9.9")
}

func TestTransform_BadConfigIsCommandError(t *testing.T) {
	rulePath := writeFixture(t, "rules.xml", cliRuleDoc)
	cfgPath := writeFixture(t, "bad.yaml", "max_name_len: [oops\n")

	_, err := execute(t, "transform", rulePath, "--config", cfgPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
