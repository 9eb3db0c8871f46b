package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/sigbridge/internal/xmltree"
)

const runRuleDoc = `<nitro_policy version="11.2.0">
  <rules>
    <rule>
      <id>47-12345</id>
      <message>Test Rule</message>
      <severity>75</severity>
      <description>first rule</description>
      <text><![CDATA[<ruleset id="47-12345"/>]]></text>
    </rule>
    <rule>
      <id>unresolvable</id>
      <message>No Signature</message>
      <severity>10</severity>
      <text><![CDATA[<ruleset id="none"/>]]></text>
    </rule>
  </rules>
</nitro_policy>`

func writeRunFixture(t *testing.T, dir, doc string) string {
	t.Helper()
	path := filepath.Join(dir, "rules.xml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	rulePath := writeRunFixture(t, dir, runRuleDoc)
	outPath := filepath.Join(dir, "alarms.xml")

	result := Run(Request{
		RuleFile:   rulePath,
		OutputFile: outPath,
		Options:    Options{ReportPrefix: filepath.Join(dir, "report")},
	})

	require.True(t, result.Success, "run failed: %s", result.Error)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "11.2.0", result.Version)
	assert.Equal(t, 2, result.RulesProcessed)
	assert.Equal(t, 1, result.AlarmsGenerated)

	require.Len(t, result.SkippedRules, 1)
	assert.Equal(t, "unresolvable", result.SkippedRules[0].RuleID)
	assert.Contains(t, result.SkippedRules[0].Reason, "signature")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	root, err := xmltree.ParseString(string(data))
	require.NoError(t, err)

	els := root.FindAll("alarm")
	require.Len(t, els, 1)
	name, _ := els[0].Attr("name")
	assert.Equal(t, "Test Rule", name)
	minVersion, _ := els[0].Attr("minVersion")
	assert.Equal(t, "11.2.0", minVersion)
	assert.Equal(t, "47|12345", els[0].TextOf("conditionData", "matchValue"))
	assert.Equal(t, "75", els[0].TextOf("alarmData", "severity"))
	assert.Equal(t, "first rule", els[0].TextOf("alarmData", "note"))

	// The report pair exists and shares one timestamp suffix.
	assert.FileExists(t, result.CSVReport)
	assert.FileExists(t, result.HTMLReport)
	csvBase := filepath.Base(result.CSVReport)
	htmlBase := filepath.Base(result.HTMLReport)
	assert.Equal(t,
		csvBase[:len(csvBase)-len(".csv")],
		htmlBase[:len(htmlBase)-len(".html")])

	csvData, err := os.ReadFile(result.CSVReport)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "Rule ID,Alarm Name,Severity,Match Value")
	assert.Contains(t, string(csvData), "47-12345,Test Rule,75,47|12345,first rule")
}

func TestRun_TemplatePath(t *testing.T) {
	dir := t.TempDir()
	rulePath := writeRunFixture(t, dir, runRuleDoc)
	tplPath := filepath.Join(dir, "tpl.xml")
	require.NoError(t, os.WriteFile(tplPath, []byte(templateDoc), 0o644))
	outPath := filepath.Join(dir, "alarms.xml")

	result := Run(Request{
		RuleFile:     rulePath,
		OutputFile:   outPath,
		TemplateFile: tplPath,
		Options:      Options{ReportPrefix: filepath.Join(dir, "report")},
	})

	require.True(t, result.Success, "run failed: %s", result.Error)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	root, err := xmltree.ParseString(string(data))
	require.NoError(t, err)

	el := root.Find("alarm")
	require.NotNil(t, el)
	assert.Equal(t, "kept", el.TextOf("alarmData", "customField"))
	assert.Equal(t, "47|12345", el.TextOf("conditionData", "matchValue"))
}

func TestRun_FailuresReturnStructuredResult(t *testing.T) {
	dir := t.TempDir()

	t.Run("unreadable rule file", func(t *testing.T) {
		result := Run(Request{RuleFile: filepath.Join(dir, "missing.xml")})
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
		assert.Zero(t, result.RulesProcessed)
		assert.Zero(t, result.AlarmsGenerated)
	})

	t.Run("unreadable template", func(t *testing.T) {
		rulePath := writeRunFixture(t, dir, runRuleDoc)
		result := Run(Request{
			RuleFile:     rulePath,
			TemplateFile: filepath.Join(dir, "missing-tpl.xml"),
		})
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("empty rule document", func(t *testing.T) {
		path := filepath.Join(dir, "empty.xml")
		require.NoError(t, os.WriteFile(path, []byte(`<nitro_policy><rules/></nitro_policy>`), 0o644))
		result := Run(Request{RuleFile: path})
		assert.False(t, result.Success)
	})
}

func TestRun_FallsBackToConfiguredVersion(t *testing.T) {
	dir := t.TempDir()
	doc := `<nitro_policy><rules><rule>
	  <id>47-1</id><message>m</message><severity>10</severity>
	  <text><![CDATA[<ruleset id="47-1"/>]]></text>
	</rule></rules></nitro_policy>`
	rulePath := writeRunFixture(t, dir, doc)

	result := Run(Request{
		RuleFile: rulePath,
		Options:  Options{Version: "12.0.0", ReportPrefix: filepath.Join(dir, "report")},
	})
	require.True(t, result.Success, "run failed: %s", result.Error)
	assert.Equal(t, "12.0.0", result.Version)
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()

	t.Run("overlays defaults", func(t *testing.T) {
		path := filepath.Join(dir, "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_name_len: 50\nreport_prefix: custom\n"), 0o644))

		opts, err := LoadOptions(path)
		require.NoError(t, err)
		assert.Equal(t, 50, opts.MaxNameLen)
		assert.Equal(t, "custom", opts.ReportPrefix)
		assert.Equal(t, DefaultOptions().Version, opts.Version)
		assert.Equal(t, "47", opts.DefaultPrefix)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_name_len: [oops\n"), 0o644))
		_, err := LoadOptions(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadOptions(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
