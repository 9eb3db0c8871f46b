// Package synth renders the canonical, template-free alarm document shape.
//
// The skeleton is deliberately rigid: legacy consumers of the alarm export
// format expect exactly these children in exactly this order. Anything
// configurable arrives through Fields; everything else is a fixed default.
package synth

import (
	"fmt"

	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// Default values baked into the canonical alarm shape.
const (
	DefaultName          = "New Alarm"
	DefaultMinVersion    = "11.6.14"
	DefaultSeverity      = "50"
	DefaultMatchField    = "DSIDSigID"
	DefaultConditionType = "14"
	DefaultAssigneeID    = "655372"
	DefaultEscAssigneeID = "90118"
)

// Default condition-tuning values. The transformer's report columns quote
// these same constants, so they live here as the single source.
const (
	DefaultQueryID        = "0"
	DefaultAlertRateMin   = "0"
	DefaultAlertRateCount = "0"
	DefaultPctAbove       = "0"
	DefaultPctBelow       = "0"
	DefaultOffsetMin      = "0"
	DefaultXMin           = "10"
)

// Default device-scope filter applied to synthesized alarms.
const (
	defaultDeviceMask   = "40"
	defaultConstraintID = "144116287604260864"
)

// DefaultSummaryTemplate is the notification summary placed on every
// synthesized alarm. The [$...] placeholders are expanded by the platform,
// not by sigbridge.
const DefaultSummaryTemplate = `Alarm Name: [$Rule Message]

The following events were found

[$REPEAT_START]----------
EventID         = [$Event ID]
Action          = [$Event Subtype]
Source User     = [$%UserIDSrc]
Source IP       = [$Source IP]
Source Port     = [$Source Port]
Destination IP  = [$Destination IP]
Destination Port= [$Destination Port]
Domain          = [$%External_Hostname]
Count           = [$Event Count]
Rule            = [$Rule Message]
[$REPEAT_END]`

// Fields are the caller-controlled values substituted into the skeleton.
// Zero values fall back to the package defaults above.
type Fields struct {
	Name          string
	MinVersion    string
	Severity      string
	Note          string
	MatchField    string
	MatchValue    string
	ConditionType string
	AssigneeID    string
	EscAssigneeID string
}

func (f Fields) withDefaults() Fields {
	def := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return Fields{
		Name:          def(f.Name, DefaultName),
		MinVersion:    def(f.MinVersion, DefaultMinVersion),
		Severity:      def(f.Severity, DefaultSeverity),
		Note:          f.Note,
		MatchField:    def(f.MatchField, DefaultMatchField),
		MatchValue:    f.MatchValue,
		ConditionType: def(f.ConditionType, DefaultConditionType),
		AssigneeID:    def(f.AssigneeID, DefaultAssigneeID),
		EscAssigneeID: def(f.EscAssigneeID, DefaultEscAssigneeID),
	}
}

// Synthesize renders one complete <alarm> element from the fixed skeleton.
// Pure: identical fields always produce an identical document. All free-text
// fields are escaped for the output markup.
func Synthesize(fields Fields) string {
	f := fields.withDefaults()
	esc := xmltree.EscapeText

	return fmt.Sprintf(`<alarm name="%s" minVersion="%s">
  <alarmData>
    <filters></filters>
    <note>%s</note>
    <notificationType>0</notificationType>
    <severity>%s</severity>
    <escEnabled>F</escEnabled>
    <escSeverity>%s</escSeverity>
    <escMin>0</escMin>
    <summaryTemplate>%s</summaryTemplate>
    <assignee>%s</assignee>
    <assigneeType>1</assigneeType>
    <escAssignee>%s</escAssignee>
    <escAssigneeType>0</escAssigneeType>
    <deviceIDs>
      <deviceFilter mask="%s">
        <constraintFilter type="ID" value="%s"/>
      </deviceFilter>
    </deviceIDs>
  </alarmData>
  <conditionData>
    <conditionType>%s</conditionType>
    <queryID>%s</queryID>
    <alertRateMin>%s</alertRateMin>
    <alertRateCount>%s</alertRateCount>
    <pctAbove>%s</pctAbove>
    <pctBelow>%s</pctBelow>
    <offsetMin>%s</offsetMin>
    <timeFilter></timeFilter>
    <xMin>%s</xMin>
    <useWatchlist>F</useWatchlist>
    <matchField>%s</matchField>
    <matchValue>%s</matchValue>
    <matchNot>F</matchNot>
  </conditionData>
  <actions>
    <actionData>
      <actionType>0</actionType>
      <actionProcess>9</actionProcess>
      <actionAttributes>
        <attribute name="TimeZoneID">77</attribute>
        <attribute name="SyslogTemplateID">0</attribute>
        <attribute name="SNMPTemplateID">0</attribute>
        <attribute name="SMSTemplateID">0</attribute>
        <attribute name="EmailTemplateID">8206</attribute>
        <attribute name="UserIDs"></attribute>
        <attribute name="EmailGroupIDs">1</attribute>
        <attribute name="EmailIDs"></attribute>
        <attribute name="MsgEnabled">F</attribute>
        <attribute name="TimeDateFormat">12</attribute>
      </actionAttributes>
    </actionData>
    <actionData>
      <actionType>0</actionType>
      <actionProcess>7</actionProcess>
      <actionAttributes>
        <attribute name="AudioFileName">audio/YWxlcnQubXAz</attribute>
      </actionAttributes>
    </actionData>
    <actionData>
      <actionType>0</actionType>
      <actionProcess>6</actionProcess>
      <actionAttributes></actionAttributes>
    </actionData>
    <actionData>
      <actionType>0</actionType>
      <actionProcess>1</actionProcess>
      <actionAttributes></actionAttributes>
    </actionData>
    <actionData>
      <actionType>1</actionType>
      <actionProcess>1</actionProcess>
      <actionAttributes></actionAttributes>
    </actionData>
  </actions>
</alarm>`,
		esc(f.Name), esc(f.MinVersion),
		esc(f.Note),
		esc(f.Severity),
		esc(f.Severity),
		esc(DefaultSummaryTemplate),
		esc(f.AssigneeID),
		esc(f.EscAssigneeID),
		defaultDeviceMask, defaultConstraintID,
		esc(f.ConditionType),
		DefaultQueryID,
		DefaultAlertRateMin,
		DefaultAlertRateCount,
		DefaultPctAbove,
		DefaultPctBelow,
		DefaultOffsetMin,
		DefaultXMin,
		esc(f.MatchField),
		esc(f.MatchValue),
	)
}
