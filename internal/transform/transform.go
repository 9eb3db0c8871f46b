// Package transform turns rule records into alarm records and assembles the
// resulting alarm export document, with a tabular report per run.
package transform

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/synth"
)

// fingerprintLen is the hex length of the truncation suffix; together with
// the '_' separator it consumes 9 of the allowed name characters.
const fingerprintLen = 8

// TruncateName bounds name to maxLen bytes. Short names pass through
// unchanged. Long names keep their first maxLen-9 bytes, trimmed back to a
// rune boundary so the result stays valid UTF-8, and gain a "_<fingerprint>"
// suffix computed from the original, untruncated name, so two long names
// sharing a prefix still diverge. Pure: the same name always yields the same
// result. maxLen values too small to hold any of the name degrade to the
// fingerprint alone, never below valid output.
func TruncateName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	sum := sha1.Sum([]byte(name))
	fingerprint := hex.EncodeToString(sum[:])[:fingerprintLen]

	keep := maxLen - fingerprintLen - 1
	if keep < 1 {
		if maxLen <= 0 {
			return ""
		}
		if maxLen < fingerprintLen {
			return fingerprint[:maxLen]
		}
		return fingerprint
	}

	prefix := name[:keep]
	for len(prefix) > 0 && !utf8.ValidString(prefix) {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix + "_" + fingerprint
}

// Transform maps one rule to an alarm record.
//
// The alarm name is the rule message, falling back to the rule identifier,
// truncated via TruncateName. The match value is "<prefix>|<signature>"
// where prefix comes from the rule's own identifier when it has one and
// defaultPrefix otherwise, and signature is the explicit sigID override when
// non-empty, else the rule's resolved signature. Callers must not pass rules
// with no resolvable signature; the orchestrator excludes and reports those.
func Transform(rule record.Rule, maxLen int, version, sigID, defaultPrefix string) record.Alarm {
	name := rule.Message
	if name == "" {
		name = rule.ID
	}

	signature := sigID
	if signature == "" {
		signature = rule.SigID.SigID
	}
	prefix := defaultPrefix
	if strings.Contains(rule.ID, "-") {
		prefix = rule.Prefix()
	}

	return record.Alarm{
		Name:          TruncateName(name, maxLen),
		MinVersion:    version,
		Severity:      rule.Severity,
		Note:          rule.Description,
		ConditionType: synth.DefaultConditionType,
		MatchField:    synth.DefaultMatchField,
		MatchValue:    prefix + "|" + signature,
	}
}
