package gmail

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// Analysis is the classifier result for one header block.
type Analysis struct {
	Verdict  Verdict
	Findings []string
}

// IsSpam reports whether any authentication check failed.
func (a Analysis) IsSpam() bool {
	return a.Verdict == VerdictSpam
}

// Report renders the verdict line followed by one finding per line.
func (a Analysis) Report() string {
	lines := make([]string, 0, len(a.Findings)+1)
	lines = append(lines, "Verdict: "+string(a.Verdict))
	lines = append(lines, a.Findings...)
	return strings.Join(lines, "\n")
}

var authChecks = []struct {
	token   string
	finding string
}{
	{"spf=fail", "SPF check failed (spf=fail): sending IP not authorized for the domain"},
	{"dkim=fail", "DKIM check failed (dkim=fail): signature invalid, headers may be tampered"},
	{"dmarc=fail", "DMARC check failed (dmarc=fail): domain policy not satisfied"},
}

// Classify inspects the Authentication-Results and Received headers of headerText.
//
// Each failed mechanism adds a finding in spf, dkim, dmarc order and the Received
// count is always appended. The verdict is SPAM iff an authentication check
// failed; the hop count never changes it. Malformed input is classified on
// whatever header fields could be parsed.
func Classify(headerText string) Analysis {
	h := parseHeader(headerText)

	authResults := strings.ToLower(h.Get("Authentication-Results"))

	var findings []string
	for _, check := range authChecks {
		if strings.Contains(authResults, check.token) {
			findings = append(findings, check.finding)
		}
	}

	verdict := VerdictClean
	if len(findings) > 0 {
		verdict = VerdictSpam
	}

	findings = append(findings, fmt.Sprintf("Received header count: %d", countField(h, "Received")))

	return Analysis{Verdict: verdict, Findings: findings}
}

// Subject returns the decoded Subject of a header block, "(no subject)" when the
// field is absent. A present but blank Subject stays empty.
func Subject(headerText string) string {
	h := mail.Header{Header: message.Header{Header: parseHeader(headerText)}}
	if !h.Has("Subject") {
		return noSubject
	}
	subject, err := h.Subject()
	if err != nil {
		// Unknown charset: fall back to the undecoded value.
		subject = h.Get("Subject")
	}
	return subject
}

const noSubject = "(no subject)"

// parseHeader reads as many header fields as it can. Parse errors are dropped.
func parseHeader(headerText string) textproto.Header {
	h, _ := textproto.ReadHeader(bufio.NewReader(strings.NewReader(HeaderBlock(headerText))))
	return h
}

func countField(h textproto.Header, key string) int {
	n := 0
	fields := h.FieldsByKey(key)
	for fields.Next() {
		n++
	}
	return n
}
