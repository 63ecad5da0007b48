package topic

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrMalformedVerdict is returned when the model responded but the
// required Is_On_Topic label is absent. It is surfaced, never defaulted:
// assuming "on topic" would mask drift and assuming "off topic" would
// cause false interventions.
var ErrMalformedVerdict = errors.New("malformed verdict")

var (
	// onTopicLabel captures the rest of the line after the label.
	onTopicLabel = regexp.MustCompile(`(?i)is_on_topic\s*:([^\n]*)`)
	yesToken     = regexp.MustCompile(`(?i)\byes\b`)
)

// ParseVerdict extracts the boolean verdict from raw model output. The
// verdict is true iff the token "yes" appears after the Is_On_Topic label
// on the same line, in any case and with any surrounding punctuation.
func ParseVerdict(raw string) (bool, error) {
	m := onTopicLabel.FindStringSubmatch(raw)
	if m == nil {
		return false, fmt.Errorf("%w: response lacks Is_On_Topic label", ErrMalformedVerdict)
	}
	return yesToken.MatchString(m[1]), nil
}
