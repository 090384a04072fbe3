package ladder

import (
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

// Racer is one competitor in a ladder. Parsed once from input and immutable
// afterwards. A racer is either a linked platform user (mention token) or
// free text.
type Racer struct {
	Raw       string
	UserID    string
	IsMention bool
	Mention   string
	Label     string
}

// ParseRacerToken parses a single racer token. Mentions (<@123> or <@!123>)
// become linked racers; anything else is kept as plain text. Button labels
// cannot render mentions, so Label carries a clean text form.
func ParseRacerToken(token string) *Racer {
	t := strings.TrimSpace(token)

	if m := mentionPattern.FindStringSubmatch(t); m != nil {
		id := m[1]
		return &Racer{
			Raw:       t,
			UserID:    id,
			IsMention: true,
			Mention:   "<@" + id + ">",
			Label:     "@" + id,
		}
	}

	return &Racer{
		Raw:     t,
		Mention: t,
		Label:   t,
	}
}

// SplitRacerTokens splits free text into racer tokens, one per line or
// comma separated. Blank tokens are dropped; deduplication happens during
// ladder creation.
func SplitRacerTokens(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
