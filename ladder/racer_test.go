package ladder

import "testing"

func TestParseRacerTokenMention(t *testing.T) {
	for _, tok := range []string{"<@123456>", "<@!123456>", "  <@123456>  "} {
		r := ParseRacerToken(tok)
		if !r.IsMention {
			t.Errorf("expected %q to parse as mention", tok)
		}
		if r.UserID != "123456" {
			t.Errorf("expected user id 123456, got %q", r.UserID)
		}
		if r.Mention != "<@123456>" {
			t.Errorf("expected normalized mention, got %q", r.Mention)
		}
		if r.Label != "@123456" {
			t.Errorf("expected clean label, got %q", r.Label)
		}
	}
}

func TestParseRacerTokenPlainText(t *testing.T) {
	r := ParseRacerToken("  Big Mike ")
	if r.IsMention {
		t.Error("plain text should not parse as mention")
	}
	if r.Raw != "Big Mike" || r.Label != "Big Mike" || r.Mention != "Big Mike" {
		t.Errorf("unexpected parse result: %+v", r)
	}
	if r.UserID != "" {
		t.Errorf("plain text should have no user id, got %q", r.UserID)
	}
}

func TestSplitRacerTokens(t *testing.T) {
	tokens := SplitRacerTokens("Alice\nBob, Carol\r\n  \n<@99>")
	want := []string{"Alice", "Bob", "Carol", "<@99>"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i] != w {
			t.Errorf("token %d: expected %q, got %q", i, w, tokens[i])
		}
	}
}
