package ladder

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"racemaster-go/utils"
)

func displayRacer(r *Racer) string {
	if r.IsMention {
		return fmt.Sprintf("%s %s", r.Label, r.Mention)
	}
	return fmt.Sprintf("**%s**", r.Label)
}

func displayWinner(r *Racer) string {
	if r.IsMention {
		return fmt.Sprintf("**%s** %s", r.Label, r.Mention)
	}
	return fmt.Sprintf("**%s**", r.Label)
}

// Text renders the ladder message body.
func (s *State) Text() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var lines []string
	name := s.EventName
	if name == "" {
		name = "Drag Event"
	}
	lines = append(lines, fmt.Sprintf("🏁 **%s**", name))
	lines = append(lines, fmt.Sprintf("🏁 **Round %d**", s.Round))
	lines = append(lines, "")

	for idx, m := range s.Matches {
		w := ""
		if m.Winner != nil {
			w = fmt.Sprintf(" ✅ Winner: %s", displayWinner(m.Winner))
		}
		lines = append(lines, fmt.Sprintf("**Race %d:** %s vs %s%s", idx+1, displayRacer(m.A), displayRacer(m.B), w))
	}

	if s.Bye != nil {
		lines = append(lines, "", fmt.Sprintf("🏁 **Bye Run:** %s (auto-advances) ✅", displayWinner(s.Bye)))
	}

	if s.Complete {
		lines = append(lines, "", fmt.Sprintf("🏆 **Event Winner:** %s", displayWinner(s.Champion)))
	}

	return strings.Join(lines, "\n")
}

// Buttons renders the winner-selection buttons plus the next-round button
// when the round is fully decided and more than one competitor remains.
// Discord caps action rows at five buttons.
func (s *State) Buttons() []discordgo.MessageComponent {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent

	flush := func() {
		if len(row) > 0 {
			rows = append(rows, utils.CreateActionRow(row...))
			row = nil
		}
	}
	add := func(btn discordgo.MessageComponent) {
		if len(row) >= 5 {
			flush()
		}
		row = append(row, btn)
	}

	for idx, m := range s.Matches {
		styleA := discordgo.SecondaryButton
		if m.Winner != nil && m.Winner.Raw == m.A.Raw {
			styleA = discordgo.SuccessButton
		}
		styleB := discordgo.SecondaryButton
		if m.Winner != nil && m.Winner.Raw == m.B.Raw {
			styleB = discordgo.SuccessButton
		}

		add(utils.CreateButton(fmt.Sprintf("win:%d:a", idx), fmt.Sprintf("R%d: %s", idx+1, m.A.Label), styleA, s.Complete, nil))
		add(utils.CreateButton(fmt.Sprintf("win:%d:b", idx), fmt.Sprintf("R%d: %s", idx+1, m.B.Label), styleB, s.Complete, nil))
	}

	if !s.Complete && s.allDecided() && len(s.survivors()) > 1 {
		add(utils.CreateButton("next_round", fmt.Sprintf("Start Round %d", s.Round+1), discordgo.PrimaryButton, false, nil))
	}

	flush()
	return rows
}
