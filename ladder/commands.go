package ladder

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"racemaster-go/utils"
)

// Package configuration, set once from main before the session opens.
var (
	ChannelID      string
	DirectorRoleID string

	Ladders = NewManager()
)

// RegisterPairCommand returns the /pair slash command definition.
func RegisterPairCommand() *discordgo.ApplicationCommand {
	manageEvents := int64(discordgo.PermissionManageEvents)
	return &discordgo.ApplicationCommand{
		Name:                     "pair",
		Description:              "Create a randomized drag racing ladder from racer names (one per line).",
		DefaultMemberPermissions: &manageEvents,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "event", Description: "Event name (ex: Sunday Grudge Night)", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "racers", Description: "Paste racer names (one per line).", Required: true},
		},
	}
}

// RegisterResetLadderCommand returns the /reset_ladder slash command definition.
func RegisterResetLadderCommand() *discordgo.ApplicationCommand {
	manageEvents := int64(discordgo.PermissionManageEvents)
	return &discordgo.ApplicationCommand{
		Name:                     "reset_ladder",
		Description:              "Reset the ladder in the ladder channel.",
		DefaultMemberPermissions: &manageEvents,
	}
}

// IsAuthorized reports whether the member may run ladder actions: race
// directors by role, or anyone with Manage Events.
func IsAuthorized(i *discordgo.InteractionCreate) bool {
	return utils.IsModerator(i, DirectorRoleID)
}

func inLadderChannel(i *discordgo.InteractionCreate) bool {
	return i.ChannelID == ChannelID
}

// HandlePairCommand creates a new ladder and posts it with winner buttons.
func HandlePairCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !inLadderChannel(i) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Use ladder commands in the ladder channel only."), nil, true)
		return
	}
	if !IsAuthorized(i) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Only Race Directors/Admins can run ladder commands."), nil, true)
		return
	}

	var eventName, raw string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "event":
			eventName = opt.StringValue()
		case "racers":
			raw = opt.StringValue()
		}
	}

	state, err := CreateLadder(eventName, SplitRacerTokens(raw))
	if errors.Is(err, ErrInsufficientRacers) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Need at least 2 racers. Paste 2+ names (one per line)."), nil, true)
		return
	}
	if err != nil {
		log.Printf("pair failed: %v", err)
		utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
		return
	}

	if err := utils.DeferInteractionResponse(s, i, false); err != nil {
		log.Printf("pair defer failed: %v", err)
		return
	}
	if err := utils.EditOriginalInteraction(s, i, state.Text(), nil, state.Buttons()); err != nil {
		log.Printf("pair reply failed: %v", err)
		return
	}

	// The message ID keys the ladder so button presses route back to it.
	msg, err := utils.GetOriginalResponseMessage(s, i)
	if err != nil {
		log.Printf("pair message lookup failed: %v", err)
		return
	}
	Ladders.Put(msg.ID, state)
}

// HandleResetLadderCommand wipes all active ladders.
func HandleResetLadderCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !inLadderChannel(i) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Use ladder commands in the ladder channel only."), nil, true)
		return
	}
	if !IsAuthorized(i) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Only Race Directors/Admins can run ladder commands."), nil, true)
		return
	}

	n := Ladders.Reset()
	log.Printf("ladder reset cleared %d ladder(s)", n)
	utils.SendInteractionResponse(s, i, utils.CreateBrandedEmbed("Ladder Reset", "🧹 All active ladders cleared.", utils.ColorSuccess), nil, false)
}

// HandleLadderInteraction routes win:<idx>:<side> and next_round buttons to
// the ladder owning the pressed message.
func HandleLadderInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if !inLadderChannel(i) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Ladder buttons only work in the ladder channel."), nil, true)
		return
	}
	if !IsAuthorized(i) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Only Race Directors/Admins can select winners."), nil, true)
		return
	}

	state, ok := Ladders.Get(i.Message.ID)
	if !ok {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("No active ladder. Use `/pair` first."), nil, true)
		return
	}

	cid := i.MessageComponentData().CustomID

	if cid == "next_round" {
		utils.ComponentActions.WithLabelValues("next_round").Inc()
		err := state.AdvanceRound()
		switch {
		case errors.Is(err, ErrNotAllDecided):
			utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Not all matches have a winner yet."), nil, true)
			return
		case errors.Is(err, ErrAlreadyComplete):
			utils.SendInteractionResponse(s, i, utils.ErrorEmbed("This event is already complete."), nil, true)
			return
		case err != nil:
			log.Printf("advance round failed: %v", err)
			utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
			return
		}
		utils.UpdateComponentInteraction(s, i, state.Text(), nil, state.Buttons())
		return
	}

	if strings.HasPrefix(cid, "win:") {
		utils.ComponentActions.WithLabelValues("declare_winner").Inc()
		parts := strings.Split(cid, ":")
		if len(parts) != 3 {
			utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Invalid match."), nil, true)
			return
		}
		idx, convErr := strconv.Atoi(parts[1])
		if convErr != nil {
			utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Invalid match."), nil, true)
			return
		}

		err := state.DeclareWinner(idx, parts[2])
		switch {
		case errors.Is(err, ErrInvalidMatchIndex), errors.Is(err, ErrInvalidSide):
			utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Invalid match."), nil, true)
			return
		case errors.Is(err, ErrAlreadyComplete):
			utils.SendInteractionResponse(s, i, utils.ErrorEmbed("This event is already complete."), nil, true)
			return
		case err != nil:
			log.Printf("declare winner failed: %v", err)
			utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
			return
		}
		utils.UpdateComponentInteraction(s, i, state.Text(), nil, state.Buttons())
	}
}
