package randomdraw

import (
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"racemaster-go/utils"
)

// Draws is the shared generator, one no-repeat window per channel + range.
var Draws = NewGenerator(utils.DrawWindow)

// RegisterDrawCommand returns the /et_draw slash command definition.
func RegisterDrawCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "et_draw",
		Description: "Draw a random ET in a range. No repeats within an hour.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionNumber, Name: "low", Description: "One end of the range (ex: 9.50)", Required: true},
			{Type: discordgo.ApplicationCommandOptionNumber, Name: "high", Description: "Other end of the range (ex: 10.50)", Required: true},
		},
	}
}

// HandleDrawCommand draws a value scoped to the channel the command ran in.
func HandleDrawCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var lo, hi float64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "low":
			lo = opt.FloatValue()
		case "high":
			hi = opt.FloatValue()
		}
	}

	result, err := Draws.Draw(i.ChannelID, lo, hi, utils.DrawPrecision)

	var exhausted *ExhaustedError
	switch {
	case errors.Is(err, ErrInvalidRange):
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Those bounds don't make a valid range."), nil, true)
		return
	case errors.As(err, &exhausted):
		utils.SendInteractionResponse(s, i, utils.CreateBrandedEmbed(
			"Range Exhausted",
			fmt.Sprintf("All **%d** possible values in that range were drawn in the last hour. Widen the range or wait.", exhausted.Total),
			utils.ColorWarning,
		), nil, true)
		return
	case errors.Is(err, ErrRetryBudget):
		utils.SendInteractionResponse(s, i, utils.CreateBrandedEmbed(
			"Try Again",
			"That range is nearly drained; couldn't land on an unused value. Run the draw again.",
			utils.ColorWarning,
		), nil, true)
		return
	case err != nil:
		log.Printf("et_draw failed: %v", err)
		utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
		return
	}

	embed := utils.CreateBrandedEmbed(
		"🎲 ET Draw",
		fmt.Sprintf("Range **%.2f – %.2f**\n\n## %s", result.Low, result.High, result.Value),
		utils.ColorNeutral,
	)
	utils.SendInteractionResponse(s, i, embed, nil, false)
}
