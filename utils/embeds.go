package utils

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// CreateBrandedEmbed creates a basic embed with bot branding
func CreateBrandedEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: BotName,
		},
	}
}

// ErrorEmbed creates a red embed for user-facing failures
func ErrorEmbed(description string) *discordgo.MessageEmbed {
	return CreateBrandedEmbed("Error", description, ColorError)
}

// GenericFailureEmbed is the catch-all reply when a handler hits an unexpected error
func GenericFailureEmbed() *discordgo.MessageEmbed {
	return ErrorEmbed("Something went wrong. Please try again.")
}

// CooldownEmbed creates an embed telling the submitter how long until they can resubmit
func CooldownEmbed(category string, remaining time.Duration) *discordgo.MessageEmbed {
	hours := int(remaining.Hours())
	minutes := int(remaining.Minutes()) % 60
	return CreateBrandedEmbed(
		"Cooldown Active",
		fmt.Sprintf("You had a **%s** slip approved recently. You can submit again in **%dh %dm**.", category, hours, minutes),
		ColorWarning,
	)
}
