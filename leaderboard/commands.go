package leaderboard

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"racemaster-go/utils"
)

// Package configuration and wiring, set once from main before the session
// opens.
var (
	Boards      *Store
	Cooldowns   *Tracker
	Submissions *Workflow
	Roles       RoleSyncer = NopRoleSyncer{}

	DirectorRoleID       string
	ModChannelID         string
	LeaderboardChannelID string

	displayMessageID string
	displayMutex     sync.Mutex
)

var categoryChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Track", Value: utils.CategoryTrack},
	{Name: "Street", Value: utils.CategoryStreet},
}

// RegisterSubmitCommand returns the /submit slash command definition.
func RegisterSubmitCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "submit",
		Description: "Submit a timeslip for Top 10 review.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "category", Description: "Which board you're submitting to", Required: true, Choices: categoryChoices},
			{Type: discordgo.ApplicationCommandOptionString, Name: "et", Description: "Elapsed time (ex: 9.87)", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "mph", Description: "Trap speed (ex: 141.2)", Required: true},
			{Type: discordgo.ApplicationCommandOptionAttachment, Name: "proof", Description: "Timeslip photo or video"},
		},
	}
}

// RegisterTop10Command returns the /top10 slash command definition.
func RegisterTop10Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "top10",
		Description: "Show the Top 10 leaderboards.",
	}
}

// RegisterResetTop10Command returns the /reset_top10 slash command definition.
func RegisterResetTop10Command() *discordgo.ApplicationCommand {
	manageEvents := int64(discordgo.PermissionManageEvents)
	return &discordgo.ApplicationCommand{
		Name:                     "reset_top10",
		Description:              "Clear a Top 10 board (or both).",
		DefaultMemberPermissions: &manageEvents,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "board", Description: "Board to clear", Required: true, Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Track", Value: utils.CategoryTrack},
				{Name: "Street", Value: utils.CategoryStreet},
				{Name: "All", Value: CategoryAll},
			}},
		},
	}
}

// HandleSubmitCommand validates and queues a timeslip, then notifies the
// moderator channel with approve/deny buttons.
func HandleSubmitCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var category, etRaw, mphRaw, proof string
	for _, opt := range data.Options {
		switch opt.Name {
		case "category":
			category = opt.StringValue()
		case "et":
			etRaw = opt.StringValue()
		case "mph":
			mphRaw = opt.StringValue()
		case "proof":
			if id, ok := opt.Value.(string); ok && data.Resolved != nil {
				if att, ok := data.Resolved.Attachments[id]; ok {
					proof = att.URL
				}
			}
		}
	}

	user := utils.InteractionUser(i)
	slip, err := Submissions.Submit(user.ID, category, etRaw, mphRaw, proof)

	var cooldownErr *CooldownActiveError
	switch {
	case errors.Is(err, ErrInvalidValue):
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("ET and MPH must be positive numbers (ex: `9.87`, `141.2`)."), nil, true)
		return
	case errors.Is(err, ErrProofRequired):
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Attach a timeslip photo or video as proof."), nil, true)
		return
	case errors.Is(err, ErrDuplicatePending):
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("You already have a pending submission for this board. Wait for a moderator decision."), nil, true)
		return
	case errors.As(err, &cooldownErr):
		utils.SendInteractionResponse(s, i, utils.CooldownEmbed(category, cooldownErr.Remaining), nil, true)
		return
	case err != nil:
		log.Printf("submit failed: %v", err)
		utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
		return
	}

	utils.SendInteractionResponse(s, i, utils.CreateBrandedEmbed(
		"Submission Received",
		fmt.Sprintf("Your **%s** slip (%s @ %s mph) is waiting for moderator review.", category, slip.ETDisplay, slip.MPHDisplay),
		utils.ColorSuccess,
	), nil, true)

	notifyModerators(s, slip)
}

// notifyModerators posts the review embed with approve/deny buttons. Best
// effort: the slip is already queued and will be reviewable after restart.
func notifyModerators(s *discordgo.Session, slip *PendingSlip) {
	if ModChannelID == "" {
		return
	}

	embed := utils.CreateBrandedEmbed(
		"New Top 10 Submission",
		fmt.Sprintf("<@%s> submitted a **%s** slip.", slip.UserID, slip.Category),
		utils.ColorNeutral,
	)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "ET", Value: slip.ETDisplay, Inline: true},
		{Name: "MPH", Value: slip.MPHDisplay, Inline: true},
	}
	if slip.Proof != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Proof", Value: slip.Proof})
	}

	components := []discordgo.MessageComponent{utils.CreateActionRow(
		utils.CreateButton("top10_approve:"+slip.ID, "Approve", discordgo.SuccessButton, false, nil),
		utils.CreateButton("top10_deny:"+slip.ID, "Deny", discordgo.DangerButton, false, nil),
	)}

	_, err := s.ChannelMessageSendComplex(ModChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		log.Printf("moderator notice failed for slip %s: %v", slip.ID, err)
		utils.CollaboratorFailures.WithLabelValues("moderator_notice").Inc()
	}
}

// HandleApprovalInteraction routes top10_approve:<slipId> and
// top10_deny:<slipId> buttons.
func HandleApprovalInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if !utils.IsModerator(i, DirectorRoleID) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Only moderators can review submissions."), nil, true)
		return
	}

	cid := i.MessageComponentData().CustomID
	decision := DecisionDeny
	slipID := strings.TrimPrefix(cid, "top10_deny:")
	if strings.HasPrefix(cid, "top10_approve:") {
		decision = DecisionApprove
		slipID = strings.TrimPrefix(cid, "top10_approve:")
	}
	utils.ComponentActions.WithLabelValues("top10_" + decision).Inc()

	slip, _ := Submissions.Peek(slipID)
	moderator := utils.InteractionUser(i)

	entry, err := Submissions.Resolve(slipID, decision, moderator.ID)
	if errors.Is(err, ErrSlipNotFound) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("This submission was already resolved."), nil, true)
		return
	}
	if err != nil {
		log.Printf("resolve failed for slip %s: %v", slipID, err)
		utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
		return
	}

	// Decision is committed; everything below is best-effort display and
	// role maintenance.
	outcome := resolutionEmbed(slip, decision, entry, moderator)
	if err := utils.UpdateComponentInteraction(s, i, "", outcome, []discordgo.MessageComponent{}); err != nil {
		log.Printf("review message update failed: %v", err)
	}

	if decision == DecisionApprove {
		RefreshDisplay(s)
		Roles.Reconcile(Boards.MemberIDs())
	}
}

func resolutionEmbed(slip PendingSlip, decision string, entry *Entry, moderator *discordgo.User) *discordgo.MessageEmbed {
	if decision == DecisionDeny {
		return utils.CreateBrandedEmbed(
			"Submission Denied",
			fmt.Sprintf("<@%s>'s **%s** slip (%s @ %s mph) was denied by <@%s>.",
				slip.UserID, slip.Category, slip.ETDisplay, slip.MPHDisplay, moderator.ID),
			utils.ColorError,
		)
	}

	if entry == nil {
		return utils.CreateBrandedEmbed(
			"Submission Approved",
			fmt.Sprintf("<@%s>'s **%s** slip (%s @ %s mph) was approved by <@%s> but did not crack the Top 10.",
				slip.UserID, slip.Category, slip.ETDisplay, slip.MPHDisplay, moderator.ID),
			utils.ColorWarning,
		)
	}

	return utils.CreateBrandedEmbed(
		"Submission Approved",
		fmt.Sprintf("<@%s>'s **%s** slip (%s @ %s mph) was approved by <@%s> and is on the board!",
			slip.UserID, slip.Category, slip.ETDisplay, slip.MPHDisplay, moderator.ID),
		utils.ColorSuccess,
	)
}

// HandleTop10Command replies with the current boards.
func HandleTop10Command(s *discordgo.Session, i *discordgo.InteractionCreate) {
	utils.SendInteractionResponse(s, i, BoardsEmbed(), nil, false)
}

// HandleResetTop10Command clears board(s); a full reset also clears the
// cooldowns so the cohort can resubmit immediately.
func HandleResetTop10Command(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !utils.IsModerator(i, DirectorRoleID) {
		utils.SendInteractionResponse(s, i, utils.ErrorEmbed("Only moderators can reset the leaderboard."), nil, true)
		return
	}

	board := CategoryAll
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "board" {
			board = opt.StringValue()
		}
	}

	if err := Boards.Reset(board); err != nil {
		log.Printf("reset failed: %v", err)
		utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
		return
	}
	if board == CategoryAll {
		if err := Cooldowns.Clear(); err != nil {
			log.Printf("cooldown clear failed: %v", err)
		}
	}

	utils.SendInteractionResponse(s, i, utils.CreateBrandedEmbed(
		"Leaderboard Reset",
		fmt.Sprintf("🧹 Cleared **%s**.", board),
		utils.ColorSuccess,
	), nil, false)

	RefreshDisplay(s)
	Roles.Reconcile(Boards.MemberIDs())
}

// BoardsEmbed renders both boards into one embed.
func BoardsEmbed() *discordgo.MessageEmbed {
	track, street := Boards.Boards()
	embed := utils.CreateBrandedEmbed("🏆 Top 10 Leaderboards", "", utils.ColorGold)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "🏁 Track", Value: renderBoard(track)},
		{Name: "🛣️ Street", Value: renderBoard(street)},
	}
	return embed
}

func renderBoard(b Board) string {
	if len(b) == 0 {
		return "*No entries yet.*"
	}
	var lines []string
	for idx, e := range b {
		lines = append(lines, fmt.Sprintf("**%d.** %s — %s @ %s mph", idx+1, e.Name, e.ETDisplay, e.MPHDisplay))
	}
	return strings.Join(lines, "\n")
}

// RefreshDisplay edits the pinned-style leaderboard message in the
// leaderboard channel, posting a fresh one when there is nothing to edit.
// Best-effort after a committed mutation.
func RefreshDisplay(s *discordgo.Session) {
	if LeaderboardChannelID == "" {
		return
	}

	displayMutex.Lock()
	defer displayMutex.Unlock()

	embed := BoardsEmbed()
	if displayMessageID != "" {
		if _, err := s.ChannelMessageEditEmbed(LeaderboardChannelID, displayMessageID, embed); err == nil {
			return
		}
	}

	msg, err := s.ChannelMessageSendEmbed(LeaderboardChannelID, embed)
	if err != nil {
		log.Printf("leaderboard display refresh failed: %v", err)
		utils.CollaboratorFailures.WithLabelValues("leaderboard_display").Inc()
		return
	}
	displayMessageID = msg.ID
}
