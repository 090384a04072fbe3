package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"racemaster-go/ladder"
	"racemaster-go/leaderboard"
	"racemaster-go/randomdraw"
	"racemaster-go/utils"
)

var (
	session   *discordgo.Session
	botStatus = "starting"
	guildID   string
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	token := os.Getenv("BOT_TOKEN")
	guildID = os.Getenv("GUILD_ID")
	ladder.ChannelID = os.Getenv("LADDER_CHANNEL_ID")
	ladder.DirectorRoleID = os.Getenv("RACE_DIRECTOR_ROLE_ID")
	leaderboard.DirectorRoleID = ladder.DirectorRoleID
	leaderboard.ModChannelID = os.Getenv("MOD_CHANNEL_ID")
	leaderboard.LeaderboardChannelID = os.Getenv("LEADERBOARD_CHANNEL_ID")

	if token == "" || guildID == "" || ladder.ChannelID == "" || ladder.DirectorRoleID == "" {
		log.Fatal("Missing env values. Check BOT_TOKEN, GUILD_ID, LADDER_CHANNEL_ID, RACE_DIRECTOR_ROLE_ID")
	}

	// Start HTTP server for health checks and metrics.
	go startHealthServer()

	store := setupStore()
	if ps, ok := store.(*utils.PostgresStore); ok {
		defer ps.Close()
	}
	if err := setupLeaderboard(store); err != nil {
		log.Fatalf("Leaderboard setup failed: %v", err)
	}

	var err error
	session, err = discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	if roleID := os.Getenv("TOP10_ROLE_ID"); roleID != "" {
		leaderboard.Roles = &leaderboard.DiscordRoleSyncer{Session: session, GuildID: guildID, RoleID: roleID}
	}

	session.AddHandler(onReady)
	session.AddHandler(onInteractionCreate)

	if err := session.Open(); err != nil {
		log.Fatalf("Failed to open Discord connection: %v", err)
	}
	defer session.Close()

	log.Println("Bot is now running. Press CTRL+C to exit.")
	botStatus = "running"

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop

	log.Println("Gracefully shutting down...")
	botStatus = "shutting_down"
}

// setupStore picks Postgres when DATABASE_URL is set, JSON files otherwise.
func setupStore() utils.Store {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		store, err := utils.NewPostgresStore(databaseURL)
		if err != nil {
			log.Fatalf("Database setup failed: %v", err)
		}
		log.Println("Persistence: Postgres")
		return store
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	store, err := utils.NewFileStore(dataDir)
	if err != nil {
		log.Fatalf("File store setup failed: %v", err)
	}
	log.Printf("Persistence: JSON files in %s", dataDir)
	return store
}

func setupLeaderboard(store utils.Store) error {
	boards, err := leaderboard.NewStore(store)
	if err != nil {
		return err
	}
	cooldowns, err := leaderboard.NewTracker(store)
	if err != nil {
		return err
	}

	requireProof := os.Getenv("REQUIRE_PROOF") != "false"
	workflow, err := leaderboard.NewWorkflow(store, boards, cooldowns, resolveDisplayName, requireProof)
	if err != nil {
		return err
	}

	leaderboard.Boards = boards
	leaderboard.Cooldowns = cooldowns
	leaderboard.Submissions = workflow

	if workflow.PendingCount() > 0 {
		log.Printf("Restored %d pending submission(s)", workflow.PendingCount())
	}
	return nil
}

// resolveDisplayName prefers the server nickname over the account username.
func resolveDisplayName(userID string) (string, error) {
	member, err := session.GuildMember(guildID, userID)
	if err != nil {
		return "", err
	}
	if member.Nick != "" {
		return member.Nick, nil
	}
	if member.User != nil {
		return member.User.Username, nil
	}
	return "", nil
}

func onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Logged in as %s (ID: %s)", event.User.Username, event.User.ID)
	botStatus = "online"

	if err := s.UpdateGameStatus(0, "Drag Racing Ladders"); err != nil {
		log.Printf("Failed to update status: %v", err)
	}

	if err := registerSlashCommands(s); err != nil {
		log.Printf("Failed to register slash commands: %v", err)
	}
}

func registerSlashCommands(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		ladder.RegisterPairCommand(),
		ladder.RegisterResetLadderCommand(),
		leaderboard.RegisterSubmitCommand(),
		leaderboard.RegisterTop10Command(),
		leaderboard.RegisterResetTop10Command(),
		randomdraw.RegisterDrawCommand(),
	}

	for _, command := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, command); err != nil {
			return fmt.Errorf("failed to create command %s: %w", command.Name, err)
		}
	}

	log.Printf("Successfully registered %d slash commands", len(commands))
	return nil
}

// onInteractionCreate routes slash commands and button presses. Every
// handler runs behind a recover so one bad interaction can't take the bot
// down.
func onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Handler panic: %v", r)
			utils.HandlerPanics.Inc()
			replyGenericFailure(s, i)
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		utils.CommandsHandled.WithLabelValues(name).Inc()

		switch name {
		case "pair":
			ladder.HandlePairCommand(s, i)
		case "reset_ladder":
			ladder.HandleResetLadderCommand(s, i)
		case "submit":
			leaderboard.HandleSubmitCommand(s, i)
		case "top10":
			leaderboard.HandleTop10Command(s, i)
		case "reset_top10":
			leaderboard.HandleResetTop10Command(s, i)
		case "et_draw":
			randomdraw.HandleDrawCommand(s, i)
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID

		switch {
		case strings.HasPrefix(customID, "win:") || customID == "next_round":
			ladder.HandleLadderInteraction(s, i)
		case strings.HasPrefix(customID, "top10_"):
			leaderboard.HandleApprovalInteraction(s, i)
		}
	}
}

func replyGenericFailure(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() { recover() }()
	utils.SendInteractionResponse(s, i, utils.GenericFailureEmbed(), nil, true)
}

func startHealthServer() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": botStatus})
	})
	mux.Handle("/metrics", utils.MetricsHandler())

	log.Printf("Health server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Health server stopped: %v", err)
	}
}
