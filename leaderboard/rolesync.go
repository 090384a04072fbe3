package leaderboard

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"racemaster-go/utils"
)

// RoleSyncer reconciles the top-10 tagging role against the current board
// membership. Called after any leaderboard mutation; failures are logged
// and swallowed, never rolled back into the committed state.
type RoleSyncer interface {
	Reconcile(memberIDs map[string]struct{})
}

// NopRoleSyncer is used when no role is configured.
type NopRoleSyncer struct{}

func (NopRoleSyncer) Reconcile(map[string]struct{}) {}

// DiscordRoleSyncer adds the role to members on a board and removes it from
// members who dropped off.
type DiscordRoleSyncer struct {
	Session *discordgo.Session
	GuildID string
	RoleID  string
}

func (rs *DiscordRoleSyncer) Reconcile(memberIDs map[string]struct{}) {
	// One page covers community-sized guilds; a member past it simply gets
	// picked up on the next reconcile after they interact.
	members, err := rs.Session.GuildMembers(rs.GuildID, "", 1000)
	if err != nil {
		log.Printf("role sync: member listing failed: %v", err)
		utils.CollaboratorFailures.WithLabelValues("role_sync").Inc()
		return
	}

	for _, m := range members {
		hasRole := false
		for _, r := range m.Roles {
			if r == rs.RoleID {
				hasRole = true
				break
			}
		}
		_, shouldHave := memberIDs[m.User.ID]

		switch {
		case shouldHave && !hasRole:
			if err := rs.Session.GuildMemberRoleAdd(rs.GuildID, m.User.ID, rs.RoleID); err != nil {
				log.Printf("role sync: add failed for %s: %v", m.User.ID, err)
				utils.CollaboratorFailures.WithLabelValues("role_sync").Inc()
			}
		case !shouldHave && hasRole:
			if err := rs.Session.GuildMemberRoleRemove(rs.GuildID, m.User.ID, rs.RoleID); err != nil {
				log.Printf("role sync: remove failed for %s: %v", m.User.ID, err)
				utils.CollaboratorFailures.WithLabelValues("role_sync").Inc()
			}
		}
	}
}
