package bot

import (
	"fmt"

	"luckydraw/config"

	"github.com/bwmarrin/discordgo"
)

var (
	minDrawCount = float64(config.MinDrawCount)
	adminOnly    = int64(discordgo.PermissionManageServer)
)

// commands returns every slash command the bot serves
func commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "draw",
			Description: "Draw prizes from the lucky draw",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: fmt.Sprintf("How many prizes to draw (%d-%d)", config.MinDrawCount, config.MaxDrawCount),
					Required:    false,
					MinValue:    &minDrawCount,
					MaxValue:    float64(config.MaxDrawCount),
				},
			},
		},
		{
			Name:        "prizes",
			Description: "Show the remaining prizes",
		},
		{
			Name:                     "drawsettings",
			Description:              "Manage the lucky draw",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Open the lucky draw",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close the lucky draw",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "display",
					Description: "Choose how drawn prizes are labelled",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "mode",
							Description: "Label prizes by rank, by name, or both",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Rank only", Value: "rank"},
								{Name: "Prize name only", Value: "prize"},
								{Name: "Rank and prize name", Value: "both"},
							},
						},
					},
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
