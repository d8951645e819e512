package draw

import (
	"fmt"
	"time"

	"luckydraw/bot/common"
	"luckydraw/models"

	"github.com/bwmarrin/discordgo"
)

// BuildStatusEmbed shows the remaining inventory and whether drawing is possible
func BuildStatusEmbed(status *models.DrawStatus) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🎁 Prize inventory",
		Color:     common.ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	lines := make([]string, 0, len(status.Prizes))
	for _, p := range status.Prizes {
		label := status.DisplayMode.Label(p.Rank, p.Name)
		if models.IsHighRank(p.Rank) {
			label = "🌟 **" + label + "**"
		}
		line := fmt.Sprintf("%s · %s left", label, common.FormatUnits(p.Remaining))
		if p.Remaining == 0 {
			line = "~~" + line + "~~"
		}
		if p.RequiresShipping {
			line += " 📦"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "No prizes have been stocked yet")
	}
	embed.Description = common.JoinLimited(lines, common.MaxEmbedDescription)

	state := "🟢 Open"
	switch {
	case status.Closed:
		state = "🔴 Closed"
		embed.Color = common.ColorDanger
	case status.TotalRemaining == 0:
		state = "⚪ Sold out"
		embed.Color = common.ColorDanger
	case status.LowStock:
		embed.Color = common.ColorWarning
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("⚠️ Only %s prizes left", common.FormatUnits(status.TotalRemaining)),
		}
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Remaining",
			Value:  common.FormatUnits(status.TotalRemaining),
			Inline: true,
		},
		{
			Name:   "Status",
			Value:  state,
			Inline: true,
		},
	}

	return embed
}

// BuildLowStockEmbed is posted after a draw leaves few prizes in stock
func BuildLowStockEmbed(remaining int) *discordgo.MessageEmbed {
	description := fmt.Sprintf("Only **%s** prizes are left in the draw.", common.FormatUnits(remaining))
	if remaining == 0 {
		description = "That was the last prize. The draw is sold out!"
	}
	return &discordgo.MessageEmbed{
		Title:       "⚠️ Running low",
		Description: description,
		Color:       common.ColorWarning,
	}
}
