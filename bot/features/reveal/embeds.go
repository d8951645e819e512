package reveal

import (
	"fmt"
	"time"

	"luckydraw/bot/common"
	"luckydraw/models"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
)

// BuildEmbed renders the reveal message for the current phase
func BuildEmbed(snap service.RevealSnapshot, mode models.DisplayMode) *discordgo.MessageEmbed {
	if snap.Phase == service.RevealPhaseRevealing {
		return BuildRevealEmbed(snap, mode)
	}
	return BuildSummaryEmbed(snap, mode)
}

// BuildRevealEmbed lists every drawn item; pending high-rank items stay hidden
func BuildRevealEmbed(snap service.RevealSnapshot, mode models.DisplayMode) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("🎁 Lucky Draw: %d prizes", len(snap.Items)),
		Color:     common.ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	pending := 0
	lines := make([]string, 0, len(snap.Items)+1)
	if snap.Celebrating {
		embed.Title = "🎉 " + embed.Title + " 🎉"
		embed.Color = common.ColorGold
		lines = append(lines, "🎊 **A top prize is coming!** 🎊")
	}

	for i, item := range snap.Items {
		lines = append(lines, formatItemLine(i, item, mode))
		if item.State == service.ItemPending {
			pending++
		}
	}
	embed.Description = common.JoinLimited(lines, common.MaxEmbedDescription)

	if pending > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d special prize(s) waiting to be opened", pending),
		}
	}

	return embed
}

func formatItemLine(index int, item service.RevealItem, mode models.DisplayMode) string {
	number := fmt.Sprintf("`%02d`", index+1)

	switch {
	case item.State == service.ItemRevealed && item.Result.IsHighRank():
		return fmt.Sprintf("%s 🌟 **%s**", number, mode.Label(item.Result.Rank, item.Result.Name))
	case item.State == service.ItemRevealed:
		return fmt.Sprintf("%s %s", number, mode.Label(item.Result.Rank, item.Result.Name))
	case item.Triggered:
		return fmt.Sprintf("%s 🥁 *Opening...*", number)
	default:
		return fmt.Sprintf("%s ❓ *Tap Open #%d*", number, index+1)
	}
}

// BuildSummaryEmbed lists the batch grouped by prize
func BuildSummaryEmbed(snap service.RevealSnapshot, mode models.DisplayMode) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "📋 Draw summary",
		Color:     common.ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	total := 0
	lines := make([]string, 0, len(snap.Summary))
	for _, entry := range snap.Summary {
		total += entry.Count
		line := fmt.Sprintf("%s x**%d**", mode.Label(entry.Rank, entry.Name), entry.Count)
		if models.IsHighRank(entry.Rank) {
			line = "🌟 " + line
		}
		if entry.RequiresShipping {
			line += " 📦"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "No prizes in this draw")
	}
	embed.Description = common.JoinLimited(lines, common.MaxEmbedDescription)

	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Total",
			Value:  common.FormatUnits(total),
			Inline: true,
		},
	}

	switch snap.Phase {
	case service.RevealPhaseDone:
		embed.Title = "✅ Draw complete"
		embed.Color = common.ColorSuccess
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Thanks for playing!"}
	case service.RevealPhaseShipping:
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "📦 Waiting for shipping details"}
	default:
		if snap.NeedsShipping {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: "📦 Some prizes will be shipped, please enter your details"}
		}
	}

	return embed
}
