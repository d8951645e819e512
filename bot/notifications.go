package bot

import (
	"fmt"
	"strconv"
	"time"

	"luckydraw/bot/common"
	"luckydraw/events"
	"luckydraw/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// directMessenger sends direct messages. *discordgo.Session satisfies it.
type directMessenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// notifyAdmins DMs embed to every admin and returns how many were reached
func notifyAdmins(messenger directMessenger, adminIDs []int64, embed *discordgo.MessageEmbed) int {
	sent := 0
	for _, id := range adminIDs {
		channel, err := messenger.UserChannelCreate(strconv.FormatInt(id, 10))
		if err != nil {
			log.Errorf("Failed to open DM channel with admin %d: %v", id, err)
			continue
		}
		if _, err := messenger.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
			log.Errorf("Failed to DM admin %d: %v", id, err)
			continue
		}
		sent++
	}

	if sent == 0 {
		log.WithField("title", embed.Title).Warn("No admin could be notified")
	}
	return sent
}

// BuildShippingRequestEmbed formats a submitted shipping hand-off for the admins
func BuildShippingRequestEmbed(e events.ShippingRequestedEvent) *discordgo.MessageEmbed {
	var lines []string
	for _, entry := range e.Entries {
		if entry.RequiresShipping {
			lines = append(lines, fmt.Sprintf("%s x**%d**", models.DisplayModeBoth.Label(entry.Rank, entry.Name), entry.Count))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No shipped prizes")
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Winner", Value: fmt.Sprintf("<@%d>", e.ActorID), Inline: true},
	}
	for _, f := range []struct{ key, name string }{
		{"recipient", "Recipient"},
		{"address", "Address"},
		{"phone", "Phone"},
	} {
		if value := e.Details[f.key]; value != "" {
			fields = append(fields, &discordgo.MessageEmbedField{Name: f.name, Value: value})
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "📦 Shipping request",
		Description: common.JoinLimited(lines, common.MaxEmbedDescription),
		Color:       common.ColorPrimary,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Draw " + e.SessionID},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// BuildPersistenceFailedEmbed alerts the admins that the stored inventory is stale
func BuildPersistenceFailedEmbed(e events.PersistenceFailedEvent) *discordgo.MessageEmbed {
	reason := "unknown error"
	if e.Err != nil {
		reason = e.Err.Error()
	}
	return &discordgo.MessageEmbed{
		Title: "⚠️ Inventory save failed",
		Description: fmt.Sprintf("A draw went through but the new stock of **%s** prizes could not be saved.\n```%s```",
			common.FormatUnits(e.TotalRemaining), reason),
		Color:     common.ColorDanger,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
