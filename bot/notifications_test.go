package bot

import (
	"errors"
	"testing"

	"luckydraw/events"
	"luckydraw/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	failChannel map[string]bool
	failSend    map[string]bool
	sent        map[string]*discordgo.MessageEmbed
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		failChannel: make(map[string]bool),
		failSend:    make(map[string]bool),
		sent:        make(map[string]*discordgo.MessageEmbed),
	}
}

func (m *fakeMessenger) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if m.failChannel[recipientID] {
		return nil, errors.New("cannot send messages to this user")
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (m *fakeMessenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.failSend[channelID] {
		return nil, errors.New("missing access")
	}
	m.sent[channelID] = embed
	return &discordgo.Message{ChannelID: channelID}, nil
}

func TestNotifyAdmins(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.failChannel["2"] = true
	messenger.failSend["dm-3"] = true
	embed := &discordgo.MessageEmbed{Title: "hello"}

	sent := notifyAdmins(messenger, []int64{1, 2, 3, 4}, embed)

	assert.Equal(t, 2, sent)
	assert.Same(t, embed, messenger.sent["dm-1"])
	assert.Same(t, embed, messenger.sent["dm-4"])
	assert.NotContains(t, messenger.sent, "dm-3")
}

func TestNotifyAdmins_NoAdmins(t *testing.T) {
	assert.Equal(t, 0, notifyAdmins(newFakeMessenger(), nil, &discordgo.MessageEmbed{}))
}

func TestBuildShippingRequestEmbed(t *testing.T) {
	embed := BuildShippingRequestEmbed(events.ShippingRequestedEvent{
		SessionID: "987",
		ActorID:   42,
		Entries: []models.SummaryEntry{
			{Rank: 1, Name: "Grand Prize", RequiresShipping: true, Count: 1},
			{Rank: 3, Name: "Sticker", Count: 5},
		},
		Details: map[string]string{
			"recipient": "Kim",
			"address":   "1 Main St",
		},
	})

	assert.Equal(t, "#1 - Grand Prize x**1**", embed.Description)
	require.Len(t, embed.Fields, 3, "empty phone is left out")
	assert.Equal(t, "<@42>", embed.Fields[0].Value)
	assert.Equal(t, "Kim", embed.Fields[1].Value)
	assert.Equal(t, "1 Main St", embed.Fields[2].Value)
	assert.Equal(t, "Draw 987", embed.Footer.Text)
}

func TestBuildPersistenceFailedEmbed(t *testing.T) {
	embed := BuildPersistenceFailedEmbed(events.PersistenceFailedEvent{
		TotalRemaining: 1500,
		Err:            errors.New("connection refused"),
	})

	assert.Contains(t, embed.Description, "1,500")
	assert.Contains(t, embed.Description, "connection refused")

	assert.Contains(t, BuildPersistenceFailedEmbed(events.PersistenceFailedEvent{}).Description, "unknown error")
}

func TestCommands(t *testing.T) {
	names := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range commands() {
		names[cmd.Name] = cmd
	}

	require.Contains(t, names, "draw")
	require.Contains(t, names, "prizes")
	require.Contains(t, names, "drawsettings")

	count := names["draw"].Options[0]
	assert.False(t, count.Required)
	assert.Equal(t, float64(1), *count.MinValue)
	assert.Equal(t, float64(100), count.MaxValue)

	assert.NotNil(t, names["drawsettings"].DefaultMemberPermissions)
}
