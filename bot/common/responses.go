package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// DeferResponse sends a deferred response to give more time for processing
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags,
		},
	})
}

// AcknowledgeComponent acknowledges a button press without changing the message
func AcknowledgeComponent(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// RespondWithEmbed sends an embed as an interaction response
func RespondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}

	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	if len(components) > 0 {
		data.Components = components
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// RespondWithModal opens a modal in response to a component interaction
func RespondWithModal(s *discordgo.Session, i *discordgo.InteractionCreate, modal *discordgo.InteractionResponseData) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modal,
	})
}

// BuildMessageEdit builds an edit replacing the embed and components of a message.
// A nil components slice clears every component.
func BuildMessageEdit(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) *discordgo.WebhookEdit {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	}
}

// UpdateMessage updates an existing interaction response
func UpdateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	_, err := s.InteractionResponseEdit(i.Interaction, BuildMessageEdit(embed, components))
	return err
}

// DisableComponents disables all buttons in a message
func DisableComponents(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	disabled := make([]discordgo.MessageComponent, len(components))

	for i, component := range components {
		row, ok := component.(discordgo.ActionsRow)
		if !ok {
			disabled[i] = component
			continue
		}

		newRow := discordgo.ActionsRow{
			Components: make([]discordgo.MessageComponent, len(row.Components)),
		}
		for j, comp := range row.Components {
			if button, ok := comp.(discordgo.Button); ok {
				button.Disabled = true
				newRow.Components[j] = button
			} else {
				newRow.Components[j] = comp
			}
		}
		disabled[i] = newRow
	}

	return disabled
}

// RespondWithError sends an error message as an ephemeral interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// RespondWithSuccess sends a success message
func RespondWithSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, message string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Content: "✅ " + message,
	}

	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}
