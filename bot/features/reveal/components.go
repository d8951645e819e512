package reveal

import (
	"fmt"
	"strconv"
	"strings"

	"luckydraw/bot/common"
	"luckydraw/models"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
)

// Action identifies what a reveal component does
type Action string

const (
	ActionOpenItem  Action = "reveal_item"
	ActionSummary   Action = "reveal_summary"
	ActionShip      Action = "reveal_ship"
	ActionDone      Action = "reveal_done"
	ActionShipModal Action = "reveal_ship_modal"
)

// CustomIDPrefix matches every reveal component and modal
const CustomIDPrefix = "reveal_"

// maxItemButtons leaves the last action row for the phase buttons
const maxItemButtons = common.MaxButtonsPerRow * (common.MaxActionRows - 1)

// Shipping modal input IDs
const (
	inputRecipient = "recipient"
	inputAddress   = "address"
	inputPhone     = "phone"
)

// BuildCustomID builds a component custom ID. The index is only encoded for ActionOpenItem.
func BuildCustomID(action Action, sessionID string, index int) string {
	if action == ActionOpenItem {
		return fmt.Sprintf("%s:%s:%d", action, sessionID, index)
	}
	return fmt.Sprintf("%s:%s", action, sessionID)
}

// ParseCustomID splits a custom ID built by BuildCustomID
func ParseCustomID(customID string) (Action, string, int, error) {
	parts := strings.Split(customID, ":")
	if len(parts) < 2 || parts[1] == "" {
		return "", "", 0, fmt.Errorf("malformed reveal custom ID %q", customID)
	}

	action := Action(parts[0])
	switch action {
	case ActionOpenItem:
		if len(parts) != 3 {
			return "", "", 0, fmt.Errorf("malformed reveal custom ID %q", customID)
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", "", 0, fmt.Errorf("invalid item index in %q: %w", customID, err)
		}
		return action, parts[1], index, nil
	case ActionSummary, ActionShip, ActionDone, ActionShipModal:
		if len(parts) != 2 {
			return "", "", 0, fmt.Errorf("malformed reveal custom ID %q", customID)
		}
		return action, parts[1], 0, nil
	}

	return "", "", 0, fmt.Errorf("unknown reveal action %q", parts[0])
}

// BuildComponents returns the buttons for the current phase. The done phase has none.
func BuildComponents(snap service.RevealSnapshot) []discordgo.MessageComponent {
	switch snap.Phase {
	case service.RevealPhaseRevealing:
		return buildRevealingComponents(snap)
	case service.RevealPhaseSummarizing, service.RevealPhaseShipping:
		return buildSummaryComponents(snap)
	}
	return nil
}

func buildRevealingComponents(snap service.RevealSnapshot) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	for i, item := range snap.Items {
		if item.State == service.ItemRevealed || !item.Result.IsHighRank() {
			continue
		}
		if len(buttons) == maxItemButtons {
			break
		}

		button := discordgo.Button{
			Label:    fmt.Sprintf("Open #%d", i+1),
			Style:    discordgo.SuccessButton,
			CustomID: BuildCustomID(ActionOpenItem, snap.SessionID, i),
			Emoji:    &discordgo.ComponentEmoji{Name: "🎁"},
		}
		if item.Triggered {
			button.Label = fmt.Sprintf("Opening #%d", i+1)
			button.Style = discordgo.SecondaryButton
			button.Emoji = &discordgo.ComponentEmoji{Name: "🥁"}
			button.Disabled = true
		}
		buttons = append(buttons, button)
	}

	var components []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += common.MaxButtonsPerRow {
		end := start + common.MaxButtonsPerRow
		if end > len(buttons) {
			end = len(buttons)
		}
		components = append(components, discordgo.ActionsRow{Components: buttons[start:end]})
	}

	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "View summary",
				Style:    discordgo.PrimaryButton,
				CustomID: BuildCustomID(ActionSummary, snap.SessionID, 0),
				Emoji:    &discordgo.ComponentEmoji{Name: "📋"},
			},
		},
	})
	return components
}

func buildSummaryComponents(snap service.RevealSnapshot) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	if snap.NeedsShipping {
		buttons = append(buttons, discordgo.Button{
			Label:    "Enter shipping details",
			Style:    discordgo.PrimaryButton,
			CustomID: BuildCustomID(ActionShip, snap.SessionID, 0),
			Emoji:    &discordgo.ComponentEmoji{Name: "📦"},
		})
	}
	buttons = append(buttons, discordgo.Button{
		Label:    "Done",
		Style:    discordgo.SecondaryButton,
		CustomID: BuildCustomID(ActionDone, snap.SessionID, 0),
		Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
	})

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

// BuildShippingModal creates the shipping hand-off form for the prizes that need delivery
func BuildShippingModal(sessionID string, entries []models.SummaryEntry, mode models.DisplayMode) *discordgo.InteractionResponseData {
	var shipped []string
	for _, e := range entries {
		if e.RequiresShipping {
			shipped = append(shipped, fmt.Sprintf("%s x%d", mode.Label(e.Rank, e.Name), e.Count))
		}
	}
	placeholder := []rune("Delivery for " + strings.Join(shipped, ", "))
	if len(placeholder) > 100 {
		placeholder = append(placeholder[:97], []rune("...")...)
	}

	return &discordgo.InteractionResponseData{
		CustomID: BuildCustomID(ActionShipModal, sessionID, 0),
		Title:    "Shipping details",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  inputRecipient,
						Label:     "Recipient name",
						Style:     discordgo.TextInputShort,
						Required:  true,
						MinLength: 1,
						MaxLength: 100,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    inputAddress,
						Label:       "Delivery address",
						Style:       discordgo.TextInputParagraph,
						Placeholder: string(placeholder),
						Required:    true,
						MinLength:   5,
						MaxLength:   500,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  inputPhone,
						Label:     "Phone number",
						Style:     discordgo.TextInputShort,
						Required:  false,
						MaxLength: 30,
					},
				},
			},
		},
	}
}

// modalValues collects the text inputs of a submitted modal by custom ID
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range actionsRow.Components {
			if input, ok := c.(*discordgo.TextInput); ok {
				values[input.CustomID] = strings.TrimSpace(input.Value)
			}
		}
	}
	return values
}
