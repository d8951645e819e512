package draw

import (
	"context"
	"errors"
	"fmt"

	"luckydraw/bot/common"
	"luckydraw/models"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleDraw draws the requested prizes and starts their reveal.
// The draw happens before the interaction is acknowledged so failures stay ephemeral.
func (f *Feature) handleDraw(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	actorID, err := common.InteractionUserID(i)
	if err != nil {
		log.Errorf("Error reading user of draw command: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	count := countOption(i.ApplicationCommandData().Options, f.defaultCount)

	outcome, err := f.drawService.Draw(ctx, actorID, count)
	if err != nil {
		if !isExpectedDrawError(err) {
			log.Errorf("Error drawing %d prizes for %d: %v", count, actorID, err)
		}
		common.RespondWithError(s, i, drawErrorMessage(err))
		return
	}

	status, err := f.drawService.Status(ctx)
	if err != nil {
		log.Errorf("Error getting draw status: %v", err)
		status = &models.DrawStatus{DisplayMode: models.DisplayModeBoth}
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		// The inventory is already spent; keep the result in the log for the operator.
		log.WithFields(log.Fields{
			"actorID": actorID,
			"results": outcome.Results,
			"error":   err,
		}).Error("Failed to acknowledge draw, results were not shown")
		return
	}

	f.reveal.StartSession(s, i.Interaction, actorID, outcome.Results, status.DisplayMode)

	if status.LowStock || outcome.TotalRemaining == 0 {
		_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{BuildLowStockEmbed(outcome.TotalRemaining)},
		})
		if err != nil {
			log.Warnf("Error sending low stock warning: %v", err)
		}
	}
}

func (f *Feature) handlePrizes(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	status, err := f.drawService.Status(ctx)
	if err != nil {
		log.Errorf("Error getting draw status: %v", err)
		common.RespondWithError(s, i, "Unable to load the prize list. Please try again.")
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildStatusEmbed(status), nil, false); err != nil {
		log.Errorf("Error responding to prizes command: %v", err)
	}
}

func (f *Feature) handleSetClosed(s *discordgo.Session, i *discordgo.InteractionCreate, closed bool) {
	ctx := context.Background()

	actorID, err := common.InteractionUserID(i)
	if err != nil {
		log.Errorf("Error reading user of drawsettings command: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := f.drawService.SetClosed(ctx, actorID, closed); err != nil {
		if !errors.Is(err, service.ErrNotAuthorized) {
			log.Errorf("Error setting draw closed=%t: %v", closed, err)
		}
		common.RespondWithError(s, i, settingsErrorMessage(err))
		return
	}

	message := "The lucky draw is open"
	if closed {
		message = "The lucky draw is closed"
	}
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to drawsettings command: %v", err)
	}
}

func (f *Feature) handleDisplayMode(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	actorID, err := common.InteractionUserID(i)
	if err != nil {
		log.Errorf("Error reading user of drawsettings command: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var raw string
	for _, opt := range options {
		if opt.Name == "mode" {
			raw = opt.StringValue()
		}
	}
	mode, err := models.ParseDisplayMode(raw)
	if err != nil {
		common.RespondWithError(s, i, "Display mode must be rank, prize or both.")
		return
	}

	if err := f.drawService.SetDisplayMode(ctx, actorID, mode); err != nil {
		if !errors.Is(err, service.ErrNotAuthorized) {
			log.Errorf("Error setting display mode %s: %v", mode, err)
		}
		common.RespondWithError(s, i, settingsErrorMessage(err))
		return
	}

	message := fmt.Sprintf("Prizes are now shown as %s (e.g. %s)", mode, mode.Label(1, "Grand Prize"))
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to drawsettings command: %v", err)
	}
}

// countOption returns the count option of /draw, or fallback when it is absent
func countOption(options []*discordgo.ApplicationCommandInteractionDataOption, fallback int) int {
	for _, opt := range options {
		if opt.Name == "count" && opt.Type == discordgo.ApplicationCommandOptionInteger {
			return int(opt.IntValue())
		}
	}
	return fallback
}

func isExpectedDrawError(err error) bool {
	return errors.Is(err, service.ErrNotAuthorized) ||
		errors.Is(err, service.ErrDrawClosed) ||
		errors.Is(err, service.ErrInsufficientInventory)
}

// drawErrorMessage turns a draw failure into a user-facing message
func drawErrorMessage(err error) string {
	var insufficient *service.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Only %s prizes left but you asked for %s. Try a smaller count.",
			common.FormatUnits(insufficient.Available), common.FormatUnits(insufficient.Requested))
	case errors.Is(err, service.ErrInsufficientInventory):
		return "Not enough prizes left. Try a smaller count."
	case errors.Is(err, service.ErrNotAuthorized):
		return "You are not allowed to run the lucky draw."
	case errors.Is(err, service.ErrDrawClosed):
		return "The lucky draw is closed right now."
	}
	return "Something went wrong while drawing. Please try again."
}

func settingsErrorMessage(err error) string {
	if errors.Is(err, service.ErrNotAuthorized) {
		return "You are not allowed to change the lucky draw settings."
	}
	return "Failed to update settings. Please try again."
}
