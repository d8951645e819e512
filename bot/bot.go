package bot

import (
	"context"
	"fmt"
	"strings"

	"luckydraw/bot/features/draw"
	"luckydraw/bot/features/reveal"
	"luckydraw/events"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token            string
	GuildID          string // commands are registered globally when empty
	AdminDiscordIDs  []int64
	DefaultDrawCount int
}

type Bot struct {
	config      Config
	session     *discordgo.Session
	drawService service.DrawService
	eventBus    *events.Bus

	// Features
	drawFeature   *draw.Feature
	revealFeature *reveal.Feature
}

func New(config Config, drawService service.DrawService, revealOpts service.RevealOptions, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	revealFeature := reveal.NewFeature(eventBus, revealOpts)

	bot := &Bot{
		config:        config,
		session:       dg,
		drawService:   drawService,
		eventBus:      eventBus,
		drawFeature:   draw.NewFeature(drawService, revealFeature, config.DefaultDrawCount),
		revealFeature: revealFeature,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component and modal handlers
	dg.AddHandler(bot.handleRevealInteractions)

	bot.subscribeEvents()

	// Open websocket connection
	if err := dg.Open(); err != nil {
		revealFeature.Close()
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		revealFeature.Close()
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Close ends every running reveal, then disconnects
func (b *Bot) Close() error {
	b.revealFeature.Close()
	return b.session.Close()
}

func (b *Bot) subscribeEvents() {
	b.eventBus.Subscribe(events.EventTypeShippingRequested, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.ShippingRequestedEvent)
		if !ok {
			return
		}
		sent := notifyAdmins(b.session, b.config.AdminDiscordIDs, BuildShippingRequestEmbed(e))
		log.WithFields(log.Fields{
			"sessionID":  e.SessionID,
			"actorID":    e.ActorID,
			"recipients": sent,
		}).Info("Forwarded shipping request to admins")
	})

	b.eventBus.Subscribe(events.EventTypePersistenceFailed, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.PersistenceFailedEvent)
		if !ok {
			return
		}
		notifyAdmins(b.session, b.config.AdminDiscordIDs, BuildPersistenceFailedEmbed(e))
	})
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "draw":
		b.drawFeature.HandleDrawCommand(s, i)
	case "prizes":
		b.drawFeature.HandlePrizesCommand(s, i)
	case "drawsettings":
		b.drawFeature.HandleSettingsCommand(s, i)
	}
}

// handleRevealInteractions handles reveal buttons and the shipping modal
func (b *Bot) handleRevealInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var customID string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		customID = i.ModalSubmitData().CustomID
	default:
		return
	}

	if strings.HasPrefix(customID, reveal.CustomIDPrefix) {
		b.revealFeature.HandleInteraction(s, i)
	}
}
