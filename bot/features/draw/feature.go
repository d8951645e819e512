package draw

import (
	"luckydraw/bot/features/reveal"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the draw, inventory and draw settings commands
type Feature struct {
	drawService  service.DrawService
	reveal       *reveal.Feature
	defaultCount int
}

// NewFeature creates a new draw feature instance. Successful draws are handed
// to revealFeature.
func NewFeature(drawService service.DrawService, revealFeature *reveal.Feature, defaultCount int) *Feature {
	return &Feature{
		drawService:  drawService,
		reveal:       revealFeature,
		defaultCount: defaultCount,
	}
}

// HandleDrawCommand handles /draw
func (f *Feature) HandleDrawCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleDraw(s, i)
}

// HandlePrizesCommand handles /prizes
func (f *Feature) HandlePrizesCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handlePrizes(s, i)
}

// HandleSettingsCommand routes /drawsettings subcommands
func (f *Feature) HandleSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "open":
		f.handleSetClosed(s, i, false)
	case "close":
		f.handleSetClosed(s, i, true)
	case "display":
		f.handleDisplayMode(s, i, options[0].Options)
	}
}
