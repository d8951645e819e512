package reveal

import (
	"sync"

	"luckydraw/bot/common"
	"luckydraw/events"
	"luckydraw/models"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// MessageEditor edits the original response of an interaction.
// *discordgo.Session satisfies it.
type MessageEditor interface {
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Presenter receives sequencer events and keeps the Discord message in sync.
// Events are forwarded to the application bus.
type Presenter struct {
	editor      MessageEditor
	interaction *discordgo.Interaction
	mode        models.DisplayMode
	forward     service.EventPublisher

	mu       sync.Mutex
	seq      *service.RevealSequencer
	batching int

	// renderMu keeps snapshot and edit together so edits land in state order
	renderMu sync.Mutex
}

// NewPresenter creates a presenter editing the response of interaction
func NewPresenter(editor MessageEditor, interaction *discordgo.Interaction, mode models.DisplayMode, forward service.EventPublisher) *Presenter {
	return &Presenter{
		editor:      editor,
		interaction: interaction,
		mode:        mode,
		forward:     forward,
	}
}

// Attach sets the sequencer whose state is rendered
func (p *Presenter) Attach(seq *service.RevealSequencer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq = seq
}

// Publish implements service.EventPublisher
func (p *Presenter) Publish(event events.Event) {
	if p.forward != nil {
		p.forward.Publish(event)
	}

	switch event.(type) {
	case events.ItemRevealedEvent, events.CelebrationChangedEvent,
		events.RevealPhaseChangeEvent, events.RevealCompletedEvent:
	default:
		return
	}

	p.mu.Lock()
	skip := p.batching > 0 || p.seq == nil
	p.mu.Unlock()
	if skip {
		return
	}

	_ = p.Render()
}

// Batch runs fn with rendering suspended, then renders once
func (p *Presenter) Batch(fn func()) {
	p.mu.Lock()
	p.batching++
	p.mu.Unlock()

	fn()

	p.mu.Lock()
	p.batching--
	p.mu.Unlock()

	_ = p.Render()
}

// suspend stops event-driven rendering for good
func (p *Presenter) suspend() {
	p.mu.Lock()
	p.batching++
	p.mu.Unlock()
}

// Render edits the message to show the current sequencer state
func (p *Presenter) Render() error {
	return p.render(false)
}

// RenderClosed renders the current state with every button disabled
func (p *Presenter) RenderClosed() error {
	return p.render(true)
}

func (p *Presenter) render(disabled bool) error {
	p.mu.Lock()
	seq := p.seq
	p.mu.Unlock()
	if seq == nil {
		return nil
	}

	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	snap := seq.Snapshot()
	components := BuildComponents(snap)
	if disabled {
		components = common.DisableComponents(components)
	}

	_, err := p.editor.InteractionResponseEdit(p.interaction, common.BuildMessageEdit(BuildEmbed(snap, p.mode), components))
	if err != nil {
		log.WithFields(log.Fields{
			"sessionID": snap.SessionID,
			"phase":     snap.Phase,
			"error":     err,
		}).Warn("Failed to update reveal message")
	}
	return err
}
