package reveal

import (
	"errors"

	"luckydraw/bot/common"
	"luckydraw/events"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleInteraction handles reveal buttons and the shipping modal
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var customID string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		customID = i.ModalSubmitData().CustomID
	default:
		return
	}

	action, sessionID, index, err := ParseCustomID(customID)
	if err != nil {
		log.Warnf("Ignoring reveal interaction: %v", err)
		return
	}

	session := f.sessions.get(sessionID)
	if session == nil {
		common.RespondWithError(s, i, "This draw has finished or expired.")
		return
	}

	userID, err := common.InteractionUserID(i)
	if err != nil {
		log.Errorf("Error reading user of reveal interaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	if userID != session.ActorID {
		common.RespondWithError(s, i, "Only the person who ran this draw can do that.")
		return
	}

	switch action {
	case ActionOpenItem:
		f.handleOpenItem(s, i, session, index)
	case ActionSummary:
		f.handleSummary(s, i, session)
	case ActionShip:
		f.handleShip(s, i, session)
	case ActionDone:
		f.handleDone(s, i, session)
	case ActionShipModal:
		f.handleShippingSubmit(s, i, session)
	}
}

func (f *Feature) handleOpenItem(s *discordgo.Session, i *discordgo.InteractionCreate, session *Session, index int) {
	var err error
	session.Presenter.Batch(func() {
		err = session.Sequencer.Trigger(index)
	})

	if err != nil {
		respondWithSequenceError(s, i, err)
		return
	}
	acknowledge(s, i)
}

func (f *Feature) handleSummary(s *discordgo.Session, i *discordgo.InteractionCreate, session *Session) {
	var err error
	session.Presenter.Batch(func() {
		_, _, err = session.Sequencer.Summarize()
	})

	if err != nil {
		respondWithSequenceError(s, i, err)
		return
	}
	acknowledge(s, i)
}

func (f *Feature) handleShip(s *discordgo.Session, i *discordgo.InteractionCreate, session *Session) {
	var err error
	session.Presenter.Batch(func() {
		_, err = session.Sequencer.OpenShipping()
	})

	// A dismissed modal leaves the session in the shipping phase; reopen it
	if err != nil && session.Sequencer.Phase() != service.RevealPhaseShipping {
		respondWithSequenceError(s, i, err)
		return
	}

	snap := session.Sequencer.Snapshot()
	if err := common.RespondWithModal(s, i, BuildShippingModal(session.ID, snap.Summary, session.Mode)); err != nil {
		log.Errorf("Error opening shipping modal: %v", err)
	}
}

func (f *Feature) handleDone(s *discordgo.Session, i *discordgo.InteractionCreate, session *Session) {
	var err error
	session.Presenter.Batch(func() {
		err = session.Sequencer.Finish()
	})

	if err != nil {
		respondWithSequenceError(s, i, err)
		return
	}
	acknowledge(s, i)
}

func (f *Feature) handleShippingSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, session *Session) {
	snap := session.Sequencer.Snapshot()
	details := modalValues(i.ModalSubmitData())

	if f.eventBus != nil {
		f.eventBus.Publish(events.ShippingRequestedEvent{
			SessionID: session.ID,
			ActorID:   session.ActorID,
			Entries:   snap.Summary,
			Details:   details,
		})
	}

	session.Presenter.Batch(func() {
		if err := session.Sequencer.CloseShipping(); err != nil {
			log.WithFields(log.Fields{
				"sessionID": session.ID,
				"phase":     session.Sequencer.Phase(),
			}).Debug("Shipping submitted outside the shipping phase")
		}
	})

	if err := common.RespondWithSuccess(s, i, "Shipping details received. We will be in touch!", true); err != nil {
		log.Errorf("Error responding to shipping submit: %v", err)
	}
}

func acknowledge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.AcknowledgeComponent(s, i); err != nil {
		log.Errorf("Error acknowledging reveal interaction: %v", err)
	}
}

func respondWithSequenceError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, service.ErrRevealIndex):
		common.RespondWithError(s, i, "That prize is not part of this draw.")
	case errors.Is(err, service.ErrInvalidTransition):
		common.RespondWithError(s, i, "That action is no longer available.")
	default:
		log.Errorf("Unexpected reveal error: %v", err)
		common.RespondWithError(s, i, "Something went wrong. Please try again later.")
	}
}
