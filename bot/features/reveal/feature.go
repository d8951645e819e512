package reveal

import (
	"sync"
	"time"

	"luckydraw/models"
	"luckydraw/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// SessionTTL is how long a reveal stays interactive. Interaction tokens expire after 15 minutes.
const SessionTTL = 14 * time.Minute

// Feature runs the reveal sequence of every draw as an interactive Discord message
type Feature struct {
	eventBus service.EventPublisher
	opts     service.RevealOptions
	sessions *sessionStore

	stop     chan struct{}
	stopOnce sync.Once
}

// NewFeature creates a new reveal feature instance
func NewFeature(eventBus service.EventPublisher, opts service.RevealOptions) *Feature {
	f := &Feature{
		eventBus: eventBus,
		opts:     opts,
		sessions: newSessionStore(),
		stop:     make(chan struct{}),
	}

	go f.startSessionCleanup()

	return f
}

// StartSession creates the sequencer for a drawn batch, reveals its normal
// prizes and renders the message as the response to interaction.
func (f *Feature) StartSession(editor MessageEditor, interaction *discordgo.Interaction, actorID int64, results []models.DrawnResult, mode models.DisplayMode) *Session {
	presenter := NewPresenter(editor, interaction, mode, f.eventBus)
	seq := service.NewRevealSequencer(interaction.ID, results, presenter, f.opts)
	presenter.Attach(seq)

	session := &Session{
		ID:        interaction.ID,
		ActorID:   actorID,
		Mode:      mode,
		Sequencer: seq,
		Presenter: presenter,
		CreatedAt: time.Now(),
	}
	f.sessions.add(session)

	go func() {
		select {
		case <-seq.Done():
			f.sessions.remove(session.ID)
		case <-f.stop:
		}
	}()

	log.WithFields(log.Fields{
		"sessionID": session.ID,
		"actorID":   actorID,
		"itemCount": len(results),
	}).Info("Reveal session started")

	presenter.Batch(seq.Start)
	return session
}

// Session returns an active session by ID, nil if it finished or expired
func (f *Feature) Session(id string) *Session {
	return f.sessions.get(id)
}

// ActiveSessions returns the number of interactive reveals
func (f *Feature) ActiveSessions() int {
	return f.sessions.len()
}

// startSessionCleanup periodically tears down sessions whose interaction token expired
func (f *Feature) startSessionCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-f.stop:
			return
		case now := <-ticker.C:
			f.expireSessions(now)
		}
	}
}

func (f *Feature) expireSessions(now time.Time) {
	for _, session := range f.sessions.takeExpired(now, SessionTTL) {
		log.WithField("sessionID", session.ID).Info("Reveal session expired")
		closeSession(session)
	}
}

// Close tears down every session and stops the cleanup loop
func (f *Feature) Close() {
	f.stopOnce.Do(func() {
		close(f.stop)
	})

	for _, session := range f.sessions.takeAll() {
		closeSession(session)
	}
}

func closeSession(session *Session) {
	session.Presenter.suspend()
	session.Sequencer.Close()
	_ = session.Presenter.RenderClosed()
}
