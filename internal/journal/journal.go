// Package journal keeps an append-only record of lobby activity. Entries are
// queued without blocking the caller and written to every configured sink by
// a single worker goroutine.
package journal

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Kind string

const (
	KindLobbyCreated  Kind = "lobby_created"
	KindPlayerJoined  Kind = "player_joined"
	KindPlayerLeft    Kind = "player_left"
	KindLobbyReset    Kind = "lobby_reset"
	KindLobbyDeleted  Kind = "lobby_deleted"
	KindGameStarted   Kind = "game_started"
	KindCardDrawn     Kind = "card_drawn"
	KindCardDiscarded Kind = "card_discarded"
)

// Entry is one journal row. Card values are only recorded for discards,
// which are public; drawn cards stay private.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Kind      Kind      `gorm:"size:32;index" json:"kind"`
	LobbyID   string    `gorm:"size:36;index" json:"lobbyId"`
	Pin       string    `gorm:"size:6" json:"pin"`
	PlayerID  string    `gorm:"size:64" json:"playerId,omitempty"`
	Detail    string    `gorm:"size:128" json:"detail,omitempty"`
	Card      int       `json:"card,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Entry) TableName() string { return "lobby_journal" }

// Recorder accepts entries without blocking.
type Recorder interface {
	Record(Entry)
}

// Sink persists or forwards a single entry.
type Sink interface {
	Name() string
	Write(ctx context.Context, e Entry) error
}

type Nop struct{}

func (Nop) Record(Entry) {}

type Journal struct {
	queue chan Entry
	sinks []Sink
	log   *zap.Logger
	now   func() time.Time
}

func New(log *zap.Logger, size int, sinks ...Sink) *Journal {
	if size <= 0 {
		size = 256
	}
	return &Journal{
		queue: make(chan Entry, size),
		sinks: sinks,
		log:   log,
		now:   time.Now,
	}
}

// Record queues e for the worker. A full queue drops the entry.
func (j *Journal) Record(e Entry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = j.now()
	}
	select {
	case j.queue <- e:
	default:
		j.log.Warn("journal queue full, dropping entry",
			zap.String("kind", string(e.Kind)),
			zap.String("lobby_id", e.LobbyID))
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (j *Journal) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			j.flush()
			return nil
		case e := <-j.queue:
			j.write(ctx, e)
		}
	}
}

func (j *Journal) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case e := <-j.queue:
			j.write(ctx, e)
		default:
			return
		}
	}
}

func (j *Journal) write(ctx context.Context, e Entry) {
	for _, s := range j.sinks {
		if err := s.Write(ctx, e); err != nil {
			j.log.Error("journal write failed",
				zap.String("sink", s.Name()),
				zap.String("kind", string(e.Kind)),
				zap.Error(err))
		}
	}
}
