package main

import (
	"bufio"
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/adapters/wsrtc"
	"github.com/dkeye/voiceroom/internal/backend"
	"github.com/dkeye/voiceroom/internal/config"
	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/session"
)

// roomctl joins a room from the terminal: every stdin line is sent as a chat
// message, seat and chat changes are logged.
func main() {
	identity := flag.String("identity", "", "user id")
	name := flag.String("name", "", "display name")
	room := flag.String("room", "lobby", "room to join")
	seat := flag.Int("seat", -1, "seat to take after joining")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *name == "" {
		*name = *identity
	}
	id, err := domain.NewIdentity(*identity, *name, "")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid identity")
	}

	sess := session.New(session.Options{
		Backend: backend.New(backend.Options{
			BaseURL:    cfg.Client.BackendURL,
			AppKey:     cfg.Client.AppKey,
			HTTPClient: &http.Client{Timeout: cfg.Client.HTTPTimeout},
		}),
		Transport: wsrtc.New(wsrtc.Options{
			EnableMedia: cfg.Client.EnableMedia,
			RecvSlots:   cfg.Client.RecvSlots,
			ICEServers:  cfg.Client.ICEServers,
		}),
		TransportURL: cfg.Client.SignalURL,
		Layout:       cfg.Client.Layout(),
	})
	unsubscribe := sess.Subscribe(session.ListenerFuncs{
		SeatsChanged: func(seats []domain.Seat) {
			taken := 0
			for _, s := range seats {
				if !s.Empty() {
					taken++
				}
			}
			log.Info().Int("seats", len(seats)).Int("taken", taken).Msg("seats changed")
		},
		ChatChanged: func(messages []domain.ChatMessage) {
			if len(messages) == 0 {
				log.Info().Msg("chat cleared")
				return
			}
			last := messages[len(messages)-1]
			log.Info().Str("from", last.User.Name).Msg(last.Message)
		},
		MicInviteReceived: func(seatIndex int) {
			log.Info().Int("seat", seatIndex).Msg("invited to the mic")
		},
		GiftReceived: func(from domain.Identity, gift string) {
			log.Info().Str("from", from.Name).Str("gift", gift).Msg("gift")
		},
	})
	defer unsubscribe()

	joined, err := sess.Connect(ctx, id, *room)
	if err != nil {
		log.Fatal().Err(err).Str("room", *room).Msg("join failed")
	}
	defer func() {
		if err := sess.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}()
	log.Info().Str("room", joined.ID()).Int("participants", len(joined.Participants())).Msg("joined")

	if *seat >= 0 {
		if err := joined.TakeSeat(ctx, *seat); err != nil {
			log.Warn().Err(err).Int("seat", *seat).Msg("take seat")
		}
	}

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			if err := joined.SendMessage(ctx, line); err != nil {
				log.Warn().Err(err).Msg("send message")
			}
		}
	}
}
