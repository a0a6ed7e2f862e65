// Command lobbywatch shows the live lobby list of a cardlobby server in the
// terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DoyleJ11/cardlobby-backend/internal/config"
	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

type options struct {
	url  string
	once bool
}

func main() {
	cobra.CheckErr(config.LoadDotEnv(".env"))
	cobra.CheckErr(newCmd(&options{}).Execute())
}

func newCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobbywatch",
		Short: "Watch the lobbies of a cardlobby server.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.url, "url", "u", "ws://localhost:8080/ws", "websocket endpoint to watch (env: CARDLOBBY_WATCH_URL)")
	fs.BoolVar(&opts.once, "once", false, "print the current list and exit (env: CARDLOBBY_WATCH_ONCE)")
	config.BindEnv(fs, "CARDLOBBY_WATCH")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func watch(ctx context.Context, opts *options) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, opts.url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.url, err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(ctx, conn, types.ServerMessage{Event: types.EventGetLobbies}); err != nil {
		return err
	}

	var area *pterm.AreaPrinter
	if !opts.once {
		area, err = pterm.DefaultArea.WithRemoveWhenDone(false).Start()
		if err != nil {
			return err
		}
		defer area.Stop()
	}

	for {
		var env types.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return nil
			}
			return err
		}

		switch env.Event {
		case types.EventLobbyList:
			var snaps []types.LobbySnapshot
			if err := json.Unmarshal(env.Data, &snaps); err != nil {
				return fmt.Errorf("decode lobby list: %w", err)
			}
			out, err := renderLobbies(snaps, time.Now())
			if err != nil {
				return err
			}
			if opts.once {
				fmt.Print(out)
				conn.Close(websocket.StatusNormalClosure, "bye")
				return nil
			}
			area.Update(out)

		case types.EventLobbyError:
			var lerr types.LobbyError
			_ = json.Unmarshal(env.Data, &lerr)
			pterm.Warning.Printfln("server error: %s (%s)", lerr.Message, lerr.Reason)
		}
	}
}
