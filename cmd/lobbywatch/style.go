package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

var tableHeader = []string{"PIN", "PLAYERS", "STATUS", "TURN", "DECK", "DISCARD", "AGE"}

// lobbyRows builds the table data for snaps, header first.
func lobbyRows(snaps []types.LobbySnapshot, now time.Time) pterm.TableData {
	data := pterm.TableData{tableHeader}
	for _, s := range snaps {
		names := make([]string, 0, len(s.Players))
		turn := "-"
		for _, p := range s.Players {
			names = append(names, p.Name)
			if p.ID == s.CurrentPlayerID {
				turn = p.Name
			}
		}

		status := "waiting"
		deck, discard := "-", "-"
		if s.Started {
			status = "playing"
			deck = strconv.Itoa(s.AvailableCount)
			discard = strconv.Itoa(len(s.DiscardPile))
		}

		data = append(data, []string{
			s.Pin,
			strconv.Itoa(len(s.Players)) + "/" + strconv.Itoa(s.MaxPlayers) + " " + strings.Join(names, ", "),
			status,
			turn,
			deck,
			discard,
			now.Sub(s.CreatedAt).Truncate(time.Second).String(),
		})
	}
	return data
}

func renderLobbies(snaps []types.LobbySnapshot, now time.Time) (string, error) {
	if len(snaps) == 0 {
		return pterm.Sprintfln("%s", pterm.Gray("no open lobbies")), nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(lobbyRows(snaps, now)).Srender()
}
