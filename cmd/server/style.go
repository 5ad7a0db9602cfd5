package main

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/dealer-net/blackjack/domain/blackjack"
	"github.com/dealer-net/blackjack/network"
)

// tableRenderer prints the table after every state change, one renderer
// per session so panels carry the player's name.
type tableRenderer struct {
	playerName string
}

var _ network.Renderer = (*tableRenderer)(nil)

func (t *tableRenderer) RenderState(roundIdx, totalRounds int, player, dealer blackjack.Hand, hideDealer bool) {
	title := pterm.Sprintf("%s | Round %d/%d", pterm.LightCyan(t.playerName), roundIdx, totalRounds)
	body := formatHands(player, dealer, hideDealer)
	pterm.DefaultBox.WithTitle(title).WithTitleTopCenter().Println(body)
}

func (t *tableRenderer) RenderResult(roundIdx, totalRounds int, result blackjack.Result) {
	pterm.Info.Printfln("%s finished round %d/%d: %s", t.playerName, roundIdx, totalRounds, result)
}

func formatHands(player, dealer blackjack.Hand, hideDealer bool) string {
	return handLine("Player", player, false) + "\n" + handLine("Dealer", dealer, hideDealer)
}

func handLine(title string, hand blackjack.Hand, hideSecond bool) string {
	cards := hand.Cards()
	parts := make([]string, 0, len(cards)+1)
	for i, c := range cards {
		if hideSecond && i == 1 {
			parts = append(parts, blackjack.FaceDown)
		} else {
			parts = append(parts, c.String())
		}
	}
	// The hole card has been drawn into the hand even when it was never
	// seen; a one-card hand still shows a face-down placeholder.
	if hideSecond && len(cards) == 1 {
		parts = append(parts, blackjack.FaceDown)
	}
	return pterm.Sprintf("%s: %s   (total: %s)", title, strings.Join(parts, " "), totalText(hand, hideSecond))
}

func totalText(hand blackjack.Hand, hideSecond bool) string {
	if !hideSecond {
		return pterm.Sprintf("%d", hand.Value())
	}
	cards := hand.Cards()
	if len(cards) == 0 {
		return "0+"
	}
	visible := blackjack.NewHand(cards[0])
	return pterm.Sprintf("%d+", visible.Value())
}
