package main

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/dealer-net/blackjack/domain/blackjack"
	"github.com/dealer-net/blackjack/network"
)

// handRenderer prints both hands after every change, masking the
// dealer's hole card until the reveal.
type handRenderer struct{}

var _ network.Renderer = (*handRenderer)(nil)

func (handRenderer) RenderState(roundIdx, totalRounds int, player, dealer blackjack.Hand, hideDealer bool) {
	title := pterm.Sprintf("Round %d/%d", roundIdx, totalRounds)
	body := handLine("Player", player, false) + "\n" + handLine("Dealer", dealer, hideDealer)
	pterm.DefaultBox.WithTitle(title).WithTitleTopCenter().Println(body)
}

func (handRenderer) RenderResult(roundIdx, totalRounds int, result blackjack.Result) {
	switch result {
	case blackjack.ResultWin:
		pterm.Success.Printfln("Result: %s", result)
	case blackjack.ResultLoss:
		pterm.Error.Printfln("Result: %s", result)
	default:
		pterm.Info.Printfln("Result: %s", result)
	}
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
	if hideSecond && len(cards) == 1 {
		parts = append(parts, blackjack.FaceDown)
	}
	total := pterm.Sprintf("%d", hand.Value())
	if hideSecond {
		visible := "0"
		if len(cards) > 0 {
			visible = pterm.Sprintf("%d", blackjack.NewHand(cards[0]).Value())
		}
		total = visible + "+"
	}
	return pterm.Sprintf("%s: %s   (total: %s)", title, strings.Join(parts, " "), total)
}
