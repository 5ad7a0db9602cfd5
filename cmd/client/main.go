package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/dealer-net/blackjack/discovery"
	"github.com/dealer-net/blackjack/network"
	"github.com/dealer-net/blackjack/protocol"
)

func main() {
	name := flag.String("name", "Team Joker", "client display name sent to the server")
	flag.Parse()

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Black", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("Jack", pterm.FgRed.ToStyle()),
	).Render()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener := discovery.NewListener()
	for ctx.Err() == nil {
		rounds := askRounds(ctx)
		if rounds <= 0 {
			break
		}

		spinner, _ := pterm.DefaultSpinner.Start("Listening for offer requests...")
		offer, err := listener.WaitForOffer(ctx)
		if err != nil {
			spinner.Fail("No offers received")
			continue
		}
		spinner.Success(pterm.Sprintf("Received offer from %s (%s)", offer.IP, offer.Name))

		conn, err := net.DialTimeout("tcp", offer.Addr(), protocol.SocketTimeout)
		if err != nil {
			pterm.Error.Printfln("Could not connect to %s: %v", offer.Addr(), err)
			continue
		}

		session := &network.ClientSession{
			Conn:   conn,
			Name:   *name,
			Rounds: rounds,
			Prompt: &selectPrompter{ctx: ctx},
			Render: &handRenderer{},
		}
		stats, err := session.Play(ctx)
		conn.Close()

		if stats.Played > 0 {
			pterm.Success.Printfln("Finished playing %d rounds, win rate: %.2f%%", stats.Played, stats.WinRate())
		}
		if err != nil && ctx.Err() == nil {
			pterm.Println()
			pterm.Info.Println("Server disconnected. Returning to listening mode...")
		}
	}
	pterm.Println()
	pterm.Info.Println("Client shutting down...")
}

// askRounds prompts for a round count between 1 and 255. Returns 0 when
// the player wants out.
func askRounds(ctx context.Context) int {
	for ctx.Err() == nil {
		answer, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("How many rounds do you want to play? (q to quit)").
			Show()
		if answer == "q" || answer == "quit" || answer == "" {
			return 0
		}
		v, err := strconv.Atoi(answer)
		if err != nil {
			pterm.Warning.Println("Please enter an integer.")
			continue
		}
		if v < 1 || v > 255 {
			pterm.Warning.Println("Please enter 1..255")
			continue
		}
		return v
	}
	return 0
}

// selectPrompter asks Hit or Stand through an interactive select.
type selectPrompter struct {
	ctx context.Context
}

func (p *selectPrompter) Decision() (string, error) {
	if err := p.ctx.Err(); err != nil {
		return "", err
	}
	choice, err := pterm.DefaultInteractiveSelect.
		WithDefaultText("Hit or Stand?").
		WithOptions([]string{"Hit", "Stand"}).
		Show()
	if err != nil {
		return "", err
	}
	if choice == "Hit" {
		return protocol.DecisionHit, nil
	}
	return protocol.DecisionStand, nil
}
