package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/dealer-net/blackjack/network"
	"github.com/dealer-net/blackjack/protocol"
)

func main() {
	name := flag.String("name", "The House Always ACKs", "server display name carried in offers")
	port := flag.Uint("port", 0, "TCP port to listen on, 0 for an ephemeral one")
	flag.Parse()

	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Black", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("Jack", pterm.FgRed.ToStyle()),
	).Render()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &network.Server{
		Name:   *name,
		Port:   uint16(*port),
		Logger: logger,
		NewRenderer: func(playerName string) network.Renderer {
			return &tableRenderer{playerName: playerName}
		},
	}
	if err := srv.Listen(); err != nil {
		pterm.Error.Printfln("Could not start server: %v", err)
		os.Exit(1)
	}

	pterm.Info.Printfln("Server started, listening on IP address %s", network.LocalIP())
	pterm.Info.Printfln("Offering UDP broadcasts on port %d, TCP listening on port %d",
		protocol.UDPPortOffers, srv.TCPPort())

	srv.Serve(ctx)
	pterm.Println()
	pterm.Info.Println("Server shutting down gracefully...")
}
