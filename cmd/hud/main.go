package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"arena-ledger/hud"
	pb "arena-ledger/proto/ledger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type Config struct {
	MasterAddr  string `envconfig:"MASTER_ADDR" default:"localhost:50051"`
	DisplayName string `envconfig:"DISPLAY_NAME" required:"true"`
	// HUD_TOKEN lets a client resume its previous identity after a restart
	Token string `envconfig:"HUD_TOKEN"`
	// HUD_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"HUD_COLOURS" default:"true"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Connect to the master
	// Insecure is fine here: TLS termination is not handled by this binary
	conn, err := grpc.NewClient(config.MasterAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect to master: %v", err)
	}
	defer conn.Close()

	client := pb.NewLedgerServiceClient(conn)
	ctx := context.Background()

	// 3. Join, presenting the previous token when we have one so the
	// server recognizes the reconnect and resumes our balance
	joinCtx := ctx
	if config.Token != "" {
		joinCtx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+config.Token)
	}
	joined, err := client.Join(joinCtx, &pb.JoinRequest{DisplayName: config.DisplayName})
	if err != nil {
		log.Fatalf("Join refused: %v", err)
	}

	// Every later call carries the fresh session token
	authCtx := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+joined.Token)

	display := hud.NewDisplay(hud.ColorRenderer{Colours: config.Colours})
	display.Attach(joined.DisplayName)

	// 4. Subscribe and render every push from the server
	stream, err := client.Subscribe(authCtx, &pb.SubscribeRequest{ParticipantId: joined.ParticipantId})
	if err != nil {
		log.Fatalf("Subscribe failed: %v", err)
	}

	go func() {
		for {
			evt, err := stream.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				display.Detach()
				return
			}
			display.Apply(hud.BalanceUpdate{
				DisplayName: evt.DisplayName,
				Balance:     evt.Balance,
				Delta:       evt.Delta,
				Reason:      evt.Reason,
				At:          evt.At.AsTime(),
			})
		}
	}()

	fmt.Printf("Joined as %s (id %s). Commands: earn, balance, leave\n",
		joined.DisplayName, joined.ParticipantId)
	fmt.Printf("Session token (export HUD_TOKEN to resume): %s\n", joined.Token)

	// 5. Command loop on stdin
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "earn":
			// Amount omitted on purpose: the server applies its configured reward
			if _, err := client.RequestReward(authCtx, &pb.RewardRequest{}); err != nil {
				fmt.Printf("Reward refused: %v\n", err)
			}
		case "balance":
			fmt.Printf("Shown balance: %s\n", display.Text())
		case "leave", "quit", "exit":
			if _, err := client.Leave(authCtx, &pb.LeaveRequest{}); err != nil {
				fmt.Printf("Leave failed: %v\n", err)
			}
			display.Detach()
			return
		case "":
		default:
			fmt.Println("Unknown command. Try: earn, balance, leave")
		}
	}
}
