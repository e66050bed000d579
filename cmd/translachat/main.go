// Command translachat is the translation chat CLI.
//
// Usage:
//
//	translachat create -name Naoto -lang ja [-server URL]
//	translachat join -code ABC123 -name MinJi -lang ko [-server URL]
//	translachat host -name Naoto -lang ja [-listen :9090]
//	translachat connect -addr host:9090 -name MinJi -lang ko
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yuuma-dev/translachat/internal/app"
	"github.com/yuuma-dev/translachat/internal/chat"
	"github.com/yuuma-dev/translachat/internal/client"
	"github.com/yuuma-dev/translachat/internal/config"
	"github.com/yuuma-dev/translachat/internal/display"
	"github.com/yuuma-dev/translachat/internal/rooms"
	"github.com/yuuma-dev/translachat/internal/translate"
	"github.com/yuuma-dev/translachat/internal/transport/tcp"
	"github.com/yuuma-dev/translachat/internal/ui"
	"github.com/yuuma-dev/translachat/pkg/protocol"
)

const defaultRoom = "LOBBY"

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "create":
		runCreate(cfg, os.Args[2:])
	case "join":
		runJoin(cfg, os.Args[2:])
	case "host":
		runHost(cfg, os.Args[2:])
	case "connect":
		runConnect(cfg, os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		log.Printf("unknown command %q", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `translachat - real-time translation chat

Commands:
  create   Create a new chat room on the hosted relay
  join     Join a chat room by invite code
  host     Host a direct chat session over TCP
  connect  Connect to a direct chat host

Run "translachat <command> -h" for command flags.`)
}

func runCreate(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "Your display name")
	lang := fs.String("lang", "", "Your language code (ja/ko/en/zh/...)")
	server := fs.String("server", cfg.ServerURL, "Relay server URL")
	fs.Parse(args)
	requireIdentity(*name, *lang)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	code, err := rooms.NewClient(*server).Create(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to create room: %v", err)
	}

	preamble := []string{
		"Room created! Invite code: " + code,
		fmt.Sprintf("Share: translachat join -code %s -lang <lang> -name <name>", code),
	}
	c := client.NewWebSocket(wsURL(*server), code, *name, *lang)
	runClientChat(cfg, c, *name, *lang, preamble)
}

func runJoin(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	code := fs.String("code", "", "Room invite code")
	name := fs.String("name", "", "Your display name")
	lang := fs.String("lang", "", "Your language code (ja/ko/en/zh/...)")
	server := fs.String("server", cfg.ServerURL, "Relay server URL")
	fs.Parse(args)
	requireIdentity(*name, *lang)
	if *code == "" {
		log.Fatal("Room code is required. Use -code flag")
	}

	roomCode := strings.ToUpper(*code)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	exists, err := rooms.NewClient(*server).Exists(ctx, roomCode)
	cancel()
	if err != nil {
		log.Fatalf("Failed to join room: %v", err)
	}
	if !exists {
		log.Fatal("Room not found")
	}

	preamble := []string{"Joined room " + roomCode}
	c := client.NewWebSocket(wsURL(*server), roomCode, *name, *lang)
	runClientChat(cfg, c, *name, *lang, preamble)
}

func runHost(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	name := fs.String("name", "", "Your display name")
	lang := fs.String("lang", "", "Your language code (ja/ko/en/zh/...)")
	listen := fs.String("listen", ":9090", "Address to listen on")
	fs.Parse(args)
	requireIdentity(*name, *lang)

	// The terminal belongs to the UI; relay logs would corrupt it.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	relay := chat.NewRelay(chat.Options{DefaultRoom: defaultRoom, Logger: logger})
	srv := tcp.New(*listen, relay.HandleConn, logger)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Failed to host: %v", err)
		}
	}()
	defer srv.Stop()
	defer relay.Stop()

	messages := app.RelayMessages(relay)
	send := func(text string) error {
		return relay.Broadcast(defaultRoom, protocol.NewChat(*name, *lang, text))
	}

	preamble := []string{
		"Hosting on " + *listen,
		fmt.Sprintf("Peers: translachat connect -addr <host>%s -lang <lang> -name <name>", *listen),
	}
	runChat(cfg, *name, *lang, messages, send, preamble)
}

func runConnect(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	addr := fs.String("addr", "", "Host address (e.g. localhost:9090)")
	name := fs.String("name", "", "Your display name")
	lang := fs.String("lang", "", "Your language code (ja/ko/en/zh/...)")
	fs.Parse(args)
	requireIdentity(*name, *lang)
	if *addr == "" {
		log.Fatal("Host address is required. Use -addr flag")
	}

	c := client.NewTCP(*addr, *name, *lang)
	runClientChat(cfg, c, *name, *lang, []string{"Connected to " + *addr})
}

func runClientChat(cfg *config.Config, c client.Client, name, lang string, preamble []string) {
	if err := c.Connect(); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer c.Disconnect()

	if err := c.Join(); err != nil {
		log.Fatalf("Failed to join: %v", err)
	}

	runChat(cfg, name, lang, c.Messages(), c.SendChat, preamble)
}

// runChat wires the UI, display handler and session loop together and blocks
// until the user quits.
func runChat(cfg *config.Config, name, lang string, messages <-chan protocol.Message, send app.Sender, preamble []string) {
	gui, err := ui.New(name, lang)
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}
	defer gui.Close()

	if err := gui.Init(); err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}

	for _, line := range preamble {
		gui.Render(display.Event{Kind: display.KindSystem, TranslatedText: line})
	}

	translator := translate.New(cfg.TranslateAPI)
	handler := display.NewHandler(name, lang, translator, gui.SetTranslating)
	session := app.NewSession(name, messages, send, handler, gui)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.Run(ctx)

	// Readiness probe only; failures degrade to annotated messages later.
	go func() {
		probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
		defer probeCancel()
		if err := translator.Health(probeCtx); err != nil {
			gui.Render(display.Event{Kind: display.KindSystem, TranslatedText: "Warning: " + err.Error()})
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		gui.Stop()
	}()

	if err := gui.MainLoop(); err != nil {
		log.Printf("UI error: %v", err)
	}
}

func requireIdentity(name, lang string) {
	if name == "" {
		log.Fatal("Display name is required. Use -name flag")
	}
	if lang == "" {
		log.Fatal("Language code is required. Use -lang flag")
	}
}

// wsURL derives the relay's WebSocket endpoint from its HTTP base URL.
func wsURL(serverURL string) string {
	url := serverURL
	if strings.HasPrefix(url, "https") {
		url = "wss" + strings.TrimPrefix(url, "https")
	} else if strings.HasPrefix(url, "http") {
		url = "ws" + strings.TrimPrefix(url, "http")
	}
	return strings.TrimRight(url, "/") + "/ws"
}
