package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"storechat/internal/session"
	"storechat/internal/storefront"
	"storechat/internal/tui"
)

func main() {
	server := flag.String("server", getEnv("STORE_URL", "http://localhost:8090"), "storefront base URL")
	email := flag.String("email", getEnv("STORE_EMAIL", ""), "account email")
	password := flag.String("password", getEnv("STORE_PASSWORD", ""), "account password")
	productID := flag.String("product", "", "open the chat about this product")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required (flags or STORE_EMAIL / STORE_PASSWORD)")
	}

	ctx := context.Background()

	client, err := storefront.New(*server)
	if err != nil {
		log.Fatalf("invalid server URL: %v", err)
	}
	if _, err := client.Login(ctx, *email, *password); err != nil {
		log.Fatalf("login failed: %v", err)
	}

	wsURL, err := websocketURL(*server)
	if err != nil {
		log.Fatalf("invalid server URL: %v", err)
	}

	sess := session.New(session.Options{
		ProductID: *productID,
		Dial:      session.ChannelDialer(wsURL, client.SessionHeader()),
	})
	if err := sess.Start(ctx); err != nil {
		log.Fatalf("failed to connect: %v", err)
	}

	program := tea.NewProgram(tui.New(sess), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		sess.Close()
		log.Fatalf("tui error: %v", err)
	}
	sess.Close()
}

// websocketURL derives the channel endpoint from the HTTP base URL.
func websocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
