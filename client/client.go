package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"driftway/internal"

	"github.com/Netflix/go-env"
	"github.com/coder/websocket"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress  string `env:"DRIFTWAY_SERVER_ADDR,default=localhost:8080"`
	Email          string `env:"DRIFTWAY_EMAIL,required=true"`
	Password       string `env:"DRIFTWAY_PASSWORD,required=true"`
	ConversationID string `env:"DRIFTWAY_CONVERSATION_ID,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run logs in over REST, opens the websocket, authenticates, joins the
// configured conversation and prints everything the server pushes.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := internal.NewLogger(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Login to obtain a session credential pinned to this origin.
	credential, userID, err := login(ctx, config)
	if err != nil {
		return exitRuntime, err
	}
	log.Info("Logged in", "user_id", userID)

	// 4. Open the websocket with the credential as bearer token.
	wsURL := fmt.Sprintf("ws://%s/ws", config.ServerAddress)
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + credential}},
	})
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	// 5. Authenticate, then join the conversation.
	frames := []map[string]any{
		{"type": "authenticate", "payload": map[string]any{"user_id": userID}},
		{"type": "join_conversation", "payload": map[string]any{"conversation_id": config.ConversationID}},
	}
	for _, frame := range frames {
		raw, _ := json.Marshal(frame)
		if err := conn.Write(ctx, websocket.MessageText, raw); err != nil {
			return exitRuntime, fmt.Errorf("write failed: %w", err)
		}
	}

	log.Info(">>> Connected! Listening (Ctrl+C to quit)...",
		"server", config.ServerAddress, "conversation_id", config.ConversationID)

	// 6. Event reception loop.
	// Runs until the context is canceled or the server closes the connection.
	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			// Normal exit if the user triggered a shutdown.
			if ctx.Err() != nil {
				log.Info("Stopping client...")
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("read error: %w", err)
		}

		var frame struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Warn("Unreadable frame", "error", err)
			continue
		}
		log.Info(fmt.Sprintf("[%s] %s %s",
			time.Now().Format(time.TimeOnly), frame.Type, string(frame.Payload)))
	}
}

func login(ctx context.Context, config Config) (credential, userID string, err error) {
	body, _ := json.Marshal(map[string]string{
		"email":    config.Email,
		"password": config.Password,
	})
	url := fmt.Sprintf("http://%s/api/auth/login", config.ServerAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}

	var out struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}

	subject, err := parseSubject(out.Credential)
	if err != nil {
		return "", "", err
	}
	return out.Credential, subject, nil
}

// parseSubject extracts the user id from the credential's claims without
// verifying the signature; the server does the verification.
func parseSubject(credential string) (string, error) {
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed credential")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}
	var claims struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", err
	}
	return claims.UserID, nil
}
