// ABOUTME: Interactive terminal client for the spira agent backend.
// ABOUTME: Handles auth commands, message sending, and live progress rendering.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/sunspira/spira/internal/chat"
	"github.com/sunspira/spira/internal/config"
	"github.com/sunspira/spira/internal/credstore"
	"github.com/sunspira/spira/internal/gateway"
	"github.com/sunspira/spira/internal/session"
	"github.com/sunspira/spira/internal/task"
	"github.com/sunspira/spira/internal/transcript"
)

const banner = `
    ╭──────────────────────────────╮
    │                              │
    │   ┏━┓┏━┓╻┏━┓┏━┓              │
    │   ┗━┓┣━┛┃┣┳┛┣━┫              │
    │   ┗━┛╹  ╹╹┗╸╹ ╹              │
    │                              │
    │         spira client         │
    │                              │
    ╰──────────────────────────────╯
`

// getConfigPath returns the path to the client config file.
// Priority: SPIRA_CONFIG env var > XDG_CONFIG_HOME/spira/config.toml > ~/.config/spira/config.toml
func getConfigPath() string {
	if envPath := os.Getenv("SPIRA_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "spira", "config.toml")
}

// getDataPath returns the path to the spira data directory.
// Priority: XDG_DATA_HOME/spira > ~/.local/share/spira
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "spira")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run() error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	slog.SetDefault(setupLogger(cfg.Logging.Level))

	dataPath := getDataPath()
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	storagePath := cfg.Storage.Path
	if storagePath == "" {
		storagePath = filepath.Join(dataPath, "spira.db")
	}

	creds, err := credstore.Open(storagePath)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	defer creds.Close()

	store := session.NewStore()
	api := gateway.New(cfg.Gateway.URL)
	sub := task.NewSubscriber(cfg.Realtime.URL, store)
	ctrl := chat.NewController(store, api, sub, creds)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer sub.Close()

	ctrl.Init(ctx)

	// Print startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Gateway:  %s\n", cfg.Gateway.URL)
	green.Print("    ▶ ")
	fmt.Printf("Realtime: %s\n", cfg.Realtime.URL)
	green.Print("    ▶ ")
	if store.Credential() != "" {
		fmt.Println("Auth:     logged in (persisted token)")
	} else {
		fmt.Println("Auth:     logged out (/login or /register)")
	}
	fmt.Println()
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	dim := color.New(color.Faint)
	red := color.New(color.FgRed)
	sub.OnUpdate = func(p session.Progress) {
		dim.Printf("[%s] %s\n", p.Step, p.Details)
	}
	sub.OnStateChange = func(state task.State, err error) {
		if err != nil {
			red.Printf("[error] %s\n", chat.UserMessage(err))
		}
	}

	return runLoop(ctx, ctrl, store, sub, dataPath)
}

func runLoop(ctx context.Context, ctrl *chat.Controller, store *session.Store, sub *task.Subscriber, dataPath string) error {
	scanner := bufio.NewScanner(os.Stdin)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	for {
		fmt.Print("> ")

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else {
				if err := scanner.Err(); err != nil {
					errCh <- err
				} else {
					errCh <- io.EOF
				}
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "/quit" || input == "/exit" || input == "/q" {
			return nil
		}

		if input == "/help" {
			printHelp()
			fmt.Println()
			continue
		}

		if strings.HasPrefix(input, "/login") {
			args := strings.Fields(strings.TrimPrefix(input, "/login"))
			if len(args) != 2 {
				fmt.Println("Usage: /login <email> <password>")
			} else if err := ctrl.Login(ctx, args[0], args[1]); err != nil {
				red.Printf("[error] %s\n", chat.UserMessage(err))
			} else {
				green.Println("Logged in.")
			}
			fmt.Println()
			continue
		}

		if strings.HasPrefix(input, "/register") {
			args := strings.Fields(strings.TrimPrefix(input, "/register"))
			if len(args) != 2 {
				fmt.Println("Usage: /register <email> <password>")
			} else if err := ctrl.Register(ctx, args[0], args[1]); err != nil {
				red.Printf("[error] %s\n", chat.UserMessage(err))
			} else {
				green.Println("Registered and logged in.")
			}
			fmt.Println()
			continue
		}

		if input == "/logout" {
			ctrl.Logout(ctx)
			fmt.Println("Logged out. Chat context cleared.")
			fmt.Println()
			continue
		}

		if input == "/history" {
			printHistory(store)
			fmt.Println()
			continue
		}

		if input == "/export" {
			if err := exportTranscript(store, dataPath); err != nil {
				red.Printf("[error] %v\n", err)
			}
			fmt.Println()
			continue
		}

		// Plain text: send and stream progress until the task settles.
		if err := ctrl.Send(ctx, input); err != nil {
			if errors.Is(err, chat.ErrEmptyMessage) {
				continue
			}
			red.Printf("[error] %s\n", chat.UserMessage(err))
			fmt.Println()
			continue
		}

		switch sub.Wait(ctx) {
		case task.StateCompleted:
			printLastAgentMessage(store)
		case task.StateClosed:
			dim.Println("[closed] the server ended the stream without an answer")
		}
		// Failures were already rendered by the state-change handler.
		fmt.Println()
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /login <email> <password>      Log in")
	fmt.Println("  /register <email> <password>   Create an account and log in")
	fmt.Println("  /logout                        Log out and clear the chat context")
	fmt.Println("  /history                       Show the conversation so far")
	fmt.Println("  /export                        Write the conversation as HTML")
	fmt.Println("  /help                          Show this help")
	fmt.Println("  /quit                          Exit")
}

func printHistory(store *session.Store) {
	msgs := store.Messages()
	if len(msgs) == 0 {
		fmt.Println("No messages yet.")
		return
	}

	fmt.Println(strings.Repeat("-", 60))
	for _, msg := range msgs {
		prefix := "\033[32m←\033[0m " // Green arrow for agent messages
		if msg.Origin == session.OriginUser {
			prefix = "\033[34m→\033[0m " // Blue arrow for user messages
		}
		fmt.Printf("%s%s\n", prefix, msg.Content)
	}
	fmt.Println(strings.Repeat("-", 60))
}

func printLastAgentMessage(store *session.Store) {
	msgs := store.Messages()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if last.Origin != session.OriginAgent {
		return
	}
	fmt.Println(last.Content)
}

func exportTranscript(store *session.Store, dataPath string) error {
	name := fmt.Sprintf("transcript-%s.html", time.Now().Format("20060102-150405"))
	path := filepath.Join(dataPath, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating transcript file: %w", err)
	}
	defer f.Close()

	if err := transcript.Export(f, "spira transcript", store.Messages()); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
