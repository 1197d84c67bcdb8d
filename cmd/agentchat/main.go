package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"agentchat/internal/adapter/tui/chat"
	"agentchat/internal/infra/config"
	"agentchat/internal/infra/logger"
	"agentchat/internal/infra/tracer"
)

func main() {
	args := stripConfigFlag(os.Args[1:])

	if len(args) == 0 {
		if err := runTUI(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
		return
	case "serve":
		err = runServe()
	case "prompt":
		err = runPrompt(os.Stdout, strings.Join(args[1:], " "))
	case "encrypt":
		err = runEncrypt(os.Stdout, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'agentchat --help' for usage information.\n", args[0])
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`agentchat - Multi-agent chat workspace

USAGE:
    agentchat [--config PATH] [COMMAND]

COMMANDS:
    (no command)    Open the terminal UI
    serve           Run the WebSocket/REST gateway until interrupted
    prompt TEXT     Create an agent team for TEXT and print its summary
    encrypt VALUE   Encrypt a gateway token for the config file
                    (passphrase from AGENTCHAT_CONFIG_KEY)

FLAGS:
    -h, --help      Show this help message
    --config PATH   Config file (default: ./agentchat.yaml)

CONFIGURATION:
    Config file: ./agentchat.yaml (optional, defaults apply when missing)
    Environment: AGENTCHAT_* variables override config

EXAMPLES:
    agentchat
    agentchat serve --config /etc/agentchat.yaml
    agentchat prompt "Analyze sales data and create a report"`)
}

// configPath returns the --config value, then AGENTCHAT_CONFIG, then the default.
func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("AGENTCHAT_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath
}

// stripConfigFlag removes --config and its value so the rest reads as a command.
func stripConfigFlag(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			i++
		case strings.HasPrefix(args[i], "--config="):
		default:
			out = append(out, args[i])
		}
	}
	return out
}

func runTUI() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Records written to the terminal would tear the rendered frame.
	if logger.InteractiveOutput(cfg.Logger.Output) {
		cfg.Logger.Output = filepath.Join(os.TempDir(), "agentchat.log")
	}
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	rt := initRuntime(ctx, cfg, log, nil)
	defer rt.Close()

	if cfg.Gateway.Enabled {
		gw, err := initGateway(rt.ctx, cfg, rt)
		if err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		go func() {
			if err := gw.Start(rt.ctx); err != nil {
				log.Error("gateway server error", "error", err)
			}
		}()
		defer stopGateway(gw, log)
	}

	app := chat.NewApp(chat.Deps{
		Engine:      rt.engine,
		Logger:      log,
		TypingDelay: cfg.TUI.TypingDelay,
	}, rt.bus, chat.Options{AltScreen: cfg.TUI.AltScreen, Mouse: cfg.TUI.Mouse})

	log.Info("agentchat starting", "mode", "tui", "gateway", cfg.Gateway.Enabled, "seeded", cfg.Engine.SeedSamples)
	return app.Run(rt.ctx)
}

func runServe() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.Gateway.Enabled = true
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	rt := initRuntime(ctx, cfg, log, nil)
	defer rt.Close()

	gw, err := initGateway(rt.ctx, cfg, rt)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	log.Info("agentchat starting", "mode", "serve", "addr", cfg.Gateway.Addr, "auth", authLabel(cfg.Gateway.Auth.Type))
	return gw.Start(rt.ctx)
}

func runEncrypt(w io.Writer, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("usage: agentchat encrypt VALUE")
	}
	passphrase := os.Getenv("AGENTCHAT_CONFIG_KEY")
	if passphrase == "" {
		return errors.New("AGENTCHAT_CONFIG_KEY is not set")
	}
	enc, err := config.EncryptValue(args[0], passphrase)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "enc:%s\n", enc)
	return err
}

func authLabel(t string) string {
	if t == "" {
		return "anonymous"
	}
	return t
}

const shutdownTimeout = 5 * time.Second
