package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/palette-tools-mcp/internal/config"
	"github.com/ironsheep/palette-tools-mcp/internal/server"
	"github.com/ironsheep/palette-tools-mcp/internal/workspace"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("palette-tools-mcp - MCP server for eyedropper color picking and palette extraction")
	fmt.Println()
	fmt.Println("Usage: palette-tools-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>  YAML configuration file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PALETTE_MCP_CONFIG=<path>           Configuration file (if --config is not given)")
	fmt.Println("  GEMINI_API_KEY=<key>                API key, overrides the stored credential")
	fmt.Println("  PALETTE_MCP_MODEL=<name>            Gemini model")
	fmt.Println("  PALETTE_MCP_LANGUAGE=en|ko          Language of palette names (ko needs a font for PDF)")
	fmt.Println("  PALETTE_MCP_THEME=dark|light        PDF export theme")
	fmt.Println("  PALETTE_MCP_CREDENTIAL_PATH=<path>  Credential file")
	fmt.Println("  PALETTE_MCP_FONT=<path.ttf>         UTF-8 font for PDF export")
	fmt.Println("  PALETTE_MCP_LOG_LEVEL=debug         Log level (debug, info, warn, error)")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	configPath := os.Getenv("PALETTE_MCP_CONFIG")

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--version" || arg == "-v" || arg == "version":
			fmt.Printf("palette-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case arg == "--help" || arg == "-h" || arg == "help":
			usage()
			return
		case arg == "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config needs a path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q (try --help)\n", arg)
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	if cfg.Level() <= slog.LevelDebug {
		log.Printf("Palette MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if cfg.Gemini.Language != "en" && cfg.Export.FontPath == "" {
		logger.Warn("palette names may not fit the PDF core fonts; set PALETTE_MCP_FONT to export them",
			"language", cfg.Gemini.Language)
	}

	ws, err := workspace.New(workspace.Options{Config: cfg, Logger: logger})
	if err != nil {
		log.Fatalf("Workspace error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(ws)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}
