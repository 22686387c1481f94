package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/OfficiallySp/Audiology/internal/config"
)

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > environment > config file > defaults
func parseArgs() (config.Config, string, []string, error) {
	args := os.Args[1:]

	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		}
		if arg == "--init-config" {
			return config.Config{}, "", nil, initConfigFile()
		}
	}

	// A .env file is a convenient place to keep the API token out of
	// shell history and config files.
	_ = godotenv.Load()

	var configPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, "", nil, fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return config.Config{}, "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	if cfg.APIToken == "" {
		cfg.APIToken = os.Getenv("AUDD_API_TOKEN")
	}

	var paths []string
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--dry-run", "-n":
			cfg.DryRun = true

		case "--review", "-r":
			cfg.Review = true

		case "--no-rename":
			cfg.Rename = false

		case "--merge", "-m":
			if i+1 >= len(args) {
				return config.Config{}, "", nil, fmt.Errorf("--merge requires a mode (replace or preserve)")
			}
			i++
			cfg.Merge = args[i]

		case "--providers", "-p":
			if i+1 >= len(args) {
				return config.Config{}, "", nil, fmt.Errorf("--providers requires a comma-separated list")
			}
			i++
			cfg.Providers = splitProviders(args[i])

		case "--token", "-t":
			if i+1 >= len(args) {
				return config.Config{}, "", nil, fmt.Errorf("--token requires a value")
			}
			i++
			cfg.APIToken = args[i]

		case "--sample-seconds", "-s":
			if i+1 >= len(args) {
				return config.Config{}, "", nil, fmt.Errorf("--sample-seconds requires a number argument")
			}
			i++
			var secs int
			if _, err := fmt.Sscanf(args[i], "%d", &secs); err != nil {
				return config.Config{}, "", nil, fmt.Errorf("invalid sample seconds value: %s", args[i])
			}
			cfg.SampleSeconds = secs

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return config.Config{}, "", nil, fmt.Errorf("unknown flag: %s", arg)
			}
			paths = append(paths, arg)
		}
	}

	if len(paths) == 0 {
		return config.Config{}, "", nil, fmt.Errorf("no files or directories given")
	}

	return cfg, configPath, paths, nil
}

func splitProviders(s string) []string {
	var providers []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			providers = append(providers, p)
		}
	}
	return providers
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		os.Exit(0)
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  api_token: your recognition service token (or set AUDD_API_TOKEN)")
	fmt.Println("  providers: catalogs to pull metadata from (apple_music, spotify, deezer, ...)")
	fmt.Println("  review: true/false (confirm every file before writing)")
	fmt.Println("  merge: replace or preserve (how recognized tags meet existing ones)")
	fmt.Println("  rename: true/false (rename files to \"Artist - Title\")")
	fmt.Println("  sample_seconds: 1-30 (length of the fingerprint sample)")

	os.Exit(0)
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("audiology - Recognize audio tracks and fix their tags and file names")
	fmt.Println()
	fmt.Println("Usage: audiology [options] <files or directories>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -t, --token <token>        Recognition API token (or set AUDD_API_TOKEN)")
	fmt.Println("  -p, --providers <list>     Metadata catalogs, comma-separated (default: apple_music,spotify)")
	fmt.Println("  -r, --review               Confirm or edit each file's tags before writing")
	fmt.Println("  -m, --merge <mode>         replace (trust recognition) or preserve (keep non-empty tags)")
	fmt.Println("      --no-rename            Keep original file names")
	fmt.Println("  -s, --sample-seconds <n>   Fingerprint sample length in seconds (1-30, default: 10)")
	fmt.Println("  -n, --dry-run              Recognize and report without writing anything")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./audiology.yaml")
	fmt.Println("  ~/.config/audiology/config.yaml")
	fmt.Println("  ~/.audiology.yaml")
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Println("  Normal mode: Progress bar shown, detailed logs saved to:")
	fmt.Println("    ~/.local/share/audiology/logs/")
	fmt.Println("  Verbose mode: All output to stdout, no progress bar, no file logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Preview what a directory would be tagged as")
	fmt.Println("  audiology --dry-run ~/Music/unsorted")
	fmt.Println()
	fmt.Println("  # Tag and rename everything in a directory")
	fmt.Println("  audiology ~/Music/unsorted")
	fmt.Println()
	fmt.Println("  # Review each file before anything is written")
	fmt.Println("  audiology -r ~/Music/unsorted")
	fmt.Println()
	fmt.Println("  # Keep existing non-empty tags, only fill the gaps")
	fmt.Println("  audiology -m preserve track.mp3")
	fmt.Println()
	fmt.Println("  # Create a config file to persist settings")
	fmt.Println("  audiology --init-config")
}
