package omnetup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: omnetup [command]")
	colSuccess.Println("Without a command the full workflow runs end-to-end")
	fmt.Println()
	colInfo.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"run", "", "Run the full workflow (default)"},
		{"fetch", "", "Download and verify the release archive only"},
		{"clean", "[options]", "Remove the extraction tree, archive, logs or environment"},
		{"log", "", "TUI viewer for configure/build logs"},
		{"info", "", "Show resolved configuration and the dependency set"},
		{"check-update", "", "Check for a newer OMNeT++ release"},
		{"version, --version", "", "Version information"},
		{"help, -h", "", "This help text"},
	}

	// Dynamic padding: size the first column to the longest usage string.
	maxLen := 0
	for _, c := range cmds {
		length := len(c.Cmd) + len(c.Args)
		if c.Args != "" {
			length++
		}
		if length > maxLen {
			maxLen = length
		}
	}
	columnWidth := maxLen + 4

	for _, c := range cmds {
		var usageString string
		if c.Args != "" {
			usageString = fmt.Sprintf("  %s %s", c.Cmd, c.Args)
		} else {
			usageString = fmt.Sprintf("  %s", c.Cmd)
		}

		fmt.Print("  ")
		colNote.Printf("%s", c.Cmd)
		if c.Args != "" {
			fmt.Print(" ")
			colSuccess.Printf("%s", c.Args)
		}

		pad := columnWidth - len(usageString)
		if pad < 1 {
			pad = 1
		}
		fmt.Print(strings.Repeat(" ", pad))
		colInfo.Println(c.Desc)
	}

	fmt.Println()
}

// exitStatus extracts the child's exit code from a wrapped error so the
// process propagates the first failing step's status.
func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}

// Main is the CLI entrypoint for omnetup.
func Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		colArrow.Print("\n-> ")
		colError.Println("Interrupted, aborting. Press Ctrl+C again to force exit.")
		cancel()
		select {
		case <-sigs:
			os.Exit(130)
		case <-time.After(10 * time.Second):
			os.Exit(130)
		}
	}()

	configPath := ConfigFile
	if override := os.Getenv("OMNETUP_CONF"); override != "" {
		configPath = override
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := initConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	UserExec = NewExecutor(ctx)
	if cfg.Priority == "idle" || cfg.Priority == "superidle" {
		UserExec.ApplyIdlePriority = true
	}

	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "", "run":
		if err := runPipeline(ctx, cfg, workflowSteps()); err != nil {
			colArrow.Print("-> ")
			colError.Printf("Error: %v\n", err)
			if errors.Is(err, errNoManager) {
				os.Exit(1)
			}
			os.Exit(exitStatus(err))
		}
		colArrow.Print("-> ")
		colSuccess.Printf("OMNeT++ %s built successfully in %s\n", cfg.Version, cfg.SrcDir())

	case "fetch":
		if err := fetchArchive(ctx, cfg); err != nil {
			colArrow.Print("-> ")
			colError.Printf("Error: %v\n", err)
			os.Exit(exitStatus(err))
		}

	case "clean":
		if err := handleCleanCommand(ctx, os.Args[2:], cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "log":
		os.Exit(runTUI(cfg))

	case "info":
		if err := handleInfoCommand(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "check-update":
		if err := checkForUpdate(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version", "--version":
		fmt.Printf("omnetup %s (%s/%s, built %s)\n", version, runtime.GOOS, runtime.GOARCH, buildDate)

	case "help", "-h", "--help":
		printHelp()

	default:
		fmt.Println("Unknown command:", command)
		printHelp()
		os.Exit(1)
	}
}
