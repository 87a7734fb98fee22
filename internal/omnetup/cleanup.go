package omnetup

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
)

func handleCleanCommand(ctx context.Context, args []string, cfg *Config) error {
	cleanCmd := flag.NewFlagSet("clean", flag.ExitOnError)
	cleanTree := cleanCmd.Bool("tree", false, "Remove the extraction directory.")
	cleanArchive := cleanCmd.Bool("archive", false, "Remove the downloaded archive.")
	cleanLogs := cleanCmd.Bool("logs", false, "Remove configure/build logs.")
	cleanEnv := cleanCmd.Bool("env", false, "Remove the provisioned environment.")
	cleanAll := cleanCmd.Bool("all", false, "Everything: tree, archive, logs and environment.")

	if err := cleanCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}

	if !*cleanTree && !*cleanArchive && !*cleanLogs && !*cleanEnv && !*cleanAll {
		fmt.Println("Usage: omnetup clean [flag]")
		fmt.Println("You must specify what to clean up. Use one of the following flags:")
		cleanCmd.PrintDefaults()
		return nil
	}

	if *cleanAll {
		*cleanTree = true
		*cleanArchive = true
		*cleanLogs = true
		*cleanEnv = true
	}

	if *cleanTree {
		cPrintf(colWarn, "This will permanently delete the extraction tree at %s.\n", cfg.SrcDir())
		if askForConfirmation(colArrow, "Are you sure you want to proceed?") {
			if err := os.RemoveAll(cfg.SrcDir()); err != nil {
				return fmt.Errorf("failed to remove extraction tree: %w", err)
			}
			colArrow.Print("-> ")
			colSuccess.Println("Extraction tree removed.")
		}
	}

	if *cleanArchive {
		cPrintf(colWarn, "This will delete the cached archive %s.\n", cfg.ArchivePath())
		if askForConfirmation(colArrow, "Are you sure you want to proceed?") {
			if err := os.Remove(cfg.ArchivePath()); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove archive: %w", err)
			}
			colArrow.Print("-> ")
			colSuccess.Println("Archive removed.")
		}
	}

	if *cleanLogs {
		if err := os.RemoveAll(cfg.LogDir()); err != nil {
			return fmt.Errorf("failed to remove logs: %w", err)
		}
		colArrow.Print("-> ")
		colSuccess.Println("Logs removed.")
	}

	if *cleanEnv {
		if err := preflight(cfg); err != nil {
			return err
		}
		exists, err := envExists(ctx, cfg)
		if err != nil {
			return err
		}
		if !exists {
			colArrow.Print("-> ")
			colSuccess.Printf("Environment %s does not exist, nothing to do.\n", cfg.EnvName)
			return nil
		}
		cPrintf(colWarn, "This will remove the environment %q.\n", cfg.EnvName)
		if askForConfirmation(colArrow, "Are you sure you want to proceed?") {
			rmCmd := exec.CommandContext(ctx, cfg.Tool, "env", "remove", "-n", cfg.EnvName, "-y")
			if err := UserExec.Run(rmCmd); err != nil {
				return fmt.Errorf("failed to remove environment: %w", err)
			}
			colArrow.Print("-> ")
			colSuccess.Println("Environment removed.")
		}
	}

	return nil
}
