package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/katanacore/machine/hardware/machine"
	"github.com/katanacore/machine/logger"
)

var (
	saveStatePath string
	loadStatePath string
	loadAddr      uint32
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assemble a machine, load a BIOS/image, and run it until interrupted",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&saveStatePath, "save-state", "", "write a save state to this path on exit")
	runCmd.Flags().StringVar(&loadStatePath, "load-state", "", "restore from a save state at this path before running")
	runCmd.Flags().Uint32Var(&loadAddr, "load-addr", 0x0C010000, "main RAM address --image is loaded at")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := machine.New(cfg, newOSFS())
	if err != nil {
		return fmt.Errorf("assemble machine: %w", err)
	}

	if cfg.BIOSPath != "" {
		data, err := os.ReadFile(cfg.BIOSPath)
		if err != nil {
			return fmt.Errorf("read BIOS image: %w", err)
		}
		if err := m.LoadBIOS(data); err != nil {
			return err
		}
	}
	if cfg.ImagePath != "" {
		data, err := os.ReadFile(cfg.ImagePath)
		if err != nil {
			return fmt.Errorf("read program image: %w", err)
		}
		if err := m.LoadImage(data, loadAddr); err != nil {
			return err
		}
	}
	if loadStatePath != "" {
		f, err := os.Open(loadStatePath)
		if err != nil {
			return fmt.Errorf("open save state: %w", err)
		}
		defer f.Close()
		if err := m.LoadState(f); err != nil {
			return fmt.Errorf("load save state: %w", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Log("katanactl", "stop requested")
		m.Stop()
	}()

	runErr := m.Run()

	if saveStatePath != "" {
		f, err := os.Create(saveStatePath)
		if err != nil {
			return fmt.Errorf("create save state: %w", err)
		}
		defer f.Close()
		if err := m.SaveState(f); err != nil {
			return fmt.Errorf("write save state: %w", err)
		}
	}
	return runErr
}
