package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gitletfuse "github.com/systemshift/gitlet/internal/fuse"
)

var mountDebug bool

func init() {
	mountCmd.Flags().BoolVar(&mountDebug, "fuse-debug", false, "Log FUSE protocol traffic")
	rootCmd.AddCommand(mountCmd)
}

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount a read-only view of branches and commits",
	Args:  cobra.ExactArgs(1),
	RunE:  runMount,
}

func runMount(cmd *cobra.Command, args []string) error {
	mountpoint := args[0]
	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return fmt.Errorf("create mountpoint: %w", err)
	}
	r, err := openRepo()
	if err != nil {
		return err
	}
	server, err := gitletfuse.MountFS(mountpoint, r, logger, mountDebug)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("unmounting", zap.String("mountpoint", mountpoint))
		if err := server.Unmount(); err != nil {
			logger.Error("unmount", zap.Error(err))
		}
	}()

	server.Wait()
	return nil
}
