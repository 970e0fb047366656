package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sockstream/pkg/stream"
)

var (
	sendAddr   string
	sendOffset int64
	sendSize   int64
	sendChunk  int
)

var sendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Send a file to a remote endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		s, err := dialStream(cmd.Context(), sendAddr)
		if err != nil {
			return fmt.Errorf("dial %s: %w", sendAddr, err)
		}
		defer s.Close()

		opts := transferOptions(sendOffset, sendSize, sendChunk)
		zap.L().Info("sending file",
			zap.String("path", path),
			zap.Stringer("transport", s.Kind()),
			zap.String("remote", s.RemoteAddr().String()),
			zap.Int64("offset", opts.Offset),
			zap.Int64("size", opts.Size),
		)
		if err := s.SendFile(path, opts); err != nil {
			return fmt.Errorf("send file: %w", err)
		}
		// Signal end-of-stream; the receiver drains until peer close.
		if err := s.Shutdown(stream.ShutdownWrite); err != nil {
			zap.L().Warn("shutdown write", zap.Error(err))
		}
		zap.L().Info("file sent", zap.String("path", path))
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendAddr, "addr", "a", "127.0.0.1:9555", "remote address (URL for ws)")
	sendCmd.Flags().Int64Var(&sendOffset, "offset", 0, "bytes to skip at the start of the file")
	sendCmd.Flags().Int64Var(&sendSize, "size", 0, "maximum bytes to send (0 = whole file)")
	sendCmd.Flags().IntVar(&sendChunk, "chunk", 0, "chunk size for non-zero-copy transports")
	rootCmd.AddCommand(sendCmd)
}
