package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sockstream/pkg/stream"
	"sockstream/pkg/stream/quic"
	"sockstream/pkg/stream/tcp"
	"sockstream/pkg/stream/tls"
	"sockstream/pkg/stream/ws"
)

var (
	recvListen string
	recvOut    string
)

var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Accept one connection and write the received bytes to a file or stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := acceptStream(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		defer s.Close()

		var sink io.Writer = os.Stdout
		if recvOut != "-" {
			f, err := os.Create(recvOut)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			sink = f
		}

		zap.L().Info("receiving",
			zap.Stringer("transport", s.Kind()),
			zap.String("remote", s.RemoteAddr().String()),
		)
		var total int64
		for {
			chunk, err := s.Recv(0, cfg.Transfer.Timeout())
			if err != nil {
				return fmt.Errorf("recv: %w", err)
			}
			if chunk == nil {
				// Peer closed; transfer complete.
				break
			}
			if _, err := sink.Write(chunk); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			total += int64(len(chunk))
		}
		zap.L().Info("receive complete", zap.Int64("bytes", total))
		return nil
	},
}

// acceptStream listens on the selected transport and returns the first
// inbound stream plus a cleanup that releases the listener. The listener
// stays open until cleanup so transports whose connections share its socket
// (quic, ws) keep working.
func acceptStream(cmd *cobra.Command) (stream.Stream, func(), error) {
	ctx := cmd.Context()
	switch transport {
	case "tcp":
		l, err := tcp.Listen(recvListen)
		if err != nil {
			return nil, nil, err
		}
		zap.L().Info("listening", zap.String("addr", l.Addr().String()))
		s, err := l.Accept()
		if err != nil {
			_ = l.Close()
			return nil, nil, err
		}
		return s, func() { _ = l.Close() }, nil
	case "tls":
		conf, err := serverTLSConfig()
		if err != nil {
			return nil, nil, err
		}
		l, err := tls.Listen(recvListen, conf)
		if err != nil {
			return nil, nil, err
		}
		zap.L().Info("listening", zap.String("addr", l.Addr().String()))
		s, err := l.Accept()
		if err != nil {
			_ = l.Close()
			return nil, nil, err
		}
		return s, func() { _ = l.Close() }, nil
	case "quic":
		l, err := quic.Listen(recvListen, nil)
		if err != nil {
			return nil, nil, err
		}
		zap.L().Info("listening", zap.String("addr", l.Addr().String()))
		s, err := l.Accept(ctx)
		if err != nil {
			_ = l.Close()
			return nil, nil, err
		}
		return s, func() { _ = l.Close() }, nil
	case "ws":
		l, err := ws.Listen(recvListen)
		if err != nil {
			return nil, nil, err
		}
		zap.L().Info("listening", zap.String("addr", l.Addr().String()))
		s, err := l.Accept(ctx)
		if err != nil {
			_ = l.Close()
			return nil, nil, err
		}
		return s, func() { _ = l.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func init() {
	recvCmd.Flags().StringVarP(&recvListen, "listen", "l", "127.0.0.1:9555", "listen address")
	recvCmd.Flags().StringVarP(&recvOut, "out", "o", "-", "output file (- for stdout)")
	rootCmd.AddCommand(recvCmd)
}
