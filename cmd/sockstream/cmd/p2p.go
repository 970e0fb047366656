package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sockstream/pkg/stream"
	"sockstream/pkg/stream/p2p"
)

const fileProtocolID = "/sockstream/file/1.0.0"

var (
	p2pPeer   string
	p2pListen string
	p2pOut    string
)

var p2pCmd = &cobra.Command{
	Use:   "p2p",
	Short: "Send or receive over a libp2p stream",
}

var p2pSendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Send a file to a libp2p peer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if p2pPeer == "" {
			return fmt.Errorf("--peer is required")
		}
		h, err := libp2p.New()
		if err != nil {
			return fmt.Errorf("create host: %w", err)
		}
		defer h.Close()

		maddr, err := multiaddr.NewMultiaddr(p2pPeer)
		if err != nil {
			return fmt.Errorf("parse peer address: %w", err)
		}
		info, err := peer.AddrInfoFromP2pAddr(maddr)
		if err != nil {
			return fmt.Errorf("peer info: %w", err)
		}
		ctx := cmd.Context()
		if err := h.Connect(ctx, *info); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		ns, err := h.NewStream(ctx, info.ID, fileProtocolID)
		if err != nil {
			return fmt.Errorf("open stream: %w", err)
		}
		s := p2p.New(ns)
		defer s.Close()

		opts := transferOptions(sendOffset, sendSize, sendChunk)
		zap.L().Info("sending file over p2p",
			zap.String("path", args[0]),
			zap.String("peer", info.ID.String()),
		)
		if err := s.SendFile(args[0], opts); err != nil {
			return fmt.Errorf("send file: %w", err)
		}
		return s.Shutdown(stream.ShutdownWrite)
	},
}

var p2pRecvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Receive one file from a libp2p peer",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := libp2p.New(libp2p.ListenAddrStrings(p2pListen))
		if err != nil {
			return fmt.Errorf("create host: %w", err)
		}
		defer h.Close()

		for _, a := range h.Addrs() {
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s/p2p/%s\n", a, h.ID())
		}

		done := make(chan error, 1)
		h.SetStreamHandler(fileProtocolID, func(ns network.Stream) {
			done <- receiveToFile(p2p.New(ns), p2pOut)
		})

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case err := <-done:
			return err
		}
	},
}

func receiveToFile(s stream.Stream, out string) error {
	defer s.Close()

	var sink io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		sink = f
	}

	var total int64
	for {
		chunk, err := s.Recv(0, cfg.Transfer.Timeout())
		if err != nil {
			return fmt.Errorf("recv: %w", err)
		}
		if chunk == nil {
			break
		}
		if _, err := sink.Write(chunk); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		total += int64(len(chunk))
	}
	zap.L().Info("receive complete", zap.Int64("bytes", total))
	return nil
}

func init() {
	p2pSendCmd.Flags().StringVar(&p2pPeer, "peer", "", "peer address in multiaddr format")
	p2pSendCmd.Flags().Int64Var(&sendOffset, "offset", 0, "bytes to skip at the start of the file")
	p2pSendCmd.Flags().Int64Var(&sendSize, "size", 0, "maximum bytes to send (0 = whole file)")
	p2pSendCmd.Flags().IntVar(&sendChunk, "chunk", 0, "chunk size")
	p2pRecvCmd.Flags().StringVar(&p2pListen, "listen", "/ip4/127.0.0.1/tcp/0", "listen multiaddr")
	p2pRecvCmd.Flags().StringVarP(&p2pOut, "out", "o", "-", "output file (- for stdout)")
	p2pCmd.AddCommand(p2pSendCmd)
	p2pCmd.AddCommand(p2pRecvCmd)
	rootCmd.AddCommand(p2pCmd)
}
