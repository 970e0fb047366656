package cmd

import (
	"context"
	ctls "crypto/tls"
	"fmt"

	"sockstream/pkg/stream"
	"sockstream/pkg/stream/quic"
	"sockstream/pkg/stream/tcp"
	"sockstream/pkg/stream/tls"
	"sockstream/pkg/stream/ws"
)

// dialStream connects the selected transport to address and returns the
// stream for it. For ws the address is a full URL (ws:// or wss://).
func dialStream(ctx context.Context, address string) (stream.Stream, error) {
	switch transport {
	case "tcp":
		return tcp.Dial(ctx, address)
	case "tls":
		return tls.Dial(ctx, address, clientTLSConfig())
	case "quic":
		return quic.Dial(ctx, address, clientTLSConfig())
	case "ws":
		return ws.Dial(ctx, address)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func clientTLSConfig() *ctls.Config {
	conf := &ctls.Config{
		ServerName:         cfg.TLS.ServerName,
		InsecureSkipVerify: cfg.TLS.Insecure,
	}
	if cfg.TLS.CertFile != "" {
		if cert, err := ctls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile); err == nil {
			conf.Certificates = []ctls.Certificate{cert}
		}
	}
	return conf
}

func serverTLSConfig() (*ctls.Config, error) {
	if cfg.TLS.CertFile == "" {
		return nil, fmt.Errorf("tls.cert_file and tls.key_file are required to listen with tls")
	}
	cert, err := ctls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}
	return &ctls.Config{Certificates: []ctls.Certificate{cert}}, nil
}

// transferOptions builds stream.Options from config defaults overridden by
// per-command flags.
func transferOptions(offset, size int64, chunk int) stream.Options {
	opts := stream.Options{
		Offset:    cfg.Transfer.Offset,
		Size:      cfg.Transfer.Size,
		ChunkSize: cfg.Transfer.ChunkSize,
		Timeout:   cfg.Transfer.Timeout(),
	}
	if offset > 0 {
		opts.Offset = offset
	}
	if size > 0 {
		opts.Size = size
	}
	if chunk > 0 {
		opts.ChunkSize = chunk
	}
	return opts
}
