// Package server wires the auction executor runtime: storage, the ordered
// operation stream, and the gRPC health lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/gavel/internal/platform/config"
	"github.com/louisbranch/gavel/internal/services/auction/domain"
	"github.com/louisbranch/gavel/internal/services/auction/event"
	"github.com/louisbranch/gavel/internal/services/auction/oplog"
	"github.com/louisbranch/gavel/internal/services/auction/service"
	auctionsqlite "github.com/louisbranch/gavel/internal/services/auction/storage/sqlite"
)

type serverEnv struct {
	DBPath     string `env:"GAVEL_AUCTION_DB_PATH"`
	NATSURL    string `env:"GAVEL_AUCTION_NATS_URL"`
	OpsSubject string `env:"GAVEL_AUCTION_OPS_SUBJECT" envDefault:"auction.ops"`
	Settlement string `env:"GAVEL_AUCTION_OPEN_ENDED_SETTLEMENT"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "auction.db")
	}
	return cfg
}

// Server hosts the auction executor: a SQLite-backed operation applier fed
// by a NATS subscription, plus a gRPC health endpoint.
//
// Operations are consumed on a single goroutine, so broker delivery order is
// execution order and the store has one writer.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *auctionsqlite.Store
	natsConn   *nats.Conn
	applier    *oplog.Applier
	opsSubject string
}

// New creates a configured auction executor listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured auction executor for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()

	policy, err := domain.ParseOpenEndedSettlement(env.Settlement)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	store, err := openAuctionStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	var natsConn *nats.Conn
	var sink event.Sink = event.Noop{}
	if url := strings.TrimSpace(env.NATSURL); url != "" {
		natsConn, err = nats.Connect(url, nats.Name("gavel-auction"))
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
		}
		sink = event.NewNATSPublisher(natsConn)
	}

	svc := service.New(store,
		service.WithEventSink(sink),
		service.WithOpenEndedSettlement(policy),
	)

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("gavel.auction", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		natsConn:   natsConn,
		applier:    oplog.NewApplier(svc),
		opsSubject: env.OpsSubject,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves an auction executor until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the operation consumer and the gRPC server until context
// cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	consumeCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	sub, err := s.startConsumer(consumeCtx)
	if err != nil {
		return err
	}
	if sub != nil {
		defer func() { _ = sub.Unsubscribe() }()
	}

	log.Printf("auction executor listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// startConsumer subscribes to the operation subject and drains it on one
// goroutine. Without a broker connection the executor serves health only.
func (s *Server) startConsumer(ctx context.Context) (*nats.Subscription, error) {
	if s.natsConn == nil {
		log.Printf("auction executor running without an operation stream")
		return nil, nil
	}

	msgs := make(chan *nats.Msg, 256)
	sub, err := s.natsConn.ChanSubscribe(s.opsSubject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", s.opsSubject, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handleOperation(ctx, msg.Data)
			}
		}
	}()

	log.Printf("auction executor consuming operations from %s", s.opsSubject)
	return sub, nil
}

func (s *Server) handleOperation(ctx context.Context, payload []byte) {
	op, err := oplog.Decode(payload)
	if err != nil {
		log.Printf("auction op dropped: %v", err)
		return
	}

	result := s.applier.Apply(ctx, op)
	if result.Err != nil {
		log.Printf("auction op %s rejected: %v", op.Kind, result.Err)
		return
	}
	log.Printf("auction op %s applied to record %s", op.Kind, result.Record.ID)
}

// Close releases executor resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.natsConn != nil {
		s.natsConn.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close auction store: %v", err)
		}
	}
}

func openAuctionStore(path string) (*auctionsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := auctionsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auction sqlite store: %w", err)
	}
	return store, nil
}
