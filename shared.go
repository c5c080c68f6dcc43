// Package emberforge implements the connection lifecycle and tick-driven
// core of a Minecraft Java Edition protocol-compatible game server: the TCP
// accept loop, the handshake/status/login state machine (Mojang
// authentication, RSA key exchange, AES/CFB8 encryption, zlib packet
// compression), the handoff into a synchronous tick loop, and the tick
// loop's fixed eight-phase sequence over worlds, chunks, clients and
// entities.
package emberforge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"emberforge/internal/admission"
	"emberforge/internal/auth"
	"emberforge/internal/protocol"
)

// newClientMessage is handed from a connection goroutine that finished
// login to the tick loop, which replies with the channel pair the
// connection's reader/writer tasks use for the remainder of the session.
type newClientMessage struct {
	data  *NewClientData
	reply chan s2cPacketChannels
}

// s2cPacketChannels is given to the connection goroutine: outbound is what
// its writer task drains to the socket, inbound is what its reader task
// feeds from the socket.
type s2cPacketChannels struct {
	outbound <-chan protocol.RawPacket
	inbound  chan<- protocol.RawPacket
}

// SharedServer is a handle to a running server, safe to share across
// goroutines. It owns every piece of state reachable from outside the tick
// loop: bootstrap parameters, the RSA key pair, the admission semaphore,
// and the channel new clients arrive on.
type SharedServer struct {
	cfg    Config
	logger *slog.Logger

	address                 string
	tickRate                uint32
	onlineMode              bool
	maxConnections          int64
	incomingPacketCapacity  int
	outgoingPacketCapacity  int

	dimensions []Dimension
	biomes     []Biome

	startInstant time.Time
	tickCounter  atomic.Int64

	newClientsCh  chan newClientMessage
	disconnectsCh chan uuid.UUID

	connSema *admission.Permits

	keyPair      *auth.KeyPair
	publicKeyDER []byte
	httpClient   *http.Client

	version version

	shutdownOnce   sync.Once
	shutdownCh     chan error
}

// SetupServer validates cfg and constructs a SharedServer, but does not yet
// start accepting connections or running the tick loop — call Start for
// that. Exposed separately so tests can exercise validation and the
// resulting handle without binding a socket.
func SetupServer(cfg Config, opts ...Option) (*SharedServer, error) {
	tickRate := cfg.TickRate()
	if tickRate == 0 {
		return nil, fmt.Errorf("emberforge: tick rate must be greater than zero")
	}

	incomingCap := cfg.IncomingPacketCapacity()
	if incomingCap <= 0 {
		return nil, fmt.Errorf("emberforge: serverbound packet capacity must be nonzero")
	}
	outgoingCap := cfg.OutgoingPacketCapacity()
	if outgoingCap <= 0 {
		return nil, fmt.Errorf("emberforge: outgoing packet capacity must be nonzero")
	}

	dims := cfg.Dimensions()
	if err := validateDimensions(dims); err != nil {
		return nil, err
	}
	biomes := cfg.Biomes()
	if err := validateBiomes(biomes); err != nil {
		return nil, err
	}

	keyPair, err := auth.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	der, err := keyPair.PublicKeyDER()
	if err != nil {
		return nil, err
	}

	maxConnections := cfg.MaxConnections()
	sema := admission.New(semaCapacity(maxConnections))

	s := &SharedServer{
		cfg:                    cfg,
		logger:                 slog.Default(),
		address:                cfg.Address(),
		tickRate:               tickRate,
		onlineMode:             cfg.OnlineMode(),
		maxConnections:         maxConnections,
		incomingPacketCapacity: incomingCap,
		outgoingPacketCapacity: outgoingCap,
		dimensions:             dims,
		biomes:                 biomes,
		startInstant:           time.Now(),
		newClientsCh:           make(chan newClientMessage, 1),
		disconnectsCh:          make(chan uuid.UUID, 1024),
		connSema:               sema,
		keyPair:                keyPair,
		publicKeyDER:           der,
		httpClient:             &http.Client{Timeout: 10 * time.Second},
		version:                version{Name: DefaultVersionName, Protocol: DefaultProtocolVersion},
		shutdownCh:             make(chan error, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option customizes a SharedServer at setup time.
type Option func(*SharedServer)

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SharedServer) { s.logger = logger }
}

// WithVersion overrides the advertised protocol version and name.
func WithVersion(name string, protocol int32) Option {
	return func(s *SharedServer) { s.version = version{Name: name, Protocol: protocol} }
}

// semaCapacity maps a Config.MaxConnections() of 0 ("unbounded") onto a
// very large weighted-semaphore capacity, since semaphore.Weighted has no
// native "unbounded" mode.
func semaCapacity(max int64) int64 {
	if max <= 0 {
		return 1 << 30
	}
	return max
}

func (s *SharedServer) Config() Config         { return s.cfg }
func (s *SharedServer) Logger() *slog.Logger   { return s.logger }
func (s *SharedServer) Address() string        { return s.address }
func (s *SharedServer) TickRate() uint32       { return s.tickRate }
func (s *SharedServer) OnlineMode() bool       { return s.onlineMode }
func (s *SharedServer) MaxConnections() int64  { return s.maxConnections }
func (s *SharedServer) Dimensions() []Dimension { return s.dimensions }
func (s *SharedServer) Biomes() []Biome        { return s.biomes }

// Dimension returns the dimension registered at id, panicking if id is out
// of range. Mirrors the original's indexed dimension(id) accessor, which
// callers rely on alongside the Dimensions() iterator.
func (s *SharedServer) Dimension(id int) Dimension {
	if id < 0 || id >= len(s.dimensions) {
		panic(fmt.Sprintf("emberforge: invalid dimension id %d", id))
	}
	return s.dimensions[id]
}

// Biome returns the biome registered at id, panicking if id is out of
// range. Mirrors the original's indexed biome(id) accessor.
func (s *SharedServer) Biome(id int) Biome {
	if id < 0 || id >= len(s.biomes) {
		panic(fmt.Sprintf("emberforge: invalid biome id %d", id))
	}
	return s.biomes[id]
}
func (s *SharedServer) StartInstant() time.Time { return s.startInstant }
func (s *SharedServer) CurrentTick() int64     { return s.tickCounter.Load() }
func (s *SharedServer) VersionName() string    { return s.version.Name }
func (s *SharedServer) ProtocolVersion() int32 { return s.version.Protocol }

// Shutdown immediately stops new connections from being accepted and
// requests the tick loop stop after its current iteration, returning res
// through Start. Idempotent: only the first call's res is kept.
func (s *SharedServer) Shutdown(res error) {
	s.shutdownOnce.Do(func() {
		s.connSema.Close()
		s.shutdownCh <- res
	})
}

// Start runs the accept loop and tick loop, blocking until Shutdown is
// called (by the embedding application, or by the accept loop when the
// listener cannot be bound) or ctx is canceled. It returns the error passed to Shutdown, or ctx's error.
func Start(ctx context.Context, cfg Config, opts ...Option) error {
	shared, err := SetupServer(cfg, opts...)
	if err != nil {
		return err
	}
	return shared.run(ctx)
}
