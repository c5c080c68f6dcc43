package emberforge

import (
	"context"
	"fmt"
)

// Config is supplied by the embedding application: it configures bootstrap
// parameters and supplies the callbacks the tick loop and connection
// lifecycle invoke. It is dependency injection, not data — unlike the
// bootstrap config loaded from YAML in cmd/demo.
type Config interface {
	// Address is the "host:port" the accept loop listens on.
	Address() string
	// MaxConnections bounds concurrently open connections, counted from
	// accept until the connection closes (Play included). Zero means
	// unbounded.
	MaxConnections() int64
	// TickRate is the number of tick loop iterations per second.
	TickRate() uint32
	// OnlineMode enables Mojang session-server authentication during login.
	OnlineMode() bool
	// IncomingPacketCapacity/OutgoingPacketCapacity bound the per-client
	// channel buffer sizes used to bridge socket I/O into the tick loop.
	IncomingPacketCapacity() int
	OutgoingPacketCapacity() int

	// Dimensions returns the server's configured dimensions. Must be
	// non-empty.
	Dimensions() []Dimension
	// Biomes returns the server's configured biomes. Must be non-empty and
	// have unique names.
	Biomes() []Biome

	// Worlds returns the live worlds the tick loop's world passes iterate.
	// Called more than once on every tick iteration — implementations
	// should return a cheap, already-owned slice, not rebuild one.
	Worlds() []World
	// Entities returns the live entity store; called several times on
	// every tick iteration.
	Entities() Entities
	// Update runs the embedding application's per-tick game logic, called
	// once per tick after serverbound packets have been ingested and
	// before the world pre-pass.
	Update(ctx context.Context, clients []*Client)
	// UpdateClient is invoked once per connected client, in parallel
	// across clients, during the tick's client-update phase — the place
	// to translate world/entity state into outbound packets via
	// Client.Enqueue. The core flushes each client's queue as soon as that
	// client's UpdateClient call returns.
	UpdateClient(ctx context.Context, c *Client)
	// Login is invoked once a client has authenticated and may reject the
	// connection by returning an error (delivered as a Disconnect packet).
	Login(ctx context.Context, data *NewClientData) error
	// ServerListPing answers a status request; returning ok=false skips
	// the response entirely (the connection is simply closed), matching
	// vanilla's "ignore" server-list-ping behavior.
	ServerListPing(ctx context.Context, remoteAddr string) (ping ServerListPing, ok bool)
}

// ServerListPing is the embedding application's answer to a status request.
type ServerListPing struct {
	OnlinePlayers int
	MaxPlayers    int
	Description   string
	FaviconPNG    []byte // nil means "no favicon"
}

// Dimension describes one of the server's dimensions (e.g. overworld, the
// nether). Bounds mirror vanilla's own dimension-type constraints.
type Dimension struct {
	MinY         int32
	Height       int32
	AmbientLight float64
	FixedTime    *int32 // nil means "no fixed time of day"
}

// Biome names a biome the server's world generation may reference.
type Biome struct {
	Name string
}

func validateDimensions(dims []Dimension) error {
	if len(dims) == 0 {
		return fmt.Errorf("emberforge: at least one dimension must be added")
	}
	if len(dims) > 0xFFFF {
		return fmt.Errorf("emberforge: more than 65535 dimensions added")
	}
	for i, dim := range dims {
		if dim.MinY%16 != 0 || dim.MinY < -2032 || dim.MinY > 2016 {
			return fmt.Errorf("emberforge: invalid min_y in dimension #%d", i)
		}
		if dim.Height%16 != 0 || dim.Height < 0 || dim.Height > 4064 || dim.MinY+dim.Height > 2032 {
			return fmt.Errorf("emberforge: invalid height in dimension #%d", i)
		}
		if dim.AmbientLight < 0.0 || dim.AmbientLight > 1.0 {
			return fmt.Errorf("emberforge: ambient_light is out of range in dimension #%d", i)
		}
		if dim.FixedTime != nil && (*dim.FixedTime < 0 || *dim.FixedTime > 24000) {
			return fmt.Errorf("emberforge: fixed_time is out of range in dimension #%d", i)
		}
	}
	return nil
}

func validateBiomes(biomes []Biome) error {
	if len(biomes) == 0 {
		return fmt.Errorf("emberforge: at least one biome must be added")
	}
	if len(biomes) > 0xFFFF {
		return fmt.Errorf("emberforge: more than 65535 biomes added")
	}
	seen := make(map[string]struct{}, len(biomes))
	for _, b := range biomes {
		if _, dup := seen[b.Name]; dup {
			return fmt.Errorf("emberforge: biome %q already added", b.Name)
		}
		seen[b.Name] = struct{}{}
	}
	return nil
}
