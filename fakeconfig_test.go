package emberforge

import (
	"context"
	"sync"
)

// fakeConfig is a minimal Config double shared by the root package's tests.
type fakeConfig struct {
	address        string
	maxConnections int64
	tickRate       uint32
	onlineMode     bool
	inCap, outCap  int

	dims   []Dimension
	biomes []Biome

	mu        sync.Mutex
	updates   int
	lastLogin *NewClientData

	loginErr error
	pingOK   bool
	ping     ServerListPing
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{
		address:        "127.0.0.1:0",
		maxConnections: 8,
		tickRate:       20,
		inCap:          8,
		outCap:         8,
		dims:           []Dimension{{MinY: -64, Height: 384, AmbientLight: 0}},
		biomes:         []Biome{{Name: "minecraft:plains"}},
		pingOK:         true,
		ping:           ServerListPing{MaxPlayers: 20, Description: "test"},
	}
}

func (f *fakeConfig) Address() string               { return f.address }
func (f *fakeConfig) MaxConnections() int64         { return f.maxConnections }
func (f *fakeConfig) TickRate() uint32              { return f.tickRate }
func (f *fakeConfig) OnlineMode() bool               { return f.onlineMode }
func (f *fakeConfig) IncomingPacketCapacity() int    { return f.inCap }
func (f *fakeConfig) OutgoingPacketCapacity() int    { return f.outCap }
func (f *fakeConfig) Dimensions() []Dimension         { return f.dims }
func (f *fakeConfig) Biomes() []Biome                 { return f.biomes }
func (f *fakeConfig) Worlds() []World                 { return nil }
func (f *fakeConfig) Entities() Entities              { return fakeEntities{} }

func (f *fakeConfig) Update(ctx context.Context, clients []*Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
}

func (f *fakeConfig) UpdateClient(ctx context.Context, c *Client) {}

func (f *fakeConfig) Login(ctx context.Context, data *NewClientData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin = data
	return f.loginErr
}

func (f *fakeConfig) ServerListPing(ctx context.Context, remoteAddr string) (ServerListPing, bool) {
	return f.ping, f.pingOK
}

func (f *fakeConfig) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

type fakeEntities struct{}

func (fakeEntities) Update() {}
