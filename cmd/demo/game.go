package main

import (
	"context"
	"log/slog"

	"emberforge"
	"emberforge/internal/simworld"
)

// gameConfig adapts a bootstrapConfig plus a simworld reference world into
// emberforge.Config. It carries no business logic beyond what's needed to
// boot and keep the tick loop fed — a real embedding application would
// replace Update/UpdateClient/Login with its own game rules.
type gameConfig struct {
	boot *bootstrapConfig

	dimensions []emberforge.Dimension
	biomes     []emberforge.Biome
	worlds     []emberforge.World
	entities   *simworld.EntitySet

	logger *slog.Logger
}

var _ emberforge.Config = (*gameConfig)(nil)

func newGameConfig(boot *bootstrapConfig, logger *slog.Logger) *gameConfig {
	worlds := make([]emberforge.World, 0, len(boot.Worlds))
	for i, wc := range boot.Worlds {
		worlds = append(worlds, simworld.New(int32(i), wc.Width, wc.Height, 0))
	}

	return &gameConfig{
		boot: boot,
		dimensions: []emberforge.Dimension{
			{MinY: -64, Height: 384, AmbientLight: 0.0},
		},
		biomes: []emberforge.Biome{
			{Name: "minecraft:plains"},
			{Name: "minecraft:forest"},
			{Name: "minecraft:ocean"},
		},
		worlds:   worlds,
		entities: simworld.NewEntitySet(),
		logger:   logger,
	}
}

func (g *gameConfig) Address() string        { return g.boot.Address }
func (g *gameConfig) MaxConnections() int64  { return g.boot.MaxConnections }
func (g *gameConfig) TickRate() uint32       { return g.boot.TickRate }
func (g *gameConfig) OnlineMode() bool       { return g.boot.OnlineMode }

func (g *gameConfig) IncomingPacketCapacity() int { return g.boot.IncomingPacketCapacity }
func (g *gameConfig) OutgoingPacketCapacity() int { return g.boot.OutgoingPacketCapacity }

func (g *gameConfig) Dimensions() []emberforge.Dimension { return g.dimensions }
func (g *gameConfig) Biomes() []emberforge.Biome         { return g.biomes }

func (g *gameConfig) Worlds() []emberforge.World   { return g.worlds }
func (g *gameConfig) Entities() emberforge.Entities { return g.entities }

// Update runs once per tick before the world passes. The demo has no game
// rules of its own, so this is intentionally empty — an embedding
// application would apply world/entity logic here.
func (g *gameConfig) Update(ctx context.Context, clients []*emberforge.Client) {
}

// UpdateClient runs once per connected client during the tick's
// client-update phase. The demo never enqueues play-state packets of its
// own — play-state protocol is an embedding application's concern.
func (g *gameConfig) UpdateClient(ctx context.Context, c *emberforge.Client) {
	for range c.Inbox() {
		// Echo nothing back: the demo does not implement any play-state
		// packet semantics, it only proves the lifecycle wires together.
	}
}

// Login always accepts, logging the new player's identity.
func (g *gameConfig) Login(ctx context.Context, data *emberforge.NewClientData) error {
	g.logger.Info("player joining", "username", data.Username, "uuid", data.UUID, "remote", data.RemoteAddr)
	return nil
}

// ServerListPing answers with a static MOTD, MaxPlayers from config and 0
// online players; the demo does not count connected clients, which is good
// enough for a smoke test.
func (g *gameConfig) ServerListPing(ctx context.Context, remoteAddr string) (emberforge.ServerListPing, bool) {
	return emberforge.ServerListPing{
		OnlinePlayers: 0,
		MaxPlayers:    g.boot.MaxPlayers,
		Description:   g.boot.Motd,
	}, true
}
