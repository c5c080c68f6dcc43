package emberforge

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"emberforge/internal/protocol"
)

// run starts the accept loop and drives the synchronous tick loop until
// shutdown is requested or ctx is canceled. It is the Go analogue of
// start_server: the accept loop runs on its own goroutine (the async side),
// while the tick loop below runs on the calling goroutine (the sync side).
func (s *SharedServer) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.acceptLoop(ctx)

	clients := newClientRegistry()
	tickPeriod := time.Second / time.Duration(s.tickRate)
	tickStart := time.Now()

	for {
		select {
		case err := <-s.shutdownCh:
			return err
		case <-ctx.Done():
			s.Shutdown(ctx.Err())
			continue
		default:
		}

		s.drainNewClients(clients)
		s.drainDisconnects(clients)

		if err := s.ingestServerbound(ctx, clients); err != nil {
			return err
		}

		s.cfg.Update(ctx, clients.Snapshot())

		if err := s.worldPrePass(ctx); err != nil {
			return err
		}

		if err := s.clientUpdatePass(ctx, clients); err != nil {
			return err
		}

		s.cfg.Entities().Update()

		if err := s.worldPostPass(ctx); err != nil {
			return err
		}

		elapsed := time.Since(tickStart)
		if remaining := tickPeriod - elapsed; remaining > 0 {
			time.Sleep(remaining)
		}
		tickStart = time.Now()
		s.tickCounter.Add(1)
	}
}

// drainNewClients performs the tick-side session handoff (join_player) for
// every client that finished login since the last tick, non-blockingly.
func (s *SharedServer) drainNewClients(clients *clientRegistry) {
	for {
		select {
		case msg := <-s.newClientsCh:
			s.joinPlayer(msg, clients)
		default:
			return
		}
	}
}

// drainDisconnects removes every client whose connection goroutine has
// exited since the last tick, non-blockingly.
func (s *SharedServer) drainDisconnects(clients *clientRegistry) {
	for {
		select {
		case id := <-s.disconnectsCh:
			clients.remove(id)
		default:
			return
		}
	}
}

func (s *SharedServer) ingestServerbound(ctx context.Context, clients *clientRegistry) error {
	g, _ := errgroup.WithContext(ctx)
	for _, c := range clients.Snapshot() {
		c := c
		g.Go(func() error {
			c.IngestServerbound()
			return nil
		})
	}
	return g.Wait()
}

func (s *SharedServer) worldPrePass(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, w := range s.cfg.Worlds() {
		w := w
		g.Go(func() error {
			cg, _ := errgroup.WithContext(ctx)
			for _, ch := range w.Chunks() {
				ch := ch
				cg.Go(func() error {
					if ch.CreatedTick() == s.CurrentTick() {
						ch.ApplyModifications()
					}
					return nil
				})
			}
			if err := cg.Wait(); err != nil {
				return err
			}
			w.UpdateSpatialIndex(s.cfg.Entities())
			return nil
		})
	}
	return g.Wait()
}

func (s *SharedServer) clientUpdatePass(ctx context.Context, clients *clientRegistry) error {
	g, _ := errgroup.WithContext(ctx)
	for _, c := range clients.Snapshot() {
		c := c
		g.Go(func() error {
			s.cfg.UpdateClient(ctx, c)
			c.FlushOutbound()
			return nil
		})
	}
	return g.Wait()
}

func (s *SharedServer) worldPostPass(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, w := range s.cfg.Worlds() {
		w := w
		g.Go(func() error {
			cg, _ := errgroup.WithContext(ctx)
			for _, ch := range w.Chunks() {
				ch := ch
				cg.Go(func() error {
					ch.ApplyModifications()
					return nil
				})
			}
			if err := cg.Wait(); err != nil {
				return err
			}
			w.UpdateMeta()
			return nil
		})
	}
	return g.Wait()
}

// joinPlayer is the tick-loop side of the session handoff: it creates both
// bounded channels using the configured capacities, replies with the
// connection goroutine's half of each, and inserts the resulting Client.
func (s *SharedServer) joinPlayer(msg newClientMessage, clients *clientRegistry) {
	outgoing := make(chan protocol.RawPacket, s.outgoingPacketCapacity)
	incoming := make(chan protocol.RawPacket, s.incomingPacketCapacity)

	select {
	case msg.reply <- s2cPacketChannels{outbound: outgoing, inbound: incoming}:
	default:
	}

	client := newClient(msg.data, s.logger, outgoing, incoming)
	clients.insert(client)
}
