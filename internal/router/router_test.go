package router_test

import (
	"testing"

	"github.com/X-CodesTech/qAudio-sub000/internal/router"
	"github.com/X-CodesTech/qAudio-sub000/internal/state"
	"github.com/X-CodesTech/qAudio-sub000/internal/types"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

func addConn(t *testing.T, r *state.Registry, id string, role types.Role, studio types.Studio, additional ...types.Studio) *types.Connection {
	t.Helper()
	conn := types.NewConnection(id)
	r.Register(conn)
	if role != "" {
		if err := r.SetIdentity(id, role, studio, additional); err != nil {
			t.Fatalf("identity for %s: %v", id, err)
		}
	}
	return conn
}

func received(conn *types.Connection) bool {
	select {
	case <-conn.Outbox():
		return true
	default:
		return false
	}
}

func TestRoute_TalentBuzzerScope(t *testing.T) {
	reg := state.NewRegistry()
	rt := router.New(reg, nil)

	producer := addConn(t, reg, "producer", types.RoleProducer, "")
	talentA := addConn(t, reg, "talentA", types.RoleTalent, types.StudioA)
	talentB := addConn(t, reg, "talentB", types.RoleTalent, types.StudioB)
	tech := addConn(t, reg, "tech", types.RoleTech, types.StudioA)

	n := rt.Route(&protocol.Event{
		Type:   protocol.TypeTalentBuzzer,
		Studio: "A",
		Data:   map[string]interface{}{"isActive": true},
	})
	if n != 2 {
		t.Fatalf("expected delivery to producer and talent A only, got %d", n)
	}
	if !received(producer) {
		t.Fatalf("producer must receive buzzer feedback")
	}
	if !received(talentA) {
		t.Fatalf("studio A talent must receive its buzzer")
	}
	if received(talentB) {
		t.Fatalf("studio B talent must not receive studio A buzzer")
	}
	if received(tech) {
		t.Fatalf("tech consoles are not a buzzer audience")
	}
}

func TestRoute_TalentBuzzerAdditionalStudio(t *testing.T) {
	reg := state.NewRegistry()
	rt := router.New(reg, nil)

	// talent covering studio B with additional access to A
	roving := addConn(t, reg, "roving", types.RoleTalent, types.StudioB, types.StudioA)

	rt.Route(&protocol.Event{Type: protocol.TypeTalentBuzzer, Studio: "A"})
	if !received(roving) {
		t.Fatalf("additional-studio talent must receive the buzzer")
	}
}

func TestRoute_ChatUnscopedFallback(t *testing.T) {
	reg := state.NewRegistry()
	rt := router.New(reg, nil)

	inA := addConn(t, reg, "inA", types.RoleTalent, types.StudioA)
	inB := addConn(t, reg, "inB", types.RoleTalent, types.StudioB)
	unscoped := addConn(t, reg, "floater", types.RoleAdmin, "")

	rt.Route(&protocol.Event{Type: protocol.TypeNewChatMessage, Studio: "A"})

	if !received(inA) {
		t.Fatalf("studio A connection must receive studio A chat")
	}
	if received(inB) {
		t.Fatalf("studio B connection must not receive studio A chat")
	}
	if !received(unscoped) {
		t.Fatalf("unscoped connection receives every chat event")
	}
}

func TestRoute_CountdownGoesToStudioAndProducers(t *testing.T) {
	reg := state.NewRegistry()
	rt := router.New(reg, nil)

	producer := addConn(t, reg, "producer", types.RoleProducer, types.StudioB)
	talentA := addConn(t, reg, "talentA", types.RoleTalent, types.StudioA)
	remoteB := addConn(t, reg, "remoteB", types.RoleRemote, types.StudioB)

	rt.Route(&protocol.Event{Type: protocol.TypeCountdownUpdate, Studio: "A"})

	if !received(producer) {
		t.Fatalf("producers see every studio's timer")
	}
	if !received(talentA) {
		t.Fatalf("studio A connection must receive its timer")
	}
	if received(remoteB) {
		t.Fatalf("studio B connection must not receive studio A timer")
	}
}

func TestRoute_UnknownTypeBroadcasts(t *testing.T) {
	reg := state.NewRegistry()
	rt := router.New(reg, nil)

	conns := []*types.Connection{
		addConn(t, reg, "a", types.RoleProducer, ""),
		addConn(t, reg, "b", types.RoleTalent, types.StudioA),
		addConn(t, reg, "c", "", ""),
	}

	n := rt.Route(&protocol.Event{Type: protocol.TypePlaybackUpdate})
	if n != len(conns) {
		t.Fatalf("expected broadcast to all %d connections, got %d", len(conns), n)
	}
	for _, conn := range conns {
		if !received(conn) {
			t.Fatalf("connection %s missed the broadcast", conn.ID)
		}
	}
}

func TestRoute_SkipsClosedAndFullConnections(t *testing.T) {
	reg := state.NewRegistry()
	rt := router.New(reg, nil)

	healthy := addConn(t, reg, "healthy", types.RoleProducer, "")
	closed := addConn(t, reg, "closed", types.RoleProducer, "")
	stuffed := addConn(t, reg, "stuffed", types.RoleProducer, "")

	closed.Close()
	for stuffed.Enqueue([]byte("x")) {
		// fill the outbox until it refuses
	}

	n := rt.Route(&protocol.Event{Type: protocol.TypeTalentBuzzer, Studio: "A"})
	if n != 1 {
		t.Fatalf("expected exactly the healthy connection, got %d", n)
	}
	if !received(healthy) {
		t.Fatalf("healthy connection must still be delivered to")
	}
}

func TestSend_DirectDelivery(t *testing.T) {
	reg := state.NewRegistry()
	rt := router.New(reg, nil)

	conn := addConn(t, reg, "solo", types.RoleTech, "")
	if !rt.Send(conn, &protocol.Event{Type: protocol.TypePong}) {
		t.Fatalf("direct send to open connection failed")
	}
	if !received(conn) {
		t.Fatalf("payload missing from outbox")
	}

	conn.Close()
	if rt.Send(conn, &protocol.Event{Type: protocol.TypePong}) {
		t.Fatalf("send to closed connection must report failure")
	}
}
