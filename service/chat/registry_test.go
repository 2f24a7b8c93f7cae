package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotPreservesOrderAndMultiplicity(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	a := newConn("c1", newFakeTransport())
	a.SetIdentity(ident("u1", "alice"))
	b := newConn("c2", newFakeTransport())
	b.SetIdentity(ident("u1", "alice")) // second session, same identity
	anon := newConn("c3", newFakeTransport())

	r.Add(a)
	r.Add(b)
	r.Add(anon)

	snap := r.Snapshot()
	req.Len(snap, 3)
	req.Equal(PresenceEntry{ID: "u1", Username: "alice"}, snap[0])
	req.Equal(PresenceEntry{ID: "u1", Username: "alice"}, snap[1])
	req.Equal(PresenceEntry{}, snap[2]) // anonymous entry kept, empty fields

	req.True(r.Remove(b))
	snap = r.Snapshot()
	req.Len(snap, 2)
	req.Equal("u1", snap[0].ID)
	req.Equal("", snap[1].ID)

	// removing an absent connection is a no-op
	req.False(r.Remove(b))
	req.Equal(2, r.Len())
}

func TestFindByUser(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	a := newConn("c1", newFakeTransport())
	a.SetIdentity(ident("u1", "alice"))
	b := newConn("c2", newFakeTransport())
	b.SetIdentity(ident("u1", "alice"))
	c := newConn("c3", newFakeTransport())
	c.SetIdentity(ident("u2", "bob"))
	r.Add(a)
	r.Add(b)
	r.Add(c)

	req.Len(r.FindByUser("u1"), 2)
	req.Len(r.FindByUser("u2"), 1)
	req.Empty(r.FindByUser("nobody"))
	// anonymous connections are never routable
	req.Empty(r.FindByUser(""))
}

func TestUpdateUsernameNotifiesOnlyTargets(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	ftA := newFakeTransport()
	a := newConn("c1", ftA)
	a.SetIdentity(ident("u1", "alice"))
	ftB := newFakeTransport()
	b := newConn("c2", ftB)
	b.SetIdentity(ident("u1", "alice"))
	ftC := newFakeTransport()
	c := newConn("c3", ftC)
	c.SetIdentity(ident("u2", "bob"))
	r.Add(a)
	r.Add(b)
	r.Add(c)

	n := r.UpdateUsername("u1", "neo")
	req.Equal(2, n)

	for _, ft := range []*fakeTransport{ftA, ftB} {
		frames := ft.usernameFrames()
		req.Len(frames, 1)
		req.Equal(UsernameFrame{Type: FrameTypeUpdateUsername, ID: "u1", Username: "neo"}, frames[0])
	}
	req.Empty(ftC.usernameFrames()) // self-notification, not a broadcast

	snap := r.Snapshot()
	req.Equal("neo", snap[0].Username)
	req.Equal("neo", snap[1].Username)
	req.Equal("bob", snap[2].Username)
}
