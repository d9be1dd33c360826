package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendRecvRoundTrip(t *testing.T) {
	a, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()

	b, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Send(b.LocalAddr(), []byte("hello")))

	msgs, err := b.ReadMessages()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hello", string(msgs[0].Data))
}

func TestSendLargeMessageSpansMultipleDatagrams(t *testing.T) {
	a, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()

	b, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	payload := make([]byte, maxDatagram*3+17)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, a.Send(b.LocalAddr(), payload))

	var got []byte
	for len(got) < len(payload) {
		msgs, err := b.ReadMessages()
		require.NoError(t, err)
		for _, m := range msgs {
			got = append(got, m.Data...)
		}
	}
	require.Equal(t, payload, got)
}

func TestFeedReassemblesAcrossChunks(t *testing.T) {
	s := &Socket{reassembly: make(map[string]*peerBuffer)}
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999}

	framed := make([]byte, 4+5)
	framed[0] = 5
	copy(framed[4:], []byte("world"))

	msgs, err := s.feed(peer, framed[:6])
	require.NoError(t, err)
	require.Empty(t, msgs)

	msgs, err = s.feed(peer, framed[6:])
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "world", string(msgs[0].Data))
}

func TestFeedMultipleMessagesInOneChunk(t *testing.T) {
	s := &Socket{reassembly: make(map[string]*peerBuffer)}
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999}

	var buf []byte
	for _, w := range []string{"one", "two"} {
		frame := make([]byte, 4+len(w))
		frame[0] = byte(len(w))
		copy(frame[4:], w)
		buf = append(buf, frame...)
	}

	msgs, err := s.feed(peer, buf)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "one", string(msgs[0].Data))
	require.Equal(t, "two", string(msgs[1].Data))
}

func TestFeedDropsOversizedAnnouncedLength(t *testing.T) {
	s := &Socket{reassembly: make(map[string]*peerBuffer)}
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999}

	frame := make([]byte, 4)
	frame[0] = 0xFF
	frame[1] = 0xFF
	frame[2] = 0xFF
	frame[3] = 0x7F // huge length, far beyond maxReassembly

	msgs, err := s.feed(peer, frame)
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.Empty(t, s.reassembly[peer.String()].buf)
}

func TestForgetPeerClearsState(t *testing.T) {
	s := &Socket{reassembly: make(map[string]*peerBuffer)}
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999}
	_, _ = s.feed(peer, []byte{9, 0, 0, 0, 1, 2})
	require.Contains(t, s.reassembly, peer.String())
	s.ForgetPeer(peer)
	require.NotContains(t, s.reassembly, peer.String())
}
