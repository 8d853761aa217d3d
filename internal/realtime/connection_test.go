package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConnection_SendBufferFull(t *testing.T) {
	conn := &Connection{
		ID:     "c1",
		UserID: "alice",
		send:   make(chan []byte, 1),
		done:   make(chan struct{}),
		logger: zap.NewNop(),
	}

	assert.NoError(t, conn.Send([]byte("a")))
	assert.ErrorIs(t, conn.Send([]byte("b")), ErrSendBufferFull)
}

func TestConnection_SendAfterClose(t *testing.T) {
	conn := &Connection{
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	close(conn.done)

	assert.ErrorIs(t, conn.Send([]byte("a")), ErrConnectionClosed)
}
