package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTopology is returned for unknown connectors, queues or directions.
	ErrInvalidTopology = errors.New("invalid queue topology")

	// ErrNoMessage is returned by Consume when nothing arrived before the timeout.
	ErrNoMessage = errors.New("no message available")

	// ErrClosed is returned by channels of a closed connection.
	ErrClosed = errors.New("queue connection is closed")

	// ErrMalformedMessage is returned by Consume for an entry that is not a Message.
	// The entry has already been removed from the queue.
	ErrMalformedMessage = errors.New("malformed queue message")
)

// ConnectionFailed is returned when the queue server cannot be reached.
type ConnectionFailed struct {
	// Addr is the server address, without credentials.
	Addr string
	Err  error
}

func (e *ConnectionFailed) Error() string {
	return fmt.Sprintf("[QueueConnectionFailed] Could not connect to '%s': %v", e.Addr, e.Err)
}

func (e *ConnectionFailed) Unwrap() error {
	return e.Err
}

// ChannelMisuse is returned when a connector opens or uses a channel its role does
// not permit.
type ChannelMisuse struct {
	Connector ConnectorKind
	Channel   ChannelConfig
}

func (e *ChannelMisuse) Error() string {
	return fmt.Sprintf("[ChannelMisuse] Connector '%s' may not use a %s.", e.Connector, e.Channel)
}
