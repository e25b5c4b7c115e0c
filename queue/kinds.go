// Package queue connects pipeline workers through Redis backed work queues.
//
// Which queues a worker may touch, and in which direction, is decided by its
// ConnectorKind and the Topology. A batch extractor only produces, a transformer
// consumes extracted batches and produces transformed ones, and a loader only
// consumes.
package queue

import "fmt"

// ConnectorKind identifies the role of a pipeline worker.
type ConnectorKind int

const (
	BatchExtractor ConnectorKind = iota + 1
	BatchTransformer
	BatchLoader
)

var connectorNames = map[ConnectorKind]string{ //nolint:gochecknoglobals
	BatchExtractor:   "batch-extractor",
	BatchTransformer: "batch-transformer",
	BatchLoader:      "batch-loader",
}

// ParseConnectorKind parses the hyphenated connector name.
func ParseConnectorKind(s string) (ConnectorKind, error) {
	for kind, name := range connectorNames {
		if name == s {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown connector kind %q", ErrInvalidTopology, s)
}

func (k ConnectorKind) String() string {
	if name, ok := connectorNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ConnectorKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ConnectorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ConnectorKind) UnmarshalText(text []byte) error {
	parsed, err := ParseConnectorKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// Identifier names a queue.
type Identifier int

const (
	BatchExtractorQueue Identifier = iota + 1
	BatchTransformerQueue
	BatchLoaderQueue
)

var queueNames = map[Identifier]string{ //nolint:gochecknoglobals
	BatchExtractorQueue:   "batch_extractor_queue",
	BatchTransformerQueue: "batch_transformer_queue",
	BatchLoaderQueue:      "batch_loader_queue",
}

// ParseIdentifier parses a queue name.
func ParseIdentifier(s string) (Identifier, error) {
	for id, name := range queueNames {
		if name == s {
			return id, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown queue %q", ErrInvalidTopology, s)
}

// Name returns the queue name.
func (i Identifier) Name() string {
	if name, ok := queueNames[i]; ok {
		return name
	}

	return fmt.Sprintf("queue_%d", int(i))
}

func (i Identifier) String() string {
	return i.Name()
}

// ChannelType is the direction of a channel.
type ChannelType int

const (
	Producer ChannelType = iota + 1
	Consumer
)

// ParseChannelType parses "producer" or "consumer".
func ParseChannelType(s string) (ChannelType, error) {
	switch s {
	case "producer":
		return Producer, nil
	case "consumer":
		return Consumer, nil
	default:
		return 0, fmt.Errorf("%w: unknown channel type %q", ErrInvalidTopology, s)
	}
}

func (c ChannelType) String() string {
	switch c {
	case Producer:
		return "producer"
	case Consumer:
		return "consumer"
	default:
		return fmt.Sprintf("ChannelType(%d)", int(c))
	}
}

// ChannelConfig is one permitted (direction, queue) pair.
type ChannelConfig struct {
	Type  ChannelType
	Queue Identifier
}

func (c ChannelConfig) String() string {
	return c.Type.String() + " on " + c.Queue.Name()
}
