package queue

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"facette.io/natsort"
	"gopkg.in/yaml.v3"
)

//go:embed topology.yaml
var defaultTopologyYAML []byte

// Topology maps each connector to the channels it may open. It is immutable once
// built.
type Topology struct {
	channels map[ConnectorKind][]ChannelConfig
}

type topologyDocument struct {
	Connectors map[string][]struct {
		Type  string `yaml:"type"`
		Queue string `yaml:"queue"`
	} `yaml:"connectors"`
}

// ParseTopology reads a topology document.
func ParseTopology(data []byte) (*Topology, error) {
	var doc topologyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopology, err)
	}

	topology := &Topology{channels: make(map[ConnectorKind][]ChannelConfig, len(doc.Connectors))}

	for name, entries := range doc.Connectors {
		kind, err := ParseConnectorKind(name)
		if err != nil {
			return nil, err
		}

		configs := make([]ChannelConfig, 0, len(entries))

		for _, entry := range entries {
			chType, err := ParseChannelType(entry.Type)
			if err != nil {
				return nil, err
			}

			id, err := ParseIdentifier(entry.Queue)
			if err != nil {
				return nil, err
			}

			configs = append(configs, ChannelConfig{Type: chType, Queue: id})
		}

		topology.channels[kind] = configs
	}

	return topology, nil
}

var defaultTopology = sync.OnceValue(func() *Topology { //nolint:gochecknoglobals
	topology, err := ParseTopology(defaultTopologyYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded queue topology is invalid: %v", err))
	}

	return topology
})

// DefaultTopology returns the built-in topology.
func DefaultTopology() *Topology {
	return defaultTopology()
}

// Channels returns a copy of the channels kind may open. Unknown kinds have none.
func (t *Topology) Channels(kind ConnectorKind) []ChannelConfig {
	return slices.Clone(t.channels[kind])
}

// Queues returns the distinct queues kind may touch, in topology order.
func (t *Topology) Queues(kind ConnectorKind) []Identifier {
	var ids []Identifier

	for _, cfg := range t.channels[kind] {
		if !slices.Contains(ids, cfg.Queue) {
			ids = append(ids, cfg.Queue)
		}
	}

	return ids
}

// Permissions lists the directions kind may use on queue.
func (t *Topology) Permissions(kind ConnectorKind, queue Identifier) []ChannelType {
	var types []ChannelType

	for _, cfg := range t.channels[kind] {
		if cfg.Queue == queue {
			types = append(types, cfg.Type)
		}
	}

	return types
}

// Allows reports whether kind may open cfg.
func (t *Topology) Allows(kind ConnectorKind, cfg ChannelConfig) bool {
	return slices.Contains(t.channels[kind], cfg)
}

// Connectors returns the names of the configured connectors in natural order.
func (t *Topology) Connectors() []string {
	names := make([]string, 0, len(t.channels))
	for kind := range t.channels {
		names = append(names, kind.String())
	}

	natsort.Sort(names)

	return names
}
