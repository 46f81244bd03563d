package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out snowflake ids for table primary keys. A single
// generator must be shared by every writer in the process so the sequence
// counter is not reset between calls.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator builds a generator for the given node id (0-1023).
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &IDGenerator{node: node}, nil
}

// NewIDGeneratorFromEnv uses SNOWFLAKE_NODE as the node id, defaulting to 1
// when it is missing or unparsable.
func NewIDGeneratorFromEnv() (*IDGenerator, error) {
	nodeID := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			nodeID = n
		}
	}
	return NewIDGenerator(nodeID)
}

// Next returns a new unique id.
func (g *IDGenerator) Next() int64 {
	return g.node.Generate().Int64()
}
