package service

import (
	"fmt"

	"eagle-bank-api/internal/core/domain"

	"github.com/bwmarrin/snowflake"
)

// SnowflakeIDGenerator implements ports.TransactionIDGenerator. IDs are
// time-ordered per node and rendered in base58, which is alphanumeric.
type SnowflakeIDGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeIDGenerator creates a generator for the given node (0-1023).
func NewSnowflakeIDGenerator(nodeID int64) (*SnowflakeIDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeIDGenerator{node: node}, nil
}

// NewID returns a fresh transaction identifier.
func (g *SnowflakeIDGenerator) NewID() string {
	return domain.TransactionIDPrefix + g.node.Generate().Base58()
}
