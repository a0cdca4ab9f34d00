package core

import (
	"time"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// NewID generates a new unique ID
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation of the ID
func (id ID) String() string {
	return string(id)
}

// NodeType represents the type of a node in the CMake index graph
type NodeType string

const (
	NodeTypeFile     NodeType = "CMakeFile"
	NodeTypeCallable NodeType = "CMakeCallable"
	NodeTypeKeyword  NodeType = "Keyword"
)

// RelationType represents the type of relationship between index nodes
type RelationType string

const (
	RelationDefines RelationType = "DEFINES"
	RelationCalls   RelationType = "CALLS"
	RelationAccepts RelationType = "ACCEPTS"
)

// GenerationResult summarises one documentation run
type GenerationResult struct {
	ID          ID            `json:"id"`
	Input       string        `json:"input"`
	Output      string        `json:"output,omitempty"`
	Callables   int           `json:"callables"`
	Public      int           `json:"public"`
	Described   int           `json:"described"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}
