package valueobjects

import (
	"errors"

	"github.com/google/uuid"

	pkgerrors "loom-backend/pkg/errors"
)

// NodeID is a value object representing a unique node identifier
// Value objects are immutable and have no identity beyond their value
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// ParseNodeID creates a NodeID from an existing string.
// Malformed identifiers are rejected here, before any store access.
func ParseNodeID(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if !isValidUUID(id) {
		return NodeID{}, pkgerrors.NewValidationError("node ID must be a valid UUID")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodeID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// ProjectID is a value object representing a unique project identifier
type ProjectID struct {
	value string
}

// NewProjectID creates a new random ProjectID
func NewProjectID() ProjectID {
	return ProjectID{value: uuid.New().String()}
}

// ParseProjectID creates a ProjectID from an existing string
func ParseProjectID(id string) (ProjectID, error) {
	if id == "" {
		return ProjectID{}, pkgerrors.NewValidationError("project ID cannot be empty")
	}
	if !isValidUUID(id) {
		return ProjectID{}, pkgerrors.NewValidationError("project ID must be a valid UUID")
	}
	return ProjectID{value: id}, nil
}

// String returns the string representation of the ProjectID
func (id ProjectID) String() string {
	return id.value
}

// Equals checks if two ProjectIDs are equal
func (id ProjectID) Equals(other ProjectID) bool {
	return id.value == other.value
}

// IsZero checks if the ProjectID is the zero value
func (id ProjectID) IsZero() bool {
	return id.value == ""
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
