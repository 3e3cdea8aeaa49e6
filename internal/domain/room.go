package domain

import (
	"errors"
	"strings"
)

type (
	// RoomKind scopes a room to one entity type.
	RoomKind string
	// RoomKey is the canonical room name, "<kind>:<id>". Construct it only
	// through NewRoomKey so a key always carries a validated id.
	RoomKey string
)

const (
	KindProject   RoomKind = "project"
	KindWorkspace RoomKind = "workspace"
)

var ErrBadRoomKey = errors.New("malformed room key")

// NewRoomKey builds the canonical key for a room, running the strict
// entity-id check. Ad-hoc string concatenation elsewhere would let a
// project key collide with a workspace key or admit garbage ids.
func NewRoomKey(kind RoomKind, id string) (RoomKey, error) {
	if err := ValidateEntityID(id); err != nil {
		return "", err
	}
	return RoomKey(string(kind) + ":" + id), nil
}

// NewRoomKeyLoose skips the format check, validating only that the id is
// non-empty. Used on leave paths, where any room the caller could have
// joined already passed the strict check.
func NewRoomKeyLoose(kind RoomKind, id string) (RoomKey, error) {
	if id == "" {
		return "", ErrMissingID
	}
	return RoomKey(string(kind) + ":" + id), nil
}

// ParseRoomKey splits a key back into kind and id.
func ParseRoomKey(key RoomKey) (RoomKind, string, error) {
	kind, id, ok := strings.Cut(string(key), ":")
	if !ok || id == "" {
		return "", "", ErrBadRoomKey
	}
	switch RoomKind(kind) {
	case KindProject, KindWorkspace:
		return RoomKind(kind), id, nil
	}
	return "", "", ErrBadRoomKey
}
