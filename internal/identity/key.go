package identity

import (
	"errors"
	"strings"
)

// Separator joins the two participant identifiers inside a conversation key.
const Separator = ":"

var ErrInvalidParticipant = errors.New("invalid participant")

// Key derives the canonical conversation key for a pair of users. The
// participants are sorted before joining, so Key(a, b) == Key(b, a) and the
// same conversation is reached no matter who initiates it.
func Key(userA, userB string) (string, error) {
	if err := validateID(userA); err != nil {
		return "", err
	}
	if err := validateID(userB); err != nil {
		return "", err
	}
	if userA == userB {
		return "", ErrInvalidParticipant
	}
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + Separator + userB, nil
}

// Participants splits a canonical conversation key back into its two user
// identifiers. Keys that are not in canonical form are rejected.
func Participants(key string) (string, string, error) {
	parts := strings.Split(key, Separator)
	if len(parts) != 2 {
		return "", "", ErrInvalidParticipant
	}
	a, b := parts[0], parts[1]
	if validateID(a) != nil || validateID(b) != nil {
		return "", "", ErrInvalidParticipant
	}
	if a == b || b < a {
		return "", "", ErrInvalidParticipant
	}
	return a, b, nil
}

// Includes reports whether userID is one of the conversation's participants.
func Includes(key, userID string) bool {
	a, b, err := Participants(key)
	if err != nil {
		return false
	}
	return a == userID || b == userID
}

// Peer returns the other participant of the conversation.
func Peer(key, userID string) (string, error) {
	a, b, err := Participants(key)
	if err != nil {
		return "", err
	}
	switch userID {
	case a:
		return b, nil
	case b:
		return a, nil
	}
	return "", ErrInvalidParticipant
}

func validateID(id string) error {
	if id == "" || strings.Contains(id, Separator) || strings.ContainsAny(id, " \t\r\n") {
		return ErrInvalidParticipant
	}
	return nil
}
