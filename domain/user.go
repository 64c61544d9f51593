// Package domain contains core concepts of the messaging system.
// No runtime, network, or storage logic should be added here.
package domain

import "time"

// User is an account known to the persistence layer, independent of any
// live connection.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsOnline     bool
	CreatedAt    time.Time
}

// Identity is the authenticated view of a user carried by a validated
// session. It is all the coordinator needs to know about who is talking.
type Identity struct {
	ID          string
	DisplayName string
}
