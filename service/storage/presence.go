package storage

import (
	"fmt"
	"time"
)

// presence key: chat:presence:<user>
// Value is the connection id; the TTL bounds how stale the mirror can get.
func presenceKey(user string) string { return "chat:presence:" + user }

var ErrNotInitialized = fmt.Errorf("redis not initialized")

// PresenceOnline marks the user online and renews the TTL.
func PresenceOnline(user, connID string, ttl time.Duration) error {
	if rdb == nil {
		return ErrNotInitialized
	}
	return rdb.Set(ctx, presenceKey(user), connID, ttl).Err()
}

// PresenceOffline removes the user's presence key.
func PresenceOffline(user string) error {
	if rdb == nil {
		return ErrNotInitialized
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}
