package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	LinksKeyPrefix     = "links:%d:v%d"
	LinksVersionPrefix = "links:%d:version"
	BlacklistKeyPrefix = "blacklist:%s"
)

const (
	UserTTL  = 5 * time.Minute
	LinksTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// LinksKey holds the cached pair list of one user at a list version.
func LinksKey(userID uint, version int64) string {
	return fmt.Sprintf(LinksKeyPrefix, userID, version)
}

// LinksVersionKey is bumped on every write to a user's pairs.
func LinksVersionKey(userID uint) string {
	return fmt.Sprintf(LinksVersionPrefix, userID)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}
