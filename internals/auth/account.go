package auth

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// AccountKind discriminates how an account authenticates
type AccountKind string

const (
	KindOffline   AccountKind = "offline"
	KindMicrosoft AccountKind = "microsoft"
)

// Account is one launcher account. Credentials are never stored on the
// account itself, the id doubles as the key into the credential store.
type Account struct {
	ID   uuid.UUID   `json:"id"`
	Name string      `json:"name"`
	Kind AccountKind `json:"kind"`
	// ProfileID is the in-game player uuid (derived for offline accounts)
	ProfileID string `json:"profileId"`
}

// UserType is the value for the ${user_type} launch argument
func (a *Account) UserType() string {
	if a.Kind == KindMicrosoft {
		return "msa"
	}
	return "offline"
}

// OfflineUUID derives the stable player uuid the vanilla server derives
// for offline players: md5 of "OfflinePlayer:<name>" as a v3 uuid
func OfflineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80 // RFC 4122 variant
	id, _ := uuid.FromBytes(sum[:])
	return id
}
