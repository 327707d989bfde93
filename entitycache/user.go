package entitycache

import "github.com/fintari/gramthread/domains/directory"

// User is a cached participant record. A user appearing in several threads is
// the same object; merges mutate it in place and every holder sees the update.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	ProfilePicURL string `json:"profile_pic_url"`
	IsPrivate     bool   `json:"is_private"`
	IsVerified    bool   `json:"is_verified"`
}

// NewUser builds a User from a raw participant record.
func NewUser(raw directory.RawUser) *User {
	u := &User{ID: raw.ID}
	u.Merge(raw)
	return u
}

// Merge applies a field-level overwrite of the raw record onto the user.
// Last merge wins; the identity never changes. The user carries no lock of
// its own; callers that share the object mutate it through Registry.Upsert,
// which serializes merges under the registry lock.
func (u *User) Merge(raw directory.RawUser) {
	u.Username = raw.Username
	u.FullName = raw.FullName
	u.ProfilePicURL = raw.ProfilePicURL
	u.IsPrivate = raw.IsPrivate
	u.IsVerified = raw.IsVerified
}
