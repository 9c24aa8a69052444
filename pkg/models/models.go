// Package models defines the durable entities of the chat server and the
// domain errors the store surfaces for them.
package models

// EdgeStatus is the stored state of a directed friendship edge.
type EdgeStatus string

const (
	// EdgePending marks an unresolved friend request from Owner to Other.
	EdgePending EdgeStatus = "pending"
	// EdgeAccepted marks one direction of an established friendship.
	// Accepted friendships always exist as two mirrored edges.
	EdgeAccepted EdgeStatus = "accepted"
)

// FriendStatus is the viewer-relative relationship label used by listings.
type FriendStatus string

const (
	StatusSelf     FriendStatus = "self"
	StatusFriend   FriendStatus = "friend"
	StatusOutgoing FriendStatus = "outgoing"
	StatusIncoming FriendStatus = "incoming"
	StatusNone     FriendStatus = "none"
)

// MaxUsernameLen is the longest username the wire record can carry
// (32-byte field, NUL-terminated).
const MaxUsernameLen = 31

// Account is a registered user. The password is opaque bytes compared
// exactly; identifiers are case-sensitive.
type Account struct {
	Username string `gorm:"primaryKey;size:32"`
	Password string `gorm:"not null"`
}

func (Account) TableName() string { return "users" }

// FriendEdge is a directed row of the friendship graph. A requests B inserts
// (A, B, pending); acceptance upgrades it and inserts the (B, A, accepted)
// mirror; refusal deletes the pending row; unfriending deletes both
// directions.
type FriendEdge struct {
	Owner  string     `gorm:"primaryKey;size:32;column:user"`
	Other  string     `gorm:"primaryKey;size:32;column:friend"`
	Status EdgeStatus `gorm:"not null;size:16"`
}

func (FriendEdge) TableName() string { return "friends" }

// Group is a named chat group. The creator is recorded as owner; ownership
// confers nothing beyond being the initial member (any member may add,
// remove, and read history).
type Group struct {
	Name  string `gorm:"primaryKey;size:64"`
	Owner string `gorm:"not null;size:32"`
}

func (Group) TableName() string { return "groups" }

// GroupMember is one membership row.
type GroupMember struct {
	GroupName string `gorm:"primaryKey;size:64;column:group_name"`
	Member    string `gorm:"primaryKey;size:32"`
}

func (GroupMember) TableName() string { return "group_members" }

// DirectMessage is one persisted direct message. IDs are monotonically
// increasing and define the canonical history order; SentAt is seconds since
// epoch at insertion. Rows are immutable.
type DirectMessage struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	Sender   string `gorm:"not null;size:32;index:idx_messages_pair"`
	Receiver string `gorm:"not null;size:32;index:idx_messages_pair"`
	Body     string `gorm:"not null"`
	SentAt   int64  `gorm:"not null"`
}

func (DirectMessage) TableName() string { return "messages" }

// GroupMessage is one persisted group message, with the same immutability
// and ordering contract as DirectMessage.
type GroupMessage struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	GroupName string `gorm:"not null;size:64;index"`
	Sender    string `gorm:"not null;size:32"`
	Body      string `gorm:"not null"`
	SentAt    int64  `gorm:"not null"`
}

func (GroupMessage) TableName() string { return "group_messages" }

// FriendEntry is one line of an annotated friend listing: the peer's name,
// the viewer-relative status (accepted edges report "accepted", unresolved
// requests report "outgoing" or "pending" depending on direction), and the
// live online flag stamped on afterwards from the session roster.
type FriendEntry struct {
	Name   string
	Status string
	Online bool
}

// UserStatus is one line of the all-users listing.
type UserStatus struct {
	Name   string
	Status FriendStatus
}

// AllModels returns every GORM model for auto-migration.
func AllModels() []any {
	return []any{
		&Account{},
		&FriendEdge{},
		&Group{},
		&GroupMember{},
		&DirectMessage{},
		&GroupMessage{},
	}
}
