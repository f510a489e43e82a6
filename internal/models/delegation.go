package models

import "time"

// DelegationLink places a team member into a project manager's managed
// pool. A member has at most one active manager at a time. Unlinking
// removes the row outright so the member can be linked again; there is
// no tombstone to collide with the unique index.
type DelegationLink struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	ManagerID uint  `gorm:"index;not null" json:"manager_id"`
	Manager   *User `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	MemberID  uint  `gorm:"uniqueIndex:idx_delegation_member;not null" json:"member_id"`
	Member    *User `gorm:"foreignKey:MemberID" json:"member,omitempty"`

	Notes      string    `gorm:"type:text" json:"notes"`
	AssignedBy uint      `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (DelegationLink) TableName() string { return "delegation_links" }

// ClientDelegation links a client to the project manager responsible
// for it. The visibility resolver consumes these read-only; creation is
// handled by the client-management surface.
type ClientDelegation struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ManagerID uint    `gorm:"uniqueIndex:idx_client_delegation;not null" json:"manager_id"`
	Manager   *User   `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	ClientID  uint    `gorm:"uniqueIndex:idx_client_delegation;not null" json:"client_id"`
	Client    *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	AssignedBy uint      `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

func (ClientDelegation) TableName() string { return "client_delegations" }
