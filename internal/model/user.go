package model

import "time"

// Roles stored in users.role.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// ApprovalStatus is the admin decision on a student account.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// User represents an account as stored in the `users` table.  Students
// start out pending and must be approved before they can book seats or
// mark attendance.
//
// Fields:
//  ID             – primary key (uuid).
//  Email          – unique, normalized email address.
//  PasswordHash   – bcrypt hash, never serialized.
//  FullName       – display name.
//  MobileNumber   – contact number.
//  Role           – student or admin.
//  ApprovalStatus – pending, approved or rejected.
//  ApprovedBy     – admin who decided the approval (nullable).
//  ApprovedAt     – when the decision was taken (nullable).
type User struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	PasswordHash   string         `json:"-"`
	FullName       string         `json:"full_name"`
	MobileNumber   string         `json:"mobile_number"`
	Role           string         `json:"role"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	ApprovedBy     *string        `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsApproved reports whether the account may use student features.
// Admins are always considered approved.
func (u User) IsApproved() bool {
	return u.Role == RoleAdmin || u.ApprovalStatus == ApprovalApproved
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        string     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
