package model

import "time"

// Role names stored in users.role.  The JWT "role" claim carries the
// same values so middleware can gate admin-only endpoints.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers define separate response types with JSON tags;
// these structs are primarily consumed by the repository layer.
//
// Points holds the user's current point balance. The balance is only
// ever mutated through the ledger repository's conditional updates so
// it can never go negative. Users are never hard-deleted; IsActive
// provides the soft lifecycle.
//
// Fields:
//  ID              – primary key identifier of the user.
//  Email           – unique email address (stored lowercase).
//  PasswordHash    – bcrypt hashed password.
//  FirstName       – given name from registration.
//  LastName        – family name from registration.
//  Role            – role name ("user" or "admin").
//  Points          – current point balance (always >= 0).
//  ProfileImageURL – optional avatar reference.
//  IsActive        – whether the account is active.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64    // users.id
	Email           string    // users.email
	PasswordHash    string    // users.password_hash
	FirstName       string    // users.first_name
	LastName        string    // users.last_name
	Role            string    // users.role
	Points          int64     // users.points
	ProfileImageURL *string   // users.profile_image_url (nullable)
	IsActive        bool      // users.is_active
	CreatedAt       time.Time // users.created_at
	UpdatedAt       time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
