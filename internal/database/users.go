package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, hashed_password, first_name, last_name, preferred_cutlery, is_admin, slack_user_id, created_at, updated_at`

func scanUser(row rowScanner) (UserProfile, error) {
	var u UserProfile
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName,
		&u.PreferredCutlery, &u.IsAdmin, &u.SlackUserID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return UserProfile{}, err
	}
	return u, nil
}

// CreateUserParams carries a new account. SlackUserID is set when the account
// is provisioned through a Slack magic link.
type CreateUserParams struct {
	ID               uuid.UUID
	Email            string
	HashedPassword   string
	FirstName        string
	LastName         string
	PreferredCutlery string
	IsAdmin          bool
	SlackUserID      pgtype.Text
}

// CreateUser inserts a new profile and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (UserProfile, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO user_profiles (id, email, hashed_password, first_name, last_name, preferred_cutlery, is_admin, slack_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		arg.ID, arg.Email, arg.HashedPassword, arg.FirstName, arg.LastName,
		arg.PreferredCutlery, arg.IsAdmin, arg.SlackUserID)
	return scanUser(row)
}

// GetUserByEmail fetches a profile by email, used on login.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (UserProfile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM user_profiles WHERE email = $1`, email)
	return scanUser(row)
}

// GetUser fetches a profile by id.
func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (UserProfile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM user_profiles WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserBySlackID fetches the profile linked to a Slack workspace member.
func (q *Queries) GetUserBySlackID(ctx context.Context, slackUserID string) (UserProfile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM user_profiles WHERE slack_user_id = $1`, slackUserID)
	return scanUser(row)
}

// UpdateUserProfileParams rewrites the user-editable slice of a profile.
type UpdateUserProfileParams struct {
	ID               uuid.UUID
	FirstName        string
	LastName         string
	PreferredCutlery string
}

// UpdateUserProfile updates name and cutlery preference, returning the row.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (UserProfile, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE user_profiles
		SET first_name = $2, last_name = $3, preferred_cutlery = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.FirstName, arg.LastName, arg.PreferredCutlery)
	return scanUser(row)
}

// LinkSlackUser attaches a Slack member id to an existing profile.
func (q *Queries) LinkSlackUser(ctx context.Context, id uuid.UUID, slackUserID string) (UserProfile, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE user_profiles SET slack_user_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, slackUserID)
	return scanUser(row)
}

// CountAdmins reports how many admin accounts exist. The first admin can
// always self-register; after that registration is gated by settings.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM user_profiles WHERE is_admin`).Scan(&n)
	return n, err
}

const settingsColumns = `id, allow_ordering, allow_admin_registration, updated_at`

func scanSettings(row rowScanner) (SystemSettings, error) {
	var s SystemSettings
	err := row.Scan(&s.ID, &s.AllowOrdering, &s.AllowAdminRegistration, &s.UpdatedAt)
	if err != nil {
		return SystemSettings{}, err
	}
	return s, nil
}

// GetSystemSettings returns the singleton settings row.
func (q *Queries) GetSystemSettings(ctx context.Context) (SystemSettings, error) {
	row := q.db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM system_settings ORDER BY updated_at DESC LIMIT 1`)
	return scanSettings(row)
}

// CreateSystemSettings inserts the initial settings row.
func (q *Queries) CreateSystemSettings(ctx context.Context, allowOrdering, allowAdminRegistration bool) (SystemSettings, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO system_settings (id, allow_ordering, allow_admin_registration)
		VALUES ($1, $2, $3)
		RETURNING `+settingsColumns,
		uuid.New(), allowOrdering, allowAdminRegistration)
	return scanSettings(row)
}

// UpdateSystemSettingsParams toggles the storefront gates.
type UpdateSystemSettingsParams struct {
	ID                     uuid.UUID
	AllowOrdering          bool
	AllowAdminRegistration bool
}

// UpdateSystemSettings rewrites the settings row, returning it.
func (q *Queries) UpdateSystemSettings(ctx context.Context, arg UpdateSystemSettingsParams) (SystemSettings, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE system_settings
		SET allow_ordering = $2, allow_admin_registration = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+settingsColumns,
		arg.ID, arg.AllowOrdering, arg.AllowAdminRegistration)
	return scanSettings(row)
}
