// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Queries provides typed access to the database tables.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance bound to the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// User is a row in the users table.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Salt         string
	AccessLevel  string
	Flag         string
	Blocked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LogEvent is an append-only row in the log_events table.
type LogEvent struct {
	ID        int64
	Level     int64
	Type      string
	Activity  string
	Code      string
	Message   string
	Subject   sql.NullString
	CreatedAt time.Time
}

// BotCatch records a honeypot-triggering form submission.
type BotCatch struct {
	ID        int64
	IP        string
	Country   string
	UserAgent string
	Form      string
	CreatedAt time.Time
}

// Spammer is a sender email flagged by an admin.
type Spammer struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	Spam      bool
	CreatedAt time.Time
}

const userColumns = `id, name, email, password_hash, salt, access_level, flag, blocked, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Salt,
		&u.AccessLevel, &u.Flag, &u.Blocked, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Salt         string
	AccessLevel  string
	Flag         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, salt, access_level, flag, blocked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		RETURNING `+userColumns,
		arg.Name, arg.Email, arg.PasswordHash, arg.Salt, arg.AccessLevel, arg.Flag,
		arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by unique email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsersParams holds pagination for ListUsers.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns users ordered by creation time, newest first.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Salt,
			&u.AccessLevel, &u.Flag, &u.Blocked, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// UpdateUserNameParams holds the fields for UpdateUserName.
type UpdateUserNameParams struct {
	Name      string
	UpdatedAt time.Time
	ID        int64
}

// UpdateUserName changes a user's display name.
func (q *Queries) UpdateUserName(ctx context.Context, arg UpdateUserNameParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET name = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserPasswordParams holds the fields for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	Salt         string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces a user's password hash and salt together.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.Salt, arg.UpdatedAt, arg.ID)
	return err
}

// SetUserBlockedParams holds the fields for SetUserBlocked.
type SetUserBlockedParams struct {
	Blocked   bool
	UpdatedAt time.Time
	ID        int64
}

// SetUserBlocked blocks or unblocks a user.
func (q *Queries) SetUserBlocked(ctx context.Context, arg SetUserBlockedParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET blocked = ?, updated_at = ? WHERE id = ?`,
		arg.Blocked, arg.UpdatedAt, arg.ID)
	return err
}

// SetUserFlagParams holds the fields for SetUserFlag.
type SetUserFlagParams struct {
	Flag      string
	UpdatedAt time.Time
	ID        int64
}

// SetUserFlag changes a user's moderation flag color.
func (q *Queries) SetUserFlag(ctx context.Context, arg SetUserFlagParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET flag = ?, updated_at = ? WHERE id = ?`,
		arg.Flag, arg.UpdatedAt, arg.ID)
	return err
}

// SetUserAccessLevelParams holds the fields for SetUserAccessLevel.
type SetUserAccessLevelParams struct {
	AccessLevel string
	UpdatedAt   time.Time
	ID          int64
}

// SetUserAccessLevel changes a user's access level.
func (q *Queries) SetUserAccessLevel(ctx context.Context, arg SetUserAccessLevelParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET access_level = ?, updated_at = ? WHERE id = ?`,
		arg.AccessLevel, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteUser removes a user row permanently.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// CreateLogEventParams holds the fields for CreateLogEvent.
type CreateLogEventParams struct {
	Level     int64
	Type      string
	Activity  string
	Code      string
	Message   string
	Subject   sql.NullString
	CreatedAt time.Time
}

// CreateLogEvent appends a row to the event log.
func (q *Queries) CreateLogEvent(ctx context.Context, arg CreateLogEventParams) (LogEvent, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO log_events (level, type, activity, code, message, subject, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, level, type, activity, code, message, subject, created_at`,
		arg.Level, arg.Type, arg.Activity, arg.Code, arg.Message, arg.Subject, arg.CreatedAt)

	var e LogEvent
	err := row.Scan(&e.ID, &e.Level, &e.Type, &e.Activity, &e.Code, &e.Message, &e.Subject, &e.CreatedAt)
	return e, err
}

// ListLogEventsParams holds pagination for ListLogEvents.
type ListLogEventsParams struct {
	Limit  int64
	Offset int64
}

// ListLogEvents returns log events, newest first.
func (q *Queries) ListLogEvents(ctx context.Context, arg ListLogEventsParams) ([]LogEvent, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, type, activity, code, message, subject, created_at
		FROM log_events
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []LogEvent
	for rows.Next() {
		var e LogEvent
		if err := rows.Scan(&e.ID, &e.Level, &e.Type, &e.Activity, &e.Code,
			&e.Message, &e.Subject, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountLogEvents returns the total number of log events.
func (q *Queries) CountLogEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_events`).Scan(&count)
	return count, err
}

// CountLogEventsBySubject returns the number of log events keyed to a subject.
func (q *Queries) CountLogEventsBySubject(ctx context.Context, subject string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM log_events WHERE subject = ?`, subject).Scan(&count)
	return count, err
}

// ActivityCount is one row of the per-activity event summary.
type ActivityCount struct {
	Activity string
	Type     string
	Count    int64
}

// CountLogEventsByActivity summarizes log events grouped by activity and type.
func (q *Queries) CountLogEventsByActivity(ctx context.Context) ([]ActivityCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT activity, type, COUNT(*) AS cnt
		FROM log_events
		GROUP BY activity, type
		ORDER BY activity, type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ActivityCount
	for rows.Next() {
		var c ActivityCount
		if err := rows.Scan(&c.Activity, &c.Type, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CreateBotCatchParams holds the fields for CreateBotCatch.
type CreateBotCatchParams struct {
	IP        string
	Country   string
	UserAgent string
	Form      string
	CreatedAt time.Time
}

// CreateBotCatch appends a honeypot capture record.
func (q *Queries) CreateBotCatch(ctx context.Context, arg CreateBotCatchParams) (BotCatch, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO bot_catches (ip, country, user_agent, form, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, ip, country, user_agent, form, created_at`,
		arg.IP, arg.Country, arg.UserAgent, arg.Form, arg.CreatedAt)

	var b BotCatch
	err := row.Scan(&b.ID, &b.IP, &b.Country, &b.UserAgent, &b.Form, &b.CreatedAt)
	return b, err
}

// ListBotCatchesParams holds pagination for ListBotCatches.
type ListBotCatchesParams struct {
	Limit  int64
	Offset int64
}

// ListBotCatches returns bot captures, newest first.
func (q *Queries) ListBotCatches(ctx context.Context, arg ListBotCatchesParams) ([]BotCatch, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, ip, country, user_agent, form, created_at
		FROM bot_catches
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var catches []BotCatch
	for rows.Next() {
		var b BotCatch
		if err := rows.Scan(&b.ID, &b.IP, &b.Country, &b.UserAgent, &b.Form, &b.CreatedAt); err != nil {
			return nil, err
		}
		catches = append(catches, b)
	}
	return catches, rows.Err()
}

// CountBotCatches returns the total number of bot captures.
func (q *Queries) CountBotCatches(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bot_catches`).Scan(&count)
	return count, err
}

// CreateSpammerParams holds the fields for CreateSpammer.
type CreateSpammerParams struct {
	Email     string
	CreatedAt time.Time
}

// CreateSpammer registers a sender email as a spammer. Registering the same
// email twice is not an error.
func (q *Queries) CreateSpammer(ctx context.Context, arg CreateSpammerParams) (Spammer, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO spammers (email, created_at)
		VALUES (?, ?)
		ON CONFLICT(email) DO UPDATE SET email = excluded.email
		RETURNING id, email, created_at`,
		arg.Email, arg.CreatedAt)

	var s Spammer
	err := row.Scan(&s.ID, &s.Email, &s.CreatedAt)
	return s, err
}

// IsSpammer reports whether a sender email is in the spammer registry.
func (q *Queries) IsSpammer(ctx context.Context, email string) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM spammers WHERE email = ?`, email).Scan(&count)
	return count > 0, err
}

// CreateContactMessageParams holds the fields for CreateContactMessage.
type CreateContactMessageParams struct {
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// CreateContactMessage persists a contact-form submission.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (name, email, message, spam, created_at)
		VALUES (?, ?, ?, 0, ?)
		RETURNING id, name, email, message, spam, created_at`,
		arg.Name, arg.Email, arg.Message, arg.CreatedAt)

	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Spam, &m.CreatedAt)
	return m, err
}

// GetContactMessageByID fetches a contact message by primary key.
func (q *Queries) GetContactMessageByID(ctx context.Context, id int64) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, email, message, spam, created_at
		FROM contact_messages WHERE id = ?`, id)

	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Spam, &m.CreatedAt)
	return m, err
}

// MarkContactMessageSpam flags a contact message as spam.
func (q *Queries) MarkContactMessageSpam(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE contact_messages SET spam = 1 WHERE id = ?`, id)
	return err
}

// ListContactMessagesParams holds pagination for ListContactMessages.
type ListContactMessagesParams struct {
	Limit  int64
	Offset int64
}

// ListContactMessages returns contact messages, newest first.
func (q *Queries) ListContactMessages(ctx context.Context, arg ListContactMessagesParams) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, email, message, spam, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Spam, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
