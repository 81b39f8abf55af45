package database

import (
	"context"
	"time"
)

const userColumns = `id, telegram_id, username, first_name, xp, rank, subscription,
	daily_xp, daily_xp_date, last_xp_time, is_admin, subscription_expires_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.XP, &u.Rank, &u.Subscription,
		&u.DailyXP, &u.DailyXPDate, &u.LastXPTime, &u.IsAdmin, &u.SubscriptionExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ============================================
// Users
// ============================================

func (db *DB) GetOrCreateUser(ctx context.Context, telegramID string, username, firstName *string, rank string, isAdmin bool) (*User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, rank, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			updated_at = NOW()
		RETURNING ` + userColumns

	return scanUser(db.Pool.QueryRow(ctx, query, telegramID, username, firstName, rank, isAdmin))
}

func (db *DB) GetUser(ctx context.Context, telegramID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, telegramID))
}

func (db *DB) UpdateUserIdentity(ctx context.Context, telegramID string, username, firstName *string, isAdmin bool) error {
	query := `
		UPDATE users SET username = $1, first_name = $2, is_admin = $3, updated_at = NOW()
		WHERE telegram_id = $4`
	_, err := db.Pool.Exec(ctx, query, username, firstName, isAdmin, telegramID)
	return err
}

func (db *DB) UpdateUserXP(ctx context.Context, telegramID string, xp, dailyXP int, dailyXPDate, rank string) error {
	query := `
		UPDATE users SET xp = $1, daily_xp = $2, daily_xp_date = $3, rank = $4,
			last_xp_time = NOW(), updated_at = NOW()
		WHERE telegram_id = $5`
	_, err := db.Pool.Exec(ctx, query, xp, dailyXP, dailyXPDate, rank, telegramID)
	return err
}

func (db *DB) SetUserXPRank(ctx context.Context, telegramID string, xp int, rank string) error {
	query := `UPDATE users SET xp = $1, rank = $2, updated_at = NOW() WHERE telegram_id = $3`
	_, err := db.Pool.Exec(ctx, query, xp, rank, telegramID)
	return err
}

func (db *DB) SetUserRank(ctx context.Context, telegramID, rank string) error {
	query := `UPDATE users SET rank = $1, updated_at = NOW() WHERE telegram_id = $2`
	_, err := db.Pool.Exec(ctx, query, rank, telegramID)
	return err
}

func (db *DB) UpdateUserSubscription(ctx context.Context, telegramID string, sub Subscription, expiresAt *time.Time) error {
	query := `
		UPDATE users SET subscription = $1, subscription_expires_at = $2, updated_at = NOW()
		WHERE telegram_id = $3`
	_, err := db.Pool.Exec(ctx, query, sub, expiresAt, telegramID)
	return err
}

func (db *DB) GetActiveSubscriptions(ctx context.Context) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE subscription != 'BASIC'
		ORDER BY subscription_expires_at`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (db *DB) GetExpiredSubscriptions(ctx context.Context) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE subscription != 'BASIC'
		  AND subscription_expires_at IS NOT NULL
		  AND subscription_expires_at <= NOW()`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (db *DB) GetTopUsers(ctx context.Context, limit int) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE xp >= 1 AND is_admin = FALSE
		ORDER BY xp DESC
		LIMIT $1`

	rows, err := db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ============================================
// Posts
// ============================================

func (db *DB) CreatePost(ctx context.Context, userID int, telegramID, category, content string) (*Post, error) {
	query := `
		INSERT INTO posts (user_id, telegram_id, category, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, telegram_id, category, content, created_at`

	var p Post
	err := db.Pool.QueryRow(ctx, query, userID, telegramID, category, content).Scan(
		&p.ID, &p.UserID, &p.TelegramID, &p.Category, &p.Content, &p.CreatedAt,
	)
	return &p, err
}

func (db *DB) GetRecentPostsCount(ctx context.Context, telegramID, category string, hours int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM posts
		WHERE telegram_id = $1 AND category = $2
		  AND created_at >= NOW() - $3 * INTERVAL '1 hour'`

	var count int
	err := db.Pool.QueryRow(ctx, query, telegramID, category, hours).Scan(&count)
	return count, err
}

func (db *DB) GetOldestRecentPost(ctx context.Context, telegramID, category string, hours int) (*time.Time, error) {
	query := `
		SELECT MIN(created_at)
		FROM posts
		WHERE telegram_id = $1 AND category = $2
		  AND created_at >= NOW() - $3 * INTERVAL '1 hour'`

	var oldest *time.Time
	err := db.Pool.QueryRow(ctx, query, telegramID, category, hours).Scan(&oldest)
	return oldest, err
}

// DeleteRecentPosts сбрасывает кулдаун: category = "all" удаляет всё.
func (db *DB) DeleteRecentPosts(ctx context.Context, telegramID, category string) error {
	if category == "all" {
		_, err := db.Pool.Exec(ctx, `DELETE FROM posts WHERE telegram_id = $1`, telegramID)
		return err
	}
	_, err := db.Pool.Exec(ctx, `DELETE FROM posts WHERE telegram_id = $1 AND category = $2`, telegramID, category)
	return err
}

// ============================================
// XP History
// ============================================

func (db *DB) CreateXPHistory(ctx context.Context, userID, xpChange int, reason string, adminID *string) (*XPHistory, error) {
	query := `
		INSERT INTO xp_history (user_id, xp_change, reason, admin_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, xp_change, reason, admin_id, timestamp`

	var h XPHistory
	err := db.Pool.QueryRow(ctx, query, userID, xpChange, reason, adminID).Scan(
		&h.ID, &h.UserID, &h.XPChange, &h.Reason, &h.AdminID, &h.Timestamp,
	)
	return &h, err
}
