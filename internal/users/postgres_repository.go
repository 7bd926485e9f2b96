package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores users in the relational database. The open
// key-value bags (health data, appointments, medications, chat history) are
// kept as jsonb columns.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row. Duplicate ids fail with ErrUserExists.
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	if user == nil || user.ID == "" {
		return ErrMissingID
	}

	healthData, appointments, medications, chatHistory, err := marshalBags(user)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, name, email, dob, health_data, appointments, medications, chat_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.DOB,
		healthData,
		appointments,
		medications,
		chatHistory,
	).Scan(&createdAt); err != nil {
		if err == pgx.ErrNoRows {
			return ErrUserExists
		}
		return fmt.Errorf("users: insert failed: %w", err)
	}

	user.CreatedAt = createdAt
	return nil
}

// Get fetches a user by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*User, error) {
	return r.selectOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail fetches the oldest user with the given email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.selectOne(ctx, `WHERE email = $1 ORDER BY created_at LIMIT 1`, email)
}

func (r *PostgresRepository) selectOne(ctx context.Context, clause string, arg any) (*User, error) {
	query := `
		SELECT id, name, email, dob, health_data, appointments, medications, chat_history, created_at
		FROM users ` + clause
	row := r.pool.QueryRow(ctx, query, arg)
	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return user, nil
}

// Update overwrites an existing row.
func (r *PostgresRepository) Update(ctx context.Context, user *User) error {
	if user == nil || user.ID == "" {
		return ErrMissingID
	}

	healthData, appointments, medications, chatHistory, err := marshalBags(user)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET name = $2, email = $3, dob = $4, health_data = $5,
		    appointments = $6, medications = $7, chat_history = $8
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.DOB,
		healthData,
		appointments,
		medications,
		chatHistory,
	); err != nil {
		return fmt.Errorf("users: update failed: %w", err)
	}
	return nil
}

// List returns all users ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, name, email, dob, health_data, appointments, medications, chat_history, created_at
		FROM users
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list rows: %w", err)
	}
	return out, nil
}

func marshalBags(user *User) (healthData, appointments, medications, chatHistory []byte, err error) {
	if healthData, err = json.Marshal(user.HealthData); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("users: marshal health data: %w", err)
	}
	if appointments, err = json.Marshal(user.Appointments); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("users: marshal appointments: %w", err)
	}
	if medications, err = json.Marshal(user.Medications); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("users: marshal medications: %w", err)
	}
	if chatHistory, err = json.Marshal(user.ChatHistory); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("users: marshal chat history: %w", err)
	}
	return healthData, appointments, medications, chatHistory, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user         User
		healthData   []byte
		appointments []byte
		medications  []byte
		chatHistory  []byte
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.DOB,
		&healthData,
		&appointments,
		&medications,
		&chatHistory,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(healthData) > 0 {
		if err := json.Unmarshal(healthData, &user.HealthData); err != nil {
			return nil, err
		}
	}
	if len(appointments) > 0 {
		if err := json.Unmarshal(appointments, &user.Appointments); err != nil {
			return nil, err
		}
	}
	if len(medications) > 0 {
		if err := json.Unmarshal(medications, &user.Medications); err != nil {
			return nil, err
		}
	}
	if len(chatHistory) > 0 {
		if err := json.Unmarshal(chatHistory, &user.ChatHistory); err != nil {
			return nil, err
		}
	}
	return &user, nil
}
