// Package db owns the dev backend's Postgres connection and schema.
package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the database and applies the schema.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL DEFAULT '',
            image TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS categories (
            category_id SERIAL PRIMARY KEY,
            category TEXT NOT NULL UNIQUE
        );`,
		`CREATE TABLE IF NOT EXISTS products (
            product_id TEXT PRIMARY KEY,
            seller_id INT NOT NULL REFERENCES users(id),
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            price NUMERIC(12,2) NOT NULL,
            stock INT NOT NULL DEFAULT 0,
            category_id INT REFERENCES categories(category_id),
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS product_images (
            product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
            position INT NOT NULL,
            url TEXT NOT NULL,
            PRIMARY KEY(product_id, position)
        );`,
		`CREATE TABLE IF NOT EXISTS cart_products (
            user_id INT NOT NULL REFERENCES users(id),
            product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
            quantity INT NOT NULL,
            PRIMARY KEY(user_id, product_id)
        );`,
		`CREATE TABLE IF NOT EXISTS purchases (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id),
            product_id TEXT NOT NULL REFERENCES products(product_id),
            quantity INT NOT NULL,
            purchased_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chats (
            id SERIAL PRIMARY KEY,
            product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
            buyer_id INT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ DEFAULT NOW(),
            UNIQUE(product_id, buyer_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            chat_id INT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            sender_id INT NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`INSERT INTO categories (category) VALUES
            ('Electronics'), ('Clothing'), ('Home'), ('Sports'), ('Other')
            ON CONFLICT (category) DO NOTHING;`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
