package store

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quantmarket/server/engine"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// SaveGame persists a settled game and its trade log atomically.
// The state must come from a session after EndGame.
func (db *DB) SaveGame(ctx context.Context, st engine.State) error {
	if st.FinalValue == nil || st.FinalPL == nil {
		return fmt.Errorf("game %s is not settled", st.ID)
	}

	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // safe if already committed

	if _, err := tx.Exec(ctx, `
        INSERT INTO games(id, player_card, final_value, final_pl, position, cash, buys, sells)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, st.ID, st.PlayerCard.String(), *st.FinalValue, *st.FinalPL,
		st.Position, st.Cash, st.OrderFlow.Buys, st.OrderFlow.Sells); err != nil {
		return err
	}

	for _, t := range st.Trades {
		if _, err := tx.Exec(ctx, `
            INSERT INTO trade_logs(game_id, round, side, counterparty, price, position_after, cash_after)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
        `, st.ID, t.Round, string(t.Side), t.Counterparty, t.Price, t.Position, t.Cash); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type GameRow struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	EndedAt    time.Time `json:"ended_at"`
	PlayerCard string    `json:"player_card"`
	FinalValue float64   `json:"final_value"`
	FinalPL    float64   `json:"final_pl"`
	Position   int       `json:"position"`
	Cash       float64   `json:"cash"`
	Buys       int       `json:"buys"`
	Sells      int       `json:"sells"`
}

// RecentGames lists the most recently settled games, newest first.
func (db *DB) RecentGames(ctx context.Context, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
        SELECT id, created_at, ended_at, player_card, final_value, final_pl,
               position, cash, buys, sells
          FROM games
         ORDER BY ended_at DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.CreatedAt, &g.EndedAt, &g.PlayerCard, &g.FinalValue,
			&g.FinalPL, &g.Position, &g.Cash, &g.Buys, &g.Sells); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
