package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// storecheck pokes at a postgres-backed record store directly. REST-backed
// deployments have the hosted dashboard for this.
func main() {
	pool, err := pgxpool.New(context.Background(), os.Getenv("STORE_URL"))
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	ctx := context.Background()

	if len(os.Args) > 1 && os.Args[1] == "tail" {
		n := 10
		if len(os.Args) > 2 {
			fmt.Sscanf(os.Args[2], "%d", &n)
		}
		rows, _ := pool.Query(ctx, `
			SELECT id, created_at, left(transcription, 80)
			FROM transcriptions
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		`, n)
		defer rows.Close()
		for rows.Next() {
			var id int64
			var createdAt time.Time
			var text string
			rows.Scan(&id, &createdAt, &text)
			fmt.Printf("%6d  %s  %q\n", id, createdAt.Format(time.RFC3339), text)
		}
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "purge-before" {
		if len(os.Args) < 3 {
			fmt.Println("usage: storecheck purge-before 2026-01-31 [apply]")
			os.Exit(1)
		}
		cutoff, err := time.Parse("2006-01-02", os.Args[2])
		if err != nil {
			panic(err)
		}
		if dryRun := !(len(os.Args) > 3 && os.Args[3] == "apply"); dryRun {
			var count int64
			pool.QueryRow(ctx, "SELECT count(*) FROM transcriptions WHERE created_at < $1", cutoff).Scan(&count)
			fmt.Printf("Would delete %d transcription(s) older than %s (pass 'apply' to run)\n", count, os.Args[2])
			return
		}
		tag, err := pool.Exec(ctx, "DELETE FROM transcriptions WHERE created_at < $1", cutoff)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Deleted %d transcription(s)\n", tag.RowsAffected())
		return
	}

	// Default: row count and age range
	var count int64
	pool.QueryRow(ctx, "SELECT count(*) FROM transcriptions").Scan(&count)
	fmt.Printf("transcriptions: %d\n", count)
	if count > 0 {
		var oldest, newest time.Time
		pool.QueryRow(ctx, "SELECT min(created_at), max(created_at) FROM transcriptions").Scan(&oldest, &newest)
		fmt.Printf("oldest: %s\n", oldest.Format(time.RFC3339))
		fmt.Printf("newest: %s\n", newest.Format(time.RFC3339))
	}
}
