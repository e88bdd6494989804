// Command seed-db loads members, products, and coupon definitions from JSON
// files into the database. Rows are upserted, so reruns are safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/drunkenhw/jwp-shopping-order/internal/storage/postgres"
)

type memberJSON struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type productJSON struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
}

type couponJSON struct {
	Name         string          `json:"name"`
	DiscountType string          `json:"discountType"`
	Value        decimal.Decimal `json:"value"`
}

func main() {
	var (
		databaseURL  string
		membersFile  string
		productsFile string
		couponsFile  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&membersFile, "members-file", "db/seed/members.json", "path to members JSON file")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&couponsFile, "coupons-file", "db/seed/coupons.json", "path to coupons JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, membersFile, productsFile, couponsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, membersFile, productsFile, couponsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// The three tables are independent, so load them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errors.Wrap(seedMembers(gctx, pool, membersFile), "seed members")
	})
	g.Go(func() error {
		return errors.Wrap(seedProducts(gctx, pool, productsFile), "seed products")
	})
	g.Go(func() error {
		return errors.Wrap(seedCoupons(gctx, pool, couponsFile), "seed coupons")
	})
	return g.Wait()
}

func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "parse JSON")
	}
	return items, nil
}

func seedMembers(ctx context.Context, pool *pgxpool.Pool, path string) error {
	members, err := readJSON[memberJSON](path)
	if err != nil {
		return err
	}

	slog.Info("upserting members", slog.Int("count", len(members)))

	const q = `
		INSERT INTO members (email, password)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password`
	for _, m := range members {
		if _, err := pool.Exec(ctx, q, m.Email, m.Password); err != nil {
			return errors.Wrapf(err, "upsert member %s", m.Email)
		}
		slog.Info("upserted member", slog.String("email", m.Email))
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	products, err := readJSON[productJSON](path)
	if err != nil {
		return err
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	// Product names carry no unique constraint, so match on name explicitly
	// to keep reruns from duplicating rows.
	const updateQ = `UPDATE products SET price = $2, image_url = $3 WHERE name = $1`
	const insertQ = `INSERT INTO products (name, price, image_url) VALUES ($1, $2, $3)`
	for _, p := range products {
		tag, err := pool.Exec(ctx, updateQ, p.Name, p.Price, p.ImageURL)
		if err != nil {
			return errors.Wrapf(err, "update product %s", p.Name)
		}
		if tag.RowsAffected() == 0 {
			if _, err := pool.Exec(ctx, insertQ, p.Name, p.Price, p.ImageURL); err != nil {
				return errors.Wrapf(err, "insert product %s", p.Name)
			}
		}
		slog.Info("upserted product", slog.String("name", p.Name))
	}
	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, path string) error {
	coupons, err := readJSON[couponJSON](path)
	if err != nil {
		return err
	}

	slog.Info("upserting coupons", slog.Int("count", len(coupons)))

	const q = `
		INSERT INTO coupons (name, discount_type, discount_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value`
	for _, c := range coupons {
		if _, err := pool.Exec(ctx, q, c.Name, c.DiscountType, c.Value); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.Name)
		}
		slog.Info("upserted coupon", slog.String("name", c.Name), slog.String("type", c.DiscountType))
	}
	return nil
}
