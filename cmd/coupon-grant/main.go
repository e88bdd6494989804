// Command coupon-grant grants a coupon to every member whose email appears in
// gzipped campaign dump files. Campaign exports overlap heavily, so emails are
// deduplicated with a bloom filter before any database work; the small false
// positive rate only ever skips a grant, which is acceptable for promotions.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/member"
	"github.com/drunkenhw/jwp-shopping-order/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	grantBatch    = 500
	progressEvery = 1_000_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
		couponName  string
		expiresIn   time.Duration
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing gzipped email dump files (*.gz)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&couponName, "coupon", "", "name of the coupon to grant")
	flag.DurationVar(&expiresIn, "expires-in", 7*24*time.Hour, "grant validity from now")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if couponName == "" {
		slog.Error("coupon name is required: set --coupon")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, couponName, expiresIn); err != nil {
		slog.Error("coupon grant failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon grant completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL, couponName string, expiresIn time.Duration) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob dump files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.gz files in %s", dataDir)
	}

	slog.Info("collecting emails", slog.Int("files", len(files)))

	emails, err := collectEmails(ctx, files)
	if err != nil {
		return errors.Wrap(err, "collect emails")
	}

	slog.Info("unique emails collected", slog.Int("count", len(emails)))

	if len(emails) == 0 {
		slog.Info("nothing to grant")
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	coupons := postgres.NewCouponRepository(pool)
	c, err := coupons.FindByName(ctx, couponName)
	if err != nil {
		return errors.Wrapf(err, "find coupon %q", couponName)
	}

	members := postgres.NewMemberRepository(pool)
	grants := postgres.NewMemberCouponRepository(pool)
	return grantAll(ctx, members, grants, c, emails, time.Now().Add(expiresIn))
}

// collectEmails streams every dump file concurrently and merges the per-file
// email lists into one globally deduplicated slice.
func collectEmails(ctx context.Context, files []string) ([]string, error) {
	perFile := make([][]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(collectFromFile(gctx, i, f, perFile))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var emails []string
	for _, list := range perFile {
		for _, email := range list {
			if merged.TestAndAddString(email) {
				continue
			}
			emails = append(emails, email)
		}
	}
	return emails, nil
}

func collectFromFile(ctx context.Context, idx int, path string, results [][]string) func() error {
	return func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var (
			emails []string
			count  uint64
		)

		if err := streamGzFile(ctx, path, func(line string) {
			email := strings.ToLower(strings.TrimSpace(line))
			if email == "" || !strings.Contains(email, "@") {
				return
			}
			count++
			if count%progressEvery == 0 {
				slog.Info("scan progress", slog.Int("file", idx+1), slog.Uint64("lines", count))
			}
			if seen.TestAndAddString(email) {
				return
			}
			emails = append(emails, email)
		}); err != nil {
			return errors.Wrapf(err, "scan file %d", idx+1)
		}

		slog.Info("scan complete",
			slog.Int("file", idx+1),
			slog.Uint64("lines", count),
			slog.Int("unique", len(emails)),
		)

		results[idx] = emails
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// grantAll resolves each email to a member and grants the coupon in batches.
// Emails without a member account are counted and skipped.
func grantAll(
	ctx context.Context,
	members member.Repository,
	grants coupon.MemberCouponRepository,
	c *coupon.Coupon,
	emails []string,
	expiresAt time.Time,
) error {
	slog.Info("granting coupon",
		slog.String("coupon", c.Name),
		slog.Int("emails", len(emails)),
		slog.Time("expires_at", expiresAt),
	)

	var (
		batch   = make([]coupon.MemberCoupon, 0, grantBatch)
		granted int
		unknown int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := grants.SaveAll(ctx, batch); err != nil {
			return errors.Wrap(err, "save grants")
		}
		granted += len(batch)
		batch = batch[:0]
		slog.Info("grant progress", slog.Int("granted", granted), slog.Int("unknown", unknown))
		return nil
	}

	for _, email := range emails {
		m, err := members.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, member.ErrNotFound) {
				unknown++
				continue
			}
			return errors.Wrapf(err, "find member %s", email)
		}

		batch = append(batch, coupon.MemberCoupon{
			MemberID:  m.ID,
			Coupon:    *c,
			ExpiresAt: expiresAt,
		})
		if len(batch) == grantBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Info("grants written", slog.Int("granted", granted), slog.Int("unknown", unknown))
	return nil
}
