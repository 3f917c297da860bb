package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"motoprice/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// ErrNotFound is returned when a listing does not exist in the working set.
var ErrNotFound = errors.New("listing not found")

// ErrConflict is returned when a moderation write carries a stale version:
// another reviewer changed the record after it was read. The caller must
// reload and retry; the write is never applied silently.
var ErrConflict = errors.New("listing changed since it was read")

// feature_vec is deliberately absent: it is write-only from Go's side, used
// only as a similarity-search operand inside SQL.
const listingColumns = `
	id, brand, model_line, body_type, displacement_class, condition, origin,
	odometer_km, registration_year, asking_price, predicted_price, residual,
	anomaly_flag, status, version, description, submitted_at, updated_at`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository and runs schema
// migrations.
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *PostgresRepository) migrate() error {
	_, err := r.db.Exec(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS listings (
			id                 BIGSERIAL PRIMARY KEY,
			brand              TEXT NOT NULL,
			model_line         TEXT NOT NULL,
			body_type          TEXT NOT NULL DEFAULT '',
			displacement_class TEXT NOT NULL DEFAULT '',
			condition          TEXT NOT NULL DEFAULT '',
			origin             TEXT NOT NULL DEFAULT '',
			odometer_km        BIGINT NOT NULL DEFAULT 0,
			registration_year  INT NOT NULL DEFAULT 0,
			asking_price       DOUBLE PRECISION NOT NULL,
			predicted_price    DOUBLE PRECISION NOT NULL,
			residual           DOUBLE PRECISION NOT NULL DEFAULT 0,
			anomaly_flag       BOOLEAN NOT NULL DEFAULT FALSE,
			status             INT NOT NULL DEFAULT 2,
			version            BIGINT NOT NULL DEFAULT 1,
			description        TEXT,
			feature_vec        vector,
			submitted_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_brand   ON listings(brand);
		CREATE INDEX IF NOT EXISTS idx_listings_status  ON listings(status);
		CREATE INDEX IF NOT EXISTS idx_listings_anomaly ON listings(anomaly_flag);

		CREATE TABLE IF NOT EXISTS submission_log (
			id                 BIGSERIAL PRIMARY KEY,
			listing_id         BIGINT NOT NULL,
			brand              TEXT NOT NULL,
			model_line         TEXT NOT NULL,
			body_type          TEXT NOT NULL DEFAULT '',
			displacement_class TEXT NOT NULL DEFAULT '',
			condition          TEXT NOT NULL DEFAULT '',
			origin             TEXT NOT NULL DEFAULT '',
			odometer_km        BIGINT NOT NULL DEFAULT 0,
			registration_year  INT NOT NULL DEFAULT 0,
			asking_price       DOUBLE PRECISION NOT NULL,
			predicted_price    DOUBLE PRECISION NOT NULL,
			anomaly_flag       BOOLEAN NOT NULL DEFAULT FALSE,
			status             INT NOT NULL,
			submitted_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_submission_log_listing ON submission_log(listing_id);

		CREATE TABLE IF NOT EXISTS anomaly_checks (
			id              BIGSERIAL PRIMARY KEY,
			checked_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			vehicle         TEXT NOT NULL,
			asking_price    DOUBLE PRECISION NOT NULL,
			predicted_price DOUBLE PRECISION NOT NULL,
			conclusion      TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS market_listings (
			id                BIGSERIAL PRIMARY KEY,
			brand             TEXT NOT NULL,
			model_line        TEXT NOT NULL,
			registration_year INT NOT NULL DEFAULT 0,
			odometer_km       BIGINT NOT NULL DEFAULT 0,
			price             DOUBLE PRECISION NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_market_listings_segment
			ON market_listings(brand, model_line, registration_year);
	`)
	return err
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// InsertListing stores a new working-set row and its submission-log row in
// one transaction, so the two can never disagree about what was submitted.
// ID, version and timestamps are filled in on the passed listing.
func (r *PostgresRepository) InsertListing(ctx context.Context, l *model.Listing) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// A listing without an encodable feature vector is stored with NULL and
	// simply never shows up as a similarity neighbour.
	var vec interface{}
	if len(l.FeatureVec.Slice()) > 0 {
		vec = l.FeatureVec
	}

	row := tx.QueryRowxContext(ctx, `
		INSERT INTO listings (
			brand, model_line, body_type, displacement_class, condition, origin,
			odometer_km, registration_year, asking_price, predicted_price, residual,
			anomaly_flag, status, description, feature_vec
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id, version, submitted_at, updated_at
	`,
		l.Brand, l.ModelLine, l.BodyType, l.DisplacementClass, l.Condition, l.Origin,
		l.OdometerKm, l.RegistrationYear, l.AskingPrice, l.PredictedPrice, l.Residual,
		l.AnomalyFlag, l.Status, l.Description, vec,
	)
	if err := row.Scan(&l.ID, &l.Version, &l.SubmittedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO submission_log (
			listing_id, brand, model_line, body_type, displacement_class, condition,
			origin, odometer_km, registration_year, asking_price, predicted_price,
			anomaly_flag, status, submitted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		l.ID, l.Brand, l.ModelLine, l.BodyType, l.DisplacementClass, l.Condition,
		l.Origin, l.OdometerKm, l.RegistrationYear, l.AskingPrice, l.PredictedPrice,
		l.AnomalyFlag, l.Status, l.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append submission log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}
	return nil
}

// GetListing retrieves a single working-set listing by its ID.
func (r *PostgresRepository) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// SearchListings performs a filtered working-set query, flagged rows first,
// then by deviation magnitude.
func (r *PostgresRepository) SearchListings(
	ctx context.Context,
	filters *model.ListingFilters,
	limit, offset int,
) ([]model.ListingSearchResult, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filters != nil {
		if len(filters.Brands) > 0 {
			placeholders := make([]string, len(filters.Brands))
			for i, b := range filters.Brands {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, b)
				argIndex++
			}
			whereClauses = append(whereClauses, fmt.Sprintf("brand IN (%s)", strings.Join(placeholders, ", ")))
		}
		if filters.Status != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIndex))
			args = append(args, *filters.Status)
			argIndex++
		}
		if filters.AnomalyOnly != nil && *filters.AnomalyOnly {
			whereClauses = append(whereClauses, "anomaly_flag = TRUE")
		}
		if filters.Classification != nil {
			switch model.Classification(*filters.Classification) {
			case model.ClassificationHighAnomaly:
				whereClauses = append(whereClauses, "anomaly_flag = TRUE AND residual > 0")
			case model.ClassificationLowAnomaly:
				whereClauses = append(whereClauses, "anomaly_flag = TRUE AND residual < 0")
			case model.ClassificationNormal:
				whereClauses = append(whereClauses, "anomaly_flag = FALSE")
			}
		}
		if filters.PriceMin != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("asking_price >= $%d", argIndex))
			args = append(args, *filters.PriceMin)
			argIndex++
		}
		if filters.PriceMax != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("asking_price <= $%d", argIndex))
			args = append(args, *filters.PriceMax)
			argIndex++
		}
		if filters.YearMin != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("registration_year >= $%d", argIndex))
			args = append(args, *filters.YearMin)
			argIndex++
		}
		if filters.YearMax != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("registration_year <= $%d", argIndex))
			args = append(args, *filters.YearMax)
			argIndex++
		}
		if filters.OdometerMax != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("odometer_km <= $%d", argIndex))
			args = append(args, *filters.OdometerMax)
			argIndex++
		}
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count results: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s,
			CASE WHEN predicted_price > 0
				THEN (residual / predicted_price) * 100
				ELSE 0
			END AS price_deviation_pct
		FROM listings
		WHERE %s
		ORDER BY anomaly_flag DESC, ABS(residual) DESC, submitted_at DESC
		LIMIT $%d OFFSET $%d
	`, listingColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	var results []model.ListingSearchResult
	if err := r.db.SelectContext(ctx, &results, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return results, total, nil
}

// UpdateListingStatus applies a status transition under optimistic
// concurrency: the write only lands when the caller's version is still
// current, and every successful write bumps the version.
func (r *PostgresRepository) UpdateListingStatus(
	ctx context.Context,
	id int64,
	status model.Status,
	anomalyFlag bool,
	version int64,
) (*model.Listing, error) {
	var listing model.Listing
	query := fmt.Sprintf(`
		UPDATE listings
		SET status = $1, anomaly_flag = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4
		RETURNING %s
	`, listingColumns)

	err := r.db.GetContext(ctx, &listing, query, status, anomalyFlag, id, version)
	if err == nil {
		return &listing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update listing status: %w", err)
	}
	return nil, r.staleOrMissing(ctx, id)
}

// DeleteListing removes a rejected listing from the working set, guarded by
// the same version check as status updates. The submission log is untouched.
func (r *PostgresRepository) DeleteListing(ctx context.Context, id, version int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

// staleOrMissing distinguishes a version conflict from a vanished row.
func (r *PostgresRepository) staleOrMissing(ctx context.Context, id int64) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("failed to check listing existence: %w", err)
	}
	if exists {
		return ErrConflict
	}
	return ErrNotFound
}

// SimilarListings returns the nearest working-set neighbours of a feature
// vector in the model's feature space.
func (r *PostgresRepository) SimilarListings(
	ctx context.Context,
	excludeID int64,
	vec pgvector.Vector,
	limit int,
) ([]model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM listings
		WHERE id <> $1 AND feature_vec IS NOT NULL
		ORDER BY feature_vec <-> $2
		LIMIT $3
	`, listingColumns)

	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, query, excludeID, vec, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch similar listings: %w", err)
	}
	return listings, nil
}

// ListSubmissions returns recent rows of the append-only submission log.
func (r *PostgresRepository) ListSubmissions(ctx context.Context, limit int) ([]model.SubmissionRecord, error) {
	var records []model.SubmissionRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, listing_id, brand, model_line, body_type, displacement_class,
			condition, origin, odometer_km, registration_year, asking_price,
			predicted_price, anomaly_flag, status, submitted_at
		FROM submission_log
		ORDER BY submitted_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission log: %w", err)
	}
	return records, nil
}

// AppendAnomalyCheck stores one explicitly saved anomaly check. The log is
// INSERT-only; checked_at is assigned by the database at insert time.
func (r *PostgresRepository) AppendAnomalyCheck(ctx context.Context, c *model.AnomalyCheck) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO anomaly_checks (vehicle, asking_price, predicted_price, conclusion)
		VALUES ($1, $2, $3, $4)
		RETURNING id, checked_at
	`, c.Vehicle, c.AskingPrice, c.PredictedPrice, c.Conclusion)
	if err := row.Scan(&c.ID, &c.CheckedAt); err != nil {
		return fmt.Errorf("failed to append anomaly check: %w", err)
	}
	return nil
}

// RecentAnomalyChecks returns the latest saved checks.
func (r *PostgresRepository) RecentAnomalyChecks(ctx context.Context, limit int) ([]model.AnomalyCheck, error) {
	var checks []model.AnomalyCheck
	err := r.db.SelectContext(ctx, &checks, `
		SELECT id, checked_at, vehicle, asking_price, predicted_price, conclusion
		FROM anomaly_checks
		ORDER BY checked_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch anomaly checks: %w", err)
	}
	return checks, nil
}

// MarketStats aggregates the read-only market dataset for a brand/model
// segment, optionally narrowed to one registration year.
func (r *PostgresRepository) MarketStats(
	ctx context.Context,
	brand, modelLine string,
	year *int,
) (*model.MarketStats, error) {
	stats := model.MarketStats{Brand: brand, ModelLine: modelLine, Year: year}

	query := `
		SELECT AVG(price) AS average_price, MIN(price) AS min_price,
			MAX(price) AS max_price, COUNT(*) AS count
		FROM market_listings
		WHERE brand = $1 AND model_line = $2
	`
	args := []interface{}{brand, modelLine}
	if year != nil {
		query += " AND registration_year = $3"
		args = append(args, *year)
	}

	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&stats.AveragePrice, &stats.MinPrice, &stats.MaxPrice, &stats.Count); err != nil {
		return nil, fmt.Errorf("failed to aggregate market stats: %w", err)
	}
	return &stats, nil
}
