package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	driver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviewdesk/internal/domain"
)

const errDuplicateEntry = 1062

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct {
	db   *sql.DB
	disc domain.Discoverer
	info domain.StoreInfo
}

// New wraps an open pool. dsn is only parsed for diagnostics.
func New(db *sql.DB, dsn string, d domain.Discoverer) *Repo {
	info := domain.StoreInfo{ID: "mysql"}
	if cfg, err := driver.ParseDSN(dsn); err == nil {
		info = domain.StoreInfo{ID: cfg.Addr + "/" + cfg.DBName, Credential: cfg.Passwd}
	}
	return &Repo{db: db, disc: d, info: info}
}

func (r *Repo) Describe() domain.StoreInfo { return r.info }

func (r *Repo) FetchAll(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot

	brows, err := r.db.QueryContext(ctx, selectBusinessesSQL)
	if err != nil {
		return snap, err
	}
	defer brows.Close()
	for brows.Next() {
		var b domain.Business
		var row int
		if err := brows.Scan(&b.ID, &b.Name, &row); err != nil {
			return snap, err
		}
		b.RowIndex = &row
		snap.Businesses = append(snap.Businesses, b)
	}
	if err := brows.Err(); err != nil {
		return snap, err
	}

	rrows, err := r.db.QueryContext(ctx, selectReviewsSQL)
	if err != nil {
		return snap, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var rv domain.Review
		var row int
		var source, status string
		var sentiment, intent, response, errMsg sql.NullString
		if err := rrows.Scan(
			&rv.ID, &row, &rv.BusinessName, &rv.Author, &rv.Rating, &rv.Text, &rv.Date, &source,
			&status, &sentiment, &intent, &response, &errMsg,
		); err != nil {
			return snap, err
		}
		rv.RowIndex = &row
		rv.Source = domain.ReviewSource(source)
		rv.Status = domain.Status(status)
		if !rv.Status.Valid() {
			log.Warn().Int64("review_id", rv.ID).Str("status", status).Msg("unknown status, treating as PendingAnalysis")
			rv.Status = domain.StatusPendingAnalysis
		}
		if sentiment.Valid || intent.Valid {
			rv.Analysis = &domain.Analysis{Sentiment: domain.ParseSentiment(sentiment.String), Intent: intent.String}
		}
		rv.Response = response.String
		rv.ErrorMessage = errMsg.String
		snap.Reviews = append(snap.Reviews, rv)
	}
	return snap, rrows.Err()
}

// UpdateAt writes only the columns of the fields set in p.
func (r *Repo) UpdateAt(ctx context.Context, row int, p domain.Patch) error {
	sets, args := updateClause(p)
	if len(sets) == 0 {
		return nil
	}
	q := "UPDATE reviews SET " + strings.Join(sets, ", ") + " WHERE row_index = ?"
	res, err := r.db.ExecContext(ctx, q, append(args, row)...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 when values are unchanged; tell that apart from a missing row.
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM reviews WHERE row_index = ?", row).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("row %d: %w", row, domain.ErrNotFound)
		}
	}
	return nil
}

func updateClause(p domain.Patch) ([]string, []any) {
	var sets []string
	var args []any
	for _, f := range p.Fields() {
		for _, col := range reviewColumns[f] {
			sets = append(sets, col+" = ?")
		}
		switch f {
		case domain.FieldStatus:
			args = append(args, string(p.Status.Value))
		case domain.FieldAnalysis:
			if a := p.Analysis.Value; a != nil {
				args = append(args, string(a.Sentiment), a.Intent)
			} else {
				args = append(args, nil, nil)
			}
		case domain.FieldResponse:
			args = append(args, nullStr(p.Response.Value))
		case domain.FieldErrorMessage:
			args = append(args, nullStr(p.ErrorMessage.Value))
		}
	}
	return sets, args
}

// CreateBusinessAndDiscover inserts the business and its discovered reviews in
// one transaction. Row indexes continue after the current maximum.
func (r *Repo) CreateBusinessAndDiscover(ctx context.Context, name string, _ domain.Snapshot) (domain.Business, []domain.Review, error) {
	found, err := r.disc.Discover(ctx, name)
	if err != nil {
		return domain.Business{}, nil, fmt.Errorf("discover: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Business{}, nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	var brow int
	if err := tx.QueryRowContext(ctx, nextBusinessRowSQL).Scan(&brow); err != nil {
		return domain.Business{}, nil, err
	}
	res, err := tx.ExecContext(ctx, insertBusinessSQL, name, brow)
	if err != nil {
		var me *driver.MySQLError
		if errors.As(err, &me) && me.Number == errDuplicateEntry {
			return domain.Business{}, nil, domain.ErrDuplicateBusiness
		}
		return domain.Business{}, nil, err
	}
	bid, _ := res.LastInsertId()
	b := domain.Business{ID: bid, Name: name, RowIndex: &brow}

	var next int
	if err := tx.QueryRowContext(ctx, nextReviewRowSQL).Scan(&next); err != nil {
		return domain.Business{}, nil, err
	}
	reviews := make([]domain.Review, 0, len(found))
	for i, d := range found {
		row := next + i
		res, err := tx.ExecContext(ctx, insertReviewSQL,
			row, name, d.Author, d.Rating, d.Text, d.Date, string(d.Source), string(domain.StatusPendingAnalysis))
		if err != nil {
			return domain.Business{}, nil, err
		}
		id, _ := res.LastInsertId()
		reviews = append(reviews, domain.Review{
			ID: id, Author: d.Author, Rating: d.Rating, Text: d.Text, Date: d.Date, Source: d.Source,
			Status: domain.StatusPendingAnalysis, BusinessName: name, RowIndex: &row,
		})
	}

	if err := tx.Commit(); err != nil {
		return domain.Business{}, nil, err
	}
	return b, reviews, nil
}
