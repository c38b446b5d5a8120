package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"productapi/internal/domain"
)

// ProductRepository is keyed storage of products. Implementations store copies:
// mutating a returned product has no effect until it is passed to Save.
type ProductRepository interface {
	// Add fails with domain.ErrDuplicateID when the id is taken.
	Add(ctx context.Context, p *domain.Product) error
	// GetByID reports a missing product as (nil, false, nil).
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, bool, error)
	GetAll(ctx context.Context) ([]*domain.Product, error)
	Save(ctx context.Context, p *domain.Product) error
	// Update loads the product, applies fn and stores the result as one step that
	// no other write to the same id can interleave with. A missing id is
	// (nil, false, nil) and fn is not called. If fn fails nothing is stored.
	Update(ctx context.Context, id uuid.UUID, fn func(*domain.Product) error) (*domain.Product, bool, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type SQLProductRepo struct{ db *sqlx.DB }

var _ ProductRepository = (*SQLProductRepo)(nil)

func NewSQLProductRepo(db *sqlx.DB) *SQLProductRepo { return &SQLProductRepo{db: db} }

type productRow struct {
	ID     string `db:"id"`
	Price  string `db:"price"`
	Active bool   `db:"active"`
}

func (r productRow) toDomain() (*domain.Product, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("decode id %q: %w", r.ID, err)
	}
	amount, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, fmt.Errorf("decode price of %s: %w", r.ID, err)
	}
	price, err := domain.NewPrice(amount)
	if err != nil {
		return nil, fmt.Errorf("stored price of %s: %w", r.ID, err)
	}
	return domain.RestoreProduct(id, price, r.Active), nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStorage, err))
}

// isDuplicateKey recognises primary key violations from both drivers.
func isDuplicateKey(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func (r *SQLProductRepo) Add(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
  INSERT INTO products(id, price, active)
  VALUES(?, ?, ?)
`), p.ID().String(), p.Price().Amount().String(), p.IsActive())
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("insert product %s: %w", p.ID(), errors.Join(domain.ErrDuplicateID, err))
		}
		return storageErr("insert product", err)
	}
	return nil
}

func (r *SQLProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, bool, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
  SELECT id, price, active
  FROM products
  WHERE id = ?
`), id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, storageErr("query product", err)
	}
	p, err := row.toDomain()
	if err != nil {
		return nil, false, storageErr("query product", err)
	}
	return p, true, nil
}

func (r *SQLProductRepo) GetAll(ctx context.Context) ([]*domain.Product, error) {
	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, `
  SELECT id, price, active
  FROM products
  ORDER BY created_at, id
`)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	out := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, storageErr("list products", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *SQLProductRepo) Save(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
  INSERT INTO products(id, price, active)
  VALUES(?, ?, ?)
  ON CONFLICT(id) DO UPDATE SET
    price = excluded.price,
    active = excluded.active,
    updated_at = CURRENT_TIMESTAMP
`), p.ID().String(), p.Price().Amount().String(), p.IsActive())
	if err != nil {
		return storageErr("save product", err)
	}
	return nil
}

// Update holds a row lock on postgres for the whole callback. SQLite runs on a
// single pooled connection, so the transaction already excludes other writers.
func (r *SQLProductRepo) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Product) error) (*domain.Product, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, storageErr("begin product update", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `
  SELECT id, price, active
  FROM products
  WHERE id = ?`
	if r.db.DriverName() == DriverPostgres {
		q += ` FOR UPDATE`
	}
	var row productRow
	if err := tx.GetContext(ctx, &row, tx.Rebind(q), id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, storageErr("lock product", err)
	}
	p, err := row.toDomain()
	if err != nil {
		return nil, false, storageErr("lock product", err)
	}

	if err := fn(p); err != nil {
		return nil, true, err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
  UPDATE products
  SET price = ?, active = ?, updated_at = CURRENT_TIMESTAMP
  WHERE id = ?
`), p.Price().Amount().String(), p.IsActive(), id.String()); err != nil {
		return nil, false, storageErr("update product", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, storageErr("commit product update", err)
	}
	return p, true, nil
}

func (r *SQLProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id.String()); err != nil {
		return storageErr("delete product", err)
	}
	return nil
}

func (r *SQLProductRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM products WHERE id = ?`), id.String()); err != nil {
		return false, storageErr("check product", err)
	}
	return n > 0, nil
}
