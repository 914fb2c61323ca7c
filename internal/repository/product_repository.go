package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/shop-admin/internal/model"
)

// ProductRepo is the catalog store backed by the `products` table. Every
// method is a single statement; no transactions are used.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo constructs a ProductRepo with the provided DB handle.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = "id, name, description, price, image_url, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (model.Product, error) {
	var (
		p     model.Product
		desc  sql.NullString
		image sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &desc, &p.Price, &image, &p.CreatedAt); err != nil {
		return model.Product{}, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	if image.Valid {
		p.ImageURL = &image.String
	}
	return p, nil
}

// List returns all products, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a product or returns ErrNotFound.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// Create inserts p and then reads the row back so ID and CreatedAt are
// populated from the database.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO products (name, description, price, image_url) VALUES (?, ?, ?, ?)",
		p.Name, p.Description, p.Price, p.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = created
	return nil
}

// Update rewrites the editable fields. The image reference is left untouched.
func (r *ProductRepo) Update(ctx context.Context, id uint64, name string, description *string, price float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = ?, description = ?, price = ? WHERE id = ?",
		name, description, price, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product row. ErrNotFound when nothing matched.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of products; used by first-boot seeding.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}
