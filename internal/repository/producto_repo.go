package repository

import (
	"context"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository is the data access contract for products and bundles.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context, buscar string, page, limit int) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	CreateEmpaque(ctx context.Context, e *model.Empaque) error
	FindEmpaqueByID(ctx context.Context, id uuid.UUID) (*model.Empaque, error)
	ListEmpaques(ctx context.Context) ([]model.Empaque, error)
	UpdateEmpaque(ctx context.Context, e *model.Empaque) error
	SoftDeleteEmpaque(ctx context.Context, id uuid.UUID) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Precios", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Precios", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Where("codigo_producto = ?", codigo).
		First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, buscar string, page, limit int) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("activo = true")
	if buscar != "" {
		like := "%" + buscar + "%"
		q = q.Where("nombre ILIKE ? OR codigo_producto ILIKE ?", like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 25
	}
	if page <= 0 {
		page = 1
	}
	err := q.Preload("Precios", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Order("nombre ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) CreateEmpaque(ctx context.Context, e *model.Empaque) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *productoRepo) FindEmpaqueByID(ctx context.Context, id uuid.UUID) (*model.Empaque, error) {
	var e model.Empaque
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *productoRepo) ListEmpaques(ctx context.Context) ([]model.Empaque, error) {
	var empaques []model.Empaque
	err := r.db.WithContext(ctx).Where("is_deleted = false").Order("nombre ASC").Find(&empaques).Error
	return empaques, err
}

func (r *productoRepo) UpdateEmpaque(ctx context.Context, e *model.Empaque) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *productoRepo) SoftDeleteEmpaque(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Empaque{}).
		Where("id = ?", id).Update("is_deleted", true).Error
}
