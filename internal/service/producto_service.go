package service

import (
	"context"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, adminID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Find(ctx context.Context, id uuid.UUID, sucursalID uuid.UUID) (*dto.ProductoResponse, error)
	List(ctx context.Context, buscar string, page, limit int) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error

	CrearEmpaque(ctx context.Context, req dto.CrearEmpaqueRequest) (*dto.EmpaqueResponse, error)
	ListEmpaques(ctx context.Context) ([]dto.EmpaqueResponse, error)
	EliminarEmpaque(ctx context.Context, id uuid.UUID) error

	CrearProveedor(ctx context.Context, req dto.CrearProveedorRequest) (*model.Proveedor, error)
	ListProveedores(ctx context.Context) ([]model.Proveedor, error)
}

type productoService struct {
	repo          repository.ProductoRepository
	precioRepo    repository.PrecioRepository
	proveedorRepo repository.ProveedorRepository
	stockRepo     repository.StockRepository
}

func NewProductoService(
	repo repository.ProductoRepository,
	precioRepo repository.PrecioRepository,
	proveedorRepo repository.ProveedorRepository,
	stockRepo repository.StockRepository,
) ProductoService {
	return &productoService{
		repo:          repo,
		precioRepo:    precioRepo,
		proveedorRepo: proveedorRepo,
		stockRepo:     stockRepo,
	}
}

func (s *productoService) Crear(ctx context.Context, adminID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	producto := model.Producto{
		CodigoProducto: req.CodigoProducto,
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, &producto); err != nil {
		return nil, domain.Classify(err)
	}

	// Optional base price becomes orden 1 of the product's price list.
	if req.PrecioInicial != nil {
		err := runTx(ctx, s.precioRepo.DB(), func(tx *gorm.DB) error {
			return s.precioRepo.CreateTx(tx, &model.PrecioProducto{
				ProductoID:  producto.ID,
				Precio:      *req.PrecioInicial,
				Tipo:        model.TipoPrecioEstandar,
				Orden:       1,
				CreadoPorID: &adminID,
			})
		})
		if err != nil {
			return nil, domain.Classify(err)
		}
	}
	return s.Find(ctx, producto.ID, uuid.Nil)
}

func (s *productoService) Find(ctx context.Context, id uuid.UUID, sucursalID uuid.UUID) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify(err)
	}
	resp := productoToResponse(producto)
	if sucursalID != uuid.Nil {
		disponible, err := s.stockRepo.SumDisponible(ctx, id, sucursalID)
		if err == nil {
			resp.StockDisponible = &disponible
		}
	}
	return &resp, nil
}

func (s *productoService) List(ctx context.Context, buscar string, page, limit int) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, buscar, page, limit)
	if err != nil {
		return nil, domain.Classify(err)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify(err)
	}
	if req.Nombre != "" {
		producto.Nombre = req.Nombre
	}
	if req.Descripcion != nil {
		producto.Descripcion = req.Descripcion
	}
	if err := s.repo.Update(ctx, producto); err != nil {
		return nil, domain.Classify(err)
	}
	resp := productoToResponse(producto)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return domain.Classify(s.repo.SoftDelete(ctx, id))
}

func (s *productoService) CrearEmpaque(ctx context.Context, req dto.CrearEmpaqueRequest) (*dto.EmpaqueResponse, error) {
	empaque := model.Empaque{
		CodigoProducto: req.CodigoProducto,
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		PrecioCosto:    req.PrecioCosto,
		PrecioVenta:    req.PrecioVenta,
	}
	if err := s.repo.CreateEmpaque(ctx, &empaque); err != nil {
		return nil, domain.Classify(err)
	}
	resp := empaqueToResponse(&empaque)
	return &resp, nil
}

func (s *productoService) ListEmpaques(ctx context.Context) ([]dto.EmpaqueResponse, error) {
	empaques, err := s.repo.ListEmpaques(ctx)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.EmpaqueResponse, 0, len(empaques))
	for i := range empaques {
		out = append(out, empaqueToResponse(&empaques[i]))
	}
	return out, nil
}

func (s *productoService) EliminarEmpaque(ctx context.Context, id uuid.UUID) error {
	return domain.Classify(s.repo.SoftDeleteEmpaque(ctx, id))
}

func (s *productoService) CrearProveedor(ctx context.Context, req dto.CrearProveedorRequest) (*model.Proveedor, error) {
	proveedor := model.Proveedor{
		Nombre:   req.Nombre,
		Telefono: req.Telefono,
		Correo:   req.Correo,
		Activo:   true,
	}
	if err := s.proveedorRepo.Create(ctx, &proveedor); err != nil {
		return nil, domain.Classify(err)
	}
	return &proveedor, nil
}

func (s *productoService) ListProveedores(ctx context.Context) ([]model.Proveedor, error) {
	proveedores, err := s.proveedorRepo.List(ctx)
	if err != nil {
		return nil, domain.Classify(err)
	}
	return proveedores, nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:             p.ID.String(),
		CodigoProducto: p.CodigoProducto,
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		Activo:         p.Activo,
	}
	for i := range p.Precios {
		resp.Precios = append(resp.Precios, precioToResponse(&p.Precios[i]))
	}
	return resp
}

func empaqueToResponse(e *model.Empaque) dto.EmpaqueResponse {
	return dto.EmpaqueResponse{
		ID:             e.ID.String(),
		CodigoProducto: e.CodigoProducto,
		Nombre:         e.Nombre,
		Descripcion:    e.Descripcion,
		PrecioCosto:    e.PrecioCosto,
		PrecioVenta:    e.PrecioVenta,
	}
}
