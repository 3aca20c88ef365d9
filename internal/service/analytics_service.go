package service

import (
	"context"
	"time"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const diasSemana = 7

type AnalyticsService interface {
	VentasSemanales(ctx context.Context, sucursalID uuid.UUID, hasta time.Time) (*dto.VentasSemanalesResponse, error)
	ProductosTop(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time, limit int) ([]dto.ProductoTopResponse, error)
	CrearMeta(ctx context.Context, req dto.CrearMetaRequest) (*dto.MetaResponse, error)
	ListMetas(ctx context.Context, usuarioID uuid.UUID) ([]dto.MetaResponse, error)
}

type analyticsService struct {
	ventaRepo repository.VentaRepository
	metaRepo  repository.MetaRepository
}

func NewAnalyticsService(ventaRepo repository.VentaRepository, metaRepo repository.MetaRepository) AnalyticsService {
	return &analyticsService{ventaRepo: ventaRepo, metaRepo: metaRepo}
}

// VentasSemanales covers the 7 calendar days ending at hasta (inclusive).
// Days without sales appear as zero points so charts render a full week.
func (s *analyticsService) VentasSemanales(ctx context.Context, sucursalID uuid.UUID, hasta time.Time) (*dto.VentasSemanalesResponse, error) {
	if hasta.IsZero() {
		hasta = time.Now()
	}
	fin := time.Date(hasta.Year(), hasta.Month(), hasta.Day(), 0, 0, 0, 0, hasta.Location()).AddDate(0, 0, 1)
	inicio := fin.AddDate(0, 0, -diasSemana)

	rows, err := s.ventaRepo.VentasPorDia(ctx, sucursalID, inicio, fin)
	if err != nil {
		return nil, domain.Classify(err)
	}

	porDia := make(map[string]repository.VentaDiaRow, len(rows))
	for _, r := range rows {
		porDia[r.Dia.Format("2006-01-02")] = r
	}

	resp := dto.VentasSemanalesResponse{
		SucursalID: sucursalID.String(),
		Desde:      inicio.Format("2006-01-02"),
		Hasta:      fin.AddDate(0, 0, -1).Format("2006-01-02"),
		Total:      decimal.Zero,
	}
	for d := inicio; d.Before(fin); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		punto := dto.VentaSemanalPunto{Fecha: key, TotalVenta: decimal.Zero}
		if row, ok := porDia[key]; ok {
			punto.TotalVenta = row.Total
			punto.Cantidad = row.Cantidad
		}
		resp.Puntos = append(resp.Puntos, punto)
		resp.Total = resp.Total.Add(punto.TotalVenta)
	}
	return &resp, nil
}

func (s *analyticsService) ProductosTop(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time, limit int) ([]dto.ProductoTopResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if hasta.IsZero() {
		hasta = time.Now()
	}
	if desde.IsZero() {
		desde = hasta.AddDate(0, -1, 0)
	}
	rows, err := s.ventaRepo.ProductosTop(ctx, sucursalID, desde, hasta, limit)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.ProductoTopResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProductoTopResponse{
			ProductoID: r.ProductoID.String(),
			Nombre:     r.Nombre,
			Unidades:   r.Unidades,
			Ingresos:   r.Ingresos,
		})
	}
	return out, nil
}

func (s *analyticsService) CrearMeta(ctx context.Context, req dto.CrearMetaRequest) (*dto.MetaResponse, error) {
	usuarioID, err := uuid.Parse(req.UsuarioID)
	if err != nil {
		return nil, domain.Validation("usuario_id inválido")
	}
	meta := model.MetaUsuario{
		UsuarioID:   usuarioID,
		MontoMeta:   req.MontoMeta,
		MontoActual: decimal.Zero,
		Estado:      model.MetaAbierta,
	}
	if err := s.metaRepo.Create(ctx, &meta); err != nil {
		return nil, domain.Classify(err)
	}
	resp := metaToResponse(&meta)
	return &resp, nil
}

func (s *analyticsService) ListMetas(ctx context.Context, usuarioID uuid.UUID) ([]dto.MetaResponse, error) {
	metas, err := s.metaRepo.ListPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.MetaResponse, 0, len(metas))
	for i := range metas {
		out = append(out, metaToResponse(&metas[i]))
	}
	return out, nil
}

func metaToResponse(m *model.MetaUsuario) dto.MetaResponse {
	resp := dto.MetaResponse{
		ID:          m.ID.String(),
		UsuarioID:   m.UsuarioID.String(),
		MontoMeta:   m.MontoMeta,
		MontoActual: m.MontoActual,
		Estado:      m.Estado,
		Cumplida:    m.Cumplida,
		FechaInicio: m.FechaInicio.Format(time.RFC3339),
	}
	if m.FechaCumplida != nil {
		fecha := m.FechaCumplida.Format(time.RFC3339)
		resp.FechaCumplida = &fecha
	}
	return resp
}
