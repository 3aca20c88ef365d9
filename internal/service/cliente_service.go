package service

import (
	"context"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Find(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	List(ctx context.Context, buscar string) ([]dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	cliente := model.Cliente{
		Nombre:     req.Nombre,
		Telefono:   req.Telefono,
		DPI:        req.DPI,
		Direccion:  req.Direccion,
		IPInternet: req.IPInternet,
	}
	if err := s.repo.Create(ctx, &cliente); err != nil {
		return nil, domain.Classify(err)
	}
	resp := clienteToResponse(&cliente)
	return &resp, nil
}

func (s *clienteService) Find(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify(err)
	}
	resp := clienteToResponse(cliente)
	return &resp, nil
}

func (s *clienteService) List(ctx context.Context, buscar string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, buscar)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify(err)
	}
	cliente.Nombre = req.Nombre
	cliente.Telefono = req.Telefono
	cliente.DPI = req.DPI
	cliente.Direccion = req.Direccion
	cliente.IPInternet = req.IPInternet
	if err := s.repo.Update(ctx, cliente); err != nil {
		return nil, domain.Classify(err)
	}
	resp := clienteToResponse(cliente)
	return &resp, nil
}

func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return domain.Classify(s.repo.Delete(ctx, id))
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:         c.ID.String(),
		Nombre:     c.Nombre,
		Telefono:   c.Telefono,
		DPI:        c.DPI,
		Direccion:  c.Direccion,
		IPInternet: c.IPInternet,
	}
}
