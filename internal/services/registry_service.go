package services

import (
	"context"
	"fmt"

	"greenstock-service/internal/models"
	"greenstock-service/internal/store"

	"github.com/google/uuid"
)

// Cadastros (fornecedores, clientes, produtos, serviços). Todos seguem a
// mesma regra: criar-ou-sobrescrever por id, unicidade de código devolvida
// como conflito que o chamador resolve com a flag overwrite.

func (s *inventoryService) Suppliers(_ context.Context) []models.RegistryEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.data.Suppliers)
}

func (s *inventoryService) Clients(_ context.Context) []models.RegistryEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.data.Clients)
}

func (s *inventoryService) Products(_ context.Context) []models.ProductEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.data.Products)
}

func (s *inventoryService) Services(_ context.Context) []models.ServiceEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.data.Services)
}

func (s *inventoryService) SaveSupplier(ctx context.Context, req models.SaveRegistryRequest) (*models.RegistryEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRegistry(ctx, &s.data.Suppliers, store.KeySuppliers, req)
}

func (s *inventoryService) SaveClient(ctx context.Context, req models.SaveRegistryRequest) (*models.RegistryEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRegistry(ctx, &s.data.Clients, store.KeyClients, req)
}

// saveRegistry aplica a regra comum de cadastro numa das duas listas de
// contrapartes. Chamar com o mutex em mãos.
func (s *inventoryService) saveRegistry(ctx context.Context, list *[]models.RegistryEntity, key string, req models.SaveRegistryRequest) (*models.RegistryEntity, error) {
	entity := req.RegistryEntity
	if entity.Name == "" {
		return nil, fmt.Errorf("%w: nome é obrigatório", ErrValidation)
	}
	entity.Code = normalizeCode(entity.Code)
	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}

	updated, err := upsertEntity(*list, entity, req.Overwrite,
		func(e models.RegistryEntity) (string, string) { return e.ID, e.Code })
	if err != nil {
		return nil, err
	}

	previous := *list
	*list = updated
	if err := s.data.SaveCollection(ctx, s.store, key); err != nil {
		*list = previous
		return nil, fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return &entity, nil
}

func (s *inventoryService) SaveProduct(ctx context.Context, p models.ProductEntity, overwrite bool) (*models.ProductEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Name == "" {
		return nil, fmt.Errorf("%w: nome é obrigatório", ErrValidation)
	}
	p.Code = normalizeCode(p.Code)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	updated, err := upsertEntity(s.data.Products, p, overwrite,
		func(e models.ProductEntity) (string, string) { return e.ID, e.Code })
	if err != nil {
		return nil, err
	}

	previous := s.data.Products
	s.data.Products = updated
	if err := s.data.SaveCollection(ctx, s.store, store.KeyProducts); err != nil {
		s.data.Products = previous
		return nil, fmt.Errorf("failed to persist products: %w", err)
	}
	return &p, nil
}

func (s *inventoryService) SaveService(ctx context.Context, sv models.ServiceEntity, overwrite bool) (*models.ServiceEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sv.Name == "" {
		return nil, fmt.Errorf("%w: nome é obrigatório", ErrValidation)
	}
	sv.Code = normalizeCode(sv.Code)
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}

	updated, err := upsertEntity(s.data.Services, sv, overwrite,
		func(e models.ServiceEntity) (string, string) { return e.ID, e.Code })
	if err != nil {
		return nil, err
	}

	previous := s.data.Services
	s.data.Services = updated
	if err := s.data.SaveCollection(ctx, s.store, store.KeyServices); err != nil {
		s.data.Services = previous
		return nil, fmt.Errorf("failed to persist services: %w", err)
	}
	return &sv, nil
}

func (s *inventoryService) DeleteSupplier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s, &s.data.Suppliers, store.KeySuppliers, id,
		func(e models.RegistryEntity) string { return e.ID })
}

func (s *inventoryService) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s, &s.data.Clients, store.KeyClients, id,
		func(e models.RegistryEntity) string { return e.ID })
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s, &s.data.Products, store.KeyProducts, id,
		func(e models.ProductEntity) string { return e.ID })
}

func (s *inventoryService) DeleteService(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s, &s.data.Services, store.KeyServices, id,
		func(e models.ServiceEntity) string { return e.ID })
}

// ReplicateSupplierToClients copia um fornecedor para a lista de clientes
// (contraparte que compra e vende). Um cliente existente com o mesmo
// código é substituído.
func (s *inventoryService) ReplicateSupplierToClients(ctx context.Context, supplierID string) (*models.RegistryEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var source *models.RegistryEntity
	for i := range s.data.Suppliers {
		if s.data.Suppliers[i].ID == supplierID {
			source = &s.data.Suppliers[i]
			break
		}
	}
	if source == nil {
		return nil, ErrNotFound
	}

	client := *source
	client.ID = uuid.NewString()
	for i := range s.data.Clients {
		if s.data.Clients[i].Code == source.Code {
			// Mantém o id do cliente existente, atualiza os dados.
			client.ID = s.data.Clients[i].ID
			break
		}
	}

	updated, err := upsertEntity(s.data.Clients, client, true,
		func(e models.RegistryEntity) (string, string) { return e.ID, e.Code })
	if err != nil {
		return nil, err
	}

	previous := s.data.Clients
	s.data.Clients = updated
	if err := s.data.SaveCollection(ctx, s.store, store.KeyClients); err != nil {
		s.data.Clients = previous
		return nil, fmt.Errorf("failed to persist clients: %w", err)
	}
	return &client, nil
}

// upsertEntity insere ou substitui por id. Outro registro com o mesmo
// código (e id diferente) é conflito; com overwrite, o conflitante sai da
// lista e o novo registro assume o código.
func upsertEntity[T any](list []T, entity T, overwrite bool, keys func(T) (id, code string)) ([]T, error) {
	entityID, entityCode := keys(entity)

	for _, existing := range list {
		id, code := keys(existing)
		if id != entityID && code != "" && code == entityCode {
			if !overwrite {
				return nil, fmt.Errorf("%w: código %s", ErrCodeConflict, entityCode)
			}
		}
	}

	out := make([]T, 0, len(list)+1)
	replaced := false
	for _, existing := range list {
		id, code := keys(existing)
		if id == entityID {
			out = append(out, entity)
			replaced = true
			continue
		}
		if overwrite && code != "" && code == entityCode {
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, entity)
	}
	return out, nil
}

func deleteByID[T any](ctx context.Context, s *inventoryService, list *[]T, key, id string, getID func(T) string) error {
	idx := -1
	for i, e := range *list {
		if getID(e) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	previous := *list
	filtered := make([]T, 0, len(previous)-1)
	filtered = append(filtered, previous[:idx]...)
	filtered = append(filtered, previous[idx+1:]...)
	*list = filtered

	if err := s.data.SaveCollection(ctx, s.store, key); err != nil {
		*list = previous
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func copySlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
