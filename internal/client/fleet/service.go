package fleet

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mehmet-raif33/ulasfleet/internal/client/api"
)

// collection is the shared CRUD plumbing behind every resource service.
// All calls are authenticated and return either decoded models or the
// classified *api.Error the request client produced.
type collection[T any] struct {
	client *api.Client
	base   string
}

func (s collection[T]) item(id string) string {
	return s.base + "/" + url.PathEscape(id)
}

// List fetches one page of the collection.
func (s collection[T]) List(ctx context.Context, p ListParams) (*Page[T], error) {
	env, err := s.client.DoAuthed(ctx, api.RequestDescriptor{Endpoint: s.base + p.query()})
	if err != nil {
		return nil, err
	}
	items, err := api.Decode[[]T](env)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Pagination: env.Pagination}, nil
}

// Get fetches a single record by id.
func (s collection[T]) Get(ctx context.Context, id string) (*T, error) {
	env, err := s.client.DoAuthed(ctx, api.RequestDescriptor{Endpoint: s.item(id)})
	if err != nil {
		return nil, err
	}
	v, err := api.Decode[T](env)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create posts a new record and returns the service's view of it.
func (s collection[T]) Create(ctx context.Context, input any) (*T, error) {
	env, err := s.client.DoAuthed(ctx, api.RequestDescriptor{
		Endpoint: s.base,
		Method:   http.MethodPost,
		Body:     input,
	})
	if err != nil {
		return nil, err
	}
	v, err := api.Decode[T](env)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Update replaces a record and returns the updated view.
func (s collection[T]) Update(ctx context.Context, id string, input any) (*T, error) {
	env, err := s.client.DoAuthed(ctx, api.RequestDescriptor{
		Endpoint: s.item(id),
		Method:   http.MethodPut,
		Body:     input,
	})
	if err != nil {
		return nil, err
	}
	v, err := api.Decode[T](env)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes a record.
func (s collection[T]) Delete(ctx context.Context, id string) error {
	_, err := s.client.DoAuthed(ctx, api.RequestDescriptor{
		Endpoint: s.item(id),
		Method:   http.MethodDelete,
	})
	return err
}

// VehicleService works the /vehicles collection.
type VehicleService struct{ collection[Vehicle] }

func NewVehicleService(c *api.Client) *VehicleService {
	return &VehicleService{collection[Vehicle]{client: c, base: "/vehicles"}}
}

// PersonnelService works the /personnel collection.
type PersonnelService struct{ collection[Personnel] }

func NewPersonnelService(c *api.Client) *PersonnelService {
	return &PersonnelService{collection[Personnel]{client: c, base: "/personnel"}}
}

// TransactionService works the /transactions collection.
type TransactionService struct{ collection[Transaction] }

func NewTransactionService(c *api.Client) *TransactionService {
	return &TransactionService{collection[Transaction]{client: c, base: "/transactions"}}
}

// CategoryService works the /transaction-categories collection.
type CategoryService struct{ collection[TransactionCategory] }

func NewCategoryService(c *api.Client) *CategoryService {
	return &CategoryService{collection[TransactionCategory]{client: c, base: "/transaction-categories"}}
}

// ActivityService reads the /activities audit trail. The service only
// ever lists and fetches; nothing on the client creates activity rows.
type ActivityService struct{ collection[Activity] }

func NewActivityService(c *api.Client) *ActivityService {
	return &ActivityService{collection[Activity]{client: c, base: "/activities"}}
}

// HealthStatus is the data service's liveness reply.
type HealthStatus struct {
	Status string `json:"status"`
}

// HealthService probes the public /health endpoint. No auth, no retries
// beyond the client's defaults.
type HealthService struct {
	client *api.Client
}

func NewHealthService(c *api.Client) *HealthService {
	return &HealthService{client: c}
}

func (s *HealthService) Check(ctx context.Context) (*HealthStatus, error) {
	env, err := s.client.Do(ctx, api.RequestDescriptor{Endpoint: "/health"})
	if err != nil {
		return nil, err
	}
	st, err := api.Decode[HealthStatus](env)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
