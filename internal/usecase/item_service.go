package usecase

import (
	"context"
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// ItemService manages the master item inventory. Items are independent of
// kits: they can be created unassigned, assigned to a kit, moved between
// kits, and retired. Assignment changes go through AssignToKit and
// UnassignFromKit only; UpdateItem never touches the kit reference.
type ItemService struct {
	Store Store
	Clock func() time.Time
}

func NewItemService(store Store) *ItemService {
	return &ItemService{Store: store, Clock: time.Now}
}

type CreateItemInput struct {
	Type         custody.ItemType
	Make         string
	Model        string
	SerialNumber string
	FriendlyName string
	PhotoURL     string
	Quantity     *int
	Notes        string
	KitCode      string
	Actor        custody.Actor
}

type UpdateItemInput struct {
	ItemID       string
	Make         *string
	Model        *string
	SerialNumber *string
	FriendlyName *string
	PhotoURL     *string
	Quantity     *int
	Status       *custody.ItemStatus
	Notes        *string
	Actor        custody.Actor
}

type AssignItemInput struct {
	ItemID  string
	KitCode string
	Notes   string
	Actor   custody.Actor
}

// CreateItem adds an item to the master inventory. When a kit code is given
// the item starts out assigned to that kit; otherwise it is available.
func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (custody.Item, error) {
	if err := custody.Authorize(in.Actor, custody.OpItemManage); err != nil {
		return custody.Item{}, err
	}
	if !in.Type.Valid() {
		return custody.Item{}, custody.ErrInvalidInput
	}
	quantity := 1
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return custody.Item{}, custody.ErrInvalidInput
		}
		quantity = *in.Quantity
	}

	var created custody.Item
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		item := custody.Item{
			Type:         in.Type,
			Make:         in.Make,
			Model:        in.Model,
			SerialNumber: in.SerialNumber,
			FriendlyName: in.FriendlyName,
			PhotoURL:     in.PhotoURL,
			Quantity:     quantity,
			Status:       custody.ItemAvailable,
			Notes:        in.Notes,
			CreatedAt:    s.Clock(),
		}
		if in.KitCode != "" {
			kit, err := r.Kits.GetByCode(ctx, in.KitCode)
			if err != nil {
				return err
			}
			item.KitID = &kit.ID
			item.Status = custody.ItemAssigned
		}
		var err error
		created, err = r.Items.Create(ctx, item)
		return err
	})
	if err != nil {
		return custody.Item{}, err
	}
	return created, nil
}

// GetItem returns one inventory item.
func (s *ItemService) GetItem(ctx context.Context, itemID string) (custody.Item, error) {
	return s.Store.Repos().Items.GetByID(ctx, itemID)
}

// ListItems pages through the master inventory with optional filters.
func (s *ItemService) ListItems(ctx context.Context, filter ItemListFilter) ([]custody.Item, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, custody.ErrInvalidInput
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, custody.ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.Store.Repos().Items.List(ctx, filter)
}

// ListKitItems returns every item currently assigned to a kit.
func (s *ItemService) ListKitItems(ctx context.Context, kitCode string) ([]custody.Item, error) {
	kit, err := s.Store.Repos().Kits.GetByCode(ctx, kitCode)
	if err != nil {
		return nil, err
	}
	return s.Store.Repos().Items.ListByKit(ctx, kit.ID)
}

// UpdateItem rewrites item attributes. Only fields carried as non-nil
// pointers change; kit assignment is off limits here.
func (s *ItemService) UpdateItem(ctx context.Context, in UpdateItemInput) (custody.Item, error) {
	if err := custody.Authorize(in.Actor, custody.OpItemManage); err != nil {
		return custody.Item{}, err
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		return custody.Item{}, custody.ErrInvalidInput
	}
	if in.Status != nil && !in.Status.Valid() {
		return custody.Item{}, custody.ErrInvalidInput
	}

	var updated custody.Item
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		item, err := r.Items.GetByIDForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if in.Make != nil {
			item.Make = *in.Make
		}
		if in.Model != nil {
			item.Model = *in.Model
		}
		if in.SerialNumber != nil {
			item.SerialNumber = *in.SerialNumber
		}
		if in.FriendlyName != nil {
			item.FriendlyName = *in.FriendlyName
		}
		if in.PhotoURL != nil {
			item.PhotoURL = *in.PhotoURL
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.Status != nil {
			item.Status = *in.Status
		}
		if in.Notes != nil {
			item.Notes = *in.Notes
		}
		updated, err = r.Items.Update(ctx, item)
		return err
	})
	if err != nil {
		return custody.Item{}, err
	}
	return updated, nil
}

// AssignToKit moves an available item into a kit.
func (s *ItemService) AssignToKit(ctx context.Context, in AssignItemInput) (custody.Item, error) {
	if err := custody.Authorize(in.Actor, custody.OpItemManage); err != nil {
		return custody.Item{}, err
	}
	if in.KitCode == "" {
		return custody.Item{}, custody.ErrInvalidInput
	}

	var assigned custody.Item
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		item, err := r.Items.GetByIDForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item.Status != custody.ItemAvailable {
			return custody.ErrInvalidState
		}
		kit, err := r.Kits.GetByCode(ctx, in.KitCode)
		if err != nil {
			return err
		}
		item.KitID = &kit.ID
		item.Status = custody.ItemAssigned
		if in.Notes != "" {
			note := "[Assignment] " + in.Notes
			if item.Notes != "" {
				note = item.Notes + "\n" + note
			}
			item.Notes = note
		}
		assigned, err = r.Items.Update(ctx, item)
		return err
	})
	if err != nil {
		return custody.Item{}, err
	}
	return assigned, nil
}

// UnassignFromKit removes an item from its kit, making it available again.
func (s *ItemService) UnassignFromKit(ctx context.Context, itemID string, actor custody.Actor) (custody.Item, error) {
	if err := custody.Authorize(actor, custody.OpItemManage); err != nil {
		return custody.Item{}, err
	}

	var unassigned custody.Item
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		item, err := r.Items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item.KitID == nil {
			return custody.ErrInvalidState
		}
		item.KitID = nil
		item.Status = custody.ItemAvailable
		unassigned, err = r.Items.Update(ctx, item)
		return err
	})
	if err != nil {
		return custody.Item{}, err
	}
	return unassigned, nil
}

// DeleteItem removes an unassigned item from the inventory. Assigned items
// must be unassigned first.
func (s *ItemService) DeleteItem(ctx context.Context, itemID string, actor custody.Actor) error {
	if err := custody.Authorize(actor, custody.OpItemManage); err != nil {
		return err
	}
	return s.Store.WithinTx(ctx, func(r Repos) error {
		item, err := r.Items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item.KitID != nil {
			return custody.ErrInvalidState
		}
		return r.Items.Delete(ctx, item.ID)
	})
}
