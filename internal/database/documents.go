package database

import (
	"slices"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

func applyOrderPatch(order *models.Order, patch services.OrderPatch) {
	if patch.PaymentStatus != nil {
		order.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentMethod != nil {
		order.PaymentMethod = *patch.PaymentMethod
	}
	if patch.DeliveryStatus != nil {
		order.DeliveryStatus = *patch.DeliveryStatus
	}
	if patch.Rider != nil {
		if patch.Rider.ID == nil {
			order.AssignedRiderID = nil
			order.AssignedRiderName = ""
		} else {
			id := *patch.Rider.ID
			order.AssignedRiderID = &id
			order.AssignedRiderName = patch.Rider.Name
		}
	}
}

func orderNotes(order *models.Order, kind services.NoteKind) *[]models.Note {
	if kind == services.NoteKindDelivery {
		return &order.DeliveryNotes
	}
	return &order.Notes
}

// removeNote returns notes without the one with noteID and whether it existed.
func removeNote(notes []models.Note, noteID uuid.UUID) ([]models.Note, bool) {
	kept := make([]models.Note, 0, len(notes))
	found := false
	for _, n := range notes {
		if n.ID == noteID {
			found = true
			continue
		}
		kept = append(kept, n)
	}
	return kept, found
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Images = slices.Clone(p.Images)
	c.Tags = slices.Clone(p.Tags)
	if p.Variations != nil {
		c.Variations = make([]models.Variation, len(p.Variations))
		for i, v := range p.Variations {
			v.Images = slices.Clone(v.Images)
			c.Variations[i] = v
		}
	}
	return &c
}

func cloneCustomer(cu *models.Customer) *models.Customer {
	c := *cu
	c.Addresses = slices.Clone(cu.Addresses)
	c.Tags = slices.Clone(cu.Tags)
	c.Notes = slices.Clone(cu.Notes)
	if cu.LastOrderDate != nil {
		t := *cu.LastOrderDate
		c.LastOrderDate = &t
	}
	return &c
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	c.Notes = slices.Clone(o.Notes)
	c.DeliveryNotes = slices.Clone(o.DeliveryNotes)
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		c.ShippingAddress = &a
	}
	if o.AssignedRiderID != nil {
		id := *o.AssignedRiderID
		c.AssignedRiderID = &id
	}
	return &c
}
