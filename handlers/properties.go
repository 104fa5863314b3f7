package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/services"
)

// propertyPatch holds the owner details a PATCH may change. Nil fields are
// left as stored.
type propertyPatch struct {
	OwnerName  *string                `json:"ownerName"`
	FatherName *string                `json:"fatherName"`
	Mobile     *string                `json:"mobile"`
	HouseNo    *string                `json:"houseNo"`
	Address    *string                `json:"address"`
	Type       *services.PropertyType `json:"propertyType"`
	Area       *float64               `json:"area"`
}

func (p propertyPatch) apply(prop services.Property) services.Property {
	if p.OwnerName != nil {
		prop.OwnerName = *p.OwnerName
	}
	if p.FatherName != nil {
		prop.FatherName = *p.FatherName
	}
	if p.Mobile != nil {
		prop.Mobile = *p.Mobile
	}
	if p.HouseNo != nil {
		prop.HouseNo = *p.HouseNo
	}
	if p.Address != nil {
		prop.Address = *p.Address
	}
	if p.Type != nil {
		prop.Type = *p.Type
	}
	if p.Area != nil {
		prop.Area = *p.Area
	}
	return prop
}

type propertyList struct {
	Items []services.Property `json:"items"`
	Total int                 `json:"total"`
}

func badBody(err error) error {
	return apperr.Wrap(apperr.InvalidArgument, "request body is not valid JSON", err)
}

// HandlePropertyCreate returns a handler that registers a property.
func HandlePropertyCreate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ManageProperties); err != nil {
			return d.respondError(e, err)
		}

		var p services.Property
		if err := e.BindBody(&p); err != nil {
			return d.respondError(e, badBody(err))
		}
		p.ID = ""
		created, err := d.Store.CreateProperty(e.Request.Context(), p)
		if err != nil {
			return d.respondError(e, err)
		}
		d.logFor(e).Info("property registered", map[string]interface{}{"property_id": created.ID})
		return e.JSON(http.StatusCreated, created)
	}
}

// HandlePropertyList returns a handler that lists every property with its
// tax records.
func HandlePropertyList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ViewRecords); err != nil {
			return d.respondError(e, err)
		}
		props, err := d.Store.ListProperties(e.Request.Context())
		if err != nil {
			return d.respondError(e, err)
		}
		if props == nil {
			props = []services.Property{}
		}
		return e.JSON(http.StatusOK, propertyList{Items: props, Total: len(props)})
	}
}

// HandlePropertyGet returns a handler that fetches one property.
func HandlePropertyGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ViewRecords); err != nil {
			return d.respondError(e, err)
		}
		p, err := d.Store.GetProperty(e.Request.Context(), e.Request.PathValue("id"))
		if err != nil {
			return d.respondError(e, err)
		}
		return e.JSON(http.StatusOK, p)
	}
}

// HandlePropertyUpdate returns a handler that patches owner details.
func HandlePropertyUpdate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ManageProperties); err != nil {
			return d.respondError(e, err)
		}

		var patch propertyPatch
		if err := e.BindBody(&patch); err != nil {
			return d.respondError(e, badBody(err))
		}

		ctx := e.Request.Context()
		current, err := d.Store.GetProperty(ctx, e.Request.PathValue("id"))
		if err != nil {
			return d.respondError(e, err)
		}
		updated, err := d.Store.UpdateProperty(ctx, patch.apply(current))
		if err != nil {
			return d.respondError(e, err)
		}
		return e.JSON(http.StatusOK, updated)
	}
}

// HandlePropertyDelete returns a handler that removes a property and its
// tax records. Bills already issued for it are kept.
func HandlePropertyDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ManageProperties); err != nil {
			return d.respondError(e, err)
		}
		id := e.Request.PathValue("id")
		if err := d.Store.DeleteProperty(e.Request.Context(), id); err != nil {
			return d.respondError(e, err)
		}
		d.logFor(e).Info("property deleted", map[string]interface{}{"property_id": id})
		return e.NoContent(http.StatusNoContent)
	}
}
