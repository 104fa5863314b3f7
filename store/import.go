package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/collections"
	"panchayattax/services"
)

// ImportProperties saves every imported property in one transaction. Either
// all rows are saved or none are; the returned RowError names the row that
// failed.
func (s *Store) ImportProperties(ctx context.Context, rows []services.ImportedProperty) ([]services.Property, *services.RowError, error) {
	col, err := s.app.FindCollectionByNameOrId(collections.Properties)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "find properties collection", err)
	}

	var failed *services.RowError
	saved := make([]services.Property, 0, len(rows))
	err = s.app.RunInTransaction(func(txApp core.App) error {
		for _, row := range rows {
			p := row.Property
			if err := p.Validate(); err != nil {
				failed = &services.RowError{Row: row.Row, Message: err.Error()}
				return apperr.Validation(err)
			}

			rec := core.NewRecord(col)
			setPropertyFields(rec, p)
			if err := txApp.SaveWithContext(ctx, rec); err != nil {
				failed = &services.RowError{Row: row.Row, Message: fmt.Sprintf("failed to save: %s", err.Error())}
				return saveErr("property", err)
			}
			p.ID = rec.Id
			p.Taxes = nil
			saved = append(saved, p)
		}
		return nil
	})
	if err != nil {
		return nil, failed, err
	}
	return saved, nil, nil
}
