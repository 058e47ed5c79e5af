package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/airbnblite/airbot/internal/model"
)

// propertyRow is the storage layout of a property; list fields are JSON text.
type propertyRow struct {
	ID            int64   `db:"id"`
	HostID        int64   `db:"host_id"`
	Title         string  `db:"title"`
	Location      string  `db:"location"`
	PricePerNight float64 `db:"price_per_night"`
	Rating        float64 `db:"rating"`
	Thumbnail     string  `db:"thumbnail"`
	Images        string  `db:"images"`
	Description   string  `db:"description"`
	Amenities     string  `db:"amenities"`
	PropertyInfo  string  `db:"property_info"`
	DataAIHint    string  `db:"data_ai_hint"`
}

func (r propertyRow) toModel() model.Property {
	return model.Property{
		ID:            r.ID,
		HostID:        r.HostID,
		Title:         r.Title,
		Location:      r.Location,
		PricePerNight: r.PricePerNight,
		Rating:        r.Rating,
		Thumbnail:     r.Thumbnail,
		Images:        decodeList(r.Images),
		Description:   r.Description,
		Amenities:     decodeList(r.Amenities),
		PropertyInfo:  r.PropertyInfo,
		DataAIHint:    r.DataAIHint,
	}
}

// ListProperties returns all properties.
func (s *SQLiteStore) ListProperties(ctx context.Context) ([]model.Property, error) {
	var rows []propertyRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM properties ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	out := make([]model.Property, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// GetProperty returns the property with id.
func (s *SQLiteStore) GetProperty(ctx context.Context, id int64) (*model.Property, error) {
	var r propertyRow
	err := s.db.GetContext(ctx, &r, `SELECT * FROM properties WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	p := r.toModel()
	return &p, nil
}

// CreateProperty inserts a property and returns its id.
func (s *SQLiteStore) CreateProperty(ctx context.Context, req *model.PropertyRequest) (int64, error) {
	row := propertyRow{
		HostID:        req.HostID,
		Title:         req.Title,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		Rating:        req.Rating,
		Thumbnail:     req.Thumbnail,
		Images:        encodeList(req.Images),
		Description:   req.Description,
		Amenities:     encodeList(req.Amenities),
		PropertyInfo:  req.PropertyInfo,
		DataAIHint:    req.DataAIHint,
	}
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO properties
		(host_id, title, location, price_per_night, rating, thumbnail, images, description, amenities, property_info, data_ai_hint)
		VALUES (:host_id, :title, :location, :price_per_night, :rating, :thumbnail, :images, :description, :amenities, :property_info, :data_ai_hint)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert property: %w", err)
	}
	return res.LastInsertId()
}

// UpdateProperty replaces the editable fields of the property with id.
func (s *SQLiteStore) UpdateProperty(ctx context.Context, id int64, req *model.UpdatePropertyRequest) error {
	res, err := s.db.ExecContext(ctx, `UPDATE properties SET
		title = ?, description = ?, location = ?, price_per_night = ?, amenities = ?, property_info = ?
		WHERE id = ?`,
		req.Title, req.Description, req.Location, req.PricePerNight, encodeList(req.Amenities), req.PropertyInfo, id)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	return requireAffected(res)
}

// DeleteProperty removes the property with id.
func (s *SQLiteStore) DeleteProperty(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	return requireAffected(res)
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func decodeList(raw string) []string {
	items := []string{}
	if raw == "" {
		return items
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}
