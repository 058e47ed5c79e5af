package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/airbnblite/airbot/internal/model"
)

type insurancePlanRow struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	PricePercent float64 `db:"price_percent"`
	MinTripValue float64 `db:"min_trip_value"`
	MaxTripValue float64 `db:"max_trip_value"`
	Benefits     string  `db:"benefits"`
	TermsURL     string  `db:"terms_url"`
}

func (r insurancePlanRow) toModel() model.InsurancePlan {
	return model.InsurancePlan{
		ID:           r.ID,
		Name:         r.Name,
		PricePercent: r.PricePercent,
		MinTripValue: r.MinTripValue,
		MaxTripValue: r.MaxTripValue,
		Benefits:     decodeList(r.Benefits),
		TermsURL:     r.TermsURL,
	}
}

// ListInsurancePlans returns all insurance plans.
func (s *SQLiteStore) ListInsurancePlans(ctx context.Context) ([]model.InsurancePlan, error) {
	var rows []insurancePlanRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM insurance_plans ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list insurance plans: %w", err)
	}
	out := make([]model.InsurancePlan, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// GetInsurancePlan returns the plan with id.
func (s *SQLiteStore) GetInsurancePlan(ctx context.Context, id string) (*model.InsurancePlan, error) {
	var r insurancePlanRow
	err := s.db.GetContext(ctx, &r, `SELECT * FROM insurance_plans WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insurance plan: %w", err)
	}
	p := r.toModel()
	return &p, nil
}

// CreateInsurancePlan inserts a plan. Returns ErrConflict when the id exists.
func (s *SQLiteStore) CreateInsurancePlan(ctx context.Context, req *model.InsurancePlanRequest) (*model.InsurancePlan, error) {
	row := insurancePlanRow{
		ID:           req.ID,
		Name:         req.Name,
		PricePercent: req.PricePercent,
		MinTripValue: req.MinTripValue,
		MaxTripValue: req.MaxTripValue,
		Benefits:     encodeList(req.Benefits),
		TermsURL:     req.TermsURL,
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO insurance_plans
		(id, name, price_percent, min_trip_value, max_trip_value, benefits, terms_url)
		VALUES (:id, :name, :price_percent, :min_trip_value, :max_trip_value, :benefits, :terms_url)`, row)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert insurance plan: %w", err)
	}
	p := row.toModel()
	return &p, nil
}
