package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/plant-care/internal/model"
)

// PlantService is the remote plant collection.
type PlantService interface {
	ListPlants(ctx context.Context) ([]model.Plant, error)
	GetPlant(ctx context.Context, id string) (*model.Plant, error)
	CreatePlant(ctx context.Context, p model.Plant) (string, error)
	UpdatePlant(ctx context.Context, p model.Plant) error
	DeletePlant(ctx context.Context, id string) error
}

var _ PlantService = (*Client)(nil)

type insertResult struct {
	InsertedID string `json:"insertedId"`
}

type updateResult struct {
	MatchedCount  *int `json:"matchedCount"`
	ModifiedCount int  `json:"modifiedCount"`
}

type deleteResult struct {
	DeletedCount int `json:"deletedCount"`
}

func plantPath(id string) string {
	return "/plants/" + url.PathEscape(id)
}

// ListPlants returns every plant in the collection.
func (c *Client) ListPlants(ctx context.Context) ([]model.Plant, error) {
	var plants []model.Plant
	if err := c.get(ctx, "/plants", &plants); err != nil {
		return nil, err
	}
	for i := range plants {
		plants[i].Normalize()
	}
	return plants, nil
}

// GetPlant returns one plant by record id.
func (c *Client) GetPlant(ctx context.Context, id string) (*model.Plant, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var p model.Plant
	if err := c.get(ctx, plantPath(id), &p); err != nil {
		return nil, err
	}
	// Some deployments answer 200 with an empty body for unknown ids.
	if p.ID == "" && p.PlantName == "" {
		return nil, fmt.Errorf("plant %s: %w", id, ErrNotFound)
	}
	if p.ID == "" {
		p.ID = id
	}
	p.Normalize()
	return &p, nil
}

// CreatePlant validates p, recomputes its next watering date and posts it.
// It returns the id assigned by the server.
func (c *Client) CreatePlant(ctx context.Context, p model.Plant) (string, error) {
	if err := p.PrepareForSubmission(); err != nil {
		return "", err
	}
	p.ID = ""

	var res insertResult
	if err := c.post(ctx, "/plants", p, &res); err != nil {
		return "", err
	}
	if res.InsertedID == "" {
		return "", fmt.Errorf("creating plant %q: server returned no id", p.PlantName)
	}
	return res.InsertedID, nil
}

// UpdatePlant validates p, recomputes its next watering date and replaces
// the stored record. It returns ErrNotModified when nothing changed.
func (c *Client) UpdatePlant(ctx context.Context, p model.Plant) error {
	if p.ID == "" {
		return fmt.Errorf("updating plant %q: missing id", p.PlantName)
	}
	if err := p.PrepareForSubmission(); err != nil {
		return err
	}

	var res updateResult
	if err := c.put(ctx, plantPath(p.ID), p, &res); err != nil {
		return err
	}
	if res.MatchedCount != nil && *res.MatchedCount == 0 {
		return fmt.Errorf("plant %s: %w", p.ID, ErrNotFound)
	}
	if res.ModifiedCount == 0 {
		return fmt.Errorf("plant %s: %w", p.ID, ErrNotModified)
	}
	return nil
}

// DeletePlant removes a plant by id.
func (c *Client) DeletePlant(ctx context.Context, id string) error {
	var res deleteResult
	if err := c.delete(ctx, plantPath(id), &res); err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("plant %s: %w", id, ErrNotFound)
	}
	return nil
}
