// Package providers implements one adapter per tracked platform. Each
// adapter runs its source strategies in priority order (structured API
// first, profile HTML as fallback) and extracts whatever fields it can.
// Source failures degrade fields to their defaults; they never propagate
// out of an adapter.
package providers

import (
	"context"

	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/models"
)

// Provider fetches and extracts metrics for one platform.
//
// Fetch returns a sparse field set; absent fields mean "no data" and take
// platform defaults during normalization. An empty username short-circuits
// to an empty partial without any network call.
type Provider interface {
	Platform() models.Platform
	Fetch(ctx context.Context, username string) extract.Partial
}
