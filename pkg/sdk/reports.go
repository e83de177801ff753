package sdk

import (
	"context"
	"net/http"

	"github.com/campuscatalyst/portal/pkg/schema"
)

// DashboardStats returns the placement dashboard tiles.
func (c *Client) DashboardStats(ctx context.Context) ([]schema.DashboardStat, error) {
	var out []schema.DashboardStat
	err := c.do(ctx, http.MethodGet, "/placement/dashboard/stats", nil, &out)
	return out, err
}

// RecentActivity returns the placement dashboard activity feed, newest first.
func (c *Client) RecentActivity(ctx context.Context) ([]schema.Activity, error) {
	var out []schema.Activity
	err := c.do(ctx, http.MethodGet, "/placement/dashboard/activity", nil, &out)
	return out, err
}
