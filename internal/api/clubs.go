package api

import "context"

// ListClubs returns every club account.
func (c *Client) ListClubs(ctx context.Context) ([]Club, error) {
	var clubs []Club
	if err := c.getJSON(ctx, "/clubs", &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}
