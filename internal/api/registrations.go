package api

import "context"

// MyRegistrations lists the current user's registrations. Records may
// reference deleted events; see EventIDs.
func (c *Client) MyRegistrations(ctx context.Context) ([]Registration, error) {
	var regs []Registration
	if err := c.getJSON(ctx, "/registrations/my", &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// RegisterForEvent records the current user as registered for eventID.
// The backend rejects duplicates.
func (c *Client) RegisterForEvent(ctx context.Context, eventID string) error {
	return c.postJSON(ctx, "/registrations", map[string]string{"eventId": eventID}, nil)
}
