package client

import (
	"context"
	"strconv"
)

// PlayOptions is the body of a play request. vinyl always plays an album
// context from a track offset.
type PlayOptions struct {
	ContextURI string      `json:"context_uri,omitempty"`
	Offset     *PlayOffset `json:"offset,omitempty"`
}

// PlayOffset is the zero-based track to start the context from.
type PlayOffset struct {
	Position int `json:"position"`
}

// onDevice targets an endpoint at deviceID, or the active device when empty.
func onDevice(path, deviceID string, params map[string]string) string {
	if deviceID != "" {
		if params == nil {
			params = map[string]string{}
		}
		params["device_id"] = deviceID
	}
	return BuildURL(path, params)
}

// Play starts opts on the device. A nil opts resumes whatever is loaded.
func (c *Client) Play(ctx context.Context, deviceID string, opts *PlayOptions) error {
	// The endpoint rejects an empty body, even for resume.
	if opts == nil {
		opts = &PlayOptions{}
	}
	return c.Put(ctx, onDevice("/me/player/play", deviceID, nil), opts, nil)
}

// Pause pauses the device.
func (c *Client) Pause(ctx context.Context, deviceID string) error {
	return c.Put(ctx, onDevice("/me/player/pause", deviceID, nil), nil, nil)
}

// Next skips to the next track on the album.
func (c *Client) Next(ctx context.Context, deviceID string) error {
	return c.Post(ctx, onDevice("/me/player/next", deviceID, nil), nil, nil)
}

// Previous goes back one track.
func (c *Client) Previous(ctx context.Context, deviceID string) error {
	return c.Post(ctx, onDevice("/me/player/previous", deviceID, nil), nil, nil)
}

// SetVolume sets the device volume in percent.
func (c *Client) SetVolume(ctx context.Context, percent int, deviceID string) error {
	params := map[string]string{"volume_percent": strconv.Itoa(percent)}
	return c.Put(ctx, onDevice("/me/player/volume", deviceID, params), nil, nil)
}

// TransferPlayback moves the session to deviceID without starting it unless
// play is set.
func (c *Client) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	body := struct {
		DeviceIDs []string `json:"device_ids"`
		Play      bool     `json:"play"`
	}{[]string{deviceID}, play}
	return c.Put(ctx, "/me/player", body, nil)
}
