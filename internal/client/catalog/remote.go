package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atinyakov/MediaKeeper/internal/client/api"
	"github.com/atinyakov/MediaKeeper/internal/models"
)

// UserPlaceholder is replaced with the user id in a catalog route template.
const UserPlaceholder = "{userId}"

// Doer sends API requests. *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, in any) (*api.Response, error)
}

// Remote reads and writes a user's entries through the catalog API.
type Remote struct {
	api  Doer
	path string
}

// NewRemote returns a Remote using the route template path, e.g.
// "/api/users/{userId}/media".
func NewRemote(client Doer, path string) *Remote {
	return &Remote{api: client, path: path}
}

func (r *Remote) collection(userID int64) string {
	return strings.ReplaceAll(r.path, UserPlaceholder, strconv.FormatInt(userID, 10))
}

func (r *Remote) item(userID, id int64) string {
	return r.collection(userID) + "/" + strconv.FormatInt(id, 10)
}

// Fetch returns every entry of userID. An empty or null body is an empty list.
func (r *Remote) Fetch(ctx context.Context, userID int64) ([]models.MediaEntry, error) {
	resp, err := r.call(ctx, "fetch catalog", http.MethodGet, r.collection(userID), nil)
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []models.MediaEntry{}, nil
	}
	var entries []models.MediaEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return entries, nil
}

// Save creates entry when it has no id and updates it otherwise. It returns
// the entry as stored by the server.
func (r *Remote) Save(ctx context.Context, userID int64, entry models.MediaEntry) (models.MediaEntry, error) {
	if err := entry.Validate(); err != nil {
		return models.MediaEntry{}, err
	}

	op, method, path := "create entry", http.MethodPost, r.collection(userID)
	if entry.ID != nil {
		op, method, path = "update entry", http.MethodPut, r.item(userID, *entry.ID)
	}

	resp, err := r.call(ctx, op, method, path, entry)
	if err != nil {
		return models.MediaEntry{}, err
	}

	var saved models.MediaEntry
	if err := json.Unmarshal(resp.Body, &saved); err != nil {
		return models.MediaEntry{}, fmt.Errorf("decode saved entry: %w", err)
	}
	if saved.ID == nil {
		return models.MediaEntry{}, fmt.Errorf("%s: server returned an entry without id", op)
	}
	return saved, nil
}

// Delete removes the entry with the given id. Deleting an entry the server
// does not know is not an error.
func (r *Remote) Delete(ctx context.Context, userID, id int64) error {
	_, err := r.call(ctx, "delete entry", http.MethodDelete, r.item(userID, id), nil)
	var re *RemoteError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

func (r *Remote) call(ctx context.Context, op, method, path string, in any) (*api.Response, error) {
	resp, err := r.api.Do(ctx, method, path, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.OK() {
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: api.ErrorMessage(resp.Body)}
	}
	return resp, nil
}
