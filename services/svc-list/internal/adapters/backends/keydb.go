package backends

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
)

const (
	documentTypeField = "type"
	documentListField = "list"
	documentType      = "device_list"
)

// HashStore is the subset of the KeyDB client used by KeyDBBackend.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]any) error
	HSetNX(ctx context.Context, key string, fields map[string]any) (bool, error)
	Ping(ctx context.Context) error
}

// KeyDBBackend keeps the whole list in one hash, tagged by a type field.
type KeyDBBackend struct {
	store  HashStore
	key    string
	logger logger.Logger
}

func NewKeyDBBackend(store HashStore, key string, log logger.Logger) *KeyDBBackend {
	return &KeyDBBackend{
		store:  store,
		key:    key,
		logger: log.Component("keydb-backend"),
	}
}

func (b *KeyDBBackend) Name() string {
	return "keydb"
}

// Load creates the document with an empty list on first access. Creation
// never overwrites a list another writer stored in the meantime.
func (b *KeyDBBackend) Load(ctx context.Context) (model.List, error) {
	fields, err := b.store.HGetAll(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.key, err)
	}

	if len(fields) > 0 {
		return b.decode(fields)
	}

	created, err := b.store.HSetNX(ctx, b.key, map[string]any{
		documentTypeField: documentType,
		documentListField: "[]",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", b.key, err)
	}

	if created {
		b.logger.Info().Str("key", b.key).Msg("list document missing, created empty one")

		return model.List{}, nil
	}

	fields, err = b.store.HGetAll(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.key, err)
	}

	return b.decode(fields)
}

func (b *KeyDBBackend) decode(fields map[string]string) (model.List, error) {
	if fields[documentTypeField] != documentType {
		return nil, fmt.Errorf("key %s holds %q, expected %q", b.key, fields[documentTypeField], documentType)
	}

	var list model.List
	if err := json.Unmarshal([]byte(fields[documentListField]), &list); err != nil {
		return nil, fmt.Errorf("failed to decode list in %s: %w", b.key, err)
	}

	if list == nil {
		return model.List{}, nil
	}

	return list.Normalize(), nil
}

func (b *KeyDBBackend) Replace(ctx context.Context, list model.List) error {
	if list == nil {
		list = model.List{}
	}

	encoded, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode list: %w", err)
	}

	err = b.store.HSet(ctx, b.key, map[string]any{
		documentTypeField: documentType,
		documentListField: string(encoded),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", b.key, err)
	}

	return nil
}

func (b *KeyDBBackend) Ping(ctx context.Context) error {
	return b.store.Ping(ctx)
}
