package backends_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/adapters/backends"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/infrastructure"
	"github.com/stretchr/testify/suite"
)

const listKey = "list_manager:device_list"

type KeyDBBackendTestSuite struct {
	suite.Suite
	miniRedis   *miniredis.Miniredis
	keydbClient *infrastructure.KeydbClient
	backend     *backends.KeyDBBackend
}

func TestKeyDBBackendTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(KeyDBBackendTestSuite))
}

func (s *KeyDBBackendTestSuite) SetupTest() {
	var err error
	s.miniRedis, err = miniredis.Run()
	s.Require().NoError(err)

	cfg := config.KeyDB{
		Address:      s.miniRedis.Addr(),
		PoolSize:     5,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}

	s.keydbClient = infrastructure.NewKeyDBClient(cfg, logger.NewTestLogger())
	s.backend = backends.NewKeyDBBackend(s.keydbClient, listKey, logger.NewTestLogger())
}

func (s *KeyDBBackendTestSuite) TearDownTest() {
	if s.keydbClient != nil {
		_ = s.keydbClient.Close()
	}
	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}

func (s *KeyDBBackendTestSuite) TestLoad_CreatesDocumentLazily() {
	ctx := context.Background()

	s.Require().False(s.miniRedis.Exists(listKey))

	list, err := s.backend.Load(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(list)
	s.Require().Empty(list)

	s.Require().Equal("device_list", s.miniRedis.HGet(listKey, "type"))
	s.Require().Equal("[]", s.miniRedis.HGet(listKey, "list"))
}

func (s *KeyDBBackendTestSuite) TestReplaceThenLoad() {
	ctx := context.Background()
	list := model.List{
		{ID: "d1", Name: "Router", Status: model.StatusActive},
		{ID: "d2", Name: "Switch", Status: model.StatusInactive},
	}

	s.Require().NoError(s.backend.Replace(ctx, list))

	loaded, err := s.backend.Load(ctx)
	s.Require().NoError(err)
	s.Require().Equal(list, loaded)

	s.Require().NoError(s.backend.Replace(ctx, loaded))

	again, err := s.backend.Load(ctx)
	s.Require().NoError(err)
	s.Require().Equal(list, again)
}

// interleavedHashStore lets another writer commit right after the first read.
type interleavedHashStore struct {
	*infrastructure.KeydbClient

	afterFirstRead func()
	reads          int
}

func (h *interleavedHashStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := h.KeydbClient.HGetAll(ctx, key)

	h.reads++
	if h.reads == 1 && h.afterFirstRead != nil {
		h.afterFirstRead()
	}

	return fields, err
}

func (s *KeyDBBackendTestSuite) TestLoad_LazyCreateKeepsConcurrentWrite() {
	ctx := context.Background()
	committed := model.List{{ID: "d1", Name: "Router", Status: model.StatusActive}}

	store := &interleavedHashStore{
		KeydbClient: s.keydbClient,
		afterFirstRead: func() {
			s.Require().NoError(s.backend.Replace(ctx, committed))
		},
	}
	reader := backends.NewKeyDBBackend(store, listKey, logger.NewTestLogger())

	list, err := reader.Load(ctx)
	s.Require().NoError(err)
	s.Require().Equal(committed, list)
	s.Require().Equal(2, store.reads)

	stored, err := s.backend.Load(ctx)
	s.Require().NoError(err)
	s.Require().Equal(committed, stored)
}

func (s *KeyDBBackendTestSuite) TestLoad_NormalizesLegacyRecords() {
	s.miniRedis.HSet(listKey, "type", "device_list", "list", `[{"id":"d1","name":"Router"}]`)

	list, err := s.backend.Load(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(model.List{{ID: "d1", Name: "Router", Status: model.StatusActive}}, list)
}

func (s *KeyDBBackendTestSuite) TestLoad_RejectsForeignDocument() {
	s.miniRedis.HSet(listKey, "type", "session", "list", "[]")

	_, err := s.backend.Load(context.Background())
	s.Require().ErrorContains(err, "expected \"device_list\"")
}

func (s *KeyDBBackendTestSuite) TestLoad_CorruptList() {
	s.miniRedis.HSet(listKey, "type", "device_list", "list", "{not json")

	_, err := s.backend.Load(context.Background())
	s.Require().Error(err)
}

func (s *KeyDBBackendTestSuite) TestUnavailable() {
	s.miniRedis.Close()

	_, err := s.backend.Load(context.Background())
	s.Require().Error(err)
	s.Require().Error(s.backend.Replace(context.Background(), model.List{}))
	s.Require().Error(s.backend.Ping(context.Background()))

	s.miniRedis = nil
}

func (s *KeyDBBackendTestSuite) TestPing() {
	s.Require().NoError(s.backend.Ping(context.Background()))
	s.Require().Equal("keydb", s.backend.Name())
}
